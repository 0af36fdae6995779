package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/store"
)

// ProductServiceError is a custom error type for product service errors.
type ProductServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ProductServiceError.
func (e *ProductServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("product service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("product service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ProductServiceError) Unwrap() error {
	return e.Err
}

// NewProductServiceError creates a new ProductServiceError.
func NewProductServiceError(operation, message string, err error) *ProductServiceError {
	return &ProductServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// ProductService provides catalog operations. Products are the canonical
// price records; changing a price here is immediately visible in every
// cart that references the product.
type ProductService interface {
	// CreateProduct adds a new product to the catalog. A zero id means
	// the service assigns one; a client-supplied id that is already
	// taken yields store.ErrProductExists.
	CreateProduct(ctx context.Context, id uuid.UUID, name string, priceCents int64) (*domain.Product, error)

	// GetProduct retrieves a product by its ID.
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// ListProducts retrieves all products in the catalog.
	ListProducts(ctx context.Context) ([]*domain.Product, error)

	// UpdateProduct replaces a product's name and price.
	UpdateProduct(ctx context.Context, id uuid.UUID, name string, priceCents int64) (*domain.Product, error)

	// ApplyDiscount reduces the price of each listed product by the given
	// percentage, atomically. Every target must exist; a single unknown
	// ID fails the whole operation with store.ErrProductNotFound.
	// Returns the updated products in the order the IDs were given.
	ApplyDiscount(ctx context.Context, percent float64, productIDs []uuid.UUID) ([]*domain.Product, error)

	// DeleteProduct removes a product from the catalog. Lines referencing
	// it are removed from every cart; order snapshots keep it, so a
	// product referenced by any order cannot be deleted and yields
	// ErrProductInOrders.
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// productServiceImpl implements the ProductService interface
type productServiceImpl struct {
	productStore store.ProductStore
	cartStore    store.CartStore
	orderStore   store.OrderStore
	db           *sql.DB
	logger       *slog.Logger
}

// NewProductService creates a new ProductService.
// It returns an error if any of the required dependencies are nil.
func NewProductService(
	productStore store.ProductStore,
	cartStore store.CartStore,
	orderStore store.OrderStore,
	db *sql.DB,
	logger *slog.Logger,
) (ProductService, error) {
	if productStore == nil {
		return nil, domain.NewValidationError("productStore", "cannot be nil", domain.ErrValidation)
	}
	if cartStore == nil {
		return nil, domain.NewValidationError("cartStore", "cannot be nil", domain.ErrValidation)
	}
	if orderStore == nil {
		return nil, domain.NewValidationError("orderStore", "cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &productServiceImpl{
		productStore: productStore,
		cartStore:    cartStore,
		orderStore:   orderStore,
		db:           db,
		logger:       logger.With(slog.String("component", "product_service")),
	}, nil
}

// CreateProduct implements ProductService.CreateProduct
func (s *productServiceImpl) CreateProduct(
	ctx context.Context,
	id uuid.UUID,
	name string,
	priceCents int64,
) (*domain.Product, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	product, err := domain.NewProduct(name, priceCents)
	if err != nil {
		log.Warn("invalid product data",
			slog.String("error", err.Error()))
		return nil, err
	}
	if id != uuid.Nil {
		product.ID = id
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.productStore.WithTx(tx).Create(ctx, product)
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("duplicate product ID",
				slog.String("product_id", product.ID.String()))
			return nil, err
		}
		log.Error("failed to create product",
			slog.String("error", err.Error()),
			slog.String("product_id", product.ID.String()))
		return nil, NewProductServiceError("create_product", "failed to save product", err)
	}

	log.Info("product created",
		slog.String("product_id", product.ID.String()),
		slog.Int64("price_cents", product.PriceCents))
	return product, nil
}

// GetProduct implements ProductService.GetProduct
func (s *productServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	product, err := s.productStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("product not found", slog.String("product_id", id.String()))
			return nil, err
		}
		log.Error("failed to retrieve product",
			slog.String("error", err.Error()),
			slog.String("product_id", id.String()))
		return nil, NewProductServiceError("get_product", "failed to retrieve product", err)
	}

	return product, nil
}

// ListProducts implements ProductService.ListProducts
func (s *productServiceImpl) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	products, err := s.productStore.List(ctx)
	if err != nil {
		log.Error("failed to list products", slog.String("error", err.Error()))
		return nil, NewProductServiceError("list_products", "failed to list products", err)
	}

	return products, nil
}

// UpdateProduct implements ProductService.UpdateProduct
func (s *productServiceImpl) UpdateProduct(
	ctx context.Context,
	id uuid.UUID,
	name string,
	priceCents int64,
) (*domain.Product, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var product *domain.Product
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txProducts := s.productStore.WithTx(tx)

		var err error
		product, err = txProducts.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := product.Rename(name, priceCents); err != nil {
			return err
		}
		product.UpdatedAt = time.Now().UTC()

		return txProducts.Update(ctx, product)
	})

	if err != nil {
		if store.IsNotFoundError(err) || domain.IsValidationError(err) {
			log.Debug("product update rejected",
				slog.String("error", err.Error()),
				slog.String("product_id", id.String()))
			return nil, err
		}
		log.Error("failed to update product",
			slog.String("error", err.Error()),
			slog.String("product_id", id.String()))
		return nil, NewProductServiceError("update_product", "failed to update product", err)
	}

	log.Info("product updated",
		slog.String("product_id", id.String()),
		slog.Int64("price_cents", product.PriceCents))
	return product, nil
}

// ApplyDiscount implements ProductService.ApplyDiscount
// All targets are verified inside the transaction before any price is
// touched, so a bad ID leaves every price unchanged.
func (s *productServiceImpl) ApplyDiscount(
	ctx context.Context,
	percent float64,
	productIDs []uuid.UUID,
) ([]*domain.Product, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if percent < 0 || percent > 100 {
		log.Warn("discount percentage out of range", slog.Float64("percent", percent))
		return nil, domain.ErrDiscountOutOfRange
	}
	if len(productIDs) == 0 {
		log.Warn("discount requested with no targets")
		return nil, domain.ErrNoDiscountTargets
	}

	var updated []*domain.Product
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txProducts := s.productStore.WithTx(tx)

		products := make([]*domain.Product, 0, len(productIDs))
		prices := make(map[uuid.UUID]int64, len(productIDs))
		for _, id := range productIDs {
			product, err := txProducts.GetByID(ctx, id)
			if err != nil {
				// An unresolvable target invalidates the whole request.
				if store.IsNotFoundError(err) {
					return domain.NewValidationError(
						"product_ids",
						fmt.Sprintf("product %s not found", id),
						domain.ErrValidation,
					)
				}
				return err
			}
			if err := product.ApplyDiscount(percent); err != nil {
				return err
			}
			product.UpdatedAt = time.Now().UTC()
			products = append(products, product)
			prices[product.ID] = product.PriceCents
		}

		if err := txProducts.UpdatePrices(ctx, prices); err != nil {
			return err
		}

		updated = products
		return nil
	})

	if err != nil {
		if store.IsNotFoundError(err) || domain.IsValidationError(err) {
			log.Debug("discount rejected",
				slog.String("error", err.Error()),
				slog.Float64("percent", percent))
			return nil, err
		}
		log.Error("failed to apply discount",
			slog.String("error", err.Error()),
			slog.Float64("percent", percent),
			slog.Int("target_count", len(productIDs)))
		return nil, NewProductServiceError("apply_discount", "failed to apply discount", err)
	}

	log.Info("discount applied",
		slog.Float64("percent", percent),
		slog.Int("product_count", len(updated)))
	return updated, nil
}

// DeleteProduct implements ProductService.DeleteProduct
func (s *productServiceImpl) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txProducts := s.productStore.WithTx(tx)
		txCarts := s.cartStore.WithTx(tx)
		txOrders := s.orderStore.WithTx(tx)

		if _, err := txProducts.GetByID(ctx, id); err != nil {
			return err
		}

		// Order snapshots pin the product; carts merely reference it.
		referenced, err := txOrders.ExistsWithProduct(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return ErrProductInOrders
		}

		if err := txCarts.RemoveItemsByProduct(ctx, id); err != nil {
			return err
		}

		return txProducts.Delete(ctx, id)
	})

	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, ErrProductInOrders) {
			log.Debug("product delete rejected",
				slog.String("error", err.Error()),
				slog.String("product_id", id.String()))
			return err
		}
		log.Error("failed to delete product",
			slog.String("error", err.Error()),
			slog.String("product_id", id.String()))
		return NewProductServiceError("delete_product", "failed to delete product", err)
	}

	log.Info("product deleted", slog.String("product_id", id.String()))
	return nil
}
