package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/store"
)

// CartServiceError is a custom error type for cart service errors.
type CartServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CartServiceError.
func (e *CartServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cart service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("cart service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CartServiceError) Unwrap() error {
	return e.Err
}

// NewCartServiceError creates a new CartServiceError.
func NewCartServiceError(operation, message string, err error) *CartServiceError {
	return &CartServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CartService provides cart operations. Each user owns at most one cart,
// and cart lines always reflect the current catalog: reads hydrate the
// name and price of every line from the product records.
type CartService interface {
	// CreateCart creates an empty cart for the given user. A zero id
	// means the service assigns one; a taken id yields
	// store.ErrCartExists, and a second cart for the same user yields
	// store.ErrCartOwnerTaken.
	CreateCart(ctx context.Context, id, userID uuid.UUID) (*domain.Cart, error)

	// GetCart retrieves a cart by its ID.
	GetCart(ctx context.Context, id uuid.UUID) (*domain.Cart, error)

	// GetCartByUser retrieves the cart owned by the given user.
	GetCartByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)

	// ListCarts retrieves all carts.
	ListCarts(ctx context.Context) ([]*domain.Cart, error)

	// AddItem appends a line for the product to the cart and returns the
	// updated cart. The same product may be added any number of times.
	AddItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error)

	// RemoveItem removes one line for the product from the cart and
	// returns the updated cart. With multiple matching lines, the
	// earliest is removed. Yields store.ErrCartItemNotFound when no line
	// matches.
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error)

	// DeleteCart removes an empty cart. A cart that still has lines
	// yields ErrCartNotEmpty.
	DeleteCart(ctx context.Context, id uuid.UUID) error
}

// cartServiceImpl implements the CartService interface
type cartServiceImpl struct {
	cartStore store.CartStore
	userStore store.UserStore
	db        *sql.DB
	logger    *slog.Logger
}

// NewCartService creates a new CartService.
// It returns an error if any of the required dependencies are nil.
func NewCartService(
	cartStore store.CartStore,
	userStore store.UserStore,
	db *sql.DB,
	logger *slog.Logger,
) (CartService, error) {
	if cartStore == nil {
		return nil, domain.NewValidationError("cartStore", "cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &cartServiceImpl{
		cartStore: cartStore,
		userStore: userStore,
		db:        db,
		logger:    logger.With(slog.String("component", "cart_service")),
	}, nil
}

// CreateCart implements CartService.CreateCart
func (s *cartServiceImpl) CreateCart(ctx context.Context, id, userID uuid.UUID) (*domain.Cart, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cart, err := domain.NewCart(userID)
	if err != nil {
		log.Warn("invalid cart data", slog.String("error", err.Error()))
		return nil, err
	}
	if id != uuid.Nil {
		cart.ID = id
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.userStore.WithTx(tx).GetByID(ctx, userID); err != nil {
			return err
		}
		return s.cartStore.WithTx(tx).Create(ctx, cart)
	})

	if err != nil {
		if store.IsNotFoundError(err) || store.IsDuplicateError(err) {
			log.Debug("cart creation rejected",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, err
		}
		log.Error("failed to create cart",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewCartServiceError("create_cart", "failed to save cart", err)
	}

	log.Info("cart created",
		slog.String("cart_id", cart.ID.String()),
		slog.String("user_id", userID.String()))
	return cart, nil
}

// GetCart implements CartService.GetCart
func (s *cartServiceImpl) GetCart(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cart, err := s.cartStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("cart not found", slog.String("cart_id", id.String()))
			return nil, err
		}
		log.Error("failed to retrieve cart",
			slog.String("error", err.Error()),
			slog.String("cart_id", id.String()))
		return nil, NewCartServiceError("get_cart", "failed to retrieve cart", err)
	}

	return cart, nil
}

// GetCartByUser implements CartService.GetCartByUser
func (s *cartServiceImpl) GetCartByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cart, err := s.cartStore.GetByUserID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("cart not found for user", slog.String("user_id", userID.String()))
			return nil, err
		}
		log.Error("failed to retrieve cart by user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewCartServiceError("get_cart_by_user", "failed to retrieve cart", err)
	}

	return cart, nil
}

// ListCarts implements CartService.ListCarts
func (s *cartServiceImpl) ListCarts(ctx context.Context) ([]*domain.Cart, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	carts, err := s.cartStore.List(ctx)
	if err != nil {
		log.Error("failed to list carts", slog.String("error", err.Error()))
		return nil, NewCartServiceError("list_carts", "failed to list carts", err)
	}

	return carts, nil
}

// AddItem implements CartService.AddItem
func (s *cartServiceImpl) AddItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var cart *domain.Cart
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCarts := s.cartStore.WithTx(tx)

		if err := txCarts.AddItem(ctx, cartID, productID); err != nil {
			return err
		}

		var err error
		cart, err = txCarts.GetByID(ctx, cartID)
		return err
	})

	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("add item rejected",
				slog.String("error", err.Error()),
				slog.String("cart_id", cartID.String()),
				slog.String("product_id", productID.String()))
			return nil, err
		}
		log.Error("failed to add item to cart",
			slog.String("error", err.Error()),
			slog.String("cart_id", cartID.String()),
			slog.String("product_id", productID.String()))
		return nil, NewCartServiceError("add_item", "failed to add item", err)
	}

	log.Info("item added to cart",
		slog.String("cart_id", cartID.String()),
		slog.String("product_id", productID.String()))
	return cart, nil
}

// RemoveItem implements CartService.RemoveItem
func (s *cartServiceImpl) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var cart *domain.Cart
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCarts := s.cartStore.WithTx(tx)

		// Resolve the cart first so an unknown cart reports as such
		// rather than as a missing line.
		if _, err := txCarts.GetByID(ctx, cartID); err != nil {
			return err
		}

		if err := txCarts.RemoveItem(ctx, cartID, productID); err != nil {
			return err
		}

		var err error
		cart, err = txCarts.GetByID(ctx, cartID)
		return err
	})

	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("remove item rejected",
				slog.String("error", err.Error()),
				slog.String("cart_id", cartID.String()),
				slog.String("product_id", productID.String()))
			return nil, err
		}
		log.Error("failed to remove item from cart",
			slog.String("error", err.Error()),
			slog.String("cart_id", cartID.String()),
			slog.String("product_id", productID.String()))
		return nil, NewCartServiceError("remove_item", "failed to remove item", err)
	}

	log.Info("item removed from cart",
		slog.String("cart_id", cartID.String()),
		slog.String("product_id", productID.String()))
	return cart, nil
}

// DeleteCart implements CartService.DeleteCart
func (s *cartServiceImpl) DeleteCart(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCarts := s.cartStore.WithTx(tx)

		cart, err := txCarts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !cart.IsEmpty() {
			return ErrCartNotEmpty
		}

		return txCarts.Delete(ctx, id)
	})

	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, ErrCartNotEmpty) {
			log.Debug("cart delete rejected",
				slog.String("error", err.Error()),
				slog.String("cart_id", id.String()))
			return err
		}
		log.Error("failed to delete cart",
			slog.String("error", err.Error()),
			slog.String("cart_id", id.String()))
		return NewCartServiceError("delete_cart", "failed to delete cart", err)
	}

	log.Info("cart deleted", slog.String("cart_id", id.String()))
	return nil
}
