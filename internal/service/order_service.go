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

// OrderServiceError is a custom error type for order service errors.
type OrderServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for OrderServiceError.
func (e *OrderServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("order service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *OrderServiceError) Unwrap() error {
	return e.Err
}

// NewOrderServiceError creates a new OrderServiceError.
func NewOrderServiceError(operation, message string, err error) *OrderServiceError {
	return &OrderServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// OrderService provides order operations. Orders are closed records:
// their lines snapshot each product's name and price at creation, so
// later catalog changes never affect them. Orders are normally created
// by checkout; direct creation exists for imports and corrections.
type OrderService interface {
	// CreateOrder creates an order for the given user, snapshotting the
	// current name and price of each listed product. A zero id means the
	// service assigns one.
	CreateOrder(ctx context.Context, id, userID uuid.UUID, productIDs []uuid.UUID) (*domain.Order, error)

	// GetOrder retrieves an order by its ID.
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// ListOrders retrieves all orders.
	ListOrders(ctx context.Context) ([]*domain.Order, error)

	// DeleteOrder removes an order whose snapshot is empty. An order that
	// still has lines is a historical record and yields ErrOrderHasItems.
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// orderServiceImpl implements the OrderService interface
type orderServiceImpl struct {
	orderStore   store.OrderStore
	userStore    store.UserStore
	productStore store.ProductStore
	db           *sql.DB
	logger       *slog.Logger
}

// NewOrderService creates a new OrderService.
// It returns an error if any of the required dependencies are nil.
func NewOrderService(
	orderStore store.OrderStore,
	userStore store.UserStore,
	productStore store.ProductStore,
	db *sql.DB,
	logger *slog.Logger,
) (OrderService, error) {
	if orderStore == nil {
		return nil, domain.NewValidationError("orderStore", "cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if productStore == nil {
		return nil, domain.NewValidationError("productStore", "cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &orderServiceImpl{
		orderStore:   orderStore,
		userStore:    userStore,
		productStore: productStore,
		db:           db,
		logger:       logger.With(slog.String("component", "order_service")),
	}, nil
}

// CreateOrder implements OrderService.CreateOrder
func (s *orderServiceImpl) CreateOrder(
	ctx context.Context,
	id, userID uuid.UUID,
	productIDs []uuid.UUID,
) (*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var order *domain.Order
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txProducts := s.productStore.WithTx(tx)

		if _, err := s.userStore.WithTx(tx).GetByID(ctx, userID); err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, len(productIDs))
		for i, productID := range productIDs {
			product, err := txProducts.GetByID(ctx, productID)
			if err != nil {
				return err
			}
			items = append(items, domain.OrderItem{
				ID:         uuid.New(),
				ProductID:  product.ID,
				Name:       product.Name,
				PriceCents: product.PriceCents,
				Position:   i,
			})
		}

		var err error
		order, err = domain.NewOrder(userID, items)
		if err != nil {
			return err
		}
		if id != uuid.Nil {
			order.ID = id
		}

		return s.orderStore.WithTx(tx).Create(ctx, order)
	})

	if err != nil {
		if store.IsNotFoundError(err) || store.IsDuplicateError(err) || domain.IsValidationError(err) {
			log.Debug("order creation rejected",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, err
		}
		log.Error("failed to create order",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewOrderServiceError("create_order", "failed to save order", err)
	}

	log.Info("order created",
		slog.String("order_id", order.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int64("total_cents", order.TotalCents))
	return order, nil
}

// GetOrder implements OrderService.GetOrder
func (s *orderServiceImpl) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	order, err := s.orderStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("order not found", slog.String("order_id", id.String()))
			return nil, err
		}
		log.Error("failed to retrieve order",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()))
		return nil, NewOrderServiceError("get_order", "failed to retrieve order", err)
	}

	return order, nil
}

// ListOrders implements OrderService.ListOrders
func (s *orderServiceImpl) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	orders, err := s.orderStore.List(ctx)
	if err != nil {
		log.Error("failed to list orders", slog.String("error", err.Error()))
		return nil, NewOrderServiceError("list_orders", "failed to list orders", err)
	}

	return orders, nil
}

// DeleteOrder implements OrderService.DeleteOrder
func (s *orderServiceImpl) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txOrders := s.orderStore.WithTx(tx)

		order, err := txOrders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order.HasItems() {
			return ErrOrderHasItems
		}

		return txOrders.Delete(ctx, id)
	})

	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, ErrOrderHasItems) {
			log.Debug("order delete rejected",
				slog.String("error", err.Error()),
				slog.String("order_id", id.String()))
			return err
		}
		log.Error("failed to delete order",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()))
		return NewOrderServiceError("delete_order", "failed to delete order", err)
	}

	log.Info("order deleted", slog.String("order_id", id.String()))
	return nil
}
