package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/store"
)

// PostgresOrderStore implements the store.OrderStore interface
// using a PostgreSQL database as the storage backend.
//
// Order lines are stored as snapshots: name and price are written at
// creation time and never rewritten afterwards.
type PostgresOrderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOrderStore creates a new PostgreSQL implementation of the OrderStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresOrderStore(db store.DBTX, logger *slog.Logger) *PostgresOrderStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresOrderStore{
		db:     db,
		logger: logger.With(slog.String("component", "order_store")),
	}
}

// Ensure PostgresOrderStore implements store.OrderStore interface
var _ store.OrderStore = (*PostgresOrderStore)(nil)

// WithTx implements store.OrderStore.WithTx
func (s *PostgresOrderStore) WithTx(tx *sql.Tx) store.OrderStore {
	return &PostgresOrderStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.OrderStore.Create
// It saves a new order and its snapshot lines, handling domain validation.
// Must be run within a transaction since it writes multiple rows.
// Returns store.ErrOrderExists if the ID is already taken.
// Returns store.ErrUserNotFound if the order's user does not exist.
func (s *PostgresOrderStore) Create(ctx context.Context, order *domain.Order) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := order.Validate(); err != nil {
		log.Warn("order validation failed during create",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return err
	}

	query := `
		INSERT INTO orders (id, user_id, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		order.TotalCents,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate ID during order creation",
				slog.String("order_id", order.ID.String()))
			return store.ErrOrderExists
		}
		if IsForeignKeyViolation(err) {
			log.Warn("unknown user during order creation",
				slog.String("user_id", order.UserID.String()))
			return store.ErrUserNotFound
		}

		log.Error("failed to create order",
			slog.String("error", err.Error()),
			slog.String("order_id", order.ID.String()))
		return MapError(err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, price_cents, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, item := range order.Items {
		itemID := item.ID
		if itemID == uuid.Nil {
			itemID = uuid.New()
		}
		_, err := s.db.ExecContext(
			ctx,
			itemQuery,
			itemID,
			order.ID,
			item.ProductID,
			item.Name,
			item.PriceCents,
			i,
		)
		if err != nil {
			log.Error("failed to create order item",
				slog.String("error", err.Error()),
				slog.String("order_id", order.ID.String()),
				slog.String("product_id", item.ProductID.String()))
			return MapError(err)
		}
	}

	log.Info("order created successfully",
		slog.String("order_id", order.ID.String()),
		slog.String("user_id", order.UserID.String()),
		slog.Int("items", len(order.Items)),
		slog.Int64("total_cents", order.TotalCents))
	return nil
}

// GetByID implements store.OrderStore.GetByID
// Returns store.ErrOrderNotFound if the order does not exist.
func (s *PostgresOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, total_cents, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order domain.Order
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.TotalCents,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("order not found", slog.String("order_id", id.String()))
			return nil, store.ErrOrderNotFound
		}
		log.Error("failed to get order by ID",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()))
		return nil, err
	}

	items, err := s.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// loadItems loads the snapshot lines of a single order.
func (s *PostgresOrderStore) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, product_id, name, price_cents, position
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		log.Error("failed to query order items",
			slog.String("error", err.Error()),
			slog.String("order_id", orderID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Name,
			&item.PriceCents,
			&item.Position,
		)
		if err != nil {
			log.Error("failed to scan order item row", slog.String("error", err.Error()))
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return items, nil
}

// List implements store.OrderStore.List
// It retrieves all orders ordered by creation time, including lines.
func (s *PostgresOrderStore) List(ctx context.Context) ([]*domain.Order, error) {
	return s.listWhere(ctx, ``)
}

// ListByUserID implements store.OrderStore.ListByUserID
// It retrieves all orders placed by the given user, including lines.
func (s *PostgresOrderStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.listWhere(ctx, `WHERE user_id = $1`, userID)
}

// listWhere loads orders matching the given predicate and attaches their
// lines in a single follow-up query.
func (s *PostgresOrderStore) listWhere(ctx context.Context, where string, args ...any) ([]*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, total_cents, created_at, updated_at
		FROM orders
	` + where + `
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	orders := []*domain.Order{}
	byID := map[uuid.UUID]*domain.Order{}
	for rows.Next() {
		var order domain.Order
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.TotalCents,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan order row", slog.String("error", err.Error()))
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		orders = append(orders, &order)
		byID[order.ID] = &order
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if len(orders) == 0 {
		return orders, nil
	}

	itemQuery := `
		SELECT oi.order_id, oi.id, oi.product_id, oi.name, oi.price_cents, oi.position
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
	` + where + `
		ORDER BY oi.position
	`

	itemRows, err := s.db.QueryContext(ctx, itemQuery, args...)
	if err != nil {
		log.Error("failed to query order items", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := itemRows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	for itemRows.Next() {
		var orderID uuid.UUID
		var item domain.OrderItem
		err := itemRows.Scan(
			&orderID,
			&item.ID,
			&item.ProductID,
			&item.Name,
			&item.PriceCents,
			&item.Position,
		)
		if err != nil {
			log.Error("failed to scan order item row", slog.String("error", err.Error()))
			return nil, err
		}
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	if err := itemRows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed orders", slog.Int("count", len(orders)))
	return orders, nil
}

// CountByUserID implements store.OrderStore.CountByUserID
func (s *PostgresOrderStore) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		log.Error("failed to count orders",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, err
	}

	return count, nil
}

// ExistsWithProduct implements store.OrderStore.ExistsWithProduct
func (s *PostgresOrderStore) ExistsWithProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)`, productID).Scan(&exists)
	if err != nil {
		log.Error("failed to check order references",
			slog.String("error", err.Error()),
			slog.String("product_id", productID.String()))
		return false, err
	}

	return exists, nil
}

// Delete implements store.OrderStore.Delete
// It removes an order and, via cascade, its lines.
// Returns store.ErrOrderNotFound if the order does not exist.
func (s *PostgresOrderStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM orders WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete order",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrOrderNotFound); err != nil {
		log.Debug("order not found for delete", slog.String("order_id", id.String()))
		return err
	}

	log.Info("order deleted successfully", slog.String("order_id", id.String()))
	return nil
}
