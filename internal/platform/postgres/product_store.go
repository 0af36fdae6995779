package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/store"
)

// PostgresProductStore implements the store.ProductStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProductStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProductStore creates a new PostgreSQL implementation of the ProductStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProductStore(db store.DBTX, logger *slog.Logger) *PostgresProductStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProductStore{
		db:     db,
		logger: logger.With(slog.String("component", "product_store")),
	}
}

// Ensure PostgresProductStore implements store.ProductStore interface
var _ store.ProductStore = (*PostgresProductStore)(nil)

// WithTx implements store.ProductStore.WithTx
func (s *PostgresProductStore) WithTx(tx *sql.Tx) store.ProductStore {
	return &PostgresProductStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ProductStore.Create
// It saves a new product to the database, handling domain validation.
// Returns store.ErrProductExists if the ID is already taken.
func (s *PostgresProductStore) Create(ctx context.Context, product *domain.Product) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := product.Validate(); err != nil {
		log.Warn("product validation failed during create",
			slog.String("error", err.Error()),
			slog.String("product_id", product.ID.String()))
		return err
	}

	query := `
		INSERT INTO products (id, name, price_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.PriceCents,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate ID during product creation",
				slog.String("product_id", product.ID.String()))
			return store.ErrProductExists
		}

		log.Error("failed to create product",
			slog.String("error", err.Error()),
			slog.String("product_id", product.ID.String()))
		return MapError(err)
	}

	log.Info("product created successfully",
		slog.String("product_id", product.ID.String()))
	return nil
}

// GetByID implements store.ProductStore.GetByID
// Returns store.ErrProductNotFound if the product does not exist.
func (s *PostgresProductStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving product by ID", slog.String("product_id", id.String()))

	query := `
		SELECT id, name, price_cents, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var product domain.Product
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.PriceCents,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("product not found", slog.String("product_id", id.String()))
			return nil, store.ErrProductNotFound
		}
		log.Error("failed to get product by ID",
			slog.String("error", err.Error()),
			slog.String("product_id", id.String()))
		return nil, err
	}

	return &product, nil
}

// List implements store.ProductStore.List
// It retrieves all products ordered by creation time.
func (s *PostgresProductStore) List(ctx context.Context) ([]*domain.Product, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, price_cents, created_at, updated_at
		FROM products
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query products", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	products := []*domain.Product{}
	for rows.Next() {
		var product domain.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.PriceCents,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan product row", slog.String("error", err.Error()))
			return nil, err
		}
		products = append(products, &product)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed products", slog.Int("count", len(products)))
	return products, nil
}

// Update implements store.ProductStore.Update
// It modifies an existing product's name and price.
// Returns store.ErrProductNotFound if the product does not exist.
func (s *PostgresProductStore) Update(ctx context.Context, product *domain.Product) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := product.Validate(); err != nil {
		log.Warn("product validation failed during update",
			slog.String("error", err.Error()),
			slog.String("product_id", product.ID.String()))
		return err
	}

	query := `
		UPDATE products
		SET name = $1, price_cents = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		product.Name,
		product.PriceCents,
		product.UpdatedAt,
		product.ID,
	)

	if err != nil {
		log.Error("failed to update product",
			slog.String("error", err.Error()),
			slog.String("product_id", product.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrProductNotFound); err != nil {
		log.Debug("product not found for update",
			slog.String("product_id", product.ID.String()))
		return err
	}

	log.Info("product updated successfully",
		slog.String("product_id", product.ID.String()))
	return nil
}

// UpdatePrices implements store.ProductStore.UpdatePrices
// It sets each listed product's price to its new value. All targets have
// already been verified to exist by the caller, so a missing row here is
// a consistency error and is reported as store.ErrProductNotFound.
func (s *PostgresProductStore) UpdatePrices(ctx context.Context, prices map[uuid.UUID]int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(prices) == 0 {
		return nil
	}

	ids := make([]string, 0, len(prices))
	cents := make([]int64, 0, len(prices))
	for id, price := range prices {
		ids = append(ids, id.String())
		cents = append(cents, price)
	}

	updatedAt := time.Now().UTC()

	// unnest pairs each ID with its new price in a single statement.
	query := `
		UPDATE products AS p
		SET price_cents = v.price_cents, updated_at = $3
		FROM (SELECT unnest($1::uuid[]) AS id, unnest($2::bigint[]) AS price_cents) AS v
		WHERE p.id = v.id
	`

	result, err := s.db.ExecContext(ctx, query, ids, cents, updatedAt)
	if err != nil {
		log.Error("failed to update product prices",
			slog.String("error", err.Error()),
			slog.Int("count", len(prices)))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected", slog.String("error", err.Error()))
		return err
	}
	if rowsAffected != int64(len(prices)) {
		log.Error("price update touched fewer rows than expected",
			slog.Int64("rows_affected", rowsAffected),
			slog.Int("expected", len(prices)))
		return store.ErrProductNotFound
	}

	log.Info("product prices updated", slog.Int("count", len(prices)))
	return nil
}

// Delete implements store.ProductStore.Delete
// Returns store.ErrProductNotFound if the product does not exist.
func (s *PostgresProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM products WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete product",
			slog.String("error", err.Error()),
			slog.String("product_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrProductNotFound); err != nil {
		log.Debug("product not found for delete", slog.String("product_id", id.String()))
		return err
	}

	log.Info("product deleted successfully", slog.String("product_id", id.String()))
	return nil
}
