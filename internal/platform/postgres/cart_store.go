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

// Constraints on the carts and cart_items tables, used to map violations
// to entity-specific errors.
const (
	cartsPKeyConstraint        = "carts_pkey"
	cartsUserConstraint        = "carts_user_id_key"
	cartItemsCartFKConstraint  = "cart_items_cart_id_fkey"
	cartItemsProductConstraint = "cart_items_product_id_fkey"
)

// PostgresCartStore implements the store.CartStore interface
// using a PostgreSQL database as the storage backend.
//
// Cart lines are hydrated on every read: the stored rows hold only
// product references, and the name and price come from a join against
// the products table.
type PostgresCartStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCartStore creates a new PostgreSQL implementation of the CartStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCartStore(db store.DBTX, logger *slog.Logger) *PostgresCartStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCartStore{
		db:     db,
		logger: logger.With(slog.String("component", "cart_store")),
	}
}

// Ensure PostgresCartStore implements store.CartStore interface
var _ store.CartStore = (*PostgresCartStore)(nil)

// WithTx implements store.CartStore.WithTx
func (s *PostgresCartStore) WithTx(tx *sql.Tx) store.CartStore {
	return &PostgresCartStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CartStore.Create
// It saves a new, empty cart to the database, handling domain validation.
// Returns store.ErrCartExists if the ID is already taken.
// Returns store.ErrCartOwnerTaken if the user already has a cart.
func (s *PostgresCartStore) Create(ctx context.Context, cart *domain.Cart) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := cart.Validate(); err != nil {
		log.Warn("cart validation failed during create",
			slog.String("error", err.Error()),
			slog.String("cart_id", cart.ID.String()))
		return err
	}

	query := `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		cart.ID,
		cart.UserID,
		cart.CreatedAt,
		cart.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			switch ConstraintName(err) {
			case cartsUserConstraint:
				log.Warn("user already has a cart",
					slog.String("user_id", cart.UserID.String()))
				return store.ErrCartOwnerTaken
			case cartsPKeyConstraint:
				log.Warn("duplicate ID during cart creation",
					slog.String("cart_id", cart.ID.String()))
				return store.ErrCartExists
			}
			return MapError(err)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("unknown user during cart creation",
				slog.String("user_id", cart.UserID.String()))
			return store.ErrUserNotFound
		}

		log.Error("failed to create cart",
			slog.String("error", err.Error()),
			slog.String("cart_id", cart.ID.String()))
		return MapError(err)
	}

	log.Info("cart created successfully",
		slog.String("cart_id", cart.ID.String()),
		slog.String("user_id", cart.UserID.String()))
	return nil
}

// GetByID implements store.CartStore.GetByID
// Returns store.ErrCartNotFound if the cart does not exist.
func (s *PostgresCartStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	return s.getOne(ctx, `WHERE id = $1`, id)
}

// GetByUserID implements store.CartStore.GetByUserID
// Returns store.ErrCartNotFound if the user has no cart.
func (s *PostgresCartStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	return s.getOne(ctx, `WHERE user_id = $1`, userID)
}

// getOne loads a single cart matched by the given predicate and hydrates
// its lines.
func (s *PostgresCartStore) getOne(ctx context.Context, where string, arg any) (*domain.Cart, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
	` + where

	var cart domain.Cart
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("cart not found")
			return nil, store.ErrCartNotFound
		}
		log.Error("failed to get cart", slog.String("error", err.Error()))
		return nil, err
	}

	items, err := s.loadItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return &cart, nil
}

// loadItems hydrates the lines of a single cart from the products table.
func (s *PostgresCartStore) loadItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ci.id, ci.product_id, p.name, p.price_cents, ci.position
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.position
	`

	rows, err := s.db.QueryContext(ctx, query, cartID)
	if err != nil {
		log.Error("failed to query cart items",
			slog.String("error", err.Error()),
			slog.String("cart_id", cartID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Name,
			&item.PriceCents,
			&item.Position,
		)
		if err != nil {
			log.Error("failed to scan cart item row", slog.String("error", err.Error()))
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

// List implements store.CartStore.List
// It retrieves all carts ordered by creation time, with hydrated lines.
func (s *PostgresCartStore) List(ctx context.Context) ([]*domain.Cart, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query carts", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	carts := []*domain.Cart{}
	byID := map[uuid.UUID]*domain.Cart{}
	for rows.Next() {
		var cart domain.Cart
		err := rows.Scan(
			&cart.ID,
			&cart.UserID,
			&cart.CreatedAt,
			&cart.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan cart row", slog.String("error", err.Error()))
			return nil, err
		}
		cart.Items = []domain.CartItem{}
		carts = append(carts, &cart)
		byID[cart.ID] = &cart
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if len(carts) == 0 {
		return carts, nil
	}

	// Hydrate all lines in one pass rather than one query per cart.
	itemQuery := `
		SELECT ci.cart_id, ci.id, ci.product_id, p.name, p.price_cents, ci.position
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		ORDER BY ci.position
	`

	itemRows, err := s.db.QueryContext(ctx, itemQuery)
	if err != nil {
		log.Error("failed to query cart items", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := itemRows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	for itemRows.Next() {
		var cartID uuid.UUID
		var item domain.CartItem
		err := itemRows.Scan(
			&cartID,
			&item.ID,
			&item.ProductID,
			&item.Name,
			&item.PriceCents,
			&item.Position,
		)
		if err != nil {
			log.Error("failed to scan cart item row", slog.String("error", err.Error()))
			return nil, err
		}
		if cart, ok := byID[cartID]; ok {
			cart.Items = append(cart.Items, item)
		}
	}

	if err := itemRows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed carts", slog.Int("count", len(carts)))
	return carts, nil
}

// AddItem implements store.CartStore.AddItem
// It appends a line referencing the product to the cart. Lines are
// ordered by an auto-assigned position.
// Returns store.ErrCartNotFound if the cart does not exist.
// Returns store.ErrProductNotFound if the product does not exist.
func (s *PostgresCartStore) AddItem(ctx context.Context, cartID, productID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO cart_items (id, cart_id, product_id)
		VALUES ($1, $2, $3)
	`

	_, err := s.db.ExecContext(ctx, query, uuid.New(), cartID, productID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			switch ConstraintName(err) {
			case cartItemsCartFKConstraint:
				log.Debug("cart not found for add item",
					slog.String("cart_id", cartID.String()))
				return store.ErrCartNotFound
			case cartItemsProductConstraint:
				log.Debug("product not found for add item",
					slog.String("product_id", productID.String()))
				return store.ErrProductNotFound
			}
			return MapError(err)
		}

		log.Error("failed to add cart item",
			slog.String("error", err.Error()),
			slog.String("cart_id", cartID.String()),
			slog.String("product_id", productID.String()))
		return MapError(err)
	}

	log.Info("cart item added",
		slog.String("cart_id", cartID.String()),
		slog.String("product_id", productID.String()))
	return nil
}

// RemoveItem implements store.CartStore.RemoveItem
// It removes the earliest line referencing the product from the cart.
// Returns store.ErrCartItemNotFound if no line references the product.
func (s *PostgresCartStore) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM cart_items
		WHERE id = (
			SELECT id FROM cart_items
			WHERE cart_id = $1 AND product_id = $2
			ORDER BY position
			LIMIT 1
		)
	`

	result, err := s.db.ExecContext(ctx, query, cartID, productID)
	if err != nil {
		log.Error("failed to remove cart item",
			slog.String("error", err.Error()),
			slog.String("cart_id", cartID.String()),
			slog.String("product_id", productID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCartItemNotFound); err != nil {
		log.Debug("cart item not found for remove",
			slog.String("cart_id", cartID.String()),
			slog.String("product_id", productID.String()))
		return err
	}

	log.Info("cart item removed",
		slog.String("cart_id", cartID.String()),
		slog.String("product_id", productID.String()))
	return nil
}

// RemoveItemsByProduct implements store.CartStore.RemoveItemsByProduct
// It removes every line referencing the product across all carts.
// Removing zero lines is not an error.
func (s *PostgresCartStore) RemoveItemsByProduct(ctx context.Context, productID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM cart_items WHERE product_id = $1`

	result, err := s.db.ExecContext(ctx, query, productID)
	if err != nil {
		log.Error("failed to remove cart items by product",
			slog.String("error", err.Error()),
			slog.String("product_id", productID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected", slog.String("error", err.Error()))
		return err
	}

	log.Info("cart items removed by product",
		slog.String("product_id", productID.String()),
		slog.Int64("count", rowsAffected))
	return nil
}

// ClearItems implements store.CartStore.ClearItems
// It removes all lines from the cart, leaving the cart itself in place.
// Returns store.ErrCartNotFound if the cart does not exist.
func (s *PostgresCartStore) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Verify the cart exists first; clearing an already-empty cart is
	// not an error, clearing a missing cart is.
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1)`, cartID).Scan(&exists)
	if err != nil {
		log.Error("failed to check cart existence",
			slog.String("error", err.Error()),
			slog.String("cart_id", cartID.String()))
		return err
	}
	if !exists {
		log.Debug("cart not found for clear", slog.String("cart_id", cartID.String()))
		return store.ErrCartNotFound
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		log.Error("failed to clear cart items",
			slog.String("error", err.Error()),
			slog.String("cart_id", cartID.String()))
		return MapError(err)
	}

	log.Info("cart cleared", slog.String("cart_id", cartID.String()))
	return nil
}

// Delete implements store.CartStore.Delete
// It removes a cart and, via cascade, its lines.
// Returns store.ErrCartNotFound if the cart does not exist.
func (s *PostgresCartStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM carts WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete cart",
			slog.String("error", err.Error()),
			slog.String("cart_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCartNotFound); err != nil {
		log.Debug("cart not found for delete", slog.String("cart_id", id.String()))
		return err
	}

	log.Info("cart deleted successfully", slog.String("cart_id", id.String()))
	return nil
}
