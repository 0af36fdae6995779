package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
)

// OrderStore defines the interface for order data persistence.
//
// Order lines are snapshots: the name and price captured at checkout are
// stored with the line and are never rewritten by later catalog changes.
type OrderStore interface {
	// Create saves a new order and its snapshot lines to the store.
	// IMPORTANT: This method writes multiple rows and MUST be run within a
	// transaction. Use WithTx together with store.RunInTransaction.
	// Returns ErrOrderExists if the ID is already taken.
	// Returns validation errors from the domain Order if data is invalid.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique ID, including its lines.
	// Returns ErrOrderNotFound if the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// List retrieves all orders ordered by creation time, including lines.
	List(ctx context.Context) ([]*domain.Order, error)

	// ListByUserID retrieves all orders placed by the given user, ordered
	// by creation time, including lines.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)

	// CountByUserID returns the number of orders placed by the given user.
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)

	// ExistsWithProduct reports whether any order line references the
	// given product. Used to guard product deletion.
	ExistsWithProduct(ctx context.Context, productID uuid.UUID) (bool, error)

	// Delete removes an order and its lines from the store by its ID.
	// Returns ErrOrderNotFound if the order does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new OrderStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) OrderStore
}
