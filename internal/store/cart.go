package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
)

// CartStore defines the interface for cart data persistence.
//
// Cart lines store only product references; implementations hydrate the
// name and price of each line from the products table on every read, so
// carts always reflect the current catalog.
type CartStore interface {
	// Create saves a new cart to the store. The cart's Items are ignored;
	// carts are always created empty.
	// Returns ErrCartExists if the ID is already taken.
	// Returns ErrCartOwnerTaken if the user already has a cart.
	// Returns validation errors from the domain Cart if data is invalid.
	Create(ctx context.Context, cart *domain.Cart) error

	// GetByID retrieves a cart by its unique ID, with hydrated lines.
	// Returns ErrCartNotFound if the cart does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error)

	// GetByUserID retrieves the cart owned by the given user, with
	// hydrated lines.
	// Returns ErrCartNotFound if the user has no cart.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)

	// List retrieves all carts ordered by creation time, with hydrated lines.
	List(ctx context.Context) ([]*domain.Cart, error)

	// AddItem appends a line referencing the given product to the cart.
	// The same product may appear on multiple lines.
	// Returns ErrCartNotFound if the cart does not exist.
	// Returns ErrProductNotFound if the product does not exist.
	AddItem(ctx context.Context, cartID, productID uuid.UUID) error

	// RemoveItem removes a single line referencing the given product from
	// the cart. If the product appears on multiple lines, only the earliest
	// line is removed.
	// Returns ErrCartItemNotFound if no line references the product.
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error

	// RemoveItemsByProduct removes every line referencing the product from
	// all carts. Used when a product is retired from the catalog.
	RemoveItemsByProduct(ctx context.Context, productID uuid.UUID) error

	// ClearItems removes all lines from the cart, leaving the cart itself
	// in place.
	// Returns ErrCartNotFound if the cart does not exist.
	ClearItems(ctx context.Context, cartID uuid.UUID) error

	// Delete removes a cart and its lines from the store by its ID.
	// Returns ErrCartNotFound if the cart does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CartStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) CartStore
}
