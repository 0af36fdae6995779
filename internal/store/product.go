package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
)

// ProductStore defines the interface for product data persistence.
// Products are the canonical price records: cart lines are hydrated from
// them at read time, order lines snapshot them at checkout.
type ProductStore interface {
	// Create saves a new product to the store.
	// Returns ErrProductExists if the ID is already taken.
	// Returns validation errors from the domain Product if data is invalid.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique ID.
	// Returns ErrProductNotFound if the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// List retrieves all products ordered by creation time.
	List(ctx context.Context) ([]*domain.Product, error)

	// Update modifies an existing product's name and price.
	// Returns ErrProductNotFound if the product does not exist.
	// Returns validation errors from the domain Product if data is invalid.
	Update(ctx context.Context, product *domain.Product) error

	// UpdatePrices sets the price of each listed product to its new value in
	// a single statement. Used by discount application, where every target
	// has already been verified to exist.
	// The prices map keys are product IDs; values are new prices in cents.
	UpdatePrices(ctx context.Context, prices map[uuid.UUID]int64) error

	// Delete removes a product from the store by its ID.
	// Returns ErrProductNotFound if the product does not exist.
	//
	// Cart lines referencing the product are removed by the service layer
	// before this is called; order lines keep their snapshots untouched.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ProductStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ProductStore
}
