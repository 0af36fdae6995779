package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Product-specific validation errors. Each wraps ErrValidation so callers
// can classify them generically with errors.Is.
var (
	// ErrProductIDEmpty is returned when a product ID is empty or nil.
	ErrProductIDEmpty = fmt.Errorf("%w: product ID cannot be empty", ErrValidation)

	// ErrProductNameEmpty is returned when a product name is empty.
	ErrProductNameEmpty = fmt.Errorf("%w: product name cannot be empty", ErrValidation)

	// ErrProductPriceNegative is returned when a product price is negative.
	ErrProductPriceNegative = fmt.Errorf("%w: product price must be non-negative", ErrValidation)
)

// Product is the canonical record for a purchasable item. Carts reference
// products by ID and resolve the current name and price at read time;
// orders copy an immutable snapshot at checkout. Prices are stored in
// minor units (cents) to keep arithmetic exact.
type Product struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewProduct creates a new Product with the given name and price.
// It generates a new UUID for the product ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewProduct(name string, priceCents int64) (*Product, error) {
	product := &Product{
		ID:         uuid.New(),
		Name:       name,
		PriceCents: priceCents,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate checks if the Product has valid data.
// Returns an error if any field fails validation.
func (p *Product) Validate() error {
	if p.ID == uuid.Nil {
		return ErrProductIDEmpty
	}

	if p.Name == "" {
		return ErrProductNameEmpty
	}

	if p.PriceCents < 0 {
		return ErrProductPriceNegative
	}

	return nil
}

// Rename updates the product's name and price and bumps UpdatedAt.
// Returns an error if the new values are invalid; the product is left
// unchanged on failure.
func (p *Product) Rename(name string, priceCents int64) error {
	origName, origPrice := p.Name, p.PriceCents
	p.Name = name
	p.PriceCents = priceCents

	if err := p.Validate(); err != nil {
		p.Name, p.PriceCents = origName, origPrice
		return err
	}

	p.UpdatedAt = time.Now().UTC()
	return nil
}

// ApplyDiscount reduces the product's price by the given percentage,
// rounding to the nearest cent. Returns ErrDiscountOutOfRange if percent
// is outside [0, 100].
func (p *Product) ApplyDiscount(percent float64) error {
	if percent < 0 || percent > 100 {
		return ErrDiscountOutOfRange
	}

	p.PriceCents = DiscountedPrice(p.PriceCents, percent)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// DiscountedPrice returns price reduced by percent, rounded half away
// from zero to the nearest cent.
func DiscountedPrice(priceCents int64, percent float64) int64 {
	return int64(math.Round(float64(priceCents) * (100 - percent) / 100))
}
