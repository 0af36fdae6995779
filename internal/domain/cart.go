package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cart-specific validation errors.
var (
	// ErrCartIDEmpty is returned when a cart ID is empty or nil.
	ErrCartIDEmpty = fmt.Errorf("%w: cart ID cannot be empty", ErrValidation)

	// ErrCartUserIDEmpty is returned when a cart's owning user ID is empty or nil.
	ErrCartUserIDEmpty = fmt.Errorf("%w: cart user ID cannot be empty", ErrValidation)

	// ErrCartItemProductEmpty is returned when a cart line references no product.
	ErrCartItemProductEmpty = fmt.Errorf("%w: cart item product ID cannot be empty", ErrValidation)
)

/// CartItem is one line of a cart: a reference to a canonical product.
// Name and PriceCents are hydrated from the product record at read time,
// so carts always reflect the current catalog price. The same product may
// appear on multiple lines; membership is a list, not a set.
type CartItem struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Position   int       `json:"position"`
}

// Cart holds a user's pending selection. Each user owns at most one cart;
// the owning user ID is required and immutable after creation.
type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart creates a new empty Cart owned by the given user.
// It generates a new UUID for the cart ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewCart(userID uuid.UUID) (*Cart, error) {
	cart := &Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := cart.Validate(); err != nil {
		return nil, err
	}

	return cart, nil
}

// Validate checks if the Cart has valid data.
// Returns an error if any field fails validation.
func (c *Cart) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCartIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCartUserIDEmpty
	}

	for _, item := range c.Items {
		if item.ProductID == uuid.Nil {
			return ErrCartItemProductEmpty
		}
	}

	return nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalCents sums the hydrated prices of every line in the cart.
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.PriceCents
	}
	return total
}

// Contains reports whether any line of the cart references the product.
func (c *Cart) Contains(productID uuid.UUID) bool {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
