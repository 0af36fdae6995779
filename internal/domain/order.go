package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order-specific validation errors.
var (
	// ErrOrderIDEmpty is returned when an order ID is empty or nil.
	ErrOrderIDEmpty = fmt.Errorf("%w: order ID cannot be empty", ErrValidation)

	// ErrOrderUserIDEmpty is returned when an order's user ID is empty or nil.
	ErrOrderUserIDEmpty = fmt.Errorf("%w: order user ID cannot be empty", ErrValidation)

	// ErrOrderItemNameEmpty is returned when an order line has no product name.
	ErrOrderItemNameEmpty = fmt.Errorf("%w: order item name cannot be empty", ErrValidation)

	// ErrOrderItemPriceNegative is returned when an order line price is negative.
	ErrOrderItemPriceNegative = fmt.Errorf("%w: order item price must be non-negative", ErrValidation)

	// ErrOrderTotalMismatch is returned when an order's total does not
	// equal the sum of its line prices.
	ErrOrderTotalMismatch = fmt.Errorf("%w: order total does not match items sum", ErrValidation)
)

// OrderItem is an immutable snapshot of a product taken at checkout time.
// Unlike cart lines, the name and price here are copies: later catalog
// changes never touch them.
type OrderItem struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Position   int       `json:"position"`
}

// Order is a closed historical record of a checkout. Once created it is
// never mutated; deletion is a correction path reserved for orders whose
// snapshot is empty.
type Order struct {
	ID         uuid.UUID   `json:"id"`
	UserID     uuid.UUID   `json:"user_id"`
	TotalCents int64       `json:"total_cents"`
	Items      []OrderItem `json:"items"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewOrder creates a new Order for the given user from the given snapshot
// lines, computing the total from the lines. It generates a new UUID for
// the order ID and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewOrder(userID uuid.UUID, items []OrderItem) (*Order, error) {
	var total int64
	for _, item := range items {
		total += item.PriceCents
	}

	order := &Order{
		ID:         uuid.New(),
		UserID:     userID,
		TotalCents: total,
		Items:      items,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate checks if the Order has valid data, including that the stored
// total equals the sum of its line prices.
// Returns an error if any field fails validation.
func (o *Order) Validate() error {
	if o.ID == uuid.Nil {
		return ErrOrderIDEmpty
	}

	if o.UserID == uuid.Nil {
		return ErrOrderUserIDEmpty
	}

	var total int64
	for _, item := range o.Items {
		if item.Name == "" {
			return ErrOrderItemNameEmpty
		}
		if item.PriceCents < 0 {
			return ErrOrderItemPriceNegative
		}
		total += item.PriceCents
	}

	if total != o.TotalCents {
		return ErrOrderTotalMismatch
	}

	return nil
}

// HasItems reports whether the order snapshot contains any lines.
func (o *Order) HasItems() bool {
	return len(o.Items) > 0
}

// ContainsProduct reports whether any snapshot line references the product.
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
