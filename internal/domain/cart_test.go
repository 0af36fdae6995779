package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewCart(t *testing.T) {
	t.Parallel() // Enable parallel execution
	userID := uuid.New()

	cart, err := NewCart(userID)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cart.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if cart.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, cart.UserID)
	}

	if !cart.IsEmpty() {
		t.Error("Expected new cart to be empty")
	}

	if cart.Items == nil {
		t.Error("Expected non-nil Items slice")
	}

	if cart.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	// Test invalid user ID
	_, err = NewCart(uuid.Nil)
	if err != ErrCartUserIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrCartUserIDEmpty, err)
	}
}

func TestCartValidate(t *testing.T) {
	t.Parallel() // Enable parallel execution
	validCart := Cart{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Items: []CartItem{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Mug", PriceCents: 900},
		},
	}

	if err := validCart.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalidCart := validCart
	invalidCart.ID = uuid.Nil
	if err := invalidCart.Validate(); err != ErrCartIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrCartIDEmpty, err)
	}

	invalidCart = validCart
	invalidCart.UserID = uuid.Nil
	if err := invalidCart.Validate(); err != ErrCartUserIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrCartUserIDEmpty, err)
	}

	invalidCart = validCart
	invalidCart.Items = []CartItem{{ID: uuid.New(), ProductID: uuid.Nil}}
	if err := invalidCart.Validate(); err != ErrCartItemProductEmpty {
		t.Errorf("Expected error %v, got %v", ErrCartItemProductEmpty, err)
	}
}

func TestCartTotalCents(t *testing.T) {
	t.Parallel() // Enable parallel execution
	cart := Cart{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Items: []CartItem{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Keyboard", PriceCents: 1000},
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Monitor", PriceCents: 1550},
		},
	}

	if got := cart.TotalCents(); got != 2550 {
		t.Errorf("Expected total 2550, got %d", got)
	}

	cart.Items = nil
	if got := cart.TotalCents(); got != 0 {
		t.Errorf("Expected total 0 for empty cart, got %d", got)
	}
}

func TestCartContains(t *testing.T) {
	t.Parallel() // Enable parallel execution
	productID := uuid.New()
	cart := Cart{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Items: []CartItem{
			{ID: uuid.New(), ProductID: productID, Name: "Mug", PriceCents: 900},
			// Duplicate line: carts are lists, not sets
			{ID: uuid.New(), ProductID: productID, Name: "Mug", PriceCents: 900},
		},
	}

	if !cart.Contains(productID) {
		t.Error("Expected cart to contain product")
	}

	if cart.Contains(uuid.New()) {
		t.Error("Expected cart not to contain unknown product")
	}
}
