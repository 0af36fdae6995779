package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
// ID is optional; imports may supply one, everyone else gets a generated ID.
type RegisterRequest struct {
	ID          string `json:"id,omitempty"  validate:"omitempty,uuid"`
	Email       string `json:"email"         validate:"required,email"`
	DisplayName string `json:"display_name"  validate:"required,min=1"`
	Password    string `json:"password"      validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// CreateProductRequest defines the payload for creating a product.
type CreateProductRequest struct {
	ID         string `json:"id,omitempty" validate:"omitempty,uuid"`
	Name       string `json:"name"         validate:"required,min=1"`
	PriceCents int64  `json:"price_cents"  validate:"gte=0"`
}

// UpdateProductRequest defines the payload for replacing a product's
// name and price.
type UpdateProductRequest struct {
	Name       string `json:"name"        validate:"required,min=1"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
}

// ApplyDiscountRequest defines the payload for the bulk discount endpoint.
// Range and emptiness checks live in the service so their messages match
// the catalog rules.
type ApplyDiscountRequest struct {
	Percent    float64  `json:"percent"`
	ProductIDs []string `json:"product_ids" validate:"omitempty,dive,uuid"`
}

// CreateCartRequest defines the payload for creating a cart.
type CreateCartRequest struct {
	ID     string `json:"id,omitempty" validate:"omitempty,uuid"`
	UserID string `json:"user_id"      validate:"required,uuid"`
}

// CartItemRequest defines the payload for adding or removing a cart line.
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// CreateOrderRequest defines the payload for creating an order directly.
// The listed products are snapshotted at their current name and price.
type CreateOrderRequest struct {
	ID         string   `json:"id,omitempty" validate:"omitempty,uuid"`
	UserID     string   `json:"user_id"      validate:"required,uuid"`
	ProductIDs []string `json:"product_ids"  validate:"omitempty,dive,uuid"`
}

// ProductResponse represents the response data for a product.
type ProductResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CartItemResponse represents one hydrated cart line.
type CartItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// CartResponse represents the response data for a cart.
type CartResponse struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	Items      []CartItemResponse `json:"items"`
	TotalCents int64              `json:"total_cents"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// OrderItemResponse represents one order snapshot line.
type OrderItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// OrderResponse represents the response data for an order.
type OrderResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	TotalCents int64               `json:"total_cents"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// UserResponse represents the response data for a user. Password material
// never leaves the service layer.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// productToResponse converts a domain.Product to a ProductResponse
func productToResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID.String(),
		Name:       p.Name,
		PriceCents: p.PriceCents,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// productsToResponse converts a slice of products, never returning nil.
func productsToResponse(products []*domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productToResponse(p))
	}
	return out
}

// cartToResponse converts a domain.Cart to a CartResponse
func cartToResponse(c *domain.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartItemResponse{
			ID:         item.ID.String(),
			ProductID:  item.ProductID.String(),
			Name:       item.Name,
			PriceCents: item.PriceCents,
		})
	}
	return CartResponse{
		ID:         c.ID.String(),
		UserID:     c.UserID.String(),
		Items:      items,
		TotalCents: c.TotalCents(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// cartsToResponse converts a slice of carts, never returning nil.
func cartsToResponse(carts []*domain.Cart) []CartResponse {
	out := make([]CartResponse, 0, len(carts))
	for _, c := range carts {
		out = append(out, cartToResponse(c))
	}
	return out
}

// orderToResponse converts a domain.Order to an OrderResponse
func orderToResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:         item.ID.String(),
			ProductID:  item.ProductID.String(),
			Name:       item.Name,
			PriceCents: item.PriceCents,
		})
	}
	return OrderResponse{
		ID:         o.ID.String(),
		UserID:     o.UserID.String(),
		TotalCents: o.TotalCents,
		Items:      items,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// ordersToResponse converts a slice of orders, never returning nil.
func ordersToResponse(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderToResponse(o))
	}
	return out
}

// userToResponse converts a domain.User to a UserResponse
func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// usersToResponse converts a slice of users, never returning nil.
func usersToResponse(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}
	return out
}
