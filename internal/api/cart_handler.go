package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/service"
)

// CartHandler handles cart-related HTTP requests
type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
	}
}

// CreateCart handles POST /carts requests
func (h *CartHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	var req CreateCartRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	id, err := parseOptionalUUID("id", req.ID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	userID, err := parseOptionalUUID("user_id", req.UserID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	cart, err := h.cartService.CreateCart(r.Context(), id, userID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, cartToResponse(cart))
}

// ListCarts handles GET /carts requests
func (h *CartHandler) ListCarts(w http.ResponseWriter, r *http.Request) {
	carts, err := h.cartService.ListCarts(r.Context())
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cartsToResponse(carts))
}

// GetCart handles GET /carts/{id} requests
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cartToResponse(cart))
}

// GetUserCart handles GET /users/{id}/cart requests
func (h *CartHandler) GetUserCart(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	cart, err := h.cartService.GetCartByUser(r.Context(), userID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cartToResponse(cart))
}

// AddItem handles PUT /carts/{id}/items requests
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	var req CartItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	productID, err := parseOptionalUUID("product_id", req.ProductID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), cartID, productID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cartToResponse(cart))
}

// RemoveItem handles DELETE /carts/{id}/items requests
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	var req CartItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	productID, err := parseOptionalUUID("product_id", req.ProductID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), cartID, productID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cartToResponse(cart))
}

// DeleteCart handles DELETE /carts/{id} requests
func (h *CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if err := h.cartService.DeleteCart(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
