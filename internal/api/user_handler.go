package api

import (
	"net/http"

	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/service"
)

// UserHandler handles user-related HTTP requests, including the
// cart-to-order checkout flow.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers handles GET /users requests
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, usersToResponse(users))
}

// GetUser handles GET /users/{id} requests
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// GetUserOrders handles GET /users/{id}/orders requests
func (h *UserHandler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	orders, err := h.userService.GetUserOrders(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ordersToResponse(orders))
}

// Checkout handles POST /users/{id}/checkout requests
func (h *UserHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	order, err := h.userService.Checkout(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, orderToResponse(order))
}

// EmptyCart handles POST /users/{id}/cart/empty requests
func (h *UserHandler) EmptyCart(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	cart, err := h.userService.EmptyCart(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cartToResponse(cart))
}

// RemoveOrder handles DELETE /users/{id}/orders/{orderId} requests
func (h *UserHandler) RemoveOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	orderID, err := getPathUUID(r, "orderId")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if err := h.userService.RemoveOrder(r.Context(), userID, orderID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser handles DELETE /users/{id} requests
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
