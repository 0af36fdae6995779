package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/service"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

// CreateOrder handles POST /orders requests
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
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

	productIDs, err := parseUUIDList("product_ids", req.ProductIDs)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), id, userID, productIDs)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, orderToResponse(order))
}

// ListOrders handles GET /orders requests
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context())
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ordersToResponse(orders))
}

// GetOrder handles GET /orders/{id} requests
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, orderToResponse(order))
}

// DeleteOrder handles DELETE /orders/{id} requests
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if err := h.orderService.DeleteOrder(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
