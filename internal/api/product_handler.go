package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/storefront-api/internal/api/shared"
	"github.com/phrazzld/storefront-api/internal/service"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
	}
}

// CreateProduct handles POST /products requests
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
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

	product, err := h.productService.CreateProduct(r.Context(), id, req.Name, req.PriceCents)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, productToResponse(product))
}

// ListProducts handles GET /products requests
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListProducts(r.Context())
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, productsToResponse(products))
}

// GetProduct handles GET /products/{id} requests
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, productToResponse(product))
}

// UpdateProduct handles PUT /products/{id} requests
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	var req UpdateProductRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), id, req.Name, req.PriceCents)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, productToResponse(product))
}

// ApplyDiscount handles PUT /products/discount requests
func (h *ProductHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req ApplyDiscountRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ids, err := parseUUIDList("product_ids", req.ProductIDs)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	products, err := h.productService.ApplyDiscount(r.Context(), req.Percent, ids)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, productsToResponse(products))
}

// DeleteProduct handles DELETE /products/{id} requests
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
