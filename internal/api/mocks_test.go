package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/service/auth"
)

// errNotStubbed marks a handler exercising a service method the test did
// not expect to be called.
var errNotStubbed = errors.New("service method not stubbed")

// stubUserService implements service.UserService with overridable functions.
type stubUserService struct {
	registerFn      func(ctx context.Context, id uuid.UUID, email, displayName, password string) (*domain.User, error)
	authenticateFn  func(ctx context.Context, email, password string) (*domain.User, error)
	getUserFn       func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	listUsersFn     func(ctx context.Context) ([]*domain.User, error)
	getUserOrdersFn func(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	checkoutFn      func(ctx context.Context, userID uuid.UUID) (*domain.Order, error)
	emptyCartFn     func(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	removeOrderFn   func(ctx context.Context, userID, orderID uuid.UUID) error
	deleteUserFn    func(ctx context.Context, userID uuid.UUID) error
}

func (s *stubUserService) Register(ctx context.Context, id uuid.UUID, email, displayName, password string) (*domain.User, error) {
	if s.registerFn == nil {
		return nil, errNotStubbed
	}
	return s.registerFn(ctx, id, email, displayName, password)
}

func (s *stubUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if s.authenticateFn == nil {
		return nil, errNotStubbed
	}
	return s.authenticateFn(ctx, email, password)
}

func (s *stubUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if s.getUserFn == nil {
		return nil, errNotStubbed
	}
	return s.getUserFn(ctx, userID)
}

func (s *stubUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if s.listUsersFn == nil {
		return nil, errNotStubbed
	}
	return s.listUsersFn(ctx)
}

func (s *stubUserService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	if s.getUserOrdersFn == nil {
		return nil, errNotStubbed
	}
	return s.getUserOrdersFn(ctx, userID)
}

func (s *stubUserService) Checkout(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	if s.checkoutFn == nil {
		return nil, errNotStubbed
	}
	return s.checkoutFn(ctx, userID)
}

func (s *stubUserService) EmptyCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	if s.emptyCartFn == nil {
		return nil, errNotStubbed
	}
	return s.emptyCartFn(ctx, userID)
}

func (s *stubUserService) RemoveOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	if s.removeOrderFn == nil {
		return errNotStubbed
	}
	return s.removeOrderFn(ctx, userID, orderID)
}

func (s *stubUserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if s.deleteUserFn == nil {
		return errNotStubbed
	}
	return s.deleteUserFn(ctx, userID)
}

// stubProductService implements service.ProductService with overridable functions.
type stubProductService struct {
	createProductFn func(ctx context.Context, id uuid.UUID, name string, priceCents int64) (*domain.Product, error)
	getProductFn    func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	listProductsFn  func(ctx context.Context) ([]*domain.Product, error)
	updateProductFn func(ctx context.Context, id uuid.UUID, name string, priceCents int64) (*domain.Product, error)
	applyDiscountFn func(ctx context.Context, percent float64, productIDs []uuid.UUID) ([]*domain.Product, error)
	deleteProductFn func(ctx context.Context, id uuid.UUID) error
}

func (s *stubProductService) CreateProduct(ctx context.Context, id uuid.UUID, name string, priceCents int64) (*domain.Product, error) {
	if s.createProductFn == nil {
		return nil, errNotStubbed
	}
	return s.createProductFn(ctx, id, name, priceCents)
}

func (s *stubProductService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if s.getProductFn == nil {
		return nil, errNotStubbed
	}
	return s.getProductFn(ctx, id)
}

func (s *stubProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	if s.listProductsFn == nil {
		return nil, errNotStubbed
	}
	return s.listProductsFn(ctx)
}

func (s *stubProductService) UpdateProduct(ctx context.Context, id uuid.UUID, name string, priceCents int64) (*domain.Product, error) {
	if s.updateProductFn == nil {
		return nil, errNotStubbed
	}
	return s.updateProductFn(ctx, id, name, priceCents)
}

func (s *stubProductService) ApplyDiscount(ctx context.Context, percent float64, productIDs []uuid.UUID) ([]*domain.Product, error) {
	if s.applyDiscountFn == nil {
		return nil, errNotStubbed
	}
	return s.applyDiscountFn(ctx, percent, productIDs)
}

func (s *stubProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if s.deleteProductFn == nil {
		return errNotStubbed
	}
	return s.deleteProductFn(ctx, id)
}

// stubCartService implements service.CartService with overridable functions.
type stubCartService struct {
	createCartFn    func(ctx context.Context, id, userID uuid.UUID) (*domain.Cart, error)
	getCartFn       func(ctx context.Context, id uuid.UUID) (*domain.Cart, error)
	getCartByUserFn func(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	listCartsFn     func(ctx context.Context) ([]*domain.Cart, error)
	addItemFn       func(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error)
	removeItemFn    func(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error)
	deleteCartFn    func(ctx context.Context, id uuid.UUID) error
}

func (s *stubCartService) CreateCart(ctx context.Context, id, userID uuid.UUID) (*domain.Cart, error) {
	if s.createCartFn == nil {
		return nil, errNotStubbed
	}
	return s.createCartFn(ctx, id, userID)
}

func (s *stubCartService) GetCart(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	if s.getCartFn == nil {
		return nil, errNotStubbed
	}
	return s.getCartFn(ctx, id)
}

func (s *stubCartService) GetCartByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	if s.getCartByUserFn == nil {
		return nil, errNotStubbed
	}
	return s.getCartByUserFn(ctx, userID)
}

func (s *stubCartService) ListCarts(ctx context.Context) ([]*domain.Cart, error) {
	if s.listCartsFn == nil {
		return nil, errNotStubbed
	}
	return s.listCartsFn(ctx)
}

func (s *stubCartService) AddItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error) {
	if s.addItemFn == nil {
		return nil, errNotStubbed
	}
	return s.addItemFn(ctx, cartID, productID)
}

func (s *stubCartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error) {
	if s.removeItemFn == nil {
		return nil, errNotStubbed
	}
	return s.removeItemFn(ctx, cartID, productID)
}

func (s *stubCartService) DeleteCart(ctx context.Context, id uuid.UUID) error {
	if s.deleteCartFn == nil {
		return errNotStubbed
	}
	return s.deleteCartFn(ctx, id)
}

// stubOrderService implements service.OrderService with overridable functions.
type stubOrderService struct {
	createOrderFn func(ctx context.Context, id, userID uuid.UUID, productIDs []uuid.UUID) (*domain.Order, error)
	getOrderFn    func(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	listOrdersFn  func(ctx context.Context) ([]*domain.Order, error)
	deleteOrderFn func(ctx context.Context, id uuid.UUID) error
}

func (s *stubOrderService) CreateOrder(ctx context.Context, id, userID uuid.UUID, productIDs []uuid.UUID) (*domain.Order, error) {
	if s.createOrderFn == nil {
		return nil, errNotStubbed
	}
	return s.createOrderFn(ctx, id, userID, productIDs)
}

func (s *stubOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if s.getOrderFn == nil {
		return nil, errNotStubbed
	}
	return s.getOrderFn(ctx, id)
}

func (s *stubOrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	if s.listOrdersFn == nil {
		return nil, errNotStubbed
	}
	return s.listOrdersFn(ctx)
}

func (s *stubOrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if s.deleteOrderFn == nil {
		return errNotStubbed
	}
	return s.deleteOrderFn(ctx, id)
}

// stubJWTService implements auth.JWTService for handler tests.
type stubJWTService struct {
	token string
}

func (s *stubJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.token, nil
}

func (s *stubJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}

// doRequest routes a request through the given router and returns the recorder.
func doRequest(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeBody decodes a JSON response body into out.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}
