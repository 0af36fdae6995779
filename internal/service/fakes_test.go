package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/store"
)

// newTxDB returns a *sql.DB whose transactions always succeed, so service
// tests can drive the in-memory fakes through the real transaction runner.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 64; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeUserStore is an in-memory store.UserStore.
type fakeUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; ok {
		return store.ErrUserExists
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) List(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(f.users))
	for _, user := range f.users {
		cp := *user
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return f }

// fakeProductStore is an in-memory store.ProductStore.
type fakeProductStore struct {
	products map[uuid.UUID]*domain.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[uuid.UUID]*domain.Product)}
}

func (f *fakeProductStore) Create(ctx context.Context, product *domain.Product) error {
	if _, ok := f.products[product.ID]; ok {
		return store.ErrProductExists
	}
	cp := *product
	f.products[product.ID] = &cp
	return nil
}

func (f *fakeProductStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	cp := *product
	return &cp, nil
}

func (f *fakeProductStore) List(ctx context.Context) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(f.products))
	for _, product := range f.products {
		cp := *product
		products = append(products, &cp)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

func (f *fakeProductStore) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return store.ErrProductNotFound
	}
	cp := *product
	f.products[product.ID] = &cp
	return nil
}

func (f *fakeProductStore) UpdatePrices(ctx context.Context, prices map[uuid.UUID]int64) error {
	for id := range prices {
		if _, ok := f.products[id]; !ok {
			return store.ErrProductNotFound
		}
	}
	for id, cents := range prices {
		f.products[id].PriceCents = cents
	}
	return nil
}

func (f *fakeProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.products[id]; !ok {
		return store.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductStore) WithTx(tx *sql.Tx) store.ProductStore { return f }

// fakeCartStore is an in-memory store.CartStore. Reads hydrate line names
// and prices from the product store, mirroring the SQL implementation.
type fakeCartStore struct {
	carts    map[uuid.UUID]*domain.Cart
	products *fakeProductStore
	nextPos  int
}

func newFakeCartStore(products *fakeProductStore) *fakeCartStore {
	return &fakeCartStore{
		carts:    make(map[uuid.UUID]*domain.Cart),
		products: products,
	}
}

func (f *fakeCartStore) hydrate(cart *domain.Cart) *domain.Cart {
	cp := *cart
	cp.Items = make([]domain.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if product, ok := f.products.products[item.ProductID]; ok {
			item.Name = product.Name
			item.PriceCents = product.PriceCents
		}
		cp.Items = append(cp.Items, item)
	}
	return &cp
}

func (f *fakeCartStore) Create(ctx context.Context, cart *domain.Cart) error {
	if _, ok := f.carts[cart.ID]; ok {
		return store.ErrCartExists
	}
	for _, existing := range f.carts {
		if existing.UserID == cart.UserID {
			return store.ErrCartOwnerTaken
		}
	}
	cp := *cart
	cp.Items = []domain.CartItem{}
	f.carts[cart.ID] = &cp
	return nil
}

func (f *fakeCartStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	cart, ok := f.carts[id]
	if !ok {
		return nil, store.ErrCartNotFound
	}
	return f.hydrate(cart), nil
}

func (f *fakeCartStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	for _, cart := range f.carts {
		if cart.UserID == userID {
			return f.hydrate(cart), nil
		}
	}
	return nil, store.ErrCartNotFound
}

func (f *fakeCartStore) List(ctx context.Context) ([]*domain.Cart, error) {
	carts := make([]*domain.Cart, 0, len(f.carts))
	for _, cart := range f.carts {
		carts = append(carts, f.hydrate(cart))
	}
	sort.Slice(carts, func(i, j int) bool { return carts[i].CreatedAt.Before(carts[j].CreatedAt) })
	return carts, nil
}

func (f *fakeCartStore) AddItem(ctx context.Context, cartID, productID uuid.UUID) error {
	cart, ok := f.carts[cartID]
	if !ok {
		return store.ErrCartNotFound
	}
	if _, ok := f.products.products[productID]; !ok {
		return store.ErrProductNotFound
	}
	f.nextPos++
	cart.Items = append(cart.Items, domain.CartItem{
		ID:        uuid.New(),
		ProductID: productID,
		Position:  f.nextPos,
	})
	return nil
}

func (f *fakeCartStore) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	cart, ok := f.carts[cartID]
	if !ok {
		return store.ErrCartItemNotFound
	}
	for i, item := range cart.Items {
		if item.ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return store.ErrCartItemNotFound
}

func (f *fakeCartStore) RemoveItemsByProduct(ctx context.Context, productID uuid.UUID) error {
	for _, cart := range f.carts {
		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		cart.Items = kept
	}
	return nil
}

func (f *fakeCartStore) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	cart, ok := f.carts[cartID]
	if !ok {
		return store.ErrCartNotFound
	}
	cart.Items = []domain.CartItem{}
	return nil
}

func (f *fakeCartStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.carts[id]; !ok {
		return store.ErrCartNotFound
	}
	delete(f.carts, id)
	return nil
}

func (f *fakeCartStore) WithTx(tx *sql.Tx) store.CartStore { return f }

// fakeOrderStore is an in-memory store.OrderStore.
type fakeOrderStore struct {
	orders map[uuid.UUID]*domain.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uuid.UUID]*domain.Order)}
}

func (f *fakeOrderStore) Create(ctx context.Context, order *domain.Order) error {
	if _, ok := f.orders[order.ID]; ok {
		return store.ErrOrderExists
	}
	cp := *order
	cp.Items = append([]domain.OrderItem(nil), order.Items...)
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	cp := *order
	cp.Items = append([]domain.OrderItem(nil), order.Items...)
	return &cp, nil
}

func (f *fakeOrderStore) List(ctx context.Context) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0, len(f.orders))
	for _, order := range f.orders {
		cp := *order
		orders = append(orders, &cp)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func (f *fakeOrderStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0)
	for _, order := range f.orders {
		if order.UserID == userID {
			cp := *order
			orders = append(orders, &cp)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func (f *fakeOrderStore) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, order := range f.orders {
		if order.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeOrderStore) ExistsWithProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	for _, order := range f.orders {
		if order.ContainsProduct(productID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrderStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.orders[id]; !ok {
		return store.ErrOrderNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderStore) WithTx(tx *sql.Tx) store.OrderStore { return f }
