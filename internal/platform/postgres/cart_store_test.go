package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/store"
)

func newMockCartStore(t *testing.T) (*PostgresCartStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresCartStore(db, nil), mock
}

func validCart(t *testing.T) *domain.Cart {
	t.Helper()
	cart, err := domain.NewCart(uuid.New())
	require.NoError(t, err)
	return cart
}

func TestPostgresCartStoreCreate(t *testing.T) {
	s, mock := newMockCartStore(t)
	cart := validCart(t)

	mock.ExpectExec("INSERT INTO carts").
		WithArgs(cart.ID, cart.UserID, cart.CreatedAt, cart.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), cart))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCartStoreCreateOwnerTaken(t *testing.T) {
	s, mock := newMockCartStore(t)
	cart := validCart(t)

	mock.ExpectExec("INSERT INTO carts").
		WillReturnError(pgError(uniqueViolationCode, cartsUserConstraint))

	err := s.Create(context.Background(), cart)
	assert.ErrorIs(t, err, store.ErrCartOwnerTaken)
}

func TestPostgresCartStoreCreateDuplicateID(t *testing.T) {
	s, mock := newMockCartStore(t)
	cart := validCart(t)

	mock.ExpectExec("INSERT INTO carts").
		WillReturnError(pgError(uniqueViolationCode, cartsPKeyConstraint))

	err := s.Create(context.Background(), cart)
	assert.ErrorIs(t, err, store.ErrCartExists)
}

func TestPostgresCartStoreCreateUnknownUser(t *testing.T) {
	s, mock := newMockCartStore(t)
	cart := validCart(t)

	mock.ExpectExec("INSERT INTO carts").
		WillReturnError(pgError(foreignKeyViolationCode, "carts_user_id_fkey"))

	err := s.Create(context.Background(), cart)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestPostgresCartStoreGetByIDHydratesItems(t *testing.T) {
	s, mock := newMockCartStore(t)
	cart := validCart(t)
	productID := uuid.New()

	cartRows := sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}).
		AddRow(cart.ID.String(), cart.UserID.String(), cart.CreatedAt, cart.UpdatedAt)

	mock.ExpectQuery("SELECT id, user_id, created_at, updated_at").
		WithArgs(cart.ID).
		WillReturnRows(cartRows)

	itemRows := sqlmock.NewRows([]string{"id", "product_id", "name", "price_cents", "position"}).
		AddRow(uuid.New().String(), productID.String(), "Keyboard", int64(1000), int64(0)).
		AddRow(uuid.New().String(), productID.String(), "Keyboard", int64(1000), int64(1))

	mock.ExpectQuery("FROM cart_items ci").
		WithArgs(cart.ID).
		WillReturnRows(itemRows)

	got, err := s.GetByID(context.Background(), cart.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Keyboard", got.Items[0].Name)
	assert.Equal(t, int64(2000), got.TotalCents())
}

func TestPostgresCartStoreGetByIDNotFound(t *testing.T) {
	s, mock := newMockCartStore(t)

	mock.ExpectQuery("SELECT id, user_id, created_at, updated_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}))

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrCartNotFound)
}

func TestPostgresCartStoreGetByUserIDNotFound(t *testing.T) {
	s, mock := newMockCartStore(t)

	mock.ExpectQuery("SELECT id, user_id, created_at, updated_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}))

	_, err := s.GetByUserID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrCartNotFound)
}

func TestPostgresCartStoreListEmpty(t *testing.T) {
	s, mock := newMockCartStore(t)

	mock.ExpectQuery("SELECT id, user_id, created_at, updated_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}))

	carts, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, carts)
	assert.Empty(t, carts)
}

func TestPostgresCartStoreList(t *testing.T) {
	s, mock := newMockCartStore(t)
	now := time.Now().UTC()
	cartID := uuid.New()

	cartRows := sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}).
		AddRow(cartID.String(), uuid.New().String(), now, now).
		AddRow(uuid.New().String(), uuid.New().String(), now, now)

	mock.ExpectQuery("SELECT id, user_id, created_at, updated_at").
		WillReturnRows(cartRows)

	itemRows := sqlmock.NewRows([]string{"cart_id", "id", "product_id", "name", "price_cents", "position"}).
		AddRow(cartID.String(), uuid.New().String(), uuid.New().String(), "Lamp", int64(4500), int64(0))

	mock.ExpectQuery("FROM cart_items ci").
		WillReturnRows(itemRows)

	carts, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, carts, 2)

	// Lines land on the cart they belong to, others stay empty.
	var withItems, withoutItems int
	for _, cart := range carts {
		require.NotNil(t, cart.Items)
		if len(cart.Items) > 0 {
			withItems++
			assert.Equal(t, cartID, cart.ID)
		} else {
			withoutItems++
		}
	}
	assert.Equal(t, 1, withItems)
	assert.Equal(t, 1, withoutItems)
}

func TestPostgresCartStoreAddItem(t *testing.T) {
	s, mock := newMockCartStore(t)
	cartID := uuid.New()
	productID := uuid.New()

	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs(sqlmock.AnyArg(), cartID, productID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.AddItem(context.Background(), cartID, productID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCartStoreAddItemUnknownCart(t *testing.T) {
	s, mock := newMockCartStore(t)

	mock.ExpectExec("INSERT INTO cart_items").
		WillReturnError(pgError(foreignKeyViolationCode, cartItemsCartFKConstraint))

	err := s.AddItem(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrCartNotFound)
}

func TestPostgresCartStoreAddItemUnknownProduct(t *testing.T) {
	s, mock := newMockCartStore(t)

	mock.ExpectExec("INSERT INTO cart_items").
		WillReturnError(pgError(foreignKeyViolationCode, cartItemsProductConstraint))

	err := s.AddItem(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestPostgresCartStoreRemoveItem(t *testing.T) {
	s, mock := newMockCartStore(t)
	cartID := uuid.New()
	productID := uuid.New()

	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(cartID, productID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.RemoveItem(context.Background(), cartID, productID))
}

func TestPostgresCartStoreRemoveItemNotInCart(t *testing.T) {
	s, mock := newMockCartStore(t)

	mock.ExpectExec("DELETE FROM cart_items").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.RemoveItem(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrCartItemNotFound)
}

func TestPostgresCartStoreRemoveItemsByProduct(t *testing.T) {
	s, mock := newMockCartStore(t)
	productID := uuid.New()

	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(productID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, s.RemoveItemsByProduct(context.Background(), productID))

	// Sweeping zero lines is fine
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(productID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.RemoveItemsByProduct(context.Background(), productID))
}

func TestPostgresCartStoreClearItems(t *testing.T) {
	s, mock := newMockCartStore(t)
	cartID := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, s.ClearItems(context.Background(), cartID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCartStoreClearItemsUnknownCart(t *testing.T) {
	s, mock := newMockCartStore(t)
	cartID := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := s.ClearItems(context.Background(), cartID)
	assert.ErrorIs(t, err, store.ErrCartNotFound)
}

func TestPostgresCartStoreDelete(t *testing.T) {
	s, mock := newMockCartStore(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM carts").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), id))

	mock.ExpectExec("DELETE FROM carts").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), id), store.ErrCartNotFound)
}
