package postgres

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/store"
)

// pgxArgConverter mirrors the pgx stdlib driver, which accepts slice
// arguments (encoded as Postgres arrays) that the default converter rejects.
type pgxArgConverter struct{}

func (pgxArgConverter) ConvertValue(v any) (driver.Value, error) {
	switch v.(type) {
	case []string, []int64:
		return v, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMockProductStore(t *testing.T) (*PostgresProductStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(pgxArgConverter{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresProductStore(db, nil), mock
}

func validProduct(t *testing.T) *domain.Product {
	t.Helper()
	product, err := domain.NewProduct("Keyboard", 1000)
	require.NoError(t, err)
	return product
}

func TestPostgresProductStoreCreate(t *testing.T) {
	s, mock := newMockProductStore(t)
	product := validProduct(t)

	mock.ExpectExec("INSERT INTO products").
		WithArgs(product.ID, product.Name, product.PriceCents, product.CreatedAt, product.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), product))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProductStoreCreateDuplicate(t *testing.T) {
	s, mock := newMockProductStore(t)
	product := validProduct(t)

	mock.ExpectExec("INSERT INTO products").
		WillReturnError(pgError(uniqueViolationCode, "products_pkey"))

	err := s.Create(context.Background(), product)
	assert.ErrorIs(t, err, store.ErrProductExists)
}

func TestPostgresProductStoreGetByID(t *testing.T) {
	s, mock := newMockProductStore(t)
	product := validProduct(t)

	rows := sqlmock.NewRows([]string{"id", "name", "price_cents", "created_at", "updated_at"}).
		AddRow(product.ID.String(), product.Name, product.PriceCents, product.CreatedAt, product.UpdatedAt)

	mock.ExpectQuery("SELECT id, name, price_cents, created_at, updated_at").
		WithArgs(product.ID).
		WillReturnRows(rows)

	got, err := s.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, got.Name)
	assert.Equal(t, product.PriceCents, got.PriceCents)
}

func TestPostgresProductStoreGetByIDNotFound(t *testing.T) {
	s, mock := newMockProductStore(t)

	mock.ExpectQuery("SELECT id, name, price_cents, created_at, updated_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price_cents", "created_at", "updated_at"}))

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestPostgresProductStoreUpdate(t *testing.T) {
	s, mock := newMockProductStore(t)
	product := validProduct(t)

	mock.ExpectExec("UPDATE products").
		WithArgs(product.Name, product.PriceCents, product.UpdatedAt, product.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Update(context.Background(), product))
}

func TestPostgresProductStoreUpdateNotFound(t *testing.T) {
	s, mock := newMockProductStore(t)
	product := validProduct(t)

	mock.ExpectExec("UPDATE products").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Update(context.Background(), product)
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestPostgresProductStoreUpdatePrices(t *testing.T) {
	s, mock := newMockProductStore(t)

	prices := map[uuid.UUID]int64{
		uuid.New(): 800,
		uuid.New(): 1240,
	}

	mock.ExpectExec("UPDATE products AS p").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, s.UpdatePrices(context.Background(), prices))
}

func TestPostgresProductStoreUpdatePricesRowMismatch(t *testing.T) {
	s, mock := newMockProductStore(t)

	prices := map[uuid.UUID]int64{
		uuid.New(): 800,
		uuid.New(): 1240,
	}

	// One of the targets vanished between verification and update
	mock.ExpectExec("UPDATE products AS p").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdatePrices(context.Background(), prices)
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestPostgresProductStoreUpdatePricesEmpty(t *testing.T) {
	s, _ := newMockProductStore(t)

	// Nothing to do, no SQL issued
	require.NoError(t, s.UpdatePrices(context.Background(), map[uuid.UUID]int64{}))
}

func TestPostgresProductStoreDelete(t *testing.T) {
	s, mock := newMockProductStore(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM products").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), id))

	mock.ExpectExec("DELETE FROM products").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), id), store.ErrProductNotFound)
}
