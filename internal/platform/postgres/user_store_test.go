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

func newMockUserStore(t *testing.T) (*PostgresUserStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresUserStore(db, nil), mock
}

func validUser(t *testing.T) *domain.User {
	t.Helper()
	user, err := domain.NewUser("ada@example.com", "Ada", "a long enough password")
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
	user.Password = ""
	return user
}

func TestPostgresUserStoreCreate(t *testing.T) {
	s, mock := newMockUserStore(t)
	user := validUser(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Email, user.DisplayName, user.HashedPassword, user.CreatedAt, user.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStoreCreateDuplicateEmail(t *testing.T) {
	s, mock := newMockUserStore(t)
	user := validUser(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(pgError(uniqueViolationCode, usersEmailConstraint))

	err := s.Create(context.Background(), user)
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestPostgresUserStoreCreateDuplicateID(t *testing.T) {
	s, mock := newMockUserStore(t)
	user := validUser(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(pgError(uniqueViolationCode, usersPKeyConstraint))

	err := s.Create(context.Background(), user)
	assert.ErrorIs(t, err, store.ErrUserExists)
}

func TestPostgresUserStoreCreateInvalidUser(t *testing.T) {
	s, _ := newMockUserStore(t)
	user := validUser(t)
	user.Email = ""

	// Validation fails before any SQL runs
	err := s.Create(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrUserEmailEmpty)
}

func TestPostgresUserStoreGetByID(t *testing.T) {
	s, mock := newMockUserStore(t)
	user := validUser(t)

	rows := sqlmock.NewRows([]string{
		"id", "email", "display_name", "hashed_password", "created_at", "updated_at",
	}).AddRow(user.ID.String(), user.Email, user.DisplayName, user.HashedPassword, user.CreatedAt, user.UpdatedAt)

	mock.ExpectQuery("SELECT id, email, display_name, hashed_password, created_at, updated_at").
		WithArgs(user.ID).
		WillReturnRows(rows)

	got, err := s.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
}

func TestPostgresUserStoreGetByIDNotFound(t *testing.T) {
	s, mock := newMockUserStore(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, email, display_name, hashed_password, created_at, updated_at").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "display_name", "hashed_password", "created_at", "updated_at",
		}))

	_, err := s.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestPostgresUserStoreList(t *testing.T) {
	s, mock := newMockUserStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "email", "display_name", "hashed_password", "created_at", "updated_at",
	}).
		AddRow(uuid.New().String(), "ada@example.com", "Ada", "hash-a", now, now).
		AddRow(uuid.New().String(), "grace@example.com", "Grace", "hash-g", now, now)

	mock.ExpectQuery("SELECT id, email, display_name, hashed_password, created_at, updated_at").
		WillReturnRows(rows)

	users, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestPostgresUserStoreListEmpty(t *testing.T) {
	s, mock := newMockUserStore(t)

	mock.ExpectQuery("SELECT id, email, display_name, hashed_password, created_at, updated_at").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "display_name", "hashed_password", "created_at", "updated_at",
		}))

	users, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestPostgresUserStoreDelete(t *testing.T) {
	s, mock := newMockUserStore(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM users").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), id))
}

func TestPostgresUserStoreDeleteNotFound(t *testing.T) {
	s, mock := newMockUserStore(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM users").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Delete(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
