package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/service/auth"
	"github.com/phrazzld/storefront-api/internal/store"
)

// UserService provides user-related operations, including the checkout
// flow that turns a user's cart into an order.
type UserService interface {
	// Register creates a new user with a hashed password. A zero id means
	// the service assigns one; a taken id yields store.ErrUserExists and
	// a taken email yields store.ErrEmailExists.
	Register(ctx context.Context, id uuid.UUID, email, displayName, password string) (*domain.User, error)

	// Authenticate checks an email/password pair and returns the matching
	// user, or auth.ErrInvalidCredentials without revealing which check
	// failed.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ListUsers retrieves all users.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// GetUserOrders retrieves all orders placed by the user.
	GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)

	// Checkout converts the user's cart into an order in one transaction:
	// the new order snapshots each line's current name and price, and the
	// cart is emptied. An empty cart yields ErrEmptyCart.
	Checkout(ctx context.Context, userID uuid.UUID) (*domain.Order, error)

	// EmptyCart removes every line from the user's cart and returns the
	// emptied cart.
	EmptyCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)

	// RemoveOrder deletes one of the user's orders. Orders that belong to
	// a different user report as not found; orders with items are closed
	// records and yield ErrOrderHasItems.
	RemoveOrder(ctx context.Context, userID, orderID uuid.UUID) error

	// DeleteUser removes a user. A user who still has orders yields
	// ErrUserHasOrders. The user's cart, if any, is removed with them.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore  store.UserStore
	cartStore  store.CartStore
	orderStore store.OrderStore
	hasher     auth.PasswordHasher
	verifier   auth.PasswordVerifier
	db         *sql.DB
	logger     *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	cartStore store.CartStore,
	orderStore store.OrderStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	db *sql.DB,
	logger *slog.Logger,
) UserService {
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		userStore:  userStore,
		cartStore:  cartStore,
		orderStore: orderStore,
		hasher:     hasher,
		verifier:   verifier,
		db:         db,
		logger:     logger.With("component", "user_service"),
	}
}

// Register creates a new user with the specified details.
// The plaintext password is validated, hashed, and discarded before the
// user reaches the store.
func (s *UserServiceImpl) Register(
	ctx context.Context,
	id uuid.UUID,
	email, displayName, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, displayName, password)
	if err != nil {
		log.Warn("invalid registration data", "error", err)
		return nil, err
	}
	if id != uuid.Nil {
		user.ID = id
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})

	if err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("registration conflict", "error", err, "user_id", user.ID)
			return nil, err
		}
		log.Error("failed to save user", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks an email/password pair against the stored hash.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("authentication failed: unknown email")
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to retrieve user for authentication", "error", err)
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("authentication failed: password mismatch", "user_id", user.ID)
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("user not found", "user_id", userID)
			return nil, err
		}
		log.Error("failed to retrieve user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return user, nil
}

// ListUsers retrieves all users
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	users, err := s.userStore.List(ctx)
	if err != nil {
		log.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// GetUserOrders retrieves all orders placed by the user.
// The user must exist; an unknown user is reported rather than an empty list.
func (s *UserServiceImpl) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.userStore.GetByID(ctx, userID); err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("user not found for orders", "user_id", userID)
			return nil, err
		}
		log.Error("failed to retrieve user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	orders, err := s.orderStore.ListByUserID(ctx, userID)
	if err != nil {
		log.Error("failed to list user orders", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}

	return orders, nil
}

// Checkout converts the user's cart into an order atomically.
// The order's lines snapshot each product's name and price as hydrated at
// this moment; once written they are immune to catalog changes.
func (s *UserServiceImpl) Checkout(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var order *domain.Order
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.userStore.WithTx(tx)
		txCarts := s.cartStore.WithTx(tx)
		txOrders := s.orderStore.WithTx(tx)

		if _, err := txUsers.GetByID(ctx, userID); err != nil {
			return err
		}

		cart, err := txCarts.GetByUserID(ctx, userID)
		if err != nil {
			// A user with no cart has nothing to check out; report it as
			// a bad request rather than a missing resource.
			if store.IsNotFoundError(err) {
				return domain.NewValidationError("cart", "user has no cart", domain.ErrValidation)
			}
			return err
		}
		if cart.IsEmpty() {
			return ErrEmptyCart
		}

		items := make([]domain.OrderItem, 0, len(cart.Items))
		for i, line := range cart.Items {
			items = append(items, domain.OrderItem{
				ID:         uuid.New(),
				ProductID:  line.ProductID,
				Name:       line.Name,
				PriceCents: line.PriceCents,
				Position:   i,
			})
		}

		order, err = domain.NewOrder(userID, items)
		if err != nil {
			return err
		}

		if err := txOrders.Create(ctx, order); err != nil {
			return err
		}

		return txCarts.ClearItems(ctx, cart.ID)
	})

	if err != nil {
		if store.IsNotFoundError(err) || domain.IsValidationError(err) {
			log.Debug("checkout rejected", "error", err, "user_id", userID)
			return nil, err
		}
		log.Error("checkout failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	log.Info("checkout completed",
		"user_id", userID,
		"order_id", order.ID,
		"total_cents", order.TotalCents,
		"items", len(order.Items))
	return order, nil
}

// EmptyCart removes every line from the user's cart.
func (s *UserServiceImpl) EmptyCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var cart *domain.Cart
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.userStore.WithTx(tx)
		txCarts := s.cartStore.WithTx(tx)

		if _, err := txUsers.GetByID(ctx, userID); err != nil {
			return err
		}

		found, err := txCarts.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}

		if err := txCarts.ClearItems(ctx, found.ID); err != nil {
			return err
		}

		cart, err = txCarts.GetByID(ctx, found.ID)
		return err
	})

	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("empty cart rejected", "error", err, "user_id", userID)
			return nil, err
		}
		log.Error("failed to empty cart", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to empty cart: %w", err)
	}

	log.Info("cart emptied", "user_id", userID, "cart_id", cart.ID)
	return cart, nil
}

// RemoveOrder deletes one of the user's orders, applying the same
// empty-snapshot guard as direct order deletion.
func (s *UserServiceImpl) RemoveOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.userStore.WithTx(tx)
		txOrders := s.orderStore.WithTx(tx)

		if _, err := txUsers.GetByID(ctx, userID); err != nil {
			return err
		}

		order, err := txOrders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		// Another user's order is not visible here.
		if order.UserID != userID {
			return store.ErrOrderNotFound
		}
		if order.HasItems() {
			return ErrOrderHasItems
		}

		return txOrders.Delete(ctx, orderID)
	})

	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, ErrOrderHasItems) {
			log.Debug("order removal rejected",
				"error", err,
				"user_id", userID,
				"order_id", orderID)
			return err
		}
		log.Error("failed to remove order",
			"error", err,
			"user_id", userID,
			"order_id", orderID)
		return fmt.Errorf("failed to remove order: %w", err)
	}

	log.Info("order removed", "user_id", userID, "order_id", orderID)
	return nil
}

// DeleteUser deletes a user by their ID.
// Users with order history are kept for the records; their deletion is
// refused with ErrUserHasOrders. The user's cart goes with them.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.userStore.WithTx(tx)
		txCarts := s.cartStore.WithTx(tx)
		txOrders := s.orderStore.WithTx(tx)

		if _, err := txUsers.GetByID(ctx, userID); err != nil {
			return err
		}

		count, err := txOrders.CountByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrUserHasOrders
		}

		// The cart is deleted with its owner; having no cart is fine.
		cart, err := txCarts.GetByUserID(ctx, userID)
		if err == nil {
			if err := txCarts.Delete(ctx, cart.ID); err != nil {
				return err
			}
		} else if !store.IsNotFoundError(err) {
			return err
		}

		return txUsers.Delete(ctx, userID)
	})

	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, ErrUserHasOrders) {
			log.Debug("user delete rejected", "error", err, "user_id", userID)
			return err
		}
		log.Error("failed to delete user", "error", err, "user_id", userID)
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Info("user deleted", "user_id", userID)
	return nil
}
