package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/storefront-api/internal/config"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/phrazzld/storefront-api/internal/platform/postgres"
	"github.com/phrazzld/storefront-api/internal/service"
	"github.com/phrazzld/storefront-api/internal/service/auth"
)

// application holds the long-lived dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService     auth.JWTService
	userService    service.UserService
	productService service.ProductService
	cartService    service.CartService
	orderService   service.OrderService
}

// initializeApp loads configuration and builds every application
// component in dependency order.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, appLogger)
	productStore := postgres.NewPostgresProductStore(db, appLogger)
	cartStore := postgres.NewPostgresCartStore(db, appLogger)
	orderStore := postgres.NewPostgresOrderStore(db, appLogger)

	userService := service.NewUserService(
		userStore,
		cartStore,
		orderStore,
		auth.NewBcryptHasher(0),
		auth.NewBcryptVerifier(),
		db,
		appLogger,
	)

	productService, err := service.NewProductService(productStore, cartStore, orderStore, db, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create product service: %w", err)
	}

	cartService, err := service.NewCartService(cartStore, userStore, db, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart service: %w", err)
	}

	orderService, err := service.NewOrderService(orderStore, userStore, productStore, db, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create order service: %w", err)
	}

	return &application{
		config:         cfg,
		logger:         appLogger,
		db:             db,
		jwtService:     jwtService,
		userService:    userService,
		productService: productService,
		cartService:    cartService,
		orderService:   orderService,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
