package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phrazzld/storefront-api/internal/api"
	"github.com/phrazzld/storefront-api/internal/api/middleware"
)

// setupRouter builds the chi router with the full route table. Reads,
// authentication, health, and metrics are public; every mutating route
// sits behind JWT authentication.
func (app *application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.MetricsMiddleware)

	authMiddleware := middleware.NewAuthMiddleware(app.jwtService)

	tokenLifetime := time.Duration(app.config.Auth.TokenLifetimeHours) * time.Hour
	authHandler := api.NewAuthHandler(app.userService, app.jwtService, tokenLifetime)
	productHandler := api.NewProductHandler(app.productService)
	cartHandler := api.NewCartHandler(app.cartService)
	orderHandler := api.NewOrderHandler(app.orderService)
	userHandler := api.NewUserHandler(app.userService)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Get("/products", productHandler.ListProducts)
	r.Get("/products/{id}", productHandler.GetProduct)
	r.Get("/carts", cartHandler.ListCarts)
	r.Get("/carts/{id}", cartHandler.GetCart)
	r.Get("/orders", orderHandler.ListOrders)
	r.Get("/orders/{id}", orderHandler.GetOrder)
	r.Get("/users", userHandler.ListUsers)
	r.Get("/users/{id}", userHandler.GetUser)
	r.Get("/users/{id}/cart", cartHandler.GetUserCart)
	r.Get("/users/{id}/orders", userHandler.GetUserOrders)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/products", productHandler.CreateProduct)
		r.Put("/products/discount", productHandler.ApplyDiscount)
		r.Put("/products/{id}", productHandler.UpdateProduct)
		r.Delete("/products/{id}", productHandler.DeleteProduct)

		r.Post("/carts", cartHandler.CreateCart)
		r.Put("/carts/{id}/items", cartHandler.AddItem)
		r.Delete("/carts/{id}/items", cartHandler.RemoveItem)
		r.Delete("/carts/{id}", cartHandler.DeleteCart)

		r.Post("/orders", orderHandler.CreateOrder)
		r.Delete("/orders/{id}", orderHandler.DeleteOrder)

		r.Post("/users/{id}/checkout", userHandler.Checkout)
		r.Post("/users/{id}/cart/empty", userHandler.EmptyCart)
		r.Delete("/users/{id}/orders/{orderId}", userHandler.RemoveOrder)
		r.Delete("/users/{id}", userHandler.DeleteUser)
	})

	return r
}
