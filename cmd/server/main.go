// Package main implements the entry point for the storefront API server,
// which manages the product catalog, per-user carts, orders, and the
// checkout flow between them.
package main

import (
	"context"
	"log"
)

// main wires configuration, logging, the database, services, and the
// HTTP server together, then blocks until shutdown.
func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	router := app.setupRouter()

	if err := app.startHTTPServer(context.Background(), router); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
