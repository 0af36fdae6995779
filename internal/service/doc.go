// Package service provides application-level services for managing the
// storefront's products, carts, orders, and users. Services orchestrate
// store operations, run every mutation inside a transaction, and enforce
// the cross-entity rules (deletion guards, checkout) that no single
// store can express.
package service
