// Package domain contains the storefront's core entities (User, Product,
// Cart, and Order) together with their construction and validation rules.
// Entities here are persistence-agnostic; stores and services depend on
// this package, never the other way around.
package domain
