// Package store defines the persistence interfaces for the storefront's
// entities, the shared error vocabulary implementations must speak, and
// the transaction helpers services use to give every operation an
// exclusive read-modify-write scope.
package store
