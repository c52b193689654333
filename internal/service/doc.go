// Package service contains the use cases of the marketplace: accounts,
// tasks, messaging, favorites, reference data and administration.
//
// Services depend on the store interfaces only, never on a specific
// database. Each service is an interface with an unexported
// implementation returned by its constructor.
//
// Error handling:
//   - Expected failures are returned as *Error values whose Message is safe
//     to show to clients and whose Kind is one of domain.ErrValidation,
//     domain.ErrForbidden, store.ErrNotFound, store.ErrDuplicate or
//     ErrUnauthenticated.
//   - Domain validation errors and store not-found errors pass through
//     wrapped with %w.
//   - Unexpected failures are wrapped in *ServiceError.
//
// The API layer maps these categories to HTTP status codes.
package service
