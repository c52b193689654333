// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic. Two implementations exist: a PostgreSQL
// one in platform/postgres and a MongoDB one in platform/mongo. Both
// return the sentinel errors declared here so services can stay
// independent of the database in use.
package store
