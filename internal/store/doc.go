// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing the scheduling rules to remain
// independent of specific database technologies or persistence details.
//
// Two implementations exist: internal/platform/postgres for production and
// internal/platform/sqlite for single-node deployments and tests.
package store
