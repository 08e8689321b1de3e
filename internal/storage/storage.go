// Package storage defines the string key-value store that backs user
// preferences, and the names of the available backends.
package storage

import "context"

// KV is a persistent string key-value store.
type KV interface {
	// Get returns the value of key, or "" if the key was never set.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// Backend drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)
