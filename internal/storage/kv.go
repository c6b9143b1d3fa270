// Package storage provides flat key-value persistence for the registries:
// string keys holding JSON documents, with quota accounting.
package storage

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned by SetItem when the write would exceed the backend's capacity
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrStorageFull is the user-facing condition registries report for ErrQuotaExceeded
var ErrStorageFull = errors.New("storage full: delete saved configs or snapshots to free space")

// KeyValue is a flat string-keyed store
type KeyValue interface {
	// GetItem returns the value for key and whether it was present
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// usage counts the bytes held by items, the way quota is charged
func usage(items map[string]string) int {
	total := 0
	for k, v := range items {
		total += len(k) + len(v)
	}
	return total
}
