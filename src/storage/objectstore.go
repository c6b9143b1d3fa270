// Package storage is the durable object store: keyed records grouped into
// logical collections, backed by a local SQLite database.
package storage

import (
	"context"
	"errors"
)

// Database identity
const (
	DBName    = "placement-studio"
	DBVersion = 2
)

// Collection names a logical group of records
type Collection string

const (
	CollectionPlacements Collection = "placements" // keyed by placement id
	CollectionContext    Collection = "context"    // keyed by a fixed string key
)

// WritingContextKey is the single row of the context collection
const WritingContextKey = "writingContext"

// Collections lists every collection ClearAll empties
var Collections = []Collection{CollectionPlacements, CollectionContext}

// ErrUnknownCollection is returned for collections outside the schema
var ErrUnknownCollection = errors.New("unknown collection")

// Record is one keyed, serialized value
type Record struct {
	Key   string
	Value []byte
}

// ObjectStore is the storage port the orchestrator persists through
type ObjectStore interface {
	// Put inserts or overwrites a single record
	Put(ctx context.Context, collection Collection, record Record) error
	// ReplaceAll clears the collection and writes every record in one transaction
	ReplaceAll(ctx context.Context, collection Collection, records []Record) error
	// GetAll returns the collection's records in write order
	GetAll(ctx context.Context, collection Collection) ([]Record, error)
	// Get returns one record and whether it exists
	Get(ctx context.Context, collection Collection, key string) (Record, bool, error)
	Clear(ctx context.Context, collection Collection) error
	// ClearAll empties every collection atomically
	ClearAll(ctx context.Context) error
}

func validCollection(c Collection) bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}
