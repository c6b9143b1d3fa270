package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"placement_studio/src/logger"
)

// Document is a JSON object of T values stored under a single key.
// Reads never fail: a missing or malformed blob yields an empty map, and
// entries that fail decoding or validation are dropped.
type Document[T any] struct {
	kv       KeyValue
	key      string
	validate func(key string, value T) error
}

// NewDocument binds a document to key; validate may be nil
func NewDocument[T any](kv KeyValue, key string, validate func(string, T) error) *Document[T] {
	return &Document[T]{kv: kv, key: key, validate: validate}
}

// Raw returns the undecoded entries of the document
func (d *Document[T]) Raw(ctx context.Context) map[string]json.RawMessage {
	value, found, err := d.kv.GetItem(ctx, d.key)
	if err != nil {
		logger.Warn().Err(err).Str("key", d.key).Msg("Failed to read document, using empty")
		return map[string]json.RawMessage{}
	}
	if !found || value == "" {
		return map[string]json.RawMessage{}
	}

	var entries map[string]json.RawMessage
	if err := sonic.ConfigStd.UnmarshalFromString(value, &entries); err != nil || entries == nil {
		logger.Warn().Err(err).Str("key", d.key).Msg("Discarding malformed document")
		return map[string]json.RawMessage{}
	}
	return entries
}

// Load returns every valid entry of the document
func (d *Document[T]) Load(ctx context.Context) map[string]T {
	raw := d.Raw(ctx)
	out := make(map[string]T, len(raw))
	for k, data := range raw {
		var value T
		if err := sonic.ConfigStd.Unmarshal(data, &value); err != nil {
			logger.Warn().Err(err).Str("key", d.key).Str("entry", k).Msg("Skipping undecodable entry")
			continue
		}
		if d.validate != nil {
			if err := d.validate(k, value); err != nil {
				logger.Warn().Err(err).Str("key", d.key).Str("entry", k).Msg("Skipping invalid entry")
				continue
			}
		}
		out[k] = value
	}
	return out
}

// Save overwrites the document with entries.
// Quota exhaustion is returned as ErrStorageFull; any other write failure is logged and dropped.
func (d *Document[T]) Save(ctx context.Context, entries map[string]T) error {
	data, err := sonic.ConfigStd.MarshalToString(entries)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.key, err)
	}

	if err := d.kv.SetItem(ctx, d.key, data); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			logger.Error().Err(err).Str("key", d.key).Msg("Storage quota exceeded")
			return fmt.Errorf("save %s: %w", d.key, ErrStorageFull)
		}
		logger.Error().Err(err).Str("key", d.key).Msg("Failed to persist document")
	}
	return nil
}
