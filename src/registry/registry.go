// Package registry stores named generation configs under collision-free slugs.
package registry

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"

	"placement_studio/internal/storage"
	"placement_studio/src/model"
)

// ConfigsKey is the key-value entry holding the registry
const ConfigsKey = "ephemeral-configs"

// ErrStorageFull is returned when a save hits the storage quota
var ErrStorageFull = storage.ErrStorageFull

// Registry maps slugs to saved configs
type Registry struct {
	mu    sync.Mutex
	doc   *storage.Document[model.SlugRegistryEntry]
	clock clockwork.Clock
}

// New creates a registry persisted in kv
func New(kv storage.KeyValue, clock clockwork.Clock) *Registry {
	return &Registry{
		doc:   storage.NewDocument(kv, ConfigsKey, validateEntry),
		clock: clock,
	}
}

func validateEntry(key string, entry model.SlugRegistryEntry) error {
	if entry.Slug == "" || entry.Slug != key {
		return fmt.Errorf("entry slug %q does not match key %q", entry.Slug, key)
	}
	if entry.CreatedAt <= 0 {
		return fmt.Errorf("entry %q has no creation time", key)
	}
	return nil
}

// SaveConfig stores config. When existingSlug names a saved entry it is overwritten in place
// and keeps its CreatedAt; otherwise a new unique slug is minted from config.Name.
func (r *Registry) SaveConfig(ctx context.Context, config model.Config, existingSlug string) (model.SlugRegistryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.doc.Load(ctx)

	entry, exists := entries[existingSlug]
	if existingSlug == "" || !exists {
		taken := make(map[string]bool, len(entries))
		for slug := range entries {
			taken[slug] = true
		}
		entry = model.SlugRegistryEntry{
			Slug:      GenerateUniqueSlug(config.Name, taken),
			CreatedAt: r.clock.Now().UnixMilli(),
		}
	}

	config.Slug = entry.Slug
	entry.Config = config
	entries[entry.Slug] = entry

	if err := r.doc.Save(ctx, entries); err != nil {
		return model.SlugRegistryEntry{}, err
	}
	return entry, nil
}

// ListConfigs returns every entry, newest first
func (r *Registry) ListConfigs(ctx context.Context) []model.SlugRegistryEntry {
	entries := r.doc.Load(ctx)

	list := make([]model.SlugRegistryEntry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	slices.SortFunc(list, func(a, b model.SlugRegistryEntry) int {
		if c := cmp.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
	return list
}

// GetConfig returns the entry for slug, or nil when unknown
func (r *Registry) GetConfig(ctx context.Context, slug string) *model.SlugRegistryEntry {
	entry, ok := r.doc.Load(ctx)[slug]
	if !ok {
		return nil
	}
	return &entry
}

// SlugExists reports whether slug is taken
func (r *Registry) SlugExists(ctx context.Context, slug string) bool {
	_, ok := r.doc.Load(ctx)[slug]
	return ok
}

// DeleteConfig removes slug; unknown slugs are ignored
func (r *Registry) DeleteConfig(ctx context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.doc.Load(ctx)
	if _, ok := entries[slug]; !ok {
		return nil
	}
	delete(entries, slug)
	return r.doc.Save(ctx, entries)
}
