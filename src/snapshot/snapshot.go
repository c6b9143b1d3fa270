// Package snapshot saves and restores named (config, canvas state) pairs,
// and tracks per-session generation spend on top of them.
package snapshot

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"placement_studio/internal/storage"
	"placement_studio/src/logger"
	"placement_studio/src/model"
)

// Key-value entries holding each map
const (
	SnapshotsKey = "ephemeral-snapshots"
	SessionsKey  = "ephemeral-sessions"
)

// IDPrefix prefixes every snapshot and session identifier
const IDPrefix = "snap_"

// ErrStorageFull is returned when a save hits the storage quota
var ErrStorageFull = storage.ErrStorageFull

// Store persists snapshots and sessions in a KeyValue backend
type Store struct {
	mu        sync.Mutex
	snapshots *storage.Document[model.Snapshot]
	sessions  *storage.Document[model.SessionSnapshot]
	clock     clockwork.Clock
}

// New creates a store backed by kv
func New(kv storage.KeyValue, clock clockwork.Clock) *Store {
	return &Store{
		snapshots: storage.NewDocument(kv, SnapshotsKey, func(key string, s model.Snapshot) error {
			return validateID(key, s.ID)
		}),
		sessions: storage.NewDocument(kv, SessionsKey, func(key string, s model.SessionSnapshot) error {
			if s.TotalCostUSD < 0 || s.GenerationCount < 0 {
				return fmt.Errorf("session %q has negative cost fields", key)
			}
			return validateID(key, s.ID)
		}),
		clock: clock,
	}
}

func validateID(key, id string) error {
	if id == "" || id != key {
		return fmt.Errorf("entry id %q does not match key %q", id, key)
	}
	return nil
}

// NewID returns a fresh identifier: snap_<unix millis>_<8 random hex chars>
func (s *Store) NewID() string {
	return fmt.Sprintf("%s%d_%s", IDPrefix, s.clock.Now().UnixMilli(), uuid.NewString()[:8])
}

// stamp builds the snapshot written for a save; a blank name falls back to the config name
func (s *Store) stamp(name string, config model.Config, state model.CanvasState, id string) model.Snapshot {
	if id == "" {
		id = s.NewID()
	}
	if strings.TrimSpace(name) == "" {
		name = config.Name
	}
	return model.Snapshot{
		ID:        id,
		Name:      name,
		Timestamp: s.clock.Now().UnixMilli(),
		Config:    config,
		State:     state,
	}
}

// SaveSnapshot writes a snapshot, reusing existingID when given. The timestamp is refreshed on every save.
func (s *Store) SaveSnapshot(ctx context.Context, name string, config model.Config, state model.CanvasState, existingID string) (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.stamp(name, config, state, existingID)
	entries := s.snapshots.Load(ctx)
	entries[snap.ID] = snap
	if err := s.snapshots.Save(ctx, entries); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// ListSnapshots returns snapshot metadata, newest first
func (s *Store) ListSnapshots(ctx context.Context) []model.SnapshotMeta {
	return listMeta(s.snapshots.Raw(ctx), SnapshotsKey)
}

// LoadSnapshot returns the snapshot with id, or nil when unknown
func (s *Store) LoadSnapshot(ctx context.Context, id string) *model.Snapshot {
	snap, ok := s.snapshots.Load(ctx)[id]
	if !ok {
		return nil
	}
	return &snap
}

// DeleteSnapshot removes id; unknown ids are ignored
func (s *Store) DeleteSnapshot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.snapshots.Load(ctx)
	if _, ok := entries[id]; !ok {
		return nil
	}
	delete(entries, id)
	return s.snapshots.Save(ctx, entries)
}

// metaProjection decodes only what a listing needs; cards are counted, never parsed
type metaProjection struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
	Config    struct {
		Name string `json:"name"`
	} `json:"config"`
	State struct {
		Cards      []json.RawMessage `json:"cards"`
		SavedCards []json.RawMessage `json:"savedCards"`
	} `json:"state"`
}

func listMeta(raw map[string]json.RawMessage, key string) []model.SnapshotMeta {
	list := make([]model.SnapshotMeta, 0, len(raw))
	for id, data := range raw {
		var p metaProjection
		if err := sonic.ConfigStd.Unmarshal(data, &p); err != nil || validateID(id, p.ID) != nil {
			logger.Warn().Err(err).Str("key", key).Str("entry", id).Msg("Skipping unreadable snapshot metadata")
			continue
		}
		list = append(list, model.SnapshotMeta{
			ID:         p.ID,
			Name:       p.Name,
			Timestamp:  p.Timestamp,
			CardCount:  len(p.State.Cards) + len(p.State.SavedCards),
			ConfigName: p.Config.Name,
		})
	}
	slices.SortFunc(list, func(a, b model.SnapshotMeta) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list
}
