package storage

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"

	"placement_studio/src/logger"
	"placement_studio/src/model"
)

// contextRecord is the stored shape of the writing context row
type contextRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PlacementStore maps placements and the writing context onto an ObjectStore.
// Loads never fail: unavailable or malformed data degrades to empty with a warning.
// Saves return their errors so callers can decide how loudly to report them.
type PlacementStore struct {
	store ObjectStore
}

// NewPlacementStore wraps store
func NewPlacementStore(store ObjectStore) *PlacementStore {
	return &PlacementStore{store: store}
}

// LoadPlacements returns every persisted placement in saved order
func (p *PlacementStore) LoadPlacements(ctx context.Context) []model.Placement {
	records, err := p.store.GetAll(ctx, CollectionPlacements)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load placements, starting empty")
		return []model.Placement{}
	}

	placements := make([]model.Placement, 0, len(records))
	for _, r := range records {
		var placement model.Placement
		if err := sonic.ConfigStd.Unmarshal(r.Value, &placement); err != nil {
			logger.Warn().Err(err).Str("key", r.Key).Msg("Skipping unreadable placement")
			continue
		}
		if err := placement.Validate(); err != nil {
			logger.Warn().Err(err).Str("key", r.Key).Msg("Skipping invalid placement")
			continue
		}
		placements = append(placements, placement)
	}
	return placements
}

// LoadWritingContext returns the persisted writing context, or "" when absent
func (p *PlacementStore) LoadWritingContext(ctx context.Context) string {
	record, found, err := p.store.Get(ctx, CollectionContext, WritingContextKey)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load writing context")
		return ""
	}
	if !found {
		return ""
	}

	var row contextRecord
	if err := sonic.ConfigStd.Unmarshal(record.Value, &row); err != nil {
		logger.Warn().Err(err).Msg("Discarding unreadable writing context")
		return ""
	}
	return row.Value
}

// SavePlacements replaces the persisted placements with the given list
func (p *PlacementStore) SavePlacements(ctx context.Context, placements []model.Placement) error {
	records := make([]Record, 0, len(placements))
	for _, placement := range placements {
		data, err := sonic.ConfigStd.Marshal(placement)
		if err != nil {
			return fmt.Errorf("encode placement %s: %w", placement.ID, err)
		}
		records = append(records, Record{Key: placement.ID, Value: data})
	}
	return p.store.ReplaceAll(ctx, CollectionPlacements, records)
}

// SaveWritingContext stores text as the single writing context row
func (p *PlacementStore) SaveWritingContext(ctx context.Context, text string) error {
	data, err := sonic.ConfigStd.Marshal(contextRecord{Key: WritingContextKey, Value: text})
	if err != nil {
		return fmt.Errorf("encode writing context: %w", err)
	}
	return p.store.Put(ctx, CollectionContext, Record{Key: WritingContextKey, Value: data})
}

// ClearAll removes every placement and the writing context together
func (p *PlacementStore) ClearAll(ctx context.Context) error {
	return p.store.ClearAll(ctx)
}
