package snapshot

import (
	"context"
	"math"

	"placement_studio/src/logger"
	"placement_studio/src/model"
)

// SaveSession writes a session the way SaveSnapshot writes a snapshot.
// The accumulated cost of an existing session is carried over unchanged.
func (s *Store) SaveSession(ctx context.Context, name string, config model.Config, state model.CanvasState, existingID string) (model.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.sessions.Load(ctx)
	session := model.SessionSnapshot{Snapshot: s.stamp(name, config, state, existingID)}
	if prev, ok := entries[session.ID]; ok {
		session.TotalCostUSD = prev.TotalCostUSD
		session.GenerationCount = prev.GenerationCount
	}

	entries[session.ID] = session
	if err := s.sessions.Save(ctx, entries); err != nil {
		return model.SessionSnapshot{}, err
	}
	return session, nil
}

// ListSessions returns session metadata, newest first
func (s *Store) ListSessions(ctx context.Context) []model.SnapshotMeta {
	return listMeta(s.sessions.Raw(ctx), SessionsKey)
}

// LoadSession returns the session with id, or nil when unknown
func (s *Store) LoadSession(ctx context.Context, id string) *model.SessionSnapshot {
	session, ok := s.sessions.Load(ctx)[id]
	if !ok {
		return nil
	}
	return &session
}

// DeleteSession removes id; unknown ids are ignored
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.sessions.Load(ctx)
	if _, ok := entries[id]; !ok {
		return nil
	}
	delete(entries, id)
	return s.sessions.Save(ctx, entries)
}

// AddSessionCost records one cost-bearing generation against a session.
// A nil, negative or non-finite cost and an unknown session are no-ops;
// otherwise the count grows by exactly one.
func (s *Store) AddSessionCost(ctx context.Context, id string, cost *float64) error {
	if cost == nil {
		return nil
	}
	if *cost < 0 || math.IsNaN(*cost) || math.IsInf(*cost, 0) {
		logger.Warn().Str("session", id).Float64("cost", *cost).Msg("Ignoring invalid session cost")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.sessions.Load(ctx)
	session, ok := entries[id]
	if !ok {
		logger.Debug().Str("session", id).Msg("Ignoring cost for unknown session")
		return nil
	}

	session.TotalCostUSD += *cost
	session.GenerationCount++
	entries[id] = session
	return s.sessions.Save(ctx, entries)
}

// GetSessionCost returns the accumulated spend of a session, or nil when unknown
func (s *Store) GetSessionCost(ctx context.Context, id string) *model.SessionCost {
	session, ok := s.sessions.Load(ctx)[id]
	if !ok {
		return nil
	}
	return &model.SessionCost{
		TotalCostUSD:    session.TotalCostUSD,
		GenerationCount: session.GenerationCount,
	}
}
