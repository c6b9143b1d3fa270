package orchestrator

import (
	"context"
	"slices"

	"placement_studio/pkg"
	"placement_studio/src/logger"
	"placement_studio/src/model"
)

// ToggleLiked flips the liked flag of a placement. It reports whether the id was found.
func (s *Session) ToggleLiked(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := slices.IndexFunc(s.placements, func(p model.Placement) bool { return p.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	p := &s.placements[idx]
	p.Liked = !p.Liked
	if p.Liked {
		p.LikedAt = s.clock.Now().UnixMilli()
	} else {
		p.LikedAt = 0
	}
	s.mu.Unlock()

	s.persistPlacements(ctx)
	return true
}

// Remove deletes a placement. It reports whether the id was found.
func (s *Session) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	before := len(s.placements)
	s.placements = slices.DeleteFunc(s.placements, func(p model.Placement) bool { return p.ID == id })
	removed := len(s.placements) != before
	s.mu.Unlock()

	if removed {
		s.persistPlacements(ctx)
	}
	return removed
}

// ClearAll empties the placement list and writing context, and atomically clears the store
func (s *Session) ClearAll(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.placements = nil
	s.writingContext = ""
	ready := s.state == StateReady
	s.mu.Unlock()

	if !ready {
		return
	}
	if err := s.store.ClearAll(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to clear saved placements")
	}
}

// SetWritingContext replaces the writing context and persists it
func (s *Session) SetWritingContext(ctx context.Context, text string) {
	s.mu.Lock()
	s.writingContext = text
	s.mu.Unlock()

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return
	}
	current := s.writingContext
	s.mu.Unlock()

	if err := s.store.SaveWritingContext(ctx, current); err != nil {
		logger.Error().Err(err).Msg("Failed to save writing context")
	}
}

// persistPlacements writes the current list through to the store once the session is Ready.
// The list is captured under persistMu, so the last mutation's list is the last one written.
func (s *Session) persistPlacements(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return
	}
	snapshot := slices.Clone(s.placements)
	s.mu.Unlock()

	if err := s.store.SavePlacements(ctx, snapshot); err != nil {
		logger.Error().Err(err).Int("placements", len(snapshot)).Msg("Failed to save placements")
	}
}

// Placements returns a copy of the current list
func (s *Session) Placements() []model.Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.placements)
}

// WritingContext returns the current writing context
func (s *Session) WritingContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writingContext
}

// Products returns the catalog loaded at startup
func (s *Session) Products() []pkg.ProductInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

func (s *Session) IsGenerating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the message of the last failed batch, or "" after a success
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// CatalogErr returns the catalog load failure, if any
func (s *Session) CatalogErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogErr
}
