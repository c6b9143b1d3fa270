package model

import (
	"fmt"
	"strconv"
	"strings"
)

// PlacementIDPrefix prefixes every generated placement identifier
const PlacementIDPrefix = "gen-"

// SceneType classifies how a scene relates to what the user liked before
type SceneType string

const (
	SceneContinuation SceneType = "continuation" // derived from a liked prior scene
	SceneExploration  SceneType = "exploration"  // novel direction
)

// Valid reports whether t is a known scene type
func (t SceneType) Valid() bool {
	return t == SceneContinuation || t == SceneExploration
}

// Product is the product reference embedded in a placement
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Placement is a generated scene composited with a product.
// The in-memory list owned by the orchestrator is the source of truth;
// persisted copies are a mirror of it.
type Placement struct {
	ID            string    `json:"id"`
	SceneID       string    `json:"sceneId"`
	Description   string    `json:"description"`
	Mood          string    `json:"mood"`
	SceneType     SceneType `json:"sceneType"`
	SceneImage    string    `json:"sceneImage"`
	ComposedImage string    `json:"composedImage"`
	Mask          string    `json:"mask"`
	MimeType      string    `json:"mimeType"`
	Product       Product   `json:"product"`
	PlacementHint string    `json:"placementHint,omitempty"`
	Rationale     string    `json:"rationale,omitempty"`
	Liked         bool      `json:"liked"`
	LikedAt       int64     `json:"likedAt,omitempty"` // unix millis, zero when not liked
	CreatedAt     int64     `json:"createdAt"`         // unix millis
}

// FormatPlacementID renders the identifier for sequence number n
func FormatPlacementID(n int) string {
	return PlacementIDPrefix + strconv.Itoa(n)
}

// ParsePlacementID extracts the numeric suffix from a placement identifier
func ParsePlacementID(id string) (int, error) {
	suffix, ok := strings.CutPrefix(id, PlacementIDPrefix)
	if !ok {
		return 0, fmt.Errorf("placement id %q missing %q prefix", id, PlacementIDPrefix)
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("placement id %q has invalid numeric suffix", id)
	}
	return n, nil
}

// Validate checks the fields a restored placement must carry
func (p Placement) Validate() error {
	if _, err := ParsePlacementID(p.ID); err != nil {
		return err
	}
	if !p.SceneType.Valid() {
		return fmt.Errorf("placement %s has unknown scene type %q", p.ID, p.SceneType)
	}
	return nil
}

// MaxPlacementSeq returns the largest numeric suffix among the given placements.
// Identifiers that do not parse are ignored.
func MaxPlacementSeq(placements []Placement) int {
	highest := 0
	for _, p := range placements {
		if n, err := ParsePlacementID(p.ID); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}
