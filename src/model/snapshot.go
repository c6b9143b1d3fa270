package model

import "encoding/json"

// CanvasState is the restorable state of a canvas
type CanvasState struct {
	Cards           []json.RawMessage `json:"cards"`
	SavedCards      []json.RawMessage `json:"savedCards"`
	UserComposition string            `json:"userComposition"`
}

// Snapshot is a named, timestamped (config, state) pair
type Snapshot struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Timestamp int64       `json:"timestamp"` // unix millis, refreshed on every save
	Config    Config      `json:"config"`
	State     CanvasState `json:"state"`
}

// SnapshotMeta is the listing projection of a snapshot
type SnapshotMeta struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Timestamp  int64  `json:"timestamp"`
	CardCount  int    `json:"cardCount"` // active + saved cards
	ConfigName string `json:"configName"`
}

// SessionSnapshot is a snapshot that also tracks generation spend
type SessionSnapshot struct {
	Snapshot
	TotalCostUSD    float64 `json:"totalCostUsd"`
	GenerationCount int     `json:"generationCount"`
}

// SessionCost is the accumulated spend of a session
type SessionCost struct {
	TotalCostUSD    float64 `json:"totalCostUsd"`
	GenerationCount int     `json:"generationCount"`
}
