package model

import "encoding/json"

// Config is a named bundle of generation rules for an ephemeral canvas.
// Only Name and Slug are interpreted here; every other section is carried as-is.
type Config struct {
	Name        string          `json:"name"`
	Slug        string          `json:"slug,omitempty"`
	Description string          `json:"description,omitempty"`
	CardSchema  json.RawMessage `json:"cardSchema,omitempty"`
	CardTheme   json.RawMessage `json:"cardTheme,omitempty"`
	CanvasTheme json.RawMessage `json:"canvasTheme,omitempty"`
	Physics     json.RawMessage `json:"physics,omitempty"`
	Directives  []string        `json:"directives,omitempty"`
	SeedContent json.RawMessage `json:"seedContent,omitempty"`
	Models      json.RawMessage `json:"models,omitempty"`
}

// SlugRegistryEntry is a saved config addressed by its slug.
// CreatedAt survives updates to the same slug.
type SlugRegistryEntry struct {
	Slug      string `json:"slug"`
	Config    Config `json:"config"`
	CreatedAt int64  `json:"createdAt"` // unix millis
}
