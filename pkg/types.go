package pkg

// Generation Pipeline wire types

// ProductInfo is the product description sent to the pipeline for selection and composition
type ProductInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`

	// Advertiser targeting hints, passed through untouched
	TargetDemographics []string `json:"target_demographics"` // e.g. ["18-24", "25-34"]
	TargetInterests    []string `json:"target_interests"`    // e.g. ["Fashion", "Travel"]
	ScenePreferences   []string `json:"scene_preferences"`   // e.g. ["Interior", "Café"]
	SemanticFilter     string   `json:"semantic_filter,omitempty"`
}

// LikedScene is a liked placement reduced to what the pipeline needs to continue from it
type LikedScene struct {
	Description string `json:"description"`
	Mood        string `json:"mood"`
	ProductName string `json:"product_name,omitempty"`
}

// PipelineRequest asks the pipeline for one batch of placements
type PipelineRequest struct {
	WritingContext    string        `json:"writing_context"`
	Products          []ProductInfo `json:"products"`
	LikedScenes       []LikedScene  `json:"liked_scenes"`
	SceneCount        int           `json:"scene_count"`
	ContinuationRatio float64       `json:"continuation_ratio"` // 0.0-1.0
}

// PlacementResult is a single generated scene composited with a product
type PlacementResult struct {
	SceneID          string      `json:"scene_id"`
	SceneDescription string      `json:"scene_description"`
	Mood             string      `json:"mood"`
	SceneType        string      `json:"scene_type"`    // "continuation" or "exploration"
	SceneImage       string      `json:"scene_image"`    // base64, scene only
	ComposedImage    string      `json:"composed_image"` // base64, scene with product
	Mask             string      `json:"mask"`           // base64, white = product
	MimeType         string      `json:"mime_type"`
	Product          ProductInfo `json:"product"`
	PlacementHint    string      `json:"placement_hint"`
	Rationale        string      `json:"rationale,omitempty"`
}

// PipelineResponse carries every placement produced by one pipeline run
type PipelineResponse struct {
	Placements []PlacementResult `json:"placements"`
	Stats      map[string]any    `json:"stats,omitempty"`
	CostUSD    *float64          `json:"cost_usd,omitempty"`
}
