// Package orchestrator coordinates generation batches: it restores saved state,
// composes pipeline requests, and writes every list change through to storage.
package orchestrator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"placement_studio/internal/services"
	"placement_studio/pkg"
	"placement_studio/src/logger"
	"placement_studio/src/model"
	"placement_studio/src/pipeline"
	"placement_studio/src/storage"
)

var (
	ErrNotReady             = errors.New("session is still loading")
	ErrGenerationInProgress = errors.New("a generation batch is already running")
	ErrNoProducts           = errors.New("no products available")
	ErrCatalogUnavailable   = errors.New("product catalog unavailable")
)

// State is the load state of a session
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Catalog supplies the products a batch may place
type Catalog interface {
	Load(ctx context.Context, source string) error
	Products() []pkg.ProductInfo
	PriceOf(id string) (services.Pricing, bool)
}

// CostLedger records the spend of successful batches
type CostLedger interface {
	AddSessionCost(ctx context.Context, id string, cost *float64) error
}

// Session owns the in-memory placement list and writing context for one UI context.
// Writes to the store are suppressed until LoadInitialState has finished.
type Session struct {
	mu             sync.Mutex
	state          State
	placements     []model.Placement
	writingContext string
	seq            int
	generating     bool
	lastErr        string
	catalogErr     error
	products       []pkg.ProductInfo
	rng            *rand.Rand

	// persistMu orders write-through so the newest list is written last
	persistMu sync.Mutex

	catalog   Catalog
	store     *storage.PlacementStore
	pipeline  pipeline.Pipeline
	rules     model.GenerationConfig
	clock     clockwork.Clock
	ledger    CostLedger
	ledgerKey string
}

// Option configures a Session
type Option func(*Session)

// WithClock sets the clock used for creation and like timestamps
func WithClock(clock clockwork.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithRandSource sets the source used to pick batch sizes
func WithRandSource(src rand.Source) Option {
	return func(s *Session) { s.rng = rand.New(src) }
}

// WithCostLedger records the cost of every successful batch against sessionID
func WithCostLedger(ledger CostLedger, sessionID string) Option {
	return func(s *Session) {
		s.ledger = ledger
		s.ledgerKey = sessionID
	}
}

// NewSession creates a session in the Uninitialized state
func NewSession(catalog Catalog, store *storage.PlacementStore, p pipeline.Pipeline, rules model.GenerationConfig, opts ...Option) *Session {
	s := &Session{
		catalog:  catalog,
		store:    store,
		pipeline: p,
		rules:    rules,
		clock:    clockwork.NewRealClock(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadInitialState loads the catalog and the saved placements and writing context in parallel.
// The session becomes Ready once both finish, whether or not either failed; a catalog failure
// is returned wrapping ErrCatalogUnavailable and leaves the catalog empty.
func (s *Session) LoadInitialState(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return nil
	}
	s.state = StateLoading
	s.mu.Unlock()

	var (
		products       []pkg.ProductInfo
		catalogErr     error
		placements     []model.Placement
		writingContext string
	)

	var g errgroup.Group
	g.Go(func() error {
		if err := s.catalog.Load(ctx, s.rules.CatalogPath); err != nil {
			catalogErr = fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
			logger.Error().Err(err).Str("source", s.rules.CatalogPath).Msg("Failed to load product catalog")
			return nil
		}
		products = s.catalog.Products()
		return nil
	})
	g.Go(func() error {
		placements = s.store.LoadPlacements(ctx)
		writingContext = s.store.LoadWritingContext(ctx)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.catalogErr = catalogErr
	s.placements = placements
	s.writingContext = writingContext
	s.seq = model.MaxPlacementSeq(placements)
	s.state = StateReady

	logger.Info().
		Int("products", len(products)).
		Int("placements", len(placements)).
		Int("next_id", s.seq+1).
		Msg("Session ready")
	return catalogErr
}

// GenerateBatch runs one pipeline call and appends the resulting placements.
// customContext overrides the stored writing context when it is not blank.
// On pipeline failure the list is left untouched and LastError describes the failure.
func (s *Session) GenerateBatch(ctx context.Context, customContext string) ([]model.Placement, error) {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return nil, ErrGenerationInProgress
	}
	if s.state != StateReady {
		s.mu.Unlock()
		return nil, ErrNotReady
	}
	if len(s.products) == 0 {
		s.lastErr = "No products available"
		s.mu.Unlock()
		return nil, ErrNoProducts
	}
	s.generating = true
	s.lastErr = ""
	req := s.buildRequest(customContext)
	s.mu.Unlock()

	logger.Info().
		Int("scene_count", req.SceneCount).
		Int("liked_scenes", len(req.LikedScenes)).
		Float64("continuation_ratio", req.ContinuationRatio).
		Msg("Requesting generation batch")

	resp, err := s.pipeline.Run(ctx, req)
	if err == nil && resp == nil {
		err = fmt.Errorf("%w: empty response", pipeline.ErrPipeline)
	}
	if err != nil {
		s.mu.Lock()
		s.generating = false
		s.lastErr = "Generation failed: " + err.Error()
		s.mu.Unlock()
		logger.Error().Err(err).Msg("Generation batch failed")
		return nil, err
	}

	s.mu.Lock()
	created := make([]model.Placement, 0, len(resp.Placements))
	for _, result := range resp.Placements {
		s.seq++
		created = append(created, s.normalize(s.seq, result))
	}
	s.placements = append(s.placements, created...)
	s.generating = false
	s.mu.Unlock()

	logger.Info().Int("placements", len(created)).Msg("Generation batch complete")

	s.persistPlacements(ctx)
	s.recordCost(ctx, resp.CostUSD)
	return created, nil
}

// buildRequest composes a pipeline request; callers hold s.mu
func (s *Session) buildRequest(customContext string) pkg.PipelineRequest {
	writingContext := s.writingContext
	if strings.TrimSpace(customContext) != "" {
		writingContext = customContext
	}

	seeds := s.likedSeeds()
	ratio := 0.0
	if len(seeds) > 0 {
		ratio = s.rules.ContinuationRatio
	}

	return pkg.PipelineRequest{
		WritingContext:    writingContext,
		Products:          slices.Clone(s.products),
		LikedScenes:       seeds,
		SceneCount:        s.rules.MinBatch + s.rng.IntN(s.rules.MaxBatch-s.rules.MinBatch+1),
		ContinuationRatio: ratio,
	}
}

// likedSeeds returns up to LikedSeedLimit liked placements, most recently liked first
func (s *Session) likedSeeds() []pkg.LikedScene {
	var liked []model.Placement
	for _, p := range s.placements {
		if p.Liked {
			liked = append(liked, p)
		}
	}
	slices.SortStableFunc(liked, func(a, b model.Placement) int {
		return cmp.Compare(b.LikedAt, a.LikedAt)
	})
	if len(liked) > s.rules.LikedSeedLimit {
		liked = liked[:s.rules.LikedSeedLimit]
	}

	seeds := make([]pkg.LikedScene, 0, len(liked))
	for _, p := range liked {
		seeds = append(seeds, pkg.LikedScene{
			Description: p.Description,
			Mood:        p.Mood,
			ProductName: p.Product.Name,
		})
	}
	return seeds
}

func (s *Session) normalize(seq int, r pkg.PlacementResult) model.Placement {
	sceneType := model.SceneType(r.SceneType)
	if !sceneType.Valid() {
		sceneType = model.SceneExploration
	}

	product := model.Product{
		ID:          r.Product.ID,
		Name:        r.Product.Name,
		Brand:       r.Product.Brand,
		ImageURL:    r.Product.ImageURL,
		Description: r.Product.Description,
	}
	if pricing, ok := s.catalog.PriceOf(r.Product.ID); ok {
		product.Price = pricing.Price
		product.Currency = pricing.Currency
	}

	return model.Placement{
		ID:            model.FormatPlacementID(seq),
		SceneID:       r.SceneID,
		Description:   r.SceneDescription,
		Mood:          r.Mood,
		SceneType:     sceneType,
		SceneImage:    r.SceneImage,
		ComposedImage: r.ComposedImage,
		Mask:          r.Mask,
		MimeType:      r.MimeType,
		Product:       product,
		PlacementHint: r.PlacementHint,
		Rationale:     r.Rationale,
		CreatedAt:     s.clock.Now().UnixMilli(),
	}
}

func (s *Session) recordCost(ctx context.Context, cost *float64) {
	if s.ledger == nil || s.ledgerKey == "" || cost == nil {
		return
	}
	if err := s.ledger.AddSessionCost(ctx, s.ledgerKey, cost); err != nil {
		logger.Error().Err(err).Str("session", s.ledgerKey).Msg("Failed to record generation cost")
	}
}
