package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/jonboulle/clockwork"

	"placement_studio/internal/config"
	"placement_studio/internal/services"
	kvstore "placement_studio/internal/storage"
	"placement_studio/src"
	"placement_studio/src/logger"
	"placement_studio/src/model"
	"placement_studio/src/orchestrator"
	"placement_studio/src/pipeline"
	"placement_studio/src/registry"
	"placement_studio/src/snapshot"
	"placement_studio/src/storage"
)

// app holds the backends shared by every command
type app struct {
	ephemeral bool
	sessionID string

	cfg     *src.Config
	rules   model.GenerationConfig
	clock   clockwork.Clock
	kv      kvstore.KeyValue
	objects storage.ObjectStore
	closeKV func() error
}

func (a *app) init(ctx context.Context) error {
	cfg, err := src.LoadConfig()
	if err != nil {
		return err
	}
	if err := logger.InitLogger(cfg.LogConfig); err != nil {
		return err
	}

	rules, err := config.LoadConfig(cfg.StudioConfig)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.rules = rules
	a.clock = clockwork.NewRealClock()
	a.closeKV = func() error { return nil }

	if a.ephemeral {
		a.kv = kvstore.NewMemoryKV(cfg.StoreConfig.QuotaBytes)
		a.objects = storage.NewMemoryStore()
		return nil
	}

	a.objects = storage.NewSQLiteStore(cfg.StoreConfig.DBPath)
	return a.openKV(ctx)
}

func (a *app) openKV(ctx context.Context) error {
	store := a.cfg.StoreConfig
	switch store.KVBackend {
	case "memory":
		a.kv = kvstore.NewMemoryKV(store.QuotaBytes)
	case "file", "":
		a.kv = kvstore.NewFileKV(store.KVPath, store.QuotaBytes)
	case "redis":
		redisKV, err := kvstore.NewRedisKV(ctx, store.RedisURL, store.KeyPrefix)
		if err != nil {
			return err
		}
		a.kv = redisKV
		a.closeKV = redisKV.Close
	default:
		return fmt.Errorf("unknown key-value backend %q", store.KVBackend)
	}
	logger.Debug().Str("backend", store.KVBackend).Msg("Key-value store ready")
	return nil
}

func (a *app) close() {
	if a.closeKV == nil {
		return
	}
	if err := a.closeKV(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close key-value store")
	}
}

func (a *app) registry() *registry.Registry {
	return registry.New(a.kv, a.clock)
}

func (a *app) snapshots() *snapshot.Store {
	return snapshot.New(a.kv, a.clock)
}

// session builds an orchestrator session and loads its saved state
func (a *app) session(ctx context.Context) *orchestrator.Session {
	var opts []orchestrator.Option
	opts = append(opts, orchestrator.WithClock(a.clock))
	if a.sessionID != "" {
		opts = append(opts, orchestrator.WithCostLedger(a.snapshots(), a.sessionID))
	}

	s := orchestrator.NewSession(
		services.NewProductService(),
		storage.NewPlacementStore(a.objects),
		pipeline.NewClient(a.cfg.PipelineConfig),
		a.rules,
		opts...,
	)
	if err := s.LoadInitialState(ctx); err != nil {
		logger.Warn().Err(err).Msg("Continuing without a product catalog")
	}
	return s
}

// readJSON decodes a JSON file into v
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := sonic.ConfigStd.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
