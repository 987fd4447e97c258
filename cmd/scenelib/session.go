package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nikbrunner/scenelib/internal/events"
	"github.com/nikbrunner/scenelib/internal/library"
	"github.com/nikbrunner/scenelib/internal/logging"
	"github.com/nikbrunner/scenelib/internal/metrics"
	"github.com/nikbrunner/scenelib/internal/model"
	"github.com/nikbrunner/scenelib/internal/prefs"
	"github.com/nikbrunner/scenelib/internal/source"
	"github.com/nikbrunner/scenelib/internal/storage"
	"github.com/nikbrunner/scenelib/internal/tags"
)

// session is everything one CLI invocation works with.
type session struct {
	cfg    *storage.Config
	worlds *storage.WorldStorage
	store  *model.Store
	flags  storage.FlagStore
	lib    *library.Library
	logger *log.Logger
}

func openSession(ctx context.Context, configPath, logLevel, metricsPath string) (*session, error) {
	if configPath == "" {
		p, err := storage.DefaultConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
		configPath = p
	}
	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger := logging.Stderr(logLevel)
	if metricsPath != "" {
		cfg.MetricsPath = metricsPath
	}

	worlds := storage.NewWorldStorage(cfg.WorldPath)
	store, err := worlds.Load()
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}

	flags, err := storage.OpenFlagStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open flag store: %w", err)
	}

	world := source.NewWorld(store)
	packs := make([]*source.Pack, 0, len(cfg.Packs))
	for _, pc := range cfg.Packs {
		packs = append(packs, source.NewPack(pc.ID, source.FileFetcher{Path: pc.Path}, logger))
	}
	registry := source.NewRegistry(world, packs, logger)
	for id, err := range registry.Prefetch(ctx) {
		logger.Warn("pack unavailable", "source", id, "err", err)
	}

	p, err := prefs.Load(ctx, flags)
	if err != nil {
		closeFlags(flags)
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	catalog, err := tags.Load(ctx, world, flags, logger)
	if err != nil {
		closeFlags(flags)
		return nil, fmt.Errorf("load tags: %w", err)
	}

	lib := library.New(library.Params{
		Registry: registry,
		Catalog:  catalog,
		Prefs:    p,
		Bus:      events.NewBus(),
		Logger:   logger,
		PageSize: cfg.PageSize,
	})
	logger.Debug("session opened", "config", configPath, "world", cfg.WorldPath, "packs", len(packs))

	return &session{cfg: cfg, worlds: worlds, store: store, flags: flags, lib: lib, logger: logger}, nil
}

// saveWorld writes the world collection back after a mutation.
func (s *session) saveWorld() error {
	if err := s.worlds.Save(s.store); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	return nil
}

func (s *session) Close() {
	s.lib.Close()
	closeFlags(s.flags)
	if s.cfg.MetricsPath == "" {
		return
	}
	if err := metrics.WriteTextfile(s.cfg.MetricsPath); err != nil {
		s.logger.Warn("write metrics", "path", s.cfg.MetricsPath, "err", err)
		return
	}
	s.logger.Debug("wrote metrics", "path", s.cfg.MetricsPath)
}

func closeFlags(fs storage.FlagStore) {
	if c, ok := fs.(io.Closer); ok {
		_ = c.Close()
	}
}
