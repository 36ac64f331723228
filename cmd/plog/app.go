package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/docqmentary/plog/internal/api"
	"github.com/docqmentary/plog/internal/collab"
	"github.com/docqmentary/plog/internal/config"
	"github.com/docqmentary/plog/internal/dashboard"
	"github.com/docqmentary/plog/internal/posts"
	"github.com/docqmentary/plog/internal/registry"
	"github.com/docqmentary/plog/internal/session"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	dataDir    string
}

// app bundles the wired client components for one command invocation.
type app struct {
	cfg      *config.Config
	sessions *session.Store
	gateway  *api.Client
	registry *registry.Client
	collab   *collab.Manager
	control  *dashboard.Controller
	fetcher  *posts.Fetcher

	cache *session.SQLiteCache
}

// newApp loads configuration, restores the persisted session, and wires the
// gateway, registry, collaborator manager, and dashboard controller.
func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(opts.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	cache, err := session.OpenCache(filepath.Join(opts.dataDir, "session.db"))
	if err != nil {
		return nil, fmt.Errorf("opening session cache: %w", err)
	}

	sessions := session.NewStore(cache)
	sessions.Restore(ctx)

	gateway := api.NewClient(cfg.API.BaseURL)
	reg := registry.NewClient(gateway)
	mgr := collab.NewManager(gateway)

	return &app{
		cfg:      cfg,
		sessions: sessions,
		gateway:  gateway,
		registry: reg,
		collab:   mgr,
		control:  dashboard.NewController(sessions, reg, mgr),
		fetcher:  posts.NewFetcher(cfg.Fetch.FeedBaseURL, time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second),
		cache:    cache,
	}, nil
}

// Close releases the session cache.
func (a *app) Close() error {
	return a.cache.Close()
}

// requireSession fails when no one is signed in.
func (a *app) requireSession() error {
	if a.sessions.Current() == nil {
		return fmt.Errorf("not signed in; run \"plog login\" first")
	}
	return nil
}

// commandContext returns the cobra command's context, falling back to
// context.Background.
func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
