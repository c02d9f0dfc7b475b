// Package app wires the configured components together for the CLI.
package app

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"execcheck/internal/config"
	"execcheck/pkg/core/cache"
	"execcheck/pkg/core/companies"
	"execcheck/pkg/core/edgar"
	"execcheck/pkg/core/fiscal"
	"execcheck/pkg/core/metrics"
	"execcheck/pkg/core/transcripts"
	"execcheck/pkg/core/verify"
)

// App holds the long-lived components shared by all commands.
type App struct {
	Config      *config.Config
	Log         zerolog.Logger
	Directory   *companies.Directory
	Registry    *metrics.Registry
	Calendar    *fiscal.Calendar
	Cache       cache.Cache
	Edgar       *edgar.Client
	Engine      *verify.Engine
	Transcripts transcripts.Provider
}

// NewApp constructs the component graph from configuration.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	dir, err := companies.NewDirectory()
	if err != nil {
		return nil, fmt.Errorf("load company directory: %w", err)
	}

	reg, err := metrics.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("build metric registry: %w", err)
	}

	cal := fiscal.NewCalendar(dir)

	store, err := cache.NewLayered(filepath.Join(cfg.Cache.Dir, "filings.db"), cfg.Cache.MemoryTTL)
	if err != nil {
		return nil, fmt.Errorf("open filing cache: %w", err)
	}

	client := edgar.NewClient(dir, cal, reg, store,
		edgar.WithBaseURL(cfg.SEC.BaseURL),
		edgar.WithUserAgent(cfg.SEC.UserAgent),
		edgar.WithRateLimit(cfg.SEC.RatePerSecond, 1),
		edgar.WithLogger(logger),
	)

	calls := transcripts.NewEarningsCallClient(store, cfg.Transcripts.APIKey, logger)
	if cfg.Transcripts.BaseURL != "" {
		calls.SetBaseURL(cfg.Transcripts.BaseURL)
	}

	return &App{
		Config:      cfg,
		Log:         logger,
		Directory:   dir,
		Registry:    reg,
		Calendar:    cal,
		Cache:       store,
		Edgar:       client,
		Engine:      verify.NewEngine(client, reg, logger),
		Transcripts: calls,
	}, nil
}

// Close releases the cache's disk layer.
func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Log.Warn().Err(err).Msg("cache close failed")
		}
	}
}
