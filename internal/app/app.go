// Package app initializes and orchestrates the main components of the
// repo-butler application: configuration, rule tables, the pipeline, the
// worker pool, and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/repo-butler/internal/ai"
	"github.com/sevigo/repo-butler/internal/bot"
	"github.com/sevigo/repo-butler/internal/classify"
	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/dispatch"
	"github.com/sevigo/repo-butler/internal/githubapi"
	"github.com/sevigo/repo-butler/internal/jobs"
	"github.com/sevigo/repo-butler/internal/server"

	"github.com/sevigo/repo-butler/internal/core"
)

// App holds the main application components.
type App struct {
	cfg        *config.Config
	server     *server.Server
	dispatcher core.JobDispatcher
	reviewer   *ai.Reviewer
	logger     *slog.Logger
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing repo-butler",
		"max_workers", cfg.MaxWorkers,
		"security_scanning", cfg.SecurityScanning,
		"welcome_contributors", cfg.WelcomeNewContributors,
		"ai_reviews", cfg.EnableAIReviews,
	)

	rules := config.DefaultRules()
	if cfg.RulesPath != "" {
		loaded, err := config.LoadRules(cfg.RulesPath)
		if err != nil && !errors.Is(err, config.ErrRulesNotFound) {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		rules = loaded
	}

	platforms, err := githubapi.NewInstallationFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App factory: %w", err)
	}

	var reviewer *ai.Reviewer
	if cfg.EnableAIReviews {
		reviewer, err = ai.NewReviewer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI reviewer: %w", err)
		}
	}

	registry := classify.NewRegistry(rules, cfg.SecurityScanning, logger)
	actionDispatcher := dispatch.NewDispatcher(cfg.RetryAttempts, cfg.RetryBaseDelay, logger)
	handler := bot.NewHandler(cfg, registry, actionDispatcher, platforms, reviewer, logger)

	jobDispatcher := jobs.NewDispatcher(handler, cfg.MaxWorkers, logger)
	srv := server.NewServer(cfg, jobDispatcher, logger)

	return &App{
		cfg:        cfg,
		server:     srv,
		dispatcher: jobDispatcher,
		reviewer:   reviewer,
		logger:     logger,
	}, nil
}

// Start runs the HTTP server and blocks until shutdown or error.
func (a *App) Start() error {
	return a.server.Start()
}

// Stop shuts down the server, drains the worker pool, and releases clients.
func (a *App) Stop() error {
	err := a.server.Stop()
	a.dispatcher.Stop()
	if a.reviewer != nil {
		if cerr := a.reviewer.Close(); cerr != nil {
			a.logger.Warn("failed to close AI reviewer", "error", cerr)
		}
	}
	return err
}
