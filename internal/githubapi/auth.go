package githubapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
)

// NewInstallationFactory returns a PlatformFactory that authenticates as the
// GitHub App installation a delivery belongs to. The ghinstallation transport
// caches and refreshes installation tokens internally, so the factory is
// cheap to call per delivery.
func NewInstallationFactory(cfg *config.Config, logger *slog.Logger) (core.PlatformFactory, error) {
	appTransport, err := ghinstallation.NewAppsTransportKeyFromFile(http.DefaultTransport, cfg.GitHubAppID, cfg.GitHubPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}

	return func(_ context.Context, installationID int64) (core.Platform, error) {
		if installationID <= 0 {
			return nil, fmt.Errorf("%w: missing installation ID", core.ErrValidation)
		}
		transport := ghinstallation.NewFromAppsTransport(appTransport, installationID)
		gh := github.NewClient(&http.Client{Transport: transport})
		return NewClient(gh, cfg.BotLogin, logger), nil
	}, nil
}

// NewPATClient creates a platform capability authenticated with a personal
// access token. Used by the CLI, where no App installation is available.
func NewPATClient(ctx context.Context, token, botLogin string, logger *slog.Logger) core.Platform {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	gh := github.NewClient(oauth2.NewClient(ctx, ts))
	return NewClient(gh, botLogin, logger)
}
