package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/trackdex/internal/repositories"
	"github.com/desertthunder/trackdex/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheClear deletes every token from the SQLite cache.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.tokenRepository(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	n, err := repo.Clear(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("token cache cleared", "tokens", n)
	return r.writePlain("✓ Removed %d cached token(s)\n", n)
}

// CachePurge deletes expired tokens from the SQLite cache.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.tokenRepository(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	n, err := repo.PurgeExpired(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("expired tokens purged", "tokens", n)
	return r.writePlain("✓ Purged %d expired token(s)\n", n)
}

// tokenRepository returns the injected SQLite cache or opens the configured one.
func (r *Runner) tokenRepository(ctx context.Context) (*repositories.TokenRepository, error) {
	if repo, ok := r.cache.(*repositories.TokenRepository); ok {
		return repo, nil
	}
	if r.config.Cache.Driver != "sqlite" {
		return nil, fmt.Errorf("%w: cache.driver is %q", shared.ErrCacheDisabled, r.config.Cache.Driver)
	}
	return r.openTokenRepository(ctx)
}
