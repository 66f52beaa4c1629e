package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/trackdex/internal/server"
	"github.com/desertthunder/trackdex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the proxy until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("assets") {
		cfg.AssetsDir = cmd.String("assets")
	}
	if cmd.IsSet("prefix") {
		cfg.Prefix = cmd.String("prefix")
	}

	if err := r.wire(ctx); err != nil {
		return err
	}
	defer r.Close()

	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		r.logger.Warn("spotify credentials not set; token, track and artist routes will answer MISSING_ENV_VARS",
			"env", []string{shared.EnvClientID, shared.EnvClientSecret})
	}
	if info, err := os.Stat(cfg.AssetsDir); err != nil || !info.IsDir() {
		r.logger.Warn("assets directory not found; app shell requests will 404", "dir", cfg.AssetsDir)
	}

	api := server.NewAPIHandler(server.APIHandlerOpts{
		Prefix:   cfg.Prefix,
		Tokens:   r.tokens,
		Catalog:  r.catalog,
		Features: r.features,
		Logger:   shared.WithLogger(r.logger, "component", "api"),
	})
	router := server.NewRouter(api, os.DirFS(cfg.AssetsDir), r.logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg.Addr(), router, r.logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve failed: %w", err)
	}

	r.logger.Info("server stopped")
	return nil
}
