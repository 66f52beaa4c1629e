package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/trackdex/internal/models"
	"github.com/desertthunder/trackdex/internal/repositories"
	"github.com/desertthunder/trackdex/internal/server"
	"github.com/desertthunder/trackdex/internal/services"
	"github.com/desertthunder/trackdex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	tokens     services.TokenProvider
	catalog    server.Catalog
	features   server.FeatureSource
	cache      models.TokenCache
	closers    []io.Closer
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Collaborators left nil are built from Config on first use.
type RunnerOpts struct {
	Config     *shared.Config
	Tokens     services.TokenProvider
	Catalog    server.Catalog
	Features   server.FeatureSource
	Cache      models.TokenCache
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		tokens:     opts.Tokens,
		catalog:    opts.Catalog,
		features:   opts.Features,
		cache:      opts.Cache,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, tokenCommand, trackCommand, artistCommand, featuresCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Configure is the root Before hook: it loads .env files, resolves the config file and applies the log level.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := shared.LoadDotEnv(cmd.String("env-file")); err != nil {
		return ctx, err
	}

	config, err := shared.ResolveConfig(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	r.config = config

	level := config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

// wire builds any collaborator that was not injected.
func (r *Runner) wire(ctx context.Context) error {
	if r.cache == nil {
		cache, err := r.openCache(ctx)
		if err != nil {
			return err
		}
		r.cache = cache
	}

	if r.tokens == nil {
		r.tokens = services.NewTokenBroker(services.TokenBrokerOpts{
			ClientID:     r.config.Credentials.Spotify.ClientID,
			ClientSecret: r.config.Credentials.Spotify.ClientSecret,
			TokenURL:     r.config.Upstream.SpotifyTokenURL,
			HTTPClient:   &http.Client{Transport: r.httpClient.Transport, Timeout: r.config.Upstream.Timeout()},
			Cache:        r.cache,
			Logger:       shared.WithLogger(r.logger, "component", "tokens"),
		})
	}

	if r.catalog == nil {
		r.catalog = services.NewSpotifyService(services.SpotifyOpts{
			BaseURL:    r.config.Upstream.SpotifyAPIURL,
			Tokens:     r.tokens,
			HTTPClient: r.httpClient,
			Timeout:    r.config.Upstream.Timeout(),
			Logger:     shared.WithLogger(r.logger, "component", "spotify"),
		})
	}

	if r.features == nil {
		fetcher := services.NewFetcher(services.FetcherOpts{
			HTTPClient:   r.httpClient,
			MaxAttempts:  r.config.Retry.MaxAttempts,
			InitialDelay: r.config.Retry.InitialDelay(),
			Timeout:      r.config.Upstream.Timeout(),
			RateLimit:    r.config.Retry.RateLimit,
			Logger:       shared.WithLogger(r.logger, "component", "reccobeats"),
		})
		r.features = services.NewReccoBeatsService(r.config.Upstream.ReccoBeatsURL, fetcher)
	}

	return nil
}

// openCache selects the token cache named by the cache driver.
func (r *Runner) openCache(ctx context.Context) (models.TokenCache, error) {
	switch r.config.Cache.Driver {
	case "none":
		return services.NoopTokenCache{}, nil
	case "sqlite":
		repo, err := r.openTokenRepository(ctx)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return services.NewMemoryTokenCache(), nil
	}
}

// openTokenRepository opens the configured database, runs migrations and registers it for Close.
func (r *Runner) openTokenRepository(ctx context.Context) (*repositories.TokenRepository, error) {
	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open token cache: %w", err)
	}
	r.closers = append(r.closers, db)
	return repositories.NewTokenRepository(db), nil
}

// Close releases resources opened by wire.
func (r *Runner) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
