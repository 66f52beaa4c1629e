package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/trackdex/internal/models"
	"github.com/desertthunder/trackdex/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const spotifyTokenURL = "https://accounts.spotify.com/api/token"

// TokenProvider yields a bearer credential for the primary upstream.
type TokenProvider interface {
	Token(ctx context.Context) (*models.Token, error)
}

// compile-time interface assertion
var _ TokenProvider = (*TokenBroker)(nil)

// TokenBroker obtains Spotify access tokens with the client-credentials flow.
type TokenBroker struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	cache        models.TokenCache
	logger       *log.Logger
	now          func() time.Time
}

// TokenBrokerOpts configures a [TokenBroker].
type TokenBrokerOpts struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	HTTPClient   *http.Client
	Cache        models.TokenCache
	Logger       *log.Logger
}

// NewTokenBroker creates a broker. Empty credentials are accepted here and reported on each Token call.
func NewTokenBroker(opts TokenBrokerOpts) *TokenBroker {
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryTokenCache()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &TokenBroker{
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		tokenURL:     opts.TokenURL,
		httpClient:   opts.HTTPClient,
		cache:        opts.Cache,
		logger:       opts.Logger,
		now:          time.Now,
	}
}

// Token returns a cached token while it is valid and otherwise exchanges the client credentials for a new one.
func (b *TokenBroker) Token(ctx context.Context) (*models.Token, error) {
	if b.clientID == "" || b.clientSecret == "" {
		return nil, fmt.Errorf("%w: %s and %s must be set", shared.ErrMissingCredentials, shared.EnvClientID, shared.EnvClientSecret)
	}

	cached, err := b.cache.Get(ctx, b.clientID)
	if err != nil {
		b.logger.Warn("token cache read failed", "error", err)
	} else if cached.Valid(b.now()) {
		return cached, nil
	}

	config := &clientcredentials.Config{
		ClientID:     b.clientID,
		ClientSecret: b.clientSecret,
		TokenURL:     b.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	t, err := config.Token(context.WithValue(ctx, oauth2.HTTPClient, b.httpClient))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			return nil, fmt.Errorf("%w: Spotify token endpoint returned status %d", shared.ErrAuthFailed, status)
		}
		return nil, fmt.Errorf("token request failed: %w", err)
	}

	token := &models.Token{AccessToken: t.AccessToken, TokenType: "Bearer", Expiry: t.Expiry}
	if err := b.cache.Set(ctx, b.clientID, token); err != nil {
		b.logger.Warn("token cache write failed", "error", err)
	}

	b.logger.Debug("minted spotify token", "expires_at", token.Expiry)
	return token, nil
}

// MemoryTokenCache keeps tokens in process memory.
type MemoryTokenCache struct {
	mu     sync.RWMutex
	tokens map[string]models.Token
}

// NewMemoryTokenCache creates an empty [MemoryTokenCache].
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{tokens: make(map[string]models.Token)}
}

// Get returns a copy of the cached token for key, or nil on a miss.
func (c *MemoryTokenCache) Get(_ context.Context, key string) (*models.Token, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	token, ok := c.tokens[key]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

// Set stores a copy of token under key.
func (c *MemoryTokenCache) Set(_ context.Context, key string, token *models.Token) error {
	if token == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[key] = *token
	return nil
}

// NoopTokenCache never stores anything, so every Token call mints a new token.
type NoopTokenCache struct{}

func (NoopTokenCache) Get(context.Context, string) (*models.Token, error) { return nil, nil }

func (NoopTokenCache) Set(context.Context, string, *models.Token) error { return nil }
