// Spotify Web API catalog lookups.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/trackdex/internal/models"
	"github.com/desertthunder/trackdex/internal/shared"
)

const (
	spotifyBaseURL = "https://api.spotify.com"
	defaultTimeout = 10 * time.Second
)

// SpotifyService performs authenticated lookups against the Spotify Web API.
//
// Calls are never retried.
type SpotifyService struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
}

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	BaseURL    string
	Tokens     TokenProvider
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *log.Logger
}

// NewSpotifyService creates a new Spotify catalog client.
func NewSpotifyService(opts SpotifyOpts) *SpotifyService {
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &SpotifyService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		tokens:     opts.Tokens,
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
	}
}

// Track retrieves a single track by ID and returns the upstream JSON unmodified.
func (s *SpotifyService) Track(ctx context.Context, id string) (json.RawMessage, error) {
	if err := models.ValidateID(models.KindTrack, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, models.KindTrack, "/v1/tracks/"+id)
}

// Artist retrieves a single artist by ID and returns the upstream JSON unmodified.
func (s *SpotifyService) Artist(ctx context.Context, id string) (json.RawMessage, error) {
	if err := models.ValidateID(models.KindArtist, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, models.KindArtist, "/v1/artists/"+id)
}

// Get performs one authenticated GET for path. kind selects the not-found error and is used in messages.
func (s *SpotifyService) Get(ctx context.Context, kind models.ResourceKind, path string) (json.RawMessage, error) {
	if s.tokens == nil {
		return nil, fmt.Errorf("%w: no token provider configured", shared.ErrMissingCredentials)
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read spotify response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", notFoundError(kind), path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		s.logger.Warn("spotify API error", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: Spotify API returned status %d for %s", shared.ErrAPIRequest, resp.StatusCode, kind)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("failed to decode %s response: body is not valid JSON", kind)
	}

	return json.RawMessage(body), nil
}

func notFoundError(kind models.ResourceKind) error {
	if kind == models.KindArtist {
		return shared.ErrArtistNotFound
	}
	return shared.ErrTrackNotFound
}
