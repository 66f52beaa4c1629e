package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/trackdex/internal/models"
	"github.com/desertthunder/trackdex/internal/services"
)

// DefaultPrefix is the path prefix of every API route.
const DefaultPrefix = "/api/spotify"

// Catalog looks up raw track and artist documents.
type Catalog interface {
	Track(ctx context.Context, id string) (json.RawMessage, error)
	Artist(ctx context.Context, id string) (json.RawMessage, error)
}

// FeatureSource looks up audio features for a track.
type FeatureSource interface {
	AudioFeatures(ctx context.Context, trackID string) (*models.AudioFeatures, error)
}

// HandlerFunc produces a response body or an error for the request.
type HandlerFunc func(r *http.Request) (any, error)

// TokenResponse is the body of the token route.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// APIHandler serves the proxy endpoints under a common prefix.
type APIHandler struct {
	prefix   string
	tokens   services.TokenProvider
	catalog  Catalog
	features FeatureSource
	logger   *log.Logger
	mux      *http.ServeMux
}

// APIHandlerOpts configures an [APIHandler].
type APIHandlerOpts struct {
	Prefix   string
	Tokens   services.TokenProvider
	Catalog  Catalog
	Features FeatureSource
	Logger   *log.Logger
}

// NewAPIHandler creates an [APIHandler] and registers its routes.
func NewAPIHandler(opts APIHandlerOpts) *APIHandler {
	prefix := strings.TrimRight(opts.Prefix, "/")
	if opts.Prefix == "" {
		prefix = DefaultPrefix
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	h := &APIHandler{
		prefix:   prefix,
		tokens:   opts.Tokens,
		catalog:  opts.Catalog,
		features: opts.Features,
		logger:   opts.Logger,
		mux:      http.NewServeMux(),
	}

	h.mux.Handle(h.route(http.MethodPost, "/token"), h.adapt(h.Token))
	h.mux.Handle(h.route(http.MethodGet, "/tracks/{id}"), h.adapt(h.Track))
	h.mux.Handle(h.route(http.MethodGet, "/artists/{id}"), h.adapt(h.Artist))
	h.mux.Handle(h.route(http.MethodGet, "/audio-features/{id}"), h.adapt(h.AudioFeatures))
	h.mux.Handle(h.route(http.MethodGet, "/health"), h.adapt(h.Health))

	return h
}

func (h *APIHandler) route(method, path string) string {
	return method + " " + h.prefix + path
}

// Routes returns the HTTP routes this handler serves.
func (h *APIHandler) Routes() []string {
	return []string{
		h.route(http.MethodPost, "/token"),
		h.route(http.MethodGet, "/tracks/{id}"),
		h.route(http.MethodGet, "/artists/{id}"),
		h.route(http.MethodGet, "/audio-features/{id}"),
		h.route(http.MethodGet, "/health"),
	}
}

// ServeHTTP dispatches to the matching route.
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// adapt writes the result of fn as JSON, routing every error through [normalize].
func (h *APIHandler) adapt(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := fn(r)
		if err != nil {
			env := normalize(err)
			if env.Status >= 500 {
				h.logger.Error("request failed", "path", r.URL.Path, "code", env.Error, "error", err, "request_id", RequestIDFrom(r.Context()))
			}
			writeEnvelope(w, env)
			return
		}
		writeJSON(w, http.StatusOK, body)
	})
}

// Token mints or reuses an upstream bearer token.
func (h *APIHandler) Token(r *http.Request) (any, error) {
	if h.tokens == nil {
		return nil, fmt.Errorf("token provider not configured")
	}

	token, err := h.tokens.Token(r.Context())
	if err != nil {
		return nil, err
	}
	return TokenResponse{AccessToken: token.AccessToken, TokenType: "Bearer"}, nil
}

// Track proxies a track lookup and returns the upstream document unmodified.
func (h *APIHandler) Track(r *http.Request) (any, error) {
	id, err := pathID(r, models.KindTrack)
	if err != nil {
		return nil, err
	}
	return h.catalog.Track(r.Context(), id)
}

// Artist proxies an artist lookup and returns the upstream document unmodified.
func (h *APIHandler) Artist(r *http.Request) (any, error) {
	id, err := pathID(r, models.KindArtist)
	if err != nil {
		return nil, err
	}
	return h.catalog.Artist(r.Context(), id)
}

// AudioFeatures returns the first feature record for a track, or null.
func (h *APIHandler) AudioFeatures(r *http.Request) (any, error) {
	id, err := pathID(r, models.KindTrack)
	if err != nil {
		return nil, err
	}
	return h.features.AudioFeatures(r.Context(), id)
}

// Health reports that the process is serving.
func (h *APIHandler) Health(*http.Request) (any, error) {
	return map[string]string{"status": "ok"}, nil
}

// pathID reads the {id} wildcard and rejects malformed IDs before any upstream call.
func pathID(r *http.Request, kind models.ResourceKind) (string, error) {
	id := r.PathValue("id")
	if !models.IsValidID(id) {
		return "", Fail(
			http.StatusBadRequest,
			"INVALID_ID",
			fmt.Sprintf("%s ID must be 22 alphanumeric characters, got: %q", kind.Title(), id),
		)
	}
	return id, nil
}

// writeJSON writes v with status. Raw messages are written byte for byte.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var body []byte
	switch data := v.(type) {
	case json.RawMessage:
		body = data
		if body == nil {
			body = []byte("null")
		}
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			writeEnvelope(w, normalize(fmt.Errorf("failed to encode response: %w", err)))
			return
		}
		body = encoded
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeEnvelope(w, normalize(err))
}

func writeEnvelope(w http.ResponseWriter, env Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		body = []byte(`{"error":"INTERNAL_ERROR","message":"An unexpected error occurred","status":500}`)
		env.Status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(env.Status)
	w.Write(body)
}
