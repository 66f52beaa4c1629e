package models

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/desertthunder/trackdex/internal/shared"
)

// ResourceKind tags an identifier with the upstream resource it refers to.
type ResourceKind string

const (
	KindTrack  ResourceKind = "track"
	KindArtist ResourceKind = "artist"
)

// Title returns the capitalized kind, e.g. "Track".
func (k ResourceKind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9]{22}$`)

// IsValidID reports whether id has the 22 character alphanumeric shape of a Spotify ID.
func IsValidID(id string) bool {
	return idPattern.MatchString(id)
}

// ValidateID returns an error wrapping [shared.ErrInvalidInput] when id is not a valid Spotify ID.
func ValidateID(kind ResourceKind, id string) error {
	if IsValidID(id) {
		return nil
	}
	return fmt.Errorf("%w: %s ID must be 22 alphanumeric characters, got: %q", shared.ErrInvalidInput, kind.Title(), id)
}

// expirySkew is subtracted from a token's expiry so tokens are refreshed before the upstream rejects them.
const expirySkew = 30 * time.Second

// Token is a bearer credential for the primary upstream.
type Token struct {
	AccessToken string
	TokenType   string
	Expiry      time.Time // zero => never expires
}

// Valid reports whether the token can still be presented at now.
func (t *Token) Valid(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return now.Add(expirySkew).Before(t.Expiry)
}

// TokenCache memoizes tokens across requests.
//
// Get returns (nil, nil) on a miss. Implementations must tolerate concurrent callers;
// two racing Set calls for the same key are allowed and the last one wins.
type TokenCache interface {
	Get(ctx context.Context, key string) (*Token, error)
	Set(ctx context.Context, key string, token *Token) error
}

// AudioFeatures is the flat record of musical attributes returned by ReccoBeats for one track.
type AudioFeatures struct {
	ID               string  `json:"id"`
	Href             string  `json:"href"`
	Acousticness     float64 `json:"acousticness"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Instrumentalness float64 `json:"instrumentalness"`
	Key              int     `json:"key"`
	Liveness         float64 `json:"liveness"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
	Valence          float64 `json:"valence"`
}

// AudioFeaturesResponse is the batch envelope of GET /v1/audio-features?ids=...
type AudioFeaturesResponse struct {
	Content []AudioFeatures `json:"content"`
}

// First returns the first record, or nil when the batch is empty.
func (r *AudioFeaturesResponse) First() *AudioFeatures {
	if r == nil || len(r.Content) == 0 {
		return nil
	}
	first := r.Content[0]
	return &first
}
