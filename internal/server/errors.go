package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/trackdex/internal/services"
	"github.com/desertthunder/trackdex/internal/shared"
)

// Envelope is the JSON body of every failed API response.
type Envelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Failure is an error that already knows its HTTP status and code.
// It short-circuits a handler and passes through [normalize] unchanged.
type Failure struct {
	Status  int
	Code    string
	Message string
}

// Fail creates a [Failure].
func Fail(status int, code, message string) *Failure {
	return &Failure{Status: status, Code: code, Message: message}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s (%d): %s", f.Code, f.Status, f.Message)
}

const fallbackMessage = "An unexpected error occurred"

// mapping is one row of the sentinel table. A fixed message replaces err.Error() when set.
type mapping struct {
	target  error
	status  int
	code    string
	message string
}

// sentinels is checked in order; the first errors.Is match wins.
var sentinels = []mapping{
	{shared.ErrInvalidInput, http.StatusBadRequest, "INVALID_ID", ""},
	{shared.ErrMissingCredentials, http.StatusInternalServerError, "MISSING_ENV_VARS", ""},
	{shared.ErrAuthFailed, http.StatusBadGateway, "SPOTIFY_AUTH_FAILED", ""},
	{shared.ErrTrackNotFound, http.StatusNotFound, "TRACK_NOT_FOUND", ""},
	{shared.ErrArtistNotFound, http.StatusNotFound, "ARTIST_NOT_FOUND", ""},
	{shared.ErrAPIRequest, http.StatusBadGateway, "SPOTIFY_API_ERROR", ""},
	{shared.ErrAudioFeaturesNotFound, http.StatusNotFound, "AUDIO_FEATURES_NOT_FOUND", "Audio features not found for this track"},
	{shared.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "ReccoBeats API rate limit exceeded. Please try again later."},
	{shared.ErrTimeout, http.StatusGatewayTimeout, "GATEWAY_TIMEOUT", "ReccoBeats API request timed out"},
	{shared.ErrUpstreamServer, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred while fetching audio features"},
}

// normalize converts any error into the envelope written to the caller.
func normalize(err error) Envelope {
	if err == nil {
		return Envelope{Error: "INTERNAL_ERROR", Message: fallbackMessage, Status: http.StatusInternalServerError}
	}

	var failure *Failure
	if errors.As(err, &failure) {
		return Envelope{Error: failure.Code, Message: failure.Message, Status: failure.Status}
	}

	var statusErr *services.StatusError
	if errors.As(err, &statusErr) {
		return Envelope{
			Error:   "INTERNAL_SERVER_ERROR",
			Message: fmt.Sprintf("Unexpected response status: %d", statusErr.StatusCode),
			Status:  http.StatusInternalServerError,
		}
	}

	for _, m := range sentinels {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		return Envelope{Error: m.code, Message: message, Status: m.status}
	}

	message := err.Error()
	if message == "" {
		message = fallbackMessage
	}
	return Envelope{Error: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError}
}
