// ReccoBeats audio-feature lookups.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/trackdex/internal/models"
	"github.com/desertthunder/trackdex/internal/shared"
)

const reccoBeatsBaseURL = "https://api.reccobeats.com"

// ReccoBeatsService reads audio features from the ReccoBeats batch endpoint.
type ReccoBeatsService struct {
	baseURL string
	fetcher *Fetcher
}

// NewReccoBeatsService creates a client for baseURL (defaults to the public API) using fetcher for retries.
func NewReccoBeatsService(baseURL string, fetcher *Fetcher) *ReccoBeatsService {
	if baseURL == "" {
		baseURL = reccoBeatsBaseURL
	}
	if fetcher == nil {
		fetcher = NewFetcher(FetcherOpts{})
	}
	return &ReccoBeatsService{baseURL: strings.TrimRight(baseURL, "/"), fetcher: fetcher}
}

// AudioFeatures returns the features for one track, or nil when the batch response is empty.
func (s *ReccoBeatsService) AudioFeatures(ctx context.Context, trackID string) (*models.AudioFeatures, error) {
	if err := models.ValidateID(models.KindTrack, trackID); err != nil {
		return nil, err
	}

	endpoint := s.baseURL + "/v1/audio-features?ids=" + url.QueryEscape(trackID)
	resp, err := s.fetcher.Get(ctx, endpoint)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: ReccoBeats API request timed out: %v", shared.ErrTimeout, err)
		}
		return nil, fmt.Errorf("failed to fetch audio features: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w for track %s", shared.ErrAudioFeaturesNotFound, trackID)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: ReccoBeats still rate limited after retries", shared.ErrRateLimited)
	case http.StatusRequestTimeout:
		return nil, fmt.Errorf("%w: ReccoBeats returned 408", shared.ErrTimeout)
	case http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: ReccoBeats returned 500", shared.ErrUpstreamServer)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Err: shared.ErrUpstreamServer}
	}

	var batch models.AudioFeaturesResponse
	if err := json.Unmarshal(resp.Body, &batch); err != nil {
		return nil, fmt.Errorf("failed to fetch audio features: invalid response body: %w", err)
	}

	return batch.First(), nil
}

// StatusError reports an upstream status with no dedicated mapping.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: unexpected response status: %d", e.Err, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return e.Err }

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
