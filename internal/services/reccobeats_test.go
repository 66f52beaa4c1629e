package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/trackdex/internal/shared"
	tu "github.com/desertthunder/trackdex/internal/testing"
)

const featuresBody = `{"content":[{"id":"11dFghVXANMlKmJXsNCbNl","href":"https://open.spotify.com/track/11dFghVXANMlKmJXsNCbNl",` +
	`"acousticness":0.0665,"danceability":0.582,"energy":0.871,"instrumentalness":0.0,"key":2,"liveness":0.0924,` +
	`"loudness":-5.021,"mode":1,"speechiness":0.0563,"tempo":114.048,"valence":0.487}]}`

// fastFetcher skips real sleeps so retry paths run instantly.
func fastFetcher(timeout time.Duration) *Fetcher {
	f := NewFetcher(FetcherOpts{Timeout: timeout, Logger: shared.NewLogger(io.Discard)})
	f.sleep = func(context.Context, time.Duration) error { return nil }
	return f
}

// bodyServer answers with statuses in order, repeating the last one, and writes body(n) for attempt n.
func bodyServer(t *testing.T, statuses []int, body func(n int) string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1))
		status := statuses[len(statuses)-1]
		if n <= len(statuses) {
			status = statuses[n-1]
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body(n))
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func TestReccoBeatsService(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns First Entry", func(t *testing.T) {
		var query string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.RawQuery
			if r.URL.Path != "/v1/audio-features" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(featuresBody))
		}))
		defer ts.Close()

		srv := NewReccoBeatsService(ts.URL, fastFetcher(0))
		features, err := srv.AudioFeatures(ctx, tu.ValidTrackID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if features == nil {
			t.Fatal("expected features, got nil")
		}

		if query != "ids="+tu.ValidTrackID {
			t.Errorf("unexpected query %q", query)
		}
		if features.ID != tu.ValidTrackID {
			t.Errorf("expected id %s, got %s", tu.ValidTrackID, features.ID)
		}
		if features.Danceability != 0.582 || features.Tempo != 114.048 || features.Key != 2 || features.Mode != 1 {
			t.Errorf("unexpected feature values: %+v", features)
		}
	})

	t.Run("Empty Content Yields Nil", func(t *testing.T) {
		ts, _ := bodyServer(t, []int{http.StatusOK}, func(int) string { return `{"content":[]}` })

		features, err := NewReccoBeatsService(ts.URL, fastFetcher(0)).AudioFeatures(ctx, tu.ValidTrackID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if features != nil {
			t.Errorf("expected nil features, got %+v", features)
		}
	})

	t.Run("Status Mapping", func(t *testing.T) {
		tests := []struct {
			name     string
			status   int
			want     error
			attempts int32
			contains string
		}{
			{"not found", http.StatusNotFound, shared.ErrAudioFeaturesNotFound, 1, ""},
			{"rate limited", http.StatusTooManyRequests, shared.ErrRateLimited, 3, ""},
			{"request timeout", http.StatusRequestTimeout, shared.ErrTimeout, 1, ""},
			{"server error", http.StatusInternalServerError, shared.ErrUpstreamServer, 1, ""},
			{"bad gateway", http.StatusBadGateway, shared.ErrUpstreamServer, 1, "unexpected response status: 502"},
			{"forbidden", http.StatusForbidden, shared.ErrUpstreamServer, 1, "unexpected response status: 403"},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				ts, calls := sequenceServer(t, []int{tc.status}, nil)

				_, err := NewReccoBeatsService(ts.URL, fastFetcher(0)).AudioFeatures(ctx, tu.ValidTrackID)
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
				if tc.contains != "" && !strings.Contains(err.Error(), tc.contains) {
					t.Errorf("expected error to contain %q, got %v", tc.contains, err)
				}
				if got := atomic.LoadInt32(calls); got != tc.attempts {
					t.Errorf("expected %d attempts, got %d", tc.attempts, got)
				}
			})
		}
	})

	t.Run("Recovers After Rate Limit", func(t *testing.T) {
		ts, calls := bodyServer(t, []int{http.StatusTooManyRequests, http.StatusOK}, func(n int) string {
			if n == 2 {
				return featuresBody
			}
			return `{"error":"slow down"}`
		})

		features, err := NewReccoBeatsService(ts.URL, fastFetcher(0)).AudioFeatures(ctx, tu.ValidTrackID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if features == nil || features.ID != tu.ValidTrackID {
			t.Errorf("unexpected features %+v", features)
		}
		if atomic.LoadInt32(calls) != 2 {
			t.Errorf("expected 2 attempts, got %d", atomic.LoadInt32(calls))
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer ts.Close()
		defer close(release)

		_, err := NewReccoBeatsService(ts.URL, fastFetcher(20*time.Millisecond)).AudioFeatures(ctx, tu.ValidTrackID)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("Invalid Body", func(t *testing.T) {
		ts, _ := bodyServer(t, []int{http.StatusOK}, func(int) string { return `not json` })

		_, err := NewReccoBeatsService(ts.URL, fastFetcher(0)).AudioFeatures(ctx, tu.ValidTrackID)
		if err == nil || !strings.Contains(err.Error(), "failed to fetch audio features") {
			t.Errorf("expected fetch failure, got %v", err)
		}
	})

	t.Run("Invalid ID Makes No Request", func(t *testing.T) {
		fetcher := NewFetcher(FetcherOpts{HTTPClient: &http.Client{Transport: tu.FailingTransport{T: t}}})
		srv := NewReccoBeatsService("http://reccobeats.invalid", fetcher)

		for _, id := range []string{"", "short", "11dFghVXANMlKmJXsNCbN-"} {
			if _, err := srv.AudioFeatures(ctx, id); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("AudioFeatures(%q): expected ErrInvalidInput, got %v", id, err)
			}
		}
	})

	t.Run("Default Base URL", func(t *testing.T) {
		srv := NewReccoBeatsService("", nil)
		if srv.baseURL != reccoBeatsBaseURL {
			t.Errorf("expected %s, got %s", reccoBeatsBaseURL, srv.baseURL)
		}
		if srv.fetcher == nil {
			t.Error("expected default fetcher")
		}
	})
}
