package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/trackdex/internal/models"
	"github.com/desertthunder/trackdex/internal/shared"
)

// tokenServer answers client-credentials requests. A status other than 200 is written with an OAuth error body.
func tokenServer(t *testing.T, status int) (*httptest.Server, *int32) {
	t.Helper()

	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)

		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			t.Errorf("expected basic auth with client credentials, got %q/%q (ok=%v)", user, pass, ok)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("expected grant_type client_credentials, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":"invalid_client","error_description":"Invalid client"}`)
			return
		}
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"bearer","expires_in":3600}`, n)
	}))
	t.Cleanup(ts.Close)

	return ts, &calls
}

func TestTokenBroker(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Credentials", func(t *testing.T) {
		for _, tc := range []struct{ name, id, secret string }{
			{"both empty", "", ""},
			{"missing id", "", "client-secret"},
			{"missing secret", "client-id", ""},
		} {
			t.Run(tc.name, func(t *testing.T) {
				ts, calls := tokenServer(t, http.StatusOK)
				broker := NewTokenBroker(TokenBrokerOpts{ClientID: tc.id, ClientSecret: tc.secret, TokenURL: ts.URL})

				_, err := broker.Token(ctx)
				if !errors.Is(err, shared.ErrMissingCredentials) {
					t.Fatalf("expected ErrMissingCredentials, got %v", err)
				}
				if atomic.LoadInt32(calls) != 0 {
					t.Errorf("expected no token request, got %d", atomic.LoadInt32(calls))
				}
			})
		}
	})

	t.Run("Mints Token", func(t *testing.T) {
		ts, _ := tokenServer(t, http.StatusOK)
		broker := NewTokenBroker(TokenBrokerOpts{ClientID: "client-id", ClientSecret: "client-secret", TokenURL: ts.URL})

		token, err := broker.Token(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "token-1" {
			t.Errorf("expected access token 'token-1', got %q", token.AccessToken)
		}
		if token.TokenType != "Bearer" {
			t.Errorf("expected token type 'Bearer', got %q", token.TokenType)
		}
		if until := time.Until(token.Expiry); until < 59*time.Minute || until > time.Hour+time.Minute {
			t.Errorf("expected expiry about an hour out, got %v", until)
		}
	})

	t.Run("Rejected Credentials", func(t *testing.T) {
		for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized} {
			t.Run(http.StatusText(status), func(t *testing.T) {
				ts, _ := tokenServer(t, status)
				broker := NewTokenBroker(TokenBrokerOpts{ClientID: "client-id", ClientSecret: "client-secret", TokenURL: ts.URL})

				_, err := broker.Token(ctx)
				if !errors.Is(err, shared.ErrAuthFailed) {
					t.Fatalf("expected ErrAuthFailed, got %v", err)
				}
			})
		}
	})

	t.Run("Unreachable Token Endpoint", func(t *testing.T) {
		ts, _ := tokenServer(t, http.StatusOK)
		url := ts.URL
		ts.Close()

		broker := NewTokenBroker(TokenBrokerOpts{ClientID: "client-id", ClientSecret: "client-secret", TokenURL: url})
		_, err := broker.Token(ctx)
		if err == nil {
			t.Fatal("expected error for unreachable endpoint")
		}
		if errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("transport failures should not be reported as auth failures: %v", err)
		}
	})

	t.Run("Reuses Cached Token", func(t *testing.T) {
		ts, calls := tokenServer(t, http.StatusOK)
		broker := NewTokenBroker(TokenBrokerOpts{ClientID: "client-id", ClientSecret: "client-secret", TokenURL: ts.URL})

		first, err := broker.Token(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := broker.Token(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if first.AccessToken != second.AccessToken {
			t.Errorf("expected cached token %q, got %q", first.AccessToken, second.AccessToken)
		}
		if atomic.LoadInt32(calls) != 1 {
			t.Errorf("expected 1 token request, got %d", atomic.LoadInt32(calls))
		}
	})

	t.Run("Refreshes Expired Token", func(t *testing.T) {
		ts, calls := tokenServer(t, http.StatusOK)
		broker := NewTokenBroker(TokenBrokerOpts{ClientID: "client-id", ClientSecret: "client-secret", TokenURL: ts.URL})

		if _, err := broker.Token(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		broker.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		token, err := broker.Token(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "token-2" {
			t.Errorf("expected refreshed token 'token-2', got %q", token.AccessToken)
		}
		if atomic.LoadInt32(calls) != 2 {
			t.Errorf("expected 2 token requests, got %d", atomic.LoadInt32(calls))
		}
	})

	t.Run("Noop Cache Always Mints", func(t *testing.T) {
		ts, calls := tokenServer(t, http.StatusOK)
		broker := NewTokenBroker(TokenBrokerOpts{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			TokenURL:     ts.URL,
			Cache:        NoopTokenCache{},
		})

		for range 3 {
			if _, err := broker.Token(ctx); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}
		if atomic.LoadInt32(calls) != 3 {
			t.Errorf("expected 3 token requests, got %d", atomic.LoadInt32(calls))
		}
	})

	t.Run("Cache Read Failure Falls Back To Minting", func(t *testing.T) {
		ts, calls := tokenServer(t, http.StatusOK)
		broker := NewTokenBroker(TokenBrokerOpts{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			TokenURL:     ts.URL,
			Cache:        brokenCache{},
		})

		token, err := broker.Token(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken == "" {
			t.Error("expected a minted token")
		}
		if atomic.LoadInt32(calls) != 1 {
			t.Errorf("expected 1 token request, got %d", atomic.LoadInt32(calls))
		}
	})
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (*models.Token, error) {
	return nil, errors.New("cache unavailable")
}

func (brokenCache) Set(context.Context, string, *models.Token) error {
	return errors.New("cache unavailable")
}

func TestMemoryTokenCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryTokenCache()

	t.Run("Miss", func(t *testing.T) {
		token, err := cache.Get(ctx, "absent")
		if err != nil || token != nil {
			t.Errorf("expected (nil, nil) on miss, got (%v, %v)", token, err)
		}
	})

	t.Run("Stores Copy", func(t *testing.T) {
		original := &models.Token{AccessToken: "abc", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
		if err := cache.Set(ctx, "key", original); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		original.AccessToken = "mutated"

		got, err := cache.Get(ctx, "key")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.AccessToken != "abc" {
			t.Errorf("expected stored value 'abc', got %q", got.AccessToken)
		}
	})

	t.Run("Nil Token Ignored", func(t *testing.T) {
		if err := cache.Set(ctx, "nil", nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got, _ := cache.Get(ctx, "nil"); got != nil {
			t.Errorf("expected miss after storing nil, got %v", got)
		}
	})
}
