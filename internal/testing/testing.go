// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/trackdex/internal/models"
)

// ValidTrackID is a well-formed 22 character track ID.
const ValidTrackID = "11dFghVXANMlKmJXsNCbNl"

// ValidArtistID is a well-formed 22 character artist ID.
const ValidArtistID = "06HL4z0CvFAxyc27GXpf02"

// MockTokenProvider is a test double for [services.TokenProvider]
type MockTokenProvider struct {
	Result *models.Token
	Err    error
	calls  atomic.Int32
}

// NewMockTokenProvider returns a provider that always yields a valid token with the given access value.
func NewMockTokenProvider(access string) *MockTokenProvider {
	return &MockTokenProvider{
		Result: &models.Token{AccessToken: access, TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)},
	}
}

func (m *MockTokenProvider) Token(ctx context.Context) (*models.Token, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Calls reports how many times Token was invoked.
func (m *MockTokenProvider) Calls() int { return int(m.calls.Load()) }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing and counts requests.
type MockRoundTripper struct {
	response *http.Response
	err      error
	calls    atomic.Int32
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.calls.Add(1)
	return m.response, m.err
}

// Calls reports how many requests went through the transport.
func (m *MockRoundTripper) Calls() int { return int(m.calls.Load()) }

// FailingTransport fails the test if any outbound request is attempted.
type FailingTransport struct {
	T *testing.T
}

func (f FailingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.T.Errorf("unexpected outbound request: %s %s", r.Method, r.URL)
	return nil, errors.New("outbound requests are not allowed")
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
