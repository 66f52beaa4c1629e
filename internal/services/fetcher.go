package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = time.Second
)

// Response is an upstream response whose body has already been read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Fetcher performs GET requests with bounded retry on 429 Too Many Requests.
//
// Only rate limiting is retried; every other status is returned to the caller as-is.
type Fetcher struct {
	httpClient   *http.Client
	maxAttempts  int
	initialDelay time.Duration
	timeout      time.Duration
	limiter      *rate.Limiter
	logger       *log.Logger
	sleep        func(ctx context.Context, d time.Duration) error
	now          func() time.Time
}

// FetcherOpts configures a [Fetcher]. Zero values select the defaults:
// 3 attempts, 1s initial delay, 10s per-attempt timeout and no client-side pacing.
type FetcherOpts struct {
	HTTPClient   *http.Client
	MaxAttempts  int
	InitialDelay time.Duration
	Timeout      time.Duration
	RateLimit    float64 // requests per second
	Logger       *log.Logger
}

// NewFetcher creates a new [Fetcher].
func NewFetcher(opts FetcherOpts) *Fetcher {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = defaultInitialDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &Fetcher{
		httpClient:   opts.HTTPClient,
		maxAttempts:  opts.MaxAttempts,
		initialDelay: opts.InitialDelay,
		timeout:      opts.Timeout,
		limiter:      rate.NewLimiter(limit, 1),
		logger:       opts.Logger,
		sleep:        sleepWithContext,
		now:          time.Now,
	}
}

// Get fetches url, retrying while the upstream answers 429.
//
// The final 429 is returned as a response, not an error. Transport errors (including an attempt
// exceeding its timeout) are retried on the same schedule and returned only from the last attempt.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		last := attempt == f.maxAttempts-1

		resp, err := f.do(ctx, url)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("request canceled: %w", ctxErr)
		}

		var delay time.Duration
		if err != nil {
			if last {
				return nil, err
			}
			lastErr = err
			delay = f.backoff(attempt)
			f.logger.Warn("retrying after error", "attempt", attempt+1, "max", f.maxAttempts, "delay", delay, "error", err)
		} else {
			if resp.StatusCode != http.StatusTooManyRequests || last {
				return resp, nil
			}
			delay = f.backoff(attempt)
			if hinted, ok := parseRetryAfter(resp.Header.Get("Retry-After"), f.now()); ok {
				delay = hinted
			}
			f.logger.Warn("rate limited, retrying", "attempt", attempt+1, "max", f.maxAttempts, "delay", delay)
		}

		if err := f.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", f.maxAttempts, lastErr)
}

// do runs a single attempt under the per-attempt timeout and reads the whole body.
func (f *Fetcher) do(ctx context.Context, url string) (*Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// backoff returns 2^attempt * initialDelay.
func (f *Fetcher) backoff(attempt int) time.Duration {
	return f.initialDelay * time.Duration(1<<attempt)
}

// parseRetryAfter accepts delta-seconds or an HTTP date. ok is false when the header is absent or unparseable.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}

	if when, err := http.ParseTime(value); err == nil {
		if until := when.Sub(now); until > 0 {
			return until, true
		}
		return 0, true
	}

	return 0, false
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
