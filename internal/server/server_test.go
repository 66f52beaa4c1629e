package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/trackdex/internal/shared"
)

func TestServer(t *testing.T) {
	t.Run("Serves Until Canceled", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}

		logger := shared.NewLogger(io.Discard)
		srv := NewServer(ln.Addr().String(), newTestRouter(APIHandlerOpts{}), logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Serve(ctx, ln) }()

		resp, err := http.Get("http://" + ln.Addr().String() + "/api/spotify/health")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected clean shutdown, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
		}
	})

	t.Run("Listen Failure", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		defer ln.Close()

		srv := NewServer(ln.Addr().String(), http.NotFoundHandler(), shared.NewLogger(io.Discard))
		if err := srv.ListenAndServe(context.Background()); err == nil {
			t.Error("expected error when address is in use")
		}
	})
}
