package server

import (
	"net/http"
	"strings"
	"testing"
	"testing/fstest"
)

func TestStaticHandler(t *testing.T) {
	h := NewStaticHandler(testAssets)

	t.Run("Serves File", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/assets/app.js")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "console.log('app')" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("Root Serves Index", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "id=app") {
			t.Errorf("expected app shell, got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("Client Route Falls Back To Index", func(t *testing.T) {
		for _, path := range []string{"/tracks/11dFghVXANMlKmJXsNCbNl", "/search", "/assets/missing.js", "/assets"} {
			rec := serve(h, http.MethodGet, path)
			if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "id=app") {
				t.Errorf("%s: expected app shell, got %d %q", path, rec.Code, rec.Body.String())
			}
		}
	})

	t.Run("Traversal Stays Inside Root", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/../../etc/passwd")
		if rec.Code == http.StatusOK && !strings.Contains(rec.Body.String(), "id=app") {
			t.Errorf("expected traversal to resolve inside the asset root, got %q", rec.Body.String())
		}
	})

	t.Run("Non GET Is Not Found", func(t *testing.T) {
		rec := serve(h, http.MethodDelete, "/anything")
		env := decodeEnvelope(t, rec)
		if rec.Code != http.StatusNotFound || env.Error != "NOT_FOUND" {
			t.Errorf("expected 404 NOT_FOUND, got %d %s", rec.Code, env.Error)
		}
	})

	t.Run("Missing Index", func(t *testing.T) {
		empty := NewStaticHandler(fstest.MapFS{})
		rec := serve(empty, http.MethodGet, "/")
		env := decodeEnvelope(t, rec)
		if rec.Code != http.StatusNotFound || env.Error != "NOT_FOUND" {
			t.Errorf("expected 404 NOT_FOUND, got %d %s", rec.Code, env.Error)
		}
	})

	t.Run("Unmatched API Path Reaches App Shell", func(t *testing.T) {
		router := newTestRouter(APIHandlerOpts{})
		rec := serve(router, http.MethodGet, "/api/spotify/unknown")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "id=app") {
			t.Errorf("expected app shell, got %d %q", rec.Code, rec.Body.String())
		}
	})
}
