package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const indexFile = "index.html"

// StaticHandler serves the single-page app from a file system.
//
// Paths that do not name a file resolve to index.html so client-side routes load the app shell.
type StaticHandler struct {
	files fs.FS
}

// NewStaticHandler serves files from fsys.
func NewStaticHandler(fsys fs.FS) *StaticHandler {
	return &StaticHandler{files: fsys}
}

// NewStaticDirHandler serves files from the directory at dir.
func NewStaticDirHandler(dir string) *StaticHandler {
	return NewStaticHandler(os.DirFS(dir))
}

// Routes returns the HTTP routes this handler serves.
func (h *StaticHandler) Routes() []string {
	return []string{"/"}
}

// ServeHTTP serves the named asset or falls back to index.html.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeEnvelope(w, Envelope{
			Error:   "NOT_FOUND",
			Message: "No route for " + r.Method + " " + r.URL.Path,
			Status:  http.StatusNotFound,
		})
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = indexFile
	}

	info, err := fs.Stat(h.files, name)
	if err != nil || info.IsDir() {
		name = indexFile
		if _, err := fs.Stat(h.files, name); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				writeError(w, err)
				return
			}
			writeEnvelope(w, Envelope{Error: "NOT_FOUND", Message: "App shell not found", Status: http.StatusNotFound})
			return
		}
	}

	http.ServeFileFS(w, r, h.files, name)
}
