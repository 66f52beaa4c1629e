package server

import (
	"io/fs"
	"net/http"

	"github.com/charmbracelet/log"
)

// NewRouter assembles the full proxy: middleware, API routes and the static fallback.
func NewRouter(api *APIHandler, assets fs.FS, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	router := NewBasicRouter()
	router.Use(RequestID(), Logger(logger), CORS(), Recover(logger))
	router.Handler(api)
	router.Handler(NewStaticHandler(assets))

	return router
}
