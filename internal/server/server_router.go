package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func buildRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Deck page and bridge script
	r.Get("/", a.deckHandler)
	r.Get("/ui/bridge.js", bridgeHandler)

	// Bridge connection
	r.Get("/ws", a.wsHandler)

	// Health/info
	r.Get("/healthz", healthzHandler)
	r.Get("/api/v1/server-info", a.serverInfoHandler)
	r.Get("/api/v1/stats", a.statsHandler)

	return r
}
