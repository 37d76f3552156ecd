package server

import (
	"log/slog"
	"net/http"

	"github.com/mkarlesky/deckhand/internal/protocol"
	"github.com/mkarlesky/deckhand/internal/server/httpx"
	"github.com/mkarlesky/deckhand/internal/version"
)

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type serverInfo struct {
	Name             string `json:"name"`
	Version          string `json:"version"`
	APIVersion       int    `json:"api_version"`
	Deck             string `json:"deck"`
	MinBridgeVersion string `json:"min_bridge_version"`
	Demos            int    `json:"demos"`
}

func (a *app) serverInfoHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, serverInfo{
		Name:             "deckhand",
		Version:          version.Current(),
		APIVersion:       1,
		Deck:             a.cfg.Deck.Name,
		MinBridgeVersion: protocol.MinBridgeVersion,
		Demos:            len(a.cfg.Demos),
	})
}

func (a *app) statsHandler(w http.ResponseWriter, r *http.Request) {
	st, err := a.db.Stats()
	if err != nil {
		slog.Error("aggregate interaction stats", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}
