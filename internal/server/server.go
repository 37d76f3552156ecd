// Package server hosts the slide deck and drives its interactivity. The
// page itself is static; every behavioral decision happens here, reached
// through the websocket bridge.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mkarlesky/deckhand/internal/config"
	"github.com/mkarlesky/deckhand/internal/store"
)

type app struct {
	cfg config.File
	db  *store.Store
}

func Run(ctx context.Context) error {
	addr := envOrDefault("DECKHAND_SERVER_ADDR", ":8080")
	cfgPath := envOrDefault("DECKHAND_CONFIG", "deck.yaml")
	dbPath := envOrDefault("DECKHAND_DB", "deckhand.db")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	a := &app{cfg: cfg, db: db}

	srv := &http.Server{
		Addr:              addr,
		Handler:           buildRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopMDNS := startMDNSAdvertiser(addr)
	defer stopMDNS()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("deckhand server started on %s (deck %q)", addr, cfg.Deck.Name)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen and serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		log.Println("deckhand server stopped")
		return nil
	case err := <-errCh:
		if err != nil {
			return err
		}
		log.Println("deckhand server stopped")
		return nil
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
