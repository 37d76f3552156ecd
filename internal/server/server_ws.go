package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mkarlesky/deckhand/internal/protocol"
	"github.com/mkarlesky/deckhand/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// commandBuffer bounds how far the server can run ahead of a slow bridge
// before commands get dropped. Dropped commands only degrade UX (a tooltip
// that never positions), never break state.
const commandBuffer = 64

func (a *app) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	out := make(chan protocol.Command, commandBuffer)
	sess := session.New(a.cfg, a.db, func(cmd protocol.Command) {
		select {
		case out <- cmd:
		default:
			slog.Warn("dropping command for slow bridge", "type", cmd.Type)
		}
	})
	defer sess.Close()

	done := make(chan struct{})
	writerDone := make(chan struct{})
	defer func() {
		close(done)
		// Wait for the writer's flush to finish before the deferred
		// conn.Close tears the socket down.
		<-writerDone
	}()
	go func() {
		defer close(writerDone)
		for {
			select {
			case cmd := <-out:
				if err := conn.WriteJSON(cmd); err != nil {
					return
				}
			case <-done:
				// Flush anything still buffered, then let the deferred
				// close tear the socket down.
				for {
					select {
					case cmd := <-out:
						_ = conn.WriteJSON(cmd)
					default:
						return
					}
				}
			}
		}
	}()

	slog.Info("bridge connected", "session", sess.ID(), "remote", r.RemoteAddr)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read", "session", sess.ID(), "error", err)
			}
			return
		}

		var ev protocol.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			slog.Warn("malformed bridge event", "session", sess.ID(), "error", err)
			continue
		}
		if err := sess.HandleEvent(ev); err != nil {
			if errors.Is(err, session.ErrStaleBridge) {
				slog.Info("stale bridge asked to reload", "session", sess.ID())
			}
			return
		}
	}
}
