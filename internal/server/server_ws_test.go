package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mkarlesky/deckhand/internal/protocol"
)

func dialBridge(t *testing.T, a *app) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(buildRouter(a))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func readCommand(t *testing.T, conn *websocket.Conn) protocol.Command {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var cmd protocol.Command
	if err := conn.ReadJSON(&cmd); err != nil {
		t.Fatalf("read command: %v", err)
	}
	return cmd
}

func TestBridgeShowSequenceOverWebSocket(t *testing.T) {
	a := newTestApp(t)
	conn := dialBridge(t, a)

	if err := conn.WriteJSON(protocol.Event{
		Type:          protocol.EventReady,
		BridgeVersion: protocol.MinBridgeVersion,
		Viewport:      &protocol.Size{Width: 1400, Height: 800},
	}); err != nil {
		t.Fatalf("write ready: %v", err)
	}
	if err := conn.WriteJSON(protocol.Event{
		Type:          protocol.EventEnter,
		TargetID:      "step-3",
		TargetClasses: []string{"funnel-step-3"},
		AnchorRect:    &protocol.Rect{Left: 100, Top: 200, Width: 60, Height: 40},
	}); err != nil {
		t.Fatalf("write enter: %v", err)
	}

	display := readCommand(t, conn)
	if display.Type != protocol.CmdDisplay || display.Target != "info-2" || !display.Visible {
		t.Fatalf("expected display for info-2, got %+v", display)
	}
	measure := readCommand(t, conn)
	if measure.Type != protocol.CmdMeasure || measure.Target != "info-2" {
		t.Fatalf("expected measure for info-2, got %+v", measure)
	}

	if err := conn.WriteJSON(protocol.Event{
		Type:      protocol.EventMeasured,
		TooltipID: "info-2",
		Measured:  &protocol.Size{Width: 300, Height: 200},
	}); err != nil {
		t.Fatalf("write measured: %v", err)
	}
	position := readCommand(t, conn)
	if position.Type != protocol.CmdPosition || position.Target != "info-2" {
		t.Fatalf("expected position for info-2, got %+v", position)
	}
	if position.X != 170 {
		t.Fatalf("x=%v want=170", position.X)
	}
}

func TestStaleBridgeIsToldToReload(t *testing.T) {
	a := newTestApp(t)
	conn := dialBridge(t, a)

	if err := conn.WriteJSON(protocol.Event{Type: protocol.EventReady, BridgeVersion: "v0.0.1"}); err != nil {
		t.Fatalf("write ready: %v", err)
	}

	cmd := readCommand(t, conn)
	if cmd.Type != protocol.CmdReload {
		t.Fatalf("expected reload command, got %+v", cmd)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var next protocol.Command
	if err := conn.ReadJSON(&next); err == nil {
		t.Fatalf("connection should be closed after reload, read %+v", next)
	}
}
