// Package session hosts one page-session controller per bridge connection.
// The controller owns the tooltip manager, the preload cache and the
// keyboard/scroll suppression state, and routes every bridge event to the
// right subsystem. All element matching happens here against the stable
// selector patterns from the config; the bridge installs a single delegated
// listener and never tears listeners down on section changes.
package session

import (
	"errors"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/mkarlesky/deckhand/internal/config"
	"github.com/mkarlesky/deckhand/internal/layout"
	"github.com/mkarlesky/deckhand/internal/preload"
	"github.com/mkarlesky/deckhand/internal/protocol"
	"github.com/mkarlesky/deckhand/internal/tooltip"
)

// ErrStaleBridge is returned when the connecting bridge script predates
// protocol.MinBridgeVersion. The caller should drop the connection; the
// bridge has already been told to reload.
var ErrStaleBridge = errors.New("bridge version too old")

// demoCloseClass marks the panel close controls in the deck markup.
const demoCloseClass = "demo-close"

// Sink receives the interaction log. A nil Sink discards everything.
type Sink interface {
	RecordSessionStart(id, bridgeVersion string, at time.Time) error
	RecordSessionEnd(id string, at time.Time) error
	RecordTooltipShow(sessionID, tooltipID string, at time.Time) error
	RecordDemoActivation(sessionID, agentID string, preloaded bool, at time.Time) error
}

type Session struct {
	id       string
	cfg      config.File
	sink     Sink
	tooltips *tooltip.Manager
	demos    *preload.Cache
	emit     func(protocol.Command)

	// fragment is the paginated sub-content index of the active section.
	// Events arrive sequentially from one read loop, so a plain field is
	// enough.
	fragment int
}

func New(cfg config.File, sink Sink, emit func(protocol.Command)) *Session {
	if emit == nil {
		emit = func(protocol.Command) {}
	}
	s := &Session{
		id:   uuid.NewString(),
		cfg:  cfg,
		sink: sink,
		emit: emit,
	}
	pairOffset := -1
	if cfg.Tooltips.PairOffset != nil {
		pairOffset = *cfg.Tooltips.PairOffset
	}
	s.tooltips = tooltip.New(tooltip.Options{
		HoverGrace: cfg.Timing.HoverGrace(),
		HideDelay:  cfg.Timing.HideDelay(),
		Policy: layout.Policy{
			WideMin: float64(cfg.Tooltips.WideViewportMinPX),
			Margin:  float64(cfg.Tooltips.ViewportMarginPX),
			Fallback: layout.Size{
				W: float64(cfg.Tooltips.FallbackWidthPX),
				H: float64(cfg.Tooltips.FallbackHeightPX),
			},
		},
		AnchorClassPrefix: cfg.Tooltips.AnchorClassPrefix,
		TooltipIDPrefix:   cfg.Tooltips.TooltipIDPrefix,
		PairOffset:        pairOffset,
	}, emit)
	s.demos = preload.New(cfg.Demos, cfg.Timing.PreloadStagger(), emit)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// HandleEvent routes one bridge event. Unknown targets and unknown event
// types fall through silently; the only error is a stale bridge handshake.
func (s *Session) HandleEvent(ev protocol.Event) error {
	switch ev.Type {
	case protocol.EventReady:
		return s.handleReady(ev)
	case protocol.EventSection:
		s.handleSection(ev)
	case protocol.EventFragment:
		if ev.FragmentShown {
			s.fragment++
		} else if s.fragment > 0 {
			s.fragment--
		}
	case protocol.EventEnter:
		s.handleEnter(ev)
	case protocol.EventLeave:
		s.handleLeave(ev)
	case protocol.EventClick:
		s.handleClick(ev)
	case protocol.EventMeasured:
		if ev.Measured != nil {
			s.tooltips.Measured(ev.TooltipID, layout.Size{W: ev.Measured.Width, H: ev.Measured.Height})
		}
	case protocol.EventResize:
		if ev.Viewport != nil {
			s.tooltips.SetViewport(layout.Size{W: ev.Viewport.Width, H: ev.Viewport.Height})
		}
	case protocol.EventClosed:
		s.demos.Deactivate()
	}
	return nil
}

func (s *Session) handleReady(ev protocol.Event) error {
	if !protocol.BridgeVersionOK(ev.BridgeVersion) {
		s.emit(protocol.Command{Type: protocol.CmdReload, Reason: "bridge out of date"})
		return ErrStaleBridge
	}
	if ev.Viewport != nil {
		s.tooltips.SetViewport(layout.Size{W: ev.Viewport.Width, H: ev.Viewport.Height})
	}
	if s.sink != nil {
		_ = s.sink.RecordSessionStart(s.id, ev.BridgeVersion, time.Now())
	}
	return nil
}

// Fragment returns the current pagination index within the active section.
func (s *Session) Fragment() int {
	return s.fragment
}

func (s *Session) handleSection(ev protocol.Event) {
	s.tooltips.Reset()
	s.fragment = 0
	if ev.Section != "" && ev.Section == s.cfg.Deck.DemoSection {
		s.demos.ArmStagger()
	} else {
		s.demos.CancelStagger()
	}
}

func (s *Session) handleEnter(ev protocol.Event) {
	// Anything inside a tooltip subtree counts as the tooltip itself, so
	// crossing onto a close button or inner text keeps the tooltip alive.
	if id, ok := s.tooltipForEvent(ev); ok {
		s.tooltips.TipEnter(id)
		return
	}
	if agentID, ok := s.demoForTarget(ev); ok {
		// Opportunistic warmup; redundant calls are free.
		s.demos.Preload(agentID)
		return
	}
	if id, ok := s.tooltips.PairTooltipID(ev.TargetClasses); ok {
		fresh := !s.tooltips.Displayed(id)
		s.tooltips.AnchorEnter(ev.TargetClasses, rectFromEvent(ev))
		if fresh && s.sink != nil {
			_ = s.sink.RecordTooltipShow(s.id, id, time.Now())
		}
	}
}

func (s *Session) handleLeave(ev protocol.Event) {
	if id, ok := s.tooltipForEvent(ev); ok {
		s.tooltips.TipLeave(id)
		return
	}
	if _, ok := s.tooltips.PairTooltipID(ev.TargetClasses); ok {
		s.tooltips.AnchorLeave(ev.TargetClasses)
	}
}

// tooltipForEvent resolves the tooltip a pointer event belongs to, either
// via the bridge's tooltip-ancestor annotation or the target id itself.
func (s *Session) tooltipForEvent(ev protocol.Event) (string, bool) {
	if s.tooltips.IsTooltipID(ev.TooltipID) {
		return ev.TooltipID, true
	}
	if s.tooltips.IsTooltipID(ev.TargetID) {
		return ev.TargetID, true
	}
	return "", false
}

func (s *Session) handleClick(ev protocol.Event) {
	if hasClass(ev.TargetClasses, demoCloseClass) {
		s.demos.Deactivate()
		return
	}
	if hasClass(ev.TargetClasses, s.cfg.Tooltips.DismissClass) {
		if s.tooltips.IsTooltipID(ev.TooltipID) {
			s.tooltips.Dismiss(ev.TooltipID)
		}
		return
	}
	if agentID, ok := s.demoForTarget(ev); ok {
		used, ok := s.demos.Activate(agentID)
		if ok && s.sink != nil {
			_ = s.sink.RecordDemoActivation(s.id, agentID, used, time.Now())
		}
		return
	}
	// A click inside the tooltip body pins it open past the timed hide.
	if s.tooltips.IsTooltipID(ev.TooltipID) {
		s.tooltips.Pin(ev.TooltipID)
	}
}

// Close stops every pending timer. No commands are sent; the peer is gone.
func (s *Session) Close() {
	s.tooltips.Reset()
	s.demos.CancelStagger()
	if s.sink != nil {
		_ = s.sink.RecordSessionEnd(s.id, time.Now())
	}
}

func (s *Session) demoForTarget(ev protocol.Event) (string, bool) {
	for _, d := range s.cfg.Demos {
		if matchTarget(d.TriggerPattern, ev) {
			return d.ID, true
		}
	}
	return "", false
}

func matchTarget(pattern string, ev protocol.Event) bool {
	if ev.TargetID != "" {
		if ok, err := doublestar.Match(pattern, ev.TargetID); err == nil && ok {
			return true
		}
	}
	for _, c := range ev.TargetClasses {
		if ok, err := doublestar.Match(pattern, c); err == nil && ok {
			return true
		}
	}
	return false
}

func hasClass(classes []string, class string) bool {
	if class == "" {
		return false
	}
	for _, c := range classes {
		if c == class {
			return true
		}
	}
	return false
}

func rectFromEvent(ev protocol.Event) layout.Rect {
	if ev.AnchorRect == nil {
		return layout.Rect{}
	}
	return layout.Rect{
		Left:   ev.AnchorRect.Left,
		Top:    ev.AnchorRect.Top,
		Width:  ev.AnchorRect.Width,
		Height: ev.AnchorRect.Height,
	}
}
