// Package tooltip owns hover-triggered info-box visibility. Each tooltip
// runs the same small state machine: a show is measure-then-place, a hide is
// a two-stage delay (grace, then trailing hide) so the pointer can travel
// from anchor to tooltip without flicker. Every pending hide is an explicit
// timer handle; re-arming stops the previous one.
package tooltip

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mkarlesky/deckhand/internal/layout"
	"github.com/mkarlesky/deckhand/internal/protocol"
)

type Options struct {
	HoverGrace time.Duration
	HideDelay  time.Duration
	Policy     layout.Policy

	// Pairing convention: an anchor class AnchorClassPrefix+N maps to the
	// tooltip element TooltipIDPrefix+(N+PairOffset). Computed on every
	// event, never stored.
	AnchorClassPrefix string
	TooltipIDPrefix   string
	PairOffset        int
}

type Manager struct {
	mu       sync.Mutex
	emit     func(protocol.Command)
	opts     Options
	viewport layout.Size
	tips     map[string]*tipState
}

type tipState struct {
	displayed    bool
	hoverVisible bool
	pinned       bool
	measuring    bool
	overAnchor   bool
	overTip      bool
	anchor       layout.Rect

	graceTimer *time.Timer
	hideTimer  *time.Timer
}

func New(opts Options, emit func(protocol.Command)) *Manager {
	if emit == nil {
		emit = func(protocol.Command) {}
	}
	return &Manager{
		emit: emit,
		opts: opts,
		tips: make(map[string]*tipState),
	}
}

// PairTooltipID derives the tooltip element id from an anchor's class list.
// Malformed suffixes and negative derived indices report false; the caller
// skips the event.
func (m *Manager) PairTooltipID(classes []string) (string, bool) {
	for _, c := range classes {
		if !strings.HasPrefix(c, m.opts.AnchorClassPrefix) {
			continue
		}
		suffix := strings.TrimPrefix(c, m.opts.AnchorClassPrefix)
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		idx := n + m.opts.PairOffset
		if idx < 0 {
			continue
		}
		return m.opts.TooltipIDPrefix + strconv.Itoa(idx), true
	}
	return "", false
}

// IsTooltipID reports whether an element id names a tooltip element.
func (m *Manager) IsTooltipID(id string) bool {
	return id != "" && strings.HasPrefix(id, m.opts.TooltipIDPrefix)
}

func (m *Manager) SetViewport(vp layout.Size) {
	m.mu.Lock()
	m.viewport = vp
	m.mu.Unlock()
}

// AnchorEnter starts the show sequence for the anchor's paired tooltip:
// display it, then ask the bridge for its rendered size. Placement waits for
// the Measured reply.
func (m *Manager) AnchorEnter(classes []string, anchor layout.Rect) {
	id, ok := m.PairTooltipID(classes)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.ensure(id)
	ts.overAnchor = true
	ts.anchor = anchor
	m.show(id, ts)
}

func (m *Manager) show(id string, ts *tipState) {
	stopTimer(&ts.graceTimer)
	stopTimer(&ts.hideTimer)
	ts.displayed = true
	ts.hoverVisible = true
	ts.measuring = true
	m.emit(protocol.Command{Type: protocol.CmdDisplay, Target: id, Visible: true})
	m.emit(protocol.Command{Type: protocol.CmdMeasure, Target: id})
}

// Measured completes a pending show with the bridge's size report. A report
// for a tooltip that is no longer mid-show is stale and does nothing.
func (m *Manager) Measured(id string, size layout.Size) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts, ok := m.tips[id]
	if !ok || !ts.measuring {
		return
	}
	ts.measuring = false
	pt := m.opts.Policy.Place(m.viewport, ts.anchor, size)
	m.emit(protocol.Command{Type: protocol.CmdPosition, Target: id, X: pt.X, Y: pt.Y})
}

// AnchorLeave arms the two-stage hide: after the grace delay the hover flag
// clears unless the pointer reached the tooltip itself, then the trailing
// hide delay decides whether the tooltip leaves layout.
func (m *Manager) AnchorLeave(classes []string) {
	id, ok := m.PairTooltipID(classes)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ts, ok := m.tips[id]
	if !ok {
		return
	}
	ts.overAnchor = false
	m.rearm(&ts.graceTimer, m.opts.HoverGrace, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.tips[id] != ts {
			return
		}
		if !ts.overTip {
			ts.hoverVisible = false
		}
		m.armHideLocked(id, ts)
	})
}

func (m *Manager) TipEnter(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts, ok := m.tips[id]
	if !ok {
		return
	}
	stopTimer(&ts.graceTimer)
	stopTimer(&ts.hideTimer)
	ts.overTip = true
	ts.hoverVisible = true
}

func (m *Manager) TipLeave(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts, ok := m.tips[id]
	if !ok {
		return
	}
	ts.overTip = false
	if !ts.overAnchor {
		ts.hoverVisible = false
	}
	m.armHideLocked(id, ts)
}

// Pin keeps the tooltip visible past the timed hide until dismissed.
func (m *Manager) Pin(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts, ok := m.tips[id]
	if !ok {
		return
	}
	ts.pinned = true
}

// Dismiss clears both the hover flag and the pin, then applies the trailing
// hide. Close overrides pin.
func (m *Manager) Dismiss(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts, ok := m.tips[id]
	if !ok {
		return
	}
	ts.hoverVisible = false
	ts.pinned = false
	ts.overTip = false
	m.armHideLocked(id, ts)
}

func (m *Manager) armHideLocked(id string, ts *tipState) {
	m.rearm(&ts.hideTimer, m.opts.HideDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.tips[id] != ts {
			return
		}
		if ts.hoverVisible || ts.pinned || !ts.displayed {
			return
		}
		ts.displayed = false
		ts.measuring = false
		m.emit(protocol.Command{Type: protocol.CmdDisplay, Target: id, Visible: false})
	})
}

// Reset drops all tracked tooltips and their timers. Called on every section
// change; pairs are rediscovered from fresh events.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ts := range m.tips {
		stopTimer(&ts.graceTimer)
		stopTimer(&ts.hideTimer)
	}
	m.tips = make(map[string]*tipState)
}

// Displayed reports whether a tooltip currently occupies layout space.
func (m *Manager) Displayed(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts, ok := m.tips[id]
	return ok && ts.displayed
}

func (m *Manager) ensure(id string) *tipState {
	ts, ok := m.tips[id]
	if !ok {
		ts = &tipState{}
		m.tips[id] = ts
	}
	return ts
}

func (m *Manager) rearm(t **time.Timer, d time.Duration, fn func()) {
	stopTimer(t)
	*t = time.AfterFunc(d, fn)
}

func stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
