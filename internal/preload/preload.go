// Package preload owns the background warmup and activation of embedded
// demos. Each demo key gets at most one background frame per session
// lifetime; activation clones the warm frame into the visible panel and
// falls back to the panel's own lazy markup when no warm frame exists.
package preload

import (
	"sync"
	"time"

	"github.com/mkarlesky/deckhand/internal/config"
	"github.com/mkarlesky/deckhand/internal/protocol"
)

type Cache struct {
	mu      sync.Mutex
	emit    func(protocol.Command)
	demos   map[string]config.Demo
	order   []string
	stagger []time.Duration

	loaded    map[string]bool
	openPanel string
	timers    []*time.Timer
}

func New(demos []config.Demo, stagger []time.Duration, emit func(protocol.Command)) *Cache {
	if emit == nil {
		emit = func(protocol.Command) {}
	}
	c := &Cache{
		emit:    emit,
		demos:   make(map[string]config.Demo, len(demos)),
		stagger: stagger,
		loaded:  make(map[string]bool),
	}
	for _, d := range demos {
		c.demos[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	return c
}

// Preload attaches a background frame for agentID. It reports whether a
// frame was attached by this call: unknown keys and already-loaded keys are
// no-ops. The loaded flag is monotonic; nothing ever clears it.
func (c *Cache) Preload(agentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preloadLocked(agentID)
}

func (c *Cache) preloadLocked(agentID string) bool {
	d, ok := c.demos[agentID]
	if !ok || c.loaded[agentID] {
		return false
	}
	c.loaded[agentID] = true
	c.emit(protocol.Command{Type: protocol.CmdFrame, Agent: agentID, EmbedURL: d.EmbedURL})
	return true
}

// ArmStagger schedules a warmup for every demo on the configured slot
// delays, cancelling any batch still pending from a previous call. Demos
// beyond the slot table extend it in 1.5s steps so a long demo list still
// loads one at a time.
func (c *Cache) ArmStagger() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelStaggerLocked()
	for i, id := range c.order {
		if c.loaded[id] {
			continue
		}
		id := id
		t := time.AfterFunc(c.slotDelay(i), func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.preloadLocked(id)
		})
		c.timers = append(c.timers, t)
	}
}

// CancelStagger stops any pending warmups. Frames already attached stay
// attached; the loaded flags never roll back.
func (c *Cache) CancelStagger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelStaggerLocked()
}

func (c *Cache) cancelStaggerLocked() {
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
}

func (c *Cache) slotDelay(slot int) time.Duration {
	if slot < len(c.stagger) {
		return c.stagger[slot]
	}
	if len(c.stagger) == 0 {
		return time.Duration(slot) * 1500 * time.Millisecond
	}
	last := c.stagger[len(c.stagger)-1]
	return last + time.Duration(slot-len(c.stagger)+1)*1500*time.Millisecond
}

// Activate opens the demo's destination panel, closing any other open panel
// first. It reports whether a preloaded frame was cloned in (usedPreload)
// and whether the key was known at all (ok). With no warm frame the panel's
// own embed markup loads lazily.
func (c *Cache) Activate(agentID string) (usedPreload, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, known := c.demos[agentID]
	if !known {
		return false, false
	}

	if c.openPanel != "" && c.openPanel != d.PanelID {
		c.emit(protocol.Command{Type: protocol.CmdPanel, Target: c.openPanel, Open: false})
	}
	c.openPanel = d.PanelID
	c.emit(protocol.Command{Type: protocol.CmdPanel, Target: d.PanelID, Open: true})

	used := false
	if c.loaded[agentID] {
		c.emit(protocol.Command{Type: protocol.CmdClone, Agent: agentID, Target: d.PanelID})
		used = true
	}

	c.emit(protocol.Command{Type: protocol.CmdConfigure, Keyboard: false})
	c.emit(protocol.Command{Type: protocol.CmdScroll, Lock: true})
	return used, true
}

// Deactivate closes whatever panel is open and restores keyboard navigation
// and body scrolling. Safe to call with nothing open.
func (c *Cache) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.openPanel != "" {
		c.emit(protocol.Command{Type: protocol.CmdPanel, Target: c.openPanel, Open: false})
		c.openPanel = ""
	}
	c.emit(protocol.Command{Type: protocol.CmdConfigure, Keyboard: true})
	c.emit(protocol.Command{Type: protocol.CmdScroll, Lock: false})
}

// OpenPanel returns the id of the currently open destination panel, or ""
// when none is open.
func (c *Cache) OpenPanel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openPanel
}

// Loaded reports whether a background frame exists for agentID.
func (c *Cache) Loaded(agentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded[agentID]
}
