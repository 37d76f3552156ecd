package tooltip

import (
	"sync"
	"testing"
	"time"

	"github.com/mkarlesky/deckhand/internal/layout"
	"github.com/mkarlesky/deckhand/internal/protocol"
)

type recorder struct {
	mu   sync.Mutex
	cmds []protocol.Command
}

func (r *recorder) emit(c protocol.Command) {
	r.mu.Lock()
	r.cmds = append(r.cmds, c)
	r.mu.Unlock()
}

func (r *recorder) byType(typ string) []protocol.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []protocol.Command
	for _, c := range r.cmds {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

func newTestManager(rec *recorder) *Manager {
	m := New(Options{
		HoverGrace: 15 * time.Millisecond,
		HideDelay:  15 * time.Millisecond,
		Policy: layout.Policy{
			WideMin:  1280,
			Margin:   10,
			Fallback: layout.Size{W: 240, H: 180},
		},
		AnchorClassPrefix: "funnel-step-",
		TooltipIDPrefix:   "info-",
		PairOffset:        -1,
	}, rec.emit)
	m.SetViewport(layout.Size{W: 1400, H: 800})
	return m
}

func settle() {
	time.Sleep(80 * time.Millisecond)
}

func TestPairTooltipID(t *testing.T) {
	m := newTestManager(&recorder{})
	cases := []struct {
		classes []string
		want    string
		ok      bool
	}{
		{classes: []string{"funnel-step-3"}, want: "info-2", ok: true},
		{classes: []string{"other", "funnel-step-1"}, want: "info-0", ok: true},
		{classes: []string{"funnel-step-0"}, ok: false},
		{classes: []string{"funnel-step-x"}, ok: false},
		{classes: []string{"unrelated"}, ok: false},
		{classes: nil, ok: false},
	}
	for _, tc := range cases {
		got, ok := m.PairTooltipID(tc.classes)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("PairTooltipID(%v)=(%q,%v) want (%q,%v)", tc.classes, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAnchorEnterStartsMeasureSequence(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(rec)

	m.AnchorEnter([]string{"funnel-step-3"}, layout.Rect{Left: 100, Top: 200, Width: 60, Height: 40})

	displays := rec.byType(protocol.CmdDisplay)
	if len(displays) != 1 || displays[0].Target != "info-2" || !displays[0].Visible {
		t.Fatalf("unexpected display commands: %+v", displays)
	}
	measures := rec.byType(protocol.CmdMeasure)
	if len(measures) != 1 || measures[0].Target != "info-2" {
		t.Fatalf("unexpected measure commands: %+v", measures)
	}
	if !m.Displayed("info-2") {
		t.Fatal("tooltip should be displayed after anchor enter")
	}
}

func TestMeasuredPlacesOnceAndIgnoresStaleReports(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(rec)

	anchor := layout.Rect{Left: 100, Top: 390, Width: 60, Height: 20}
	m.AnchorEnter([]string{"funnel-step-3"}, anchor)
	m.Measured("info-2", layout.Size{W: 300, H: 200})

	positions := rec.byType(protocol.CmdPosition)
	if len(positions) != 1 {
		t.Fatalf("expected one position command, got %+v", positions)
	}
	if got, want := positions[0].X, anchor.Right()+10; got != want {
		t.Fatalf("x=%v want=%v", got, want)
	}
	if got, want := positions[0].Y, anchor.MidY()-100; got != want {
		t.Fatalf("y=%v want=%v", got, want)
	}

	m.Measured("info-2", layout.Size{W: 300, H: 200})
	if got := rec.byType(protocol.CmdPosition); len(got) != 1 {
		t.Fatalf("stale measured report should not re-place, got %+v", got)
	}
	m.Measured("info-99", layout.Size{W: 300, H: 200})
	if got := rec.byType(protocol.CmdPosition); len(got) != 1 {
		t.Fatalf("unknown tooltip measured report should be a no-op, got %+v", got)
	}
}

func TestZeroMeasurementPlacesWithFallbackSize(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(rec)

	m.AnchorEnter([]string{"funnel-step-3"}, layout.Rect{Left: 1300, Top: 400, Width: 60, Height: 20})
	m.Measured("info-2", layout.Size{})

	positions := rec.byType(protocol.CmdPosition)
	if len(positions) != 1 {
		t.Fatalf("expected one position command, got %+v", positions)
	}
	if got, want := positions[0].X, 1400.0-240-10; got != want {
		t.Fatalf("fallback width not used for clamping: x=%v want=%v", got, want)
	}
}

func TestMalformedAnchorClassIsIgnored(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(rec)

	m.AnchorEnter([]string{"funnel-step-abc"}, layout.Rect{})
	m.AnchorLeave([]string{"funnel-step-abc"})

	if len(rec.byType(protocol.CmdDisplay)) != 0 {
		t.Fatalf("malformed anchor should emit nothing, got %+v", rec.cmds)
	}
}

func TestLeaveHidesAfterBothDelays(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(rec)

	m.AnchorEnter([]string{"funnel-step-3"}, layout.Rect{Left: 100, Top: 200})
	m.AnchorLeave([]string{"funnel-step-3"})
	settle()

	if m.Displayed("info-2") {
		t.Fatal("tooltip should be hidden after grace and trailing delays")
	}
	displays := rec.byType(protocol.CmdDisplay)
	last := displays[len(displays)-1]
	if last.Target != "info-2" || last.Visible {
		t.Fatalf("expected trailing hide command, got %+v", displays)
	}
}

func TestReenterCancelsPendingHide(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(rec)

	anchor := layout.Rect{Left: 100, Top: 200}
	m.AnchorEnter([]string{"funnel-step-3"}, anchor)
	m.AnchorLeave([]string{"funnel-step-3"})
	m.AnchorEnter([]string{"funnel-step-3"}, anchor)
	settle()

	if !m.Displayed("info-2") {
		t.Fatal("re-enter before the grace delay fired must keep the tooltip displayed")
	}
	for _, c := range rec.byType(protocol.CmdDisplay) {
		if !c.Visible {
			t.Fatalf("no hide command may fire after re-enter, got %+v", rec.cmds)
		}
	}
}

func TestPointerTravelToTooltipKeepsItVisible(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(rec)

	m.AnchorEnter([]string{"funnel-step-3"}, layout.Rect{Left: 100, Top: 200})
	m.AnchorLeave([]string{"funnel-step-3"})
	m.TipEnter("info-2")
	settle()

	if !m.Displayed("info-2") {
		t.Fatal("tooltip under direct hover must stay displayed")
	}

	m.TipLeave("info-2")
	settle()
	if m.Displayed("info-2") {
		t.Fatal("tooltip should hide after the pointer leaves it")
	}
}

func TestPinBlocksTimedHideAndDismissOverrides(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(rec)

	m.AnchorEnter([]string{"funnel-step-3"}, layout.Rect{Left: 100, Top: 200})
	m.Pin("info-2")
	m.AnchorLeave([]string{"funnel-step-3"})
	settle()

	if !m.Displayed("info-2") {
		t.Fatal("pinned tooltip must survive the timed hide")
	}

	m.Dismiss("info-2")
	settle()
	if m.Displayed("info-2") {
		t.Fatal("dismiss must override the pin and hide the tooltip")
	}
}

func TestResetDropsStateAndStalenessGuardsHold(t *testing.T) {
	rec := &recorder{}
	m := newTestManager(rec)

	m.AnchorEnter([]string{"funnel-step-3"}, layout.Rect{Left: 100, Top: 200})
	m.AnchorLeave([]string{"funnel-step-3"})
	m.Reset()
	settle()

	if len(rec.byType(protocol.CmdPosition)) != 0 {
		t.Fatalf("no placement expected, got %+v", rec.cmds)
	}
	for _, c := range rec.byType(protocol.CmdDisplay) {
		if !c.Visible {
			t.Fatalf("stale timer must not emit a hide after reset, got %+v", rec.cmds)
		}
	}
	m.Measured("info-2", layout.Size{W: 100, H: 100})
	if len(rec.byType(protocol.CmdPosition)) != 0 {
		t.Fatal("measured report after reset must be a no-op")
	}
}
