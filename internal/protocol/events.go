// Package protocol defines the JSON messages exchanged with the in-page
// bridge: DOM events travel up the socket, mutation commands travel down.
package protocol

// Event types sent by the bridge.
const (
	EventReady    = "ready"
	EventSection  = "section"
	EventFragment = "fragment"
	EventEnter    = "enter"
	EventLeave    = "leave"
	EventClick    = "click"
	EventMeasured = "measured"
	EventResize   = "resize"
	EventClosed   = "closed"
)

// Rect mirrors a DOMRect in viewport coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size is a measured width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Event is the envelope for everything the bridge forwards. Only the fields
// relevant to Type are populated; the rest stay at their zero values.
type Event struct {
	Type string `json:"type"`

	// ready
	BridgeVersion string `json:"bridge_version,omitempty"`

	// section / fragment
	Section       string `json:"section,omitempty"`
	FragmentShown bool   `json:"fragment_shown,omitempty"`

	// enter / leave / click: the delegated listener's resolved target
	TargetID      string   `json:"target_id,omitempty"`
	TargetClasses []string `json:"target_classes,omitempty"`
	AnchorRect    *Rect    `json:"anchor_rect,omitempty"`

	// measured
	TooltipID string `json:"tooltip_id,omitempty"`
	Measured  *Size  `json:"measured,omitempty"`

	// ready / resize
	Viewport *Size `json:"viewport,omitempty"`
}
