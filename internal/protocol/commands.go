package protocol

// Command types sent to the bridge.
const (
	// CmdDisplay toggles whether Target occupies layout space.
	CmdDisplay = "display"
	// CmdMeasure lays Target out invisibly (zero opacity, hidden
	// visibility) and asks the bridge to report its rendered size.
	CmdMeasure = "measure"
	// CmdPosition applies fixed-position coordinates to Target and
	// restores its visibility.
	CmdPosition = "position"
	// CmdFrame attaches an off-screen, inert background embed for Agent.
	CmdFrame = "frame"
	// CmdClone duplicates the background embed for Agent into Target,
	// leaving the background original in place.
	CmdClone = "clone"
	// CmdPanel opens or closes the destination panel Target.
	CmdPanel = "panel"
	// CmdConfigure toggles host-framework keyboard navigation.
	CmdConfigure = "configure"
	// CmdScroll locks or unlocks body scrolling.
	CmdScroll = "scroll"
	// CmdReload tells a stale bridge to reload the page.
	CmdReload = "reload"
)

// Command is the envelope for everything the server sends down. As with
// Event, only the fields relevant to Type are populated.
type Command struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`

	// display
	Visible bool `json:"visible,omitempty"`

	// position
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// frame / clone
	Agent    string `json:"agent,omitempty"`
	EmbedURL string `json:"embed_url,omitempty"`

	// panel
	Open bool `json:"open,omitempty"`

	// configure / scroll
	Keyboard bool `json:"keyboard,omitempty"`
	Lock     bool `json:"lock,omitempty"`

	// reload
	Reason string `json:"reason,omitempty"`
}
