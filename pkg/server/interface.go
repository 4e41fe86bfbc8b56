/*
Package server implements msgpack IPC between a host front end and the search widget.

The host forwards UI events over stdin and renders what comes back on stdout.
Every request gets exactly one response frame; results produced later by the
debounced query arrive as pushed frames.

# IPC

Requests carry an ID, an event name and an optional value:

	{"id": "req_001", "ev": "input", "v": "inter"}
	{"id": "req_002", "ev": "click", "v": "library"}
	{"id": "req_003", "ev": "shortcut", "mod": ["meta"]}

Responses report the session state, the query state and the results container:

	{"id": "req_001", "st": "ready", "qs": "debouncing", "vis": false}

Once the quiet period passes, the rendered results are pushed:

	{"id": "push", "st": "ready", "qs": "displaying", "vis": true, "html": "<div class=\"search-section\">..."}

# Events

  - input: the input's value changed; v is the raw value.
  - clear: the clear affordance was activated.
  - escape: Escape was pressed.
  - click: a click landed on the element whose id is v; empty v means outside any known element.
  - shortcut: the focus shortcut was pressed; v overrides the key, mod lists modifiers.
  - focus: focus moved to the element whose id is v; empty v blurs.
  - state: no-op, reports the current state.
  - session: a playback session started; v is the media URL of the current page.
  - loaded: the host's answer to a load frame; id echoes the frame id, v holds the error code or is empty on success.

A session event makes the server emit a load frame the host must answer with loaded:

	{"id": "load_1", "url": "/media/interstellar.mp4"}
*/
package server

// Event names accepted in Request.Event.
const (
	EventInput    = "input"
	EventClear    = "clear"
	EventEscape   = "escape"
	EventClick    = "click"
	EventShortcut = "shortcut"
	EventFocus    = "focus"
	EventState    = "state"
	EventSession  = "session"
	EventLoaded   = "loaded"
)

const (
	// PushID marks result frames nobody asked for directly.
	PushID = "push"

	// ReadyID marks the frame sent once the server listens.
	ReadyID = "ready"
)

// Request is one UI event from the host.
type Request struct {
	ID        string   `msgpack:"id"`
	Event     string   `msgpack:"ev"`
	Value     string   `msgpack:"v,omitempty"`
	Modifiers []string `msgpack:"mod,omitempty"`
}

// Response reports widget state after a request, or pushes new results.
type Response struct {
	ID         string   `msgpack:"id"`
	State      string   `msgpack:"st,omitempty"`
	QueryState string   `msgpack:"qs,omitempty"`
	Visible    bool     `msgpack:"vis"`
	HTML       string   `msgpack:"html,omitempty"`
	Fired      []string `msgpack:"fired,omitempty"`
	Prevented  bool     `msgpack:"pd,omitempty"`
	Error      string   `msgpack:"err,omitempty"`
}

// LoadFrame asks the host to load media on the playback receiver.
type LoadFrame struct {
	ID  string `msgpack:"id"`
	URL string `msgpack:"url"`
}
