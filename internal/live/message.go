package live

// Message types.
const (
	TypeEvent  = "event"
	TypePing   = "ping"
	TypePong   = "pong"
	TypeRender = "render"
	TypeError  = "error"
)

// Message is sent by the client.
type Message struct {
	Type string `json:"type" msgpack:"type"`

	// Selector picks the event target in the session document.
	Selector string `json:"selector,omitempty" msgpack:"selector,omitempty"`

	// Event is the event type, e.g. "click".
	Event string `json:"event,omitempty" msgpack:"event,omitempty"`

	// Value, when set, is written to the target's value property before
	// the event is dispatched.
	Value *string `json:"value,omitempty" msgpack:"value,omitempty"`

	// Detail is passed as the event detail.
	Detail any `json:"detail,omitempty" msgpack:"detail,omitempty"`
}

// Reply is sent by the server.
type Reply struct {
	Type    string `json:"type" msgpack:"type"`
	Session string `json:"session,omitempty" msgpack:"session,omitempty"`
	HTML    string `json:"html,omitempty" msgpack:"html,omitempty"`
	Code    string `json:"code,omitempty" msgpack:"code,omitempty"`
	Message string `json:"message,omitempty" msgpack:"message,omitempty"`
}
