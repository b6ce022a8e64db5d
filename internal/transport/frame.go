package transport

import "encoding/json"

// Frame is the result of classifying one inbound message as either a control
// frame or opaque payload.
type Frame struct {
	Control bool
	Err     string // server-supplied error message, set when Control is true
	Payload []byte // the original message, untouched, when Control is false
}

// controlFrame is the only recognised control shape on a terminal socket.
type controlFrame struct {
	Err string `json:"error"`
}

// Classify applies the wire protocol's control-vs-payload disambiguation:
// a text message whose first byte is '{' is tentatively parsed as a control
// envelope, and treated as one only when it carries a non-empty error field.
// Everything else, including JSON that fails to parse or carries no error,
// is opaque payload to be forwarded verbatim.
//
// The first-byte sniff is part of the wire contract; do not replace it with
// length-prefixed framing.
func Classify(text bool, data []byte) Frame {
	if text && len(data) > 0 && data[0] == '{' {
		var ctrl controlFrame
		if err := json.Unmarshal(data, &ctrl); err == nil && ctrl.Err != "" {
			return Frame{Control: true, Err: ctrl.Err}
		}
	}
	return Frame{Payload: data}
}

// Envelope is the control frame carried on the event channel. Data's shape
// depends on Event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeEnvelope parses an event-channel message. Messages that do not parse
// are discarded by the caller, never surfaced.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// InputFrame is the single outbound frame kind on a terminal socket.
type InputFrame struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// NewInputFrame wraps raw keyboard input for transmission.
func NewInputFrame(data string) InputFrame {
	return InputFrame{Type: "input", Data: data}
}
