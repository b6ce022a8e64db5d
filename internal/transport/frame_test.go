package transport

import (
	"bytes"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		text    bool
		data    string
		control bool
		errMsg  string
	}{
		{
			name:    "error control frame",
			text:    true,
			data:    `{"error": "disk full"}`,
			control: true,
			errMsg:  "disk full",
		},
		{
			name: "plain shell output",
			text: true,
			data: "ls -la\n",
		},
		{
			name: "json without error field is payload",
			text: true,
			data: `{"type": "status", "ok": true}`,
		},
		{
			name: "json with empty error is payload",
			text: true,
			data: `{"error": ""}`,
		},
		{
			name: "brace-prefixed garbage falls back to payload",
			text: true,
			data: `{not json at all`,
		},
		{
			name: "binary message is never control",
			text: false,
			data: `{"error": "disk full"}`,
		},
		{
			name: "empty message",
			text: true,
			data: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.text, []byte(tt.data))
			if f.Control != tt.control {
				t.Fatalf("Control = %v, want %v", f.Control, tt.control)
			}
			if tt.control {
				if f.Err != tt.errMsg {
					t.Errorf("Err = %q, want %q", f.Err, tt.errMsg)
				}
				return
			}
			if !bytes.Equal(f.Payload, []byte(tt.data)) {
				t.Errorf("Payload = %q, want %q (must be forwarded verbatim)", f.Payload, tt.data)
			}
		})
	}
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"event": "check_update", "data": {"check_id": 7}}`))
	if err != nil {
		t.Fatal(err)
	}
	if env.Event != "check_update" {
		t.Errorf("Event = %q", env.Event)
	}
	if len(env.Data) == 0 {
		t.Error("Data not captured")
	}

	if _, err := DecodeEnvelope([]byte("not json")); err == nil {
		t.Error("expected error for unparseable envelope")
	}
}

func TestNewInputFrame(t *testing.T) {
	f := NewInputFrame("echo hi\r")
	if f.Type != "input" || f.Data != "echo hi\r" {
		t.Errorf("unexpected frame %+v", f)
	}
}
