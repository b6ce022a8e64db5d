package ui

import (
	"strings"
	"sync"
)

const defaultScrollbackLimit = 64 * 1024

// Scrollback is the opaque consumer behind a session's write callback: it
// accumulates raw output bytes and serves the tail for rendering. No
// terminal emulation is attempted.
type Scrollback struct {
	mu  sync.Mutex
	buf []byte
	max int
}

// NewScrollback creates a buffer that retains at most limit bytes.
func NewScrollback(limit int) *Scrollback {
	if limit <= 0 {
		limit = defaultScrollbackLimit
	}
	return &Scrollback{max: limit}
}

// Write appends one output chunk. Satisfies terminal.WriteFunc.
func (s *Scrollback) Write(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, data...)
	if len(s.buf) > s.max {
		s.buf = s.buf[len(s.buf)-s.max:]
	}
}

// Tail returns the last n lines of output.
func (s *Scrollback) Tail(n int) []string {
	s.mu.Lock()
	text := string(s.buf)
	s.mu.Unlock()
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
