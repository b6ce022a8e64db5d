package ui

import (
	"fmt"
	"time"

	"github.com/opswatch/console/internal/events"
)

const toastTTL = 6 * time.Second

type toast struct {
	text string
	at   time.Time
}

// Toasts is the rolling line of recent notifications.
type Toasts struct {
	entries []toast
}

// Add records a check update for display.
func (t *Toasts) Add(u events.CheckUpdate, now time.Time) {
	text := fmt.Sprintf("Check #%d: %s", u.CheckID, u.Status)
	if u.Message != "" {
		text += " - " + u.Message
	}
	t.entries = append(t.entries, toast{text: text, at: now})
}

// Current returns the newest unexpired toast, or "".
func (t *Toasts) Current(now time.Time) string {
	// Drop expired entries from the front.
	for len(t.entries) > 0 && now.Sub(t.entries[0].at) > toastTTL {
		t.entries = t.entries[1:]
	}
	if len(t.entries) == 0 {
		return ""
	}
	return t.entries[len(t.entries)-1].text
}
