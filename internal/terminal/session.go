// Package terminal multiplexes interactive shell sessions, each bound to a
// remote host over its own socket. Sessions connect, fail and reconnect
// independently; the UI drives them only through the Multiplexer's
// operations and observes them through read-only snapshots.
package terminal

import "github.com/opswatch/console/internal/transport"

// Status is a session's connection state.
type Status string

const (
	// StatusIdle is the empty status of a session that has never connected
	// or has been disconnected.
	StatusIdle       Status = ""
	StatusConnecting Status = "connecting"
	StatusConnected  Status = "connected"
	StatusError      Status = "error"
)

// WriteFunc receives opaque terminal output for one session. The callback is
// owned by the UI; the session never manages its lifetime.
type WriteFunc func(data []byte)

// session is the internal record. All fields are guarded by the
// Multiplexer's mutex.
type session struct {
	id         string
	serverID   int // zero until bound to a host
	serverName string
	status     Status
	errorMsg   string
	write      WriteFunc
	sock       transport.Handle
}

// Session is the read-only snapshot exposed to the UI.
type Session struct {
	ID         string
	ServerID   int
	ServerName string
	Status     Status
	ErrorMsg   string
}

func (s *session) view() Session {
	return Session{
		ID:         s.id,
		ServerID:   s.serverID,
		ServerName: s.serverName,
		Status:     s.status,
		ErrorMsg:   s.errorMsg,
	}
}
