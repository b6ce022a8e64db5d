package terminal

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/opswatch/console/internal/transport"
)

// Default error messages used when the server supplies nothing more
// specific.
const (
	msgConnectionFailed = "connection failed"
	msgConnectionClosed = "connection closed"
)

// CredentialSource supplies the bearer token and tenant scope. It is
// re-evaluated at every connect; connecting without both present is a silent
// no-op.
type CredentialSource interface {
	Credentials() (token string, companyID int, ok bool)
}

// Multiplexer owns the session registry. All operations are safe for
// concurrent use; socket callbacks for different sessions interleave but
// each operation completes atomically with respect to a single session's
// fields.
type Multiplexer struct {
	dialer transport.Dialer
	creds  CredentialSource
	wsBase string // e.g. "ws://127.0.0.1:8000"
	logger *log.Logger

	mu       sync.Mutex
	sessions []*session
	activeID string
	nextID   int
	pres     Presentation
}

// NewMultiplexer creates an empty registry. wsBase is the socket scheme base
// URL of the backend.
func NewMultiplexer(wsBase string, dialer transport.Dialer, creds CredentialSource, logger *log.Logger) *Multiplexer {
	if logger == nil {
		logger = log.Default()
	}
	return &Multiplexer{
		dialer: dialer,
		creds:  creds,
		wsBase: wsBase,
		logger: logger.With("component", "terminal"),
		pres:   Presentation{Layout: LayoutSingle},
	}
}

// CreateSession allocates a new idle session, appends it to the registry and
// makes it active. Always succeeds.
func (m *Multiplexer) CreateSession() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked()
}

func (m *Multiplexer) createLocked() string {
	m.nextID++
	s := &session{id: fmt.Sprintf("t%d", m.nextID)}
	m.sessions = append(m.sessions, s)
	m.activeID = s.id
	return s.id
}

// RemoveSession closes the session's socket, drops it from the registry and
// re-derives the active id. Removing the last session clears fullscreen.
// Unknown ids are ignored.
func (m *Multiplexer) RemoveSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, s := range m.sessions {
		if s.id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	if sock := m.sessions[idx].sock; sock != nil {
		sock.Close()
	}
	m.sessions = append(m.sessions[:idx], m.sessions[idx+1:]...)
	if len(m.sessions) == 0 {
		m.activeID = ""
		m.pres.Fullscreen = false
		return
	}
	if m.activeID == id {
		m.activeID = m.sessions[0].id
	}
}

// SetActive marks the session active. Ids not present in the registry are
// ignored.
func (m *Multiplexer) SetActive(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findLocked(id) != nil {
		m.activeID = id
	}
}

// RegisterWriteCallback associates fn with the session's opaque output.
// It overwrites any previous callback. Unknown ids are ignored.
func (m *Multiplexer) RegisterWriteCallback(id string, fn WriteFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.findLocked(id); s != nil {
		s.write = fn
	}
}

// Connect binds the session to a host and opens a socket to it. Without a
// bearer token and tenant scope the call is a silent no-op. An already open
// socket is closed first; a session owns at most one open socket.
func (m *Multiplexer) Connect(id string, serverID int, serverName string) {
	token, companyID, ok := m.creds.Credentials()
	if !ok || id == "" || serverID == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findLocked(id)
	if s == nil {
		return
	}
	if s.sock != nil {
		s.sock.Close()
		s.sock = nil
	}
	s.serverID = serverID
	s.serverName = serverName
	s.status = StatusConnecting
	s.errorMsg = ""

	endpoint := fmt.Sprintf("%s/api/ws/ssh/%d?token=%s&company_id=%d",
		m.wsBase, serverID, url.QueryEscape(token), companyID)
	m.logger.Debug("connecting", "session", id, "server", serverID)
	s.sock = m.dialer.Dial(endpoint, transport.Events{
		Open:    func(h transport.Handle) { m.handleOpen(id, h) },
		Message: func(h transport.Handle, text bool, data []byte) { m.handleMessage(id, h, text, data) },
		Error:   func(h transport.Handle, err error) { m.handleError(id, h, err) },
		Closed:  func(h transport.Handle) { m.handleClosed(id, h) },
	})
}

// Disconnect closes the session's socket and resets it to idle, unbinding
// the host. Idempotent; unknown ids are ignored.
func (m *Multiplexer) Disconnect(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findLocked(id)
	if s == nil {
		return
	}
	if s.sock != nil {
		s.sock.Close()
		s.sock = nil
	}
	s.status = StatusIdle
	s.errorMsg = ""
	s.serverID = 0
	s.serverName = ""
}

// SendInput transmits one input frame. Input is silently dropped unless the
// session is connected; nothing is queued while disconnected.
func (m *Multiplexer) SendInput(id string, data string) {
	m.mu.Lock()
	var sock transport.Handle
	if s := m.findLocked(id); s != nil && s.status == StatusConnected {
		sock = s.sock
	}
	m.mu.Unlock()
	if sock == nil {
		return
	}
	if err := sock.SendJSON(transport.NewInputFrame(data)); err != nil {
		m.logger.Debug("input dropped", "session", id, "err", err)
	}
}

// ConnectOrReuse connects to a host using the first unbound idle session, or
// a new one when none exists, and returns its id. Repeatedly opening "new
// terminal" without connecting therefore never accumulates idle records.
func (m *Multiplexer) ConnectOrReuse(serverID int, serverName string) string {
	m.mu.Lock()
	id := ""
	for _, s := range m.sessions {
		if s.serverID == 0 && s.status == StatusIdle {
			id = s.id
			break
		}
	}
	if id == "" {
		id = m.createLocked()
	}
	m.mu.Unlock()
	m.Connect(id, serverID, serverName)
	return id
}

// --- socket callbacks ---
//
// Every handler re-checks that the handle is still the one the session owns:
// a callback queued before a Close can arrive after the session has moved on
// to a new socket.

func (m *Multiplexer) handleOpen(id string, h transport.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findLocked(id)
	if s == nil || s.sock != h {
		return
	}
	if s.status == StatusConnecting {
		s.status = StatusConnected
	}
}

func (m *Multiplexer) handleMessage(id string, h transport.Handle, text bool, data []byte) {
	m.mu.Lock()
	s := m.findLocked(id)
	if s == nil || s.sock != h {
		m.mu.Unlock()
		return
	}
	frame := transport.Classify(text, data)
	if frame.Control {
		s.status = StatusError
		s.errorMsg = frame.Err
		m.mu.Unlock()
		return
	}
	write := s.write
	m.mu.Unlock()
	// The callback is UI-owned; invoke it outside the lock so it may call
	// back into the multiplexer.
	if write != nil {
		write(frame.Payload)
	}
}

func (m *Multiplexer) handleError(id string, h transport.Handle, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findLocked(id)
	if s == nil || s.sock != h {
		return
	}
	m.logger.Debug("session socket error", "session", id, "err", err)
	s.status = StatusError
	if s.errorMsg == "" {
		s.errorMsg = msgConnectionFailed
	}
}

func (m *Multiplexer) handleClosed(id string, h transport.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findLocked(id)
	if s == nil || s.sock != h {
		return
	}
	// Only a close that beats the open acknowledgment is surfaced; a close
	// from connected is indistinguishable from deliberate server-side
	// termination and is left to explicit error frames.
	if s.status == StatusConnecting {
		s.status = StatusError
		if s.errorMsg == "" {
			s.errorMsg = msgConnectionClosed
		}
	}
}

func (m *Multiplexer) findLocked(id string) *session {
	for _, s := range m.sessions {
		if s.id == id {
			return s
		}
	}
	return nil
}

// --- read-only derived views ---

// Sessions returns a snapshot of the registry in creation order.
func (m *Multiplexer) Sessions() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Session, len(m.sessions))
	for i, s := range m.sessions {
		out[i] = s.view()
	}
	return out
}

// ActiveID returns the active session id, empty when the registry is empty.
func (m *Multiplexer) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// Active returns a snapshot of the active session.
func (m *Multiplexer) Active() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.findLocked(m.activeID); s != nil {
		return s.view(), true
	}
	return Session{}, false
}

// HasAny reports whether any session exists.
func (m *Multiplexer) HasAny() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions) > 0
}

// HasConnected reports whether any session is connected.
func (m *Multiplexer) HasConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.status == StatusConnected {
			return true
		}
	}
	return false
}

// ConnectedSessions returns snapshots of the connected sessions in creation
// order.
func (m *Multiplexer) ConnectedSessions() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Session
	for _, s := range m.sessions {
		if s.status == StatusConnected {
			out = append(out, s.view())
		}
	}
	return out
}

// --- presentation state ---

// SetLayoutMode sets how connected sessions share the screen. Values other
// than the three layout modes are ignored.
func (m *Multiplexer) SetLayoutMode(mode LayoutMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pres.SetLayout(mode)
}

// SetFullscreen toggles the fullscreen flag.
func (m *Multiplexer) SetFullscreen(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pres.Fullscreen = v
}

// Presentation returns a copy of the current presentation state.
func (m *Multiplexer) Presentation() Presentation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pres
}
