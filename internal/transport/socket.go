// Package transport wraps message-oriented socket connections behind
// lifecycle callbacks. It is the only package that touches the wire; the
// terminal multiplexer and the event channel both sit on top of it.
package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// ErrNotOpen is returned by SendJSON before the socket has opened or after
// it has closed.
var ErrNotOpen = errors.New("transport: socket not open")

// Handle is one open duplex socket. Each handle is exclusively owned by the
// session or channel that dialed it; handles are never shared.
type Handle interface {
	// SendJSON marshals v and writes it as a single text message.
	SendJSON(v any) error
	// Close tears the socket down. Idempotent. After Close returns, no
	// further Message or Error callbacks are delivered; the Closed callback
	// still fires exactly once.
	Close()
}

// Events receives lifecycle callbacks for one socket. Every callback is
// handed the Handle it fires for, so owners can discard events from a handle
// they no longer hold. Callbacks are invoked from the socket's own goroutine,
// one at a time, in receipt order; none fires synchronously from Dial.
//
// Closed fires exactly once per handle and always last. Error, if it fires
// at all, precedes Closed. A clean remote close delivers Closed alone.
type Events struct {
	Open    func(h Handle)
	Message func(h Handle, text bool, data []byte)
	Error   func(h Handle, err error)
	Closed  func(h Handle)
}

// Dialer opens sockets. The production implementation is WebsocketDialer;
// tests substitute fakes.
type Dialer interface {
	Dial(url string, ev Events) Handle
}

// WebsocketDialer dials gorilla WebSocket connections.
type WebsocketDialer struct {
	// Logger receives connection-level debug lines. Nil means the default
	// logger.
	Logger *log.Logger
}

// Dial starts connecting to url and returns the handle immediately. The
// outcome arrives later through ev: Open on success, Error then Closed on
// failure.
func (d *WebsocketDialer) Dial(url string, ev Events) Handle {
	s := &socket{ev: ev, logger: d.logger()}
	go s.run(url)
	return s
}

func (d *WebsocketDialer) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

type socket struct {
	ev     Events
	logger *log.Logger

	mu      sync.Mutex
	writeMu sync.Mutex // serialises all conn writes (payload, ping, close)
	conn    *websocket.Conn
	open    bool
	closed  bool
}

func (s *socket) run(url string) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		s.logger.Debug("socket dial failed", "err", err)
		s.finish(err)
		return
	}

	s.mu.Lock()
	if s.closed {
		// Close raced the dial; drop the connection unopened.
		s.mu.Unlock()
		conn.Close()
		s.finish(nil)
		return
	}
	s.conn = conn
	s.open = true
	s.mu.Unlock()

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})
	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	go s.pingLoop(conn)

	s.dispatchOpen()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			s.finish(err)
			return
		}
		s.dispatchMessage(kind == websocket.TextMessage, data)
	}
}

// finish is the single exit path for a socket's lifetime. It fires Error for
// abnormal remote failures and Closed unconditionally.
func (s *socket) finish(err error) {
	s.mu.Lock()
	local := s.closed
	s.closed = true
	s.open = false
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if err != nil && !local && !isExpectedClose(err) && s.ev.Error != nil {
		s.ev.Error(s, err)
	}
	if s.ev.Closed != nil {
		s.ev.Closed(s)
	}
}

func (s *socket) dispatchOpen() {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed || s.ev.Open == nil {
		return
	}
	s.ev.Open(s)
}

func (s *socket) dispatchMessage(text bool, data []byte) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed || s.ev.Message == nil {
		return
	}
	s.ev.Message(s, text, data)
}

// pingLoop keeps the connection alive. It exits when the socket changes or
// a write fails; the read deadline then reaps the dead connection.
func (s *socket) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		cc := s.conn
		s.mu.Unlock()
		if cc != conn {
			return
		}
		s.writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := conn.WriteMessage(websocket.PingMessage, nil)
		s.writeMu.Unlock()
		if err != nil {
			return
		}
	}
}

// SendJSON writes v as a single JSON text message. It fails with ErrNotOpen
// unless the socket is in the open state.
func (s *socket) SendJSON(v any) error {
	s.mu.Lock()
	conn := s.conn
	ok := s.open && !s.closed
	s.mu.Unlock()
	if !ok || conn == nil {
		return ErrNotOpen
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

// Close tears the socket down. The read loop observes the closed connection
// and fires the final Closed callback.
func (s *socket) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.open = false
	conn := s.conn
	s.mu.Unlock()

	if conn != nil {
		s.writeMu.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
		s.writeMu.Unlock()
		conn.Close()
	}
}

// isExpectedClose reports whether err represents a deliberate remote close
// rather than a transport failure.
func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
