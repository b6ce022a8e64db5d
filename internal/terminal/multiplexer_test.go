package terminal

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opswatch/console/internal/transport"
)

// fakeConn records outbound frames and lets a test drive the socket
// callbacks by hand.
type fakeConn struct {
	url string
	ev  transport.Events

	mu     sync.Mutex
	closed bool
	sent   []any
}

func (c *fakeConn) SendJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return transport.ErrNotOpen
	}
	c.sent = append(c.sent, v)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) sentFrames() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.sent...)
}

// Test drivers. These run on the test goroutine, mirroring how the real
// dialer delivers callbacks from its read loop.
func (c *fakeConn) open()                          { c.ev.Open(c) }
func (c *fakeConn) message(text bool, data []byte) { c.ev.Message(c, text, data) }
func (c *fakeConn) fail(err error)                 { c.ev.Error(c, err) }
func (c *fakeConn) drop()                          { c.ev.Closed(c) }

type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
}

func (d *fakeDialer) Dial(url string, ev transport.Events) transport.Handle {
	c := &fakeConn{url: url, ev: ev}
	d.mu.Lock()
	d.conns = append(d.conns, c)
	d.mu.Unlock()
	return c
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

type staticCreds struct {
	token     string
	companyID int
	ok        bool
}

func (c staticCreds) Credentials() (string, int, bool) { return c.token, c.companyID, c.ok }

func newTestMux() (*Multiplexer, *fakeDialer) {
	d := &fakeDialer{}
	m := NewMultiplexer("ws://backend", d, staticCreds{token: "tok/abc", companyID: 3, ok: true}, nil)
	return m, d
}

// connectSession creates a session, connects it and acknowledges the open.
func connectSession(t *testing.T, m *Multiplexer, d *fakeDialer) (string, *fakeConn) {
	t.Helper()
	id := m.CreateSession()
	m.Connect(id, 7, "web-1")
	conn := d.last()
	require.NotNil(t, conn)
	conn.open()
	s, ok := m.Active()
	require.True(t, ok)
	require.Equal(t, StatusConnected, s.Status)
	return id, conn
}

func TestCreateRemoveAndActiveTracking(t *testing.T) {
	m, _ := newTestMux()

	a := m.CreateSession()
	b := m.CreateSession()
	c := m.CreateSession()
	require.Equal(t, []string{"t1", "t2", "t3"}, []string{a, b, c})
	require.Equal(t, c, m.ActiveID())

	// Removing the active session falls back to the first remaining one.
	m.RemoveSession(c)
	require.Equal(t, a, m.ActiveID())

	// Removing a non-active session leaves the active id alone.
	m.SetActive(b)
	m.RemoveSession(a)
	require.Equal(t, b, m.ActiveID())

	m.RemoveSession("t99") // unknown, ignored
	require.Len(t, m.Sessions(), 1)

	// Dropping the last session empties the registry and clears fullscreen.
	m.SetFullscreen(true)
	m.RemoveSession(b)
	require.False(t, m.HasAny())
	require.Equal(t, "", m.ActiveID())
	require.False(t, m.Presentation().Fullscreen)
}

func TestSetActiveIgnoresUnknownID(t *testing.T) {
	m, _ := newTestMux()
	a := m.CreateSession()
	m.SetActive("t42")
	require.Equal(t, a, m.ActiveID())
}

func TestConnectWithoutCredentialsIsNoOp(t *testing.T) {
	d := &fakeDialer{}
	m := NewMultiplexer("ws://backend", d, staticCreds{}, nil)

	id := m.CreateSession()
	m.Connect(id, 7, "web-1")

	require.Zero(t, d.count())
	s, _ := m.Active()
	require.Equal(t, StatusIdle, s.Status)
	require.Zero(t, s.ServerID)
}

func TestConnectBuildsEndpointAndTransitions(t *testing.T) {
	m, d := newTestMux()
	id := m.CreateSession()

	m.Connect(id, 7, "web-1")

	conn := d.last()
	require.NotNil(t, conn)
	require.Equal(t, "ws://backend/api/ws/ssh/7?token=tok%2Fabc&company_id=3", conn.url)

	s, _ := m.Active()
	require.Equal(t, StatusConnecting, s.Status)
	require.Equal(t, 7, s.ServerID)
	require.Equal(t, "web-1", s.ServerName)

	conn.open()
	s, _ = m.Active()
	require.Equal(t, StatusConnected, s.Status)
}

func TestConnectReplacesExistingSocket(t *testing.T) {
	m, d := newTestMux()
	id, first := connectSession(t, m, d)

	m.Connect(id, 9, "db-1")
	second := d.last()
	require.NotSame(t, first, second)
	require.True(t, first.isClosed())

	// Callbacks from the replaced socket must not touch the session.
	first.fail(errors.New("stale"))
	first.drop()
	s, _ := m.Active()
	require.Equal(t, StatusConnecting, s.Status)
	require.Equal(t, 9, s.ServerID)

	second.open()
	s, _ = m.Active()
	require.Equal(t, StatusConnected, s.Status)
}

func TestControlFrameSetsSessionError(t *testing.T) {
	m, d := newTestMux()
	_, conn := connectSession(t, m, d)

	conn.message(true, []byte(`{"error": "disk full"}`))

	s, _ := m.Active()
	require.Equal(t, StatusError, s.Status)
	require.Equal(t, "disk full", s.ErrorMsg)
}

func TestOutputForwardedVerbatim(t *testing.T) {
	m, d := newTestMux()
	id, conn := connectSession(t, m, d)

	var got []string
	m.RegisterWriteCallback(id, func(data []byte) { got = append(got, string(data)) })

	conn.message(true, []byte("ls -la\n"))
	conn.message(true, []byte(`{"type": "status"}`)) // JSON without an error field is output
	conn.message(false, []byte{0x1b, 0x5b, 0x48})

	require.Equal(t, []string{"ls -la\n", `{"type": "status"}`, "\x1b[H"}, got)
	s, _ := m.Active()
	require.Equal(t, StatusConnected, s.Status)
}

func TestOutputWithoutCallbackIsDiscarded(t *testing.T) {
	m, d := newTestMux()
	_, conn := connectSession(t, m, d)
	conn.message(true, []byte("orphaned output")) // must not panic
}

func TestSendInputDroppedUnlessConnected(t *testing.T) {
	m, d := newTestMux()
	id := m.CreateSession()

	m.SendInput(id, "early") // idle
	m.Connect(id, 7, "web-1")
	conn := d.last()
	m.SendInput(id, "still connecting")
	require.Empty(t, conn.sentFrames())

	conn.open()
	m.SendInput(id, "whoami\r")
	frames := conn.sentFrames()
	require.Len(t, frames, 1)
	require.Equal(t, transport.NewInputFrame("whoami\r"), frames[0])

	conn.message(true, []byte(`{"error": "session killed"}`))
	m.SendInput(id, "after error")
	require.Len(t, conn.sentFrames(), 1)
}

func TestCloseWhileConnectingSynthesizesError(t *testing.T) {
	m, d := newTestMux()
	id := m.CreateSession()
	m.Connect(id, 7, "web-1")

	d.last().drop()

	s, _ := m.Active()
	require.Equal(t, StatusError, s.Status)
	require.Equal(t, "connection closed", s.ErrorMsg)
}

func TestCloseAfterConnectedLeavesStatus(t *testing.T) {
	m, d := newTestMux()
	_, conn := connectSession(t, m, d)

	conn.drop()

	s, _ := m.Active()
	require.Equal(t, StatusConnected, s.Status)
	require.Empty(t, s.ErrorMsg)
}

func TestSocketErrorUsesDefaultMessage(t *testing.T) {
	m, d := newTestMux()
	id := m.CreateSession()
	m.Connect(id, 7, "web-1")

	conn := d.last()
	conn.fail(errors.New("dial tcp: connection refused"))
	conn.drop()

	s, _ := m.Active()
	require.Equal(t, StatusError, s.Status)
	require.Equal(t, "connection failed", s.ErrorMsg)
}

func TestErrorFrameMessageSurvivesClose(t *testing.T) {
	m, d := newTestMux()
	_, conn := connectSession(t, m, d)

	conn.message(true, []byte(`{"error": "pty allocation failed"}`))
	conn.drop()

	s, _ := m.Active()
	require.Equal(t, "pty allocation failed", s.ErrorMsg)
}

func TestDisconnectResetsSession(t *testing.T) {
	m, d := newTestMux()
	id, conn := connectSession(t, m, d)

	m.Disconnect(id)

	require.True(t, conn.isClosed())
	s, _ := m.Active()
	require.Equal(t, StatusIdle, s.Status)
	require.Zero(t, s.ServerID)
	require.Empty(t, s.ServerName)

	m.Disconnect(id) // idempotent
}

func TestConnectOrReuse(t *testing.T) {
	m, d := newTestMux()

	// Empty registry: a session is created and connected.
	id := m.ConnectOrReuse(7, "web-1")
	require.Equal(t, "t1", id)
	require.Equal(t, 1, d.count())

	// A session that is already bound is not reused.
	d.last().open()
	id2 := m.ConnectOrReuse(9, "db-1")
	require.Equal(t, "t2", id2)
	require.Equal(t, 2, d.count())

	// An unbound idle session is picked up instead of growing the registry.
	idle := m.CreateSession()
	id3 := m.ConnectOrReuse(11, "cache-1")
	require.Equal(t, idle, id3)
	require.Len(t, m.Sessions(), 3)
}

func TestConnectedSessionViews(t *testing.T) {
	m, d := newTestMux()

	a := m.CreateSession()
	m.Connect(a, 7, "web-1")
	d.last().open()

	b := m.CreateSession()
	m.Connect(b, 9, "db-1")
	// b stays connecting

	require.True(t, m.HasConnected())
	conns := m.ConnectedSessions()
	require.Len(t, conns, 1)
	require.Equal(t, a, conns[0].ID)
}

func TestPresentationState(t *testing.T) {
	m, _ := newTestMux()
	require.Equal(t, LayoutSingle, m.Presentation().Layout)

	m.SetLayoutMode(LayoutSplitH)
	require.Equal(t, LayoutSplitH, m.Presentation().Layout)

	m.SetLayoutMode(LayoutMode("diagonal")) // ignored
	require.Equal(t, LayoutSplitH, m.Presentation().Layout)

	m.SetFullscreen(true)
	require.True(t, m.Presentation().Fullscreen)
}

func TestSessionIDsAreUniqueAcrossRemovals(t *testing.T) {
	m, _ := newTestMux()
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		id := m.CreateSession()
		require.False(t, seen[id], "id %s reused", id)
		require.True(t, strings.HasPrefix(id, "t"))
		seen[id] = true
		m.RemoveSession(id)
	}
}
