package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

type sockEvent struct {
	kind string // open, message, error, closed
	text bool
	data string
	err  error
}

func recorder() (Events, chan sockEvent) {
	ch := make(chan sockEvent, 64)
	ev := Events{
		Open: func(Handle) { ch <- sockEvent{kind: "open"} },
		Message: func(_ Handle, text bool, data []byte) {
			ch <- sockEvent{kind: "message", text: text, data: string(data)}
		},
		Error:  func(_ Handle, err error) { ch <- sockEvent{kind: "error", err: err} },
		Closed: func(Handle) { ch <- sockEvent{kind: "closed"} },
	}
	return ev, ch
}

func waitEvent(t *testing.T, ch chan sockEvent) sockEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for socket event")
		return sockEvent{}
	}
}

func wsServer(t *testing.T, handler func(c *websocket.Conn)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		handler(c)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialDeliversOpenThenMessagesInOrder(t *testing.T) {
	srv := wsServer(t, func(c *websocket.Conn) {
		c.WriteMessage(websocket.TextMessage, []byte("first"))
		c.WriteMessage(websocket.BinaryMessage, []byte{0x1b, 0x5b})
		c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	})

	ev, ch := recorder()
	d := &WebsocketDialer{}
	d.Dial(wsURL(srv), ev)

	require.Equal(t, "open", waitEvent(t, ch).kind)

	msg := waitEvent(t, ch)
	require.Equal(t, "message", msg.kind)
	require.True(t, msg.text)
	require.Equal(t, "first", msg.data)

	msg = waitEvent(t, ch)
	require.Equal(t, "message", msg.kind)
	require.False(t, msg.text)

	// A clean remote close delivers Closed without Error.
	require.Equal(t, "closed", waitEvent(t, ch).kind)
}

func TestDialFailureDeliversErrorThenClosed(t *testing.T) {
	ev, ch := recorder()
	d := &WebsocketDialer{}
	d.Dial("ws://127.0.0.1:1/nowhere", ev)

	e := waitEvent(t, ch)
	require.Equal(t, "error", e.kind)
	require.Error(t, e.err)
	require.Equal(t, "closed", waitEvent(t, ch).kind)
}

func TestAbnormalRemoteDropDeliversErrorThenClosed(t *testing.T) {
	srv := wsServer(t, func(c *websocket.Conn) {
		c.WriteMessage(websocket.TextMessage, []byte("hi"))
		// Drop the TCP connection without a close handshake.
		c.UnderlyingConn().Close()
	})

	ev, ch := recorder()
	d := &WebsocketDialer{}
	d.Dial(wsURL(srv), ev)

	require.Equal(t, "open", waitEvent(t, ch).kind)
	require.Equal(t, "message", waitEvent(t, ch).kind)
	require.Equal(t, "error", waitEvent(t, ch).kind)
	require.Equal(t, "closed", waitEvent(t, ch).kind)
}

func TestSendJSONRoundTrip(t *testing.T) {
	echoed := make(chan string, 1)
	srv := wsServer(t, func(c *websocket.Conn) {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		echoed <- string(data)
		c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	})

	ev, ch := recorder()
	d := &WebsocketDialer{}
	h := d.Dial(wsURL(srv), ev)

	require.Equal(t, "open", waitEvent(t, ch).kind)
	require.NoError(t, h.SendJSON(NewInputFrame("whoami\r")))

	select {
	case got := <-echoed:
		require.JSONEq(t, `{"type":"input","data":"whoami\r"}`, got)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the frame")
	}
}

func TestSendJSONWhenNotOpen(t *testing.T) {
	ev, ch := recorder()
	d := &WebsocketDialer{}
	h := d.Dial("ws://127.0.0.1:1/nowhere", ev)

	// Regardless of dial progress, the socket is never open here.
	require.ErrorIs(t, h.SendJSON(NewInputFrame("x")), ErrNotOpen)

	waitEvent(t, ch) // error
	waitEvent(t, ch) // closed
	require.ErrorIs(t, h.SendJSON(NewInputFrame("x")), ErrNotOpen)
}

func TestLocalCloseSuppressesFurtherCallbacks(t *testing.T) {
	srv := wsServer(t, func(c *websocket.Conn) {
		for i := 0; ; i++ {
			if err := c.WriteMessage(websocket.TextMessage, []byte("tick")); err != nil {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	})

	ev, ch := recorder()
	d := &WebsocketDialer{}
	h := d.Dial(wsURL(srv), ev)

	require.Equal(t, "open", waitEvent(t, ch).kind)
	require.Equal(t, "message", waitEvent(t, ch).kind)

	h.Close()
	h.Close() // idempotent

	// Drain: after Close only a single Closed event may remain; tolerate
	// messages already in flight before the close took effect, but nothing
	// after Closed.
	sawClosed := false
	deadline := time.After(2 * time.Second)
	for !sawClosed {
		select {
		case e := <-ch:
			switch e.kind {
			case "closed":
				sawClosed = true
			case "error":
				t.Fatalf("local close must not surface an error, got %v", e.err)
			}
		case <-deadline:
			t.Fatal("Closed never fired after local Close")
		}
	}
	select {
	case e := <-ch:
		t.Fatalf("callback %q delivered after Closed", e.kind)
	case <-time.After(100 * time.Millisecond):
	}
}
