// Package events maintains the single long-lived socket to the backend's
// event stream and dispatches recognised notifications to a sink. The
// channel reconnects after a fixed delay for as long as it is started; its
// failures are invisible to the UI beyond notifications going quiet.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/opswatch/console/internal/transport"
)

// DefaultRetryDelay is how long the channel waits before redialing after a
// close. Fixed delay, no backoff: this is one always-desired background
// connection, not a fleet.
const DefaultRetryDelay = 5 * time.Second

// CredentialSource supplies the bearer token and tenant scope, re-evaluated
// at every connect attempt.
type CredentialSource interface {
	Credentials() (token string, companyID int, ok bool)
}

// CheckUpdate is the payload of a check_update event.
type CheckUpdate struct {
	CheckID int    `json:"check_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Sink receives recognised notifications.
type Sink interface {
	CheckUpdate(u CheckUpdate)
}

// Channel is one event-stream connection with explicit lifecycle. Multiple
// independent instances may exist; nothing is process-global.
type Channel struct {
	url    string
	dialer transport.Dialer
	creds  CredentialSource
	sink   Sink
	delay  time.Duration
	logger *log.Logger

	mu   sync.Mutex
	stop chan struct{}
	sock transport.Handle
}

// New creates a stopped channel targeting wsBase's event endpoint.
// retryDelay <= 0 means DefaultRetryDelay.
func New(wsBase string, dialer transport.Dialer, creds CredentialSource, sink Sink, retryDelay time.Duration, logger *log.Logger) *Channel {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Channel{
		url:    wsBase + "/api/ws/events",
		dialer: dialer,
		creds:  creds,
		sink:   sink,
		delay:  retryDelay,
		logger: logger.With("component", "events"),
	}
}

// Start begins the supervisor loop. Without a bearer token and tenant scope
// it is a silent no-op. Starting a running channel does nothing.
func (c *Channel) Start() {
	if _, _, ok := c.creds.Credentials(); !ok {
		return
	}
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()
	go c.run(stop)
}

// Stop tears the channel down and cancels any pending reconnect, so a
// stopped channel never resurrects itself. The channel may be started again
// later.
func (c *Channel) Stop() {
	c.mu.Lock()
	stop := c.stop
	sock := c.sock
	c.stop = nil
	c.sock = nil
	c.mu.Unlock()
	if stop != nil {
		close(stop)
	}
	if sock != nil {
		sock.Close()
	}
}

// run owns the reconnect timer. Each iteration dials once, waits for the
// socket to end, then sleeps the retry delay; stop interrupts either wait.
func (c *Channel) run(stop chan struct{}) {
	for {
		if _, _, ok := c.creds.Credentials(); ok {
			closed := make(chan struct{})
			h := c.dialer.Dial(c.url, transport.Events{
				Open: func(transport.Handle) {
					c.logger.Debug("event stream connected")
				},
				Message: func(_ transport.Handle, text bool, data []byte) {
					c.dispatch(data)
				},
				Closed: func(transport.Handle) {
					close(closed)
				},
			})
			c.mu.Lock()
			c.sock = h
			c.mu.Unlock()

			select {
			case <-closed:
				c.logger.Debug("event stream lost", "retry_in", c.delay)
			case <-stop:
				h.Close()
				return
			}
		}

		select {
		case <-time.After(c.delay):
		case <-stop:
			return
		}
	}
}

// dispatch decodes one inbound envelope. Unparseable messages are discarded
// and unrecognised event kinds ignored, so new server-emitted kinds never
// break the channel.
func (c *Channel) dispatch(data []byte) {
	env, err := transport.DecodeEnvelope(data)
	if err != nil {
		return
	}
	switch env.Event {
	case "check_update":
		var u CheckUpdate
		if err := json.Unmarshal(env.Data, &u); err != nil {
			return
		}
		c.sink.CheckUpdate(u)
	}
}
