// Package notify routes event-channel notifications to their consumers: the
// UI toast line and the on-disk history store.
package notify

import "github.com/opswatch/console/internal/events"

// Func adapts a function to the events.Sink interface.
type Func func(u events.CheckUpdate)

// CheckUpdate implements events.Sink.
func (f Func) CheckUpdate(u events.CheckUpdate) { f(u) }

// Fanout dispatches each notification to every sink in order.
type Fanout []events.Sink

// CheckUpdate implements events.Sink.
func (f Fanout) CheckUpdate(u events.CheckUpdate) {
	for _, s := range f {
		s.CheckUpdate(u)
	}
}
