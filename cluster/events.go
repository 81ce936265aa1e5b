package cluster

import "fmt"

// EventSink receives notifications of the observable events a Node
// produces while reconciling state: representative elections and
// deselections, level-stack truncations, and non-fatal invariant
// recoveries. The caller supplies one at construction time, so tests can
// record events deterministically and a production binary can route them
// to structured logging or metrics without this package knowing about
// either.
//
// Implementations must not call back into the Node that owns them: all
// methods are invoked synchronously from inside Receive, which is not
// reentrant.
type EventSink interface {
	// Elect reports that this node adopted rep as its representative at
	// the given level (including self-promotion, where rep is the node's
	// own identifier).
	Elect(level uint32, rep Identifier)

	// Unelect reports that this node cleared its representative at the
	// given level.
	Unelect(level uint32)

	// MaxLevel reports that the level stack was truncated so that level
	// is now the highest surviving index.
	MaxLevel(level uint32)

	// Warn reports a recovered invariant violation or other non-fatal
	// protocol anomaly. format/args follow fmt.Sprintf conventions.
	Warn(format string, args ...interface{})
}

// NopSink discards every event. It is useful for tests that only care
// about resulting state, and as an embeddable base for sinks that only
// want to override a subset of EventSink's methods.
type NopSink struct{}

func (NopSink) Elect(uint32, Identifier)      {}
func (NopSink) Unelect(uint32)                {}
func (NopSink) MaxLevel(uint32)               {}
func (NopSink) Warn(string, ...interface{})   {}

// RecordingSink accumulates events in memory in the order they occurred,
// for assertions in tests that need to see the sequence of elections and
// trims rather than just the final state.
type RecordingSink struct {
	Events []Event
}

// Event is one occurrence recorded by RecordingSink.
type Event struct {
	Kind  string // "elect", "unelect", "maxlevel", or "warn"
	Level uint32
	Rep   Identifier
	Text  string
}

func (s *RecordingSink) Elect(level uint32, rep Identifier) {
	s.Events = append(s.Events, Event{Kind: "elect", Level: level, Rep: rep})
}

func (s *RecordingSink) Unelect(level uint32) {
	s.Events = append(s.Events, Event{Kind: "unelect", Level: level})
}

func (s *RecordingSink) MaxLevel(level uint32) {
	s.Events = append(s.Events, Event{Kind: "maxlevel", Level: level})
}

func (s *RecordingSink) Warn(format string, args ...interface{}) {
	s.Events = append(s.Events, Event{Kind: "warn", Text: fmt.Sprintf(format, args...)})
}
