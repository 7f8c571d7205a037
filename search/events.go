package search

// EventKind identifies a step in the life of a query.
type EventKind string

const (
	// EventDispatched fires when a lookup starts.
	EventDispatched EventKind = "dispatched"
	// EventSkipped fires when a blank query short-circuits to an empty result.
	EventSkipped EventKind = "skipped"
	// EventStale fires when a lookup was superseded before it finished.
	EventStale EventKind = "stale"
	// EventFailed fires when a lookup failed and was replaced by an empty result.
	EventFailed EventKind = "failed"
	// EventEmitted fires when a Result is handed to the consumer.
	EventEmitted EventKind = "emitted"
)

// Event describes one pipeline step for an Observer.
type Event struct {
	Kind       EventKind
	Query      string
	Generation uint64
	Err        error
}

// Observer receives pipeline events. It is called from pipeline goroutines
// and must be safe for concurrent use.
type Observer func(Event)
