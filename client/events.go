package client

import (
	"bufio"
	"io"
	"strings"
)

// Event is a single server-sent event.
type Event struct {
	// Event is the event type. Empty for data-only events.
	Event string
	// Data is the payload. Multi-line data is joined with newlines.
	Data string
	// ID is the event ID.
	ID string
}

// EventReader parses a text/event-stream body.
type EventReader struct {
	scanner *bufio.Scanner
}

// NewEventReader creates a reader over r.
func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{scanner: bufio.NewScanner(r)}
}

// Next returns the next event, skipping comments and keep-alives. It
// returns io.EOF when the stream ends.
func (r *EventReader) Next() (*Event, error) {
	var (
		event   Event
		hasData bool
	)

	for r.scanner.Scan() {
		line := r.scanner.Text()

		// Blank line ends an event.
		if line == "" {
			if hasData {
				return &event, nil
			}
			event = Event{}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := parseEventLine(line)
		switch field {
		case "data":
			if hasData {
				event.Data += "\n" + value
			} else {
				event.Data = value
				hasData = true
			}
		case "event":
			event.Event = value
		case "id":
			event.ID = value
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if hasData {
		return &event, nil
	}
	return nil, io.EOF
}

func parseEventLine(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = strings.TrimPrefix(line[idx+1:], " ")
	return field, value
}
