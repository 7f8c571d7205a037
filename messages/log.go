// Package messages keeps the in-memory activity log shown next to the hero
// views. Services append a line for every backend operation.
package messages

import "sync"

// Log is a concurrency-safe, append-only list of messages.
type Log struct {
	mu       sync.RWMutex
	messages []string
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Add appends a message.
func (l *Log) Add(msg string) {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
}

// Messages returns a copy of all messages in insertion order.
func (l *Log) Messages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.messages))
	copy(out, l.messages)
	return out
}

// Clear removes every message.
func (l *Log) Clear() {
	l.mu.Lock()
	l.messages = nil
	l.mu.Unlock()
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
