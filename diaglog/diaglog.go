// Package diaglog keeps a bounded in-memory trail of what the service has
// been doing, so /logs can answer "what happened recently" without grepping
// pod output.
package diaglog

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Capacity is how many entries the log retains; older entries are evicted.
const Capacity = 100

// Entry is one recorded message.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Log is a fixed-capacity, oldest-first-evicting message buffer. Safe for
// concurrent use.
type Log struct {
	mtx     sync.Mutex
	entries []Entry
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Append records message with the current timestamp, evicting the oldest
// entries beyond Capacity. Every entry is mirrored to logrus.
func (l *Log) Append(message string) {
	now := time.Now()

	l.mtx.Lock()
	l.entries = append(l.entries, Entry{Timestamp: now, Message: message})
	if len(l.entries) > Capacity {
		l.entries = l.entries[len(l.entries)-Capacity:]
	}
	l.mtx.Unlock()

	log.Info(message)
}

// Appendf is Append with fmt.Sprintf formatting.
func (l *Log) Appendf(format string, args ...interface{}) {
	l.Append(fmt.Sprintf(format, args...))
}

// Recent returns up to n most recent entries in chronological order.
func (l *Log) Recent(n int) []Entry {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if n > len(l.entries) {
		n = len(l.entries)
	}
	if n < 0 {
		n = 0
	}
	out := make([]Entry, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}

// Count returns the number of entries currently retained, at most Capacity.
func (l *Log) Count() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.entries)
}

// LastActivity returns the timestamp of the newest entry, or the zero time
// when nothing has been recorded.
func (l *Log) LastActivity() time.Time {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if len(l.entries) == 0 {
		return time.Time{}
	}
	return l.entries[len(l.entries)-1].Timestamp
}
