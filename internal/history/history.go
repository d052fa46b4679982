// Package history keeps a record of the external commands executed
// during one run so that identical commands run only once and their
// raw output can be flagged for suppression in reports.
package history

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
)

// Execution is a single external command execution record.
type Execution struct {
	// ID uniquely identifies the execution.
	ID string
	// Args is the full command argument vector, binary included.
	Args []string
	// CreatedAt is when the record was first created.
	CreatedAt time.Time

	mutex      sync.Mutex
	hideOutput bool
}

// Hide marks the execution's raw output as bulk machine output that
// should not be surfaced verbatim in reports.
func (e *Execution) Hide() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.hideOutput = true
}

// Hidden reports whether the raw output is suppressed.
func (e *Execution) Hidden() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.hideOutput
}

// Log is an in-memory registry of executions keyed by their argument
// vector. It is safe for concurrent use.
type Log struct {
	mutex   sync.Mutex
	entries map[string]*Execution
}

// NewLog creates an empty execution log.
func NewLog() *Log {
	return &Log{entries: make(map[string]*Execution)}
}

// GetOrCreate returns the execution record for the given argument
// vector, creating it on first use. created is false when an
// identical command was already registered, in which case the caller
// should skip re-running it.
func (l *Log) GetOrCreate(args []string) (execution *Execution, created bool) {
	key := strings.Join(args, " ")

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if entry, ok := l.entries[key]; ok {
		return entry, false
	}
	entry := &Execution{
		ID:        xid.New().String(),
		Args:      args,
		CreatedAt: time.Now(),
	}
	l.entries[key] = entry
	return entry, true
}

// Len returns the number of registered executions.
func (l *Log) Len() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.entries)
}
