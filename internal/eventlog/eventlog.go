// Package eventlog keeps a short-horizon, in-memory diagnostic log of
// timestamped events. The log is a fixed-capacity ring: when full, the oldest
// entry is overwritten. Nothing is persisted across restarts.
package eventlog

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of entries retained when no capacity is configured.
const DefaultCapacity = 50

// Type identifies the kind of logged event.
type Type string

const (
	TypeStartup        Type = "STARTUP"
	TypeShutdown       Type = "SHUTDOWN"
	TypeMotionDetected Type = "MOTION_DETECTED"
	TypeMotionEnded    Type = "MOTION_ENDED"
	TypeAlarmTriggered Type = "ALARM_TRIGGERED"
	TypeMotionStopped  Type = "MOTION_STOPPED"
	TypeMotionResumed  Type = "MOTION_RESUMED"
	TypeAlarmCleared   Type = "ALARM_CLEARED"
	TypeNotifyOK       Type = "NOTIFY_OK"
	TypeNotifyFailed   Type = "NOTIFY_FAILED"
	TypeNotifySkipped  Type = "NOTIFY_SKIPPED"
	TypeHookFailed     Type = "HOOK_FAILED"
	TypeSensorError    Type = "SENSOR_ERROR"
	TypeConfigReloaded Type = "CONFIG_RELOADED"
)

// Entry is a single logged event.
type Entry struct {
	Time time.Time
	Type Type
	Data int32
}

// Recorder is the write side of the log.
type Recorder interface {
	Append(t time.Time, typ Type, data int32)
}

// Log is a fixed-capacity ring of entries. Append and Snapshot are safe to
// call from different goroutines.
type Log struct {
	mu    sync.Mutex
	ring  *ring
	total uint64
}

// New creates a log holding at most capacity entries.
// A non-positive capacity falls back to DefaultCapacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{ring: newRing(capacity)}
}

// Append records an entry, overwriting the oldest one when full. It never blocks
// on I/O and never fails.
func (l *Log) Append(t time.Time, typ Type, data int32) {
	l.mu.Lock()
	l.ring.push(Entry{Time: t, Type: typ, Data: data})
	l.total++
	l.mu.Unlock()
}

// Snapshot returns the retained entries, oldest first. Each call returns a new
// slice; reading does not consume the log.
func (l *Log) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.snapshot()
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.len()
}

// Cap returns the fixed capacity.
func (l *Log) Cap() int {
	return l.ring.capacity
}

// Total returns the number of appends since creation, including evicted ones.
func (l *Log) Total() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

var _ Recorder = (*Log)(nil)
