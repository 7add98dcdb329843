// Package status provides a thread-safe status tracker for the presence-sensor daemon.
// It is written by the control loop and read by HTTP handlers and MQTT heartbeats.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/presence-sensor/internal/logic"
	"github.com/sweeney/presence-sensor/internal/network"
	"github.com/sweeney/presence-sensor/internal/notify"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs           int64
	WindowSize       int
	ThresholdPercent int
	TripDelayMs      int64
	ClearTimeoutMs   int64
	NotifyTimeoutMs  int64
	HeartbeatMs      int64
	Broker           string // empty when MQTT is disabled
	HTTPAddr         string
	Targets          []string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	State            logic.AlarmState
	Filter           logic.FilterResult
	Counts           logic.EventCounts
	AlarmSince       time.Time // zero unless an alarm is in progress
	StartTime        time.Time
	Now              time.Time
	MQTTConnected    bool
	Network          *network.Info
	LastNotification *notify.Record
	Config           Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     logic.StateIdle,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the alarm state, filter output, and counters.
// Called from the control loop on every tick.
func (t *Tracker) Update(state logic.AlarmState, fr logic.FilterResult, counts logic.EventCounts, alarmSince time.Time) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Filter = fr
	t.snap.Counts = counts
	t.snap.AlarmSince = alarmSince
	t.mu.Unlock()
}

// SetConfig replaces the displayed configuration after a reload.
func (t *Tracker) SetConfig(cfg Config) {
	t.mu.Lock()
	t.snap.Config = cfg
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *network.Info) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// SetLastNotification records the most recent notification outcome.
func (t *Tracker) SetLastNotification(rec *notify.Record) {
	t.mu.Lock()
	t.snap.LastNotification = rec
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Config.Targets = append([]string(nil), t.snap.Config.Targets...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
