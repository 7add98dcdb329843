// Package logic contains pure business logic for motion filtering and alarm state tracking.
// This package has NO external dependencies (no GPIO, HTTP, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// AlarmState is the state of the hysteretic alarm machine.
type AlarmState string

const (
	StateIdle          AlarmState = "IDLE"
	StateMotionPending AlarmState = "MOTION_PENDING"
	StateAlarmActive   AlarmState = "ALARM_ACTIVE"
	StateAlarmClearing AlarmState = "ALARM_CLEARING"
)

// EventType represents a state machine transition.
type EventType string

const (
	EventMotionDetected EventType = "MOTION_DETECTED" // IDLE -> MOTION_PENDING
	EventMotionEnded    EventType = "MOTION_ENDED"    // MOTION_PENDING -> IDLE
	EventAlarmTriggered EventType = "ALARM_TRIGGERED" // MOTION_PENDING -> ALARM_ACTIVE
	EventMotionStopped  EventType = "MOTION_STOPPED"  // ALARM_ACTIVE -> ALARM_CLEARING
	EventMotionResumed  EventType = "MOTION_RESUMED"  // ALARM_CLEARING -> ALARM_ACTIVE
	EventAlarmCleared   EventType = "ALARM_CLEARED"   // ALARM_CLEARING -> IDLE
)

// Notifies reports whether the event drives outbound notifications and hooks.
// Only the trigger and clear edges do; the rest are diagnostic.
func (t EventType) Notifies() bool {
	return t == EventAlarmTriggered || t == EventAlarmCleared
}

// Event represents a state transition emitted by the machine.
type Event struct {
	Timestamp time.Time
	Type      EventType
	From      AlarmState
	To        AlarmState
	// Duration is the alarm duration for ALARM_CLEARED, zero otherwise.
	Duration time.Duration
	Counts   EventCounts
}

// Input represents a single raw sample from the motion sensor.
type Input struct {
	Motion bool // true = motion (already inverted for active-low wiring)
	Time   time.Time
}

// FilterResult is the smoothed view of the current sample window.
type FilterResult struct {
	Filtered bool
	Percent  int // 0..100
}

// Settings are the runtime-tunable parameters consumed by the pipeline.
type Settings struct {
	TripDelay        time.Duration
	ClearTimeout     time.Duration
	ThresholdPercent int
}

// EventCounts tracks motion and alarm excursions since startup.
type EventCounts struct {
	Motion int
	Alarms int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
	State     AlarmState
}

// Default pipeline parameters.
const (
	DefaultWindow           = 10
	DefaultThresholdPercent = 70
	DefaultTripDelay        = 3 * time.Second
	DefaultClearTimeout     = 10 * time.Second
)

// DefaultSettings returns the factory settings.
func DefaultSettings() Settings {
	return Settings{
		TripDelay:        DefaultTripDelay,
		ClearTimeout:     DefaultClearTimeout,
		ThresholdPercent: DefaultThresholdPercent,
	}
}
