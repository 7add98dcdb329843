// Package mqtt publishes alarm and lifecycle events to a broker. Publishing
// is best effort: a failed publish is reported, never queued.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/presence-sensor/internal/logic"
)

// DefaultTopicPrefix roots all topics published by the daemon.
const DefaultTopicPrefix = "home/presence/sensor"

// EventsTopic carries ALARM_TRIGGERED and ALARM_CLEARED.
func EventsTopic(prefix string) string {
	return topicPrefix(prefix) + "/events"
}

// SystemTopic carries lifecycle events and the last will.
func SystemTopic(prefix string) string {
	return topicPrefix(prefix) + "/system"
}

func topicPrefix(prefix string) string {
	if prefix == "" {
		return DefaultTopicPrefix
	}
	return prefix
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an alarm event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Presence PresencePayload `json:"presence"`
}

// PresencePayload contains the alarm event details.
type PresencePayload struct {
	Timestamp       string `json:"timestamp"`
	Event           string `json:"event"`
	From            string `json:"from"`
	To              string `json:"to"`
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
	MotionCount     int    `json:"motion_count"`
	AlarmCount      int    `json:"alarm_count"`
}

// FormatPayload creates the JSON payload for an alarm event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Presence: PresencePayload{
			Timestamp:       event.Timestamp.UTC().Format(time.RFC3339),
			Event:           string(event.Type),
			From:            string(event.From),
			To:              string(event.To),
			DurationSeconds: int64(event.Duration / time.Second),
			MotionCount:     event.Counts.Motion,
			AlarmCount:      event.Counts.Alarms,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillPayload is the retained OFFLINE message the broker publishes if the
// daemon disappears without a clean disconnect.
func WillPayload() []byte {
	b, _ := json.Marshal(SystemPayload{System: SystemPayloadInner{Event: "OFFLINE"}})
	return b
}
