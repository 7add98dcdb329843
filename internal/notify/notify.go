// Package notify dispatches fire-and-forget notifications for alarm transitions.
//
// Every dispatch is bounded by a single timeout shared by all targets, so a
// slow or unreachable endpoint delays the control loop by at most that long.
// Outcomes are recorded, never retried, and never reported back as errors.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event names the transition being announced.
type Event string

const (
	EventTriggered Event = "triggered"
	EventCleared   Event = "cleared"
)

// Result codes recorded for attempts that produced no HTTP status.
const (
	CodeUnavailable    = 0
	CodeTimeout        = -1
	CodeTransportError = -2
	CodeBadRequest     = -3
)

// DefaultTimeout bounds one Notify call when none is configured.
const DefaultTimeout = 3 * time.Second

// Notification carries the context of one alarm transition.
type Notification struct {
	ID          string
	Event       Event
	Device      string
	Time        time.Time
	MotionCount int
	AlarmCount  int
	Duration    time.Duration // alarm duration, cleared only
	Percent     int
}

// NewNotification creates a Notification with a fresh time-ordered ID.
func NewNotification(event Event, at time.Time) Notification {
	return Notification{
		ID:    uuid.Must(uuid.NewV7()).String(),
		Event: event,
		Time:  at,
	}
}

// Request is a transport-neutral outbound call.
type Request struct {
	Method      string
	URL         string
	ContentType string
	Body        []byte
}

// Transport performs outbound calls.
type Transport interface {
	// Available reports whether a call can be attempted at all.
	Available() bool
	// Do performs the call and returns the response status code.
	Do(ctx context.Context, req Request) (int, error)
}

// Target builds the request for one configured endpoint.
type Target interface {
	Name() string
	// Request returns the call for n, or nil if the target has nothing to send.
	Request(n Notification) (*Request, error)
}

// Outcome classifies a dispatch attempt.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Record describes the most recent dispatch attempt.
type Record struct {
	Time    time.Time
	Event   Event
	Target  string
	Outcome Outcome
	Code    int
	Err     string
}

// Payload is the JSON body sent to webhooks.
type Payload struct {
	Alarm AlarmPayload `json:"alarm"`
}

// AlarmPayload contains the alarm transition details.
type AlarmPayload struct {
	ID              string `json:"id"`
	Timestamp       string `json:"timestamp"`
	Event           string `json:"event"`
	Device          string `json:"device,omitempty"`
	MotionCount     int    `json:"motion_count"`
	AlarmCount      int    `json:"alarm_count"`
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
	FilterPercent   int    `json:"filter_percent"`
}

// FormatPayload creates the JSON payload for a notification.
func FormatPayload(n Notification) ([]byte, error) {
	payload := Payload{
		Alarm: AlarmPayload{
			ID:              n.ID,
			Timestamp:       n.Time.UTC().Format(time.RFC3339),
			Event:           string(n.Event),
			Device:          n.Device,
			MotionCount:     n.MotionCount,
			AlarmCount:      n.AlarmCount,
			DurationSeconds: int64(n.Duration / time.Second),
			FilterPercent:   n.Percent,
		},
	}
	return json.Marshal(payload)
}
