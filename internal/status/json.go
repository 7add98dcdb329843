package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string            `json:"event,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	State         string            `json:"state"`
	Motion        bool              `json:"motion"`
	FilterPercent int               `json:"filter_percent"`
	AlarmSince    string            `json:"alarm_since,omitempty"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	StartTime     string            `json:"start_time"`
	Timestamp     string            `json:"timestamp"`
	MQTT          MQTTStatus        `json:"mqtt"`
	Counts        CountsJSON        `json:"event_counts"`
	Network       *NetworkJSON      `json:"network,omitempty"`
	Notification  *NotificationJSON `json:"last_notification,omitempty"`
	Config        ConfigJSON        `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Motion int `json:"motion"`
	Alarms int `json:"alarms"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// NotificationJSON is the JSON representation of the last notification outcome.
type NotificationJSON struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Target    string `json:"target,omitempty"`
	Outcome   string `json:"outcome"`
	Code      int    `json:"code"`
	Error     string `json:"error,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64    `json:"poll_ms"`
	WindowSize       int      `json:"window_size"`
	ThresholdPercent int      `json:"threshold_percent"`
	TripDelayMs      int64    `json:"trip_delay_ms"`
	ClearTimeoutMs   int64    `json:"clear_timeout_ms"`
	NotifyTimeoutMs  int64    `json:"notify_timeout_ms"`
	HeartbeatMs      int64    `json:"heartbeat_ms"`
	Broker           string   `json:"broker"`
	HTTPAddr         string   `json:"http_addr"`
	Targets          []string `json:"targets"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}
	targets := snap.Config.Targets
	if targets == nil {
		targets = []string{}
	}

	inner := StatusInner{
		State:         state,
		Motion:        snap.Filter.Filtered,
		FilterPercent: snap.Filter.Percent,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Motion: snap.Counts.Motion,
			Alarms: snap.Counts.Alarms,
		},
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			WindowSize:       snap.Config.WindowSize,
			ThresholdPercent: snap.Config.ThresholdPercent,
			TripDelayMs:      snap.Config.TripDelayMs,
			ClearTimeoutMs:   snap.Config.ClearTimeoutMs,
			NotifyTimeoutMs:  snap.Config.NotifyTimeoutMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
			Targets:          targets,
		},
	}
	if !snap.AlarmSince.IsZero() {
		inner.AlarmSince = snap.AlarmSince.UTC().Format(time.RFC3339)
	}
	return inner
}

func buildOptional(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	if rec := snap.LastNotification; rec != nil {
		inner.Notification = &NotificationJSON{
			Timestamp: rec.Time.UTC().Format(time.RFC3339),
			Event:     string(rec.Event),
			Target:    rec.Target,
			Outcome:   string(rec.Outcome),
			Code:      rec.Code,
			Error:     rec.Err,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildOptional(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildOptional(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
