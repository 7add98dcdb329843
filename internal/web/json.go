package web

import (
	"encoding/json"
	"time"
)

// EventsJSON is the JSON representation of the diagnostic event log.
type EventsJSON struct {
	Capacity int         `json:"capacity"`
	Total    uint64      `json:"total"`
	Events   []EventJSON `json:"events"`
}

// EventJSON is a single log entry.
type EventJSON struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Data      int32  `json:"data"`
}

// formatEvents renders the log oldest first.
func formatEvents(src EventSource) []byte {
	entries := src.Snapshot()
	out := EventsJSON{
		Capacity: src.Cap(),
		Total:    src.Total(),
		Events:   make([]EventJSON, 0, len(entries)),
	}
	for _, e := range entries {
		out.Events = append(out.Events, EventJSON{
			Timestamp: e.Time.UTC().Format(time.RFC3339Nano),
			Type:      string(e.Type),
			Data:      e.Data,
		})
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	return data
}
