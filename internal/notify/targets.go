package notify

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Webhook posts the JSON payload (or issues a GET with query parameters) to a URL.
type Webhook struct {
	name   string
	url    string
	method string
}

// NewWebhook creates a webhook target. Method defaults to POST.
func NewWebhook(name, rawURL, method string) *Webhook {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}
	if name == "" {
		name = "webhook"
	}
	return &Webhook{name: name, url: rawURL, method: method}
}

// Name returns the target name used in logs and records.
func (w *Webhook) Name() string {
	return w.name
}

// Request builds the webhook call.
func (w *Webhook) Request(n Notification) (*Request, error) {
	if w.method == http.MethodGet {
		u, err := url.Parse(w.url)
		if err != nil {
			return nil, fmt.Errorf("parse webhook url: %w", err)
		}
		q := u.Query()
		q.Set("event", string(n.Event))
		q.Set("id", n.ID)
		q.Set("timestamp", n.Time.UTC().Format(time.RFC3339))
		q.Set("alarms", strconv.Itoa(n.AlarmCount))
		if n.Device != "" {
			q.Set("device", n.Device)
		}
		u.RawQuery = q.Encode()
		return &Request{Method: http.MethodGet, URL: u.String()}, nil
	}

	body, err := FormatPayload(n)
	if err != nil {
		return nil, fmt.Errorf("format payload: %w", err)
	}
	return &Request{
		Method:      w.method,
		URL:         w.url,
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// VisualAlert pushes an operator-supplied payload to a light or display
// controller. Payloads are sent verbatim; an empty payload disables that edge.
type VisualAlert struct {
	url       string
	triggered string
	cleared   string
}

// NewVisualAlert creates a visual-alert target.
func NewVisualAlert(rawURL, triggeredPayload, clearedPayload string) *VisualAlert {
	return &VisualAlert{url: rawURL, triggered: triggeredPayload, cleared: clearedPayload}
}

// Name returns the target name used in logs and records.
func (v *VisualAlert) Name() string {
	return "visual_alert"
}

// Request builds the visual-alert call.
func (v *VisualAlert) Request(n Notification) (*Request, error) {
	var body string
	switch n.Event {
	case EventTriggered:
		body = v.triggered
	case EventCleared:
		body = v.cleared
	}
	if body == "" {
		return nil, nil
	}
	return &Request{
		Method:      http.MethodPost,
		URL:         v.url,
		ContentType: "application/json",
		Body:        []byte(body),
	}, nil
}

var (
	_ Target = (*Webhook)(nil)
	_ Target = (*VisualAlert)(nil)
)
