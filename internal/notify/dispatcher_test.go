package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/presence-sensor/internal/eventlog"
)

var at = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return at }

func newTestDispatcher(tr Transport, targets ...Target) (*Dispatcher, *eventlog.Log) {
	log := eventlog.New(50)
	d := New(tr, log, Options{Timeout: time.Second, Targets: targets, Clock: fixedClock}, zerolog.Nop())
	return d, log
}

func TestNotifyNoTargetsIsNoop(t *testing.T) {
	tr := NewFakeTransport()
	d, log := newTestDispatcher(tr)

	d.Notify(context.Background(), NewNotification(EventTriggered, at))

	assert.Empty(t, tr.Requests)
	assert.Zero(t, log.Len())
	assert.Nil(t, d.LastRecord())
}

func TestNotifySuccess(t *testing.T) {
	tr := NewFakeTransport()
	d, log := newTestDispatcher(tr, NewWebhook("hook", "http://example.invalid/hook", ""))

	n := NewNotification(EventTriggered, at)
	n.AlarmCount = 2
	d.Notify(context.Background(), n)

	require.Len(t, tr.Requests, 1)
	req := tr.Requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.ContentType)

	var p Payload
	require.NoError(t, json.Unmarshal(req.Body, &p))
	assert.Equal(t, "triggered", p.Alarm.Event)
	assert.Equal(t, n.ID, p.Alarm.ID)
	assert.Equal(t, 2, p.Alarm.AlarmCount)

	entries := log.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, eventlog.TypeNotifyOK, entries[0].Type)
	assert.Equal(t, int32(200), entries[0].Data)

	rec := d.LastRecord()
	require.NotNil(t, rec)
	assert.Equal(t, OutcomeSent, rec.Outcome)
	assert.Equal(t, "hook", rec.Target)
	assert.Equal(t, EventTriggered, rec.Event)
	assert.Equal(t, at, rec.Time)
}

func TestNotifyNon2xxIsFailure(t *testing.T) {
	tr := NewFakeTransport()
	tr.Status = http.StatusServiceUnavailable
	d, log := newTestDispatcher(tr, NewWebhook("hook", "http://example.invalid/hook", ""))

	d.Notify(context.Background(), NewNotification(EventCleared, at))

	entries := log.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, eventlog.TypeNotifyFailed, entries[0].Type)
	assert.Equal(t, int32(503), entries[0].Data)
	assert.Equal(t, OutcomeFailed, d.LastRecord().Outcome)
	assert.Len(t, tr.Requests, 1, "failures are never retried")
}

func TestNotifyTransportError(t *testing.T) {
	tr := NewFakeTransport()
	tr.Err = errors.New("connection refused")
	d, log := newTestDispatcher(tr, NewWebhook("hook", "http://example.invalid/hook", ""))

	d.Notify(context.Background(), NewNotification(EventTriggered, at))

	entries := log.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, eventlog.TypeNotifyFailed, entries[0].Type)
	assert.Equal(t, int32(CodeTransportError), entries[0].Data)
	rec := d.LastRecord()
	assert.Equal(t, CodeTransportError, rec.Code)
	assert.Contains(t, rec.Err, "connection refused")
}

func TestNotifyUnavailableSkipsWithoutAttempt(t *testing.T) {
	tr := NewFakeTransport()
	tr.Unavailable = true
	d, log := newTestDispatcher(tr,
		NewWebhook("a", "http://example.invalid/a", ""),
		NewWebhook("b", "http://example.invalid/b", ""),
	)

	d.Notify(context.Background(), NewNotification(EventTriggered, at))

	assert.Empty(t, tr.Requests, "no call may be attempted")
	entries := log.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, eventlog.TypeNotifySkipped, entries[0].Type)
	assert.NotEqual(t, eventlog.TypeNotifyFailed, entries[0].Type)
	assert.Equal(t, OutcomeSkipped, d.LastRecord().Outcome)
}

func TestNotifyTimeoutIsSharedAcrossTargets(t *testing.T) {
	tr := NewFakeTransport()
	tr.Delay = time.Hour
	log := eventlog.New(50)
	d := New(tr, log, Options{
		Timeout: 50 * time.Millisecond,
		Targets: []Target{
			NewWebhook("a", "http://example.invalid/a", ""),
			NewWebhook("b", "http://example.invalid/b", ""),
			NewWebhook("c", "http://example.invalid/c", ""),
		},
		Clock: fixedClock,
	}, zerolog.Nop())

	begin := time.Now()
	d.Notify(context.Background(), NewNotification(EventTriggered, at))
	elapsed := time.Since(begin)

	assert.Less(t, elapsed, time.Second, "whole dispatch must respect one timeout")
	entries := log.Snapshot()
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, eventlog.TypeNotifyFailed, e.Type)
		assert.Equal(t, int32(CodeTimeout), e.Data)
	}
}

// An unreachable endpoint with a short timeout: Notify returns within the
// bound and records a failure.
func TestNotifyUnreachableTargetBounded(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	const timeout = 200 * time.Millisecond
	log := eventlog.New(50)
	d := New(NewHTTPTransport(timeout, nil, ""), log, Options{
		Timeout: timeout,
		Targets: []Target{NewWebhook("slow", srv.URL, "")},
	}, zerolog.Nop())

	begin := time.Now()
	d.Notify(context.Background(), NewNotification(EventTriggered, at))
	elapsed := time.Since(begin)

	assert.Less(t, elapsed, timeout+500*time.Millisecond)
	entries := log.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, eventlog.TypeNotifyFailed, entries[0].Type)
	assert.Equal(t, int32(CodeTimeout), entries[0].Data)
}

func TestNotifyRealHTTPSuccess(t *testing.T) {
	var (
		mu       sync.Mutex
		received []byte
		ua       string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		received = body
		ua = r.Header.Get("User-Agent")
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	log := eventlog.New(50)
	d := New(NewHTTPTransport(time.Second, func() bool { return true }, "test-agent"), log, Options{
		Timeout: time.Second,
		Targets: []Target{NewWebhook("hook", srv.URL, "post")},
	}, zerolog.Nop())

	n := NewNotification(EventCleared, at)
	n.Duration = 42 * time.Second
	d.Notify(context.Background(), n)

	mu.Lock()
	defer mu.Unlock()
	var p Payload
	require.NoError(t, json.Unmarshal(received, &p))
	assert.Equal(t, "cleared", p.Alarm.Event)
	assert.Equal(t, int64(42), p.Alarm.DurationSeconds)
	assert.Equal(t, "test-agent", ua)

	rec := d.LastRecord()
	require.NotNil(t, rec)
	assert.Equal(t, OutcomeSent, rec.Outcome)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNotifyVisualAlertSkipsEmptyPayload(t *testing.T) {
	tr := NewFakeTransport()
	d, log := newTestDispatcher(tr, NewVisualAlert("http://lights.invalid/json/state", `{"on":true}`, ""))

	d.Notify(context.Background(), NewNotification(EventCleared, at))
	assert.Empty(t, tr.Requests)
	assert.Zero(t, log.Len())

	d.Notify(context.Background(), NewNotification(EventTriggered, at))
	require.Len(t, tr.Requests, 1)
	assert.Equal(t, `{"on":true}`, string(tr.Requests[0].Body))
}

func TestConfigureReplacesTargets(t *testing.T) {
	tr := NewFakeTransport()
	d, _ := newTestDispatcher(tr, NewWebhook("old", "http://example.invalid/old", ""))

	d.Configure(0, []Target{NewWebhook("new", "http://example.invalid/new", "")})
	assert.Equal(t, DefaultTimeout, d.Timeout())

	d.Notify(context.Background(), NewNotification(EventTriggered, at))
	require.Len(t, tr.Requests, 1)
	assert.Equal(t, "http://example.invalid/new", tr.Requests[0].URL)
}

func TestLastRecordIsCopy(t *testing.T) {
	tr := NewFakeTransport()
	d, _ := newTestDispatcher(tr, NewWebhook("hook", "http://example.invalid/hook", ""))
	d.Notify(context.Background(), NewNotification(EventTriggered, at))

	rec := d.LastRecord()
	rec.Code = 999
	assert.Equal(t, 200, d.LastRecord().Code)
}
