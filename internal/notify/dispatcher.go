package notify

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/presence-sensor/internal/eventlog"
)

// Options parameterise a Dispatcher.
type Options struct {
	Timeout time.Duration
	Targets []Target
	Clock   func() time.Time
}

// Dispatcher sends notifications to all configured targets.
type Dispatcher struct {
	transport Transport
	log       eventlog.Recorder
	logger    zerolog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	timeout time.Duration
	targets []Target
	last    *Record
}

// New builds a Dispatcher. A non-positive timeout falls back to DefaultTimeout.
func New(transport Transport, log eventlog.Recorder, opts Options, logger zerolog.Logger) *Dispatcher {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	d := &Dispatcher{
		transport: transport,
		log:       log,
		logger:    logger.With().Str("component", "notify").Logger(),
		now:       clock,
	}
	d.Configure(opts.Timeout, opts.Targets)
	return d
}

// Configure replaces the timeout and target list, effective from the next Notify.
func (d *Dispatcher) Configure(timeout time.Duration, targets []Target) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d.mu.Lock()
	d.timeout = timeout
	d.targets = append([]Target(nil), targets...)
	d.mu.Unlock()
}

// Timeout returns the per-dispatch deadline.
func (d *Dispatcher) Timeout() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.timeout
}

// Notify sends n to every target within one shared timeout. It never returns
// an error: outcomes go to the event log and LastRecord.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	d.mu.RLock()
	timeout := d.timeout
	targets := d.targets
	d.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	if !d.transport.Available() {
		d.logger.Warn().Str("event", string(n.Event)).Msg("transport unavailable, notification skipped")
		d.record(n, "", OutcomeSkipped, CodeUnavailable, nil)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, target := range targets {
		req, err := target.Request(n)
		if err != nil {
			d.record(n, target.Name(), OutcomeFailed, CodeBadRequest, err)
			continue
		}
		if req == nil {
			continue
		}

		code, err := d.transport.Do(ctx, *req)
		switch {
		case err != nil:
			d.record(n, target.Name(), OutcomeFailed, errorCode(ctx, err), err)
		case code < 200 || code >= 300:
			d.record(n, target.Name(), OutcomeFailed, code, nil)
		default:
			d.record(n, target.Name(), OutcomeSent, code, nil)
		}
	}
}

// LastRecord returns the most recent attempt, or nil if none was made.
func (d *Dispatcher) LastRecord() *Record {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.last == nil {
		return nil
	}
	r := *d.last
	return &r
}

func (d *Dispatcher) record(n Notification, target string, outcome Outcome, code int, err error) {
	now := d.now()
	rec := &Record{
		Time:    now,
		Event:   n.Event,
		Target:  target,
		Outcome: outcome,
		Code:    code,
	}
	if err != nil {
		rec.Err = err.Error()
	}

	d.mu.Lock()
	d.last = rec
	d.mu.Unlock()

	var typ eventlog.Type
	switch outcome {
	case OutcomeSent:
		typ = eventlog.TypeNotifyOK
		d.logger.Info().Str("event", string(n.Event)).Str("target", target).Int("code", code).Str("id", n.ID).Msg("notification sent")
	case OutcomeFailed:
		typ = eventlog.TypeNotifyFailed
		d.logger.Warn().Err(err).Str("event", string(n.Event)).Str("target", target).Int("code", code).Str("id", n.ID).Msg("notification failed")
	default:
		typ = eventlog.TypeNotifySkipped
	}
	if d.log != nil {
		d.log.Append(now, typ, int32(code))
	}
}

func errorCode(ctx context.Context, err error) int {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return CodeTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return CodeTimeout
	}
	return CodeTransportError
}
