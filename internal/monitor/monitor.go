// Package monitor drives the motion pipeline once per tick and executes the
// side effects of each transition: event log entries, notifications, hooks,
// and status updates. It is the only writer of alarm state.
package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/presence-sensor/internal/eventlog"
	"github.com/sweeney/presence-sensor/internal/logic"
	"github.com/sweeney/presence-sensor/internal/notify"
	"github.com/sweeney/presence-sensor/internal/status"
)

// Notifier sends alarm notifications. notify.Dispatcher satisfies it.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification)
	LastRecord() *notify.Record
}

// SettingsSource supplies runtime settings. config.Provider satisfies it.
// Revision changes whenever new settings have been accepted.
type SettingsSource interface {
	Settings() logic.Settings
	Revision() uint64
}

// Options configures a Monitor.
type Options struct {
	// Window is the filter window length, fixed for the monitor's lifetime.
	Window int
	// Device names this sensor in notifications.
	Device string
	// HookTimeout bounds each hook call. Defaults to notify.DefaultTimeout.
	HookTimeout time.Duration
	// Settings is polled every tick. Nil keeps the initial settings.
	Settings SettingsSource
	// OnReload runs on the control loop after new settings were applied.
	OnReload func()
	// Tracker, if set, is updated after every tick.
	Tracker *status.Tracker
	// Hooks run on ALARM_TRIGGERED and ALARM_CLEARED, after notifications.
	Hooks []Hook
}

// Monitor owns the detector and performs all I/O on its behalf.
type Monitor struct {
	detector *logic.Detector
	log      eventlog.Recorder
	notifier Notifier
	logger   zerolog.Logger

	settings    SettingsSource
	revision    uint64
	onReload    func()
	device      string
	hookTimeout time.Duration
	tracker     *status.Tracker
	hooks       []Hook
}

// New creates a Monitor starting in IDLE at startTime.
func New(log eventlog.Recorder, notifier Notifier, opts Options, startTime time.Time, logger zerolog.Logger) *Monitor {
	initial := logic.DefaultSettings()
	var revision uint64
	if opts.Settings != nil {
		initial = opts.Settings.Settings()
		revision = opts.Settings.Revision()
	}
	if opts.HookTimeout <= 0 {
		opts.HookTimeout = notify.DefaultTimeout
	}

	return &Monitor{
		detector:    logic.NewDetector(opts.Window, initial, startTime),
		log:         log,
		notifier:    notifier,
		logger:      logger.With().Str("component", "monitor").Logger(),
		settings:    opts.Settings,
		revision:    revision,
		onReload:    opts.OnReload,
		device:      opts.Device,
		hookTimeout: opts.HookTimeout,
		tracker:     opts.Tracker,
		hooks:       opts.Hooks,
	}
}

// SetHookTimeout changes the per-hook deadline, effective from the next
// transition. Call it from the control loop, typically in OnReload.
func (m *Monitor) SetHookTimeout(d time.Duration) {
	if d <= 0 {
		d = notify.DefaultTimeout
	}
	m.hookTimeout = d
}

// HookTimeout returns the per-hook deadline.
func (m *Monitor) HookTimeout() time.Duration {
	return m.hookTimeout
}

// Detector exposes the underlying detector for read-only queries.
func (m *Monitor) Detector() *logic.Detector {
	return m.detector
}

// State returns the current alarm state.
func (m *Monitor) State() logic.AlarmState {
	state, _ := m.detector.CurrentState()
	return state
}

// Tick feeds one sample through the pipeline and executes the effects of
// any transition. Notifications and hooks are bounded by their timeouts, so
// Tick always returns.
func (m *Monitor) Tick(ctx context.Context, now time.Time, motion bool) logic.Result {
	m.applySettings(now)

	res := m.detector.Process(logic.Input{Motion: motion, Time: now})
	for _, ev := range res.Events {
		m.handle(ctx, ev, res.Filter)
	}

	m.updateTracker()
	return res
}

// SensorError records a failed sample read. The tick is skipped; the
// pipeline state is untouched.
func (m *Monitor) SensorError(now time.Time, err error) {
	m.logger.Warn().Err(err).Msg("sensor read failed")
	m.log.Append(now, eventlog.TypeSensorError, 0)
}

func (m *Monitor) applySettings(now time.Time) {
	if m.settings == nil {
		return
	}
	rev := m.settings.Revision()
	if rev == m.revision {
		return
	}
	m.revision = rev

	s := m.settings.Settings()
	m.detector.Apply(s)
	m.log.Append(now, eventlog.TypeConfigReloaded, int32(rev))
	m.logger.Info().
		Dur("trip_delay", s.TripDelay).
		Dur("clear_timeout", s.ClearTimeout).
		Int("threshold_percent", s.ThresholdPercent).
		Uint64("revision", rev).
		Msg("settings applied")

	if m.onReload != nil {
		m.onReload()
	}
}

func (m *Monitor) handle(ctx context.Context, ev logic.Event, fr logic.FilterResult) {
	m.log.Append(ev.Timestamp, eventlog.Type(ev.Type), logData(ev))

	l := m.logger.Info()
	if !ev.Type.Notifies() {
		l = m.logger.Debug()
	}
	l.Str("event", string(ev.Type)).
		Str("from", string(ev.From)).
		Str("to", string(ev.To)).
		Int("filter_percent", fr.Percent).
		Int("alarms", ev.Counts.Alarms).
		Msg("transition")

	if !ev.Type.Notifies() {
		return
	}

	m.notify(ctx, ev, fr)
	m.runHooks(ctx, ev)
}

func (m *Monitor) notify(ctx context.Context, ev logic.Event, fr logic.FilterResult) {
	if m.notifier == nil {
		return
	}

	kind := notify.EventTriggered
	if ev.Type == logic.EventAlarmCleared {
		kind = notify.EventCleared
	}

	n := notify.NewNotification(kind, ev.Timestamp)
	n.Device = m.device
	n.MotionCount = ev.Counts.Motion
	n.AlarmCount = ev.Counts.Alarms
	n.Duration = ev.Duration
	n.Percent = fr.Percent

	m.notifier.Notify(ctx, n)

	if m.tracker != nil {
		if rec := m.notifier.LastRecord(); rec != nil {
			m.tracker.SetLastNotification(rec)
		}
	}
}

func (m *Monitor) runHooks(ctx context.Context, ev logic.Event) {
	for _, h := range m.hooks {
		hctx, cancel := context.WithTimeout(ctx, m.hookTimeout)
		var err error
		if ev.Type == logic.EventAlarmTriggered {
			err = h.OnTriggered(hctx, ev)
		} else {
			err = h.OnCleared(hctx, ev)
		}
		cancel()

		if err != nil {
			m.logger.Warn().Err(err).Str("hook", h.Name()).Str("event", string(ev.Type)).Msg("hook failed")
			m.log.Append(ev.Timestamp, eventlog.TypeHookFailed, int32(ev.Counts.Alarms))
		}
	}
}

func (m *Monitor) updateTracker() {
	if m.tracker == nil {
		return
	}
	state, fr := m.detector.CurrentState()
	var since time.Time
	if state == logic.StateAlarmActive || state == logic.StateAlarmClearing {
		since = m.detector.TriggeredAt()
	}
	m.tracker.Update(state, fr, m.detector.EventCountsSnapshot(), since)
}

// logData picks the Data field for a transition entry.
func logData(ev logic.Event) int32 {
	switch ev.Type {
	case logic.EventAlarmCleared:
		return int32(ev.Duration / time.Second)
	case logic.EventMotionDetected, logic.EventMotionEnded:
		return int32(ev.Counts.Motion)
	default:
		return int32(ev.Counts.Alarms)
	}
}
