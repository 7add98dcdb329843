package logic

import "time"

// Detector runs raw samples through the filter and the alarm machine.
type Detector struct {
	filter        *Filter
	machine       *Machine
	last          FilterResult
	startTime     time.Time
	lastHeartbeat time.Time
}

// Result is the outcome of processing one sample.
type Result struct {
	Filter FilterResult
	Events []Event
}

// NewDetector creates a detector with a fixed window size and initial settings.
// The startTime is used for calculating uptime in heartbeat events.
func NewDetector(window int, settings Settings, startTime time.Time) *Detector {
	return &Detector{
		filter:        NewFilter(window, settings.ThresholdPercent),
		machine:       NewMachine(settings.TripDelay, settings.ClearTimeout),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Apply updates the runtime settings. Invalid values are clamped or ignored,
// never fatal. The window size cannot change after construction.
func (d *Detector) Apply(s Settings) {
	d.filter.SetThreshold(s.ThresholdPercent)
	d.machine.SetDelays(s.TripDelay, s.ClearTimeout)
}

// Process takes a new input sample and returns the filter result and any
// transitions that occurred.
func (d *Detector) Process(input Input) Result {
	fr := d.filter.Update(input.Motion)
	d.last = fr
	return Result{
		Filter: fr,
		Events: d.machine.Step(fr.Filtered, input.Time),
	}
}

// CurrentState returns the alarm state and the most recent filter result.
func (d *Detector) CurrentState() (AlarmState, FilterResult) {
	return d.machine.State(), d.last
}

// EventCountsSnapshot returns the motion and alarm counters.
func (d *Detector) EventCountsSnapshot() EventCounts {
	return d.machine.Counts()
}

// Settings returns the settings currently in effect.
func (d *Detector) Settings() Settings {
	trip, clear := d.machine.Delays()
	return Settings{
		TripDelay:        trip,
		ClearTimeout:     clear,
		ThresholdPercent: d.filter.Threshold(),
	}
}

// TriggeredAt returns when the current alarm tripped. Only meaningful while
// the state is ALARM_ACTIVE or ALARM_CLEARING.
func (d *Detector) TriggeredAt() time.Time {
	return d.machine.TriggeredAt()
}

// WindowSize returns the fixed filter window length.
func (d *Detector) WindowSize() int {
	return d.filter.Size()
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.machine.Counts(),
		State:     d.machine.State(),
	}
}
