package logic

import "time"

// Machine is the four-state hysteretic alarm state machine.
// Step is a pure function of the machine's state and its inputs; it never
// performs I/O. Callers execute side effects from the returned events.
type Machine struct {
	state        AlarmState
	tripDelay    time.Duration
	clearTimeout time.Duration

	motionStart time.Time
	motionStop  time.Time
	triggeredAt time.Time

	counts EventCounts
}

// NewMachine creates a machine in IDLE with the given delays.
// Negative delays fall back to the defaults.
func NewMachine(tripDelay, clearTimeout time.Duration) *Machine {
	m := &Machine{
		state:        StateIdle,
		tripDelay:    DefaultTripDelay,
		clearTimeout: DefaultClearTimeout,
	}
	m.SetDelays(tripDelay, clearTimeout)
	return m
}

// SetDelays updates the trip and clear delays. A negative value is ignored
// and the previous delay is kept. Zero is legal and fires on the next Step.
func (m *Machine) SetDelays(tripDelay, clearTimeout time.Duration) {
	if tripDelay >= 0 {
		m.tripDelay = tripDelay
	}
	if clearTimeout >= 0 {
		m.clearTimeout = clearTimeout
	}
}

// Step evaluates one tick. At most one transition happens per call.
func (m *Machine) Step(filtered bool, now time.Time) []Event {
	from := m.state

	switch m.state {
	case StateIdle:
		if !filtered {
			return nil
		}
		m.state = StateMotionPending
		m.motionStart = now
		m.counts.Motion++
		return m.emit(now, from, EventMotionDetected, 0)

	case StateMotionPending:
		if !filtered {
			m.state = StateIdle
			return m.emit(now, from, EventMotionEnded, 0)
		}
		if now.Sub(m.motionStart) >= m.tripDelay {
			m.state = StateAlarmActive
			m.triggeredAt = now
			m.counts.Alarms++
			return m.emit(now, from, EventAlarmTriggered, 0)
		}

	case StateAlarmActive:
		if !filtered {
			m.state = StateAlarmClearing
			m.motionStop = now
			return m.emit(now, from, EventMotionStopped, 0)
		}

	case StateAlarmClearing:
		if filtered {
			// Resume without re-notifying.
			m.state = StateAlarmActive
			return m.emit(now, from, EventMotionResumed, 0)
		}
		if now.Sub(m.motionStop) >= m.clearTimeout {
			m.state = StateIdle
			return m.emit(now, from, EventAlarmCleared, now.Sub(m.triggeredAt))
		}
	}

	return nil
}

func (m *Machine) emit(now time.Time, from AlarmState, typ EventType, d time.Duration) []Event {
	return []Event{{
		Timestamp: now,
		Type:      typ,
		From:      from,
		To:        m.state,
		Duration:  d,
		Counts:    m.counts,
	}}
}

// State returns the current alarm state.
func (m *Machine) State() AlarmState {
	return m.state
}

// Counts returns the motion and alarm counters.
func (m *Machine) Counts() EventCounts {
	return m.counts
}

// Delays returns the active trip and clear delays.
func (m *Machine) Delays() (trip, clear time.Duration) {
	return m.tripDelay, m.clearTimeout
}

// TriggeredAt returns when the current or most recent alarm was triggered.
func (m *Machine) TriggeredAt() time.Time {
	return m.triggeredAt
}
