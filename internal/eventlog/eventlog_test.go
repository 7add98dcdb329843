package eventlog_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/presence-sensor/internal/eventlog"
)

var start = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNewDefaultsCapacity(t *testing.T) {
	assert.Equal(t, eventlog.DefaultCapacity, eventlog.New(0).Cap())
	assert.Equal(t, eventlog.DefaultCapacity, eventlog.New(-1).Cap())
	assert.Equal(t, 7, eventlog.New(7).Cap())
}

func TestAppendPreservesFields(t *testing.T) {
	l := eventlog.New(10)
	l.Append(start, eventlog.TypeAlarmTriggered, 3)

	got := l.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, eventlog.Entry{Time: start, Type: eventlog.TypeAlarmTriggered, Data: 3}, got[0])
}

func TestLogBound(t *testing.T) {
	l := eventlog.New(50)

	const n = 137
	for i := 1; i <= n; i++ {
		l.Append(start.Add(time.Duration(i)*time.Second), eventlog.TypeNotifyFailed, int32(i))
	}

	got := l.Snapshot()
	require.Len(t, got, 50)
	assert.Equal(t, int32(n-49), got[0].Data, "oldest surviving entry")
	assert.Equal(t, int32(n), got[49].Data, "newest entry")
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].Time.After(got[i-1].Time), "entries must be oldest first")
	}
	assert.Equal(t, uint64(n), l.Total())
	assert.Equal(t, 50, l.Len())
}

func TestSnapshotIsRestartable(t *testing.T) {
	l := eventlog.New(5)
	l.Append(start, eventlog.TypeStartup, 0)
	l.Append(start, eventlog.TypeMotionDetected, 1)

	first := l.Snapshot()
	second := l.Snapshot()
	assert.Equal(t, first, second)

	first[0].Type = eventlog.TypeShutdown
	assert.Equal(t, eventlog.TypeStartup, l.Snapshot()[0].Type)
}

func TestConcurrentAppendAndSnapshot(t *testing.T) {
	l := eventlog.New(50)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			l.Append(start, eventlog.TypeNotifyOK, int32(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := l.Snapshot()
			assert.LessOrEqual(t, len(snap), 50)
		}
	}()
	wg.Wait()

	assert.Equal(t, uint64(1000), l.Total())
	assert.Equal(t, 50, l.Len())
}
