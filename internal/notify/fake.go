package notify

import (
	"context"
	"time"
)

// FakeTransport records requests for test assertions.
type FakeTransport struct {
	// Requests contains every call passed to Do.
	Requests []Request

	// Unavailable makes Available report false.
	Unavailable bool

	// Status is returned by Do when Err is nil. Zero means 200.
	Status int

	// Err, if set, will be returned by Do.
	Err error

	// Delay blocks Do until it elapses or the context is done.
	Delay time.Duration
}

// NewFakeTransport creates an available FakeTransport returning 200.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// Available reports the scripted availability.
func (f *FakeTransport) Available() bool {
	return !f.Unavailable
}

// Do records the request and returns the scripted result.
func (f *FakeTransport) Do(ctx context.Context, req Request) (int, error) {
	f.Requests = append(f.Requests, req)

	if f.Delay > 0 {
		timer := time.NewTimer(f.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
		}
	}

	if f.Err != nil {
		return 0, f.Err
	}
	if f.Status == 0 {
		return 200, nil
	}
	return f.Status, nil
}

// Reset clears recorded requests and scripted behavior.
func (f *FakeTransport) Reset() {
	f.Requests = nil
	f.Unavailable = false
	f.Status = 0
	f.Err = nil
	f.Delay = 0
}

var _ Transport = (*FakeTransport)(nil)
