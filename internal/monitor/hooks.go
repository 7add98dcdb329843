package monitor

import (
	"context"
	"fmt"

	"github.com/sweeney/presence-sensor/internal/logic"
	"github.com/sweeney/presence-sensor/internal/mqtt"
)

// Hook is notified of alarm trigger and clear transitions. Each call runs
// under the hook timeout carried by ctx.
type Hook interface {
	Name() string
	OnTriggered(ctx context.Context, ev logic.Event) error
	OnCleared(ctx context.Context, ev logic.Event) error
}

// PublisherHook forwards alarm transitions to an MQTT publisher.
type PublisherHook struct {
	Publisher mqtt.Publisher
}

// NewPublisherHook wraps p as a Hook.
func NewPublisherHook(p mqtt.Publisher) *PublisherHook {
	return &PublisherHook{Publisher: p}
}

// Name implements Hook.
func (h *PublisherHook) Name() string { return "mqtt" }

// OnTriggered implements Hook.
func (h *PublisherHook) OnTriggered(ctx context.Context, ev logic.Event) error {
	return h.publish(ctx, ev)
}

// OnCleared implements Hook.
func (h *PublisherHook) OnCleared(ctx context.Context, ev logic.Event) error {
	return h.publish(ctx, ev)
}

// publish waits for the publisher or ctx, whichever ends first. The paho
// client bounds its own wait, so an abandoned publish does not linger.
func (h *PublisherHook) publish(ctx context.Context, ev logic.Event) error {
	done := make(chan error, 1)
	go func() { done <- h.Publisher.Publish(ev) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", ev.Type, ctx.Err())
	}
}

// HookFunc adapts a function to a Hook that handles both edges.
type HookFunc struct {
	HookName string
	Fn       func(ctx context.Context, ev logic.Event) error
}

// Name implements Hook.
func (f HookFunc) Name() string { return f.HookName }

// OnTriggered implements Hook.
func (f HookFunc) OnTriggered(ctx context.Context, ev logic.Event) error { return f.Fn(ctx, ev) }

// OnCleared implements Hook.
func (f HookFunc) OnCleared(ctx context.Context, ev logic.Event) error { return f.Fn(ctx, ev) }
