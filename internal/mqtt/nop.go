package mqtt

import "github.com/sweeney/presence-sensor/internal/logic"

// NopPublisher discards everything. Used when MQTT is disabled.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(logic.Event) error { return nil }

// PublishSystem implements Publisher.
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// IsConnected always reports false.
func (NopPublisher) IsConnected() bool { return false }
