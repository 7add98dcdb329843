package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/sweeney/presence-sensor/internal/logic"
)

// Options configures a RealPublisher.
type Options struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	// Timeout bounds connect and every publish.
	Timeout time.Duration
}

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client  paho.Client
	events  string
	system  string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewRealPublisher creates a publisher and connects to the broker. If the
// first connect does not complete within the timeout the publisher is still
// returned alongside the error; the client keeps retrying in the background.
func NewRealPublisher(opts Options, logger zerolog.Logger) (*RealPublisher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.ClientID == "" {
		opts.ClientID = "presence-sensor"
	}

	p := &RealPublisher{
		events:  EventsTopic(opts.TopicPrefix),
		system:  SystemTopic(opts.TopicPrefix),
		timeout: opts.Timeout,
		logger:  logger.With().Str("component", "mqtt").Str("broker", opts.Broker).Logger(),
	}

	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetConnectTimeout(opts.Timeout).
		SetWill(p.system, string(WillPayload()), 1, true).
		SetOnConnectHandler(func(paho.Client) {
			p.logger.Info().Msg("connected")
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.logger.Warn().Err(err).Msg("connection lost")
		})

	p.client = paho.NewClient(co)
	token := p.client.Connect()
	if !token.WaitTimeout(opts.Timeout) {
		return p, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return p, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends an alarm event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	token := p.client.Publish(p.events, 0, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 so STARTUP/SHUTDOWN survive a flaky link.
	token := p.client.Publish(p.system, 1, event.Retained, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}

	return nil
}

// IsConnected reports whether the connection to the broker is open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
