// Package config loads and validates daemon configuration with viper and
// keeps the current value available to the control loop.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/sweeney/presence-sensor/internal/logging"
	"github.com/sweeney/presence-sensor/internal/logic"
)

// EnvPrefix is the prefix for environment overrides, e.g. PRESENCE_ALARM_TRIP_DELAY_SECONDS.
const EnvPrefix = "PRESENCE"

// Config materialises application configuration.
type Config struct {
	Sensor    SensorConfig    `mapstructure:"sensor" yaml:"sensor"`
	Filter    FilterConfig    `mapstructure:"filter" yaml:"filter"`
	Alarm     AlarmConfig     `mapstructure:"alarm" yaml:"alarm"`
	Notify    NotifyConfig    `mapstructure:"notify" yaml:"notify"`
	MQTT      MQTTConfig      `mapstructure:"mqtt" yaml:"mqtt"`
	HTTP      HTTPConfig      `mapstructure:"http" yaml:"http"`
	Network   NetworkConfig   `mapstructure:"network" yaml:"network"`
	EventLog  EventLogConfig  `mapstructure:"event_log" yaml:"event_log"`
	Heartbeat time.Duration   `mapstructure:"heartbeat" yaml:"heartbeat"`
	Logging   logging.Config  `mapstructure:"logging" yaml:"logging"`
}

// SensorConfig describes the motion input pin.
type SensorConfig struct {
	Chip      string        `mapstructure:"chip" yaml:"chip"`
	Pin       int           `mapstructure:"pin" yaml:"pin"`
	ActiveLow bool          `mapstructure:"active_low" yaml:"active_low"`
	Poll      time.Duration `mapstructure:"poll" yaml:"poll"`
}

// FilterConfig tunes the majority-vote filter.
type FilterConfig struct {
	Window           int `mapstructure:"window" yaml:"window"`
	ThresholdPercent int `mapstructure:"threshold_percent" yaml:"threshold_percent"`
}

// AlarmConfig sets the trip and clear delays.
type AlarmConfig struct {
	TripDelaySeconds    int `mapstructure:"trip_delay_seconds" yaml:"trip_delay_seconds"`
	ClearTimeoutSeconds int `mapstructure:"clear_timeout_seconds" yaml:"clear_timeout_seconds"`
}

// NotifyConfig describes outbound notification targets.
type NotifyConfig struct {
	Timeout     time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	Device      string            `mapstructure:"device" yaml:"device"`
	UserAgent   string            `mapstructure:"user_agent" yaml:"user_agent,omitempty"`
	Webhooks    []WebhookConfig   `mapstructure:"webhooks" yaml:"webhooks"`
	VisualAlert VisualAlertConfig `mapstructure:"visual_alert" yaml:"visual_alert"`
}

// WebhookConfig is one webhook endpoint.
type WebhookConfig struct {
	Name   string `mapstructure:"name" yaml:"name"`
	URL    string `mapstructure:"url" yaml:"url"`
	Method string `mapstructure:"method" yaml:"method"`
}

// VisualAlertConfig is a light/display controller endpoint.
type VisualAlertConfig struct {
	URL              string `mapstructure:"url" yaml:"url"`
	TriggeredPayload string `mapstructure:"triggered_payload" yaml:"triggered_payload"`
	ClearedPayload   string `mapstructure:"cleared_payload" yaml:"cleared_payload"`
}

// MQTTConfig covers the broker integration.
type MQTTConfig struct {
	Enabled     bool          `mapstructure:"enabled" yaml:"enabled"`
	Broker      string        `mapstructure:"broker" yaml:"broker"`
	ClientID    string        `mapstructure:"client_id" yaml:"client_id"`
	TopicPrefix string        `mapstructure:"topic_prefix" yaml:"topic_prefix"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// HTTPConfig covers the status server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// NetworkConfig locates the pi-helper env file.
type NetworkConfig struct {
	EnvFile string `mapstructure:"env_file" yaml:"env_file"`
}

// EventLogConfig sizes the diagnostic log.
type EventLogConfig struct {
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := newViper(path)
	if err := readConfig(v); err != nil {
		return nil, err
	}
	return decode(v)
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("presence-sensor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/presence-sensor")
	}
	return v
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sensor.chip", "gpiochip0")
	v.SetDefault("sensor.pin", 17)
	v.SetDefault("sensor.active_low", false)
	v.SetDefault("sensor.poll", "100ms")

	v.SetDefault("filter.window", logic.DefaultWindow)
	v.SetDefault("filter.threshold_percent", logic.DefaultThresholdPercent)

	v.SetDefault("alarm.trip_delay_seconds", int(logic.DefaultTripDelay/time.Second))
	v.SetDefault("alarm.clear_timeout_seconds", int(logic.DefaultClearTimeout/time.Second))

	v.SetDefault("notify.timeout", "3s")
	v.SetDefault("notify.device", defaultDevice())
	v.SetDefault("notify.user_agent", "")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://192.168.1.200:1883")
	v.SetDefault("mqtt.client_id", "presence-sensor")
	v.SetDefault("mqtt.topic_prefix", "home/presence/sensor")
	v.SetDefault("mqtt.timeout", "5s")

	v.SetDefault("http.addr", ":80")
	v.SetDefault("network.env_file", "/run/pi-helper.env")
	v.SetDefault("event_log.capacity", 50)
	v.SetDefault("heartbeat", "15m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func defaultDevice() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "presence-sensor"
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs range checks. The pipeline assumes values that pass.
func (c *Config) Validate() error {
	if c.Sensor.Poll <= 0 {
		return fmt.Errorf("sensor.poll must be greater than zero")
	}
	if c.Sensor.Pin < 0 {
		return fmt.Errorf("sensor.pin cannot be negative")
	}
	if c.Filter.Window < 1 || c.Filter.Window > 100 {
		return fmt.Errorf("filter.window must be between 1 and 100, got %d", c.Filter.Window)
	}
	if c.Filter.ThresholdPercent < 10 || c.Filter.ThresholdPercent > 100 {
		return fmt.Errorf("filter.threshold_percent must be between 10 and 100, got %d", c.Filter.ThresholdPercent)
	}
	if c.Alarm.TripDelaySeconds < 1 || c.Alarm.TripDelaySeconds > 60 {
		return fmt.Errorf("alarm.trip_delay_seconds must be between 1 and 60, got %d", c.Alarm.TripDelaySeconds)
	}
	if c.Alarm.ClearTimeoutSeconds < 1 || c.Alarm.ClearTimeoutSeconds > 300 {
		return fmt.Errorf("alarm.clear_timeout_seconds must be between 1 and 300, got %d", c.Alarm.ClearTimeoutSeconds)
	}
	if c.Notify.Timeout <= 0 || c.Notify.Timeout > 10*time.Second {
		return fmt.Errorf("notify.timeout must be in (0, 10s], got %v", c.Notify.Timeout)
	}
	for i, w := range c.Notify.Webhooks {
		if err := validateURL(w.URL); err != nil {
			return fmt.Errorf("notify.webhooks[%d].url: %w", i, err)
		}
	}
	va := c.Notify.VisualAlert
	if va.TriggeredPayload != "" || va.ClearedPayload != "" {
		if err := validateURL(va.URL); err != nil {
			return fmt.Errorf("notify.visual_alert.url: %w", err)
		}
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt.enabled is set")
	}
	if c.EventLog.Capacity < 1 {
		return fmt.Errorf("event_log.capacity must be greater than zero")
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat cannot be negative")
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must be set")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host must be set")
	}
	return nil
}

// Settings projects the values consumed by the motion pipeline.
func (c *Config) Settings() logic.Settings {
	return logic.Settings{
		TripDelay:        time.Duration(c.Alarm.TripDelaySeconds) * time.Second,
		ClearTimeout:     time.Duration(c.Alarm.ClearTimeoutSeconds) * time.Second,
		ThresholdPercent: c.Filter.ThresholdPercent,
	}
}
