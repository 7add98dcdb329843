package main

import (
	"time"

	"github.com/sweeney/presence-sensor/internal/config"
	"github.com/sweeney/presence-sensor/internal/gpio"
	"github.com/sweeney/presence-sensor/internal/monitor"
	"github.com/sweeney/presence-sensor/internal/notify"
	"github.com/sweeney/presence-sensor/internal/status"
)

func sensorLine(cfg config.Config) gpio.Line {
	return gpio.Line{
		Chip:      cfg.Sensor.Chip,
		Pin:       cfg.Sensor.Pin,
		ActiveLow: cfg.Sensor.ActiveLow,
	}
}

// targetsFromConfig builds notification targets in configuration order:
// webhooks first, then the visual alert.
func targetsFromConfig(nc config.NotifyConfig) []notify.Target {
	var targets []notify.Target
	for _, w := range nc.Webhooks {
		targets = append(targets, notify.NewWebhook(w.Name, w.URL, w.Method))
	}
	va := nc.VisualAlert
	if va.URL != "" && (va.TriggeredPayload != "" || va.ClearedPayload != "") {
		targets = append(targets, notify.NewVisualAlert(va.URL, va.TriggeredPayload, va.ClearedPayload))
	}
	return targets
}

func statusConfig(cfg config.Config, window int) status.Config {
	sc := status.Config{
		PollMs:           cfg.Sensor.Poll.Milliseconds(),
		WindowSize:       window,
		ThresholdPercent: cfg.Filter.ThresholdPercent,
		TripDelayMs:      cfg.Settings().TripDelay.Milliseconds(),
		ClearTimeoutMs:   cfg.Settings().ClearTimeout.Milliseconds(),
		NotifyTimeoutMs:  cfg.Notify.Timeout.Milliseconds(),
		HeartbeatMs:      cfg.Heartbeat.Milliseconds(),
		HTTPAddr:         cfg.HTTP.Addr,
	}
	if cfg.MQTT.Enabled {
		sc.Broker = cfg.MQTT.Broker
	}
	for _, t := range targetsFromConfig(cfg.Notify) {
		sc.Targets = append(sc.Targets, t.Name())
	}
	return sc
}

// timeoutSetter is satisfied by notify.HTTPTransport.
type timeoutSetter interface {
	SetTimeout(time.Duration)
}

// reconfigure pushes a reloaded config into the running components. It runs
// on the control loop via Monitor's OnReload.
func reconfigure(c config.Config, window int, transport timeoutSetter, dispatcher *notify.Dispatcher, mon *monitor.Monitor, tracker *status.Tracker) {
	transport.SetTimeout(c.Notify.Timeout)
	dispatcher.Configure(c.Notify.Timeout, targetsFromConfig(c.Notify))
	mon.SetHookTimeout(c.Notify.Timeout)
	tracker.SetConfig(statusConfig(c, window))
}
