package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sweeney/presence-sensor/internal/config"
	"github.com/sweeney/presence-sensor/internal/eventlog"
	"github.com/sweeney/presence-sensor/internal/gpio"
	"github.com/sweeney/presence-sensor/internal/monitor"
	"github.com/sweeney/presence-sensor/internal/mqtt"
	"github.com/sweeney/presence-sensor/internal/network"
	"github.com/sweeney/presence-sensor/internal/notify"
	"github.com/sweeney/presence-sensor/internal/status"
	"github.com/sweeney/presence-sensor/internal/version"
	"github.com/sweeney/presence-sensor/internal/web"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the motion monitor daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(getProvider(), logger)
	},
}

func run(provider *config.Provider, logger zerolog.Logger) error {
	cfg := provider.Current()

	// Initialize GPIO
	reader, err := gpio.NewRealReader(sensorLine(cfg))
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	// Initialize MQTT. A broker that is down at startup is not fatal; paho
	// keeps retrying in the background.
	var publisher mqtt.Publisher = mqtt.NopPublisher{}
	var mqttStatus mqtt.ConnectionStatus = mqtt.NopPublisher{}
	if cfg.MQTT.Enabled {
		p, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			Timeout:     cfg.MQTT.Timeout,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("mqtt not connected at startup")
		}
		publisher, mqttStatus = p, p
	}
	defer publisher.Close()

	start := time.Now()
	window := cfg.Filter.Window
	events := eventlog.New(cfg.EventLog.Capacity)
	netReader := network.NewReader(cfg.Network.EnvFile)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(start, statusConfig(cfg, window))
	tracker.SetNetwork(netReader.Read())

	userAgent := cfg.Notify.UserAgent
	if userAgent == "" {
		userAgent = version.UserAgent()
	}
	transport := notify.NewHTTPTransport(cfg.Notify.Timeout, netReader.Available, userAgent)
	dispatcher := notify.New(transport, events, notify.Options{
		Timeout: cfg.Notify.Timeout,
		Targets: targetsFromConfig(cfg.Notify),
	}, logger)

	var hooks []monitor.Hook
	if cfg.MQTT.Enabled {
		hooks = append(hooks, monitor.NewPublisherHook(publisher))
	}

	var mon *monitor.Monitor
	mon = monitor.New(events, dispatcher, monitor.Options{
		Window:      window,
		Device:      cfg.Notify.Device,
		HookTimeout: cfg.Notify.Timeout,
		Settings:    provider,
		Tracker:     tracker,
		Hooks:       hooks,
		OnReload: func() {
			reconfigure(provider.Current(), window, transport, dispatcher, mon, tracker)
		},
	}, start, logger)

	provider.Watch()

	// Publish startup event with full status snapshot
	events.Append(start, eventlog.TypeStartup, int32(window))
	tracker.SetMQTTConnected(mqttStatus.IsConnected())
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		logger.Warn().Err(err).Msg("failed to publish startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, events, logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("http server error")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	logger.Info().
		Str("version", version.Version).
		Int("pin", cfg.Sensor.Pin).
		Dur("poll", cfg.Sensor.Poll).
		Int("window", window).
		Int("threshold_percent", cfg.Filter.ThresholdPercent).
		Int("targets", len(targetsFromConfig(cfg.Notify))).
		Bool("mqtt", cfg.MQTT.Enabled).
		Msg("started")

	ticker := time.NewTicker(cfg.Sensor.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loop{
		reader:     reader,
		monitor:    mon,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		events:     events,
		network:    netReader,
		heartbeat:  func() time.Duration { return provider.Current().Heartbeat },
		logger:     logger,
	}, time.Now, ticker.C, sigCh)
}

// loop holds the collaborators driven by runLoop.
type loop struct {
	reader     gpio.Reader
	monitor    *monitor.Monitor
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	events     eventlog.Recorder
	network    *network.Reader
	heartbeat  func() time.Duration
	logger     zerolog.Logger
}

func runLoop(l loop, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	ctx := context.Background()

	for {
		select {
		case s := <-sig:
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			l.logger.Info().Str("signal", signalName).Msg("shutting down")

			t := now()
			l.events.Append(t, eventlog.TypeShutdown, 0)
			event := mqtt.SystemEvent{
				Timestamp: t,
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if l.tracker != nil {
				l.refreshConnectivity(false)
				snap := l.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := l.publisher.PublishSystem(event); err != nil {
				l.logger.Warn().Err(err).Msg("failed to publish shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			motion, err := l.reader.Read()
			if err != nil {
				l.monitor.SensorError(t, err)
				continue
			}

			l.monitor.Tick(ctx, t, motion)

			// Check for heartbeat
			if hb := l.monitor.Detector().CheckHeartbeat(t, l.heartbeat()); hb != nil {
				l.logger.Info().
					Dur("uptime", hb.Uptime).
					Str("state", string(hb.State)).
					Int("motion", hb.Counts.Motion).
					Int("alarms", hb.Counts.Alarms).
					Msg("heartbeat")

				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if l.tracker != nil {
					l.refreshConnectivity(true)
					snap := l.tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := l.publisher.PublishSystem(hbEvent); err != nil {
					l.logger.Warn().Err(err).Msg("heartbeat publish error")
				}
			}

			if l.tracker != nil && l.mqttStatus != nil {
				l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
			}
		}
	}
}

// refreshConnectivity updates MQTT state and, if requested, re-reads the
// network env file.
func (l loop) refreshConnectivity(withNetwork bool) {
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
	if withNetwork && l.network != nil {
		l.tracker.SetNetwork(l.network.Read())
	}
}
