package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/presence-sensor/internal/logic"
	"github.com/sweeney/presence-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"stateClass": func(s logic.AlarmState) string {
		switch s {
		case logic.StateAlarmActive, logic.StateAlarmClearing:
			return "alarm"
		case logic.StateMotionPending:
			return "on"
		case logic.StateIdle:
			return "off"
		}
		return "unknown"
	},
	"join": func(s []string) string {
		return strings.Join(s, ", ")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Presence Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.alarm { color: red; font-weight: bold; }
</style>
</head>
<body>
<h1>Presence Sensor</h1>

<h2>State</h2>
<table>
<tr><th>Alarm</th><td id="alarm-state" class="{{stateClass .State}}">{{stateOrUnknown (printf "%s" .State)}}</td></tr>
<tr><th>Motion</th><td class="{{if .Filter.Filtered}}on{{else}}off{{end}}">{{if .Filter.Filtered}}yes{{else}}no{{end}} ({{.Filter.Percent}}%)</td></tr>
{{if not .AlarmSince.IsZero}}<tr><th>Alarm since</th><td>{{.AlarmSince.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Notifications</h2>
<table>
<tr><th>Targets</th><td>{{if .Config.Targets}}{{join .Config.Targets}}{{else}}none{{end}}</td></tr>
{{with .LastNotification}}<tr><th>Last</th><td class="{{if eq (printf "%s" .Outcome) "sent"}}connected{{else}}disconnected{{end}}">{{.Event}} {{.Outcome}}{{if .Target}} via {{.Target}}{{end}} ({{.Code}})</td></tr>
<tr><th>At</th><td>{{.Time.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Motion</th><td>{{.Counts.Motion}}</td></tr>
<tr><th>Alarms</th><td>{{.Counts.Alarms}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Filter</th><td>{{.Config.WindowSize}} samples, {{.Config.ThresholdPercent}}%</td></tr>
<tr><th>Trip delay</th><td>{{.Config.TripDelayMs}}ms</td></tr>
<tr><th>Clear timeout</th><td>{{.Config.ClearTimeoutMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/events.json">Events</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
