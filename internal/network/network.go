// Package network reports the node's network association as published by
// pi-helper. pi-helper writes NETWORK_* variables to /run/pi-helper.env;
// the file is re-read on every call so association changes are picked up
// without a restart. When the file is absent, the process environment is used.
package network

import (
	"os"

	"github.com/subosito/gotenv"
)

// DefaultEnvFile is where pi-helper writes the network state.
const DefaultEnvFile = "/run/pi-helper.env"

// pi-helper env var names.
const (
	EnvType       = "NETWORK_TYPE"
	EnvIP         = "NETWORK_IP"
	EnvStatus     = "NETWORK_STATUS"
	EnvGateway    = "NETWORK_GATEWAY"
	EnvWifiStatus = "NETWORK_WIFI_STATUS"
	EnvWifiSSID   = "NETWORK_WIFI_SSID"
)

// StatusConnected is the NETWORK_STATUS value for an associated link.
const StatusConnected = "connected"

// Info contains network state.
type Info struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Reader loads network info from a pi-helper env file.
type Reader struct {
	path   string
	getenv func(string) string
}

// NewReader creates a Reader for the given env file. An empty path uses DefaultEnvFile.
func NewReader(path string) *Reader {
	if path == "" {
		path = DefaultEnvFile
	}
	return &Reader{path: path, getenv: os.Getenv}
}

// Read returns the current network info, or nil if pi-helper has not
// reported a status.
func (r *Reader) Read() *Info {
	lookup := r.getenv
	if env, err := gotenv.Read(r.path); err == nil {
		lookup = func(k string) string { return env[k] }
	}

	s := lookup(EnvStatus)
	if s == "" {
		return nil
	}
	return &Info{
		Type:       lookup(EnvType),
		IP:         lookup(EnvIP),
		Status:     s,
		Gateway:    lookup(EnvGateway),
		WifiStatus: lookup(EnvWifiStatus),
		SSID:       lookup(EnvWifiSSID),
	}
}

// Available reports whether outbound calls should be attempted. A node
// without pi-helper is assumed to be associated.
func (r *Reader) Available() bool {
	info := r.Read()
	return info == nil || info.Status == StatusConnected
}
