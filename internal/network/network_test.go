package network

import (
	"os"
	"path/filepath"
	"testing"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env. If pi-helper changes its var names, this test fails
// and we update the constants, not the other way around.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        EnvType,
		"NETWORK_IP":          EnvIP,
		"NETWORK_STATUS":      EnvStatus,
		"NETWORK_GATEWAY":     EnvGateway,
		"NETWORK_WIFI_STATUS": EnvWifiStatus,
		"NETWORK_WIFI_SSID":   EnvWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadFromEnvFile(t *testing.T) {
	path := writeEnvFile(t, `NETWORK_TYPE=wifi
NETWORK_IP=192.168.1.100
NETWORK_STATUS=connected
NETWORK_GATEWAY=192.168.1.1
NETWORK_WIFI_STATUS=connected
NETWORK_WIFI_SSID="My Network"
`)

	info := NewReader(path).Read()
	if info == nil {
		t.Fatal("expected non-nil Info")
	}

	want := Info{
		Type:       "wifi",
		IP:         "192.168.1.100",
		Status:     "connected",
		Gateway:    "192.168.1.1",
		WifiStatus: "connected",
		SSID:       "My Network",
	}
	if *info != want {
		t.Errorf("got %+v, want %+v", *info, want)
	}
}

func TestReadFallsBackToProcessEnv(t *testing.T) {
	t.Setenv(EnvStatus, "connected")
	t.Setenv(EnvIP, "10.0.0.5")

	info := NewReader(filepath.Join(t.TempDir(), "missing.env")).Read()
	if info == nil {
		t.Fatal("expected non-nil Info from process env")
	}
	if info.IP != "10.0.0.5" {
		t.Errorf("IP: got %q, want 10.0.0.5", info.IP)
	}
	if info.Type != "" {
		t.Errorf("Type: got %q, want empty", info.Type)
	}
}

func TestReadNoneSet(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "missing.env"))
	r.getenv = func(string) string { return "" }

	if info := r.Read(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"connected", "NETWORK_STATUS=connected\n", true},
		{"disconnected", "NETWORK_STATUS=disconnected\n", false},
		{"ap fallback", "NETWORK_STATUS=ap\nNETWORK_TYPE=ap\n", false},
		{"no status", "NETWORK_TYPE=wifi\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(writeEnvFile(t, tt.content))
			r.getenv = func(string) string { return "" }
			if got := r.Available(); got != tt.want {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewReaderDefaultPath(t *testing.T) {
	if r := NewReader(""); r.path != DefaultEnvFile {
		t.Errorf("expected default path %q, got %q", DefaultEnvFile, r.path)
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pi-helper.env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}
