package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/genvis/genvis-core/internal/camera"
)

// testDescription is a small but complete camera description for
// startup tests.
const testDescription = `
<RegisterDescription>
  <Port Name="Device"/>
  <Integer Name="Width">
    <pValue>WidthReg</pValue>
  </Integer>
  <IntReg Name="WidthReg">
    <Address>0x100</Address>
    <Length>4</Length>
    <AccessMode>RW</AccessMode>
    <pPort>Device</pPort>
    <Sign>Unsigned</Sign>
    <Endianess>BigEndian</Endianess>
  </IntReg>
</RegisterDescription>`

// writeTestConfig writes a config that runs fully self-contained:
// emulated device, MQTT and InfluxDB disabled, temp database.
func writeTestConfig(t *testing.T, apiPort int) string {
	t.Helper()

	tmpDir := t.TempDir()
	descPath := filepath.Join(tmpDir, "camera.xml")
	if err := os.WriteFile(descPath, []byte(testDescription), 0600); err != nil {
		t.Fatalf("writing description: %v", err)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := fmt.Sprintf(`
camera:
  id: test-cam
  transport: emulator
  description_file: %q
  emulator:
    size: 4096

cache:
  enabled: true

polling:
  enabled: false

database:
  path: %q
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: %d
  timeouts:
    read: 30
    write: 60
    idle: 120

security:
  jwt:
    secret: "test-secret-0123456789abcdef-0123456789abcdef"
`, descPath, filepath.Join(tmpDir, "test.db"), apiPort)
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return configPath
}

// setConfigEnv points GENVIS_CONFIG at path for the test's duration.
func setConfigEnv(t *testing.T, path string) {
	t.Helper()
	original := os.Getenv("GENVIS_CONFIG")
	t.Cleanup(func() { os.Setenv("GENVIS_CONFIG", original) })
	os.Setenv("GENVIS_CONFIG", path)
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	setConfigEnv(t, "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDescriptionFile verifies run fails when the camera
// description does not exist.
func TestRun_MissingDescriptionFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := fmt.Sprintf(`
camera:
  id: test-cam
  transport: emulator
  description_file: %q
  emulator:
    size: 4096

database:
  path: %q

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error

security:
  jwt:
    secret: "test-secret-0123456789abcdef-0123456789abcdef"
`, filepath.Join(tmpDir, "missing.xml"), filepath.Join(tmpDir, "test.db"))
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	setConfigEnv(t, configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when the description file is missing")
	}
}

// TestRun_StartupAndShutdown starts the full daemon against the
// emulated device and shuts it down via context cancellation.
func TestRun_StartupAndShutdown(t *testing.T) {
	setConfigEnv(t, writeTestConfig(t, 19180))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() = %v, want clean shutdown", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	original := os.Getenv("GENVIS_CONFIG")
	defer os.Setenv("GENVIS_CONFIG", original)

	os.Unsetenv("GENVIS_CONFIG")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	setConfigEnv(t, expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestParseAccess covers the access mode mapping, including the empty
// default.
func TestParseAccess(t *testing.T) {
	tests := []struct {
		in      string
		want    camera.Access
		wantErr bool
	}{
		{"", camera.AccessRW, false},
		{"RW", camera.AccessRW, false},
		{"RO", camera.AccessRO, false},
		{"WO", camera.AccessWO, false},
		{"rw", 0, true},
		{"READ", 0, true},
	}

	for _, tt := range tests {
		got, err := parseAccess(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAccess(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAccess(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAccess(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
