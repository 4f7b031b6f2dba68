package influxdb_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/genvis/genvis-core/internal/infrastructure/config"
	"github.com/genvis/genvis-core/internal/infrastructure/influxdb"
)

// testConfig returns a configuration for the local dev InfluxDB.
// These values match docker-compose.yml.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "genvis-dev-token",
		Org:           "genvis",
		Bucket:        "metrics",
		BatchSize:     100,
		FlushInterval: 1, // 1 second for faster test feedback
	}
}

// connectTestClient connects to the local dev InfluxDB, skipping the
// test when no instance is running.
func connectTestClient(t *testing.T) *influxdb.Client {
	t.Helper()

	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}
	t.Cleanup(func() { client.Close() })

	return client
}

// captureErrors wires an error callback and returns a getter for the
// last asynchronous write error.
func captureErrors(client *influxdb.Client) func() error {
	var mu sync.Mutex
	var writeErr error
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})
	return func() error {
		mu.Lock()
		defer mu.Unlock()
		return writeErr
	}
}

// expectNoWriteError flushes pending points and fails the test if the
// async error callback fired.
func expectNoWriteError(t *testing.T, client *influxdb.Client, lastErr func() error) {
	t.Helper()

	client.Flush()
	time.Sleep(100 * time.Millisecond) // allow the error callback to run
	if err := lastErr(); err != nil {
		t.Errorf("write error = %v", err)
	}
}

func TestConnect(t *testing.T) {
	client := connectTestClient(t)

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999" // nothing listens here

	if _, err := influxdb.Connect(cfg); err == nil {
		t.Fatal("Connect() should return error for unreachable URL")
	}
}

func TestConnect_DefaultBatchSettings(t *testing.T) {
	connectTestClient(t) // probe availability first

	cfg := testConfig()
	cfg.BatchSize = 0
	cfg.FlushInterval = 0

	client, err := influxdb.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false with default batch settings")
	}
}

func TestHealthCheck(t *testing.T) {
	client := connectTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestHealthCheck_Cancelled(t *testing.T) {
	client := connectTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() should return error for cancelled context")
	}
}

func TestWriteSample(t *testing.T) {
	client := connectTestClient(t)
	lastErr := captureErrors(client)

	client.WriteSample("ExposureTime", 1500, time.Now())

	expectNoWriteError(t, client, lastErr)
}

func TestWriteCameraHealth(t *testing.T) {
	client := connectTestClient(t)
	lastErr := captureErrors(client)

	client.WriteCameraHealth("cam-test-001", true, 3*time.Millisecond)
	client.WriteCameraHealth("cam-test-001", false, 0)

	expectNoWriteError(t, client, lastErr)
}

func TestWritePoint(t *testing.T) {
	client := connectTestClient(t)
	lastErr := captureErrors(client)

	client.WritePoint(
		"custom_measurement",
		map[string]string{"source": "test"},
		map[string]interface{}{"value": 99.9, "count": 5},
	)

	expectNoWriteError(t, client, lastErr)
}

func TestWritePointWithTime(t *testing.T) {
	client := connectTestClient(t)
	lastErr := captureErrors(client)

	client.WritePointWithTime(
		"custom_measurement",
		map[string]string{"source": "test-with-time"},
		map[string]interface{}{"value": 88.8},
		time.Now().Add(-1*time.Hour),
	)

	expectNoWriteError(t, client, lastErr)
}

func TestClose(t *testing.T) {
	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}

	client.WriteSample("close-test", 1.0, time.Now())

	// Close flushes pending points and disconnects.
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}
