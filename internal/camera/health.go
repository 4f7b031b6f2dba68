package camera

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// defaultProbeInterval is used when no interval is configured.
const defaultProbeInterval = 30 * time.Second

// HealthMonitor periodically probes device liveness by reading a
// heartbeat register and publishes the result.
//
// A probe failure does not stop the monitor; the device may recover on
// the next tick. The last observed status is available via Healthy().
type HealthMonitor struct {
	device    Device
	probeAddr uint64
	probeLen  int
	cameraID  string
	version   string
	startTime time.Time
	interval  time.Duration
	publisher HealthPublisher

	healthy   bool
	healthyMu sync.RWMutex

	// Shutdown coordination (stopOnce prevents double-close panics)
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// HealthPublisher is the interface for publishing health messages.
// This is typically implemented by an MQTT client.
type HealthPublisher interface {
	// Publish sends a message to a topic with the specified QoS and retention.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// IsConnected returns true if the publisher is connected.
	IsConnected() bool
}

// HealthMonitorConfig holds configuration for the health monitor.
type HealthMonitorConfig struct {
	// Device is the transport to probe.
	Device Device

	// ProbeAddress is the heartbeat register address to read.
	ProbeAddress uint64

	// ProbeLength is the heartbeat register length in bytes (default 4).
	ProbeLength int

	// CameraID identifies the camera in health messages.
	CameraID string

	// Version is the daemon software version.
	Version string

	// Interval is how often to probe. Default: 30 seconds.
	Interval time.Duration

	// Publisher receives health status messages. Optional; when nil the
	// monitor only tracks status locally.
	Publisher HealthPublisher
}

// NewHealthMonitor creates a health monitor.
// Call Start to begin probing and Stop to shut down.
func NewHealthMonitor(cfg HealthMonitorConfig) *HealthMonitor {
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultProbeInterval
	}
	probeLen := cfg.ProbeLength
	if probeLen == 0 {
		probeLen = 4
	}

	return &HealthMonitor{
		device:    cfg.Device,
		probeAddr: cfg.ProbeAddress,
		probeLen:  probeLen,
		cameraID:  cfg.CameraID,
		version:   cfg.Version,
		startTime: time.Now(),
		interval:  interval,
		publisher: cfg.Publisher,
		done:      make(chan struct{}),
	}
}

// Start begins periodic probing.
func (h *HealthMonitor) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.probeLoop(ctx)
}

// Stop gracefully stops probing. Safe to call multiple times.
func (h *HealthMonitor) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
	h.wg.Wait()
}

// Healthy reports the result of the most recent probe.
func (h *HealthMonitor) Healthy() bool {
	h.healthyMu.RLock()
	defer h.healthyMu.RUnlock()
	return h.healthy
}

// probeLoop runs until Stop is called or the context is cancelled.
func (h *HealthMonitor) probeLoop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	// Probe immediately so status is valid before the first tick.
	h.probe()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			h.probe()
		}
	}
}

// probe reads the heartbeat register and records/publishes the outcome.
func (h *HealthMonitor) probe() {
	buf := make([]byte, h.probeLen)
	err := h.device.ReadMem(h.probeAddr, buf)

	h.healthyMu.Lock()
	h.healthy = err == nil
	h.healthyMu.Unlock()

	if h.publisher == nil || !h.publisher.IsConnected() {
		return
	}

	status := "online"
	if err != nil {
		status = "degraded"
	}
	payload, marshalErr := json.Marshal(map[string]any{
		"camera_id":      h.cameraID,
		"status":         status,
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
	if marshalErr != nil {
		return
	}

	// Retained so late subscribers see the last known status.
	_ = h.publisher.Publish("genvis/camera/"+h.cameraID+"/health", payload, 1, true)
}
