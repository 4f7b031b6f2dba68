package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSample records one polled feature sample.
//
// This is the primary telemetry path: the background poller hands every
// sample here. The write is non-blocking; data is batched and sent
// asynchronously.
//
// Implements the poller's sample writer contract.
//
// Parameters:
//   - feature: Feature name (e.g., "ExposureTime", "DeviceTemperature")
//   - value: The sampled numeric value
//   - ts: When the sample was read from the device
//
// Example:
//
//	client.WriteSample("DeviceTemperature", 41.5, time.Now())
func (c *Client) WriteSample(feature string, value float64, ts time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"feature_samples",
		map[string]string{
			"feature": feature,
		},
		map[string]interface{}{
			"value": value,
		},
		ts,
	)

	c.writeAPI.WritePoint(point)
}

// WriteCameraHealth records a camera health probe result.
//
// Parameters:
//   - cameraID: Camera identifier from configuration
//   - healthy: Whether the last transport probe succeeded
//   - latency: Probe round-trip time
func (c *Client) WriteCameraHealth(cameraID string, healthy bool, latency time.Duration) {
	if !c.IsConnected() {
		return
	}

	status := 0.0
	if healthy {
		status = 1.0
	}

	point := write.NewPoint(
		"camera_health",
		map[string]string{
			"camera_id": cameraID,
		},
		map[string]interface{}{
			"healthy":    status,
			"latency_ms": float64(latency.Milliseconds()),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "genvis-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
