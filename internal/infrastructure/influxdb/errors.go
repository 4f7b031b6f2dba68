package influxdb

import "errors"

// Sentinel errors returned by Connect and HealthCheck; match with
// errors.Is. Batched write errors do not surface here — they arrive
// asynchronously through the SetOnError callback.
var (
	// ErrNotConnected indicates the client has been closed or never connected.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates InfluxDB integration is disabled in config.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
