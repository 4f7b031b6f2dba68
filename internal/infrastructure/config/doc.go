// Package config loads and validates the GenVis Core configuration.
//
// Configuration is layered: hardcoded defaults, then the YAML file,
// then GENVIS_* environment variables. Load applies all three and
// validates the result, so a *Config handed to the rest of the daemon
// is always complete and internally consistent.
//
// Secrets (the JWT secret, MQTT credentials, the InfluxDB token) are
// expected through environment variables rather than the YAML file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Camera.ID)
package config
