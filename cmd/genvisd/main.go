// GenVis Core - Camera Parameter Engine
//
// This is the main entry point for the GenVis daemon. It loads a
// GenICam XML description, builds the feature node graph and exposes
// the resulting feature registry over HTTP, WebSocket and MQTT, with
// SQLite-backed value history and optional InfluxDB sample export.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/genvis/genvis-core/migrations"

	"github.com/genvis/genvis-core/internal/api"
	"github.com/genvis/genvis-core/internal/camera"
	"github.com/genvis/genvis-core/internal/feature"
	"github.com/genvis/genvis-core/internal/genapi"
	"github.com/genvis/genvis-core/internal/genapi/builder"
	"github.com/genvis/genvis-core/internal/infrastructure/config"
	"github.com/genvis/genvis-core/internal/infrastructure/database"
	"github.com/genvis/genvis-core/internal/infrastructure/influxdb"
	"github.com/genvis/genvis-core/internal/infrastructure/logging"
	"github.com/genvis/genvis-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// historyPruneInterval is how often expired history rows are deleted.
const historyPruneInterval = time.Hour

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting GenVis Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Create the device transport
	device, err := buildDevice(cfg, log)
	if err != nil {
		return fmt.Errorf("creating device: %w", err)
	}

	// Build the node graph from the GenICam description
	descFile, err := os.Open(cfg.Camera.DescriptionFile)
	if err != nil {
		return fmt.Errorf("opening camera description: %w", err)
	}
	nodes, values, err := builder.BuildXML(descFile)
	if closeErr := descFile.Close(); closeErr != nil {
		log.Warn("error closing camera description", "error", closeErr)
	}
	if err != nil {
		return fmt.Errorf("building node graph: %w", err)
	}
	log.Info("camera description loaded",
		"path", cfg.Camera.DescriptionFile,
		"nodes", nodes.Len(),
	)

	// Select the cache store. Disabling the cache sends every register
	// read to the device, which is useful when debugging descriptions.
	var cache genapi.CacheStore = genapi.CacheSink{}
	if cfg.Cache.Enabled {
		cache = genapi.NewDefaultCacheStore(nodes)
	} else {
		log.Info("register value cache disabled")
	}

	// Create the feature registry
	registry := feature.New(device, nodes, genapi.NewValueCtxt(values, cache))
	registry.SetLogger(log.Component("registry"))

	history := feature.NewSQLiteHistoryRepository(db.DB)
	registry.SetHistory(history)
	log.Info("feature registry initialised")

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	var featureNotifier *mqtt.FeatureNotifier
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		// Publish feature updates to genvis/camera/<id>/feature/<name>
		featureNotifier = mqtt.NewFeatureNotifier(mqttClient, log.Component("mqtt"))
		featureNotifier.Start(ctx)
		defer featureNotifier.Stop()

		// Accept feature sets and executes over MQTT
		bridge := mqtt.NewCommandBridge(mqttClient, registry, log.Component("mqtt"))
		if subErr := bridge.Subscribe(); subErr != nil {
			return fmt.Errorf("subscribing command bridge: %w", subErr)
		}
		log.Info("MQTT command bridge subscribed")
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Create the API server. The hub is fetched before Start so it can
	// join the notifier fan-out alongside the MQTT publisher.
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Registry: registry,
		MQTT:     mqttClient,
		DB:       db,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	notifiers := feature.MultiNotifier{apiServer.Hub()}
	if featureNotifier != nil {
		notifiers = append(notifiers, featureNotifier)
	}
	registry.SetNotifier(notifiers)

	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"tls", cfg.API.TLS.Enabled,
	)

	// Start the device health monitor. Without MQTT it still tracks
	// liveness locally for the metrics endpoint.
	var healthPublisher camera.HealthPublisher
	if mqttClient != nil {
		healthPublisher = mqttClient
	}
	healthMonitor := camera.NewHealthMonitor(camera.HealthMonitorConfig{
		Device:       device,
		ProbeAddress: cfg.Camera.Emulator.TimestampAddress,
		CameraID:     cfg.Camera.ID,
		Version:      version,
		Publisher:    healthPublisher,
	})
	healthMonitor.Start(ctx)
	defer func() {
		log.Info("stopping health monitor")
		healthMonitor.Stop()
	}()

	// Start the feature poller (optional)
	if cfg.Polling.Enabled {
		var writer feature.SampleWriter
		if influxClient != nil {
			writer = influxClient
		}
		poller := feature.NewPoller(feature.PollerConfig{
			Registry: registry,
			Writer:   writer,
			Logger:   log.Component("poller"),
		})
		poller.Start(ctx)
		defer func() {
			log.Info("stopping feature poller")
			poller.Stop()
		}()
		log.Info("feature poller started", "targets", len(poller.Targets()))

		if cfg.Polling.HistoryRetention > 0 {
			go pruneHistoryLoop(ctx, history, cfg.Polling.HistoryRetention, log)
		}
	} else {
		log.Info("feature poller disabled")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// poller, health monitor, API server, InfluxDB, MQTT, database.

	log.Info("GenVis Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GENVIS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GENVIS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildDevice creates the configured camera transport. Only the
// emulator is compiled into this build; u3v and gige are reserved
// transport names for hardware-backed builds.
func buildDevice(cfg *config.Config, log *logging.Logger) (camera.Device, error) {
	switch cfg.Camera.Transport {
	case "", "emulator":
	case "u3v", "gige":
		return nil, fmt.Errorf("transport %q: %w", cfg.Camera.Transport, camera.ErrNotImplemented)
	default:
		return nil, fmt.Errorf("unsupported transport %q", cfg.Camera.Transport)
	}

	emuCfg := cfg.Camera.Emulator
	ranges := make([]camera.Range, 0, len(emuCfg.Ranges))
	for _, r := range emuCfg.Ranges {
		access, err := parseAccess(r.Access)
		if err != nil {
			return nil, fmt.Errorf("range at 0x%X: %w", r.Base, err)
		}
		ranges = append(ranges, camera.Range{
			Base:   r.Base,
			Length: r.Length,
			Access: access,
		})
	}

	emu := camera.NewEmulator(camera.EmulatorConfig{
		Size:             emuCfg.Size,
		Ranges:           ranges,
		LatchAddress:     emuCfg.LatchAddress,
		TimestampAddress: emuCfg.TimestampAddress,
		LatchLength:      emuCfg.LatchLength,
	})

	// Seed initial register values
	for _, s := range emuCfg.Seed {
		if err := emu.Poke(s.Address, s.Bytes); err != nil {
			return nil, fmt.Errorf("seeding 0x%X: %w", s.Address, err)
		}
	}

	log.Info("emulated device created",
		"size", emuCfg.Size,
		"ranges", len(ranges),
		"seeds", len(emuCfg.Seed),
	)
	return emu, nil
}

// parseAccess maps a config access string to an emulator access mode.
func parseAccess(s string) (camera.Access, error) {
	switch s {
	case "", "RW":
		return camera.AccessRW, nil
	case "RO":
		return camera.AccessRO, nil
	case "WO":
		return camera.AccessWO, nil
	default:
		return 0, fmt.Errorf("unknown access mode %q", s)
	}
}

// pruneHistoryLoop periodically deletes history rows older than the
// configured retention.
func pruneHistoryLoop(ctx context.Context, history feature.HistoryRepository, retention time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(historyPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := history.Prune(ctx, retention)
			if err != nil {
				log.Error("pruning feature history", "error", err)
				continue
			}
			if removed > 0 {
				log.Debug("pruned feature history", "rows", removed)
			}
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT (if enabled)
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
