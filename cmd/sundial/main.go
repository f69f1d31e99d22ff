// Sundial Core - Solar Event Scheduling Service
//
// This is the main entry point for the Sundial Core application.
// Sundial maintains virtual twilight sensors: binary states that follow
// the sunrise and sunset periods at tracked geographic positions, with
// retained MQTT state topics, a REST/WebSocket API, and optional
// InfluxDB history.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/sundial-core/migrations"

	"github.com/nerrad567/sundial-core/internal/api"
	"github.com/nerrad567/sundial-core/internal/infrastructure/config"
	"github.com/nerrad567/sundial-core/internal/infrastructure/database"
	"github.com/nerrad567/sundial-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/sundial-core/internal/infrastructure/logging"
	"github.com/nerrad567/sundial-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sundial-core/internal/position"
	"github.com/nerrad567/sundial-core/internal/sensor"
	"github.com/nerrad567/sundial-core/internal/solar"
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
	log.Info("starting Sundial Core",
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
	db, err := database.Open(ctx, database.Config{
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

	// Seed the site position source on first start, then load trackers
	posRepo := position.NewSQLiteRepository(db.DB)
	if seedErr := seedSiteSource(ctx, posRepo, cfg); seedErr != nil {
		return fmt.Errorf("seeding site position source: %w", seedErr)
	}

	posHub := position.NewHub(posRepo, log)
	if loadErr := posHub.Load(ctx); loadErr != nil {
		return fmt.Errorf("loading position trackers: %w", loadErr)
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
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

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Route position updates from the broker to the trackers
	positionTopic := mqtt.Topics{}.AllPositionUpdates()
	if subErr := mqttClient.Subscribe(positionTopic, byte(cfg.MQTT.QoS), posHub.HandleUpdate); subErr != nil {
		return fmt.Errorf("subscribing to position updates: %w", subErr)
	}
	log.Info("subscribed to position updates", "topic", positionTopic)

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

	// WebSocket hub is created before the sensor service so state
	// transitions can broadcast to connected clients
	wsHub := api.NewHub(cfg.WebSocket, log)
	go wsHub.Run(ctx)

	// State transition fan-out: retained MQTT topics, WebSocket, history
	sinks := []sensor.StateSink{
		sensor.NewMQTTSink(mqttClient, log),
		wsHub,
	}
	if influxClient != nil {
		sinks = append(sinks, sensor.NewHistorySink(influxClient))
	}

	// Sensor service: one schedule per enabled sensor
	sensorSvc := sensor.NewService(
		sensor.NewSQLiteRepository(db.DB),
		posHub,
		solar.NewCalculator(),
		nil, // system clock
		log,
		sinks...,
	)
	if startErr := sensorSvc.Start(ctx); startErr != nil {
		return fmt.Errorf("starting sensor service: %w", startErr)
	}
	defer func() {
		log.Info("releasing sensor schedules")
		sensorSvc.Stop()
	}()

	// Start the API server
	apiServer, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log,
		Sensors:     sensorSvc,
		Positions:   posRepo,
		PositionHub: posHub,
		DB:          db,
		MQTT:        mqttClient,
		Influx:      influxClient,
		ExternalHub: wsHub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Sensor schedules
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("Sundial Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SUNDIAL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SUNDIAL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// seedSiteSource creates the site position source from configuration on
// first start. An existing source is left untouched so positions updated
// at runtime survive restarts.
func seedSiteSource(ctx context.Context, repo position.Repository, cfg *config.Config) error {
	_, err := repo.Get(ctx, cfg.Site.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, position.ErrSourceNotFound) {
		return err
	}

	return repo.Create(ctx, &position.PositionSource{
		ID:        cfg.Site.ID,
		Name:      cfg.Site.Name,
		Latitude:  cfg.Site.Location.Latitude,
		Longitude: cfg.Site.Location.Longitude,
	})
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
