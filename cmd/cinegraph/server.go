package cinegraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinegraph/cinegraph"
	"github.com/cinegraph/cinegraph/pkg/config"
	"github.com/cinegraph/cinegraph/pkg/driver"
	"github.com/cinegraph/cinegraph/pkg/ingest"
	"github.com/cinegraph/cinegraph/pkg/server"
	"github.com/cinegraph/cinegraph/pkg/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Cinegraph HTTP server",
	Long: `Start the Cinegraph HTTP server to provide REST API access to the movie graph.

The server provides endpoints for:
- Creating and deleting movies, actors and directors
- Linking people to movies
- Filmography, cast and collaboration queries
- Ranked search and autocomplete
- Dataset import and health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8800, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Database flags
	serverCmd.Flags().String("db-driver", "badger", "Database driver (badger, neo4j)")
	serverCmd.Flags().String("db-uri", "./cinegraph_db", "Database URI/path")
	serverCmd.Flags().String("db-username", "", "Database username (not used for badger)")
	serverCmd.Flags().String("db-password", "", "Database password (not used for badger)")
	serverCmd.Flags().String("db-database", "", "Database name (not used for badger)")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	overrideConfigWithFlags(cmd, cfg)

	// Validate configuration
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, flush, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer flush()
	slog.SetDefault(logger)

	graphDriver, err := buildDriver(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize graph store: %w", err)
	}
	defer graphDriver.Close(context.Background())

	graph := cinegraph.New(graphDriver, cinegraph.WithLogger(logger))
	importer := ingest.New(graphDriver, logger, importOptions(cfg))

	// Create and setup server
	srv := server.New(cfg, graph, importer, logger)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.Info("received signal", "signal", sig.String())

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		logger.Info("server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Database flags
	if cmd.Flags().Changed("db-driver") {
		cfg.Database.Driver, _ = cmd.Flags().GetString("db-driver")
	}
	if cmd.Flags().Changed("db-uri") {
		cfg.Database.URI, _ = cmd.Flags().GetString("db-uri")
	}
	if cmd.Flags().Changed("db-username") {
		cfg.Database.Username, _ = cmd.Flags().GetString("db-username")
	}
	if cmd.Flags().Changed("db-password") {
		cfg.Database.Password, _ = cmd.Flags().GetString("db-password")
	}
	if cmd.Flags().Changed("db-database") {
		cfg.Database.Database, _ = cmd.Flags().GetString("db-database")
	}

	// Telemetry flags
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	if cfg.Database.URI == "" {
		return fmt.Errorf("database URI is required")
	}
	return nil
}

// buildLogger builds the slog logger from the log and telemetry config. The
// returned flush func writes any buffered telemetry records.
func buildLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	flush := func() {}
	if cfg.Telemetry.ParquetPath != "" {
		ph, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			return nil, nil, err
		}
		handler = ph
		flush = func() { ph.Flush() }
	}

	return slog.New(handler), flush, nil
}

// buildDriver builds the configured graph driver, wrapped in a circuit
// breaker when one is enabled.
func buildDriver(cfg *config.Config, logger *slog.Logger) (driver.GraphDriver, error) {
	var graphDriver driver.GraphDriver
	var err error

	switch cfg.Database.Driver {
	case "badger":
		graphDriver, err = driver.NewBadgerDriver(cfg.Database.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to create badger driver: %w", err)
		}
	case "neo4j":
		graphDriver, err = driver.NewNeo4jDriver(cfg.Database.URI, cfg.Database.Username, cfg.Database.Password, cfg.Database.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	if cfg.CircuitBreaker.Enabled {
		graphDriver = driver.NewBreakerDriver(graphDriver, driver.BreakerSettings{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, logger)
	}

	return graphDriver, nil
}

func importOptions(cfg *config.Config) ingest.Options {
	return ingest.Options{
		BatchSize:        cfg.Import.BatchSize,
		ActorPhotoDir:    cfg.Import.ActorPhotoDir,
		DirectorPhotoDir: cfg.Import.DirectorPhotoDir,
		CoverDir:         cfg.Import.CoverDir,
		CoverSuffix:      cfg.Import.CoverSuffix,
	}
}
