package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Import configuration
	Import ImportConfig `mapstructure:"import"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// DatabaseConfig holds graph store configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // badger, neo4j
	URI      string `mapstructure:"uri"`    // bolt URI for neo4j, directory for badger
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// ImportConfig holds source table paths and asset directories for the
// ingestion pipeline.
type ImportConfig struct {
	MoviesCSV    string `mapstructure:"movies_csv"`
	ActorsCSV    string `mapstructure:"actors_csv"`
	DirectorsCSV string `mapstructure:"directors_csv"`

	ActorPhotoDir    string `mapstructure:"actor_photo_dir"`
	DirectorPhotoDir string `mapstructure:"director_photo_dir"`
	CoverDir         string `mapstructure:"cover_dir"`
	CoverSuffix      string `mapstructure:"cover_suffix"`

	BatchSize int `mapstructure:"batch_size"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking around the
// graph store
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8800)
	viper.SetDefault("server.mode", "debug")

	// Database defaults: the embedded badger store needs no external
	// service
	viper.SetDefault("database.driver", "badger")
	viper.SetDefault("database.uri", "./cinegraph_db")
	viper.SetDefault("database.username", "")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.database", "")

	// Import defaults match the source data layout
	viper.SetDefault("import.movies_csv", "./data/movies.csv")
	viper.SetDefault("import.actors_csv", "./data/actors.csv")
	viper.SetDefault("import.directors_csv", "./data/directors.csv")
	viper.SetDefault("import.actor_photo_dir", "/data/actor_photos")
	viper.SetDefault("import.director_photo_dir", "/data/director_photos")
	viper.SetDefault("import.cover_dir", "/data/movie_covers")
	viper.SetDefault("import.batch_size", 500)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.cinegraph/telemetry", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Database.Driver = "neo4j"
		config.Database.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Database.Username = user
	}
	if password := os.Getenv("NEO4J_PASSWORD"); password != "" {
		config.Database.Password = password
	}
	if port := os.Getenv("PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			config.Server.Port = p
		}
	}
}
