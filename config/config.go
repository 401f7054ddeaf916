package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"guildkeeper/database"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageBackendFile     = "file"
	StorageBackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken  string
	CommandPrefix string

	// Storage configuration
	StorageBackend string // "file" or "postgres"
	DataDir        string

	// Database configuration (postgres backend only)
	DatabaseURL  string
	DatabaseName string

	// Logging configuration
	LogLevel        string
	LogDir          string
	LogWebhookURL   string // Discord webhook mirroring log entries, optional
	LogWebhookLevel string

	// Log panel configuration
	WebPort        int // 0 disables the panel
	PanelTailLines int

	// NATS configuration
	NATSServers string // Comma-separated, empty disables event forwarding

	// Reaction roles
	SuppressionWindow time.Duration

	// Welcome notices
	WelcomeCardEnabled bool

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int
	OTelServiceName          string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load reads the configuration without touching the global instance
func Load() (*Config, error) {
	return load()
}

// GetDatabaseURL combines the base database URL with the database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// PanelEnabled reports whether the log panel should be served
func (c *Config) PanelEnabled() bool {
	return c.WebPort > 0
}

// NATSEnabled reports whether domain events are forwarded to NATS
func (c *Config) NATSEnabled() bool {
	return strings.TrimSpace(c.NATSServers) != ""
}

// LoadEnvFile copies .env from the working directory into the process
// environment. Variables that are already set win, and a missing file is not
// an error.
func LoadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// load loads configuration from the .env file and environment variables
func load() (*Config, error) {
	// A malformed .env is reported by main; real environment variables still apply
	_ = LoadEnvFile()

	config := &Config{
		// Discord
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		CommandPrefix: getEnvWithDefault("COMMAND_PREFIX", "!"),

		// Storage
		StorageBackend: strings.ToLower(getEnvWithDefault("STORAGE_BACKEND", StorageBackendFile)),
		DataDir:        getEnvWithDefault("DATA_DIR", "data"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Logging
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		LogDir:          getEnvWithDefault("LOG_DIR", "logs"),
		LogWebhookURL:   os.Getenv("LOG_WEBHOOK_URL"),
		LogWebhookLevel: getEnvWithDefault("LOG_WEBHOOK_LEVEL", "error"),

		// Log panel
		WebPort:        3000,
		PanelTailLines: 200,

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// Reaction roles
		SuppressionWindow: time.Second,

		// Welcome notices
		WelcomeCardEnabled: os.Getenv("WELCOME_CARD_ENABLED") == "true",

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "localhost:4317"),
		OTelExportIntervalMillis: 30000,
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "guildkeeper"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if port := os.Getenv("WEB_PORT"); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid WEB_PORT %q", port)
		}
		config.WebPort = parsed
	}
	if lines := os.Getenv("PANEL_TAIL_LINES"); lines != "" {
		if parsed, err := strconv.Atoi(lines); err == nil && parsed > 0 {
			config.PanelTailLines = parsed
		}
	}
	if window := os.Getenv("SUPPRESSION_WINDOW"); window != "" {
		parsed, err := time.ParseDuration(window)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid SUPPRESSION_WINDOW %q", window)
		}
		config.SuppressionWindow = parsed
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if len([]rune(c.CommandPrefix)) != 1 {
		return fmt.Errorf("COMMAND_PREFIX must be exactly one character, got %q", c.CommandPrefix)
	}

	switch c.StorageBackend {
	case StorageBackendFile, StorageBackendPostgres:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.Environment == "test" {
		return nil
	}

	// Validate required configuration
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.StorageBackend == StorageBackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres storage backend")
	}
	if c.StorageBackend == StorageBackendPostgres && c.DatabaseName == "" {
		return fmt.Errorf("DATABASE_NAME is required for the postgres storage backend")
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:             "test-token",
		CommandPrefix:            "!",
		StorageBackend:           StorageBackendFile,
		DataDir:                  "data",
		LogLevel:                 "debug",
		LogDir:                   "logs",
		LogWebhookLevel:          "error",
		WebPort:                  0,
		PanelTailLines:           200,
		SuppressionWindow:        time.Second,
		OTelExporterType:         "none",
		OTelExportIntervalMillis: 30000,
		OTelServiceName:          "guildkeeper-test",
		Environment:              "test",
	}
}
