package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"kudos/database"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken      string `env:"DISCORD_TOKEN"`
	GuildID           string `env:"GUILD_ID"`            // Guild the slash commands are registered in
	AnnounceChannelID string `env:"ANNOUNCE_CHANNEL_ID"` // Channel where committed transfers are posted

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// Ledger configuration
	StartingBalance int64   `env:"STARTING_BALANCE" envDefault:"100"` // Used when no season is active
	AdminDiscordIDs []int64 `env:"ADMIN_DISCORD_IDS" envSeparator:","`
	AutoApprove     bool    `env:"AUTO_APPROVE" envDefault:"true"`

	// Session configuration. A zero TTL keeps abandoned sessions open indefinitely.
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"0s"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	ImproveReasons       bool          `env:"IMPROVE_REASONS" envDefault:"true"`

	// Listing configuration
	ScoreboardSize  int `env:"SCOREBOARD_SIZE" envDefault:"10"`
	HistoryPageSize int `env:"HISTORY_PAGE_SIZE" envDefault:"10"`

	// NATS configuration, empty disables event forwarding
	NATSServers       string `env:"NATS_SERVERS"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"kudos.events"`

	// OpenTelemetry configuration
	OTelEnabled        bool          `env:"OTEL_ENABLED" envDefault:"false"`
	OTelExporterType   string        `env:"OTEL_EXPORTER_TYPE" envDefault:"console"` // "console", "otlp" or "none"
	OTelEndpoint       string        `env:"OTEL_ENDPOINT" envDefault:"localhost:4317"`
	OTelServiceName    string        `env:"OTEL_SERVICE_NAME" envDefault:"kudos"`
	OTelExportInterval time.Duration `env:"OTEL_EXPORT_INTERVAL" envDefault:"30s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "text" or "json"

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
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

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsAdmin reports whether the Discord user may run season and question administration
func (c *Config) IsAdmin(discordID int64) bool {
	return slices.Contains(c.AdminDiscordIDs, discordID)
}

// load reads an optional .env file and then the process environment
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// AdminConfig is the subset of settings the admin CLI needs. It does not
// require a Discord token.
type AdminConfig struct {
	DatabaseURL     string `env:"DATABASE_URL,required,notEmpty"`
	DatabaseName    string `env:"DATABASE_NAME"`
	StartingBalance int64  `env:"STARTING_BALANCE" envDefault:"100"`
	AutoApprove     bool   `env:"AUTO_APPROVE" envDefault:"true"`
}

// LoadAdmin reads an optional .env file and the admin settings
func LoadAdmin() (*AdminConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &AdminConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// GetDatabaseURL constructs the full database URL
func (c *AdminConfig) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

func (c *Config) validate() error {
	if c.ScoreboardSize < 1 {
		return fmt.Errorf("SCOREBOARD_SIZE must be positive, got %d", c.ScoreboardSize)
	}
	if c.HistoryPageSize < 1 {
		return fmt.Errorf("HISTORY_PAGE_SIZE must be positive, got %d", c.HistoryPageSize)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL cannot be negative")
	}
	if c.SessionTTL > 0 && c.SessionSweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive when SESSION_TTL is set")
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE cannot be negative")
	}

	if c.Environment != "test" {
		if c.DiscordToken == "" {
			return fmt.Errorf("DISCORD_TOKEN is required")
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:          "test",
		StartingBalance:      100,
		AdminDiscordIDs:      []int64{999999},
		AutoApprove:          true,
		SessionSweepInterval: time.Minute,
		ImproveReasons:       true,
		ScoreboardSize:       10,
		HistoryPageSize:      10,
		OTelExporterType:     "console",
		OTelServiceName:      "kudos-test",
		OTelExportInterval:   30 * time.Second,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}
