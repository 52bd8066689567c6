package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"nfl-projections-go/logging"
	"nfl-projections-go/models"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Authentication configuration
	Auth AuthConfig `json:"auth"`

	// Upstream data sources
	Sources SourcesConfig `json:"sources"`

	// Feature pipeline and model settings
	Pipeline PipelineConfig `json:"pipeline"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string `json:"port"`
	Host        string `json:"host"`
	UseTLS      bool   `json:"use_tls"`
	CertFile    string `json:"cert_file"`
	KeyFile     string `json:"key_file"`
	Environment string `json:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool          `json:"enabled"`
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`

	// WatchChanges reloads projections written by other processes. Needs a
	// replica set.
	WatchChanges bool `json:"watch_changes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
	LogDir      string `json:"log_dir"`
	EnableFile  bool   `json:"enable_file"`
}

// AuthConfig holds admin authentication configuration
type AuthConfig struct {
	JWTSecret string `json:"jwt_secret"`
	// AdminPasswordHash is a bcrypt hash; empty disables admin login.
	AdminPasswordHash string        `json:"-"`
	TokenTTL          time.Duration `json:"token_ttl"`
}

// SourcesConfig holds credentials and endpoints of the upstream adapters
type SourcesConfig struct {
	SportsDataIOKey      string        `json:"-"`
	YahooClientID        string        `json:"-"`
	YahooClientSecret    string        `json:"-"`
	YahooTokenFile       string        `json:"yahoo_token_file"`
	NflverseCacheDir     string        `json:"nflverse_cache_dir"`
	PFRBaseURL           string        `json:"pfr_base_url"`
	PFRRequestsPerSecond float64       `json:"pfr_requests_per_second"`
	HTTPTimeout          time.Duration `json:"http_timeout"`
}

// PipelineConfig holds feature pipeline, model and dashboard settings
type PipelineConfig struct {
	RollingPeriod         int    `json:"rolling_period"`
	HoldoutSeason         int    `json:"holdout_season"`
	SavedWeightsPath      string `json:"saved_weights_path"`
	CombinedDataFramePath string `json:"combined_data_frame_path"`
	DashboardSeasons      []int  `json:"dashboard_seasons"`
	ScoringFile           string `json:"scoring_file"`
	RefreshSchedule       string `json:"refresh_schedule"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Don't treat missing .env as an error
		logging.Warnf("Could not load .env file: %v", err)
	}

	config := FromEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			UseTLS:      getBoolEnv("USE_TLS", false),
			CertFile:    getEnv("TLS_CERT_FILE", "server.crt"),
			KeyFile:     getEnv("TLS_KEY_FILE", "server.key"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("DB_ENABLED", true),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "nfl_projections"),
			Timeout:  getDurationEnv("DB_TIMEOUT", 10*time.Second),

			WatchChanges: getBoolEnv("DB_WATCH_CHANGES", false),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", "nfl"),
			EnableColor: getBoolEnv("LOG_COLOR", true),
			LogDir:      getEnv("LOG_DIR", "./logs"),
			EnableFile:  getBoolEnv("LOG_FILE", false),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			TokenTTL:          getDurationEnv("ADMIN_TOKEN_TTL", 12*time.Hour),
		},
		Sources: SourcesConfig{
			SportsDataIOKey:      getEnv("SPORTS_DATA_IO_API_KEY", ""),
			YahooClientID:        getEnv("YAHOO_DATA_API_CLIENT_ID", ""),
			YahooClientSecret:    getEnv("YAHOO_DATA_API_CLIENT_SECRET", ""),
			YahooTokenFile:       getEnv("YAHOO_TOKEN_FILE", "yahoo_token.json"),
			NflverseCacheDir:     getEnv("NFLVERSE_CACHE_DIR", ""),
			PFRBaseURL:           getEnv("PFR_BASE_URL", "https://www.pro-football-reference.com"),
			PFRRequestsPerSecond: getFloatEnv("PFR_REQUESTS_PER_SECOND", 0.5),
			HTTPTimeout:          getDurationEnv("HTTP_TIMEOUT", 60*time.Second),
		},
		Pipeline: PipelineConfig{
			RollingPeriod:         getIntEnv("ROLLING_PERIOD", models.DefaultRollingPeriod),
			HoldoutSeason:         getIntEnv("HOLDOUT_SEASON", models.DefaultHoldoutSeason),
			SavedWeightsPath:      getEnv("SAVED_WEIGHTS_PATH", "./weights"),
			CombinedDataFramePath: getEnv("COMBINED_DATA_FRAME_PATH", "./data/combined_projections.csv"),
			DashboardSeasons:      getIntListEnv("DASHBOARD_SEASONS", []int{models.DefaultHoldoutSeason}),
			ScoringFile:           getEnv("SCORING_FILE", ""),
			RefreshSchedule:       getEnv("REFRESH_SCHEDULE", ""),
		},
	}
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Server.UseTLS {
		if _, err := os.Stat(c.Server.CertFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file not found: %s", c.Server.CertFile)
		}
		if _, err := os.Stat(c.Server.KeyFile); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file not found: %s", c.Server.KeyFile)
		}
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.JWTSecret == defaultJWTSecret && !c.IsDevelopment() {
		return fmt.Errorf("JWT secret must be changed in production")
	}

	if c.Pipeline.RollingPeriod < 1 {
		return fmt.Errorf("rolling period must be positive, got: %d", c.Pipeline.RollingPeriod)
	}
	if c.Pipeline.HoldoutSeason < 1999 || c.Pipeline.HoldoutSeason > 2100 {
		return fmt.Errorf("holdout season out of range: %d", c.Pipeline.HoldoutSeason)
	}
	if len(c.Pipeline.DashboardSeasons) == 0 {
		return fmt.Errorf("at least one dashboard season is required")
	}
	if c.Pipeline.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.Pipeline.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", c.Pipeline.RefreshSchedule, err)
		}
	}
	if c.Sources.PFRRequestsPerSecond <= 0 {
		return fmt.Errorf("PFR request rate must be positive")
	}

	return nil
}

// IsDevelopment reports whether the environment is development.
func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Server.Environment) == "development"
}

// IsAdminEnabled reports whether an admin password hash is configured.
func (c *Config) IsAdminEnabled() bool {
	return c.Auth.AdminPasswordHash != ""
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// GetMongoURI returns the MongoDB connection URI
func (c *Config) GetMongoURI() string {
	return c.ToDatabaseConfig().URI()
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s (TLS: %t, Environment: %s)",
		c.GetServerAddress(), c.Server.UseTLS, c.Server.Environment)
	logging.Infof("Database: enabled=%t %s:%s/%s (Username: %s, Auth: %t, Watch: %t)",
		c.Database.Enabled, c.Database.Host, c.Database.Port, c.Database.Database,
		c.Database.Username, c.Database.Password != "", c.Database.WatchChanges)
	logging.Infof("Logging: Level=%s, Prefix=%s, Color=%t, File=%t",
		c.Logging.Level, c.Logging.Prefix, c.Logging.EnableColor, c.Logging.EnableFile)
	logging.Infof("Sources: SportsDataIO=%t, Yahoo=%t, nflverse cache=%q, PFR=%s @ %.2f req/s",
		c.Sources.SportsDataIOKey != "", c.Sources.YahooClientID != "",
		c.Sources.NflverseCacheDir, c.Sources.PFRBaseURL, c.Sources.PFRRequestsPerSecond)
	logging.Infof("Pipeline: Rolling=%d, Holdout=%d, Weights=%s, Combined=%s, Seasons=%v, Refresh=%q",
		c.Pipeline.RollingPeriod, c.Pipeline.HoldoutSeason, c.Pipeline.SavedWeightsPath,
		c.Pipeline.CombinedDataFramePath, c.Pipeline.DashboardSeasons, c.Pipeline.RefreshSchedule)
	logging.Infof("Admin: Enabled=%t", c.IsAdminEnabled())
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getIntListEnv parses "2023,2024". Any bad element falls back to the default.
func getIntListEnv(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return defaultValue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
