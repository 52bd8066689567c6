package config

import (
	"os"
	"path/filepath"

	"nfl-projections-go/database"
	"nfl-projections-go/logging"
)

// ToDatabaseConfig converts Config to database.Config
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Username: c.Database.Username,
		Password: c.Database.Password,
		Database: c.Database.Database,
		Timeout:  c.Database.Timeout,
	}
}

// ToLoggingConfig converts Config to logging.Config
func (c *Config) ToLoggingConfig() logging.Config {
	cfg := logging.Config{
		Level:       c.Logging.Level,
		Output:      os.Stdout,
		Prefix:      c.Logging.Prefix,
		EnableColor: c.Logging.EnableColor,
	}
	if c.Logging.EnableFile {
		name := c.Logging.Prefix
		if name == "" {
			name = "app"
		}
		cfg.FilePath = filepath.Join(c.Logging.LogDir, name+".log")
	}
	return cfg
}
