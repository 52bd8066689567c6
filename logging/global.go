package logging

import (
	"os"
	"path/filepath"
	"sync"
)

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// The global logger starts from LOG_LEVEL / LOG_COLOR so that packages
// logging before config.Load still honour them.
func init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	globalLogger = New(Config{
		Level:       level,
		Output:      os.Stdout,
		EnableColor: os.Getenv("LOG_COLOR") != "false",
	})
}

func current() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return current()
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// Configure replaces the global logger
func Configure(config Config) {
	SetGlobalLogger(New(config))
}

// ConfigureFromSettings builds the global logger from the values carried by
// config.LoggingConfig. enableFile routes a copy to <logDir>/<prefix>.log.
func ConfigureFromSettings(level, prefix string, color, enableFile bool, logDir string) {
	cfg := Config{
		Level:       level,
		Output:      os.Stdout,
		Prefix:      prefix,
		EnableColor: color,
	}
	if enableFile {
		name := prefix
		if name == "" {
			name = "app"
		}
		cfg.FilePath = filepath.Join(logDir, name+".log")
	}
	Configure(cfg)
}

// Debug logs a message at DEBUG level using the global logger
func Debug(args ...interface{}) { current().Debug(args...) }

// Debugf logs a formatted message at DEBUG level using the global logger
func Debugf(format string, args ...interface{}) { current().Debugf(format, args...) }

// Info logs a message at INFO level using the global logger
func Info(args ...interface{}) { current().Info(args...) }

// Infof logs a formatted message at INFO level using the global logger
func Infof(format string, args ...interface{}) { current().Infof(format, args...) }

// Warn logs a message at WARN level using the global logger
func Warn(args ...interface{}) { current().Warn(args...) }

// Warnf logs a formatted message at WARN level using the global logger
func Warnf(format string, args ...interface{}) { current().Warnf(format, args...) }

// Error logs a message at ERROR level using the global logger
func Error(args ...interface{}) { current().Error(args...) }

// Errorf logs a formatted message at ERROR level using the global logger
func Errorf(format string, args ...interface{}) { current().Errorf(format, args...) }

// Fatal logs a message at FATAL level using the global logger and exits the program
func Fatal(args ...interface{}) { current().Fatal(args...) }

// Fatalf logs a formatted message at FATAL level using the global logger and exits the program
func Fatalf(format string, args ...interface{}) { current().Fatalf(format, args...) }

// WithPrefix returns a new logger with the specified prefix using the global logger
func WithPrefix(prefix string) *Logger {
	return current().WithPrefix(prefix)
}
