package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

var levelColors = map[LogLevel]string{
	DEBUG: "\033[36m",       // Cyan
	INFO:  "\033[38;5;195m", // Pale Blue
	WARN:  "\033[33m",       // Yellow
	ERROR: "\033[31m",       // Red
	FATAL: "\033[35m",       // Magenta
}

const colorReset = "\033[0m"

// String returns the string representation of the log level
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// Color returns ANSI color codes for terminal output
func (l LogLevel) Color() string {
	if c, ok := levelColors[l]; ok {
		return c
	}
	return colorReset
}

// ParseLevel converts a string level to LogLevel. Unknown values map to INFO.
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// Config holds logger configuration options
type Config struct {
	Level       string // "debug", "info", "warn", "error", "fatal"
	Output      io.Writer
	Prefix      string
	EnableColor bool
	// FilePath, when set, receives an uncolored copy of every line.
	FilePath string
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Output:      os.Stdout,
		EnableColor: true,
	}
}

// Logger is a leveled, prefixed logger shared by every component.
type Logger struct {
	mu          sync.RWMutex
	level       LogLevel
	prefix      string
	enableColor bool
	console     *log.Logger
	file        *log.Logger
	exit        func(int)
}

// New creates a new Logger instance. A file sink that cannot be opened is
// reported on the console and skipped.
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	l := &Logger{
		level:       ParseLevel(config.Level),
		prefix:      config.Prefix,
		enableColor: config.EnableColor,
		console:     log.New(config.Output, "", 0),
		exit:        os.Exit,
	}

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err == nil {
			f, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err == nil {
				l.file = log.New(f, "", 0)
			} else {
				l.console.Printf("logging: cannot open %s: %v", config.FilePath, err)
			}
		}
	}

	return l
}

// NewDefault creates a logger with default configuration
func NewDefault() *Logger {
	return New(DefaultConfig())
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the console destination
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console.SetOutput(w)
}

// IsLevelEnabled checks if the given level is enabled
func (l *Logger) IsLevelEnabled(level LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *Logger) format(level LogLevel, message string, color bool) string {
	prefix := ""
	if l.prefix != "" {
		prefix = "[" + l.prefix + "] "
	}
	line := fmt.Sprintf("%-5s %s %-30s%s",
		level.String(),
		time.Now().Format("2006-01-02 15:04:05.000"),
		prefix,
		message,
	)
	if color {
		return level.Color() + line + colorReset
	}
	return line
}

func (l *Logger) emit(level LogLevel, message string) {
	if !l.IsLevelEnabled(level) {
		return
	}

	l.mu.RLock()
	l.console.Print(l.format(level, message, l.enableColor))
	if l.file != nil {
		l.file.Print(l.format(level, message, false))
	}
	exit := l.exit
	l.mu.RUnlock()

	if level == FATAL {
		exit(1)
	}
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(args ...interface{}) { l.emit(DEBUG, fmt.Sprint(args...)) }

// Debugf logs a formatted message at DEBUG level
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.emit(DEBUG, fmt.Sprintf(format, args...))
}

// Info logs a message at INFO level
func (l *Logger) Info(args ...interface{}) { l.emit(INFO, fmt.Sprint(args...)) }

// Infof logs a formatted message at INFO level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.emit(INFO, fmt.Sprintf(format, args...))
}

// Warn logs a message at WARN level
func (l *Logger) Warn(args ...interface{}) { l.emit(WARN, fmt.Sprint(args...)) }

// Warnf logs a formatted message at WARN level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.emit(WARN, fmt.Sprintf(format, args...))
}

// Error logs a message at ERROR level
func (l *Logger) Error(args ...interface{}) { l.emit(ERROR, fmt.Sprint(args...)) }

// Errorf logs a formatted message at ERROR level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.emit(ERROR, fmt.Sprintf(format, args...))
}

// Fatal logs a message at FATAL level and exits the program
func (l *Logger) Fatal(args ...interface{}) { l.emit(FATAL, fmt.Sprint(args...)) }

// Fatalf logs a formatted message at FATAL level and exits the program
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.emit(FATAL, fmt.Sprintf(format, args...))
}

// Printf logs at DEBUG level so the logger can back libraries that expect a
// Printf-style sink.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.emit(DEBUG, fmt.Sprintf(format, args...))
}

// WithPrefix returns a child logger. Prefixes nest as "parent:child" and the
// child shares the parent's sinks.
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	newPrefix := prefix
	if l.prefix != "" {
		newPrefix = l.prefix + ":" + prefix
	}

	return &Logger{
		level:       l.level,
		prefix:      newPrefix,
		enableColor: l.enableColor,
		console:     l.console,
		file:        l.file,
		exit:        l.exit,
	}
}
