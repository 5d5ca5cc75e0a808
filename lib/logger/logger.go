// Package logger provides the diagnostic sink for the dynkv store and its
// backends. The store reports every recovered failure as one structured
// record naming the unit, the operation and a human-readable cause; this
// package formats and routes those records.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Diagnostic Records
// --------------------------------------------------------------------------

// Record is one structured diagnostic message.
type Record struct {
	Unit     string // the component emitting the record, e.g. "dynkv"
	Location string // the operation within the unit, e.g. "Set"
	Message  string // human-readable cause
}

// Sink accepts diagnostic records at a severity level. The store only ever
// emits at the error level; other levels exist for tooling.
type Sink interface {
	LogAt(level logger.LogLevel, rec Record)
}

// --------------------------------------------------------------------------
// Default Sink
// --------------------------------------------------------------------------

// sinkImpl routes records to the per-unit loggers of the logging framework.
type sinkImpl struct{}

// Default returns the process-wide sink backed by the per-unit loggers.
func Default() Sink {
	return sinkImpl{}
}

func (sinkImpl) LogAt(level logger.LogLevel, rec Record) {
	l := logger.GetLogger(rec.Unit)
	switch level {
	case logger.DEBUG:
		l.Debugf("%s: %s", rec.Location, rec.Message)
	case logger.INFO:
		l.Infof("%s: %s", rec.Location, rec.Message)
	case logger.WARNING:
		l.Warningf("%s: %s", rec.Location, rec.Message)
	default:
		l.Errorf("%s: %s", rec.Location, rec.Message)
	}
}

// --------------------------------------------------------------------------
// Custom Logger (implements the framework's logger.ILogger)
// --------------------------------------------------------------------------

// dynkvLogger implements the ILogger interface with custom formatting
type dynkvLogger struct {
	name   string
	level  logger.LogLevel
	logger *log.Logger
}

func (l *dynkvLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *dynkvLogger) Debugf(format string, args ...interface{}) {
	if l.level >= logger.DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *dynkvLogger) Infof(format string, args ...interface{}) {
	if l.level >= logger.INFO {
		l.log("INFO", format, args...)
	}
}

func (l *dynkvLogger) Warningf(format string, args ...interface{}) {
	if l.level >= logger.WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *dynkvLogger) Errorf(format string, args ...interface{}) {
	if l.level >= logger.ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *dynkvLogger) Panicf(format string, args ...interface{}) {
	if l.level >= logger.CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *dynkvLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-10s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger implements the framework's factory interface.
func CreateLogger(pkgName string) logger.ILogger {
	// Create standard logger with custom flags
	stdLogger := log.New(os.Stderr, "", log.Ldate|log.Ltime)

	return &dynkvLogger{
		name:   pkgName,
		level:  logger.ERROR,
		logger: stdLogger,
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLevel converts a string level to logger.LogLevel
func ParseLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.ERROR, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// units are the components that emit diagnostics.
var units = []string{"dynkv", "host", "codec", "cmd"}

// Init installs the custom logger factory and sets the level for all units.
func Init(level string) error {
	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}

	logger.SetLoggerFactory(CreateLogger)
	for _, unit := range units {
		logger.GetLogger(unit).SetLevel(parsed)
	}
	return nil
}
