package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// LogLevel defines the severity of a log message.
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// Logger is a small leveled logger writing to a single destination.
type Logger struct {
	mu        sync.Mutex
	stdLogger *log.Logger
	minLevel  LogLevel
}

// New creates a Logger writing to stderr at INFO level.
func New() *Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter creates a Logger writing to the given destination.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		stdLogger: log.New(w, "", log.Ldate|log.Ltime),
		minLevel:  INFO,
	}
}

// SetLevel updates the minimum log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

func (l *Logger) logf(level LogLevel, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.minLevel {
		return
	}

	msg := fmt.Sprintf(format, v...)
	l.stdLogger.Printf("[%s] %s", level.String(), msg)
}

// Infof logs an info message.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.logf(INFO, format, v...)
}

// Warnf logs a warning message.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.logf(WARN, format, v...)
}

// Errorf logs an error message.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.logf(ERROR, format, v...)
}

// Debugf logs a debug message.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.logf(DEBUG, format, v...)
}

// Tracef logs a trace message.
func (l *Logger) Tracef(format string, v ...interface{}) {
	l.logf(TRACE, format, v...)
}

func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Truncate shortens text for log output, rune-safe.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "...(truncated)"
}
