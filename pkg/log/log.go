package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// Level names used in output lines.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelDebug = "DEBUG"
)

// Logger is a named logger. Obtain one via ForService; every line it
// emits carries the "[name]" prefix so output from the API, the history
// recorder and the search providers stays distinguishable.
type Logger struct {
	name string
	std  *log.Logger
}

var (
	// globalDebug holds global debug enablement.
	globalDebug atomic.Bool

	// serviceDebug stores per-service debug overrides.
	serviceDebug sync.Map // map[string]*atomic.Bool

	// loggers caches created named loggers.
	loggers sync.Map // map[string]*Logger

	// outputMu guards outputWriter.
	outputMu     sync.Mutex
	outputWriter io.Writer = os.Stderr
)

// ForService returns (and memoizes) the named logger for a service or
// provider. The name should be stable (e.g. "api", "history",
// "clinical_study").
func ForService(name string) *Logger {
	if name == "" {
		name = "unknown"
	}
	if l, ok := loggers.Load(name); ok {
		return l.(*Logger)
	}

	outputMu.Lock()
	std := log.New(outputWriter, "", log.LstdFlags|log.Lmicroseconds)
	outputMu.Unlock()

	logger := &Logger{name: name, std: std}
	actual, _ := loggers.LoadOrStore(name, logger)
	return actual.(*Logger)
}

// SetGlobalDebug enables or disables debug logging for every service.
func SetGlobalDebug(enabled bool) {
	globalDebug.Store(enabled)
}

// GlobalDebug returns whether global debug logging is enabled.
func GlobalDebug() bool {
	return globalDebug.Load()
}

// EnableDebugFor enables debug logging for one service only.
func EnableDebugFor(name string) {
	if name == "" {
		return
	}
	val, _ := serviceDebug.LoadOrStore(name, &atomic.Bool{})
	val.(*atomic.Bool).Store(true)
}

// DisableDebugFor disables a per-service debug override.
func DisableDebugFor(name string) {
	if name == "" {
		return
	}
	if val, ok := serviceDebug.Load(name); ok {
		val.(*atomic.Bool).Store(false)
	}
}

// DebugEnabledFor reports whether debug output is active for a service,
// either globally or through a per-service override.
func DebugEnabledFor(name string) bool {
	if globalDebug.Load() {
		return true
	}
	if val, ok := serviceDebug.Load(name); ok {
		return val.(*atomic.Bool).Load()
	}
	return false
}

// SetOutput redirects all loggers, existing and future, to w. Tests use
// this with a bytes.Buffer to assert on log contents.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	outputMu.Lock()
	outputWriter = w
	outputMu.Unlock()

	loggers.Range(func(_, v any) bool {
		v.(*Logger).std.SetOutput(w)
		return true
	})
}

func (l *Logger) logInternal(level, msg string) {
	l.std.Println(level + " [" + l.name + "] " + msg)
}

// Infof logs an informational message with fmt.Sprintf semantics.
func (l *Logger) Infof(format string, args ...any) {
	l.logInternal(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs a warning message.
func (l *Logger) Warnf(format string, args ...any) {
	l.logInternal(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs an error message.
func (l *Logger) Errorf(format string, args ...any) {
	l.logInternal(LevelError, fmt.Sprintf(format, args...))
}

// Debugf logs a debug message if debug is enabled for this logger's
// service, globally or selectively.
func (l *Logger) Debugf(format string, args ...any) {
	if !DebugEnabledFor(l.name) {
		return
	}
	l.logInternal(LevelDebug, fmt.Sprintf(format, args...))
}
