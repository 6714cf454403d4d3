// Package logging is the platform-wide structured logging seam. Every
// component receives a Logger through constructor injection; nothing
// outside this package imports go.uber.org/zap directly, so the backend
// can change without touching call sites.
package logging

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a typed key/value pair attached to a log entry. A concrete
// struct keeps call sites explicit about what they're logging instead of
// passing bare interface{} pairs.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, val string) Field               { return Field{Key: key, Value: val} }
func Int(key string, val int) Field               { return Field{Key: key, Value: val} }
func Int64(key string, val int64) Field           { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field       { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field             { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field       { return Field{Key: key, Value: val} }

// Err wraps err under the fixed key "error" so every layer reports errors
// under a consistent field name that log-aggregation queries can rely on.
// A nil err still produces a field, stringified as "<nil>", so a call site
// that logs unconditionally never has to guard against a nil error first.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Logger is the structured-logging contract every component depends on.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	// Fatal logs at FATAL and terminates the process via os.Exit(1).
	// Reserve for unrecoverable startup failures.
	Fatal(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With derives a child Logger carrying fields on every subsequent
	// entry; the receiver is left untouched.
	With(fields ...Field) Logger
	// Named derives a child Logger whose name is the parent's name with
	// name appended after a dot, e.g. "app" -> "app.http".
	Named(name string) Logger
}

// LogConfig parameterizes logger construction, typically populated from
// on-disk configuration before NewLogger runs once at startup.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error" (case-insensitive).
	// Anything else, including empty, resolves to "info".
	Level string `yaml:"level" json:"level"`
	// Format is "json" (default, for aggregation pipelines) or "console"
	// (human-readable, for local development).
	Format string `yaml:"format" json:"format"`
	// OutputPaths lists sinks for normal entries. Defaults to ["stdout"].
	OutputPaths []string `yaml:"output_paths" json:"output_paths"`
	// ErrorOutputPaths lists sinks for zap's own internal errors.
	// Defaults to ["stderr"].
	ErrorOutputPaths []string `yaml:"error_output_paths" json:"error_output_paths"`
}

var levelByName = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

func resolveLevel(name string) zapcore.Level {
	if lvl, ok := levelByName[normalizeLevelName(name)]; ok {
		return lvl
	}
	return zapcore.InfoLevel
}

func normalizeLevelName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// NewLogger builds a zap-backed Logger from cfg, applying defaults to any
// unset field. An error surfaces only when zap itself fails to construct
// (e.g. an output path it cannot open).
func NewLogger(cfg LogConfig) (Logger, error) {
	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}
	errOutputs := cfg.ErrorOutputPaths
	if len(errOutputs) == 0 {
		errOutputs = []string{"stderr"}
	}

	isConsole := cfg.Format == "console"

	encCfg := zap.NewProductionEncoderConfig()
	if isConsole {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	encoding := "json"
	if isConsole {
		encoding = "console"
	}

	zCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(resolveLevel(cfg.Level)),
		Development:      isConsole,
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      outputs,
		ErrorOutputPaths: errOutputs,
	}

	z, err := zCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: building zap logger: %w", err)
	}
	return &zapLogger{core: z}, nil
}

// NewDefaultLogger returns a ready-to-use Logger at info level, JSON
// encoding, stdout/stderr — for code that runs before configuration has
// loaded (typically cmd/*/main.go's first lines). Falls back to a no-op
// Logger in the practically unreachable case that zap fails to build this
// fixed configuration.
func NewDefaultLogger() Logger {
	l, err := NewLogger(LogConfig{})
	if err != nil {
		return nopLogger{}
	}
	return l
}

// NewLoggerFromCore wraps an existing zapcore.Core, used by tests that
// need to observe emitted entries (zaptest/observer) rather than write to
// a real sink.
func NewLoggerFromCore(core zapcore.Core) Logger {
	return &zapLogger{core: zap.New(core, zap.AddCallerSkip(1))}
}

// NewNopLogger returns a Logger that discards everything, for tests and
// benchmarks where log output adds noise without value.
func NewNopLogger() Logger { return nopLogger{} }

// zapLogger adapts *zap.Logger to Logger, translating Field slices into
// zap.Field values on each call.
type zapLogger struct {
	core *zap.Logger
}

func fieldsToZap(fields []Field) []zap.Field {
	zfs := make([]zap.Field, len(fields))
	for i, f := range fields {
		zfs[i] = fieldToZap(f)
	}
	return zfs
}

func fieldToZap(f Field) zap.Field {
	switch v := f.Value.(type) {
	case string:
		return zap.String(f.Key, v)
	case int:
		return zap.Int(f.Key, v)
	case int64:
		return zap.Int64(f.Key, v)
	case float64:
		return zap.Float64(f.Key, v)
	case bool:
		return zap.Bool(f.Key, v)
	case time.Duration:
		return zap.Duration(f.Key, v)
	case error:
		return zap.NamedError(f.Key, v)
	default:
		return zap.Any(f.Key, v)
	}
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.core.Debug(msg, fieldsToZap(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.core.Info(msg, fieldsToZap(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.core.Warn(msg, fieldsToZap(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.core.Error(msg, fieldsToZap(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.core.Fatal(msg, fieldsToZap(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{core: l.core.With(fieldsToZap(fields)...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{core: l.core.Named(name)}
}

// nopLogger discards every call; all methods are safe on the zero value.
type nopLogger struct{}

func (nopLogger) Debug(string, ...Field)   {}
func (nopLogger) Info(string, ...Field)    {}
func (nopLogger) Warn(string, ...Field)    {}
func (nopLogger) Error(string, ...Field)   {}
func (nopLogger) Fatal(string, ...Field)   {}
func (n nopLogger) With(...Field) Logger   { return n }
func (n nopLogger) Named(string) Logger    { return n }

// defaultHolder stores the process-wide default Logger behind an
// atomic.Value so Default() never blocks on a writer in SetDefault.
var defaultHolder atomic.Value

var defaultInit sync.Once

func loadDefault() Logger {
	defaultInit.Do(func() { defaultHolder.Store(loggerBox{nopLogger{}}) })
	return defaultHolder.Load().(loggerBox).l
}

// loggerBox exists because atomic.Value requires every Store to use the
// same concrete type, and Logger is an interface.
type loggerBox struct{ l Logger }

// SetDefault replaces the process-wide default Logger. A nil argument is
// ignored. Intended to run once during startup before any goroutine calls
// Default(); safe for concurrent use regardless.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defaultInit.Do(func() { defaultHolder.Store(loggerBox{nopLogger{}}) })
	defaultHolder.Store(loggerBox{l})
}

// Default returns the process-wide default Logger, a no-op logger until
// SetDefault has run. Constructor injection is preferred; Default() exists
// for package-level code (init funcs, global variables) that cannot
// receive one.
func Default() Logger {
	return loadDefault()
}
