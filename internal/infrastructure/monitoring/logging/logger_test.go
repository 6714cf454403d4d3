package logging_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
)

func observedLogger(level zapcore.Level) (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logging.NewLoggerFromCore(core), logs
}

func TestNewLogger_Configurations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  logging.LogConfig
	}{
		{"json/info", logging.LogConfig{Level: "info", Format: "json"}},
		{"console/debug", logging.LogConfig{Level: "debug", Format: "console"}},
		{"zero value", logging.LogConfig{}},
		{"explicit output paths", logging.LogConfig{
			Level: "warn", Format: "json",
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		}},
		{"uppercase level", logging.LogConfig{Level: "ERROR", Format: "json"}},
		{"unrecognized level falls back to info", logging.LogConfig{Level: "trace", Format: "json"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			l, err := logging.NewLogger(tc.cfg)
			require.NoError(t, err)
			require.NotNil(t, l)
		})
	}
}

func TestNewLogger_AllLevelsBuildSuccessfully(t *testing.T) {
	t.Parallel()
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		lvl := lvl
		t.Run(lvl, func(t *testing.T) {
			t.Parallel()
			_, err := logging.NewLogger(logging.LogConfig{Level: lvl, Format: "json"})
			require.NoError(t, err, "level=%s", lvl)
		})
	}
}

func TestNewDefaultLogger_ReturnsUsableLogger(t *testing.T) {
	t.Parallel()
	l := logging.NewDefaultLogger()
	require.NotNil(t, l)
	assert.NotPanics(t, func() { l.Info("boot") })
}

func TestLogger_LevelMethodsDoNotPanic(t *testing.T) {
	t.Parallel()
	l, err := logging.NewLogger(logging.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)

	assert.NotPanics(t, func() { l.Debug("debug message") })
	assert.NotPanics(t, func() { l.Info("info message") })
	assert.NotPanics(t, func() { l.Warn("warn message") })
	assert.NotPanics(t, func() { l.Error("error message") })
}

func TestLogger_AcceptsEveryFieldConstructor(t *testing.T) {
	t.Parallel()
	l, err := logging.NewLogger(logging.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		l.Info("every field type",
			logging.String("key", "value"),
			logging.Int("count", 42),
			logging.Bool("flag", true),
			logging.Float64("ratio", 3.14),
			logging.Int64("big", 9999999999),
			logging.Duration("elapsed", time.Second),
			logging.Err(errors.New("boom")),
			logging.Err(nil),
			logging.Any("arbitrary", struct{ X int }{X: 1}),
		)
	})
}

func TestLogger_With(t *testing.T) {
	t.Parallel()

	t.Run("preset fields appear in child entries", func(t *testing.T) {
		t.Parallel()
		l, logs := observedLogger(zapcore.DebugLevel)
		child := l.With(logging.String("service", "normalizer-svc"), logging.Int("tenant", 7))
		child.Info("hello from child")

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "hello from child", entry.Message)

		fieldMap := make(map[string]interface{})
		for _, f := range entry.Context {
			fieldMap[f.Key] = f.String
		}
		assert.Equal(t, "normalizer-svc", fieldMap["service"])
	})

	t.Run("parent is not mutated by a child", func(t *testing.T) {
		t.Parallel()
		l, logs := observedLogger(zapcore.DebugLevel)
		_ = l.With(logging.String("child_field", "yes"))

		l.Info("parent message")

		require.Equal(t, 1, logs.Len())
		for _, f := range logs.All()[0].Context {
			assert.NotEqual(t, "child_field", f.Key, "parent logger should not carry child's preset fields")
		}
	})

	t.Run("chained With calls accumulate fields", func(t *testing.T) {
		t.Parallel()
		l, logs := observedLogger(zapcore.DebugLevel)
		child := l.
			With(logging.String("layer", "handler")).
			With(logging.String("route", "/get_normalized_nodes"))
		child.Info("chained")

		require.Equal(t, 1, logs.Len())
		keys := make([]string, 0, len(logs.All()[0].Context))
		for _, f := range logs.All()[0].Context {
			keys = append(keys, f.Key)
		}
		assert.Contains(t, keys, "layer")
		assert.Contains(t, keys, "route")
	})
}

func TestLogger_Named(t *testing.T) {
	t.Parallel()

	t.Run("sets the logger name", func(t *testing.T) {
		t.Parallel()
		l, logs := observedLogger(zapcore.DebugLevel)
		l.Named("molecule-svc").Info("named entry")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "molecule-svc", logs.All()[0].LoggerName)
	})

	t.Run("chained names join with a dot", func(t *testing.T) {
		t.Parallel()
		l, logs := observedLogger(zapcore.DebugLevel)
		l.Named("app").Named("http").Info("chained name")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "app.http", logs.All()[0].LoggerName)
	})
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	l, logs := observedLogger(zapcore.InfoLevel)
	l.Debug("should be filtered")
	l.Info("should appear")

	require.Equal(t, 1, logs.Len(), "only INFO should pass through an INFO-level logger")
	assert.Equal(t, "should appear", logs.All()[0].Message)
}

func TestLogger_EntryLevelsMatchCallSite(t *testing.T) {
	t.Parallel()

	l, logs := observedLogger(zapcore.DebugLevel)
	l.Error("something broke", logging.Err(errors.New("disk full")))
	l.Warn("degraded", logging.String("reason", "high latency"))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
}

func TestLogger_AllFieldTypesProduceContext(t *testing.T) {
	t.Parallel()

	l, logs := observedLogger(zapcore.DebugLevel)
	l.Info("all-types",
		logging.String("s", "hello"),
		logging.Int("i", 1),
		logging.Int64("i64", 2),
		logging.Float64("f", 3.14),
		logging.Bool("b", true),
		logging.Duration("d", 250*time.Millisecond),
		logging.Err(errors.New("e")),
		logging.Any("a", map[string]int{"x": 9}),
	)

	require.Equal(t, 1, logs.Len())
	assert.NotEmpty(t, logs.All()[0].Context)
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	t.Run("every method is a no-op", func(t *testing.T) {
		t.Parallel()
		l := logging.NewNopLogger()
		require.NotNil(t, l)
		assert.NotPanics(t, func() { l.Debug("d") })
		assert.NotPanics(t, func() { l.Info("i") })
		assert.NotPanics(t, func() { l.Warn("w") })
		assert.NotPanics(t, func() { l.Error("e") })
	})

	t.Run("With returns a usable logger", func(t *testing.T) {
		t.Parallel()
		child := logging.NewNopLogger().With(logging.String("k", "v"))
		require.NotNil(t, child)
		assert.NotPanics(t, func() { child.Info("child info") })
	})

	t.Run("Named returns a usable logger", func(t *testing.T) {
		t.Parallel()
		named := logging.NewNopLogger().Named("component")
		require.NotNil(t, named)
		assert.NotPanics(t, func() { named.Warn("named warn") })
	})

	t.Run("satisfies Logger", func(t *testing.T) {
		t.Parallel()
		var _ logging.Logger = logging.NewNopLogger()
	})
}

// Default/SetDefault manipulate process-wide state, so these run serially
// (no t.Parallel) and always restore a nop logger afterward.

func TestDefault_InitialValueIsUsable(t *testing.T) {
	l := logging.Default()
	require.NotNil(t, l)
	assert.NotPanics(t, func() { l.Info("boot check") })
}

func TestSetDefault_ReplacesDefaultLogger(t *testing.T) {
	newLogger, err := logging.NewLogger(logging.LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)

	logging.SetDefault(newLogger)
	assert.Equal(t, newLogger, logging.Default())

	logging.SetDefault(logging.NewNopLogger())
}

func TestSetDefault_NilIsIgnored(t *testing.T) {
	original := logging.Default()
	logging.SetDefault(nil)
	assert.Equal(t, original, logging.Default())
}

func TestDefault_UsableAfterSetDefault(t *testing.T) {
	l, logs := observedLogger(zapcore.InfoLevel)
	logging.SetDefault(l)

	logging.Default().Info("via default")
	assert.Equal(t, 1, logs.Len())

	logging.SetDefault(logging.NewNopLogger())
}

func TestField_Constructors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, logging.Field{Key: "k", Value: "v"}, logging.String("k", "v"))
	assert.Equal(t, logging.Field{Key: "n", Value: 42}, logging.Int("n", 42))
	assert.Equal(t, logging.Field{Key: "big", Value: int64(1 << 40)}, logging.Int64("big", int64(1<<40)))
	assert.Equal(t, logging.Field{Key: "flag", Value: true}, logging.Bool("flag", true))

	d := 500 * time.Millisecond
	assert.Equal(t, logging.Field{Key: "elapsed", Value: d}, logging.Duration("elapsed", d))

	pi := logging.Float64("pi", 3.14159)
	assert.Equal(t, "pi", pi.Key)
	assert.InDelta(t, 3.14159, pi.Value, 1e-9)

	type custom struct{ X int }
	v := custom{X: 99}
	assert.Equal(t, logging.Field{Key: "obj", Value: v}, logging.Any("obj", v))
}

func TestField_Err(t *testing.T) {
	t.Parallel()

	withErr := logging.Err(errors.New("disk full"))
	assert.Equal(t, "error", withErr.Key)
	assert.Equal(t, "disk full", withErr.Value)

	withNil := logging.Err(nil)
	assert.Equal(t, "error", withNil.Key)
	assert.Equal(t, "<nil>", withNil.Value)
}
