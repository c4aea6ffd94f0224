package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", ErrorCodeKey, ErrorConvergence)
	testLogger.Error("error message", fmt.Errorf("boom"), PathKey, "data.txt")

	require.NotEmpty(t, buffer.String())
	assert.True(t, testLogger.ContainsMessage("debug message"))
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "boom"))
	assert.True(t, testLogger.ContainsField(PathKey, "data.txt"))

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "ERROR", entries[3]["level"])
}

func TestTestLoggerLevelAndWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	assert.True(t, testLogger.Enabled(ctx, LevelInfo))
	assert.False(t, testLogger.Enabled(ctx, LevelDebug))

	child := testLogger.With(ModelNameKey, "PolynomialRegression", EstimatorIDKey, "id-1")
	child.Debug("hidden")
	child.Info("Training started", IterationKey, 0)

	assert.False(t, testLogger.ContainsMessage("hidden"))
	entries := testLogger.EntriesWithMessage("Training started")
	require.Len(t, entries, 1)
	assert.Equal(t, "PolynomialRegression", entries[0][ModelNameKey])
	assert.Equal(t, "id-1", entries[0][EstimatorIDKey])
}

func TestTestLoggerProvider(t *testing.T) {
	provider, logger := NewTestLoggerProvider(LevelWarn)

	provider.GetLoggerWithName("linear").Warn("named")
	provider.GetLogger().Info("filtered")
	provider.SetLevel(LevelInfo)
	provider.GetLogger().Info("visible")

	assert.True(t, logger.ContainsField(ComponentKey, "linear"))
	assert.False(t, logger.ContainsMessage("filtered"))
	assert.True(t, logger.ContainsMessage("visible"))
}

func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				testLogger.Info("tick", "worker", id, IterationKey, j)
			}
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 400)
}

func TestZerologProvider(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelInfo)

	logger := provider.GetLoggerWithName("linear").With(ModelNameKey, "PolynomialRegression")
	logger.Debug("not emitted")
	logger.Info("Training completed", IterationKey, 12, LossKey, 0.5)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Training completed", entry["message"])
	assert.Equal(t, "linear", entry[ComponentKey])
	assert.Equal(t, "PolynomialRegression", entry[ModelNameKey])
	assert.Equal(t, 12.0, entry[IterationKey])
	assert.Equal(t, 0.5, entry[LossKey])

	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	provider.SetLevel(LevelDebug)
	assert.True(t, provider.GetLogger().Enabled(context.Background(), LevelDebug))
}

func TestZerologLoggerError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologProvider(&buf, LevelInfo).GetLogger()

	logger.Error("Failed to read dataset", errors.New("missing file"), PathKey, "data.txt")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "missing file", entry["error"])
	assert.Equal(t, "data.txt", entry[PathKey])
}

type structuredWarning struct{ msg string }

func (w *structuredWarning) Error() string { return w.msg }

type iterationWarning struct{ iter int }

func (w *iterationWarning) Error() string { return fmt.Sprintf("stopped at %d", w.iter) }

func (w *iterationWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int(IterationKey, w.iter)
}

func TestZerologWarnFuncEmbedsWrappedObject(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelInfo)

	provider.WarnFunc()(errors.WithStack(&iterationWarning{iter: 40000}))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stopped at 40000", entry["message"])
	assert.Equal(t, 40000.0, entry[IterationKey])
}

func TestZerologWarnFunc(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelInfo)

	provider.WarnFunc()(&structuredWarning{msg: "did not converge"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "did not converge", entry["message"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrFmtHandlerAddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil)))

	logger.Error("with stack", ErrAttr(errors.New("stacked")))
	logger.Error("plain", ErrAttr(fmt.Errorf("plain")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var withStack, plain map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &withStack))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &plain))

	assert.Contains(t, withStack[StacktraceAttrKey], "log_test.go")
	assert.NotContains(t, plain, StacktraceAttrKey)
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, "warn"))

	slog.Info("dropped")
	slog.Warn("kept", "k", 1)

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"message":"kept"`)
	assert.Contains(t, out, `"severity":"WARN"`)
	assert.Contains(t, out, "logging.googleapis.com/sourceLocation")

	assert.Error(t, SetupLogger(&buf, "verbose"))
}
