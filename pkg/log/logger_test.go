package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	treemlErrors "github.com/YuminosukeSato/treeml/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestZerologProviderWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelDebug)

	logger := p.GetLoggerWithName("tree").With(ModelNameKey, "DecisionTreeClassifier")
	logger.Debug("fit finished", OperationKey, OperationFit, SamplesKey, 7, DepthKey, 3)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "fit finished", entry["message"])
	assert.Equal(t, "tree", entry[ComponentKey])
	assert.Equal(t, "DecisionTreeClassifier", entry[ModelNameKey])
	assert.Equal(t, OperationFit, entry[OperationKey])
	assert.Equal(t, 7.0, entry[SamplesKey])
	assert.Equal(t, 3.0, entry[DepthKey])
	assert.Contains(t, entry, "time")
}

func TestZerologProviderLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelWarn)
	logger := p.GetLogger()

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	assert.False(t, logger.Enabled(context.Background(), LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), LevelError))

	p.SetLevel(LevelDebug)
	logger.Debug("now shown")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0]["message"])
	assert.Equal(t, "now shown", entries[1]["message"])
}

func TestZerologProviderErrorDetails(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelInfo)

	err := treemlErrors.NewDimensionError("RandomForestClassifier.Predict", 3, 2, 1)
	p.GetLogger().Error("predict failed", err, OperationKey, OperationPredict)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "error", entry["level"])
	assert.Contains(t, entry[ErrorKey], "dimension mismatch")
	assert.NotEmpty(t, entry[StacktraceKey])
	assert.Equal(t, OperationPredict, entry[OperationKey])

	detail, ok := entry[ErrorDetailKey].(map[string]interface{})
	require.True(t, ok, "typed errors should add their fields")
	assert.Equal(t, "DimensionError", detail["type"])
	assert.Equal(t, 3.0, detail["expected"])
}

func TestZerologProviderPlainError(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelInfo)

	p.GetLogger().Warn("odd", fmt.Errorf("plain"), "k", "v")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "plain", entries[0][ErrorKey])
	assert.NotContains(t, entries[0], ErrorDetailKey)
	assert.Equal(t, "v", entries[0]["k"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"", LevelInfo, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				var valErr *treemlErrors.ValidationError
				assert.True(t, treemlErrors.As(err, &valErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGlobalProviderSwap(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelDebug)
	SetProvider(provider)
	t.Cleanup(func() { SetProvider(nil) })

	GetLoggerWithName("ensemble").Info("trees built", TreesKey, 10)

	assert.True(t, provider.Logger().ContainsField(ComponentKey, "ensemble"))
	assert.True(t, provider.Logger().ContainsField(TreesKey, 10.0))
}

func TestWarningsRouteToLogger(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelDebug)
	SetProvider(provider)
	t.Cleanup(func() { SetProvider(nil) })

	treemlErrors.Warn(treemlErrors.NewWeakLearnerWarning("AdaBoostClassifier", 4, 0.55))

	logger := provider.Logger()
	assert.True(t, logger.ContainsField("level", "WARN"))
	assert.True(t, logger.ContainsField(ComponentKey, "warnings"))
	assert.True(t, logger.ContainsMessage("round 4"))
}

func TestTestLogger(t *testing.T) {
	logger, buffer := NewTestLogger(LevelInfo)

	logger.Debug("dropped")
	logger.Info("kept", "number", 42)
	logger.Error("failed", fmt.Errorf("boom"), OperationKey, OperationFit)

	assert.NotContains(t, buffer.String(), "dropped")
	assert.True(t, logger.ContainsField("number", 42.0))
	assert.True(t, logger.ContainsField(ErrorKey, "boom"))
	assert.True(t, logger.ContainsField(OperationKey, OperationFit))
	assert.Equal(t, 1, logger.CountMessages("kept"))

	child := logger.With(ModelNameKey, "KNeighborsClassifier")
	child.Info("child")
	assert.True(t, logger.ContainsField(ModelNameKey, "KNeighborsClassifier"))

	logger.Clear()
	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTestLoggerConcurrentWrites(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.With(IterationKey, i).Debug("tree built")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, logger.CountMessages("tree built"))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}
