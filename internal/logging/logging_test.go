package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
		expectJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info json", level: "info", format: "json", expectLevel: logrus.InfoLevel, expectJSON: true},
		{name: "upper case json", level: "warn", format: "JSON", expectLevel: logrus.WarnLevel, expectJSON: true},
		{name: "invalid level falls back to info", level: "loud", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.logger.GetLevel())

			_, isJSON := adapter.logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestLogrusAdapterWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("debug", "json", &buf)

	logger.WithField(FieldBatchID, "b-1").
		WithError(errors.New("boom")).
		Warn("row skipped", F(FieldRow, 7), F(FieldReason, "missing name"))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "row skipped", line["msg"])
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "b-1", line[FieldBatchID])
	assert.Equal(t, "missing name", line[FieldReason])
	assert.Equal(t, float64(7), line[FieldRow])
	assert.Equal(t, "boom", line["error"])
}

func TestLogrusAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("error", "text", &buf)
	logger.Info("hidden")
	logger.Debug("hidden too")
	assert.Empty(t, buf.String())

	logger.Error("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNewLogrusAdapterFromLogger(t *testing.T) {
	assert.NotNil(t, NewLogrusAdapterFromLogger(nil))

	base := logrus.New()
	base.SetLevel(logrus.DebugLevel)
	adapter := NewLogrusAdapterFromLogger(base).(*LogrusAdapter)
	assert.Equal(t, logrus.DebugLevel, adapter.logger.GetLevel())
}

func TestMockLoggerSharesEntriesWithChildren(t *testing.T) {
	mock := NewMockLogger()
	child := mock.WithFields(F(FieldFile, "march.csv")).WithField(FieldRow, 3)
	child.Warn("row skipped", F(FieldReason, "invalid rate"))
	mock.Info("done")

	entries := mock.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0].Level)

	v, ok := entries[0].FieldValue(FieldFile)
	require.True(t, ok)
	assert.Equal(t, "march.csv", v)
	v, _ = entries[0].FieldValue(FieldReason)
	assert.Equal(t, "invalid rate", v)

	_, ok = entries[1].FieldValue(FieldFile)
	assert.False(t, ok, "parent must not inherit child fields")

	assert.True(t, mock.HasEntry("INFO", "done"))
	assert.Len(t, mock.EntriesByLevel("WARN"), 1)

	mock.Clear()
	assert.Empty(t, mock.Entries())
}

func TestMockLoggerWithErrorAndFatal(t *testing.T) {
	mock := NewMockLogger()
	err := errors.New("smtp down")
	mock.WithError(err).Fatalf("cannot send to %s", "a@b.c")

	entries := mock.EntriesByLevel("FATAL")
	require.Len(t, entries, 1)
	assert.Equal(t, "cannot send to a@b.c", entries[0].Message)
	assert.Equal(t, err, entries[0].Error)
}

func TestMockLoggerConcurrent(t *testing.T) {
	mock := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mock.WithField(FieldRow, i).Debug("row")
		}(i)
	}
	wg.Wait()
	assert.Len(t, mock.Entries(), 20)
}
