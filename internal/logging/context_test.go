package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/Amund211/milestones/internal/logging"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var result []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		delete(line, "time")
		result = append(result, line)
	}
	buf.Reset()
	return result
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	t.Run("returns the added logger", func(t *testing.T) {
		t.Parallel()

		logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
		ctx := logging.AddToContext(t.Context(), logger)

		require.Same(t, logger, logging.FromContext(ctx))
	})

	t.Run("falls back without a logger", func(t *testing.T) {
		t.Parallel()

		require.NotNil(t, logging.FromContext(t.Context()))
	})
}

func TestAddMetaToContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rootLogger := slog.New(slog.NewJSONHandler(&buf, nil)).With(slog.String("port", "events"))
	root := logging.AddToContext(t.Context(), rootLogger)

	withDefinition := logging.AddMetaToContext(root, slog.String("definition", "firstLaunch"))
	logging.FromContext(withDefinition).InfoContext(withDefinition, "Registered achievement")
	require.Equal(t, []map[string]any{{
		"level":      "INFO",
		"msg":        "Registered achievement",
		"port":       "events",
		"definition": "firstLaunch",
	}}, lines(t, &buf))

	overridden := logging.AddMetaToContext(withDefinition, slog.String("definition", "flagsPlanted"), slog.Int("events", 3))
	logging.FromContext(overridden).InfoContext(overridden, "Replayed")
	require.Equal(t, []map[string]any{{
		"level":      "INFO",
		"msg":        "Replayed",
		"port":       "events",
		"definition": "flagsPlanted",
		"events":     float64(3),
	}}, lines(t, &buf))

	// The parent context keeps its own logger
	logging.FromContext(root).InfoContext(root, "Untouched")
	require.Equal(t, []map[string]any{{
		"level": "INFO",
		"msg":   "Untouched",
		"port":  "events",
	}}, lines(t, &buf))
}
