package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		expected := NewLogger(TestConfig())
		ctx := ContextWithLogger(t.Context(), expected)

		actual := FromContext(ctx)

		require.NotNil(t, actual)
		assert.Equal(t, expected, actual)
	})

	t.Run("Should return default logger when no logger in context", func(t *testing.T) {
		log := FromContext(t.Context())
		require.NotNil(t, log)
	})

	t.Run("Should return default logger when wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(t.Context(), LoggerCtxKey, "not a logger")
		log := FromContext(ctx)
		require.NotNil(t, log)
	})
}

func TestLogger_Output(t *testing.T) {
	t.Run("Should write structured key values", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf})

		log.Info("task created", "task_id", "123")

		out := buf.String()
		assert.Contains(t, out, "task created")
		assert.Contains(t, out, "task_id")
	})

	t.Run("Should suppress levels below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: WarnLevel, Output: &buf})

		log.Debug("noise")
		log.Info("more noise")

		assert.Empty(t, strings.TrimSpace(buf.String()))
	})

	t.Run("Should carry With fields on child loggers", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf}).With("request_id", "abc")

		log.Info("resolved")

		assert.Contains(t, buf.String(), "request_id")
	})
}
