package core_test

import (
	"errors"
	"testing"

	"github.com/intakehq/intake/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	t.Run("Should return string representation of ID", func(t *testing.T) {
		id := core.ID("1207971389476290")
		assert.Equal(t, "1207971389476290", id.String())
	})

	t.Run("Should report zero value for empty IDs", func(t *testing.T) {
		var zero core.ID
		assert.True(t, zero.IsZero())
		assert.False(t, core.MustNewID().IsZero())
	})

	t.Run("Should generate unique IDs", func(t *testing.T) {
		id1, err := core.NewID()
		require.NoError(t, err)
		id2, err := core.NewID()
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2)
	})
}

func TestError(t *testing.T) {
	t.Run("Should wrap the underlying error", func(t *testing.T) {
		inner := errors.New("project not found")
		err := core.NewError(inner, "PROJECT_NOT_FOUND", map[string]any{"name": "Sales"})

		assert.ErrorIs(t, err, inner)
		assert.Contains(t, err.Error(), "PROJECT_NOT_FOUND")
		assert.Equal(t, "Sales", err.Details["name"])
	})

	t.Run("Should render the code alone when no cause is set", func(t *testing.T) {
		err := core.NewError(nil, "MISSING_TITLE", nil)
		assert.Equal(t, "MISSING_TITLE", err.Error())
	})
}
