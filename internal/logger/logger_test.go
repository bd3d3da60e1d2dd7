package logger

import (
	"testing"

	"github.com/limaJavier/lptimetabling/internal/config"
	"github.com/limaJavier/lptimetabling/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	t.Run("Formats and levels", func(t *testing.T) {
		scenarios := []config.LogConfig{
			{Level: "debug", Format: "console"},
			{Level: "warn", Format: "json"},
		}

		for _, scenario := range scenarios {
			//** Act
			logger, err := NewLogger(&scenario)

			//** Assert
			require.Nil(t, err)
			level, _ := zapcore.ParseLevel(scenario.Level)
			assert.True(t, logger.Core().Enabled(level))
			assert.False(t, logger.Core().Enabled(level-1))
		}
	})

	t.Run("Invalid level", func(t *testing.T) {
		_, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"})
		assert.NotNil(t, err)
	})
}

func TestModelFields(t *testing.T) {
	//** Arrange
	input, err := model.InputFromTextFile("../../test/inputs/short_week.txt")
	require.Nil(t, err)
	built, err := model.NewSequentialBuilder(model.Minimize).Build(input)
	require.Nil(t, err)

	//** Act
	fields := ModelFields(built)

	//** Assert
	assert.Len(t, fields, 3+len(model.ConstraintKinds()))
	assert.Equal(t, "variables", fields[0].Key)
	assert.Equal(t, int64(built.Registry().NumVariables()), fields[0].Integer)
	assert.Equal(t, "sorted-weight", fields[len(fields)-1].Key)
}
