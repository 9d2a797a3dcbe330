package utils_test

import (
	"testing"

	"github.com/cairn-systems/starkgo/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLogLevel(t *testing.T) {
	levels := map[utils.LogLevel]string{
		utils.DEBUG: "debug",
		utils.INFO:  "info",
		utils.WARN:  "warn",
		utils.ERROR: "error",
	}

	for level, name := range levels {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, name, level.String())

			var parsed utils.LogLevel
			require.NoError(t, parsed.UnmarshalText([]byte(name)))
			assert.Equal(t, level, parsed)

			marshalled, err := yaml.Marshal(level)
			require.NoError(t, err)
			assert.Equal(t, name+"\n", string(marshalled))
		})
	}

	t.Run("unknown level rejected", func(t *testing.T) {
		var parsed utils.LogLevel
		assert.ErrorIs(t, parsed.Set("trace"), utils.ErrUnknownLogLevel)
	})
}

func TestNewZapLogger(t *testing.T) {
	log, err := utils.NewZapLogger(utils.INFO, false)
	require.NoError(t, err)
	log.Infow("Logger works", "key", "value")
}
