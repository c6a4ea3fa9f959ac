package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinahub/treinahub/core/config"
)

func TestLoad(t *testing.T) {
	// Each subtest uses its own config type because parsed values are
	// cached per type for the life of the process.

	t.Run("applies defaults", func(t *testing.T) {
		type cfgDefaults struct {
			Addr string `env:"CONFIG_TEST_ADDR" envDefault:":8080"`
		}

		var cfg cfgDefaults
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":8080", cfg.Addr)
	})

	t.Run("reads from the environment", func(t *testing.T) {
		type cfgEnv struct {
			Name string `env:"CONFIG_TEST_NAME"`
		}

		t.Setenv("CONFIG_TEST_NAME", "treinahub")

		var cfg cfgEnv
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "treinahub", cfg.Name)
	})

	t.Run("fails on missing required values", func(t *testing.T) {
		type cfgRequired struct {
			Secret string `env:"CONFIG_TEST_SECRET,required"`
		}

		var cfg cfgRequired
		assert.Error(t, config.Load(&cfg))
	})

	t.Run("caches the first parse per type", func(t *testing.T) {
		type cfgCached struct {
			Value string `env:"CONFIG_TEST_CACHED"`
		}

		t.Setenv("CONFIG_TEST_CACHED", "first")
		var cfg cfgCached
		require.NoError(t, config.Load(&cfg))
		require.Equal(t, "first", cfg.Value)

		t.Setenv("CONFIG_TEST_CACHED", "second")
		var again cfgCached
		require.NoError(t, config.Load(&again))
		assert.Equal(t, "first", again.Value, "later loads return the cached value")
	})

	t.Run("rejects a nil pointer", func(t *testing.T) {
		assert.Error(t, config.Load[struct{}](nil))
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		type cfgMust struct {
			Token string `env:"CONFIG_TEST_MUST_TOKEN,required"`
		}

		assert.Panics(t, func() {
			var cfg cfgMust
			config.MustLoad(&cfg)
		})
	})
}
