package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesmith/webcore/core/config"
)

func TestLoad_ParsesEnvironment(t *testing.T) {
	type serverConfig struct {
		Host    string        `env:"TEST_CFG_HOST" envDefault:"localhost"`
		Port    int           `env:"TEST_CFG_PORT" envDefault:"8080"`
		Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"5s"`
	}

	t.Setenv("TEST_CFG_HOST", "example.com")
	t.Setenv("TEST_CFG_PORT", "9000")

	var cfg serverConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Timeout, "unset variables fall back to envDefault")
}

func TestLoad_CachesPerType(t *testing.T) {
	type cachedConfig struct {
		Value string `env:"TEST_CFG_CACHED" envDefault:"initial"`
	}

	t.Setenv("TEST_CFG_CACHED", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, "first", first.Value)

	// Environment changes after the first load are invisible.
	t.Setenv("TEST_CFG_CACHED", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)
}

func TestLoad_RequiredVariableMissing(t *testing.T) {
	type strictConfig struct {
		Secret string `env:"TEST_CFG_ABSENT_SECRET,required"`
	}

	var cfg strictConfig
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParseConfig)
}

func TestLoad_InvalidTarget(t *testing.T) {
	cases := []struct {
		name   string
		target any
	}{
		{"nil", nil},
		{"non-pointer", struct{}{}},
		{"pointer to non-struct", new(int)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := config.Load(tc.target)
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrInvalidConfigType)
		})
	}
}

func TestMustLoad_PanicsOnFailure(t *testing.T) {
	type brokenConfig struct {
		Missing string `env:"TEST_CFG_MUST_MISSING,required"`
	}

	assert.Panics(t, func() {
		config.MustLoad(&brokenConfig{})
	})
}

func TestMustLoad_Succeeds(t *testing.T) {
	type okConfig struct {
		Name string `env:"TEST_CFG_OK_NAME" envDefault:"webcore"`
	}

	var cfg okConfig
	assert.NotPanics(t, func() {
		config.MustLoad(&cfg)
	})
	assert.Equal(t, "webcore", cfg.Name)
}
