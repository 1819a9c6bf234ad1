package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30*24*time.Hour, cfg.Planning.Horizon)
	assert.Equal(t, 24*time.Hour, cfg.Planning.ReminderLookahead)
	assert.Equal(t, []int{9, 10, 14, 15, 16, 17}, cfg.Planning.DefaultHours)
	assert.False(t, cfg.TextGen.Enabled())
	assert.Equal(t, 60*time.Second, cfg.TextGen.Timeout)
	assert.Equal(t, "0 * * * *", cfg.Scheduler.DeadlineSpec)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HUGGINGFACE_API_KEY", "hf_test")
	t.Setenv("PLANNING_PREFERRED_HOURS", "8, 20, 25, x")
	t.Setenv("TEXTGEN_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.TextGen.Enabled())
	assert.Equal(t, []int{8, 20}, cfg.Planning.DefaultHours)
	assert.Equal(t, 60*time.Second, cfg.TextGen.Timeout)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
