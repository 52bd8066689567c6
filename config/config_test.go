package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"ROLLING_PERIOD", "HOLDOUT_SEASON", "DASHBOARD_SEASONS", "REFRESH_SCHEDULE", "ENVIRONMENT", "JWT_SECRET"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, 4, cfg.Pipeline.RollingPeriod)
	assert.Equal(t, 2024, cfg.Pipeline.HoldoutSeason)
	assert.Equal(t, []int{2024}, cfg.Pipeline.DashboardSeasons)
	assert.True(t, cfg.IsDevelopment())
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ROLLING_PERIOD", "6")
	t.Setenv("DASHBOARD_SEASONS", "2022, 2023")
	t.Setenv("REFRESH_SCHEDULE", "0 6 * * TUE")
	t.Setenv("DB_ENABLED", "false")

	cfg := FromEnv()

	assert.Equal(t, 6, cfg.Pipeline.RollingPeriod)
	assert.Equal(t, []int{2022, 2023}, cfg.Pipeline.DashboardSeasons)
	assert.False(t, cfg.Database.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadSchedule(t *testing.T) {
	t.Setenv("REFRESH_SCHEDULE", "every tuesday")
	cfg := FromEnv()
	assert.ErrorContains(t, cfg.Validate(), "REFRESH_SCHEDULE")
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	cfg := FromEnv()
	assert.ErrorContains(t, cfg.Validate(), "JWT secret")
}

func TestLoadScoringWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weights:\n  receptions: 1\n"), 0o644))

	w, err := LoadScoringWeights(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, w["receptions"])
	assert.Equal(t, 6.0, w["rushing_tds"])

	def, err := LoadScoringWeights("")
	require.NoError(t, err)
	assert.Equal(t, 0.5, def["receptions"])

	_, err = LoadScoringWeights(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestToLoggingConfigFilePath(t *testing.T) {
	cfg := FromEnv()
	cfg.Logging.EnableFile = true
	cfg.Logging.LogDir = "/tmp/logs"
	cfg.Logging.Prefix = "nfl"
	assert.Equal(t, "/tmp/logs/nfl.log", cfg.ToLoggingConfig().FilePath)
}
