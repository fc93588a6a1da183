package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.False(t, cfg.App.Production())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "4258", cfg.Geonorge.EPSG)
	assert.Equal(t, 30, cfg.Geonorge.TimeoutSecs)
	assert.Equal(t, "placelookup/1.0", cfg.Geonorge.UserAgent)
	assert.Equal(t, ElevationHoydedata, cfg.Geonorge.ElevationBackend)
	assert.Equal(t, PlacesStedsnavn, cfg.Geonorge.PlacesBackend)
	assert.Equal(t, "https://ws.geonorge.no/hoydedata/v1", cfg.Geonorge.ElevationURL)
	assert.Equal(t, "https://ws.geonorge.no/stedsnavn/v1", cfg.Geonorge.PlacesURL)
	assert.Equal(t, "https://ws.geonorge.no/kommuneinfo/v1", cfg.Geonorge.MunicipalityURL)
	assert.InDelta(t, 0.01, cfg.Geonorge.SSRRadiusDeg, 1e-9)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 10, cfg.Search.EnrichConcurrency)
	assert.True(t, cfg.Monitoring.Enabled)
	assert.Equal(t, 300, cfg.Monitoring.CheckIntervalSecs)
	assert.InDelta(t, 0.5, cfg.Monitoring.FailureRateThreshold, 1e-9)
	assert.Equal(t, 5, cfg.Monitoring.MinLookups)
	assert.Empty(t, cfg.Monitoring.WebhookURL)

	assert.NoError(t, cfg.Validate("lookup"))
	assert.NoError(t, cfg.Validate("serve"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
app:
  env: production
log:
  level: debug
  format: console
server:
  port: 9090
geonorge:
  elevation_backend: wps
  places_backend: ssr
  ssr_radius_deg: 0.05
search:
  default_limit: 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.App.Production())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ElevationWPS, cfg.Geonorge.ElevationBackend)
	assert.Equal(t, PlacesSSR, cfg.Geonorge.PlacesBackend)
	assert.InDelta(t, 0.05, cfg.Geonorge.SSRRadiusDeg, 1e-9)
	assert.Equal(t, 25, cfg.Search.DefaultLimit)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Search.EnrichConcurrency)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
geonorge:
  epsg: "25833"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("PLACELOOKUP_LOG_LEVEL", "warn")
	t.Setenv("PLACELOOKUP_GEONORGE_EPSG", "4326")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "4326", cfg.Geonorge.EPSG)
}

func TestLoadMonitoringFromEnv(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PLACELOOKUP_MONITORING_ENABLED", "false")
	t.Setenv("PLACELOOKUP_MONITORING_WEBHOOK_URL", "https://hooks.example.no/alerts")
	t.Setenv("PLACELOOKUP_MONITORING_CHECK_INTERVAL_SECS", "60")
	t.Setenv("PLACELOOKUP_MONITORING_FAILURE_RATE_THRESHOLD", "0.25")
	t.Setenv("PLACELOOKUP_MONITORING_MIN_LOOKUPS", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Monitoring.Enabled)
	assert.Equal(t, "https://hooks.example.no/alerts", cfg.Monitoring.WebhookURL)
	assert.Equal(t, 60, cfg.Monitoring.CheckIntervalSecs)
	assert.InDelta(t, 0.25, cfg.Monitoring.FailureRateThreshold, 1e-9)
	assert.Equal(t, 20, cfg.Monitoring.MinLookups)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PLACELOOKUP_SERVER_PORT=7070\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PLACELOOKUP_SERVER_PORT") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadEnvOverridesDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PLACELOOKUP_SERVER_PORT=7070\n"), 0o644))
	t.Setenv("PLACELOOKUP_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerAutoFormat(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "info"}))
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func TestResolveFormat(t *testing.T) {
	assert.Equal(t, "console", resolveFormat("", true))
	assert.Equal(t, "json", resolveFormat("", false))
	assert.Equal(t, "json", resolveFormat("json", true))
	assert.Equal(t, "console", resolveFormat("console", false))
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Geonorge.ElevationBackend = ElevationHoydedata
	cfg.Geonorge.PlacesBackend = PlacesStedsnavn
	cfg.Geonorge.TimeoutSecs = 30
	cfg.Geonorge.SSRRadiusDeg = 0.01
	cfg.Search.DefaultLimit = 10
	cfg.Search.EnrichConcurrency = 10
	cfg.Monitoring.Enabled = true
	cfg.Monitoring.FailureRateThreshold = 0.5
	return cfg
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	// The port is irrelevant to one-shot lookups.
	assert.NoError(t, cfg.Validate("lookup"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateBackends(t *testing.T) {
	cfg := validDefaults()
	cfg.Geonorge.ElevationBackend = "lidar"
	cfg.Geonorge.PlacesBackend = "osm"

	err := cfg.Validate("lookup")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "geonorge.elevation_backend must be hoydedata or wps")
	assert.Contains(t, err.Error(), "geonorge.places_backend must be stedsnavn or ssr")
}

func TestValidateSSRRadius(t *testing.T) {
	cfg := validDefaults()
	cfg.Geonorge.SSRRadiusDeg = 0
	assert.NoError(t, cfg.Validate("lookup"))

	cfg.Geonorge.PlacesBackend = PlacesSSR
	err := cfg.Validate("lookup")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ssr_radius_deg")
}

func TestValidateSearchBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Search.EnrichConcurrency = 0
	err := cfg.Validate("lookup")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "enrich_concurrency must be between 1 and 50")

	cfg.Search.EnrichConcurrency = 51
	assert.Error(t, cfg.Validate("lookup"))

	cfg.Search.EnrichConcurrency = 50
	assert.NoError(t, cfg.Validate("lookup"))

	cfg.Search.DefaultLimit = 0
	err = cfg.Validate("lookup")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search.default_limit")
}

func TestValidateTimeout(t *testing.T) {
	cfg := validDefaults()
	cfg.Geonorge.TimeoutSecs = 0
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timeout_secs")
}

func TestValidateMonitoringThreshold(t *testing.T) {
	cfg := validDefaults()
	cfg.Monitoring.FailureRateThreshold = 1.5
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failure_rate_threshold")

	cfg.Monitoring.Enabled = false
	assert.NoError(t, cfg.Validate("serve"))
}
