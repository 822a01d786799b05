package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: http://10.0.4.66:8849
timeout: 3s
cache_ttl: 1m
comparison_camera:
  position: [0, 0, 80]
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.4.66:8849", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, [3]float64{0, 0, 80}, cfg.ComparisonCamera.Position)
	// untouched fields keep their defaults
	assert.Equal(t, 50, cfg.CacheMaxEntries)
	assert.Equal(t, [3]float64{0, 0, 15}, cfg.SingleCamera.Position)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [oops"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TURBINE_BASE_URL", "http://backend:9000")
	t.Setenv("TURBINE_TIMEOUT", "250ms")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
}

func TestLoad_BadEnvTimeout(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TURBINE_TIMEOUT", "soon")

	_, err := Load("")
	assert.ErrorContains(t, err, "TURBINE_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = " "
	cfg.Timeout = 0
	cfg.MaxRetries = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "max_retries")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
