package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		content := `
searchPath:
  - ./lib
  - ./deps.zip
interpreter: /usr/bin/python3.8
target:
  version: "3.8"
  platform: win32
hostVersion: "3.8"
exclude:
  - "*.pyc"
  - tests
overridesDir: ./overrides
log:
  timestamps: false
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, []string{"./lib", "./deps.zip"}, cfg.SearchPath)
		assert.Equal(t, "/usr/bin/python3.8", cfg.Interpreter)
		assert.Equal(t, "3.8", cfg.Target.Version)
		assert.Equal(t, "win32", cfg.Target.Platform)
		assert.Equal(t, "3.8", cfg.HostVersion)
		assert.Equal(t, []string{"*.pyc", "tests"}, cfg.Exclude)
		assert.Equal(t, "./overrides", cfg.OverridesDir)
		require.NotNil(t, cfg.Log.Timestamps)
		assert.False(t, *cfg.Log.Timestamps)
	})

	t.Run("returns empty config for missing file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "nonexistent.yaml")

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Empty(t, cfg.Target.Version)
		assert.Empty(t, cfg.SearchPath)
	})

	t.Run("env vars override file values", func(t *testing.T) {
		t.Setenv("STAGER_TARGET_PLATFORM", "linux_x86_64")
		t.Setenv("STAGER_HOST_VERSION", "3.9")

		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("target:\n  platform: win32\n  version: \"3.8\"\n"), 0o644))

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "linux_x86_64", cfg.Target.Platform)
		assert.Equal(t, "3.8", cfg.Target.Version)
		assert.Equal(t, "3.9", cfg.HostVersion)
	})

	t.Run("file loader ignores env", func(t *testing.T) {
		t.Setenv("STAGER_TARGET_PLATFORM", "linux_x86_64")

		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("target:\n  platform: win32\n"), 0o644))

		cfg, err := NewFileLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "win32", cfg.Target.Platform)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("target: [unclosed"), 0o644))

		_, err := NewLoader().Load(configFile)
		assert.Error(t, err)
	})
}

func TestConfigFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	exists, err := ConfigFileExists(configFile)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(configFile, nil, 0o644))
	exists, err = ConfigFileExists(configFile)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "3.8", cfg.Target.Version)
	assert.Equal(t, "win_amd64", cfg.Target.Platform)
	assert.Contains(t, cfg.Exclude, "__pycache__")
}
