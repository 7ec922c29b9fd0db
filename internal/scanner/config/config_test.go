package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/haclabs/haccare/internal/flagx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scanner.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ".", c.BaseDir)
	assert.Equal(t, "records.xlsx", c.IndexFile)
	assert.False(t, c.LegacyPaths)
	assert.False(t, c.Debug)
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv(flagx.ConfigEnv, "")
	path := writeTempJSON(t, map[string]any{
		"base_dir":     "/srv/haccare",
		"index_file":   "index.xlsx",
		"legacy_paths": true,
	})

	t.Run("json only", func(t *testing.T) {
		c, err := LoadConfig([]string{"-c", path})
		require.NoError(t, err)
		assert.Equal(t, "/srv/haccare", c.BaseDir)
		assert.Equal(t, "index.xlsx", c.IndexFile)
		assert.True(t, c.LegacyPaths)
	})

	t.Run("flags override json", func(t *testing.T) {
		c, err := LoadConfig([]string{"-config=" + path, "-b", "/tmp/ward", "-l=false", "-v"})
		require.NoError(t, err)
		assert.Equal(t, "/tmp/ward", c.BaseDir)
		assert.Equal(t, "index.xlsx", c.IndexFile)
		assert.False(t, c.LegacyPaths)
		assert.True(t, c.Debug)
	})

	t.Run("env config", func(t *testing.T) {
		t.Setenv(flagx.ConfigEnv, path)
		c, err := LoadConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, "/srv/haccare", c.BaseDir)
	})

	t.Run("foreign flags ignored", func(t *testing.T) {
		c, err := LoadConfig([]string{"-a", ":8080", "-x", "other.xlsx"})
		require.NoError(t, err)
		assert.Equal(t, "other.xlsx", c.IndexFile)
	})
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv(flagx.ConfigEnv, "")

	_, err := LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorContains(t, err, "read config")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = LoadConfig([]string{"-c", bad})
	require.ErrorContains(t, err, "parse config")
}

func TestIndexOptions(t *testing.T) {
	c := Config{BaseDir: "/b", IndexFile: "i.xlsx", LegacyPaths: true}
	o := c.IndexOptions()
	assert.Equal(t, "/b", o.BaseDir)
	assert.Equal(t, "i.xlsx", o.File)
	assert.True(t, o.LegacyPaths)
}
