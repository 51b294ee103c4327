package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, Duration(500*time.Millisecond), cfg.SaveDelay)
	assert.Equal(t, "WARN", cfg.LogLevel)
	assert.Empty(t, cfg.Calendar)
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	want := &Config{
		Backend:   BackendSQLite,
		DataDir:   "/tmp/tb",
		Calendar:  "Tasks",
		SaveDelay: Duration(time.Second),
		LogLevel:  "DEBUG",
		LogFormat: "json",
	}
	require.NoError(t, SaveFile(path, want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"save_delay": "1s"`)

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadFileKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"calendar":"Work","save_delay":250}`), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Work", cfg.Calendar)
	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, Duration(250*time.Millisecond), cfg.SaveDelay)
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0600))
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TASKBOARD_BACKEND":    "memory",
		"TASKBOARD_CALENDAR":   "Chores",
		"TASKBOARD_SAVE_DELAY": "0s",
		"TASKBOARD_LOG_LEVEL":  "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "Chores", cfg.Calendar)
	assert.Equal(t, Duration(0), cfg.SaveDelay)
	assert.Equal(t, "WARN", cfg.LogLevel)

	env["TASKBOARD_SAVE_DELAY"] = "soon"
	assert.Error(t, cfg.ApplyEnv(lookup))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Backend = "SQLite"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendSQLite, cfg.Backend)

	cfg.Backend = "redis"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownBackend)
}

func TestSaveWritesDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TASKBOARD_CALENDAR", "FromEnv")

	cfg, err := LoadSaved()
	require.NoError(t, err)
	assert.Empty(t, cfg.Calendar, "env overrides stay out of the saved file")

	cfg.Calendar = "Chores"
	require.NoError(t, Save(cfg))
	assert.FileExists(t, filepath.Join(home, ".config", "taskboard", "config.json"))

	saved, err := LoadSaved()
	require.NoError(t, err)
	assert.Equal(t, "Chores", saved.Calendar)
}
