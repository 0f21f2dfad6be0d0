package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FASTTRACK_TOKEN", "")

	m := NewManager(dir)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 10, cfg.QueueCapacity)
	assert.Empty(t, cfg.Token, "unset token variable means no token")
	require.NoError(t, cfg.Validate())

	assert.FileExists(t, filepath.Join(dir, ".fasttrack", "config.json"))
	assert.FileExists(t, filepath.Join(dir, ".fasttrack", ".gitignore"))
	assert.Equal(t, filepath.Join(dir, ".fasttrack", "console.log"), m.LogPath())
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GATE_HOST", "gate.example.edu")
	t.Setenv("FASTTRACK_TOKEN", "secret-token")
	writeConfig(t, dir, map[string]any{
		"api_base_url": "https://${GATE_HOST}/api",
		"token":        "$FASTTRACK_TOKEN",
	})

	m := NewManager(dir)
	require.NoError(t, m.Load())

	assert.Equal(t, "https://gate.example.edu/api", m.Get().APIBaseURL)
	assert.Equal(t, "secret-token", m.Get().Token)
	assert.Equal(t, 300, m.Get().DebounceMS, "missing fields keep defaults")
}

func TestLoad_DotenvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FASTTRACK_TOKEN", "from-env")
	t.Setenv("GATE_DOTENV_HOST", "")
	require.NoError(t, os.Unsetenv("GATE_DOTENV_HOST"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("FASTTRACK_TOKEN=from-dotenv\nGATE_DOTENV_HOST=dotenv.example.edu\n"), 0o600))
	writeConfig(t, dir, map[string]any{"api_base_url": "https://${GATE_DOTENV_HOST}/api"})

	m := NewManager(dir)
	require.NoError(t, m.Load())

	assert.Equal(t, "from-env", m.Get().Token)
	assert.Equal(t, "https://dotenv.example.edu/api", m.Get().APIBaseURL)
}

func TestSave_KeepsReferencesUnexpanded(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FASTTRACK_TOKEN", "secret-token")

	m := NewManager(dir)
	require.NoError(t, m.Load())
	require.NoError(t, m.Set("queue_capacity", "12"))

	data, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-token")
	assert.Contains(t, string(data), "${FASTTRACK_TOKEN}")
	assert.Contains(t, string(data), `"queue_capacity": 12`)
}

func TestSet(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	require.NoError(t, m.Load())

	require.NoError(t, m.Set("theme", "night"))
	require.NoError(t, m.Set("debug", "true"))
	assert.Equal(t, "night", m.Get().Theme)
	assert.True(t, m.Get().Debug)

	assert.ErrorContains(t, m.Set("nope", "1"), "unknown config key")
	assert.ErrorContains(t, m.Set("page_size", "ten"), "must be a number")
	assert.ErrorContains(t, m.Set("queue_capacity", "0"), "queue_capacity")
	assert.Equal(t, 10, m.Get().QueueCapacity, "rejected value not applied")

	reloaded := NewManager(dir)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, "night", reloaded.Get().Theme)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIBaseURL = "not a url"
	cfg.Theme = "neon"
	cfg.DebounceMS = 10

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_base_url")
	assert.Contains(t, err.Error(), "theme")
	assert.Contains(t, err.Error(), "debounce_ms")
}

func TestLoad_BadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".fasttrack"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".fasttrack", "config.json"), []byte("{"), 0o600))

	err := NewManager(dir).Load()
	assert.ErrorContains(t, err, "failed to parse config JSON")
}

func TestNewManagerForFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom", "gate.json")

	m := NewManagerForFile(dir, path)
	require.NoError(t, m.Load())
	assert.FileExists(t, path)
}

func writeConfig(t *testing.T, dir string, values map[string]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".fasttrack"), 0o755))
	data, err := json.Marshal(values)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".fasttrack", "config.json"), data, 0o600))
}
