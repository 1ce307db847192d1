package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	config, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
	assert.FileExists(t, path)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeFile(t, `
[engine]
min_word_length = 5
tokenizer = "ascii"
purge_delay_ms = 250

[cli]
color = false
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, config.Engine.MinWordLength)
	assert.Equal(t, "ascii", config.Engine.Tokenizer)
	assert.Equal(t, 250*time.Millisecond, config.PurgeDelay())
	assert.False(t, config.CLI.Color)
	assert.Equal(t, DefaultConfig().Layout, config.Layout)
}

func TestLoadConfigTypeMismatchRecoversSections(t *testing.T) {
	// min_word_length has the wrong type, so the strict decode fails
	path := writeFile(t, `
[engine]
min_word_length = "five"
tokenizer = "ascii"

[layout]
row_height = 2.5
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Engine.MinWordLength, config.Engine.MinWordLength)
	assert.Equal(t, "ascii", config.Engine.Tokenizer)
	assert.InDelta(t, 2.5, config.Layout.RowHeight, 1e-9)
}

func TestLoadConfigGarbage(t *testing.T) {
	path := writeFile(t, "this is [not toml")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestSanitize(t *testing.T) {
	path := writeFile(t, `
[engine]
min_word_length = 0
purge_delay_ms = -5

[layout]
row_height = -1.0

[server]
max_text_bytes = 0
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1, config.Engine.MinWordLength)
	assert.Equal(t, 400, config.Engine.PurgeDelayMs)
	assert.InDelta(t, 3.0, config.Layout.RowHeight, 1e-9)
	assert.Equal(t, 1<<20, config.Server.MaxTextBytes)
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	config := DefaultConfig()

	minLen := 4
	mode := "unicode"
	require.NoError(t, config.Update(path, &minLen, &mode, nil))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Engine.MinWordLength)
	assert.Equal(t, "unicode", loaded.Engine.Tokenizer)
	assert.Equal(t, 400, loaded.Engine.PurgeDelayMs)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeFile(t, "[engine]\nmin_word_length = 7\n")

	config, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 7, config.Engine.MinWordLength)
}

func TestGetConfigDirOrder(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", AppDir), dir)

	// a file where ~/.config should be leaves the macOS location
	home = t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".config"), nil, 0644))

	dir, err = GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Library", "Application Support", AppDir), dir)

	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), path)
}
