package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuakami/pollwatcher"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "pollwatcher.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "nested: true\ninclude: [\".py\", \"\"]\n")

	f, err := Load(path)
	require.NoError(t, err)
	assert.True(t, f.Nested)
	assert.Equal(t, []string{".py", ""}, f.Include)
	assert.Equal(t, 0.5, f.Interval)
	assert.True(t, f.Report)
	assert.Equal(t, "py", f.Prefix)
	assert.Equal(t, "info", f.Logger.Level)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"both filters":   "include: [.py]\nexclude: [.txt]\n",
		"zero interval":  "interval: 0\n",
		"bad log level":  "logger:\n  level: loud\n",
		"bad log format": "logger:\n  format: xml\n",
		"not yaml":       "root: [unterminated\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), body))
			assert.Error(t, err)
		})
	}
}

func TestLoadEmptyOppositeFilter(t *testing.T) {
	t.Run("include with empty exclude", func(t *testing.T) {
		f, err := Load(writeConfig(t, t.TempDir(), "include: [.py]\nexclude: []\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{".py"}, f.Include)
		assert.Empty(t, f.Exclude)

		cfg, err := f.Watcher()
		require.NoError(t, err)
		assert.Equal(t, []string{".py"}, cfg.Filter.Include)
	})

	t.Run("exclude with empty include", func(t *testing.T) {
		f, err := Load(writeConfig(t, t.TempDir(), "include: []\nexclude: [.txt]\n"))
		require.NoError(t, err)
		assert.Empty(t, f.Include)
		assert.Equal(t, []string{".txt"}, f.Exclude)

		cfg, err := f.Watcher()
		require.NoError(t, err)
		assert.Equal(t, []string{".txt"}, cfg.Filter.Exclude)
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateConflictingFilters(t *testing.T) {
	f := Default()
	f.Include = []string{".py"}
	f.Exclude = []string{".txt"}
	assert.ErrorIs(t, f.Validate(), pollwatcher.ErrConflictingFilters)
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	f := Default()
	f.Root = dir
	f.Action = "run.py"
	f.Nested = true
	f.Exclude = []string{".log"}
	f.Interval = 1.25
	f.Report = false
	f.Args = "--x 1"
	f.Prefix = "python3"

	cfg, err := f.Watcher()
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, filepath.Join(wd, "run.py"), cfg.ActionPath)
	assert.Equal(t, pollwatcher.ModeNested, cfg.Mode)
	assert.Equal(t, []string{".log"}, cfg.Filter.Exclude)
	assert.Equal(t, 1250*time.Millisecond, cfg.Interval)
	assert.False(t, cfg.Report)
	assert.Equal(t, "--x 1", cfg.ActionArgs)
	assert.Equal(t, "python3", cfg.Prefix)
}

func TestDefaultWatcherResolvesWorkingDirectory(t *testing.T) {
	cfg, err := Default().Watcher()
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, cfg.Root)
	assert.Equal(t, pollwatcher.ModeFlat, cfg.Mode)
	assert.Empty(t, cfg.ActionPath)
}
