package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuakami/pollwatcher"
)

// waitChanged 反复调用 Changed，直到检测到变化或超时
func waitChanged(t *testing.T, r *Reloader) (pollwatcher.ConfigWatcher, error) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		cfg, changed, err := r.Changed()
		if err != nil || changed {
			return cfg, err
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timeout waiting for configuration change")
	return pollwatcher.ConfigWatcher{}, nil
}

func TestReloaderDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "root: "+dir+"\n")

	r, err := NewReloader(path, func(f *File) { f.Prefix = "python3" })
	require.NoError(t, err)
	defer r.Close()

	_, changed, err := r.Changed()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("root: "+dir+"\nnested: true\n"), 0644))

	cfg, err := waitChanged(t, r)
	require.NoError(t, err)
	assert.Equal(t, pollwatcher.ModeNested, cfg.Mode)
	assert.Equal(t, "python3", cfg.Prefix)
}

func TestReloaderIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "root: "+dir+"\n")

	r, err := NewReloader(path, nil)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, os.WriteFile(path+".bak", []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)

	_, changed, err := r.Changed()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReloaderInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "root: "+dir+"\n")

	r, err := NewReloader(path, nil)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, os.WriteFile(path, []byte("include: [.py]\nexclude: [.txt]\n"), 0644))

	_, err = waitChanged(t, r)
	assert.ErrorIs(t, err, pollwatcher.ErrConflictingFilters)
}
