package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
)

func TestDefaultLogDir(t *testing.T) {
	t.Chdir(t.TempDir())

	got := DefaultLogDir()

	assert.Equal(t, "logs", filepath.Base(got))
	assert.True(t, filepath.IsAbs(got))
}

func TestResolveLogDir(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "custom")

	got, err := ResolveLogDir(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)

	got, err = ResolveLogDir("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLogDir(), got)
}

func TestEnsureLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureLogDir(dir))
	assert.DirExists(t, dir)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	err := EnsureLogDir(filepath.Join(blocker, "sub"))
	require.Error(t, err)
	assert.Equal(t, amerrors.ErrCodeLogDirUnavailable, amerrors.GetCode(err))
	assert.Contains(t, amerrors.FormatForCLI(err), "Hint: Set LOG_DIR")
}

func TestParseLogSource(t *testing.T) {
	assert.Equal(t, LogSourceCombined, ParseLogSource(""))
	assert.Equal(t, LogSourceCombined, ParseLogSource("combined"))
	assert.Equal(t, LogSourceError, ParseLogSource("error"))
	assert.Equal(t, LogSourceAll, ParseLogSource("all"))
	assert.Equal(t, LogSourceCombined, ParseLogSource("other"))
}

func TestFindLogFiles(t *testing.T) {
	// Given: a directory with only combined.log
	dir := t.TempDir()
	combined := filepath.Join(dir, CombinedLogName)
	require.NoError(t, os.WriteFile(combined, nil, 0o644))

	// Then: combined and all find it, error finds nothing
	paths, err := FindLogFiles(dir, LogSourceCombined, "")
	require.NoError(t, err)
	assert.Equal(t, []string{combined}, paths)

	paths, err = FindLogFiles(dir, LogSourceAll, "")
	require.NoError(t, err)
	assert.Equal(t, []string{combined}, paths)

	_, err = FindLogFiles(dir, LogSourceError, "")
	assert.Error(t, err)

	_, err = FindLogFiles(dir, LogSource("bogus"), "")
	assert.Error(t, err)
}

func TestFindLogFiles_Explicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	paths, err := FindLogFiles("/nonexistent", LogSourceError, path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)

	_, err = FindLogFiles("", LogSourceCombined, path+".missing")
	assert.Error(t, err)
}
