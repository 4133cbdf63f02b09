package logging

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
)

// writeAged creates a file whose modification time is age before now.
func writeAged(t *testing.T, dir, name string, now time.Time, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))
	mtime := now.Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	sort.Strings(names)
	return names
}

const day = 24 * time.Hour

func TestSweepDir_DeletesOnlyOlderThanCutoff(t *testing.T) {
	// Given: files aged 1, 5, 8 and 10 days
	dir := t.TempDir()
	now := time.Now()
	writeAged(t, dir, "a.log", now, 1*day)
	writeAged(t, dir, "b.log", now, 5*day)
	writeAged(t, dir, "c.log", now, 8*day)
	writeAged(t, dir, "d.log", now, 10*day)

	// When: sweeping with 7 days retention
	report, err := SweepDir(dir, 7, SweepOptions{Now: now})

	// Then: only the 8 and 10 day old files are gone
	require.NoError(t, err)
	assert.Equal(t, []string{"c.log", "d.log"}, baseNames(report.Deleted))
	assert.Equal(t, 2, report.Kept)
	assert.Empty(t, report.Failed)
	assert.True(t, now.Add(-7*day).Equal(report.Cutoff))

	assert.FileExists(t, filepath.Join(dir, "a.log"))
	assert.FileExists(t, filepath.Join(dir, "b.log"))
	assert.NoFileExists(t, filepath.Join(dir, "c.log"))
	assert.NoFileExists(t, filepath.Join(dir, "d.log"))
}

func TestSweepDir_ExactCutoffIsKept(t *testing.T) {
	dir := t.TempDir()
	now := time.Now().Truncate(time.Second)
	writeAged(t, dir, "edge.log", now, 7*day)

	report, err := SweepDir(dir, 7, SweepOptions{Now: now})

	require.NoError(t, err)
	assert.Empty(t, report.Deleted)
	assert.FileExists(t, filepath.Join(dir, "edge.log"))
}

func TestSweepDir_SkipsDirectories(t *testing.T) {
	// Given: an old subdirectory with an old file inside
	dir := t.TempDir()
	now := time.Now()
	sub := filepath.Join(dir, "archive")
	require.NoError(t, os.Mkdir(sub, 0o755))
	inner := writeAged(t, sub, "inner.log", now, 30*day)
	old := now.Add(-30 * day)
	require.NoError(t, os.Chtimes(sub, old, old))

	// When: sweeping
	report, err := SweepDir(dir, 7, SweepOptions{Now: now})

	// Then: neither the directory nor its contents are touched
	require.NoError(t, err)
	assert.Empty(t, report.Deleted)
	assert.DirExists(t, sub)
	assert.FileExists(t, inner)
}

func TestSweepDir_ProtectedPathsSurvive(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	active := writeAged(t, dir, CombinedLogName, now, 30*day)
	writeAged(t, dir, "combined-2024-01-01T00-00-00.000.log", now, 30*day)

	report, err := SweepDir(dir, 7, SweepOptions{Now: now, Protect: []string{active}})

	require.NoError(t, err)
	assert.Equal(t, []string{"combined-2024-01-01T00-00-00.000.log"}, baseNames(report.Deleted))
	assert.FileExists(t, active)
}

func TestSweepDir_DryRun(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	path := writeAged(t, dir, "old.log", now, 30*day)

	report, err := SweepDir(dir, 7, SweepOptions{Now: now, DryRun: true})

	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, []string{"old.log"}, baseNames(report.Deleted))
	assert.FileExists(t, path)
	assert.NoFileExists(t, filepath.Join(dir, sweepLockName))
}

func TestSweepDir_InvalidRetention(t *testing.T) {
	for _, days := range []int{0, -1} {
		_, err := SweepDir(t.TempDir(), days, SweepOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, amerrors.ErrInvalidRetention))
		assert.Equal(t, amerrors.CategoryValidation, amerrors.GetCategory(err))
	}
}

func TestSweepDir_SkippedWhenLockHeld(t *testing.T) {
	// Given: another holder of the sweep lock
	dir := t.TempDir()
	now := time.Now()
	path := writeAged(t, dir, "old.log", now, 30*day)

	other := flock.New(filepath.Join(dir, sweepLockName))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = other.Unlock() }()

	// When: sweeping
	report, err := SweepDir(dir, 7, SweepOptions{Now: now})

	// Then: the sweep is skipped and nothing is deleted
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.FileExists(t, path)
}

func TestSweepDir_LockFileIsNeverDeleted(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	lockPath := writeAged(t, dir, sweepLockName, now, 30*day)

	report, err := SweepDir(dir, 7, SweepOptions{Now: now})

	require.NoError(t, err)
	assert.Empty(t, report.Deleted)
	assert.FileExists(t, lockPath)
}

func TestSweepDir_MissingDirectory(t *testing.T) {
	report, err := SweepDir(filepath.Join(t.TempDir(), "missing"), 7, SweepOptions{})

	// Per-file problems never fail the operation.
	require.NoError(t, err)
	assert.Error(t, report.LockErr)
	require.Len(t, report.Failed, 1)
	assert.NotEqual(t, sweepLockName, filepath.Base(report.Failed[0].Path))
	assert.Empty(t, report.Deleted)
}

// failRemoving makes removeFile fail for the named file until the test ends.
func failRemoving(t *testing.T, name string) {
	t.Helper()
	prev := removeFile
	removeFile = func(path string) error {
		if filepath.Base(path) == name {
			return &os.PathError{Op: "remove", Path: path, Err: os.ErrPermission}
		}
		return prev(path)
	}
	t.Cleanup(func() { removeFile = prev })
}

func TestSweepDir_FailedDeletionDoesNotStopSweep(t *testing.T) {
	// Given: three old files, one of which cannot be removed
	dir := t.TempDir()
	now := time.Now()
	a := writeAged(t, dir, "a.log", now, 30*day)
	stuck := writeAged(t, dir, "b.log", now, 30*day)
	c := writeAged(t, dir, "c.log", now, 30*day)
	failRemoving(t, "b.log")

	// When: sweeping
	report, err := SweepDir(dir, 7, SweepOptions{Now: now})

	// Then: the failure is reported and the other files are still deleted
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, stuck, report.Failed[0].Path)
	assert.Equal(t, amerrors.ErrCodeDeleteFailed, amerrors.GetCode(report.Failed[0].Err))
	assert.True(t, errors.Is(report.Failed[0].Err, os.ErrPermission))
	assert.Equal(t, []string{"a.log", "c.log"}, baseNames(report.Deleted))
	assert.NoFileExists(t, a)
	assert.NoFileExists(t, c)
	assert.FileExists(t, stuck)
}

func TestCleanOldLogs_LogsFailedDeletionAtWarn(t *testing.T) {
	// Given: a facility whose directory holds two old files, one stuck
	sink := newMemorySink("s", LevelDebug)
	cfg := testConfig(t)
	cfg.Now = time.Now
	f, err := NewWithSinks(cfg, sink)
	require.NoError(t, err)

	now := time.Now()
	writeAged(t, cfg.Dir, "gone.log", now, 30*day)
	writeAged(t, cfg.Dir, "stuck.log", now, 30*day)
	failRemoving(t, "stuck.log")

	// When: cleaning
	report, err := f.CleanOldLogs(7)

	// Then: one info record for the deletion, one warn record for the failure
	require.NoError(t, err)
	assert.Len(t, report.Failed, 1)

	var infos, warns []string
	for _, r := range sink.records {
		switch r.Level {
		case LevelInfo:
			infos = append(infos, r.Message)
		case LevelWarn:
			warns = append(warns, r.Message)
		}
	}
	assert.Equal(t, []string{"Deleted old log file: gone.log"}, infos)
	assert.Equal(t, []string{"Failed to delete old log file: stuck.log"}, warns)
}

func TestCleanOldLogs_LockFailureIsNotADeletionFailure(t *testing.T) {
	// Given: a facility whose log directory has disappeared
	sink := newMemorySink("s", LevelDebug)
	cfg := testConfig(t)
	f, err := NewWithSinks(cfg, sink)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(cfg.Dir))

	// When: cleaning
	report, err := f.CleanOldLogs(7)

	// Then: the lock problem gets its own warning
	require.NoError(t, err)
	assert.Error(t, report.LockErr)
	messages := sink.Messages()
	assert.Contains(t, messages, "Retention sweep ran without its lock")
	for _, m := range messages {
		assert.NotContains(t, m, sweepLockName)
	}
}

func TestCleanOldLogs_LogsDeletionsAndKeepsOpenFiles(t *testing.T) {
	// Given: a facility with file sinks, old active files and an old backup
	cfg := testConfig(t)
	cfg.Now = time.Now
	f, err := New(cfg)
	require.NoError(t, err)

	now := time.Now()
	for _, name := range []string{CombinedLogName, ErrorLogName} {
		old := now.Add(-30 * day)
		require.NoError(t, os.Chtimes(filepath.Join(cfg.Dir, name), old, old))
	}
	writeAged(t, cfg.Dir, "combined-2024-01-01T00-00-00.000.log", now, 30*day)

	// When: cleaning with 7 days retention
	report, err := f.CleanOldLogs(7)
	require.NoError(t, err)
	require.NoError(t, f.FlushTimeout(time.Second))

	// Then: only the backup is deleted and the deletion is logged
	assert.Equal(t, []string{"combined-2024-01-01T00-00-00.000.log"}, baseNames(report.Deleted))
	assert.FileExists(t, filepath.Join(cfg.Dir, CombinedLogName))
	assert.FileExists(t, filepath.Join(cfg.Dir, ErrorLogName))

	data, err := os.ReadFile(filepath.Join(cfg.Dir, CombinedLogName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Deleted old log file: combined-2024-01-01T00-00-00.000.log")
}

func TestCleanOldLogs_InvalidRetention(t *testing.T) {
	sink := newMemorySink("s", LevelDebug)
	f, err := NewWithSinks(testConfig(t), sink)
	require.NoError(t, err)

	_, err = f.CleanOldLogs(0)

	require.Error(t, err)
	assert.Equal(t, amerrors.ErrCodeInvalidRetention, amerrors.GetCode(err))
	assert.Empty(t, sink.Lines())
}
