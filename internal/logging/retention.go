package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
)

// SweepFailure is a file the sweep could not delete or inspect.
type SweepFailure struct {
	Path string
	Err  error
}

// SweepReport describes one retention sweep.
type SweepReport struct {
	Dir    string
	Cutoff time.Time
	// Deleted lists removed files in directory order.
	Deleted []string
	// Kept counts regular files newer than the cutoff or protected.
	Kept   int
	Failed []SweepFailure
	// Skipped is set when another process holds the sweep lock.
	Skipped bool
	// LockErr is set when the sweep lock could not be taken at all; the
	// sweep then runs unlocked.
	LockErr error
	DryRun  bool
}

// SweepOptions tunes SweepDir.
type SweepOptions struct {
	// Now is the reference time (default: time.Now()).
	Now time.Time
	// Protect lists paths that must never be deleted, such as files held
	// open by a running facility.
	Protect []string
	// DryRun reports what would be deleted without deleting. A dry run
	// neither takes the sweep lock nor creates its file.
	DryRun bool
}

// removeFile deletes one swept file.
var removeFile = os.Remove

// CleanOldLogs deletes regular files in the log directory whose modification
// time is strictly before now - retentionDays days. Files held open by this
// facility's sinks and subdirectories are never touched. Each deletion is
// logged at info; each failure at warn and does not stop the sweep.
//
// The only error is a non-positive retentionDays.
func (f *Facility) CleanOldLogs(retentionDays int) (SweepReport, error) {
	report, err := SweepDir(f.dir, retentionDays, SweepOptions{
		Now:     f.now(),
		Protect: f.openPaths(),
	})
	if err != nil {
		return report, err
	}

	if report.Skipped {
		f.Debug("logging", "Retention sweep skipped; another process holds the lock")
		return report, nil
	}
	if report.LockErr != nil {
		f.Warn("logging", "Retention sweep ran without its lock",
			Metadata{"error": report.LockErr})
	}
	for _, path := range report.Deleted {
		f.Info("logging", fmt.Sprintf("Deleted old log file: %s", filepath.Base(path)),
			Metadata{"path": path})
	}
	for _, fail := range report.Failed {
		f.Warn("logging", fmt.Sprintf("Failed to delete old log file: %s", filepath.Base(fail.Path)),
			Metadata{"path": fail.Path, "error": fail.Err})
	}
	return report, nil
}

// SweepDir runs a retention sweep over dir without a facility.
func SweepDir(dir string, retentionDays int, opts SweepOptions) (SweepReport, error) {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	report := SweepReport{Dir: dir, DryRun: opts.DryRun}

	if retentionDays <= 0 {
		return report, amerrors.New(amerrors.ErrCodeInvalidRetention,
			fmt.Sprintf("retention days must be positive, got %d", retentionDays), nil)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	report.Cutoff = now.Add(-time.Duration(retentionDays) * 24 * time.Hour)

	lock := newDirLock(dir)
	if !opts.DryRun {
		acquired, err := lock.TryLock()
		switch {
		case err != nil:
			// Without a lock file (read-only or missing dir) the sweep still
			// runs; any real problem shows up as per-file failures below.
			report.LockErr = err
		case !acquired:
			report.Skipped = true
			return report, nil
		}
		defer func() { _ = lock.Unlock() }()
	}

	protected := map[string]bool{}
	for _, p := range opts.Protect {
		if abs, err := filepath.Abs(p); err == nil {
			protected[abs] = true
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		report.Failed = append(report.Failed, SweepFailure{Path: dir, Err: err})
		return report, nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		if !info.Mode().IsRegular() || path == lock.path {
			continue
		}
		if protected[path] || !info.ModTime().Before(report.Cutoff) {
			report.Kept++
			continue
		}

		if opts.DryRun {
			report.Deleted = append(report.Deleted, path)
			continue
		}
		if err := removeFile(path); err != nil {
			deleteErr := amerrors.New(amerrors.ErrCodeDeleteFailed,
				fmt.Sprintf("could not delete %s", path), err).WithDetail("path", path)
			report.Failed = append(report.Failed, SweepFailure{Path: path, Err: deleteErr})
			continue
		}
		report.Deleted = append(report.Deleted, path)
	}

	return report, nil
}
