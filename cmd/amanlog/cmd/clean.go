package cmd

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanlog/internal/logging"
	"github.com/Aman-CERP/amanlog/internal/output"
)

func newCleanCmd(root *rootOptions) *cobra.Command {
	var (
		days   int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete log files older than the retention window",
		Long: `Delete regular files in the log directory whose modification time is
older than the retention window (default: logging.retention_days, or
LOG_RETENTION_DAYS).

The active combined.log and error.log are never deleted, nor are
subdirectories. If another process is sweeping the same directory the run is
skipped. Each deletion is logged at info level.`,
		Example: `  # Delete files older than the configured retention
  amanlog clean

  # Show what a 7 day retention would delete
  amanlog clean --days 7 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClean(cmd, root, days, dryRun)
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention in days (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report files that would be deleted without deleting")

	return cmd
}

func runClean(cmd *cobra.Command, root *rootOptions, days int, dryRun bool) error {
	out := output.New(cmd.OutOrStdout())

	var (
		report logging.SweepReport
		err    error
	)
	if dryRun {
		report, err = dryRunSweep(root, days)
	} else {
		report, err = sweep(cmd, root, days)
	}
	if err != nil {
		return err
	}

	printSweepReport(out, report)
	return nil
}

// sweep deletes through a running facility so deletions are logged and the
// active log files are protected.
func sweep(cmd *cobra.Command, root *rootOptions, days int) (logging.SweepReport, error) {
	f, cfg, closeFn, err := root.openFacility(cmd)
	if err != nil {
		return logging.SweepReport{}, err
	}
	if days == 0 {
		days = cfg.Logging.RetentionDays
	}

	report, sweepErr := f.CleanOldLogs(days)
	if err := closeFn(); err != nil && sweepErr == nil {
		sweepErr = err
	}
	return report, sweepErr
}

// dryRunSweep reports without opening sinks, so a dry run never creates
// files.
func dryRunSweep(root *rootOptions, days int) (logging.SweepReport, error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return logging.SweepReport{}, err
	}
	if days == 0 {
		days = cfg.Logging.RetentionDays
	}

	dir, err := logDirectory(cfg)
	if err != nil {
		return logging.SweepReport{}, err
	}

	active := []string{
		filepath.Join(dir, logging.CombinedLogName),
		filepath.Join(dir, logging.ErrorLogName),
	}
	return logging.SweepDir(dir, days, logging.SweepOptions{
		Now:     time.Now(),
		Protect: active,
		DryRun:  true,
	})
}

func printSweepReport(out *output.Writer, report logging.SweepReport) {
	if report.Skipped {
		out.Warningf("Another process is sweeping %s; skipped", report.Dir)
		return
	}

	verb := "Deleted"
	if report.DryRun {
		verb = "Would delete"
	}
	out.Successf("%s %d file(s) older than %s, kept %d",
		verb, len(report.Deleted), report.Cutoff.Format(logging.TimestampLayout), report.Kept)
	out.Files(report.Dir, report.Deleted)

	for _, fail := range report.Failed {
		out.Errorf("%s: %v", fail.Path, fail.Err)
	}
	if report.LockErr != nil {
		out.Warningf("Swept without the sweep lock: %v", report.LockErr)
	}
}
