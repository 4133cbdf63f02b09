package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/amanlog/internal/logging"
)

type logsOptions struct {
	follow   bool
	lines    int
	level    string
	category string
	noColor  bool
	logFile  string
	source   string
}

func newLogsCmd(root *rootOptions) *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View log files",
		Long: `View and tail the log files in the log directory.

By default, shows the last 50 entries of combined.log. Use -f to follow new
entries in real-time (like 'tail -f'); following survives rotation.

Log Sources:
  combined - every record (combined.log)
  error    - error records only (error.log)
  all      - both files merged by timestamp`,
		Example: `  amanlog logs                    # Last 50 entries
  amanlog logs -n 200              # Last 200 entries
  amanlog logs -f                  # Follow in real-time
  amanlog logs --level warn        # Warnings and errors only
  amanlog logs --category db       # Only the "db" category
  amanlog logs --source all -f     # Follow both files`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of entries to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level to show (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.category, "category", "", "Only show this category")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file (overrides --source)")
	cmd.Flags().StringVar(&opts.source, "source", "combined", "Log source: combined, error, or all")

	return cmd
}

func runLogs(cmd *cobra.Command, root *rootOptions, opts logsOptions) error {
	if opts.level != "" {
		if _, err := logging.ParseLevel(opts.level); err != nil {
			return err
		}
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	dir, err := logDirectory(cfg)
	if err != nil {
		return err
	}

	logSource := logging.ParseLogSource(opts.source)
	paths, err := logging.FindLogFiles(dir, logSource, opts.logFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	noColor := opts.noColor || !logging.ColorEnabled(out, logging.ParseColorMode(cfg.Logging.Color))

	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:      opts.level,
		Category:   opts.category,
		NoColor:    noColor,
		ShowSource: len(paths) > 1,
	}, out)

	status := cmd.ErrOrStderr()
	if len(paths) == 1 {
		_, _ = fmt.Fprintf(status, "Log file: %s\n", paths[0])
	} else {
		_, _ = fmt.Fprintf(status, "Log files: %s\n", strings.Join(paths, ", "))
	}
	if opts.follow {
		_, _ = fmt.Fprintln(status, "Following... (Ctrl+C to stop)")
	}
	_, _ = fmt.Fprintln(status, "---")

	if opts.follow {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runFollow(ctx, cmd, viewer, paths)
	}

	var entries []logging.Entry
	if len(paths) == 1 {
		entries, err = viewer.Tail(paths[0], opts.lines)
	} else {
		entries, err = viewer.TailMultiple(paths, opts.lines)
	}
	if err != nil {
		return err
	}

	viewer.Print(entries)
	return nil
}

// runFollow follows every path until interrupted. Entries from several files
// are printed in arrival order.
func runFollow(ctx context.Context, cmd *cobra.Command, viewer *logging.Viewer, paths []string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	entries := make(chan logging.Entry, 100)
	g, gctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			return viewer.Follow(gctx, path, entries)
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	for {
		select {
		case entry := <-entries:
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), viewer.FormatEntry(entry))
		case err := <-done:
			return err
		case <-ctx.Done():
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "\n---")
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Stopped.")
			return <-done
		}
	}
}
