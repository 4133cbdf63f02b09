// Package cmd provides the CLI commands for amanlog.
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanlog/internal/config"
	"github.com/Aman-CERP/amanlog/internal/logging"
	"github.com/Aman-CERP/amanlog/pkg/version"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	logDir    string
	logLevel  string
	configDir string
}

// NewRootCmd creates the root command for the amanlog CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "amanlog",
		Short: "Leveled, categorized logging for scripts and services",
		Long: `amanlog writes leveled, categorized log records to the console and to
rotating files in a log directory:

  combined.log  every record at or above the global level
  error.log     error records only

Records share one line format:

  2024-05-01 12:00:00.000 INFO    [http]               request served

followed by an indented JSON block when the record carries metadata.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/amanlog/config.yaml)
  3. Project config (.amanlog.yaml)
  4. Environment variables (LOG_DIR, LOG_LEVEL, LOG_RETENTION_DAYS, LOG_COLOR)
  5. Flags (--log-dir, --log-level)`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("amanlog version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.logDir, "log-dir", "", "Log directory (default: ./logs, or LOG_DIR)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Global minimum level: debug, info, warn, error (or LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", ".", "Directory containing .amanlog.yaml")

	cmd.AddCommand(newEmitCmd(opts))
	cmd.AddCommand(newCleanCmd(opts))
	cmd.AddCommand(newLogsCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads configuration and applies flag overrides on top.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configDir)
	if err != nil {
		return nil, err
	}

	if o.logDir != "" {
		cfg.Logging.Dir = o.logDir
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logDirectory resolves the configured log directory to an absolute path.
func logDirectory(cfg *config.Config) (string, error) {
	return logging.ResolveLogDir(cfg.Logging.Dir)
}

// facilityConfig converts loaded configuration into facility options.
// The console sink writes to console, normally the command's stderr.
func facilityConfig(cfg *config.Config, console io.Writer) (logging.Config, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return logging.Config{}, err
	}

	return logging.Config{
		Dir:           cfg.Logging.Dir,
		Level:         level,
		MaxSizeMB:     cfg.Logging.MaxSizeMB,
		MaxFiles:      cfg.Logging.MaxFiles,
		Console:       cfg.Logging.ConsoleEnabled(),
		ConsoleOutput: console,
		Color:         logging.ParseColorMode(cfg.Logging.Color),
		Diagnostics:   console,
	}, nil
}

// openFacility loads configuration and starts a facility for a command.
// The returned close function flushes within the configured drain timeout.
func (o *rootOptions) openFacility(cmd *cobra.Command) (*logging.Facility, *config.Config, func() error, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	fcfg, err := facilityConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, nil, err
	}

	f, err := logging.New(fcfg)
	if err != nil {
		return nil, nil, nil, err
	}

	closeFn := func() error {
		if err := f.FlushTimeout(cfg.Logging.DrainTimeoutDuration()); err != nil {
			return fmt.Errorf("failed to flush logs: %w", err)
		}
		return nil
	}
	return f, cfg, closeFn, nil
}
