package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
	"github.com/Aman-CERP/amanlog/internal/logging"
)

func newEmitCmd(root *rootOptions) *cobra.Command {
	var (
		level    string
		category string
		meta     []string
	)

	cmd := &cobra.Command{
		Use:   "emit [flags] message...",
		Short: "Write one log record",
		Long: `Write a single record through the configured sinks, then flush.

The message is the remaining arguments joined by spaces. Metadata is given as
repeated key=value pairs; numbers and booleans are stored as JSON numbers and
booleans, everything else as strings.`,
		Example: `  # Informational record in the "deploy" category
  amanlog emit --category deploy "rollout started"

  # Error with metadata
  amanlog emit -l error -c db --meta host=db1 --meta retries=3 "connection lost"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(cmd, root, level, category, meta, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "info", "Record level: debug, info, warn, error")
	cmd.Flags().StringVarP(&category, "category", "c", "app", "Record category")
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "Metadata as key=value (repeatable)")

	return cmd
}

func runEmit(cmd *cobra.Command, root *rootOptions, levelName, category string, pairs []string, message string) error {
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}

	meta, err := parseMetadata(pairs)
	if err != nil {
		return err
	}

	f, _, closeFn, err := root.openFacility(cmd)
	if err != nil {
		return err
	}

	f.Log(level, category, message, meta)

	if err := closeFn(); err != nil {
		return err
	}
	if h := f.Health(); h.Failed > 0 {
		return amerrors.IOError(
			fmt.Sprintf("record was not written to every sink: %s", strings.Join(h.RecentErrors, "; ")), nil)
	}
	return nil
}

// parseMetadata turns key=value pairs into record metadata.
func parseMetadata(pairs []string) (logging.Metadata, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	meta := logging.Metadata{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, amerrors.ValidationError(fmt.Sprintf("invalid metadata %q", pair), nil).
				WithSuggestion("Use --meta key=value")
		}
		meta[key] = parseMetaValue(value)
	}
	return meta, nil
}

func parseMetaValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
