package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/retain/pkg/cli"
	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/sweep"
)

type filterOptions struct {
	*globalOptions

	tiers         []string
	now           string
	minKeep       int
	force         bool
	printKept     bool
	null          bool
	separator     string
	format        string
	dir           string
	include       []string
	exclude       []string
	showDecisions bool
}

func newFilterCmd(global *globalOptions) *cobra.Command {
	opts := &filterOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "filter [file...]",
		Short: "Print the records a retention policy would discard",
		Long: `Read record identifiers, classify them under the retention policy and print
the identifiers that may be removed.

Identifiers are read one per line from the given files, from stdin when no
file is given, or from the entry names of a directory with --dir. Each
identifier must contain a date-time such as 2024-06-15T10:00:00Z,
backup-2024-06-15_10-00 or 20240615; lines without one are skipped with a
warning.

When the safety guard rejects the result nothing is printed and the exit
status is 2. --force prints the discards anyway.

Examples:
  # Default policy, identifiers on stdin
  ls /var/backups | retain filter

  # Ad-hoc policy, NUL separated output for xargs
  retain filter --dir /var/backups --tier 14d:1h --tier 90d:1d -0 | xargs -0 -r rm --

  # Evaluate against a fixed reference time
  retain filter --now 2024-06-15T00:00:00Z snapshots.txt

  # Full classification as JSON
  retain filter --format json < snapshots.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.tiers, "tier", "t", nil, "retention tier MAXAGE:SPACING (repeatable, replaces the configured policy)")
	f.StringVar(&opts.now, "now", "", "reference time in RFC 3339 (default: current time)")
	f.IntVar(&opts.minKeep, "min-keep", 0, "safety guard threshold (0 disables the guard)")
	f.BoolVarP(&opts.force, "force", "f", false, "print discards even when the safety guard rejects the result")
	f.BoolVar(&opts.printKept, "print-kept", false, "print the records to keep instead of the ones to discard")
	f.BoolVarP(&opts.null, "null", "0", false, "terminate identifiers with NUL")
	f.StringVar(&opts.separator, "separator", "", `identifier terminator, escapes \n \t \0 understood`)
	f.StringVar(&opts.format, "format", "", "output format: text, json, csv, yaml")
	f.StringVarP(&opts.dir, "dir", "d", "", "classify the entries of this directory")
	f.StringArrayVar(&opts.include, "include", nil, "glob an entry name must match with --dir (repeatable)")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "glob that drops entry names with --dir (repeatable)")
	f.BoolVar(&opts.showDecisions, "show-decisions", false, "list keep and remove decisions on stderr")

	return cmd
}

// apply merges the command line into cfg and revalidates it.
func (o *filterOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	if len(o.tiers) > 0 {
		cfg.Policy.Tiers = nil
		for _, s := range o.tiers {
			tier, err := config.ParseTier(s)
			if err != nil {
				return cli.NewConfigError("--tier", err.Error())
			}
			cfg.Policy.Tiers = append(cfg.Policy.Tiers, tier)
		}
	}
	if f.Changed("min-keep") {
		cfg.Safety.MinKeep = o.minKeep
	}
	if o.force {
		cfg.Safety.Force = true
	}
	if o.printKept {
		cfg.Output.PrintKept = true
	}
	if f.Changed("separator") {
		cfg.Output.Separator = o.separator
	}
	if o.null {
		cfg.Output.Separator = `\0`
	}
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if len(o.include) > 0 {
		cfg.Input.Include = o.include
	}
	if len(o.exclude) > 0 {
		cfg.Input.Exclude = o.exclude
	}

	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("flags", err.Error())
	}
	return nil
}

func runFilter(cmd *cobra.Command, opts *filterOptions, args []string) error {
	if opts.dir != "" && len(args) > 0 {
		return fmt.Errorf("--dir cannot be combined with file arguments")
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if err := opts.apply(cmd, cfg); err != nil {
		return err
	}

	logger, err := opts.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	format, err := cli.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	clock, err := parseNow(opts.now)
	if err != nil {
		return err
	}

	src, err := newSource(&cfg.Input, opts.dir, args, cmd.InOrStdin())
	if err != nil {
		return cli.NewCommandError("filter", err)
	}

	sweepCfg, err := sweep.ConfigFrom(cfg)
	if err != nil {
		return cli.NewConfigError("policy", err.Error())
	}

	store, err := openHistory(&cfg.History, logger.Slog())
	if err != nil {
		return cli.NewCommandError("filter", err)
	}
	if store != nil {
		defer store.Close()
	}

	sweeper, err := sweep.New(src, sweepCfg, sweep.Options{
		History:        store,
		HistoryBackend: cfg.History.Backend,
		Logger:         logger.Slog(),
		Clock:          clock,
	})
	if err != nil {
		return cli.NewCommandError("filter", err)
	}

	outcome, err := sweeper.Run(commandContext(cmd), sweep.TriggerManual)
	if err != nil && !errors.Is(err, sweep.ErrUnsafe) {
		return cli.NewCommandError("filter", err)
	}

	result := cli.NewFilterResult(outcome)
	if opts.showDecisions {
		if werr := cli.WriteDecisions(cmd.ErrOrStderr(), result); werr != nil {
			return werr
		}
	}

	writer := cli.NewResultWriter(format, cli.UnescapeSeparator(cfg.Output.Separator))
	writer.PrintKept = cfg.Output.PrintKept
	if werr := writer.Write(cmd.OutOrStdout(), result); werr != nil {
		return fmt.Errorf("failed to write result: %w", werr)
	}

	// err is nil or an *UnsafeError, which maps to exit status 2.
	return err
}
