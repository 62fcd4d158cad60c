package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/retain/pkg/cli"
	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/history"
)

func newHistoryCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded sweep reports",
		Long: `Inspect the sweep reports recorded in the history store.

Reports are recorded when history.enabled is set. The store is configured by
history.backend and history.path.`,
	}
	cmd.AddCommand(
		newHistoryListCmd(global),
		newHistoryShowCmd(global),
		newHistoryPruneCmd(global),
	)
	return cmd
}

func newHistoryListCmd(global *globalOptions) *cobra.Command {
	var (
		limit  int
		status string
		since  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sweep reports, newest first",
		Long: `List sweep reports, newest first.

Examples:
  retain history list
  retain history list --status blocked --since 7d
  retain history list --limit 5 --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			of, err := cli.ParseFormat(format)
			if err != nil {
				return err
			}
			q := history.Query{Limit: limit, Status: status}
			if since != "" {
				d, err := config.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("invalid --since: %w", err)
				}
				q.Since = time.Now().Add(-d)
			}

			cfg, logger, err := global.setup(cmd)
			if err != nil {
				return err
			}
			store, err := openHistoryAlways(&cfg.History, logger.Slog())
			if err != nil {
				return cli.NewCommandError("history list", err)
			}
			defer store.Close()

			reports, err := store.List(commandContext(cmd), q)
			if err != nil {
				return cli.NewCommandError("history list", err)
			}
			if f := cli.NewFormatter(of); f != nil {
				if reports == nil {
					reports = []*history.Report{}
				}
				return f.FormatTo(cmd.OutOrStdout(), reports)
			}
			return cli.WriteReportTable(cmd.OutOrStdout(), reports)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "n", 20, "maximum number of reports (0 for all)")
	f.StringVar(&status, "status", "", "only reports with this status: ok, forced, blocked, failed")
	f.StringVar(&since, "since", "", "only reports started within this duration, e.g. 7d")
	f.StringVar(&format, "format", "text", "output format: text, json, yaml")
	return cmd
}

func newHistoryShowCmd(global *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one sweep report including its discard list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			of, err := cli.ParseFormat(format)
			if err != nil {
				return err
			}
			f := cli.NewFormatter(of)
			if f == nil {
				return fmt.Errorf("history show supports json and yaml output")
			}

			cfg, logger, err := global.setup(cmd)
			if err != nil {
				return err
			}
			store, err := openHistoryAlways(&cfg.History, logger.Slog())
			if err != nil {
				return cli.NewCommandError("history show", err)
			}
			defer store.Close()

			report, err := store.Get(commandContext(cmd), args[0])
			if err != nil {
				return cli.NewCommandError("history show", err)
			}
			return f.FormatTo(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: json, yaml")
	return cmd
}

func newHistoryPruneCmd(global *globalOptions) *cobra.Command {
	var olderThan string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old sweep reports",
		Long: `Delete sweep reports older than history.retention, or --older-than.

Examples:
  retain history prune
  retain history prune --older-than 30d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := global.setup(cmd)
			if err != nil {
				return err
			}

			retention := cfg.History.Retention.Std()
			if olderThan != "" {
				d, err := config.ParseDuration(olderThan)
				if err != nil {
					return fmt.Errorf("invalid --older-than: %w", err)
				}
				if d <= 0 {
					return fmt.Errorf("--older-than must be positive")
				}
				retention = d
			}
			if retention <= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "History retention is 0, nothing to prune.")
				return nil
			}

			store, err := openHistoryAlways(&cfg.History, logger.Slog())
			if err != nil {
				return cli.NewCommandError("history prune", err)
			}
			defer store.Close()

			deleted, err := history.PruneOlderThan(commandContext(cmd), store, retention, time.Now())
			if err != nil {
				return cli.NewCommandError("history prune", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d reports older than %s\n", deleted, config.FormatDuration(retention))
			return nil
		},
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "", "override history.retention, e.g. 30d")
	return cmd
}
