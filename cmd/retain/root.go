package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/retain/pkg/cli"
	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/telemetry/logging"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "retain",
		Short: "retain - tiered retention for timestamped records",
		Long: `retain decides which timestamped records to keep under a tiered retention policy.

A policy is a list of tiers. Each tier names a maximum age and the minimum
spacing between kept records of that age; records older than the last tier
are discarded. retain reads record identifiers (backup names, snapshot names,
file names), extracts their timestamps and prints the identifiers that may be
removed.

A safety guard refuses results that would remove more than they keep while
keeping fewer than safety.min_keep records.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (defaults and RETAIN_* environment when empty)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (debug logging)")

	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(
		newFilterCmd(opts),
		newPolicyCmd(opts),
		newWatchCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
		newCompletionCmd(root),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := newRootCmd()
	err := root.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

// loadConfig loads the configuration file, the environment overrides and
// stores the result as the global configuration.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(o.configPath)
	if err != nil {
		return nil, cli.NewConfigError(o.configName(), err.Error())
	}
	config.SetConfig(cfg)
	return cfg, nil
}

func (o *globalOptions) configName() string {
	if o.configPath == "" {
		return "defaults"
	}
	return o.configPath
}

// newLogger builds the logger from cfg and installs it as the slog default.
// Logs always go to w (stderr) so stdout carries only results.
func (o *globalOptions) newLogger(cfg *config.Config, w io.Writer) (*logging.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging)
	if o.verbose {
		lc.Level = "debug"
	}
	lc.Writer = w
	logger, err := logging.New(lc)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()
	return logger, nil
}

// setup loads the configuration and builds the logger writing to the
// command's stderr.
func (o *globalOptions) setup(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := o.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
