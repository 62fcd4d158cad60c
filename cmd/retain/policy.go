package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/retain/pkg/cli"
	"mercator-hq/retain/pkg/config"
)

func newPolicyCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the retention policy",
	}
	cmd.AddCommand(newPolicyShowCmd(global), newPolicyValidateCmd(global))
	return cmd
}

func newPolicyShowCmd(global *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active retention tiers",
		Long: `Print the retention tiers of the configuration, sorted by age.

Examples:
  retain policy show
  retain policy show --config retain.yaml --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			of, err := cli.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			policy, err := cfg.Policy.Build()
			if err != nil {
				return cli.NewConfigError("policy", err.Error())
			}

			if f := cli.NewFormatter(of); f != nil {
				return f.FormatTo(cmd.OutOrStdout(), cli.NewPolicyView(policy))
			}
			return cli.WritePolicyTable(cmd.OutOrStdout(), policy)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml")
	return cmd
}

func newPolicyValidateCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Load and validate the configuration, listing every problem found.

Examples:
  retain policy validate --config retain.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			_, err := config.LoadConfigWithEnvOverrides(global.configPath)
			if err == nil {
				fmt.Fprintf(w, "✓ Configuration valid (%s)\n", global.configName())
				return nil
			}

			var verr config.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(w, "✗ Configuration invalid (%s):\n", global.configName())
				for _, fe := range verr.Errors {
					fmt.Fprintf(w, "  - %s: %s\n", fe.Field, fe.Message)
				}
				return &cli.ExitError{Code: cli.ExitFailure, Err: fmt.Errorf("%d validation errors", len(verr.Errors))}
			}
			return cli.NewConfigError(global.configName(), err.Error())
		},
	}
}
