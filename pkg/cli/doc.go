/*
Package cli provides command-line interface utilities for retain.

The cli package includes output formatters, exit code mapping and signal
helpers used by the retain command.

Output Formatting:

Identifier lists are written with a configurable separator, or as JSON or
CSV documents:

	w := cli.NewResultWriter(cli.FormatText, "\n")
	if err := w.Write(os.Stdout, result); err != nil {
		return err
	}

Tables (policy tiers, history reports) use text/tabwriter:

	if err := cli.WritePolicyTable(os.Stdout, policy); err != nil {
		return err
	}

Exit Codes:

ExitCode maps command errors to process exit codes; a sweep rejected by the
safety guard exits with ExitUnsafe.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
