// Package logging provides structured logging for retain.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON, text and console output formats
//   - Configurable log levels (debug, info, warn, error)
//   - Context-aware logging with sweep identifiers and trigger names
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	logger.SetDefault()
//
//	ctx = logging.WithSweepID(ctx, report.ID)
//	logger.InfoContext(ctx, "sweep completed", "kept", 12, "discarded", 3)
//
// Components that take a *slog.Logger receive logger.Slog(); context fields
// are only added by the Context variants of the Logger methods.
package logging
