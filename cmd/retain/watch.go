package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/retain/pkg/cli"
	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/history"
	"mercator-hq/retain/pkg/sweep"
	"mercator-hq/retain/pkg/telemetry/health"
	"mercator-hq/retain/pkg/telemetry/logging"
	"mercator-hq/retain/pkg/telemetry/metrics"
	"mercator-hq/retain/pkg/telemetry/tracing"
)

const shutdownTimeout = 10 * time.Second

type watchOptions struct {
	*globalOptions

	dir    string
	listen string
	once   bool
}

func newWatchCmd(global *globalOptions) *cobra.Command {
	opts := &watchOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sweep a directory on a schedule",
		Long: `Classify the entries of input.directory on the schedule.cron schedule.

Every sweep is logged, recorded in the history store when history.enabled is
set, and exported as Prometheus metrics when telemetry.metrics.enabled is
set. The metrics endpoint, /healthz, /readyz and /version are served on
telemetry.metrics.listen_address.

The configuration file is reloaded when it changes (schedule.watch_config)
and on SIGHUP. SIGINT and SIGTERM stop after the running sweep.

watch never deletes anything; read the discard lists from the history store
or the logs.

Examples:
  retain watch --config /etc/retain/retain.yaml
  retain watch --dir /var/backups --listen 127.0.0.1:9273`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.dir, "dir", "d", "", "override input.directory")
	f.StringVarP(&opts.listen, "listen", "l", "", "override telemetry.metrics.listen_address")
	f.BoolVar(&opts.once, "once", false, "run a single sweep with full telemetry and exit")
	return cmd
}

// watchService is the assembled watch mode.
type watchService struct {
	cfg       *config.Config
	logger    *logging.Logger
	sweeper   *sweep.Sweeper
	scheduler *sweep.Scheduler
	store     history.Store
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	checker   *health.Checker
}

func newWatchService(cfg *config.Config, logger *logging.Logger) (*watchService, error) {
	if cfg.Input.Directory == "" {
		return nil, cli.NewConfigError("input.directory", "watch needs a directory to sweep")
	}

	svc := &watchService{cfg: cfg, logger: logger}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	svc.tracer = tracer
	svc.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	store, err := openHistory(&cfg.History, logger.Slog())
	if err != nil {
		svc.close()
		return nil, err
	}
	svc.store = store

	src, err := newSource(&cfg.Input, cfg.Input.Directory, nil, nil)
	if err != nil {
		svc.close()
		return nil, err
	}
	sweepCfg, err := sweep.ConfigFrom(cfg)
	if err != nil {
		svc.close()
		return nil, cli.NewConfigError("policy", err.Error())
	}

	svc.sweeper, err = sweep.New(src, sweepCfg, sweep.Options{
		History:        store,
		HistoryBackend: cfg.History.Backend,
		Metrics:        svc.metrics,
		Textfile:       cfg.Telemetry.Metrics.Textfile,
		Tracer:         tracer,
		Logger:         logger.Slog(),
	})
	if err != nil {
		svc.close()
		return nil, err
	}

	svc.scheduler = sweep.NewScheduler(svc.sweeper, &sweep.SchedulerConfig{
		Cron:             cfg.Schedule.Cron,
		RunOnStart:       cfg.Schedule.RunOnStart,
		HistoryRetention: cfg.History.Retention.Std(),
	}, store)

	svc.checker = health.New(5 * time.Second)
	svc.checker.RegisterCheck("last_sweep", svc.scheduler.Check)
	if store != nil {
		svc.checker.RegisterCheck("history", store.Ping)
	}
	return svc, nil
}

// handler returns the HTTP handler for metrics and probes.
func (s *watchService) handler() http.Handler {
	mux := http.NewServeMux()
	s.checker.Mount(mux, versionInfo())
	if s.metrics.Enabled() {
		mux.Handle(s.cfg.Telemetry.Metrics.Path, s.metrics.Handler())
	}
	return mux
}

// reload applies a new configuration to the running sweeper. Schedule and
// listener changes need a restart.
func (s *watchService) reload(cfg *config.Config) {
	sweepCfg, err := sweep.ConfigFrom(cfg)
	s.metrics.RecordReload(err)
	if err != nil {
		s.logger.Error("reloaded configuration has an invalid policy, keeping previous", "error", err)
		return
	}
	if err := s.sweeper.SetConfig(sweepCfg); err != nil {
		s.logger.Error("failed to apply reloaded configuration", "error", err)
		return
	}
	if cfg.Schedule.Cron != s.cfg.Schedule.Cron {
		s.logger.Warn("schedule.cron changed, restart to apply", "running", s.cfg.Schedule.Cron, "configured", cfg.Schedule.Cron)
	}
}

func (s *watchService) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("failed to close history store", "error", err)
		}
	}
	if s.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.tracer.Shutdown(ctx); err != nil {
			s.logger.Error("failed to flush traces", "error", err)
		}
	}
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	cfg, logger, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	if opts.dir != "" {
		cfg.Input.Directory = opts.dir
	}
	if opts.listen != "" {
		cfg.Telemetry.Metrics.ListenAddress = opts.listen
	}

	svc, err := newWatchService(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.close()

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	if opts.once {
		_, err := svc.sweeper.Run(ctx, sweep.TriggerManual)
		return err
	}

	var server *http.Server
	if addr := cfg.Telemetry.Metrics.ListenAddress; addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		server = &http.Server{
			Handler:           svc.handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("telemetry server failed", "error", err)
			}
		}()
		logger.Info("telemetry server listening", "address", ln.Addr().String(), "metrics", svc.metrics.Enabled())
	}

	if err := svc.scheduler.Start(ctx); err != nil {
		return cli.NewConfigError("schedule.cron", err.Error())
	}

	if cfg.Schedule.WatchConfig && opts.configPath != "" {
		watcher, err := config.NewWatcher(opts.configPath, cfg.Schedule.DebounceInterval.Std(), logger.Slog())
		if err != nil {
			logger.Warn("config watching disabled", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx, svc.reload); err != nil {
					logger.Error("config watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	hup := cli.ReloadSignals()
	defer cli.StopSignals(hup)

	logger.Info("watch mode started",
		"directory", cfg.Input.Directory,
		"schedule", cfg.Schedule.Cron,
		"policy", svc.sweeper.Config().Policy.String(),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			svc.scheduler.Stop()
			if server != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("telemetry server shutdown failed", "error", err)
				}
			}
			return nil

		case <-hup:
			if opts.configPath == "" {
				logger.Info("SIGHUP received without a config file, nothing to reload")
				continue
			}
			newCfg, err := config.ReloadConfig(opts.configPath)
			if err != nil {
				svc.metrics.RecordReload(err)
				logger.Error("config reload failed, keeping previous configuration", "error", err)
				continue
			}
			logger.Info("configuration reloaded on SIGHUP", "path", opts.configPath)
			svc.reload(newCfg)
		}
	}
}
