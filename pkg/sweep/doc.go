// Package sweep runs retention sweeps.
//
// A sweep reads records from a source, resolves duplicate timestamps, runs
// the retention filter, applies the safety guard and reports the outcome to
// the history store, the metrics collector and the tracer.
//
// # Basic Usage
//
//	sweeper, err := sweep.New(src, &sweep.Config{
//	    Policy:  policy,
//	    MinKeep: 10,
//	}, sweep.Options{History: store})
//	if err != nil {
//	    return err
//	}
//
//	outcome, err := sweeper.Run(ctx, sweep.TriggerManual)
//	if errors.Is(err, sweep.ErrUnsafe) {
//	    // nothing should be removed
//	}
//
// # Scheduling
//
// Scheduler runs a Sweeper on a cron schedule:
//
//	scheduler := sweep.NewScheduler(sweeper, &sweep.SchedulerConfig{
//	    Cron:       "0 * * * *",
//	    RunOnStart: true,
//	})
//	if err := scheduler.Start(ctx); err != nil {
//	    return err
//	}
//	defer scheduler.Stop()
//
// A sweep never deletes records. The discard list is the output; callers
// decide what to do with it.
package sweep
