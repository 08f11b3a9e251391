// Package sweep checks every record in the store, one address at a time.
//
// A Sweeper runs a single worker that starts at most one ledger check per Interval,
// which keeps bulk runs under the public API rate limit. Cancellation takes effect
// between addresses: a check that has already started always completes and is
// written back. Addresses whose fetch failed are retried once at the end of the pass
// when RetryFailed is set.
//
// Only one sweep runs at a time; Start returns ErrAlreadyRunning otherwise.
//
//	sweeper := sweep.New(store, engine, cfg.Sweep, logger)
//	progress, err := sweeper.Start(ctx)
//	...
//	sweeper.Cancel()
package sweep
