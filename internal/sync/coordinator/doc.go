// Package coordinator schedules reconciliation passes.
//
// It sits on top of sync.Manager and owns only timing and lifecycle:
//
//   - an initial pass on Start, then one pass per configured interval
//   - a per-pass timeout that cancels the pass context
//   - overlap prevention: a tick that fires while a pass is in flight is
//     dropped and counted, never queued
//   - graceful shutdown that waits for the in-flight pass
//
// # Usage
//
//	coord := coordinator.New(manager, cfg,
//	    coordinator.WithReconcileMetrics(metrics),
//	)
//	go func() { _ = coord.Start(ctx) }()
//	...
//	_ = coord.Stop()
//
// Failed passes are logged and retried on the next tick. Nothing a pass
// returns stops the schedule.
package coordinator
