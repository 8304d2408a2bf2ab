// Package sync performs reconciliation passes: it enumerates the projects
// tracked in the catalog, fetches their open changes, aggregates the stage
// status of every change and writes the snapshots to the store.
//
// # Failure containment
//
// A catalog failure aborts the pass and is reported as an *Error. Failures
// fetching the changes of one project, or aggregating one change, are logged
// and recorded in the project's sync status; the remaining projects and
// changes are still written.
//
// # Scheduling
//
// The coordinator subpackage runs passes on a fixed interval, skips ticks that
// fire while a pass is still running and bounds each pass with a timeout.
package sync
