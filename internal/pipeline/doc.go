// Package pipeline defines the domain model for tracking code review changes
// through a project's configured pipeline stages.
//
// # Model
//
//   - Stage: a configured step (jenkins, gerrit or spinnaker) with a name and host
//   - ChangeInfo: a code review identified by project name and number
//   - StageStatus: un-entered, enqueued, running, passed or failed
//   - ChangePipelineStatus: a change, its ordered stage states and the current stage
//
// # Current stage
//
// Collapse derives the current stage from the ordered stage states. Both the
// reconciliation path and the query path use it, so a persisted snapshot always
// yields the same current stage as the live aggregation that produced it.
//
// # Errors
//
// The sentinel errors in this package classify failures across the tracker and
// are matched with errors.Is.
package pipeline
