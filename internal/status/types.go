package status

import "time"

// SyncPhase represents the current phase of a project's reconciliation
type SyncPhase string

const (
	// SyncPhaseSyncing means the project is being reconciled
	SyncPhaseSyncing SyncPhase = "Syncing"

	// SyncPhaseComplete means the last reconciliation succeeded
	SyncPhaseComplete SyncPhase = "Complete"

	// SyncPhaseFailed means the last reconciliation failed
	SyncPhaseFailed SyncPhase = "Failed"
)

// Valid reports whether p is a known phase
func (p SyncPhase) Valid() bool {
	switch p {
	case SyncPhaseSyncing, SyncPhaseComplete, SyncPhaseFailed:
		return true
	}
	return false
}

// ProjectSyncStatus is the reconciliation state of one tracked project
type ProjectSyncStatus struct {
	// Phase represents the current reconciliation phase
	Phase SyncPhase `json:"phase" yaml:"phase"`

	// Message provides additional information, usually the last failure
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// LastAttempt is the timestamp of the last reconciliation attempt
	LastAttempt *time.Time `json:"lastAttempt,omitempty" yaml:"lastAttempt,omitempty"`

	// AttemptCount is the number of attempts since the last success
	AttemptCount int `json:"attemptCount,omitempty" yaml:"attemptCount,omitempty"`

	// LastSyncTime is the timestamp of the last successful reconciliation
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty" yaml:"lastSyncTime,omitempty"`

	// ChangeCount is the number of changes written by the last successful reconciliation
	ChangeCount int `json:"changeCount" yaml:"changeCount"`
}

// MarkSyncing records the start of an attempt at now
func (s *ProjectSyncStatus) MarkSyncing(now time.Time) {
	s.Phase = SyncPhaseSyncing
	s.Message = ""
	s.LastAttempt = &now
	s.AttemptCount++
}

// MarkComplete records a successful attempt that wrote count changes
func (s *ProjectSyncStatus) MarkComplete(now time.Time, count int) {
	s.Phase = SyncPhaseComplete
	s.Message = ""
	s.LastSyncTime = &now
	s.AttemptCount = 0
	s.ChangeCount = count
}

// MarkFailed records a failed attempt. The previous change count and last
// sync time are kept.
func (s *ProjectSyncStatus) MarkFailed(message string) {
	s.Phase = SyncPhaseFailed
	s.Message = message
}
