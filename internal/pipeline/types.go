package pipeline

import (
	"encoding/json"
	"fmt"
)

// StageType identifies the system that backs a stage.
type StageType string

const (
	// StageTypeJenkins is a Jenkins build stage
	StageTypeJenkins StageType = "jenkins"
	// StageTypeGerrit is a Gerrit verification stage
	StageTypeGerrit StageType = "gerrit"
	// StageTypeSpinnaker is a Spinnaker deployment stage
	StageTypeSpinnaker StageType = "spinnaker"
)

// StageTypes lists every supported stage type.
var StageTypes = []StageType{StageTypeJenkins, StageTypeGerrit, StageTypeSpinnaker}

// Valid reports whether t is one of the supported stage types.
func (t StageType) Valid() bool {
	switch t {
	case StageTypeJenkins, StageTypeGerrit, StageTypeSpinnaker:
		return true
	}
	return false
}

// Stage is one configured step of a project's pipeline.
type Stage struct {
	Type StageType `json:"type" yaml:"type"`
	Name string    `json:"name" yaml:"name"`
	Host string    `json:"host" yaml:"host"`
}

// StatusType is the tag of a StageStatus.
type StatusType string

const (
	// StatusUnEntered means the change has not reached the stage yet
	StatusUnEntered StatusType = "un-entered"
	// StatusEnqueued means the change is waiting to run in the stage
	StatusEnqueued StatusType = "enqueued"
	// StatusRunning means the stage is executing for the change
	StatusRunning StatusType = "running"
	// StatusPassed means the stage finished successfully
	StatusPassed StatusType = "passed"
	// StatusFailed means the stage finished unsuccessfully
	StatusFailed StatusType = "failed"
)

// Valid reports whether s is a known status tag.
func (s StatusType) Valid() bool {
	switch s {
	case StatusUnEntered, StatusEnqueued, StatusRunning, StatusPassed, StatusFailed:
		return true
	}
	return false
}

// StageStatus is the status of a change within one stage. It serializes as
// {"type": "<tag>"}.
type StageStatus struct {
	Type StatusType `json:"type"`
}

// Status builds a StageStatus from its tag.
func Status(t StatusType) StageStatus {
	return StageStatus{Type: t}
}

// UnmarshalJSON rejects unknown status tags.
func (s *StageStatus) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type StatusType `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Type.Valid() {
		return fmt.Errorf("unknown stage status %q", raw.Type)
	}
	s.Type = raw.Type
	return nil
}

// ChangeStatus is the review state of a change.
type ChangeStatus string

const (
	// ChangeStatusNew is an open change
	ChangeStatusNew ChangeStatus = "NEW"
	// ChangeStatusMerged is a submitted change
	ChangeStatusMerged ChangeStatus = "MERGED"
	// ChangeStatusAbandoned is a change closed without merging
	ChangeStatusAbandoned ChangeStatus = "ABANDONED"
)

// Valid reports whether s is a known change status.
func (s ChangeStatus) Valid() bool {
	switch s {
	case ChangeStatusNew, ChangeStatusMerged, ChangeStatusAbandoned:
		return true
	}
	return false
}

// ChangeInfo describes a single code review.
// (ProjectName, Number) is its identity.
type ChangeInfo struct {
	Number      int64        `json:"number" yaml:"number"`
	Subject     string       `json:"subject" yaml:"subject"`
	Status      ChangeStatus `json:"status" yaml:"status"`
	Branch      string       `json:"branch" yaml:"branch"`
	ProjectName string       `json:"projectName" yaml:"projectName"`
	OwnerName   string       `json:"ownerName" yaml:"ownerName"`
}

// Key returns the identity of the change.
func (c ChangeInfo) Key() ChangeKey {
	return ChangeKey{ProjectName: c.ProjectName, Number: c.Number}
}

// ChangeKey uniquely identifies a tracked change.
type ChangeKey struct {
	ProjectName string
	Number      int64
}

func (k ChangeKey) String() string {
	return fmt.Sprintf("%s/%d", k.ProjectName, k.Number)
}

// StageState pairs a stage with the status computed for it.
type StageState struct {
	Stage  Stage       `json:"stage"`
	Status StageStatus `json:"status"`
}

// ChangePipelineStatus is the progress of one change through its project's stages.
type ChangePipelineStatus struct {
	Change  ChangeInfo   `json:"change"`
	Current *StageState  `json:"current"`
	Stages  []StageState `json:"stages"`
}

// NewChangePipelineStatus pairs a change with its stage states and derives Current.
func NewChangePipelineStatus(change ChangeInfo, stages []StageState) ChangePipelineStatus {
	if stages == nil {
		stages = []StageState{}
	}
	return ChangePipelineStatus{
		Change:  change,
		Current: Collapse(stages),
		Stages:  stages,
	}
}
