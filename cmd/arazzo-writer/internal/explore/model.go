package explore

import "github.com/SteakFisher/arazzo-writer/arazzo"

// TargetKind identifies what a step calls.
type TargetKind string

const (
	TargetKindOperationID   TargetKind = "operationId"
	TargetKindOperationPath TargetKind = "operationPath"
	TargetKindWorkflowID    TargetKind = "workflowId"
)

// StepInfo represents a single workflow step with its metadata
type StepInfo struct {
	// WorkflowID is the workflow the step belongs to
	WorkflowID string
	// WorkflowSummary is the summary of the workflow the step belongs to
	WorkflowSummary string
	// StepID is the identifier of the step within its workflow
	StepID string
	// Position is the 1-based index of the step within its workflow
	Position int
	// Kind is how the step references its target
	Kind TargetKind
	// Target is the operationId, operationPath or workflowId the step calls
	Target string
	// Description is the description of the step
	Description string

	// Parameters, SuccessCriteria, OnSuccess, OnFailure and Outputs are display-ready lines
	Parameters      []string
	SuccessCriteria []string
	OnSuccess       []string
	OnFailure       []string
	Outputs         []string

	// Step is the full step object for detailed inspection
	Step *arazzo.Step

	// Folded tracks whether details are hidden in the UI
	Folded bool
}

// GetDisplaySummary returns a display-friendly summary
// Returns the description truncated to fit a single line
func (s *StepInfo) GetDisplaySummary() string {
	if len(s.Description) > 60 {
		return s.Description[:57] + "..."
	}
	return s.Description
}

// HasDetails returns true if the step has additional details to display
func (s *StepInfo) HasDetails() bool {
	return s.Description != "" ||
		len(s.Parameters) > 0 ||
		len(s.SuccessCriteria) > 0 ||
		len(s.OnSuccess) > 0 ||
		len(s.OnFailure) > 0 ||
		len(s.Outputs) > 0
}
