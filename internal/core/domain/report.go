package domain

// =============================================================================
// Deployment Report
// =============================================================================

// DeploymentOutcome is one target the sequencer processed.
type DeploymentOutcome struct {
	Target       DeploymentTarget `json:"target" yaml:"target"`
	DeploymentID string           `json:"deployment_id,omitempty" yaml:"deployment_id,omitempty"`
}

// InspectionFailure is a function left out of the drift set because its
// metadata could not be read or validated.
type InspectionFailure struct {
	FunctionID FunctionID `json:"function_id" yaml:"function_id"`
	Reason     string     `json:"reason" yaml:"reason"`
	Err        error      `json:"-" yaml:"-"`
}

// NewInspectionFailure records err against the function it happened for.
func NewInspectionFailure(id FunctionID, err error) InspectionFailure {
	return InspectionFailure{FunctionID: id, Reason: err.Error(), Err: err}
}

// FailedTarget is the target whose trigger halted the sequence.
type FailedTarget struct {
	Target DeploymentTarget `json:"target" yaml:"target"`
	Reason string           `json:"reason" yaml:"reason"`
}

// DeploymentReport summarizes one run. Deployed lists the targets processed in
// order. When DryRun is set nothing was triggered: the entries were only built
// and logged, and none carries a DeploymentID.
type DeploymentReport struct {
	RunID           string              `json:"run_id" yaml:"run_id"`
	DryRun          bool                `json:"dry_run" yaml:"dry_run"`
	NothingToDeploy bool                `json:"nothing_to_deploy" yaml:"nothing_to_deploy"`
	Discovered      int                 `json:"discovered" yaml:"discovered"`
	Deployed        []DeploymentOutcome `json:"deployed" yaml:"deployed"`
	Skipped         []InspectionFailure `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Failed          *FailedTarget       `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// SummaryLines returns "name: old -> new" for every processed target, in the
// order they were processed.
func (r DeploymentReport) SummaryLines() []string {
	lines := make([]string, 0, len(r.Deployed))
	for _, o := range r.Deployed {
		lines = append(lines, o.Target.Transition())
	}
	return lines
}

// Partial reports whether some discovered functions were not evaluated.
func (r DeploymentReport) Partial() bool {
	return len(r.Skipped) > 0
}
