package domain

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Discovery errors
	ErrNoTagFilters    = errors.New("at least one tag filter is required")
	ErrDiscoveryFailed = errors.New("function discovery failed")

	// Metadata errors
	ErrMetadataValidation = errors.New("function metadata validation failed")
	ErrNoPublishedVersion = errors.New("function has no published version")
	ErrInvalidRecord      = errors.New("invalid function record")

	// Deployment errors
	ErrDeploymentTrigger = errors.New("deployment trigger failed")
)

// DiscoveryError wraps a failed or malformed tag lookup. It aborts the run.
type DiscoveryError struct {
	Op  string // e.g. "GetResources"
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDiscoveryFailed, e.Op, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

func (e *DiscoveryError) Is(target error) bool {
	return target == ErrDiscoveryFailed
}

// NewDiscoveryError creates a new DiscoveryError.
func NewDiscoveryError(op string, err error) *DiscoveryError {
	return &DiscoveryError{Op: op, Err: err}
}

// ValidationError reports a metadata response that did not have the expected
// shape. It is scoped to a single function.
type ValidationError struct {
	FunctionID FunctionID
	Op         string   // "GetFunction" or "ListVersionsByFunction"
	Issues     []string // e.g. "Configuration.Version is missing"
	Err        error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", ErrMetadataValidation, e.Op, e.FunctionID)
	if len(e.Issues) > 0 {
		msg += ": " + strings.Join(e.Issues, "; ")
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMetadataValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(id FunctionID, op string, issues []string, err error) *ValidationError {
	return &ValidationError{
		FunctionID: id,
		Op:         op,
		Issues:     issues,
		Err:        err,
	}
}

// TriggerError reports the deployment that halted the sequence.
type TriggerError struct {
	FunctionName    string
	DeploymentGroup string
	Err             error
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("%s: %s (deployment group %q): %v", ErrDeploymentTrigger, e.FunctionName, e.DeploymentGroup, e.Err)
}

func (e *TriggerError) Unwrap() error {
	return e.Err
}

func (e *TriggerError) Is(target error) bool {
	return target == ErrDeploymentTrigger
}

// NewTriggerError creates a new TriggerError.
func NewTriggerError(functionName, deploymentGroup string, err error) *TriggerError {
	return &TriggerError{
		FunctionName:    functionName,
		DeploymentGroup: deploymentGroup,
		Err:             err,
	}
}
