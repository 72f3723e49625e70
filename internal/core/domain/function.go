// Package domain contains the function, deployment and report types shared by
// every stage of a rollout.
package domain

import (
	"fmt"
	"strings"
)

// =============================================================================
// Function Identity
// =============================================================================

// DefaultAlias is the alias used both for drift detection and as the
// deployment target.
const DefaultAlias = "live"

// UnpublishedVersion is the mutable head of a Lambda function. It is never a
// deployable version.
const UnpublishedVersion = "$LATEST"

// FunctionID is the opaque handle the tagging lookup returns for a function
// (a Lambda function ARN). Lambda accepts it wherever a function name goes.
type FunctionID string

func (id FunctionID) String() string {
	return string(id)
}

// Qualified returns "<id>:<qualifier>", the form GetFunction uses to resolve
// an alias or version.
func (id FunctionID) Qualified(qualifier string) string {
	return string(id) + ":" + qualifier
}

// =============================================================================
// Function Record
// =============================================================================

// FunctionRecord is the version state of one function: the version its live
// alias points at and its most recent published version.
type FunctionRecord struct {
	Name                   string `json:"name" yaml:"name"`
	LiveAliasVersion       string `json:"live_alias_version" yaml:"live_alias_version"`
	LatestPublishedVersion string `json:"latest_published_version" yaml:"latest_published_version"`
}

// NewFunctionRecord builds a FunctionRecord, rejecting empty fields and a
// latest version of $LATEST.
func NewFunctionRecord(name, liveAliasVersion, latestPublishedVersion string) (FunctionRecord, error) {
	switch {
	case strings.TrimSpace(name) == "":
		return FunctionRecord{}, fmt.Errorf("%w: function name is empty", ErrInvalidRecord)
	case liveAliasVersion == "":
		return FunctionRecord{}, fmt.Errorf("%w: %s: live alias version is empty", ErrInvalidRecord, name)
	case latestPublishedVersion == "":
		return FunctionRecord{}, fmt.Errorf("%w: %s: latest published version is empty", ErrInvalidRecord, name)
	case latestPublishedVersion == UnpublishedVersion:
		return FunctionRecord{}, fmt.Errorf("%w: %s: latest published version cannot be %s", ErrInvalidRecord, name, UnpublishedVersion)
	}

	return FunctionRecord{
		Name:                   name,
		LiveAliasVersion:       liveAliasVersion,
		LatestPublishedVersion: latestPublishedVersion,
	}, nil
}

// Drifted reports whether the live alias lags behind (or otherwise differs
// from) the latest published version.
func (r FunctionRecord) Drifted() bool {
	return r.LiveAliasVersion != r.LatestPublishedVersion
}

// =============================================================================
// Deployment Target
// =============================================================================

// DeploymentTarget is a FunctionRecord known to have drifted. Only the drift
// resolver creates these.
type DeploymentTarget struct {
	FunctionRecord `yaml:",inline"`
}

// Transition renders the target as "name: old -> new".
func (t DeploymentTarget) Transition() string {
	return fmt.Sprintf("%s: %s -> %s", t.Name, t.LiveAliasVersion, t.LatestPublishedVersion)
}

// =============================================================================
// Resource Descriptor
// =============================================================================

// ResourceKindLambdaFunction is the only resource type CodeDeploy accepts in
// a Lambda AppSpec.
const ResourceKindLambdaFunction = "AWS::Lambda::Function"

// ResourceDescriptor is the AppSpec resource entry for one function.
type ResourceDescriptor struct {
	FunctionName   string
	AliasName      string
	CurrentVersion string
	TargetVersion  string
}

// =============================================================================
// Deployment Request
// =============================================================================

// DeploymentRequest is everything the gateway needs to create one CodeDeploy
// deployment. DeploymentGroupName is always the function name.
type DeploymentRequest struct {
	ApplicationName      string
	DeploymentGroupName  string
	DeploymentConfigName string
	Description          string
	RevisionContent      string
}
