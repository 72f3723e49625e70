package appspec

import (
	"fmt"

	"github.com/artpar/lambda-rollout/internal/core/domain"
)

// Build maps a drifted function onto the resource the deployment shifts:
// the alias moves from the live version to the latest published one.
func Build(target domain.DeploymentTarget, aliasName string) domain.ResourceDescriptor {
	return domain.ResourceDescriptor{
		FunctionName:   target.Name,
		AliasName:      aliasName,
		CurrentVersion: target.LiveAliasVersion,
		TargetVersion:  target.LatestPublishedVersion,
	}
}

// DefaultDescription is used when the run has no description configured.
func DefaultDescription(runID string, target domain.DeploymentTarget) string {
	if runID == "" {
		return fmt.Sprintf("lambda-rollout: %s", target.Transition())
	}
	return fmt.Sprintf("lambda-rollout %s: %s", runID, target.Transition())
}

// NewRequest builds the deployment request for one target. The deployment
// group is named after the function.
func NewRequest(app domain.AppConfig, target domain.DeploymentTarget) (domain.DeploymentRequest, error) {
	app = app.WithDefaults()

	content, err := Marshal(Build(target, app.AliasName))
	if err != nil {
		return domain.DeploymentRequest{}, err
	}

	description := app.Description
	if description == "" {
		description = DefaultDescription(app.RunID, target)
	}

	return domain.DeploymentRequest{
		ApplicationName:      app.ApplicationName,
		DeploymentGroupName:  target.Name,
		DeploymentConfigName: app.DeploymentConfigName,
		Description:          description,
		RevisionContent:      content,
	}, nil
}
