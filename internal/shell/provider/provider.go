// Package provider implements the AWS clients the rollout talks to.
// This is part of the Imperative Shell - handles I/O with cloud APIs.
package provider

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/codedeploy"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"

	"github.com/artpar/lambda-rollout/internal/core/domain"
)

// Catalog resolves tag selectors into the functions they match.
type Catalog interface {
	// Find returns the IDs of every Lambda function matching all tag keys.
	Find(ctx context.Context, tags map[string][]string) ([]domain.FunctionID, error)
}

// Inspector reads the live alias version and latest published version of a
// function.
type Inspector interface {
	Inspect(ctx context.Context, id domain.FunctionID, alias string) (domain.FunctionRecord, error)
}

// Gateway triggers deployments on the orchestrator.
type Gateway interface {
	// Trigger creates one deployment and returns its ID.
	Trigger(ctx context.Context, req domain.DeploymentRequest) (string, error)
}

// =============================================================================
// SDK client surfaces
// =============================================================================

// TaggingAPI is the subset of the Resource Groups Tagging API client used here.
type TaggingAPI interface {
	resourcegroupstaggingapi.GetResourcesAPIClient
}

// LambdaAPI is the subset of the Lambda client used here.
type LambdaAPI interface {
	GetFunction(ctx context.Context, params *lambda.GetFunctionInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error)
	lambda.ListVersionsByFunctionAPIClient
}

// CodeDeployAPI is the subset of the CodeDeploy client used here.
type CodeDeployAPI interface {
	CreateDeployment(ctx context.Context, params *codedeploy.CreateDeploymentInput, optFns ...func(*codedeploy.Options)) (*codedeploy.CreateDeploymentOutput, error)
}
