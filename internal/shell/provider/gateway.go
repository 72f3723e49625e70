package provider

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codedeploy"
	codedeploytypes "github.com/aws/aws-sdk-go-v2/service/codedeploy/types"

	"github.com/artpar/lambda-rollout/internal/core/domain"
)

// CodeDeployGateway implements Gateway on CodeDeploy.
type CodeDeployGateway struct {
	client CodeDeployAPI
	logger *slog.Logger
}

// NewCodeDeployGateway creates a gateway backed by the CodeDeploy client.
func NewCodeDeployGateway(client CodeDeployAPI, logger *slog.Logger) *CodeDeployGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &CodeDeployGateway{
		client: client,
		logger: logger.With("component", "gateway"),
	}
}

// Trigger creates a deployment whose revision is the request's AppSpec
// content. It does not retry; errors are returned unchanged.
func (g *CodeDeployGateway) Trigger(ctx context.Context, req domain.DeploymentRequest) (string, error) {
	input := &codedeploy.CreateDeploymentInput{
		ApplicationName:      aws.String(req.ApplicationName),
		DeploymentGroupName:  aws.String(req.DeploymentGroupName),
		DeploymentConfigName: aws.String(req.DeploymentConfigName),
		Revision: &codedeploytypes.RevisionLocation{
			RevisionType: codedeploytypes.RevisionLocationTypeAppSpecContent,
			AppSpecContent: &codedeploytypes.AppSpecContent{
				Content: aws.String(req.RevisionContent),
			},
		},
	}
	if req.Description != "" {
		input.Description = aws.String(req.Description)
	}

	out, err := g.client.CreateDeployment(ctx, input)
	if err != nil {
		g.logger.Error("create deployment failed",
			append([]any{"deployment_group", req.DeploymentGroupName}, logAttrs(err)...)...)
		return "", err
	}

	var id string
	if out != nil {
		id = aws.ToString(out.DeploymentId)
	}
	if id == "" {
		g.logger.Warn("deployment accepted without an ID", "deployment_group", req.DeploymentGroupName)
	}
	g.logger.Info("deployment created",
		"application", req.ApplicationName,
		"deployment_group", req.DeploymentGroupName,
		"deployment_id", id,
	)
	return id, nil
}
