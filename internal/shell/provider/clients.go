package provider

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/codedeploy"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"

	coreprovider "github.com/artpar/lambda-rollout/internal/core/provider"
)

// AWSSettings selects the account and region the clients talk to.
type AWSSettings struct {
	Region      string
	Profile     string
	Credentials coreprovider.AWSCredentials
}

// Clients holds one SDK client per collaborator. They are built once per run
// and shared by the catalog, inspector and gateway.
type Clients struct {
	Tagging    *resourcegroupstaggingapi.Client
	Lambda     *lambda.Client
	CodeDeploy *codedeploy.Client
}

// LoadAWSConfig resolves an aws.Config. Static keys, when set, take
// precedence over the default credential chain.
func LoadAWSConfig(ctx context.Context, s AWSSettings) (aws.Config, error) {
	if err := coreprovider.ValidateAWSCredentials(s.Credentials); err != nil {
		return aws.Config{}, err
	}
	if err := coreprovider.ValidateAWSRegion(s.Region); err != nil {
		return aws.Config{}, fmt.Errorf("%w: %q", err, s.Region)
	}

	var opts []func(*config.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}
	if s.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.Profile))
	}
	if s.Credentials.Static() {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.Credentials.AccessKeyID,
			s.Credentials.SecretAccessKey,
			s.Credentials.SessionToken,
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// NewClients builds the SDK clients from a single config.
func NewClients(cfg aws.Config) Clients {
	return Clients{
		Tagging:    resourcegroupstaggingapi.NewFromConfig(cfg),
		Lambda:     lambda.NewFromConfig(cfg),
		CodeDeploy: codedeploy.NewFromConfig(cfg),
	}
}
