package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"golang.org/x/sync/errgroup"

	"github.com/artpar/lambda-rollout/internal/core/domain"
	"github.com/artpar/lambda-rollout/internal/core/version"
)

const (
	opGetFunction            = "GetFunction"
	opListVersionsByFunction = "ListVersionsByFunction"
)

// LambdaInspector implements Inspector on the Lambda API.
type LambdaInspector struct {
	client LambdaAPI
	logger *slog.Logger
}

// NewLambdaInspector creates an inspector backed by the Lambda client.
func NewLambdaInspector(client LambdaAPI, logger *slog.Logger) *LambdaInspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &LambdaInspector{
		client: client,
		logger: logger.With("component", "inspector"),
	}
}

// Inspect resolves the alias and lists every published version concurrently,
// then picks the numerically greatest version as the latest. Malformed
// responses yield a *domain.ValidationError.
func (i *LambdaInspector) Inspect(ctx context.Context, id domain.FunctionID, alias string) (domain.FunctionRecord, error) {
	var (
		binding  version.AliasBinding
		versions []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		binding, err = i.resolveAlias(gctx, id, alias)
		return err
	})
	g.Go(func() error {
		var err error
		versions, err = i.listVersions(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.FunctionRecord{}, err
	}

	latest, err := version.Latest(versions)
	if err != nil {
		return domain.FunctionRecord{}, domain.NewValidationError(id, opListVersionsByFunction,
			[]string{"no published version besides " + domain.UnpublishedVersion}, err)
	}

	rec, err := domain.NewFunctionRecord(binding.FunctionName, binding.Version, latest)
	if err != nil {
		return domain.FunctionRecord{}, domain.NewValidationError(id, opGetFunction, nil, err)
	}

	i.logger.Debug("function inspected",
		"function", rec.Name,
		"live_version", rec.LiveAliasVersion,
		"latest_version", rec.LatestPublishedVersion,
	)
	return rec, nil
}

func (i *LambdaInspector) resolveAlias(ctx context.Context, id domain.FunctionID, alias string) (version.AliasBinding, error) {
	out, err := i.client.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(id.Qualified(alias)),
	})
	if err != nil {
		return version.AliasBinding{}, fmt.Errorf("%s %s: %w", opGetFunction, id.Qualified(alias), err)
	}
	if out == nil {
		return version.AliasBinding{}, domain.NewValidationError(id, opGetFunction, []string{"response is empty"}, nil)
	}

	resp := version.AliasResponse{}
	if out.Configuration != nil {
		resp.Configuration = &version.AliasConfiguration{
			FunctionName: out.Configuration.FunctionName,
			Version:      out.Configuration.Version,
		}
	}

	binding, issues := version.ParseAlias(resp)
	if len(issues) > 0 {
		return version.AliasBinding{}, domain.NewValidationError(id, opGetFunction, issues, nil)
	}
	return binding, nil
}

// listVersions follows NextMarker until the service stops returning one and
// concatenates every page.
func (i *LambdaInspector) listVersions(ctx context.Context, id domain.FunctionID) ([]string, error) {
	var entries []version.VersionEntry

	paginator := lambda.NewListVersionsByFunctionPaginator(i.client, &lambda.ListVersionsByFunctionInput{
		FunctionName: aws.String(id.String()),
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", opListVersionsByFunction, id, err)
		}
		for _, v := range out.Versions {
			entries = append(entries, version.VersionEntry{
				FunctionName: v.FunctionName,
				Version:      v.Version,
			})
		}
	}

	versions, issues := version.ParseVersions(entries)
	if len(issues) > 0 {
		return nil, domain.NewValidationError(id, opListVersionsByFunction, issues, nil)
	}
	return versions, nil
}

// IsValidationFailure reports whether err is a per-function metadata failure
// rather than a transport or cancellation error.
func IsValidationFailure(err error) bool {
	return errors.Is(err, domain.ErrMetadataValidation)
}
