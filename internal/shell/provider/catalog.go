package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"

	"github.com/artpar/lambda-rollout/internal/core/discovery"
	"github.com/artpar/lambda-rollout/internal/core/domain"
)

// TaggingCatalog implements Catalog on the Resource Groups Tagging API.
type TaggingCatalog struct {
	client TaggingAPI
	logger *slog.Logger
}

// NewTaggingCatalog creates a catalog backed by the tagging API client.
func NewTaggingCatalog(client TaggingAPI, logger *slog.Logger) *TaggingCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaggingCatalog{
		client: client,
		logger: logger.With("component", "catalog"),
	}
}

// Find lists every Lambda function carrying the given tags. ResourceType=Lambda
// is always part of the filter. An empty result is not an error.
func (c *TaggingCatalog) Find(ctx context.Context, tags map[string][]string) ([]domain.FunctionID, error) {
	filters, err := discovery.BuildTagFilters(tags)
	if err != nil {
		return nil, err
	}

	input := &resourcegroupstaggingapi.GetResourcesInput{
		ResourceTypeFilters: []string{discovery.LambdaResourceTypeFilter},
		TagFilters:          toTagFilters(filters),
	}
	c.logger.Debug("looking up functions by tag", "tag_filters", filters)

	var ids []domain.FunctionID
	paginator := resourcegroupstaggingapi.NewGetResourcesPaginator(c.client, input)
	for page := 1; paginator.HasMorePages(); page++ {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			c.logger.Error("tag lookup failed", logAttrs(err)...)
			return nil, domain.NewDiscoveryError("GetResources", err)
		}

		for i, mapping := range out.ResourceTagMappingList {
			arn := aws.ToString(mapping.ResourceARN)
			if arn == "" {
				return nil, domain.NewDiscoveryError("GetResources",
					fmt.Errorf("page %d: ResourceTagMappingList[%d] has no ResourceARN", page, i))
			}
			ids = append(ids, domain.FunctionID(arn))
		}
	}

	c.logger.Info("functions discovered", "count", len(ids))
	return ids, nil
}

func toTagFilters(filters []discovery.TagFilter) []taggingtypes.TagFilter {
	out := make([]taggingtypes.TagFilter, 0, len(filters))
	for _, f := range filters {
		out = append(out, taggingtypes.TagFilter{
			Key:    aws.String(f.Key),
			Values: f.Values,
		})
	}
	return out
}
