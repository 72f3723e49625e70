// Package discovery turns caller tag selectors into tagging API filters.
// This is part of the Functional Core - all functions are pure with no I/O.
package discovery

import (
	"fmt"
	"sort"

	"github.com/artpar/lambda-rollout/internal/core/domain"
)

// ResourceTypeTagKey and ResourceTypeTagValue are always added to the filter
// set, whatever the caller supplied for that key.
const (
	ResourceTypeTagKey   = "ResourceType"
	ResourceTypeTagValue = "Lambda"
)

// LambdaResourceTypeFilter is the tagging API resource type filter for Lambda
// functions.
const LambdaResourceTypeFilter = "lambda"

// TagFilter is one key with the values any of which must match.
type TagFilter struct {
	Key    string
	Values []string
}

// BuildTagFilters validates the caller's selectors and returns the filter set
// to send, sorted by key. Every caller key needs at least one non-empty value.
// The input map is not modified.
func BuildTagFilters(tags map[string][]string) ([]TagFilter, error) {
	callerKeys := 0
	for key := range tags {
		if key != "" && key != ResourceTypeTagKey {
			callerKeys++
		}
	}
	if callerKeys == 0 {
		return nil, domain.ErrNoTagFilters
	}

	filters := make([]TagFilter, 0, len(tags)+1)
	for key, values := range tags {
		if key == "" || key == ResourceTypeTagKey {
			continue
		}
		deduped := dedupe(values)
		if len(deduped) == 0 {
			// An empty value list matches every value of the key.
			return nil, fmt.Errorf("%w: tag %q has no non-empty value", domain.ErrNoTagFilters, key)
		}
		filters = append(filters, TagFilter{Key: key, Values: deduped})
	}
	filters = append(filters, TagFilter{Key: ResourceTypeTagKey, Values: []string{ResourceTypeTagValue}})

	sort.Slice(filters, func(i, j int) bool {
		return filters[i].Key < filters[j].Key
	})
	return filters, nil
}

// dedupe drops empty and repeated values, keeping first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
