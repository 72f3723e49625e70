// Package appspec builds the CodeDeploy AppSpec revision content for a
// Lambda deployment.
// This is part of the Functional Core - all functions are pure with no I/O.
package appspec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/artpar/lambda-rollout/internal/core/domain"
)

// DocumentVersion is the AppSpec version written into every revision.
const DocumentVersion = "0.0.1"

var (
	ErrEmptyDocument     = errors.New("appspec document is empty")
	ErrNoResources       = errors.New("appspec document has no resources")
	ErrUnsupportedType   = errors.New("unsupported appspec resource type")
	ErrMultipleResources = errors.New("appspec resource entry must hold exactly one function")
)

// Document is the AppSpec content. Resources is a list of single-key objects
// keyed by function name.
type Document struct {
	Version   string                `json:"version"`
	Resources []map[string]Resource `json:"Resources"`
}

// Resource is one AppSpec resource entry.
type Resource struct {
	Type       string     `json:"Type"`
	Properties Properties `json:"Properties"`
}

// Properties are the alias shift CodeDeploy performs.
type Properties struct {
	Name           string `json:"Name"`
	Alias          string `json:"Alias"`
	CurrentVersion string `json:"CurrentVersion"`
	TargetVersion  string `json:"TargetVersion"`
}

// NewDocument wraps a single descriptor.
func NewDocument(d domain.ResourceDescriptor) Document {
	return Document{
		Version: DocumentVersion,
		Resources: []map[string]Resource{
			{
				d.FunctionName: {
					Type: domain.ResourceKindLambdaFunction,
					Properties: Properties{
						Name:           d.FunctionName,
						Alias:          d.AliasName,
						CurrentVersion: d.CurrentVersion,
						TargetVersion:  d.TargetVersion,
					},
				},
			},
		},
	}
}

// Marshal serializes a descriptor into revision content.
func Marshal(d domain.ResourceDescriptor) (string, error) {
	data, err := json.Marshal(NewDocument(d))
	if err != nil {
		return "", fmt.Errorf("failed to marshal appspec: %w", err)
	}
	return string(data), nil
}

// Parse reads revision content back into its descriptors, in document order.
func Parse(content string) ([]domain.ResourceDescriptor, error) {
	if content == "" {
		return nil, ErrEmptyDocument
	}

	var doc Document
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse appspec: %w", err)
	}
	if len(doc.Resources) == 0 {
		return nil, ErrNoResources
	}

	descriptors := make([]domain.ResourceDescriptor, 0, len(doc.Resources))
	for i, entry := range doc.Resources {
		if len(entry) != 1 {
			return nil, fmt.Errorf("Resources[%d]: %w", i, ErrMultipleResources)
		}
		for key, res := range entry {
			if res.Type != domain.ResourceKindLambdaFunction {
				return nil, fmt.Errorf("Resources[%d].%s: %w: %q", i, key, ErrUnsupportedType, res.Type)
			}
			descriptors = append(descriptors, domain.ResourceDescriptor{
				FunctionName:   res.Properties.Name,
				AliasName:      res.Properties.Alias,
				CurrentVersion: res.Properties.CurrentVersion,
				TargetVersion:  res.Properties.TargetVersion,
			})
		}
	}
	return descriptors, nil
}
