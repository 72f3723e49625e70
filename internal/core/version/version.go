// Package version validates Lambda metadata responses and selects the latest
// published version.
// This is part of the Functional Core - all functions are pure with no I/O.
package version

import (
	"fmt"
	"strings"

	"github.com/artpar/lambda-rollout/internal/core/domain"
)

// =============================================================================
// Response Shapes
// =============================================================================

// AliasResponse is the part of a GetFunction response the inspector reads.
// Nil pointers mean the field was absent.
type AliasResponse struct {
	Configuration *AliasConfiguration
}

// AliasConfiguration is the function configuration an alias resolves to.
type AliasConfiguration struct {
	FunctionName *string
	Version      *string
}

// VersionEntry is one item of a ListVersionsByFunction page.
type VersionEntry struct {
	FunctionName *string
	Version      *string
}

// AliasBinding is a validated alias lookup.
type AliasBinding struct {
	FunctionName string
	Version      string
}

// =============================================================================
// Validation
// =============================================================================

// ParseAlias checks the alias lookup has a function name and a version. On
// failure it returns every issue found.
func ParseAlias(resp AliasResponse) (AliasBinding, []string) {
	if resp.Configuration == nil {
		return AliasBinding{}, []string{"Configuration is missing"}
	}

	var issues []string
	cfg := resp.Configuration
	name := deref(cfg.FunctionName)
	if cfg.FunctionName == nil {
		issues = append(issues, "Configuration.FunctionName is missing")
	} else if name == "" {
		issues = append(issues, "Configuration.FunctionName is empty")
	}

	ver := deref(cfg.Version)
	if cfg.Version == nil {
		issues = append(issues, "Configuration.Version is missing")
	} else if ver != domain.UnpublishedVersion && !IsNumeric(ver) {
		issues = append(issues, fmt.Sprintf("Configuration.Version %q is not a version number", ver))
	}

	if len(issues) > 0 {
		return AliasBinding{}, issues
	}
	return AliasBinding{FunctionName: name, Version: ver}, nil
}

// ParseVersions extracts the version identifiers from a concatenated listing.
// Every entry must name its function and carry a version. $LATEST is kept
// here and dropped by Latest.
func ParseVersions(entries []VersionEntry) ([]string, []string) {
	var issues []string
	versions := make([]string, 0, len(entries))
	for i, e := range entries {
		if e.FunctionName == nil {
			issues = append(issues, fmt.Sprintf("Versions[%d].FunctionName is missing", i))
		} else if *e.FunctionName == "" {
			issues = append(issues, fmt.Sprintf("Versions[%d].FunctionName is empty", i))
		}
		if e.Version == nil {
			issues = append(issues, fmt.Sprintf("Versions[%d].Version is missing", i))
			continue
		}
		v := *e.Version
		if v != domain.UnpublishedVersion && !IsNumeric(v) {
			issues = append(issues, fmt.Sprintf("Versions[%d].Version %q is not a version number", i, v))
			continue
		}
		versions = append(versions, v)
	}
	return versions, issues
}

// =============================================================================
// Selection
// =============================================================================

// Latest returns the numerically greatest published version, ignoring
// $LATEST. Versions must already be numeric (see ParseVersions).
func Latest(versions []string) (string, error) {
	latest := ""
	for _, v := range versions {
		if v == domain.UnpublishedVersion {
			continue
		}
		if !IsNumeric(v) {
			return "", fmt.Errorf("version %q is not a version number", v)
		}
		if latest == "" || Compare(v, latest) > 0 {
			latest = v
		}
	}
	if latest == "" {
		return "", domain.ErrNoPublishedVersion
	}
	return latest, nil
}

// Compare orders two base-10 version strings by integer value. It returns
// -1, 0 or 1. Both inputs must satisfy IsNumeric.
func Compare(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return strings.Compare(a, b)
}

// IsNumeric reports whether s is a non-empty string of ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
