// Package drift selects the functions whose live alias differs from their
// latest published version.
// This is part of the Functional Core - all functions are pure with no I/O.
package drift

import "github.com/artpar/lambda-rollout/internal/core/domain"

// Resolve keeps exactly the drifted records, in input order.
func Resolve(records []domain.FunctionRecord) []domain.DeploymentTarget {
	targets := make([]domain.DeploymentTarget, 0, len(records))
	for _, r := range records {
		if r.Drifted() {
			targets = append(targets, domain.DeploymentTarget{FunctionRecord: r})
		}
	}
	return targets
}

// UniqueByName keeps the first target for each function name, in input order,
// and returns the later repeats separately. Deployment groups are named after
// functions, so a run must not hold two targets with the same name.
func UniqueByName(targets []domain.DeploymentTarget) (unique, repeated []domain.DeploymentTarget) {
	seen := make(map[string]struct{}, len(targets))
	unique = make([]domain.DeploymentTarget, 0, len(targets))
	for _, t := range targets {
		if _, ok := seen[t.Name]; ok {
			repeated = append(repeated, t)
			continue
		}
		seen[t.Name] = struct{}{}
		unique = append(unique, t)
	}
	return unique, repeated
}
