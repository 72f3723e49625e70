// Package domain holds per-run deployment settings.
package domain

// DefaultDeploymentConfigName is the CodeDeploy config used when none is set.
const DefaultDeploymentConfigName = "CodeDeployDefault.LambdaAllAtOnce"

// AppConfig holds the per-run deployment settings shared by every request.
type AppConfig struct {
	ApplicationName      string
	DeploymentConfigName string
	Description          string // optional; a per-target default is generated when empty
	AliasName            string
	RunID                string // identifies the run in logs and default descriptions
}

// WithDefaults fills in the deployment config name and alias when unset.
func (c AppConfig) WithDefaults() AppConfig {
	if c.DeploymentConfigName == "" {
		c.DeploymentConfigName = DefaultDeploymentConfigName
	}
	if c.AliasName == "" {
		c.AliasName = DefaultAlias
	}
	return c
}
