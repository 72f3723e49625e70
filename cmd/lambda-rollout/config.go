package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/artpar/lambda-rollout/internal/core/domain"
	coreprovider "github.com/artpar/lambda-rollout/internal/core/provider"
	"github.com/artpar/lambda-rollout/internal/shell/rollout"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	AWS       AWSConfig       `mapstructure:"aws"`
	Deploy    DeployConfig    `mapstructure:"deploy"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Log       LogConfig       `mapstructure:"log"`
	Report    ReportConfig    `mapstructure:"report"`
}

// AWSConfig selects the account and region.
type AWSConfig struct {
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`

	// Static keys are optional; the default credential chain is used otherwise.
	coreprovider.AWSCredentials `mapstructure:",squash"`
}

// DeployConfig holds the CodeDeploy settings shared by every deployment.
type DeployConfig struct {
	ApplicationName      string        `mapstructure:"application_name"`
	DeploymentConfigName string        `mapstructure:"deployment_config_name"`
	Description          string        `mapstructure:"description"`
	Alias                string        `mapstructure:"alias"`
	RequestDelay         time.Duration `mapstructure:"request_delay"`
	DryRun               bool          `mapstructure:"dry_run"`
}

// DiscoveryConfig scopes which functions are considered.
type DiscoveryConfig struct {
	TagKey        string   `mapstructure:"tag_key"`
	TagValues     []string `mapstructure:"tag_values"`
	MaxConcurrent int      `mapstructure:"max_concurrent"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ReportConfig controls how the final report is printed.
type ReportConfig struct {
	Format string `mapstructure:"format"`
}

// Tags returns the tag selectors for discovery.
func (c *Config) Tags() map[string][]string {
	return map[string][]string{c.Discovery.TagKey: c.Discovery.TagValues}
}

// AppConfig returns the per-run deployment settings.
func (c *Config) AppConfig(runID string) domain.AppConfig {
	return domain.AppConfig{
		ApplicationName:      c.Deploy.ApplicationName,
		DeploymentConfigName: c.Deploy.DeploymentConfigName,
		Description:          c.Deploy.Description,
		AliasName:            c.Deploy.Alias,
		RunID:                runID,
	}
}

// =============================================================================
// Config Loading
// =============================================================================

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"region":                 "aws.region",
	"profile":                "aws.profile",
	"application-name":       "deploy.application_name",
	"deployment-config-name": "deploy.deployment_config_name",
	"description":            "deploy.description",
	"alias":                  "deploy.alias",
	"request-delay":          "deploy.request_delay",
	"dry-run":                "deploy.dry_run",
	"tag-key":                "discovery.tag_key",
	"tag-values":             "discovery.tag_values",
	"max-concurrent":         "discovery.max_concurrent",
	"log-level":              "log.level",
	"log-format":             "log.format",
	"report-format":          "report.format",
}

// LoadConfig loads configuration from defaults, an optional file, the
// environment and (when given) command-line flags, in increasing precedence.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")
	v.SetDefault("aws.session_token", "")
	v.SetDefault("deploy.application_name", "")
	v.SetDefault("deploy.deployment_config_name", domain.DefaultDeploymentConfigName)
	v.SetDefault("deploy.description", "")
	v.SetDefault("deploy.alias", domain.DefaultAlias)
	v.SetDefault("deploy.request_delay", "1s")
	v.SetDefault("deploy.dry_run", false)
	v.SetDefault("discovery.tag_key", "")
	v.SetDefault("discovery.tag_values", []string{})
	v.SetDefault("discovery.max_concurrent", rollout.DefaultReconcilerConfig().MaxConcurrent)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("report.format", "text")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("ROLLOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.Deploy.ApplicationName == "" {
		errs = multierror.Append(errs, errors.New("deploy.application_name is required"))
	}
	if c.Deploy.Alias == "" {
		errs = multierror.Append(errs, errors.New("deploy.alias must not be empty"))
	}
	if c.Deploy.RequestDelay < rollout.MinRequestDelay {
		errs = multierror.Append(errs, fmt.Errorf("deploy.request_delay must be at least %s, got %s",
			rollout.MinRequestDelay, c.Deploy.RequestDelay))
	}
	if c.Discovery.TagKey == "" {
		errs = multierror.Append(errs, errors.New("discovery.tag_key is required"))
	}
	if countNonBlank(c.Discovery.TagValues) == 0 {
		errs = multierror.Append(errs, errors.New("discovery.tag_values needs at least one non-empty value"))
	}
	if c.Discovery.MaxConcurrent < 1 {
		errs = multierror.Append(errs, errors.New("discovery.max_concurrent must be at least 1"))
	}
	if err := coreprovider.ValidateAWSCredentials(c.AWS.AWSCredentials); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := coreprovider.ValidateAWSRegion(c.AWS.Region); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%w: %q", err, c.AWS.Region))
	}
	switch strings.ToLower(c.Report.Format) {
	case ReportFormatText, ReportFormatJSON, ReportFormatYAML:
	default:
		errs = multierror.Append(errs, fmt.Errorf("report.format must be text, json or yaml, got %q", c.Report.Format))
	}

	return errs.ErrorOrNil()
}

// =============================================================================
// Logger Setup
// =============================================================================

func countNonBlank(values []string) int {
	n := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// =============================================================================
// Logging
// =============================================================================

// SetupLogger returns the process logger. Logs go to stderr so the report on
// stdout stays machine-readable.
func SetupLogger(cfg *Config) *slog.Logger {
	return newLogger(os.Stderr, cfg.Log)
}

// newLogger builds a JSON or text handler on w. Unknown levels fall back to
// info; "warning" is accepted for warn.
func newLogger(w io.Writer, lc LogConfig) *slog.Logger {
	name := strings.ToLower(strings.TrimSpace(lc.Level))
	if name == "warning" {
		name = "warn"
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}
	if strings.EqualFold(lc.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
