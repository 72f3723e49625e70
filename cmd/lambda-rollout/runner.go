package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/artpar/lambda-rollout/internal/core/domain"
	"github.com/artpar/lambda-rollout/internal/shell/provider"
	"github.com/artpar/lambda-rollout/internal/shell/rollout"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDiscoveryError  = 2
	ExitDeploymentError = 3
	ExitPartialRun      = 4
	ExitAWSError        = 5
)

// =============================================================================
// Runner
// =============================================================================

// Runner performs one rollout.
type Runner struct {
	config     *Config
	reconciler *rollout.Reconciler
	out        io.Writer
	logger     *slog.Logger
}

// APIs bundles the SDK client surfaces a Runner needs.
type APIs struct {
	Tagging    provider.TaggingAPI
	Lambda     provider.LambdaAPI
	CodeDeploy provider.CodeDeployAPI
}

// NewRunner loads AWS configuration, builds the SDK clients once and wires
// them into the pipeline.
func NewRunner(ctx context.Context, cfg *Config, logger *slog.Logger, out io.Writer) (*Runner, error) {
	awsCfg, err := provider.LoadAWSConfig(ctx, provider.AWSSettings{
		Region:      cfg.AWS.Region,
		Profile:     cfg.AWS.Profile,
		Credentials: cfg.AWS.AWSCredentials,
	})
	if err != nil {
		return nil, &RunError{
			Op:       "NewRunner",
			Err:      err,
			ExitCode: ExitAWSError,
		}
	}

	clients := provider.NewClients(awsCfg)
	return newRunnerWithAPIs(cfg, APIs{
		Tagging:    clients.Tagging,
		Lambda:     clients.Lambda,
		CodeDeploy: clients.CodeDeploy,
	}, rollout.SequencerConfig{}, logger, out), nil
}

// newRunnerWithAPIs wires the pipeline on the given clients. seqCfg supplies
// the clock; delay and dry-run come from cfg.
func newRunnerWithAPIs(cfg *Config, apis APIs, seqCfg rollout.SequencerConfig, logger *slog.Logger, out io.Writer) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	seqCfg.RequestDelay = cfg.Deploy.RequestDelay
	seqCfg.DryRun = cfg.Deploy.DryRun

	catalog := provider.NewTaggingCatalog(apis.Tagging, logger)
	inspector := provider.NewLambdaInspector(apis.Lambda, logger)
	gateway := provider.NewCodeDeployGateway(apis.CodeDeploy, logger)
	sequencer := rollout.NewSequencer(gateway, seqCfg, logger)
	reconciler := rollout.NewReconciler(catalog, inspector, sequencer, rollout.ReconcilerConfig{
		MaxConcurrent: cfg.Discovery.MaxConcurrent,
	}, logger)

	return &Runner{
		config:     cfg,
		reconciler: reconciler,
		out:        out,
		logger:     logger,
	}
}

// Run executes the rollout, prints the report and returns a *RunError whose
// ExitCode reflects the outcome. A run with skipped functions but no other
// failure returns ExitPartialRun.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.New().String()
	logger := r.logger.With("run_id", runID)
	logger.Info("starting rollout",
		"application", r.config.Deploy.ApplicationName,
		"tag_key", r.config.Discovery.TagKey,
		"tag_values", r.config.Discovery.TagValues,
		"alias", r.config.Deploy.Alias,
		"dry_run", r.config.Deploy.DryRun,
	)

	report, runErr := r.reconciler.Run(ctx, r.config.Tags(), r.config.AppConfig(runID))

	if err := WriteReport(r.out, report, r.config.Report.Format); err != nil {
		logger.Error("failed to write report", "error", err)
	}

	if runErr != nil {
		return &RunError{
			Op:       "Run",
			Err:      runErr,
			ExitCode: exitCodeFor(runErr),
		}
	}
	if report.Partial() {
		return &RunError{
			Op:       "Run",
			Err:      errors.New("some functions were skipped"),
			ExitCode: ExitPartialRun,
		}
	}

	logger.Info("rollout finished", "deployed", len(report.Deployed))
	return nil
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoTagFilters):
		return ExitConfigError
	case errors.Is(err, domain.ErrDiscoveryFailed):
		return ExitDiscoveryError
	case errors.Is(err, domain.ErrDeploymentTrigger):
		return ExitDeploymentError
	default:
		return ExitAWSError
	}
}

// RunError represents an error during a rollout.
type RunError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *RunError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}
