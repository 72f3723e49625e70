package rollout

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/artpar/lambda-rollout/internal/core/appspec"
	"github.com/artpar/lambda-rollout/internal/core/domain"
	"github.com/artpar/lambda-rollout/internal/shell/provider"
)

// SequencerConfig configures the deployment sequencer.
type SequencerConfig struct {
	// RequestDelay is the minimum gap between two deployment triggers.
	// Values below MinRequestDelay are raised to it.
	RequestDelay time.Duration

	// DryRun builds and logs every request without triggering it.
	DryRun bool

	// Clock drives the pacer. Default: the real clock.
	Clock clockwork.Clock
}

// Sequencer triggers one deployment per target, one at a time.
type Sequencer struct {
	gateway provider.Gateway
	config  SequencerConfig
	logger  *slog.Logger
}

// NewSequencer creates a sequencer on top of a gateway.
func NewSequencer(gateway provider.Gateway, config SequencerConfig, logger *slog.Logger) *Sequencer {
	if config.RequestDelay < MinRequestDelay {
		config.RequestDelay = MinRequestDelay
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Sequencer{
		gateway: gateway,
		config:  config,
		logger:  logger.With("component", "sequencer"),
	}
}

// Run triggers the targets in order, waiting on the pacer before each call
// and for each call to return before the next. The first failed trigger stops
// the sequence; deployments already created are left running and listed in
// the returned report alongside the *domain.TriggerError.
func (s *Sequencer) Run(ctx context.Context, targets []domain.DeploymentTarget, app domain.AppConfig) (domain.DeploymentReport, error) {
	app = app.WithDefaults()
	report := domain.DeploymentReport{
		RunID:    app.RunID,
		DryRun:   s.config.DryRun,
		Deployed: []domain.DeploymentOutcome{},
	}

	if len(targets) == 0 {
		s.logger.Info("nothing to deploy")
		report.NothingToDeploy = true
		return report, nil
	}

	pacer := NewPacer(s.config.Clock, s.config.RequestDelay)
	for _, target := range targets {
		req, err := appspec.NewRequest(app, target)
		if err != nil {
			return s.halt(report, target, err)
		}

		if s.config.DryRun {
			s.logger.Info("dry run: deployment not triggered",
				"deployment_group", req.DeploymentGroupName,
				"deployment_config", req.DeploymentConfigName,
				"revision", req.RevisionContent,
			)
			report.Deployed = append(report.Deployed, domain.DeploymentOutcome{Target: target})
			continue
		}

		if err := pacer.Wait(ctx); err != nil {
			return s.halt(report, target, err)
		}

		s.logger.Info("triggering deployment",
			"function", target.Name,
			"current_version", target.LiveAliasVersion,
			"target_version", target.LatestPublishedVersion,
		)
		id, err := s.gateway.Trigger(ctx, req)
		if err != nil {
			return s.halt(report, target, err)
		}
		report.Deployed = append(report.Deployed, domain.DeploymentOutcome{Target: target, DeploymentID: id})
	}

	s.logSummary(report)
	return report, nil
}

func (s *Sequencer) halt(report domain.DeploymentReport, target domain.DeploymentTarget, err error) (domain.DeploymentReport, error) {
	tErr := domain.NewTriggerError(target.Name, target.Name, err)
	report.Failed = &domain.FailedTarget{Target: target, Reason: err.Error()}

	s.logger.Error("deployment sequence halted",
		"function", target.Name,
		"succeeded_before_failure", len(report.Deployed),
		"error", err,
	)
	s.logSummary(report)
	return report, tErr
}

func (s *Sequencer) logSummary(report domain.DeploymentReport) {
	for _, line := range report.SummaryLines() {
		s.logger.Info(line)
	}
}
