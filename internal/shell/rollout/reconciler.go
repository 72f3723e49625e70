package rollout

import (
	"context"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/artpar/lambda-rollout/internal/core/domain"
	"github.com/artpar/lambda-rollout/internal/core/drift"
	"github.com/artpar/lambda-rollout/internal/shell/provider"
)

// ReconcilerConfig configures the reconciler.
type ReconcilerConfig struct {
	// MaxConcurrent is the maximum number of functions inspected at once.
	// Default: 10.
	MaxConcurrent int
}

// DefaultReconcilerConfig returns the default configuration.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{MaxConcurrent: 10}
}

// Reconciler finds drifted functions and hands them to the sequencer.
type Reconciler struct {
	catalog   provider.Catalog
	inspector provider.Inspector
	sequencer *Sequencer
	config    ReconcilerConfig
	logger    *slog.Logger
}

// NewReconciler wires the pipeline stages together.
func NewReconciler(
	catalog provider.Catalog,
	inspector provider.Inspector,
	sequencer *Sequencer,
	config ReconcilerConfig,
	logger *slog.Logger,
) *Reconciler {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		catalog:   catalog,
		inspector: inspector,
		sequencer: sequencer,
		config:    config,
		logger:    logger.With("component", "reconciler"),
	}
}

// inspection pairs an inspect result with the catalog position it came from.
type inspection struct {
	id     domain.FunctionID
	record domain.FunctionRecord
	err    error
}

// Run discovers the tagged functions, inspects them in parallel, keeps the
// drifted ones and deploys them in catalog order. A function whose metadata
// cannot be read is skipped and reported; the others still deploy.
func (r *Reconciler) Run(ctx context.Context, tags map[string][]string, app domain.AppConfig) (domain.DeploymentReport, error) {
	app = app.WithDefaults()
	logger := r.logger.With("run_id", app.RunID)

	ids, err := r.catalog.Find(ctx, tags)
	if err != nil {
		return domain.DeploymentReport{RunID: app.RunID}, err
	}

	results, err := r.inspectAll(ctx, ids, app.AliasName)
	if err != nil {
		return domain.DeploymentReport{RunID: app.RunID, Discovered: len(ids)}, err
	}

	var (
		records  []domain.FunctionRecord
		skipped  []domain.InspectionFailure
		warnings *multierror.Error
	)
	for _, res := range results {
		if res.err != nil {
			skipped = append(skipped, domain.NewInspectionFailure(res.id, res.err))
			warnings = multierror.Append(warnings, res.err)
			continue
		}
		records = append(records, res.record)
	}
	if warnings != nil {
		logger.Warn("functions skipped: metadata could not be inspected",
			"skipped", len(skipped),
			"error", warnings.ErrorOrNil(),
		)
	}

	targets, repeated := drift.UniqueByName(drift.Resolve(records))
	for _, t := range repeated {
		logger.Warn("duplicate function name: only the first is deployed",
			"function", t.Name,
			"current_version", t.LiveAliasVersion,
			"target_version", t.LatestPublishedVersion,
		)
	}
	logger.Info("drift resolved",
		"discovered", len(ids),
		"inspected", len(records),
		"drifted", len(targets),
	)

	report, err := r.sequencer.Run(ctx, targets, app)
	report.Discovered = len(ids)
	report.Skipped = skipped
	return report, err
}

// inspectAll inspects every function with bounded parallelism. Each task
// writes only its own slot, so results keep catalog order. Per-function errors
// are kept in the result; only cancellation fails the whole batch.
func (r *Reconciler) inspectAll(ctx context.Context, ids []domain.FunctionID, alias string) ([]inspection, error) {
	results := make([]inspection, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.MaxConcurrent)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			rec, err := r.inspector.Inspect(gctx, id, alias)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			if err != nil {
				attrs := []any{"function_id", id, "error", err, "validation", provider.IsValidationFailure(err)}
				if code := provider.APIErrorCode(err); code != "" {
					attrs = append(attrs, "error_code", code)
				}
				r.logger.Warn("function inspection failed", attrs...)
			}
			results[i] = inspection{id: id, record: rec, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
