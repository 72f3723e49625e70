package rollout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/lambda-rollout/internal/core/appspec"
	"github.com/artpar/lambda-rollout/internal/core/domain"
)

var testTags = map[string][]string{"Application": {"Betting-Api", "Hub88-Api"}}

func newTestReconciler(catalog *fakeCatalog, inspector *fakeInspector, gateway *fakeGateway, clock clockwork.Clock) *Reconciler {
	sequencer := NewSequencer(gateway, SequencerConfig{Clock: clock}, nil)
	return NewReconciler(catalog, inspector, sequencer, ReconcilerConfig{MaxConcurrent: 2}, nil)
}

func TestNewReconciler_DefaultConfig(t *testing.T) {
	r := NewReconciler(&fakeCatalog{}, &fakeInspector{}, nil, ReconcilerConfig{}, nil)
	assert.Equal(t, 10, r.config.MaxConcurrent)
	assert.Equal(t, DefaultReconcilerConfig(), r.config)
}

func TestReconciler_Run_DeploysOnlyDrifted(t *testing.T) {
	clock := clockwork.NewFakeClock()
	catalog := &fakeCatalog{ids: []domain.FunctionID{"arn:A", "arn:B"}}
	inspector := &fakeInspector{records: map[domain.FunctionID]domain.FunctionRecord{
		"arn:A": makeRecord("A", "1", "3"),
		"arn:B": makeRecord("B", "2", "2"),
	}}
	gateway := &fakeGateway{clock: clock}

	report, err := newTestReconciler(catalog, inspector, gateway, clock).Run(context.Background(), testTags, testApp)
	require.NoError(t, err)

	assert.Equal(t, testTags, catalog.tags)
	require.Equal(t, []string{"A"}, gateway.groups())

	parsed, err := appspec.Parse(gateway.calls[0].req.RevisionContent)
	require.NoError(t, err)
	assert.Equal(t, "1", parsed[0].CurrentVersion)
	assert.Equal(t, "3", parsed[0].TargetVersion)

	assert.Equal(t, 2, report.Discovered)
	assert.Equal(t, []string{"A: 1 -> 3"}, report.SummaryLines())
	assert.Empty(t, report.Skipped)
}

func TestReconciler_Run_UsesLiveAlias(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inspector := &fakeInspector{records: map[domain.FunctionID]domain.FunctionRecord{"arn:A": makeRecord("A", "1", "1")}}

	_, err := newTestReconciler(&fakeCatalog{ids: []domain.FunctionID{"arn:A"}}, inspector, &fakeGateway{}, clock).
		Run(context.Background(), testTags, domain.AppConfig{ApplicationName: "app"})
	require.NoError(t, err)

	assert.Equal(t, []string{"live"}, inspector.aliases)
}

func TestReconciler_Run_KeepsCatalogOrder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	catalog := &fakeCatalog{ids: []domain.FunctionID{"arn:A", "arn:B", "arn:C", "arn:D"}}
	inspector := &fakeInspector{
		records: map[domain.FunctionID]domain.FunctionRecord{
			"arn:A": makeRecord("A", "1", "2"),
			"arn:B": makeRecord("B", "1", "2"),
			"arn:C": makeRecord("C", "1", "2"),
			"arn:D": makeRecord("D", "1", "2"),
		},
		// Earlier functions finish last.
		delays: map[domain.FunctionID]time.Duration{
			"arn:A": 30 * time.Millisecond,
			"arn:B": 20 * time.Millisecond,
			"arn:C": 10 * time.Millisecond,
		},
	}
	gateway := &fakeGateway{clock: clock}
	r := newTestReconciler(catalog, inspector, gateway, clock)

	res := runPaced(clock, time.Second, func() runResult {
		report, err := r.Run(context.Background(), testTags, testApp)
		return runResult{report, err}
	})
	require.NoError(t, res.err)

	assert.Equal(t, []string{"A", "B", "C", "D"}, gateway.groups())
}

func TestReconciler_Run_IsolatesMetadataFailure(t *testing.T) {
	clock := clockwork.NewFakeClock()
	catalog := &fakeCatalog{ids: []domain.FunctionID{"arn:A", "arn:B", "arn:C"}}
	validationErr := domain.NewValidationError("arn:B", "GetFunction", []string{"Configuration.Version is missing"}, nil)
	inspector := &fakeInspector{
		records: map[domain.FunctionID]domain.FunctionRecord{
			"arn:A": makeRecord("A", "1", "2"),
			"arn:C": makeRecord("C", "5", "6"),
		},
		errs: map[domain.FunctionID]error{"arn:B": validationErr},
	}
	gateway := &fakeGateway{clock: clock}
	r := newTestReconciler(catalog, inspector, gateway, clock)

	res := runPaced(clock, time.Second, func() runResult {
		report, err := r.Run(context.Background(), testTags, testApp)
		return runResult{report, err}
	})
	require.NoError(t, res.err)

	assert.Equal(t, []string{"A", "C"}, gateway.groups())
	assert.True(t, res.report.Partial())
	require.Len(t, res.report.Skipped, 1)
	assert.Equal(t, domain.FunctionID("arn:B"), res.report.Skipped[0].FunctionID)
	assert.ErrorIs(t, res.report.Skipped[0].Err, domain.ErrMetadataValidation)
	assert.Contains(t, res.report.Skipped[0].Reason, "Configuration.Version is missing")
}

func TestReconciler_Run_DeploysEachFunctionNameOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	catalog := &fakeCatalog{ids: []domain.FunctionID{"arn:A", "arn:B", "arn:A", "arn:A-copy"}}
	inspector := &fakeInspector{records: map[domain.FunctionID]domain.FunctionRecord{
		"arn:A":      makeRecord("A", "1", "3"),
		"arn:B":      makeRecord("B", "4", "5"),
		"arn:A-copy": makeRecord("A", "2", "3"),
	}}
	gateway := &fakeGateway{clock: clock}
	r := newTestReconciler(catalog, inspector, gateway, clock)

	res := runPaced(clock, time.Second, func() runResult {
		report, err := r.Run(context.Background(), testTags, testApp)
		return runResult{report, err}
	})
	require.NoError(t, res.err)

	assert.Equal(t, []string{"A", "B"}, gateway.groups())
	assert.Equal(t, []string{"A: 1 -> 3", "B: 4 -> 5"}, res.report.SummaryLines())
	assert.Equal(t, 4, res.report.Discovered)
}

func TestReconciler_Run_DiscoveryFailureIsFatal(t *testing.T) {
	cause := domain.NewDiscoveryError("GetResources", errors.New("AccessDenied"))
	inspector := &fakeInspector{}
	gateway := &fakeGateway{}

	_, err := newTestReconciler(&fakeCatalog{err: cause}, inspector, gateway, clockwork.NewFakeClock()).
		Run(context.Background(), testTags, testApp)

	assert.ErrorIs(t, err, domain.ErrDiscoveryFailed)
	assert.Empty(t, inspector.aliases)
	assert.Empty(t, gateway.calls)
}

func TestReconciler_Run_NoFunctionsFound(t *testing.T) {
	gateway := &fakeGateway{}

	report, err := newTestReconciler(&fakeCatalog{}, &fakeInspector{}, gateway, clockwork.NewFakeClock()).
		Run(context.Background(), testTags, testApp)
	require.NoError(t, err)

	assert.True(t, report.NothingToDeploy)
	assert.Zero(t, report.Discovered)
	assert.Empty(t, gateway.calls)
}

func TestReconciler_Run_CancelledDuringInspection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inspector := &fakeInspector{errs: map[domain.FunctionID]error{"arn:A": context.Canceled}}
	gateway := &fakeGateway{}

	_, err := newTestReconciler(&fakeCatalog{ids: []domain.FunctionID{"arn:A"}}, inspector, gateway, clockwork.NewFakeClock()).
		Run(ctx, testTags, testApp)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, gateway.calls)
}
