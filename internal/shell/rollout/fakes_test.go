package rollout

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/artpar/lambda-rollout/internal/core/domain"
)

// =============================================================================
// Test Helpers
// =============================================================================

func makeTarget(name, live, latest string) domain.DeploymentTarget {
	return domain.DeploymentTarget{FunctionRecord: makeRecord(name, live, latest)}
}

func makeRecord(name, live, latest string) domain.FunctionRecord {
	return domain.FunctionRecord{Name: name, LiveAliasVersion: live, LatestPublishedVersion: latest}
}

// =============================================================================
// Fakes
// =============================================================================

type fakeCatalog struct {
	ids  []domain.FunctionID
	err  error
	tags map[string][]string
}

func (f *fakeCatalog) Find(ctx context.Context, tags map[string][]string) ([]domain.FunctionID, error) {
	f.tags = tags
	return f.ids, f.err
}

type fakeInspector struct {
	mu      sync.Mutex
	records map[domain.FunctionID]domain.FunctionRecord
	errs    map[domain.FunctionID]error
	delays  map[domain.FunctionID]time.Duration
	aliases []string
}

func (f *fakeInspector) Inspect(ctx context.Context, id domain.FunctionID, alias string) (domain.FunctionRecord, error) {
	if d := f.delays[id]; d > 0 {
		time.Sleep(d)
	}

	f.mu.Lock()
	f.aliases = append(f.aliases, alias)
	f.mu.Unlock()

	if err := f.errs[id]; err != nil {
		return domain.FunctionRecord{}, err
	}
	return f.records[id], nil
}

type triggerCall struct {
	req domain.DeploymentRequest
	at  time.Time
}

type fakeGateway struct {
	mu    sync.Mutex
	clock clockwork.Clock
	calls []triggerCall
	// failOn makes the trigger for this deployment group fail.
	failOn string
	err    error
	// inFlight detects overlapping triggers.
	inFlight   int
	overlapped bool
}

func (f *fakeGateway) Trigger(ctx context.Context, req domain.DeploymentRequest) (string, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > 1 {
		f.overlapped = true
	}
	var now time.Time
	if f.clock != nil {
		now = f.clock.Now()
	}
	f.calls = append(f.calls, triggerCall{req: req, at: now})
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if req.DeploymentGroupName == f.failOn {
		return "", f.err
	}
	return "d-" + req.DeploymentGroupName, nil
}

func (f *fakeGateway) groups() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.req.DeploymentGroupName)
	}
	return out
}

// runPaced runs fn in the background and advances the fake clock each time
// the pacer blocks, until fn returns.
func runPaced[T any](clock clockwork.FakeClock, step time.Duration, fn func() T) T {
	done := make(chan T, 1)
	go func() { done <- fn() }()

	for {
		select {
		case v := <-done:
			return v
		case <-time.After(5 * time.Millisecond):
			clock.Advance(step)
		}
	}
}
