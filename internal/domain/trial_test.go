package domain

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/EvanKepner/mutatest/internal/adapter"
	m "github.com/EvanKepner/mutatest/internal/model"
)

type runnerCall struct {
	workDir string
	argv    []string
	env     []string
	timeout time.Duration
}

// fakeRunner replays scripted outcomes and records every invocation.
type fakeRunner struct {
	mu     sync.Mutex
	script []adapter.TrialOutcome
	calls  []runnerCall
}

// Run implements adapter.TestRunnerAdapter.
func (f *fakeRunner) Run(_ context.Context, workDir string, argv []string, env []string, timeout time.Duration) (adapter.TrialOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, runnerCall{workDir: workDir, argv: argv, env: env, timeout: timeout})

	if len(f.script) == 0 {
		return adapter.TrialOutcome{Runtime: time.Millisecond}, nil
	}

	outcome := f.script[0]
	f.script = f.script[1:]

	return outcome, nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func newTestController(t *testing.T, runner adapter.TestRunnerAdapter, cfg m.RunConfig) (*TrialController, adapter.CacheAdapter) {
	t.Helper()

	cache := adapter.NewLocalCacheAdapter().WithRoot(m.Path(t.TempDir()))

	return NewTrialController(cache, runner, nil, ".", []string{"go", "test", "./..."}, cfg), cache
}

func TestTrialController_CleanTrialPasses(t *testing.T) {
	runner := &fakeRunner{script: []adapter.TrialOutcome{{ExitCode: 0, Runtime: 50 * time.Millisecond}}}
	tc, _ := newTestController(t, runner, m.RunConfig{})

	baseline, err := tc.CleanTrial(context.Background())
	if err != nil {
		t.Fatalf("CleanTrial failed: %v", err)
	}

	if baseline != 50*time.Millisecond {
		t.Fatalf("expected recorded baseline runtime, got %s", baseline)
	}

	if len(runner.calls) != 1 || runner.calls[0].timeout != 0 {
		t.Fatalf("baseline must run without a deadline: %+v", runner.calls)
	}
}

func TestTrialController_CleanTrialFailureIsFatal(t *testing.T) {
	runner := &fakeRunner{script: []adapter.TrialOutcome{{ExitCode: 1, Output: "FAIL"}}}
	tc, _ := newTestController(t, runner, m.RunConfig{})

	_, err := tc.CleanTrial(context.Background())
	if err == nil {
		t.Fatal("expected baseline failure to be fatal")
	}

	var baseErr *BaselineTestError
	if !asError(err, &baseErr) {
		t.Fatalf("expected BaselineTestError, got %T", err)
	}

	if baseErr.ExitCode != 1 || baseErr.Output != "FAIL" {
		t.Fatalf("unexpected baseline error detail: %+v", baseErr)
	}
}

func TestTrialController_TrialTimeoutDerivedFromBaseline(t *testing.T) {
	runner := &fakeRunner{script: []adapter.TrialOutcome{{Runtime: 3 * time.Second}}}
	tc, _ := newTestController(t, runner, m.RunConfig{})

	if _, err := tc.CleanTrial(context.Background()); err != nil {
		t.Fatalf("CleanTrial failed: %v", err)
	}

	if got := tc.trialTimeout(); got != 30*time.Second {
		t.Fatalf("expected derived timeout 30s, got %s", got)
	}
}

func TestTrialController_TrialTimeoutFloor(t *testing.T) {
	runner := &fakeRunner{script: []adapter.TrialOutcome{{Runtime: 10 * time.Millisecond}}}
	tc, _ := newTestController(t, runner, m.RunConfig{})

	if _, err := tc.CleanTrial(context.Background()); err != nil {
		t.Fatalf("CleanTrial failed: %v", err)
	}

	if got := tc.trialTimeout(); got != minTrialTimeout {
		t.Fatalf("expected floor %s, got %s", minTrialTimeout, got)
	}
}

func TestTrialController_ExplicitTimeoutWins(t *testing.T) {
	tc, _ := newTestController(t, &fakeRunner{}, m.RunConfig{MaxRuntime: 2 * time.Minute})

	if got := tc.trialTimeout(); got != 2*time.Minute {
		t.Fatalf("expected configured timeout, got %s", got)
	}
}

func mutantForTest(t *testing.T) (m.Mutant, *Genome) {
	t.Helper()

	genome := newTestGenome(t, genomeFixture)

	targets, err := genome.Targets(context.Background())
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}

	mutant, err := genome.Mutate(context.Background(), targets[0], m.OpSub)
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}

	return mutant, genome
}

func TestTrialController_RunMutantTrialDetected(t *testing.T) {
	runner := &fakeRunner{script: []adapter.TrialOutcome{{ExitCode: 1}}}
	tc, cache := newTestController(t, runner, m.RunConfig{})

	mutant, _ := mutantForTest(t)

	result, err := tc.RunMutantTrial(context.Background(), cache, mutant)
	if err != nil {
		t.Fatalf("RunMutantTrial failed: %v", err)
	}

	if result.Status() != m.StatusDetected {
		t.Fatalf("exit 1 must map to DETECTED, got %s", result.Status())
	}

	// The overlay env override must have reached the subprocess.
	found := false

	for _, env := range runner.calls[0].env {
		if strings.HasPrefix(env, "GOFLAGS=-overlay=") {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected GOFLAGS overlay override, got %v", runner.calls[0].env)
	}

	// The cache entry is removed after the trial.
	cfile, err := cache.CacheFile(context.Background(), mutant.SrcFile)
	if err != nil {
		t.Fatalf("CacheFile failed: %v", err)
	}

	if _, err := os.Stat(string(cfile)); !os.IsNotExist(err) {
		t.Fatalf("expected artifact cleanup, stat err = %v", err)
	}
}

func TestTrialController_RunMutantTrialTimeout(t *testing.T) {
	runner := &fakeRunner{script: []adapter.TrialOutcome{{TimedOut: true, ExitCode: 1}}}
	tc, cache := newTestController(t, runner, m.RunConfig{MaxRuntime: time.Second})

	mutant, _ := mutantForTest(t)

	result, err := tc.RunMutantTrial(context.Background(), cache, mutant)
	if err != nil {
		t.Fatalf("RunMutantTrial failed: %v", err)
	}

	if result.ReturnCode != m.ReturnCodeTimeout || result.Status() != m.StatusTimeout {
		t.Fatalf("timed-out trial must map to TIMEOUT, got %d/%s", result.ReturnCode, result.Status())
	}
}

func TestTrialController_BreakOnDetectedStopsSite(t *testing.T) {
	// Every trial is detected; with break-on-detected one substitution
	// settles the site.
	runner := &fakeRunner{script: []adapter.TrialOutcome{
		{Runtime: time.Millisecond}, // baseline
		{ExitCode: 1},
		{ExitCode: 1},
		{ExitCode: 1},
		{ExitCode: 1},
	}}

	cfg := m.RunConfig{BreakOnDetected: true, RandomSeed: 3}
	tc, _ := newTestController(t, runner, cfg)

	_, genome := mutantForTest(t)

	group := newTestGroup(t)
	group.AddGenome(genome)

	targets, err := group.Targets(context.Background())
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}

	sample := []GenomeTarget{targets[0]}

	summary, err := tc.RunMutationTrials(context.Background(), group, sample, len(targets))
	if err != nil {
		t.Fatalf("RunMutationTrials failed: %v", err)
	}

	if len(summary.Results) != 1 {
		t.Fatalf("expected 1 trial with break-on-detected, got %d", len(summary.Results))
	}

	if runner.callCount() != 2 {
		t.Fatalf("expected baseline + 1 trial, got %d calls", runner.callCount())
	}
}

func TestTrialController_AllSubstitutesWithoutBreak(t *testing.T) {
	runner := &fakeRunner{script: []adapter.TrialOutcome{
		{Runtime: time.Millisecond}, // baseline
		{ExitCode: 1},
		{ExitCode: 0},
		{ExitCode: 1},
		{ExitCode: 2},
	}}

	tc, _ := newTestController(t, runner, m.RunConfig{RandomSeed: 3})

	_, genome := mutantForTest(t)

	group := newTestGroup(t)
	group.AddGenome(genome)

	targets, err := group.Targets(context.Background())
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}

	// The arithmetic site has 4 substitutes, all tried.
	sample := []GenomeTarget{targets[0]}

	summary, err := tc.RunMutationTrials(context.Background(), group, sample, len(targets))
	if err != nil {
		t.Fatalf("RunMutationTrials failed: %v", err)
	}

	if len(summary.Results) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(summary.Results))
	}

	counts := summary.StatusCounts()
	if counts[m.StatusDetected] != 2 || counts[m.StatusSurvived] != 1 || counts[m.StatusError] != 1 {
		t.Fatalf("unexpected status counts: %v", counts)
	}

	if summary.NLocsMutated != 1 || summary.NLocsIdentified != len(targets) {
		t.Fatalf("unexpected sampling counts: %+v", summary)
	}

	if summary.BaselineRuntime != time.Millisecond {
		t.Fatalf("expected baseline runtime in summary, got %s", summary.BaselineRuntime)
	}
}

func TestTrialController_ParallelTrials(t *testing.T) {
	runner := &fakeRunner{} // every trial survives

	cfg := m.RunConfig{Parallel: true, RandomSeed: 11}
	tc, _ := newTestController(t, runner, cfg)

	root := writeTree(t, map[string]string{
		"a.go": "package p\n\nfunc A(a, b int) int { return a + b }\n",
		"b.go": "package p\n\nfunc B(a, b bool) bool { return a && b }\n",
	})

	group := newTestGroup(t)
	if err := group.AddFolder(context.Background(), m.Path(root), nil); err != nil {
		t.Fatalf("AddFolder failed: %v", err)
	}

	sample, err := group.Targets(context.Background())
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}

	summary, err := tc.RunMutationTrials(context.Background(), group, sample, len(sample))
	if err != nil {
		t.Fatalf("RunMutationTrials failed: %v", err)
	}

	// Arithmetic site has 4 substitutes, boolean connective has 1.
	if len(summary.Results) != 5 {
		t.Fatalf("expected 5 trials, got %d", len(summary.Results))
	}

	if counts := summary.StatusCounts(); counts[m.StatusSurvived] != 5 {
		t.Fatalf("expected all survivors, got %v", counts)
	}
}

func TestEstimateTotal(t *testing.T) {
	sample := []GenomeTarget{
		{Loc: m.LocIndex{Kind: m.KindBinOp, Op: m.OpAdd}},       // 4 substitutes
		{Loc: m.LocIndex{Kind: m.KindBoolOp, Op: m.OpLogicalAnd}}, // 1 substitute
	}

	if got := estimateTotal(sample); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}
