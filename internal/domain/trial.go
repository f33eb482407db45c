package domain

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/EvanKepner/mutatest/internal/adapter"
	m "github.com/EvanKepner/mutatest/internal/model"
)

// timeoutFactor scales the baseline runtime into a per-trial deadline when
// no explicit maximum is configured. Mutants that produce infinite loops are
// the target; everything else finishes well inside the budget.
const timeoutFactor = 10

// minTrialTimeout is the floor for derived deadlines so very fast suites do
// not get starved by process startup cost.
const minTrialTimeout = 10 * time.Second

// TrialObserver receives progress notifications while trials run. Implemented
// by the controller package's user interfaces.
type TrialObserver interface {
	TrialStarted(target GenomeTarget, mutation m.Variant, done, total int)
	TrialCompleted(result m.TrialResult, done, total int)
}

// TrialController drives mutation trials: it synthesizes mutants, swaps them
// into the artifact cache, executes the test suite and interprets exit codes.
type TrialController struct {
	cache    adapter.CacheAdapter
	runner   adapter.TestRunnerAdapter
	observer TrialObserver

	workDir m.Path
	testCmd []string
	cfg     m.RunConfig

	baseline time.Duration
}

// NewTrialController constructs a TrialController. The observer may be nil.
func NewTrialController(cache adapter.CacheAdapter, runner adapter.TestRunnerAdapter, observer TrialObserver, workDir m.Path, testCmd []string, cfg m.RunConfig) *TrialController {
	return &TrialController{
		cache:    cache,
		runner:   runner,
		observer: observer,
		workDir:  workDir,
		testCmd:  testCmd,
		cfg:      cfg,
	}
}

// CleanTrial runs the unmutated suite once. A failing baseline is fatal:
// trial outcomes are meaningless when the suite does not pass against the
// original source.
func (tc *TrialController) CleanTrial(ctx context.Context) (time.Duration, error) {
	slog.Info("running baseline trial", "cmd", tc.testCmd)

	outcome, err := tc.runner.Run(ctx, string(tc.workDir), tc.testCmd, nil, 0)
	if err != nil {
		return 0, fmt.Errorf("baseline trial failed to launch: %w", err)
	}

	if outcome.ExitCode != 0 {
		return 0, &BaselineTestError{ExitCode: outcome.ExitCode, Output: outcome.Output}
	}

	tc.baseline = outcome.Runtime
	slog.Info("baseline trial passed", "runtime", outcome.Runtime)

	return outcome.Runtime, nil
}

// trialTimeout returns the deadline applied to each mutant trial.
func (tc *TrialController) trialTimeout() time.Duration {
	if tc.cfg.MaxRuntime > 0 {
		return tc.cfg.MaxRuntime
	}

	derived := tc.baseline * timeoutFactor
	if derived < minTrialTimeout {
		return minTrialTimeout
	}

	return derived
}

// RunMutantTrial swaps one mutant into the given cache, executes the suite
// against it and restores the cache afterwards regardless of outcome.
func (tc *TrialController) RunMutantTrial(ctx context.Context, cache adapter.CacheAdapter, mutant m.Mutant) (m.TrialResult, error) {
	result := m.TrialResult{Mutant: m.MutantReport{
		SrcFile:  mutant.SrcFile,
		SrcIdx:   mutant.SrcIdx,
		Mutation: mutant.Mutation,
		Diff:     mutant.Diff,
	}}

	cfile, err := cache.CacheFile(ctx, mutant.SrcFile)
	if err != nil {
		return result, err
	}

	overlay, err := cache.OverlayFile(ctx)
	if err != nil {
		return result, err
	}

	mutant.CacheFile = cfile
	mutant.OverlayFile = overlay

	if err := cache.WriteMutant(ctx, mutant); err != nil {
		return result, fmt.Errorf("install mutant: %w", err)
	}

	defer func() {
		if err := cache.RemoveMutant(ctx, mutant.SrcFile); err != nil {
			slog.Warn("mutant cleanup failed", "src", mutant.SrcFile, "error", err)
		}
	}()

	env, err := cache.EnvOverride(ctx)
	if err != nil {
		return result, err
	}

	outcome, err := tc.runner.Run(ctx, string(tc.workDir), tc.testCmd, env, tc.trialTimeout())
	if err != nil {
		return result, fmt.Errorf("mutant trial failed to launch: %w", err)
	}

	if outcome.TimedOut {
		result.ReturnCode = m.ReturnCodeTimeout
	} else {
		result.ReturnCode = outcome.ExitCode
	}

	slog.Debug("mutant trial finished",
		"src", mutant.SrcFile,
		"loc", mutant.SrcIdx.String(),
		"mutation", mutant.Mutation,
		"status", result.Status(),
	)

	return result, nil
}

// breakOn reports whether the run policy stops a site after this status.
func (tc *TrialController) breakOn(status m.TrialStatus) bool {
	switch status {
	case m.StatusSurvived:
		return tc.cfg.BreakOnSurvival
	case m.StatusDetected:
		return tc.cfg.BreakOnDetected
	case m.StatusError:
		return tc.cfg.BreakOnError
	case m.StatusTimeout:
		return tc.cfg.BreakOnTimeout
	default:
		return tc.cfg.BreakOnUnknown
	}
}

// siteTrials exercises every applicable mutation at one sampled site in
// shuffled order, honoring the break-on policy. The rng is owned by the
// caller so sequential runs draw from a single seeded stream.
func (tc *TrialController) siteTrials(ctx context.Context, cache adapter.CacheAdapter, genome *Genome, target GenomeTarget, rng *rand.Rand, progress *trialProgress) ([]m.TrialResult, error) {
	substitutes := SubstitutesFor(target.Loc.Op)

	shuffled := make([]m.Variant, len(substitutes))
	for i, j := range rng.Perm(len(substitutes)) {
		shuffled[i] = substitutes[j]
	}

	var results []m.TrialResult

	for _, mutation := range shuffled {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if tc.observer != nil {
			tc.observer.TrialStarted(target, mutation, progress.done(), progress.total)
		}

		mutant, err := genome.Mutate(ctx, target.Loc, mutation)
		if err != nil {
			return results, err
		}

		result, err := tc.RunMutantTrial(ctx, cache, mutant)
		if err != nil {
			return results, err
		}

		results = append(results, result)
		progress.increment()

		if tc.observer != nil {
			tc.observer.TrialCompleted(result, progress.done(), progress.total)
		}

		if tc.breakOn(result.Status()) {
			slog.Debug("break-on policy stops site", "status", result.Status(), "loc", target.Loc.String())
			break
		}
	}

	return results, nil
}

// privateCache returns an isolated cache for one parallel site trial, rooted
// under the system temp directory with a unique name.
func (tc *TrialController) privateCache() (adapter.CacheAdapter, error) {
	root := filepath.Join(os.TempDir(), "mutatest-"+uuid.NewString())

	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create private cache %s: %w", root, err)
	}

	return tc.cache.WithRoot(m.Path(root)), nil
}
