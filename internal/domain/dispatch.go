package domain

import (
	"context"
	"log/slog"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// trialProgress counts completed trials across workers. total is an upper
// bound: break-on policies can finish a run with fewer trials than sites
// times substitutes.
type trialProgress struct {
	mu    sync.Mutex
	count int
	total int
}

func (p *trialProgress) increment() {
	p.mu.Lock()
	p.count++
	p.mu.Unlock()
}

func (p *trialProgress) done() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.count
}

// estimateTotal sums the substitutes available at each sampled site.
func estimateTotal(sample []GenomeTarget) int {
	total := 0
	for _, target := range sample {
		total += len(SubstitutesFor(target.Loc.Op))
	}

	return total
}

// RunMutationTrials executes trials for every sampled site and assembles the
// summary. Sequential runs share one artifact cache and one seeded stream;
// parallel runs give each site a private cache and a seed derived from the
// site's sample position, keeping the draw reproducible under any
// interleaving.
func (tc *TrialController) RunMutationTrials(ctx context.Context, group *GenomeGroup, sample []GenomeTarget, spaceSize int) (m.ResultsSummary, error) {
	start := time.Now()

	summary := m.ResultsSummary{
		NLocsMutated:    len(sample),
		NLocsIdentified: spaceSize,
	}

	baseline, err := tc.CleanTrial(ctx)
	if err != nil {
		return summary, err
	}

	summary.BaselineRuntime = baseline

	if tc.cfg.Parallel {
		err = tc.runParallel(ctx, group, sample, &summary)
	} else {
		err = tc.runSequential(ctx, group, sample, &summary)
	}

	summary.TotalRuntime = time.Since(start)

	return summary, err
}

func (tc *TrialController) runSequential(ctx context.Context, group *GenomeGroup, sample []GenomeTarget, summary *m.ResultsSummary) error {
	rng := rand.New(rand.NewSource(tc.cfg.RandomSeed))
	progress := &trialProgress{total: estimateTotal(sample)}

	for _, target := range sample {
		genome := group.Genome(target.SourceFile)

		results, err := tc.siteTrials(ctx, tc.cache, genome, target, rng, progress)
		summary.Results = append(summary.Results, results...)

		if err != nil {
			return err
		}
	}

	return nil
}

func (tc *TrialController) runParallel(ctx context.Context, group *GenomeGroup, sample []GenomeTarget, summary *m.ResultsSummary) error {
	progress := &trialProgress{total: estimateTotal(sample)}

	slots := make([][]m.TrialResult, len(sample))

	var grp errgroup.Group

	grp.SetLimit(runtime.NumCPU())

	for i, target := range sample {
		i, target := i, target

		grp.Go(func() error {
			cache, err := tc.privateCache()
			if err != nil {
				return err
			}

			defer func() {
				if err := cache.RemoveRoot(ctx); err != nil {
					slog.Warn("private cache cleanup failed", "root", cache.Root(ctx), "error", err)
				}
			}()

			// Each site gets its own genome so lazy parsing never
			// races across workers.
			genome := group.CloneGenome(target.SourceFile)

			rng := rand.New(rand.NewSource(tc.cfg.RandomSeed + int64(i)))

			results, err := tc.siteTrials(ctx, cache, genome, target, rng, progress)
			slots[i] = results

			return err
		})
	}

	err := grp.Wait()

	for _, results := range slots {
		summary.Results = append(summary.Results, results...)
	}

	return err
}
