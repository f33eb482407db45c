// Package domain contains the mutation-testing engine: target discovery,
// mutant synthesis, sampling and trial execution.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/EvanKepner/mutatest/internal/adapter"
	m "github.com/EvanKepner/mutatest/internal/model"
)

// RunArgs carries everything one mutation run needs beyond the adapters.
type RunArgs struct {
	Paths      []m.Path
	ReportPath m.Path
	TestCmd    []string
	Config     m.RunConfig
}

// Workflow is the top-level entry point the run command talks to.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) (m.ResultsSummary, error)
	ListTargets(ctx context.Context, args RunArgs) ([]GenomeTarget, error)
}

type workflow struct {
	fs       adapter.SourceFSAdapter
	gofile   adapter.GoFileAdapter
	coverage adapter.CoverageAdapter
	cache    adapter.CacheAdapter
	runner   adapter.TestRunnerAdapter
	reports  adapter.ReportStore
	observer TrialObserver
}

// NewWorkflow creates a Workflow instance wired to the provided adapters.
// The observer may be nil for headless runs.
func NewWorkflow(
	fs adapter.SourceFSAdapter,
	gofile adapter.GoFileAdapter,
	coverage adapter.CoverageAdapter,
	cache adapter.CacheAdapter,
	runner adapter.TestRunnerAdapter,
	reports adapter.ReportStore,
	observer TrialObserver,
) Workflow {
	return &workflow{
		fs:       fs,
		gofile:   gofile,
		coverage: coverage,
		cache:    cache,
		runner:   runner,
		reports:  reports,
		observer: observer,
	}
}

// Run executes a full mutation run: discover targets, sample, run trials
// and persist the summary when a report path is set.
func (w *workflow) Run(ctx context.Context, args RunArgs) (m.ResultsSummary, error) {
	group, err := w.buildGroup(ctx, args)
	if err != nil {
		return m.ResultsSummary{}, err
	}

	space, err := BuildSampleSpace(ctx, group, args.Config)
	if err != nil {
		return m.ResultsSummary{}, err
	}

	if len(space) == 0 {
		return m.ResultsSummary{}, &ConfigurationError{Reason: "no mutation targets found in the given paths"}
	}

	n := args.Config.NLocations
	if n <= 0 {
		n = len(space)
	}

	sample, err := SampleLocations(space, n, args.Config.RandomSeed)
	if err != nil {
		return m.ResultsSummary{}, err
	}

	slog.Info("sampled mutation locations",
		"identified", len(space),
		"sampled", len(sample),
		"seed", args.Config.RandomSeed,
	)

	workDir, err := w.workDir(ctx, args.Paths)
	if err != nil {
		return m.ResultsSummary{}, err
	}

	controller := NewTrialController(w.cache, w.runner, w.observer, workDir, args.TestCmd, args.Config)

	summary, err := controller.RunMutationTrials(ctx, group, sample, len(space))
	if err != nil {
		return summary, err
	}

	if args.ReportPath != "" {
		if err := w.reports.SaveSummary(ctx, args.ReportPath, summary); err != nil {
			return summary, err
		}

		slog.Info("saved trial report", "path", args.ReportPath)
	}

	return summary, nil
}

// ListTargets discovers mutable sites without running any trials.
func (w *workflow) ListTargets(ctx context.Context, args RunArgs) ([]GenomeTarget, error) {
	group, err := w.buildGroup(ctx, args)
	if err != nil {
		return nil, err
	}

	return BuildSampleSpace(ctx, group, args.Config)
}

func (w *workflow) buildGroup(ctx context.Context, args RunArgs) (*GenomeGroup, error) {
	group := NewGenomeGroup(w.fs, w.gofile, w.coverage)

	for _, path := range args.Paths {
		info, err := w.fs.FileInfo(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("inspect path %s: %w", path, err)
		}

		if info.IsDir() {
			if err := group.AddFolder(ctx, path, args.Config.ExcludeFiles); err != nil {
				return nil, err
			}

			continue
		}

		if err := group.AddFile(path); err != nil {
			return nil, err
		}
	}

	if group.Len() == 0 {
		return nil, &ConfigurationError{Reason: "no Go source files found in the given paths"}
	}

	if len(args.Config.FilterCodes) > 0 {
		if err := group.SetFilterCodes(args.Config.FilterCodes); err != nil {
			return nil, err
		}
	}

	return group, nil
}

// workDir resolves the module root the test command runs in, falling back to
// the current directory when the first path is outside any module.
func (w *workflow) workDir(ctx context.Context, paths []m.Path) (m.Path, error) {
	if len(paths) == 0 {
		return ".", nil
	}

	root, err := w.fs.FindModuleRoot(ctx, paths[0])
	if err != nil {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return "", cwdErr
		}

		slog.Warn("no enclosing module found, running tests from working directory", "path", paths[0])

		return m.Path(cwd), nil
	}

	return root, nil
}
