package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/EvanKepner/mutatest/internal/adapter"
	m "github.com/EvanKepner/mutatest/internal/model"
)

// GenomeTarget pairs a mutable site with the file it was found in. It is the
// unit the sampler draws from when a run spans multiple files.
type GenomeTarget struct {
	SourceFile m.Path     `yaml:"source_file"`
	Loc        m.LocIndex `yaml:"loc"`
}

// GenomeGroup is an ordered collection of Genomes keyed by source path.
// Iteration order is insertion order so repeated runs over the same tree
// enumerate targets deterministically.
type GenomeGroup struct {
	fs       adapter.SourceFSAdapter
	gofile   adapter.GoFileAdapter
	coverage adapter.CoverageAdapter

	order   []m.Path
	genomes map[m.Path]*Genome
}

// NewGenomeGroup constructs an empty GenomeGroup.
func NewGenomeGroup(fs adapter.SourceFSAdapter, gofile adapter.GoFileAdapter, coverage adapter.CoverageAdapter) *GenomeGroup {
	return &GenomeGroup{
		fs:       fs,
		gofile:   gofile,
		coverage: coverage,
		genomes:  make(map[m.Path]*Genome),
	}
}

// Len returns the number of genomes in the group.
func (gg *GenomeGroup) Len() int {
	return len(gg.order)
}

// Paths returns the source paths in insertion order.
func (gg *GenomeGroup) Paths() []m.Path {
	paths := make([]m.Path, len(gg.order))
	copy(paths, gg.order)

	return paths
}

// Genome returns the genome for a source path, or nil when absent.
func (gg *GenomeGroup) Genome(path m.Path) *Genome {
	return gg.genomes[path]
}

// CloneGenome returns a fresh genome over the same file with the same
// coverage and filter settings but none of the cached derived state. Used by
// parallel trials, which must not share lazily parsed trees across workers.
func (gg *GenomeGroup) CloneGenome(path m.Path) *Genome {
	original := gg.genomes[path]
	if original == nil {
		return nil
	}

	clone := NewGenome(gg.fs, gg.gofile, gg.coverage, original.srcFile, original.coverageFile)
	clone.filterCodes = original.filterCodes

	return clone
}

// AddGenome inserts a genome, replacing any existing entry for its path.
func (gg *GenomeGroup) AddGenome(genome *Genome) {
	path := genome.SourceFile()

	if _, ok := gg.genomes[path]; !ok {
		gg.order = append(gg.order, path)
	}

	gg.genomes[path] = genome
}

// AddFile wraps a single source file. Test files are rejected since mutating
// the suite itself defeats the trial.
func (gg *GenomeGroup) AddFile(path m.Path) error {
	if !strings.HasSuffix(string(path), ".go") {
		return &ConfigurationError{Reason: fmt.Sprintf("not a Go source file: %s", path)}
	}

	if isTestFile(path) {
		return &ConfigurationError{Reason: fmt.Sprintf("refusing to mutate test file: %s", path)}
	}

	gg.AddGenome(NewGenome(gg.fs, gg.gofile, gg.coverage, path, ""))

	return nil
}

// AddFolder walks root and wraps every Go source file found, skipping test
// files and the exclusion list. Exclusions are matched on cleaned paths.
func (gg *GenomeGroup) AddFolder(ctx context.Context, root m.Path, excludes []m.Path) error {
	excluded := make(map[string]bool, len(excludes))
	for _, e := range excludes {
		excluded[filepath.Clean(string(e))] = true
	}

	return gg.fs.Walk(ctx, root, true, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !strings.HasSuffix(path, ".go") || isTestFile(m.Path(path)) {
			return nil
		}

		if excluded[filepath.Clean(path)] {
			return nil
		}

		gg.AddGenome(NewGenome(gg.fs, gg.gofile, gg.coverage, m.Path(path), ""))

		return nil
	})
}

// SetFilterCodes applies the category restriction to every genome.
func (gg *GenomeGroup) SetFilterCodes(codes []string) error {
	if err := ValidateCategoryCodes(codes); err != nil {
		return err
	}

	for _, genome := range gg.genomes {
		if err := genome.SetFilterCodes(codes); err != nil {
			return err
		}
	}

	return nil
}

// SetCoverageFile points every genome at the same coverage profile.
func (gg *GenomeGroup) SetCoverageFile(coverageFile m.Path) {
	for _, genome := range gg.genomes {
		genome.SetCoverageFile(coverageFile)
	}
}

// Targets enumerates every mutable site across the group in deterministic
// order. Files that fail to parse are skipped with a diagnostic so one bad
// file does not abort a whole-tree run.
func (gg *GenomeGroup) Targets(ctx context.Context) ([]GenomeTarget, error) {
	return gg.collect(ctx, func(genome *Genome) ([]m.LocIndex, error) {
		return genome.Targets(ctx)
	})
}

// CoveredTargets enumerates the coverage-restricted sites across the group.
func (gg *GenomeGroup) CoveredTargets(ctx context.Context) ([]GenomeTarget, error) {
	return gg.collect(ctx, func(genome *Genome) ([]m.LocIndex, error) {
		return genome.CoveredTargets(ctx)
	})
}

func (gg *GenomeGroup) collect(ctx context.Context, locsOf func(*Genome) ([]m.LocIndex, error)) ([]GenomeTarget, error) {
	var targets []GenomeTarget

	for _, path := range gg.order {
		locs, err := locsOf(gg.genomes[path])
		if err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				slog.Warn("skipping unparseable file", "file", path, "error", parseErr.Err)
				continue
			}

			return nil, err
		}

		for _, loc := range locs {
			targets = append(targets, GenomeTarget{SourceFile: path, Loc: loc})
		}
	}

	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].SourceFile != targets[j].SourceFile {
			return targets[i].SourceFile < targets[j].SourceFile
		}

		return less(targets[i].Loc, targets[j].Loc)
	})

	return targets, nil
}

func isTestFile(path m.Path) bool {
	return strings.HasSuffix(string(path), "_test.go")
}
