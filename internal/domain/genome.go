package domain

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/EvanKepner/mutatest/internal/adapter"
	"github.com/EvanKepner/mutatest/internal/domain/mutagens"
	m "github.com/EvanKepner/mutatest/internal/model"
)

// Genome wraps a single source file and lazily derives everything mutation
// trials need from it: raw content, the parsed tree and the set of mutable
// target sites. Changing the source or coverage file invalidates the derived
// state so a Genome can be re-pointed safely.
type Genome struct {
	fs       adapter.SourceFSAdapter
	gofile   adapter.GoFileAdapter
	coverage adapter.CoverageAdapter

	srcFile      m.Path
	coverageFile m.Path
	filterCodes  []string

	content []byte
	fset    *token.FileSet
	tree    *ast.File
	targets []m.LocIndex
	covered []m.LocIndex
}

// NewGenome constructs a Genome over one source file. The coverage file is
// optional and only consulted by CoveredTargets.
func NewGenome(fs adapter.SourceFSAdapter, gofile adapter.GoFileAdapter, coverage adapter.CoverageAdapter, srcFile, coverageFile m.Path) *Genome {
	return &Genome{
		fs:           fs,
		gofile:       gofile,
		coverage:     coverage,
		srcFile:      srcFile,
		coverageFile: coverageFile,
	}
}

// SourceFile returns the file this Genome wraps.
func (g *Genome) SourceFile() m.Path {
	return g.srcFile
}

// SetSourceFile re-points the Genome and drops all derived state.
func (g *Genome) SetSourceFile(srcFile m.Path) {
	g.srcFile = srcFile
	g.content = nil
	g.fset = nil
	g.tree = nil
	g.targets = nil
	g.covered = nil
}

// CoverageFile returns the coverage profile consulted by CoveredTargets.
func (g *Genome) CoverageFile() m.Path {
	return g.coverageFile
}

// SetCoverageFile swaps the coverage profile and drops the covered set.
func (g *Genome) SetCoverageFile(coverageFile m.Path) {
	g.coverageFile = coverageFile
	g.covered = nil
}

// SetFilterCodes restricts Targets to the given category codes. Unknown
// codes are rejected with a ConfigurationError.
func (g *Genome) SetFilterCodes(codes []string) error {
	if err := ValidateCategoryCodes(codes); err != nil {
		return err
	}

	g.filterCodes = codes
	g.targets = nil
	g.covered = nil

	return nil
}

// Content returns the raw source bytes, reading them on first use.
func (g *Genome) Content(ctx context.Context) ([]byte, error) {
	if g.content != nil {
		return g.content, nil
	}

	content, err := g.fs.ReadFile(ctx, g.srcFile)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", g.srcFile, err)
	}

	g.content = content

	return g.content, nil
}

// Tree returns the parsed syntax tree, parsing on first use.
func (g *Genome) Tree(ctx context.Context) (*ast.File, error) {
	if g.tree != nil {
		return g.tree, nil
	}

	content, err := g.Content(ctx)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()

	tree, err := g.gofile.Parse(ctx, fset, string(g.srcFile), content)
	if err != nil {
		return nil, &ParseError{File: g.srcFile, Err: err}
	}

	g.fset = fset
	g.tree = tree

	return g.tree, nil
}

// Targets returns every mutable site in the file, restricted to the active
// filter codes when set. The scan never modifies the cached tree.
func (g *Genome) Targets(ctx context.Context) ([]m.LocIndex, error) {
	if g.targets != nil {
		return g.targets, nil
	}

	tree, err := g.Tree(ctx)
	if err != nil {
		return nil, err
	}

	locs := mutagens.NewScanner(g.fset).Walk(tree)

	if len(g.filterCodes) > 0 {
		locs = filterByCategory(locs, g.filterCodes)
	}

	sort.Slice(locs, func(i, j int) bool { return less(locs[i], locs[j]) })

	g.targets = locs

	return g.targets, nil
}

// CoveredTargets returns the subset of Targets whose line appears executed
// in the coverage profile. A missing profile is advisory: the full target
// set is returned with a log line instead of an error.
func (g *Genome) CoveredTargets(ctx context.Context) ([]m.LocIndex, error) {
	if g.covered != nil {
		return g.covered, nil
	}

	targets, err := g.Targets(ctx)
	if err != nil {
		return nil, err
	}

	if g.coverageFile == "" {
		g.covered = targets
		return g.covered, nil
	}

	lines, err := g.coverage.LineCoverage(ctx, g.coverageFile, g.srcFile)
	if err != nil {
		if errors.Is(err, adapter.ErrNoCoverage) {
			slog.Info("coverage profile missing, using all targets", "profile", g.coverageFile)

			g.covered = targets

			return g.covered, nil
		}

		return nil, err
	}

	covered := make([]m.LocIndex, 0, len(targets))

	for _, loc := range targets {
		if lines[loc.Line] {
			covered = append(covered, loc)
		}
	}

	g.covered = covered

	return g.covered, nil
}

// Mutate synthesizes a mutant for the target site. The cached tree stays
// pristine: the source is re-parsed into a fresh tree before the edit is
// applied.
func (g *Genome) Mutate(ctx context.Context, target m.LocIndex, mutation m.Variant) (m.Mutant, error) {
	valid := SubstitutesFor(target.Op)
	if !containsVariant(valid, mutation) {
		code, _ := CategoryCode(target.Kind)

		return m.Mutant{}, &MutationRejectedError{
			Mutation: mutation,
			Category: code,
			Valid:    valid,
		}
	}

	content, err := g.Content(ctx)
	if err != nil {
		return m.Mutant{}, err
	}

	fset := token.NewFileSet()

	tree, err := g.gofile.Parse(ctx, fset, string(g.srcFile), content)
	if err != nil {
		return m.Mutant{}, &ParseError{File: g.srcFile, Err: err}
	}

	mutagens.NewApplier(fset, target, mutation).Walk(tree)

	artifact, err := g.gofile.Render(ctx, fset, tree)
	if err != nil {
		return m.Mutant{}, fmt.Errorf("render mutant for %s: %w", g.srcFile, err)
	}

	info, err := g.fs.FileInfo(ctx, g.srcFile)
	if err != nil {
		return m.Mutant{}, fmt.Errorf("stat source %s: %w", g.srcFile, err)
	}

	diff, err := unifiedDiff(string(g.srcFile), content, artifact)
	if err != nil {
		return m.Mutant{}, err
	}

	return m.Mutant{
		Artifact: artifact,
		SrcFile:  g.srcFile,
		Stats:    m.SourceStats{MTime: info.ModTime(), Size: info.Size()},
		Mode:     info.Mode(),
		SrcIdx:   target,
		Mutation: mutation,
		Diff:     diff,
	}, nil
}

func unifiedDiff(name string, before, after []byte) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: name,
		ToFile:   name + " (mutant)",
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", name, err)
	}

	return strings.TrimRight(diff, "\n"), nil
}

func filterByCategory(locs []m.LocIndex, codes []string) []m.LocIndex {
	allowed := make(map[string]bool, len(codes))
	for _, code := range codes {
		allowed[code] = true
	}

	filtered := make([]m.LocIndex, 0, len(locs))

	for _, loc := range locs {
		if code, ok := CategoryCode(loc.Kind); ok && allowed[code] {
			filtered = append(filtered, loc)
		}
	}

	return filtered
}

func containsVariant(variants []m.Variant, v m.Variant) bool {
	for _, candidate := range variants {
		if candidate == v {
			return true
		}
	}

	return false
}

func less(a, b m.LocIndex) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}

	if a.Col != b.Col {
		return a.Col < b.Col
	}

	return a.Kind < b.Kind
}
