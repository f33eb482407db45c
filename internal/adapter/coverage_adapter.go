package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/cover"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// ErrNoCoverage reports that no coverage profile exists at the given path.
// Callers treat it as advisory and fall back to the unrestricted target set.
var ErrNoCoverage = errors.New("coverage profile not found")

// CoverageAdapter reads Go cover profiles and answers line-level coverage
// questions about local source files.
type CoverageAdapter interface {
	// LineCoverage returns the set of executed line numbers for one source
	// file according to the profile. Returns ErrNoCoverage when the profile
	// file does not exist.
	LineCoverage(ctx context.Context, profile, sourceFile m.Path) (map[int]bool, error)

	// TestsCoveringLine reports which per-test profiles under profileDir
	// cover the given line. Profile names (minus extension) identify the
	// tests.
	TestsCoveringLine(ctx context.Context, profileDir, sourceFile m.Path, line int) ([]string, error)
}

// LocalCoverageAdapter resolves profile file names against the enclosing
// module so import-path entries can be matched to paths on disk.
type LocalCoverageAdapter struct {
	fs SourceFSAdapter
}

// NewLocalCoverageAdapter constructs a LocalCoverageAdapter.
func NewLocalCoverageAdapter(fs SourceFSAdapter) *LocalCoverageAdapter {
	return &LocalCoverageAdapter{fs: fs}
}

// LineCoverage implements CoverageAdapter.
func (a *LocalCoverageAdapter) LineCoverage(ctx context.Context, profile, sourceFile m.Path) (map[int]bool, error) {
	if _, err := os.Stat(string(profile)); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", profile, ErrNoCoverage)
		}

		return nil, fmt.Errorf("stat coverage profile %s: %w", profile, err)
	}

	profiles, err := cover.ParseProfiles(string(profile))
	if err != nil {
		return nil, fmt.Errorf("parse coverage profile %s: %w", profile, err)
	}

	profileName, err := a.profileName(ctx, sourceFile)
	if err != nil {
		return nil, err
	}

	lines := make(map[int]bool)

	for _, p := range profiles {
		if p.FileName != profileName {
			continue
		}

		for _, block := range p.Blocks {
			if block.Count == 0 {
				continue
			}

			for line := block.StartLine; line <= block.EndLine; line++ {
				lines[line] = true
			}
		}
	}

	return lines, nil
}

// TestsCoveringLine implements CoverageAdapter.
func (a *LocalCoverageAdapter) TestsCoveringLine(ctx context.Context, profileDir, sourceFile m.Path, line int) ([]string, error) {
	entries, err := os.ReadDir(string(profileDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", profileDir, ErrNoCoverage)
		}

		return nil, fmt.Errorf("read profile dir %s: %w", profileDir, err)
	}

	var tests []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".out") {
			continue
		}

		profile := m.Path(filepath.Join(string(profileDir), entry.Name()))

		lines, err := a.LineCoverage(ctx, profile, sourceFile)
		if err != nil {
			slog.Warn("skipping unreadable per-test profile", "profile", profile, "error", err)
			continue
		}

		if lines[line] {
			tests = append(tests, strings.TrimSuffix(entry.Name(), ".out"))
		}
	}

	sort.Strings(tests)

	return tests, nil
}

// profileName maps a local source path to the import-path form used inside
// cover profiles.
func (a *LocalCoverageAdapter) profileName(ctx context.Context, sourceFile m.Path) (string, error) {
	modRoot, err := a.fs.FindModuleRoot(ctx, sourceFile)
	if err != nil {
		return "", err
	}

	modPath, err := a.fs.ModulePath(ctx, modRoot)
	if err != nil {
		return "", err
	}

	rel, err := a.fs.RelPath(ctx, modRoot, sourceFile)
	if err != nil {
		return "", err
	}

	return modPath + "/" + filepath.ToSlash(string(rel)), nil
}
