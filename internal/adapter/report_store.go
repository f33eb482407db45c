package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// ReportStore persists trial summaries so past runs can be reviewed without
// re-executing the suite.
type ReportStore interface {
	SaveSummary(ctx context.Context, path m.Path, summary m.ResultsSummary) error
	LoadSummary(ctx context.Context, path m.Path) (m.ResultsSummary, error)

	// LatestSummary finds the most recently named report under dir.
	LatestSummary(ctx context.Context, dir m.Path) (m.ResultsSummary, m.Path, error)
}

// LocalReportStore stores summaries as yaml documents on disk.
type LocalReportStore struct{}

// NewLocalReportStore constructs a LocalReportStore.
func NewLocalReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// SaveSummary implements ReportStore.
func (s *LocalReportStore) SaveSummary(_ context.Context, path m.Path, summary m.ResultsSummary) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	return nil
}

// LoadSummary implements ReportStore.
func (s *LocalReportStore) LoadSummary(_ context.Context, path m.Path) (m.ResultsSummary, error) {
	var summary m.ResultsSummary

	data, err := os.ReadFile(string(path))
	if err != nil {
		return summary, fmt.Errorf("read report %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("decode report %s: %w", path, err)
	}

	return summary, nil
}

// LatestSummary implements ReportStore. Report names sort lexically by
// timestamp, so the last yaml entry is the newest.
func (s *LocalReportStore) LatestSummary(ctx context.Context, dir m.Path) (m.ResultsSummary, m.Path, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return m.ResultsSummary{}, "", fmt.Errorf("read report dir %s: %w", dir, err)
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		names = append(names, entry.Name())
	}

	if len(names) == 0 {
		return m.ResultsSummary{}, "", fmt.Errorf("no reports found under %s", dir)
	}

	sort.Strings(names)

	path := m.Path(filepath.Join(string(dir), names[len(names)-1]))

	summary, err := s.LoadSummary(ctx, path)

	return summary, path, err
}
