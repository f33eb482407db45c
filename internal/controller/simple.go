package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/EvanKepner/mutatest/internal/domain"
	m "github.com/EvanKepner/mutatest/internal/model"
)

// SimpleUI implements UI using cobra Command's output stream. It is the
// non-interactive surface used for piped output and CI logs.
type SimpleUI struct {
	cmd       *cobra.Command
	showDiffs bool
}

// NewSimpleUI creates a new SimpleUI. When showDiffs is set, surviving
// mutants are printed with their unified diff.
func NewSimpleUI(cmd *cobra.Command, showDiffs bool) *SimpleUI {
	return &SimpleUI{cmd: cmd, showDiffs: showDiffs}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// TrialStarted implements domain.TrialObserver.
func (s *SimpleUI) TrialStarted(target domain.GenomeTarget, mutation m.Variant, done, total int) {
	s.printf("[%d/%d] trying %s at %s:%s\n", done+1, total, mutation, target.SourceFile, target.Loc.String())
}

// TrialCompleted implements domain.TrialObserver.
func (s *SimpleUI) TrialCompleted(result m.TrialResult, done, total int) {
	s.printf("[%d/%d] %s: %s at %s:%s\n",
		done, total,
		string(result.Status()),
		result.Mutant.Mutation,
		result.Mutant.SrcFile,
		result.Mutant.SrcIdx.String(),
	)
}

// DisplaySummary prints the status table and, optionally, survivor diffs.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.ResultsSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(summary))
	s.printf("\nLocations identified: %d, mutated: %d\n", summary.NLocsIdentified, summary.NLocsMutated)
	s.printf("Baseline runtime: %s, total runtime: %s\n", summary.BaselineRuntime, summary.TotalRuntime)

	if s.showDiffs {
		for _, result := range summary.Results {
			if result.Status() != m.StatusSurvived {
				continue
			}

			s.printf("\nSURVIVED: %s at %s:%s\n%s\n",
				result.Mutant.Mutation,
				result.Mutant.SrcFile,
				result.Mutant.SrcIdx.String(),
				result.Mutant.Diff,
			)
		}
	}

	return nil
}

// DisplayTargets prints per-file target counts.
func (s *SimpleUI) DisplayTargets(ctx context.Context, targets []domain.GenomeTarget) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	counts := make(map[m.Path]int)
	for _, target := range targets {
		counts[target.SourceFile]++
	}

	paths := make([]m.Path, 0, len(counts))
	for path := range counts {
		paths = append(paths, path)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Targets"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, path := range paths {
		table.Append([]string{string(path), fmt.Sprintf("%d", counts[path])})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(paths)),
		fmt.Sprintf("%d", len(targets)),
	})

	table.Render()

	s.printf("\n%s", buf.String())

	return nil
}

// DisplayOperators prints the operator catalog.
func (s *SimpleUI) DisplayOperators(ctx context.Context, groups []domain.OperatorGroup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Code", "Name", "Description"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, group := range groups {
		table.Append([]string{group.Category, group.Name, group.Desc})
	}

	table.Render()

	s.printf("\n%s", buf.String())

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderSummaryTable(summary m.ResultsSummary) string {
	counts := summary.StatusCounts()

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Status", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, status := range []m.TrialStatus{m.StatusSurvived, m.StatusDetected, m.StatusError, m.StatusTimeout, m.StatusUnknown} {
		table.Append([]string{string(status), fmt.Sprintf("%d", counts[status])})
	}

	table.SetFooter([]string{"Total Trials", fmt.Sprintf("%d", len(summary.Results))})
	table.Render()

	return buf.String()
}
