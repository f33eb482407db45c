package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/EvanKepner/mutatest/internal/domain"
	m "github.com/EvanKepner/mutatest/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	survivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	detectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

// trialMsg updates the running program with one completed trial.
type trialMsg struct {
	result m.TrialResult
	done   int
	total  int
}

// trialStartMsg announces the next mutation being tried.
type trialStartMsg struct {
	label string
	done  int
	total int
}

// finishMsg terminates the program loop.
type finishMsg struct{}

// TUI implements UI using Bubble Tea for interactive terminals, showing a
// spinner, a progress bar and a running status tally while trials execute.
type TUI struct {
	output io.Writer

	// progOpts lets tests run the program without a terminal.
	progOpts []tea.ProgramOption

	mu      sync.Mutex
	program *tea.Program
	running bool
	done    chan struct{}
}

// NewTUI creates a new TUI writing to output.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress display in a background goroutine.
func (t *TUI) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	model := newTrialModel()
	opts := append([]tea.ProgramOption{tea.WithOutput(t.output), tea.WithContext(ctx)}, t.progOpts...)
	t.program = tea.NewProgram(model, opts...)
	t.running = true
	t.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		_, _ = program.Run()
	}(t.program, t.done)

	return nil
}

// Close stops the progress display and waits for the program loop to exit,
// so later writes to the output never interleave with its teardown repaint.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()

	var done chan struct{}

	if t.running {
		t.program.Send(finishMsg{})
		t.running = false
		done = t.done
	}

	t.mu.Unlock()

	if done != nil {
		<-done
	}
}

// TrialStarted implements domain.TrialObserver.
func (t *TUI) TrialStarted(target domain.GenomeTarget, mutation m.Variant, done, total int) {
	label := fmt.Sprintf("%s at %s:%s", mutation, target.SourceFile, target.Loc.String())
	t.send(trialStartMsg{label: label, done: done, total: total})
}

// TrialCompleted implements domain.TrialObserver.
func (t *TUI) TrialCompleted(result m.TrialResult, done, total int) {
	t.send(trialMsg{result: result, done: done, total: total})
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		t.program.Send(msg)
	}
}

// DisplaySummary renders the final table after the progress view has closed.
func (t *TUI) DisplaySummary(ctx context.Context, summary m.ResultsSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("mutatest results"))
	b.WriteString("\n\n")
	b.WriteString(renderSummaryTable(summary))
	fmt.Fprintf(&b, "\nLocations identified: %d, mutated: %d\n", summary.NLocsIdentified, summary.NLocsMutated)
	fmt.Fprintf(&b, "Baseline runtime: %s, total runtime: %s\n", summary.BaselineRuntime, summary.TotalRuntime)

	_, err := fmt.Fprint(t.output, b.String())

	return err
}

// DisplayTargets renders per-file target counts.
func (t *TUI) DisplayTargets(ctx context.Context, targets []domain.GenomeTarget) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	counts := make(map[m.Path]int)
	for _, target := range targets {
		counts[target.SourceFile]++
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("mutation targets"))
	b.WriteString("\n\n")

	for _, target := range dedupPaths(targets) {
		fmt.Fprintf(&b, "  %s %s\n", target, dimStyle.Render(fmt.Sprintf("(%d)", counts[target])))
	}

	fmt.Fprintf(&b, "\n  %d target(s) in %d file(s)\n", len(targets), len(counts))

	_, err := fmt.Fprint(t.output, b.String())

	return err
}

// DisplayOperators renders the operator catalog.
func (t *TUI) DisplayOperators(ctx context.Context, groups []domain.OperatorGroup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("mutation operators"))
	b.WriteString("\n\n")

	for _, group := range groups {
		fmt.Fprintf(&b, "  %s  %s\n     %s\n", group.Category, group.Name, dimStyle.Render(group.Desc))
	}

	_, err := fmt.Fprint(t.output, b.String())

	return err
}

func dedupPaths(targets []domain.GenomeTarget) []m.Path {
	var paths []m.Path

	seen := make(map[m.Path]bool)

	for _, target := range targets {
		if !seen[target.SourceFile] {
			seen[target.SourceFile] = true

			paths = append(paths, target.SourceFile)
		}
	}

	return paths
}

// trialModel is the Bubble Tea model for the live trial view.
type trialModel struct {
	spinner  spinner.Model
	progress progress.Model

	current string
	done    int
	total   int
	counts  map[m.TrialStatus]int
	quit    bool
}

func newTrialModel() trialModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return trialModel{
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		counts:   make(map[m.TrialStatus]int),
	}
}

func (tm trialModel) Init() tea.Cmd {
	return tm.spinner.Tick
}

func (tm trialModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			tm.quit = true
			return tm, tea.Quit
		}

		return tm, nil

	case trialStartMsg:
		tm.current = msg.label
		tm.done = msg.done
		tm.total = msg.total

		return tm, nil

	case trialMsg:
		tm.counts[msg.result.Status()]++
		tm.done = msg.done
		tm.total = msg.total

		return tm, nil

	case finishMsg:
		tm.quit = true
		return tm, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		tm.spinner, cmd = tm.spinner.Update(msg)

		return tm, cmd
	}

	return tm, nil
}

func (tm trialModel) View() string {
	if tm.quit {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "\n %s running mutation trials\n\n", tm.spinner.View())

	if tm.total > 0 {
		b.WriteString("  " + tm.progress.ViewAs(float64(tm.done)/float64(tm.total)) + "\n\n")
	}

	if tm.current != "" {
		fmt.Fprintf(&b, "  trying %s\n\n", dimStyle.Render(tm.current))
	}

	fmt.Fprintf(&b, "  %s %d  %s %d  other %d\n",
		detectedStyle.Render("detected"), tm.counts[m.StatusDetected],
		survivedStyle.Render("survived"), tm.counts[m.StatusSurvived],
		tm.counts[m.StatusError]+tm.counts[m.StatusTimeout]+tm.counts[m.StatusUnknown],
	)

	return b.String()
}
