package adapter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// killWaitDelay bounds how long a timed-out trial may linger after the
// process group is killed before its inherited pipes are abandoned.
const killWaitDelay = 5 * time.Second

// TrialOutcome is the raw result of one subprocess test invocation.
type TrialOutcome struct {
	ExitCode int
	TimedOut bool
	Output   string
	Runtime  time.Duration
}

// TestRunnerAdapter abstracts subprocess test execution for mutation trials.
type TestRunnerAdapter interface {
	// Run executes argv in workDir with extra environment entries appended
	// to the inherited environment. A zero maxRuntime means no deadline.
	// The returned error covers launch failures only, never a non-zero
	// exit code.
	Run(ctx context.Context, workDir string, argv []string, env []string, maxRuntime time.Duration) (TrialOutcome, error)
}

// LocalTestRunnerAdapter provides a concrete implementation using os/exec.
type LocalTestRunnerAdapter struct{}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter.
func NewLocalTestRunnerAdapter() *LocalTestRunnerAdapter {
	return &LocalTestRunnerAdapter{}
}

// Run implements TestRunnerAdapter.
func (a *LocalTestRunnerAdapter) Run(ctx context.Context, workDir string, argv []string, env []string, maxRuntime time.Duration) (TrialOutcome, error) {
	if len(argv) == 0 {
		return TrialOutcome{}, errors.New("empty test command")
	}

	runCtx := ctx

	if maxRuntime > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, maxRuntime)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), env...)

	// Test commands spawn their own children. Run each trial in its own
	// process group and kill the whole group on cancellation, otherwise a
	// grandchild holding the stdout pipe keeps Wait blocked past the
	// deadline.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = killWaitDelay

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	runtime := time.Since(start)

	outcome := TrialOutcome{
		Output:  stdout.String() + stderr.String(),
		Runtime: runtime,
	}

	if runCtx.Err() == context.DeadlineExceeded {
		outcome.TimedOut = true
		slog.Debug("trial subprocess timed out", "argv", argv, "maxRuntime", maxRuntime)

		return outcome, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
			return outcome, nil
		}

		return outcome, err
	}

	return outcome, nil
}
