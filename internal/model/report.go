package model

import "time"

// TrialStatus is the per-trial outcome derived from the test command's exit
// code. ERROR, TIMEOUT and UNKNOWN are first-class outcomes, not errors.
type TrialStatus string

const (
	StatusSurvived TrialStatus = "SURVIVED"
	StatusDetected TrialStatus = "DETECTED"
	StatusError    TrialStatus = "ERROR"
	StatusTimeout  TrialStatus = "TIMEOUT"
	StatusUnknown  TrialStatus = "UNKNOWN"
)

// ReturnCodeTimeout is the synthetic return code recorded when the test
// subprocess is force-terminated at the trial deadline.
const ReturnCodeTimeout = 3

// MutantReport is the serializable subset of a Mutant carried in results,
// small enough to cross worker boundaries by value.
type MutantReport struct {
	SrcFile  Path     `yaml:"src_file"`
	SrcIdx   LocIndex `yaml:"src_idx"`
	Mutation Variant  `yaml:"mutation"`
	Diff     string   `yaml:"diff,omitempty"`
}

// TrialResult pairs a mutant with the raw exit code of its trial.
type TrialResult struct {
	Mutant     MutantReport `yaml:"mutant"`
	ReturnCode int          `yaml:"return_code"`
}

// Status maps the raw exit code to a trial status: 0 means the suite passed
// despite the defect, 1 means the suite caught it, 2 means the run itself
// errored before testing, 3 is the timeout sentinel.
func (r TrialResult) Status() TrialStatus {
	switch r.ReturnCode {
	case 0:
		return StatusSurvived
	case 1:
		return StatusDetected
	case 2:
		return StatusError
	case ReturnCodeTimeout:
		return StatusTimeout
	default:
		return StatusUnknown
	}
}

// ResultsSummary is the final product of a run: the ordered trial results
// plus the sampling counts and wall-clock runtime.
type ResultsSummary struct {
	Results         []TrialResult `yaml:"results"`
	NLocsMutated    int           `yaml:"n_locs_mutated"`
	NLocsIdentified int           `yaml:"n_locs_identified"`
	TotalRuntime    time.Duration `yaml:"total_runtime"`
	BaselineRuntime time.Duration `yaml:"baseline_runtime"`
}

// StatusCounts tallies results by status for display and reporting.
func (s ResultsSummary) StatusCounts() map[TrialStatus]int {
	counts := make(map[TrialStatus]int)
	for _, r := range s.Results {
		counts[r.Status()]++
	}

	return counts
}
