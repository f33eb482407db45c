package model

import "time"

// RunConfig holds the run parameters for a full trial suite. It is supplied
// once per run and read-only during execution.
type RunConfig struct {
	// NLocations is the number of sites to sample. Zero means the full
	// sample space; positive values are capped at the space size.
	NLocations int

	// ExcludeFiles are skipped when building the source group.
	ExcludeFiles []Path

	// FilterCodes restricts sites to the listed 2-letter category codes.
	FilterCodes []string

	// RandomSeed feeds the sampling and operator-draw generator so runs are
	// reproducible.
	RandomSeed int64

	// Break-on policy: one independent flag per trial status. When set and a
	// trial matches, no further operators are tried at that site.
	BreakOnSurvival bool
	BreakOnDetected bool
	BreakOnError    bool
	BreakOnTimeout  bool
	BreakOnUnknown  bool

	// IgnoreCoverage disables the coverage restriction of the sample space.
	IgnoreCoverage bool

	// CoverageProfile is the cover profile consulted for the restriction.
	CoverageProfile Path

	// MaxRuntime bounds one trial's subprocess.
	MaxRuntime time.Duration

	// Parallel dispatches each sampled site's operator loop to a worker pool
	// with per-trial private artifact caches.
	Parallel bool
}
