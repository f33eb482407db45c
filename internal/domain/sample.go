package domain

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// BuildSampleSpace enumerates the group's targets under the run's coverage
// policy. Coverage restriction is the default; IgnoreCoverage or an unset
// profile yields the full target set.
func BuildSampleSpace(ctx context.Context, group *GenomeGroup, cfg m.RunConfig) ([]GenomeTarget, error) {
	if cfg.IgnoreCoverage {
		return group.Targets(ctx)
	}

	group.SetCoverageFile(cfg.CoverageProfile)

	return group.CoveredTargets(ctx)
}

// SampleLocations draws n targets from the sample space without replacement
// using a seeded generator, so a seed reproduces the exact draw. Requests
// larger than the space are capped at the full space.
func SampleLocations(space []GenomeTarget, n int, seed int64) ([]GenomeTarget, error) {
	if n <= 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("number of locations must be positive, got %d", n)}
	}

	if n >= len(space) {
		if n > len(space) {
			slog.Info("capping sample at available locations", "requested", n, "available", len(space))
		}

		sample := make([]GenomeTarget, len(space))
		copy(sample, space)

		return sample, nil
	}

	rng := rand.New(rand.NewSource(seed))

	sample := make([]GenomeTarget, 0, n)

	for _, i := range rng.Perm(len(space))[:n] {
		sample = append(sample, space[i])
	}

	return sample, nil
}
