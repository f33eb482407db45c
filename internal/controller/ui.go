// Package controller provides output surfaces for displaying mutation trial
// progress and results.
package controller

import (
	"context"

	"github.com/EvanKepner/mutatest/internal/domain"
	m "github.com/EvanKepner/mutatest/internal/model"
)

// UI defines the interface for displaying trial progress and summaries.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)

	// TrialStarted and TrialCompleted implement domain.TrialObserver.
	TrialStarted(target domain.GenomeTarget, mutation m.Variant, done, total int)
	TrialCompleted(result m.TrialResult, done, total int)

	DisplaySummary(ctx context.Context, summary m.ResultsSummary) error
	DisplayTargets(ctx context.Context, targets []domain.GenomeTarget) error
	DisplayOperators(ctx context.Context, groups []domain.OperatorGroup) error
}
