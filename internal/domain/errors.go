package domain

import (
	"fmt"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// ConfigurationError is fatal: the run parameters are invalid and the run
// never starts. It is surfaced immediately with no retry.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// ParseError marks a single source file the parser rejected. The file is
// skipped with a diagnostic and the run continues with the remaining files.
type ParseError struct {
	File m.Path
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MutationRejectedError reports an operator/category mismatch, e.g. applying
// a comparison operator to an arithmetic site. This is a programmer error at
// the call site and is never silently corrected.
type MutationRejectedError struct {
	Mutation m.Variant
	Category string
	Valid    []m.Variant
}

func (e *MutationRejectedError) Error() string {
	return fmt.Sprintf(
		"%s is not a member of mutation category %s, valid mutations: %v",
		e.Mutation, e.Category, e.Valid,
	)
}

// BaselineTestError is fatal to the whole run: the suite fails with zero
// mutations applied, so mutant trials would be meaningless.
type BaselineTestError struct {
	ExitCode int
	Output   string
}

func (e *BaselineTestError) Error() string {
	return fmt.Sprintf("baseline trial does not pass (exit %d), mutant trials would be meaningless", e.ExitCode)
}
