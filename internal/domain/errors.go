package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no extra identifiers.
var (
	ErrWorkspaceNotFound = errors.New("workspace directory not found")
	ErrNameFileMissing   = errors.New("name file missing from workspace")
	ErrNonConvergence    = errors.New("solver did not report convergence")
	ErrRunFailed         = errors.New("run was not successful; no extraction possible")
)

// PackageParseError reports a failure to parse one named package file.
// Other packages in the same deck are unaffected.
type PackageParseError struct {
	Package string
	File    string
	Err     error
}

func (e *PackageParseError) Error() string {
	return fmt.Sprintf("parse package %s (%s): %v", e.Package, e.File, e.Err)
}

func (e *PackageParseError) Unwrap() error { return e.Err }

// FormatAmbiguityError reports array data whose declared field format does
// not match the file layout, so field boundaries cannot be determined. It is
// recoverable: set an explicit FieldFormat on the package and reload it.
type FormatAmbiguityError struct {
	Package string
	Array   string
	Row     int    // 0-based row where the misread surfaced
	Token   string // the offending run of characters
}

func (e *FormatAmbiguityError) Error() string {
	return fmt.Sprintf("package %s array %s row %d: ambiguous field format at %q; set an explicit fixed-width format and reload",
		e.Package, e.Array, e.Row, e.Token)
}

// ModelConsistencyError reports a package whose declared shape or period
// count disagrees with the discretization package.
type ModelConsistencyError struct {
	Package string
	Detail  string
}

func (e *ModelConsistencyError) Error() string {
	return fmt.Sprintf("package %s inconsistent with discretization: %s", e.Package, e.Detail)
}

// SolverInvocationError reports a solver process that could not be started
// or terminated abnormally. The captured log lines live on the RunResult.
type SolverInvocationError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *SolverInvocationError) Error() string {
	return fmt.Sprintf("solver %s failed (exit %d): %v", e.Command, e.ExitCode, e.Err)
}

func (e *SolverInvocationError) Unwrap() error { return e.Err }

// ArtifactMissingError reports an output file absent despite a successful
// run. Extraction of other artifacts is unaffected.
type ArtifactMissingError struct {
	Kind ArtifactKind
	Path string
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("artifact %s missing: %s", e.Kind, e.Path)
}

// TimeNotAvailableError reports a requested output time that is not among an
// artifact's declared times.
type TimeNotAvailableError struct {
	Kind ArtifactKind
	Time float64
}

func (e *TimeNotAvailableError) Error() string {
	return fmt.Sprintf("artifact %s: time %g not available", e.Kind, e.Time)
}

// RecordNotFoundError reports a budget record name absent from the budget
// artifact.
type RecordNotFoundError struct {
	Name string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("budget record %q not found", e.Name)
}
