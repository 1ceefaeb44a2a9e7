package domain

import "context"

// WorkspaceResolver locates and validates a model directory.
type WorkspaceResolver interface {
	Resolve(ctx context.Context, dir, name string) (Workspace, error)
}

// DeckLoader parses a workspace's input deck, supports single-package
// corrective reloads, and serializes a deck back to disk deterministically.
type DeckLoader interface {
	Load(ctx context.Context, ws Workspace) (*ModelDeck, error)
	ReloadPackage(ctx context.Context, ws Workspace, deck *ModelDeck, ftype string) error
	SetArrayFormat(deck *ModelDeck, ftype, array string, format FieldFormat) error
	Write(ctx context.Context, ws Workspace, deck *ModelDeck) error
}

// SolverInvoker serializes a deck and runs the external solver over it.
type SolverInvoker interface {
	Run(ctx context.Context, ws Workspace, deck *ModelDeck) (*RunResult, error)
}

// ArtifactReader exposes typed, read-only accessors over one successful
// run's output artifacts. Repeated calls with identical arguments return
// equal values.
type ArtifactReader interface {
	Times(kind ArtifactKind) ([]float64, error)
	Array(kind ArtifactKind, totim float64) ([][][]float64, error)
	RecordNames() ([]string, error)
	Record(name string, totim float64) (*BudgetRecord, error)
	Observations() ([]Observation, error)
	Streamflow() ([]StreamflowRecord, error)
}

// ResultExtractor opens a reader over a run's artifacts. Opening a failed
// run's result is rejected with ErrRunFailed.
type ResultExtractor interface {
	Open(res *RunResult) (ArtifactReader, error)
}
