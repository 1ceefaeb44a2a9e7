package app

import (
	"context"
	"log/slog"
	"os"

	"mfrun/internal/ctxlog"
	"mfrun/internal/domain"
	artifactsvc "mfrun/internal/services/artifact"
	decksvc "mfrun/internal/services/deck"
	solversvc "mfrun/internal/services/solver"
	workspacesvc "mfrun/internal/services/workspace"
)

// Wire bundles the four stage services for the CLI.
type Wire struct {
	Resolver  domain.WorkspaceResolver
	Loader    domain.DeckLoader
	Invoker   domain.SolverInvoker
	Extractor domain.ResultExtractor
	Logger    *slog.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	loader := decksvc.New()
	return &Wire{
		Resolver:  workspacesvc.New(),
		Loader:    loader,
		Invoker:   solversvc.New(cfg.SolverPath, loader),
		Extractor: artifactsvc.New(),
		Logger:    logger,
	}, nil
}

// Context returns a base context carrying the wire's logger.
func (w *Wire) Context() context.Context {
	return ctxlog.WithLogger(context.Background(), w.Logger)
}
