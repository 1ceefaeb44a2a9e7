package solver

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/maseology/mmio"

	"mfrun/internal/ctxlog"
	"mfrun/internal/domain"
	"mfrun/internal/modflow"
)

// Service runs the external solver over a loaded deck.
type Service struct {
	exe    string
	writer domain.DeckLoader
}

// New constructs an invoker around the solver executable path and the deck
// serializer.
func New(exe string, writer domain.DeckLoader) *Service {
	return &Service{exe: exe, writer: writer}
}

var _ domain.SolverInvoker = (*Service)(nil)

// Run serializes the deck into the workspace and invokes the solver. The
// returned RunResult always carries the captured log lines and exit status;
// Success is true only when the exit status is normal and the listing
// confirms convergence, and err is nil exactly when Success is true (the
// result still accompanies a non-nil error for diagnostics). A context
// cancellation kills the solver.
func (s *Service) Run(ctx context.Context, ws domain.Workspace, deck *domain.ModelDeck) (*domain.RunResult, error) {
	log := ctxlog.FromContext(ctx)

	if err := s.writer.Write(ctx, ws, deck); err != nil {
		return nil, fmt.Errorf("serialize deck: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.exe, filepath.Base(ws.NameFile))
	cmd.Dir = ws.Dir
	log.Info("invoking solver", "exe", s.exe, "dir", ws.Dir, "name_file", filepath.Base(ws.NameFile))

	output, runErr := cmd.CombinedOutput()
	res := &domain.RunResult{
		Workspace: ws,
		Log:       splitLogLines(string(output)),
		Artifacts: make(map[domain.ArtifactKind]string),
	}
	if cmd.Process != nil {
		res.PID = cmd.Process.Pid
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// could not start, or killed by context cancellation
			return res, &domain.SolverInvocationError{Command: s.exe, ExitCode: res.ExitCode, Err: runErr}
		}
	}

	for kind, ext := range domain.ArtifactExt {
		fp := ws.Path(ws.Name + ext)
		if _, ok := mmio.FileExists(fp); ok {
			res.Artifacts[kind] = fp
		}
	}

	res.Success = s.classify(ctx, res)
	log.Info("solver finished",
		"exit_code", res.ExitCode, "success", res.Success,
		"log_lines", len(res.Log), "artifacts", len(res.Artifacts))
	if res.Success {
		return res, nil
	}
	if res.ExitCode != 0 {
		return res, &domain.SolverInvocationError{Command: s.exe, ExitCode: res.ExitCode, Err: runErr}
	}
	return res, domain.ErrNonConvergence
}

// classify joins the exit status with the listing's convergence markers.
// Absence of the listing, or a logged non-convergence, forces failure.
func (s *Service) classify(ctx context.Context, res *domain.RunResult) bool {
	log := ctxlog.FromContext(ctx)

	if res.ExitCode != 0 {
		return false
	}
	listing, ok := res.Artifacts[domain.ArtifactListing]
	if !ok {
		log.Warn("solver exited normally but wrote no listing; treating run as failed")
		return false
	}
	converged, err := modflow.ScanListing(listing)
	if err != nil {
		log.Warn("listing unreadable; treating run as failed", "err", err)
		return false
	}
	if !converged {
		log.Warn("listing does not confirm convergence", "listing", listing)
	}
	return converged
}

// FromWorkspace reconstructs the result of a previous run from the artifacts
// already on disk, so extraction can happen in a later process than the run.
// Success requires the listing to confirm convergence, same as a live run.
func FromWorkspace(ctx context.Context, ws domain.Workspace) *domain.RunResult {
	res := &domain.RunResult{
		Workspace: ws,
		Artifacts: make(map[domain.ArtifactKind]string),
	}
	for kind, ext := range domain.ArtifactExt {
		fp := ws.Path(ws.Name + ext)
		if _, ok := mmio.FileExists(fp); ok {
			res.Artifacts[kind] = fp
		}
	}
	if listing, ok := res.Artifacts[domain.ArtifactListing]; ok {
		if converged, err := modflow.ScanListing(listing); err == nil && converged {
			res.Success = true
		}
	}
	if !res.Success {
		ctxlog.FromContext(ctx).Warn("no converged run found in workspace", "dir", ws.Dir)
	}
	return res
}

func splitLogLines(out string) []string {
	trimmed := strings.TrimRight(out, "\n")
	if trimmed == "" {
		return nil
	}
	lines := strings.Split(trimmed, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, "\r")
	}
	return lines
}
