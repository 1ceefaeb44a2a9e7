package workspace

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/maseology/mmio"

	"mfrun/internal/ctxlog"
	"mfrun/internal/domain"
)

// Service locates and validates model workspaces.
type Service struct{}

func New() *Service { return &Service{} }

var _ domain.WorkspaceResolver = (*Service)(nil)

// Resolve enumerates dir, classifies entries, and verifies the model's name
// file is present. Output artifacts already on disk are inventoried; missing
// ones are not an error before a run.
func (s *Service) Resolve(ctx context.Context, dir, name string) (domain.Workspace, error) {
	log := ctxlog.FromContext(ctx)

	if !mmio.DirExists(dir) {
		return domain.Workspace{}, fmt.Errorf("resolve %s: %w", dir, domain.ErrWorkspaceNotFound)
	}
	if err := probeWritable(dir); err != nil {
		return domain.Workspace{}, fmt.Errorf("resolve %s: not writable: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return domain.Workspace{}, fmt.Errorf("resolve %s: %w", dir, err)
	}
	ws := domain.Workspace{
		Dir:     dir,
		Name:    name,
		Outputs: make(map[domain.ArtifactKind]string),
	}
	for _, e := range entries {
		if e.IsDir() {
			ws.Subdirs = append(ws.Subdirs, e.Name())
		} else {
			ws.Files = append(ws.Files, e.Name())
		}
	}
	sort.Strings(ws.Files)
	sort.Strings(ws.Subdirs)

	nameFile := ws.Path(name + ".nam")
	if _, ok := mmio.FileExists(nameFile); !ok {
		return domain.Workspace{}, fmt.Errorf("resolve %s: %s.nam: %w", dir, name, domain.ErrNameFileMissing)
	}
	ws.NameFile = nameFile

	for kind, ext := range domain.ArtifactExt {
		fp := ws.Path(name + ext)
		if _, ok := mmio.FileExists(fp); ok {
			ws.Outputs[kind] = fp
		}
	}
	log.Debug("workspace resolved",
		"dir", dir, "name", name,
		"files", len(ws.Files), "subdirs", len(ws.Subdirs),
		"existing_outputs", len(ws.Outputs))
	return ws, nil
}

// probeWritable creates and removes a temp file; the workspace must accept
// the serialized deck before a run.
func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".mfrun-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}
