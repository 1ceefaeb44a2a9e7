package artifact

import (
	"fmt"

	"github.com/maseology/mmio"

	"mfrun/internal/domain"
	"mfrun/internal/modflow"
)

// Service opens readers over run results.
type Service struct{}

func New() *Service { return &Service{} }

var _ domain.ResultExtractor = (*Service)(nil)

// Open returns a reader over the run's artifacts. A failed run is rejected:
// no accessor on it can ever succeed.
func (s *Service) Open(res *domain.RunResult) (domain.ArtifactReader, error) {
	if res == nil || !res.Success {
		return nil, domain.ErrRunFailed
	}
	return &Reader{res: res, dvar: make(map[domain.ArtifactKind]*modflow.DvarIndex)}, nil
}

// Reader is the per-run artifact reader. Indexes are built on first use and
// memoized; repeated calls with identical arguments return equal values.
type Reader struct {
	res    *domain.RunResult
	dvar   map[domain.ArtifactKind]*modflow.DvarIndex
	budget *modflow.BudgetIndex
}

var _ domain.ArtifactReader = (*Reader)(nil)

// path locates an artifact file, failing with ArtifactMissingError when the
// run produced no such file.
func (r *Reader) path(kind domain.ArtifactKind) (string, error) {
	fp, ok := r.res.Artifacts[kind]
	if !ok {
		return "", &domain.ArtifactMissingError{
			Kind: kind,
			Path: r.res.Workspace.Path(r.res.Workspace.Name + domain.ArtifactExt[kind]),
		}
	}
	if _, exists := mmio.FileExists(fp); !exists {
		return "", &domain.ArtifactMissingError{Kind: kind, Path: fp}
	}
	return fp, nil
}

func (r *Reader) dvarIndex(kind domain.ArtifactKind) (*modflow.DvarIndex, string, error) {
	fp, err := r.path(kind)
	if err != nil {
		return nil, "", err
	}
	if ix, ok := r.dvar[kind]; ok {
		return ix, fp, nil
	}
	ix, err := modflow.BuildDvarIndex(fp)
	if err != nil {
		return nil, "", fmt.Errorf("index %s: %w", kind, err)
	}
	r.dvar[kind] = ix
	return ix, fp, nil
}

func (r *Reader) budgetIndex() (*modflow.BudgetIndex, string, error) {
	fp, err := r.path(domain.ArtifactBudget)
	if err != nil {
		return nil, "", err
	}
	if r.budget != nil {
		return r.budget, fp, nil
	}
	ix, err := modflow.BuildBudgetIndex(fp)
	if err != nil {
		return nil, "", fmt.Errorf("index %s: %w", domain.ArtifactBudget, err)
	}
	r.budget = ix
	return ix, fp, nil
}

// Times returns the artifact's available output times, ascending.
func (r *Reader) Times(kind domain.ArtifactKind) ([]float64, error) {
	if kind == domain.ArtifactBudget {
		ix, _, err := r.budgetIndex()
		if err != nil {
			return nil, err
		}
		return append([]float64(nil), ix.Times...), nil
	}
	ix, _, err := r.dvarIndex(kind)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), ix.Times...), nil
}

// Array returns the per-layer arrays of a dependent-variable artifact at one
// of its available times.
func (r *Reader) Array(kind domain.ArtifactKind, totim float64) ([][][]float64, error) {
	ix, fp, err := r.dvarIndex(kind)
	if err != nil {
		return nil, err
	}
	entries, ok := ix.Layers(totim)
	if !ok {
		return nil, &domain.TimeNotAvailableError{Kind: kind, Time: totim}
	}
	out := make([][][]float64, 0, len(entries))
	for _, e := range entries {
		layer, err := modflow.ReadDvarArray(fp, e)
		if err != nil {
			return nil, err
		}
		out = append(out, layer)
	}
	return out, nil
}

// RecordNames returns the budget file's record names, sorted.
func (r *Reader) RecordNames() ([]string, error) {
	ix, _, err := r.budgetIndex()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), ix.Names...), nil
}

// Record returns one named budget record at one of its available times.
func (r *Reader) Record(name string, totim float64) (*domain.BudgetRecord, error) {
	ix, fp, err := r.budgetIndex()
	if err != nil {
		return nil, err
	}
	key := modflow.CanonicalRecordName(name)
	if !ix.HasName(key) {
		return nil, &domain.RecordNotFoundError{Name: name}
	}
	if !ix.HasTime(totim) {
		return nil, &domain.TimeNotAvailableError{Kind: domain.ArtifactBudget, Time: totim}
	}
	e, ok := ix.Find(key, totim)
	if !ok {
		// name exists at other times; this record was not written at totim
		return nil, &domain.TimeNotAvailableError{Kind: domain.ArtifactBudget, Time: totim}
	}
	return modflow.ReadBudgetRecord(fp, e)
}

// Observations returns the simulated-versus-observed head comparisons.
func (r *Reader) Observations() ([]domain.Observation, error) {
	fp, err := r.path(domain.ArtifactObservations)
	if err != nil {
		return nil, err
	}
	return modflow.ReadObservations(fp)
}

// Streamflow returns the streamflow-routing reach records.
func (r *Reader) Streamflow() ([]domain.StreamflowRecord, error) {
	fp, err := r.path(domain.ArtifactStreamflow)
	if err != nil {
		return nil, err
	}
	return modflow.ReadStreamflow(fp)
}
