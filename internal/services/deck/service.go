package deck

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mfrun/internal/ctxlog"
	"mfrun/internal/domain"
	"mfrun/internal/modflow"
)

// Service parses and serializes model decks.
type Service struct{}

func New() *Service { return &Service{} }

var _ domain.DeckLoader = (*Service)(nil)

// Load parses the name file, then every declared package. On a package parse
// failure the returned deck still carries every package that did parse (the
// failed one as a bare manifest entry), so a corrective reload can replace
// it without touching the rest; the first error encountered is returned.
func (s *Service) Load(ctx context.Context, ws domain.Workspace) (*domain.ModelDeck, error) {
	log := ctxlog.FromContext(ctx)

	data, err := os.ReadFile(ws.NameFile)
	if err != nil {
		return nil, fmt.Errorf("read name file: %w", err)
	}
	comments, entries, err := modflow.ParseNameFile(data)
	if err != nil {
		return nil, fmt.Errorf("parse name file: %w", err)
	}

	d := &domain.ModelDeck{Name: ws.Name, Comments: comments}
	var firstErr error
	for _, e := range entries {
		d.Manifest = append(d.Manifest, domain.ManifestRef{Type: e.Type, Unit: e.Unit})
		if e.IsOutput() {
			d.Outputs = append(d.Outputs, domain.OutputBinding{Type: e.Type, Unit: e.Unit, File: e.File})
			continue
		}
		d.Packages = append(d.Packages, &domain.Package{Type: e.Type, Unit: e.Unit, File: e.File})
	}

	// DIS first: stress and property packages need the grid and period count.
	dctx, err := s.parseOne(ctx, ws, d, "DIS", nil)
	if err != nil {
		firstErr = err
	}
	for _, p := range d.Packages {
		if p.Type == "DIS" {
			continue
		}
		if _, err := s.parseOne(ctx, ws, d, p.Type, dctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return d, firstErr
	}
	if err := validate(d); err != nil {
		return d, err
	}
	log.Info("deck loaded", "model", ws.Name, "packages", len(d.Packages), "outputs", len(d.Outputs))
	return d, nil
}

// parseOne parses the named package file into its slot in the deck. Returns
// the deck context once the discretization package is available.
func (s *Service) parseOne(ctx context.Context, ws domain.Workspace, d *domain.ModelDeck, ftype string, dctx *modflow.DeckContext) (*modflow.DeckContext, error) {
	log := ctxlog.FromContext(ctx)

	slot := -1
	for i, p := range d.Packages {
		if p.Type == ftype {
			slot = i
			break
		}
	}
	if slot < 0 {
		return dctx, &domain.ModelConsistencyError{Package: ftype, Detail: "not declared in name file"}
	}
	entry := modflow.NameFileEntry{Type: ftype, Unit: d.Packages[slot].Unit, File: d.Packages[slot].File}
	if dctx == nil && needsGrid(ftype) {
		return nil, &domain.ModelConsistencyError{Package: ftype, Detail: "no discretization package to parse against"}
	}

	data, err := os.ReadFile(ws.Path(entry.File))
	if err != nil {
		return dctx, &domain.PackageParseError{Package: ftype, File: entry.File, Err: err}
	}
	override := func(array string) *domain.FieldFormat {
		if f, ok := d.OverrideFor(ftype, array); ok {
			return &f
		}
		return nil
	}
	p, err := modflow.ParsePackage(entry, data, dctx, override)
	if err != nil {
		return dctx, err
	}
	d.Packages[slot] = p
	log.Debug("package parsed", "type", ftype, "file", entry.File)
	if ftype == "DIS" {
		return &modflow.DeckContext{Shape: p.Dis.Shape, Nper: p.Dis.Nper}, nil
	}
	return dctx, nil
}

// SetArrayFormat records an explicit field format for one array of one
// package, to be applied on the next (re)load of that package. Setting the
// same format twice is a no-op.
func (s *Service) SetArrayFormat(d *domain.ModelDeck, ftype, array string, format domain.FieldFormat) error {
	if err := format.Validate(); err != nil {
		return err
	}
	if _, ok := d.Package(ftype); !ok {
		return &domain.ModelConsistencyError{Package: ftype, Detail: "not declared in name file"}
	}
	d.SetOverride(ftype, array, format)
	return nil
}

// ReloadPackage re-parses one package file, applying any format overrides,
// and replaces only that package in the deck. Other packages are preserved
// exactly. The whole deck is then re-validated.
func (s *Service) ReloadPackage(ctx context.Context, ws domain.Workspace, d *domain.ModelDeck, ftype string) error {
	var dctx *modflow.DeckContext
	if ftype != "DIS" {
		if dis, ok := d.Dis(); ok {
			dctx = &modflow.DeckContext{Shape: dis.Shape, Nper: dis.Nper}
		} else if needsGrid(ftype) {
			return &domain.ModelConsistencyError{Package: ftype, Detail: "no discretization package to parse against"}
		}
	}
	if _, err := s.parseOne(ctx, ws, d, ftype, dctx); err != nil {
		return err
	}
	if ftype == "DIS" {
		// the grid may have changed; downstream packages must still agree
		return validate(d)
	}
	if incomplete(d) {
		return nil // other packages still pending; validation happens when whole
	}
	return validate(d)
}

// Write serializes the deck into the workspace: the name file plus one file
// per package, each written atomically. Re-serializing an unmodified deck
// produces byte-identical files, header comments and entry order included.
func (s *Service) Write(ctx context.Context, ws domain.Workspace, d *domain.ModelDeck) error {
	log := ctxlog.FromContext(ctx)

	if err := modflow.WriteFile(ws.NameFile, modflow.RenderNameFile(d.Comments, nameFileEntries(d)), 0o644); err != nil {
		return fmt.Errorf("write name file: %w", err)
	}
	for _, p := range d.Packages {
		if err := modflow.WriteFile(ws.Path(p.File), modflow.RenderPackage(p), 0o644); err != nil {
			return fmt.Errorf("write package %s: %w", p.Type, err)
		}
	}
	log.Debug("deck written", "model", d.Name, "packages", len(d.Packages))
	return nil
}

// nameFileEntries lists the deck's entries in the manifest's original file
// order. Entries the manifest does not cover (a deck assembled in memory)
// follow, packages first.
func nameFileEntries(d *domain.ModelDeck) []modflow.NameFileEntry {
	avail := make(map[domain.ManifestRef]modflow.NameFileEntry, len(d.Packages)+len(d.Outputs))
	var order []domain.ManifestRef
	for _, p := range d.Packages {
		ref := domain.ManifestRef{Type: p.Type, Unit: p.Unit}
		avail[ref] = modflow.NameFileEntry{Type: p.Type, Unit: p.Unit, File: p.File}
		order = append(order, ref)
	}
	for _, o := range d.Outputs {
		ref := domain.ManifestRef{Type: o.Type, Unit: o.Unit}
		avail[ref] = modflow.NameFileEntry{Type: o.Type, Unit: o.Unit, File: o.File}
		order = append(order, ref)
	}
	out := make([]modflow.NameFileEntry, 0, len(order))
	for _, ref := range d.Manifest {
		if e, ok := avail[ref]; ok {
			out = append(out, e)
			delete(avail, ref)
		}
	}
	for _, ref := range order {
		if e, ok := avail[ref]; ok {
			out = append(out, e)
			delete(avail, ref)
		}
	}
	return out
}

// needsGrid reports whether a package type can only parse with the
// discretization facts in hand.
func needsGrid(ftype string) bool {
	switch ftype {
	case "BAS6", "LPF", "RCH":
		return true
	}
	return false
}

// incomplete reports whether any package is still a bare manifest entry.
func incomplete(d *domain.ModelDeck) bool {
	for _, p := range d.Packages {
		if p.Dis == nil && p.Arrays == nil && p.Periods == nil && p.Lines == nil {
			return true
		}
	}
	return false
}

// validate checks grid-shape and stress-period consistency across the deck.
func validate(d *domain.ModelDeck) error {
	dis, ok := d.Dis()
	if !ok {
		return &domain.ModelConsistencyError{Package: "DIS", Detail: "no discretization package"}
	}
	shape := dis.Shape
	if len(dis.Periods) != dis.Nper {
		return &domain.ModelConsistencyError{
			Package: "DIS",
			Detail:  fmt.Sprintf("declares %d stress periods but defines %d", dis.Nper, len(dis.Periods)),
		}
	}
	for _, p := range d.Packages {
		for _, a := range p.AllArrays() {
			if err := checkArrayShape(p.Type, a, shape); err != nil {
				return err
			}
		}
		if len(p.Periods) > 0 {
			if err := checkPeriods(p, shape, dis.Nper); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkArrayShape(ftype string, a *domain.Array, shape domain.GridShape) error {
	wantRows, wantCols := shape.Nrow, shape.Ncol
	switch a.Name {
	case "DELR":
		wantRows, wantCols = 1, shape.Ncol
	case "DELC":
		wantRows, wantCols = 1, shape.Nrow
	}
	if a.Rows != wantRows || a.Cols != wantCols {
		return &domain.ModelConsistencyError{
			Package: ftype,
			Detail: fmt.Sprintf("array %s shaped (%d, %d), grid wants (%d, %d)",
				a.Name, a.Rows, a.Cols, wantRows, wantCols),
		}
	}
	if a.Layer > shape.Nlay {
		return &domain.ModelConsistencyError{
			Package: ftype,
			Detail:  fmt.Sprintf("array %s declares layer %d of %d", a.Name, a.Layer, shape.Nlay),
		}
	}
	return nil
}

func checkPeriods(p *domain.Package, shape domain.GridShape, nper int) error {
	if len(p.Periods) != nper {
		return &domain.ModelConsistencyError{
			Package: p.Type,
			Detail:  fmt.Sprintf("declares %d stress periods, discretization wants %d", len(p.Periods), nper),
		}
	}
	if p.Periods[0].Reuse() {
		return &domain.ModelConsistencyError{Package: p.Type, Detail: "first stress period cannot reuse previous data"}
	}
	for _, pd := range p.Periods {
		for _, c := range pd.Cells {
			if c.Layer < 1 || c.Layer > shape.Nlay ||
				c.Row < 1 || c.Row > shape.Nrow ||
				c.Col < 1 || c.Col > shape.Ncol {
				return &domain.ModelConsistencyError{
					Package: p.Type,
					Detail: fmt.Sprintf("period %d cell (%d, %d, %d) outside grid %s",
						pd.Period, c.Layer, c.Row, c.Col, shape),
				}
			}
		}
	}
	return nil
}

// IsFormatAmbiguity reports whether err is (or wraps) a format-ambiguity
// failure, the one loader error a caller can correct and retry.
func IsFormatAmbiguity(err error) (*domain.FormatAmbiguityError, bool) {
	var amb *domain.FormatAmbiguityError
	if errors.As(err, &amb) {
		return amb, true
	}
	return nil, false
}
