package domain

import (
	"fmt"
	"path/filepath"
)

// GridShape is the (nlay, nrow, ncol) extent declared by the discretization
// package. Every spatially indexed array in the deck must agree with it.
type GridShape struct {
	Nlay int
	Nrow int
	Ncol int
}

func (g GridShape) String() string {
	return fmt.Sprintf("(%d, %d, %d)", g.Nlay, g.Nrow, g.Ncol)
}

// StressPeriod is one simulated time interval.
type StressPeriod struct {
	Length   float64
	Steps    int
	TimeMult float64
	Steady   bool
}

// FieldFormat describes how numeric array values are laid out in a text file:
// free-form whitespace-delimited, or fixed columns of Width characters with
// Precision decimals, Count values per line. Letter is the Fortran edit code
// ('F', 'E' or 'G').
type FieldFormat struct {
	Free      bool
	Count     int
	Letter    byte
	Width     int
	Precision int
}

// FreeFormat is the default whitespace-delimited layout.
var FreeFormat = FieldFormat{Free: true}

// String renders the descriptor the way the deck files carry it,
// e.g. "(FREE)" or "(10F10.4)".
func (f FieldFormat) String() string {
	if f.Free {
		return "(FREE)"
	}
	return fmt.Sprintf("(%d%c%d.%d)", f.Count, f.Letter, f.Width, f.Precision)
}

// Validate enforces internal consistency: a fixed format declares count,
// width and precision; a free format declares neither.
func (f FieldFormat) Validate() error {
	if f.Free {
		if f.Count != 0 || f.Width != 0 || f.Precision != 0 || f.Letter != 0 {
			return fmt.Errorf("free format must not declare field widths")
		}
		return nil
	}
	if f.Count <= 0 || f.Width <= 0 || f.Precision < 0 {
		return fmt.Errorf("fixed format %s must declare count, width and precision", f)
	}
	if f.Letter != 'F' && f.Letter != 'E' && f.Letter != 'G' {
		return fmt.Errorf("fixed format letter %q not one of F, E, G", f.Letter)
	}
	if f.Precision >= f.Width {
		return fmt.Errorf("fixed format %s: precision must be narrower than width", f)
	}
	return nil
}

// Array is one named numeric array within a package: either a constant fill
// or explicit row-major data. Stored values are the on-disk values; At applies
// the multiplier.
type Array struct {
	Name       string
	Layer      int // 1-based layer for layered properties; 0 when unlayered
	Rows       int
	Cols       int
	Format     FieldFormat
	Constant   bool
	Value      float64 // fill value when Constant
	Multiplier float64
	IPRN       int
	Data       [][]float64 // nil when Constant
}

// At returns the effective value at (row, col), constants expanded and the
// multiplier applied.
func (a *Array) At(row, col int) float64 {
	if a.Constant {
		return a.Value
	}
	return a.Data[row][col] * a.Multiplier
}

// Shape reports (rows, cols).
func (a *Array) Shape() (int, int) { return a.Rows, a.Cols }

// Equal compares two arrays value-for-value, including layout metadata.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Layer != b.Layer || a.Rows != b.Rows || a.Cols != b.Cols ||
		a.Format != b.Format || a.Constant != b.Constant || a.Multiplier != b.Multiplier ||
		a.IPRN != b.IPRN {
		return false
	}
	if a.Constant {
		return a.Value == b.Value
	}
	for i := range a.Data {
		for j := range a.Data[i] {
			if a.Data[i][j] != b.Data[i][j] {
				return false
			}
		}
	}
	return true
}

// CellRecord is one list-style stress entry (e.g. a well): a 1-based cell
// address plus its values, as carried in the file.
type CellRecord struct {
	Layer  int
	Row    int
	Col    int
	Values []float64
}

// PeriodData is the stress data a package declares for one period. Flag is
// the declared item count (ITMP/INRECH); a negative flag reuses the previous
// period and carries no data of its own.
type PeriodData struct {
	Period int // 0-based
	Flag   int
	Cells  []CellRecord
	Array  *Array
}

// Reuse reports whether this period reuses the previous period's data.
func (p PeriodData) Reuse() bool { return p.Flag < 0 }

// DisData is the parsed discretization package: the grid, layer confinement
// flags, spacing and elevation arrays, and the stress period sequence.
type DisData struct {
	Shape    GridShape
	Nper     int
	TimeUnit int
	LenUnit  int
	LayCbd   []int
	Delr     *Array
	Delc     *Array
	Top      *Array
	Botm     []*Array
	Periods  []StressPeriod
}

// Package is a named block of configuration/array data from one deck file.
// Exactly one payload family is populated, depending on Type: Dis for the
// discretization package, Arrays for property packages, Periods for
// stress-list packages, Lines for packages carried opaquely.
type Package struct {
	Type     string
	Unit     int
	File     string
	Comments []string
	Header   []string

	Dis     *DisData
	Arrays  []*Array
	Periods []PeriodData
	Lines   []string
}

// Array looks up a named array in the package. The second return reports
// presence; callers must not probe further on false.
func (p *Package) Array(name string) (*Array, bool) {
	for _, a := range p.Arrays {
		if a.Name == name {
			return a, true
		}
	}
	if p.Dis != nil {
		for _, a := range p.disArrays() {
			if a.Name == name {
				return a, true
			}
		}
	}
	for _, pd := range p.Periods {
		if pd.Array != nil && pd.Array.Name == name {
			return pd.Array, true
		}
	}
	return nil, false
}

func (p *Package) disArrays() []*Array {
	out := []*Array{p.Dis.Delr, p.Dis.Delc, p.Dis.Top}
	out = append(out, p.Dis.Botm...)
	return out
}

// AllArrays returns every array the package carries, in file order.
func (p *Package) AllArrays() []*Array {
	var out []*Array
	if p.Dis != nil {
		out = append(out, p.disArrays()...)
	}
	out = append(out, p.Arrays...)
	for _, pd := range p.Periods {
		if pd.Array != nil {
			out = append(out, pd.Array)
		}
	}
	return out
}

// Equal compares two packages: metadata, headers, and every payload family
// value-for-value.
func (p *Package) Equal(q *Package) bool {
	if p.Type != q.Type || p.Unit != q.Unit || p.File != q.File {
		return false
	}
	if !stringsEqual(p.Comments, q.Comments) || !stringsEqual(p.Header, q.Header) ||
		!stringsEqual(p.Lines, q.Lines) {
		return false
	}
	if (p.Dis == nil) != (q.Dis == nil) {
		return false
	}
	if p.Dis != nil && !p.Dis.equal(q.Dis) {
		return false
	}
	if len(p.Arrays) != len(q.Arrays) || len(p.Periods) != len(q.Periods) {
		return false
	}
	for i := range p.Arrays {
		if !p.Arrays[i].Equal(q.Arrays[i]) {
			return false
		}
	}
	for i := range p.Periods {
		if !p.Periods[i].equal(q.Periods[i]) {
			return false
		}
	}
	return true
}

func (d *DisData) equal(o *DisData) bool {
	if d.Shape != o.Shape || d.Nper != o.Nper || d.TimeUnit != o.TimeUnit ||
		d.LenUnit != o.LenUnit || len(d.LayCbd) != len(o.LayCbd) ||
		len(d.Botm) != len(o.Botm) || len(d.Periods) != len(o.Periods) {
		return false
	}
	for i := range d.LayCbd {
		if d.LayCbd[i] != o.LayCbd[i] {
			return false
		}
	}
	if !d.Delr.Equal(o.Delr) || !d.Delc.Equal(o.Delc) || !d.Top.Equal(o.Top) {
		return false
	}
	for i := range d.Botm {
		if !d.Botm[i].Equal(o.Botm[i]) {
			return false
		}
	}
	for i := range d.Periods {
		if d.Periods[i] != o.Periods[i] {
			return false
		}
	}
	return true
}

func (p PeriodData) equal(q PeriodData) bool {
	if p.Period != q.Period || p.Flag != q.Flag || len(p.Cells) != len(q.Cells) {
		return false
	}
	for i := range p.Cells {
		a, b := p.Cells[i], q.Cells[i]
		if a.Layer != b.Layer || a.Row != b.Row || a.Col != b.Col || len(a.Values) != len(b.Values) {
			return false
		}
		for j := range a.Values {
			if a.Values[j] != b.Values[j] {
				return false
			}
		}
	}
	if (p.Array == nil) != (q.Array == nil) {
		return false
	}
	if p.Array != nil && !p.Array.Equal(q.Array) {
		return false
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// OutputBinding is a name-file entry that names an output file (the listing
// or a DATA(BINARY) unit) rather than an input package.
type OutputBinding struct {
	Type string
	Unit int
	File string
}

// ManifestRef records one name-file entry's position by type and unit, so a
// rewrite keeps the file's original ordering (LIST first, by convention).
type ManifestRef struct {
	Type string
	Unit int
}

// ModelDeck is the in-memory aggregate of one model's packages, in name-file
// order, plus its declared output bindings. Comments and Manifest carry the
// name file's header lines and entry order verbatim, so rewriting an
// unmodified deck reproduces the file. FormatOverrides maps "FTYPE/ARRAY" to
// an explicit FieldFormat applied when that package is (re)loaded; it is how
// a format-ambiguity correction is carried into a retried parse.
type ModelDeck struct {
	Name            string
	Comments        []string
	Packages        []*Package
	Outputs         []OutputBinding
	Manifest        []ManifestRef
	FormatOverrides map[string]FieldFormat
}

// OverrideFor returns the explicit format set for an array of a package.
func (d *ModelDeck) OverrideFor(ftype, array string) (FieldFormat, bool) {
	f, ok := d.FormatOverrides[ftype+"/"+array]
	return f, ok
}

// SetOverride records an explicit format for an array of a package.
func (d *ModelDeck) SetOverride(ftype, array string, f FieldFormat) {
	if d.FormatOverrides == nil {
		d.FormatOverrides = make(map[string]FieldFormat)
	}
	d.FormatOverrides[ftype+"/"+array] = f
}

// Package looks up a package by its name-file type (e.g. "DIS", "WEL").
func (d *ModelDeck) Package(ftype string) (*Package, bool) {
	for _, p := range d.Packages {
		if p.Type == ftype {
			return p, true
		}
	}
	return nil, false
}

// Dis returns the discretization data, if the deck has one.
func (d *ModelDeck) Dis() (*DisData, bool) {
	p, ok := d.Package("DIS")
	if !ok || p.Dis == nil {
		return nil, false
	}
	return p.Dis, true
}

// GridShape returns the grid extent declared by the discretization package.
func (d *ModelDeck) GridShape() (GridShape, bool) {
	dis, ok := d.Dis()
	if !ok {
		return GridShape{}, false
	}
	return dis.Shape, true
}

// Equal compares two decks package-for-package, including the preserved
// name-file comments and entry order.
func (d *ModelDeck) Equal(other *ModelDeck) bool {
	if d.Name != other.Name || len(d.Packages) != len(other.Packages) ||
		len(d.Outputs) != len(other.Outputs) || len(d.Manifest) != len(other.Manifest) {
		return false
	}
	if !stringsEqual(d.Comments, other.Comments) {
		return false
	}
	for i, m := range d.Manifest {
		if m != other.Manifest[i] {
			return false
		}
	}
	for i, p := range d.Packages {
		if !p.Equal(other.Packages[i]) {
			return false
		}
	}
	for i, o := range d.Outputs {
		if o != other.Outputs[i] {
			return false
		}
	}
	return true
}

// Output looks up an output binding by type.
func (d *ModelDeck) Output(ftype string) (OutputBinding, bool) {
	for _, o := range d.Outputs {
		if o.Type == ftype {
			return o, true
		}
	}
	return OutputBinding{}, false
}

// Workspace is a resolved model directory: its path, the base model name,
// the classified directory contents, and whichever output artifacts already
// exist on disk. The orchestrator never mutates the directory layout itself.
type Workspace struct {
	Dir      string
	Name     string
	NameFile string
	Files    []string
	Subdirs  []string
	Outputs  map[ArtifactKind]string
}

// Path joins a file name onto the workspace directory.
func (w Workspace) Path(file string) string { return filepath.Join(w.Dir, file) }

// ArtifactKind identifies one class of solver output file.
type ArtifactKind string

const (
	ArtifactListing      ArtifactKind = "listing"
	ArtifactHeads        ArtifactKind = "heads"
	ArtifactDrawdown     ArtifactKind = "drawdown"
	ArtifactBudget       ArtifactKind = "budget"
	ArtifactObservations ArtifactKind = "observations"
	ArtifactStreamflow   ArtifactKind = "streamflow"
)

// ArtifactExt maps each artifact kind to its conventional file extension.
var ArtifactExt = map[ArtifactKind]string{
	ArtifactListing:      ".list",
	ArtifactHeads:        ".hds",
	ArtifactDrawdown:     ".ddn",
	ArtifactBudget:       ".cbc",
	ArtifactObservations: ".hob.out",
	ArtifactStreamflow:   ".sfr.out",
}

// RunResult is the outcome of one solver invocation. Log preserves the
// solver's combined output in order regardless of success. Artifacts holds
// paths only for files that exist on disk. PID is the solver process id,
// exposed so a caller can impose an external timeout/kill policy.
type RunResult struct {
	Workspace Workspace
	ExitCode  int
	Success   bool
	Log       []string
	Artifacts map[ArtifactKind]string
	PID       int
}

// BudgetCell is one entry of a list-style budget record: a 1-based node
// number, the flow value, and any auxiliary values.
type BudgetCell struct {
	Node  int
	Value float64
	Aux   []float64
}

// BudgetRecord is one named budget entry at one time: either a full per-layer
// array or a cell list, depending on how the solver wrote it.
type BudgetRecord struct {
	Name  string
	Time  float64
	Array [][][]float64
	Cells []BudgetCell
}

// Observation is one simulated-versus-observed head comparison.
type Observation struct {
	Name      string
	Simulated float64
	Observed  float64
}

// StreamflowRecord is one reach of the streamflow-routing output.
type StreamflowRecord struct {
	Layer   int
	Row     int
	Col     int
	Segment int
	Reach   int
	FlowIn  float64
	FlowOut float64
	Stage   float64
	Depth   float64
	Width   float64
}
