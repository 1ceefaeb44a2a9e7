package modflow_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"mfrun/internal/domain"
	"mfrun/internal/modflow"
)

const disText = `# demo grid
 1  2  3  2  4  2
 0
CONSTANT  100
CONSTANT  100
INTERNAL  1  (FREE)  -1
50.5 50.5 50.5
50.5 50.5 50.5
CONSTANT  0
 10  1  1  SS
 100  10  1.2  TR
`

func disEntry() modflow.NameFileEntry {
	return modflow.NameFileEntry{Type: "DIS", Unit: 11, File: "demo.dis"}
}

func TestParsePackage_DIS(t *testing.T) {
	p, err := modflow.ParsePackage(disEntry(), []byte(disText), nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Dis == nil {
		t.Fatal("no discretization payload")
	}
	want := domain.GridShape{Nlay: 1, Nrow: 2, Ncol: 3}
	if p.Dis.Shape != want {
		t.Fatalf("shape = %v, want %v", p.Dis.Shape, want)
	}
	if p.Dis.Nper != 2 || len(p.Dis.Periods) != 2 {
		t.Fatalf("periods: nper=%d len=%d", p.Dis.Nper, len(p.Dis.Periods))
	}
	if !p.Dis.Periods[0].Steady || p.Dis.Periods[1].Steady {
		t.Fatalf("steady flags wrong: %+v", p.Dis.Periods)
	}
	if p.Dis.Periods[1].Length != 100 || p.Dis.Periods[1].Steps != 10 || p.Dis.Periods[1].TimeMult != 1.2 {
		t.Fatalf("period 2 = %+v", p.Dis.Periods[1])
	}
	top, ok := p.Array("TOP")
	if !ok {
		t.Fatal("no TOP array")
	}
	if top.Constant || top.At(1, 2) != 50.5 {
		t.Fatalf("TOP = %+v", top)
	}
	if len(p.Comments) != 1 || !strings.HasPrefix(p.Comments[0], "#") {
		t.Fatalf("comments = %q", p.Comments)
	}
}

func TestParsePackage_DIS_RenderStable(t *testing.T) {
	p, err := modflow.ParsePackage(disEntry(), []byte(disText), nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	first := modflow.RenderPackage(p)
	q, err := modflow.ParsePackage(disEntry(), first, nil, nil)
	if err != nil {
		t.Fatalf("reparse rendered text: %v", err)
	}
	if !p.Equal(q) {
		t.Fatal("reparsed package differs from original")
	}
	second := modflow.RenderPackage(q)
	if !bytes.Equal(first, second) {
		t.Fatalf("render not stable:\n%s\n--\n%s", first, second)
	}
}

// Data written in glued fixed-width columns under a (FREE) control record
// cannot be tokenized; the parser must classify that as a format ambiguity,
// not a generic parse failure.
const gluedDIS = ` 1  2  2  1  4  2
 0
CONSTANT  100
CONSTANT  100
CONSTANT  50
INTERNAL  1  (FREE)  -1
  99.99999-100.00000
  99.99999-100.00000
 10  1  1  SS
`

func TestParsePackage_FormatAmbiguity(t *testing.T) {
	_, err := modflow.ParsePackage(disEntry(), []byte(gluedDIS), nil, nil)
	var amb *domain.FormatAmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("want FormatAmbiguityError, got %v", err)
	}
	if amb.Package != "DIS" || amb.Array != "BOTM" {
		t.Fatalf("ambiguity names %s/%s, want DIS/BOTM", amb.Package, amb.Array)
	}
	if amb.Token != "99.99999-100.00000" {
		t.Fatalf("token = %q", amb.Token)
	}
}

func TestParsePackage_FormatOverrideResolvesAmbiguity(t *testing.T) {
	fixed := domain.FieldFormat{Count: 2, Letter: 'F', Width: 10, Precision: 5}
	override := func(name string) *domain.FieldFormat {
		if name == "BOTM" {
			return &fixed
		}
		return nil
	}
	p, err := modflow.ParsePackage(disEntry(), []byte(gluedDIS), nil, override)
	if err != nil {
		t.Fatalf("parse with override: %v", err)
	}
	botm, ok := p.Array("BOTM")
	if !ok {
		t.Fatal("no BOTM array")
	}
	if botm.At(0, 0) != 99.99999 || botm.At(0, 1) != -100 {
		t.Fatalf("BOTM row 0 = [%g %g]", botm.At(0, 0), botm.At(0, 1))
	}
	// the corrected format sticks, so the rewritten deck parses without help
	if botm.Format != fixed {
		t.Fatalf("BOTM format = %v, want %v", botm.Format, fixed)
	}
	rendered := modflow.RenderPackage(p)
	q, err := modflow.ParsePackage(disEntry(), rendered, nil, nil)
	if err != nil {
		t.Fatalf("reparse corrected deck: %v", err)
	}
	if !p.Equal(q) {
		t.Fatal("corrected deck does not round-trip")
	}
}

// A token with letters in it is plain garbage, not an ambiguity.
func TestParsePackage_BadValueIsParseError(t *testing.T) {
	text := strings.Replace(gluedDIS, "  99.99999-100.00000\n  99.99999-100.00000", "fifty fifty\nfifty fifty", 1)
	_, err := modflow.ParsePackage(disEntry(), []byte(text), nil, nil)
	var amb *domain.FormatAmbiguityError
	if errors.As(err, &amb) {
		t.Fatalf("garbage token misclassified as ambiguity: %v", err)
	}
	var pe *domain.PackageParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want PackageParseError, got %v", err)
	}
	if pe.Package != "DIS" {
		t.Fatalf("parse error names package %q", pe.Package)
	}
}

func TestParsePackage_WEL(t *testing.T) {
	text := ` 2  50
 2
 1  1  1  -150
 1  2  2  -99.5
 -1
`
	ctx := &modflow.DeckContext{Shape: domain.GridShape{Nlay: 1, Nrow: 2, Ncol: 2}, Nper: 2}
	entry := modflow.NameFileEntry{Type: "WEL", Unit: 12, File: "demo.wel"}
	p, err := modflow.ParsePackage(entry, []byte(text), ctx, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Periods) != 2 {
		t.Fatalf("periods = %d", len(p.Periods))
	}
	if got := len(p.Periods[0].Cells); got != 2 {
		t.Fatalf("period 0 cells = %d", got)
	}
	c := p.Periods[0].Cells[1]
	if c.Layer != 1 || c.Row != 2 || c.Col != 2 || c.Values[0] != -99.5 {
		t.Fatalf("cell = %+v", c)
	}
	if !p.Periods[1].Reuse() {
		t.Fatal("ITMP=-1 should mark reuse")
	}
	rendered := modflow.RenderPackage(p)
	q, err := modflow.ParsePackage(entry, rendered, ctx, nil)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if !p.Equal(q) {
		t.Fatal("well package does not round-trip")
	}
}

func TestParsePackage_LPF(t *testing.T) {
	text := ` 0  -1E30  0
 1
 0
 1.0
 0
 0
CONSTANT  8.5
CONSTANT  0.85
`
	ctx := &modflow.DeckContext{Shape: domain.GridShape{Nlay: 1, Nrow: 2, Ncol: 2}, Nper: 1}
	entry := modflow.NameFileEntry{Type: "LPF", Unit: 15, File: "demo.lpf"}
	p, err := modflow.ParsePackage(entry, []byte(text), ctx, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Header) != 6 {
		t.Fatalf("header lines = %d", len(p.Header))
	}
	hk, ok := p.Array("HK")
	if !ok || !hk.Constant || hk.Value != 8.5 || hk.Layer != 1 {
		t.Fatalf("HK = %+v", hk)
	}
	vka, ok := p.Array("VKA")
	if !ok || vka.Value != 0.85 {
		t.Fatalf("VKA = %+v", vka)
	}
	if got := modflow.RenderPackage(p); string(got) != text {
		t.Fatalf("layer-property package altered:\n%q\n%q", text, got)
	}
}

// Blank lines between stress periods must not consume period indices.
func TestParsePackage_WEL_InteriorBlankLines(t *testing.T) {
	text := ` 2  50

 1
 1  1  1  -150

 -1
`
	ctx := &modflow.DeckContext{Shape: domain.GridShape{Nlay: 1, Nrow: 2, Ncol: 2}, Nper: 2}
	entry := modflow.NameFileEntry{Type: "WEL", Unit: 12, File: "demo.wel"}
	p, err := modflow.ParsePackage(entry, []byte(text), ctx, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Periods) != 2 {
		t.Fatalf("periods = %d", len(p.Periods))
	}
	if p.Periods[0].Period != 0 || p.Periods[1].Period != 1 {
		t.Fatalf("period indices = %d, %d", p.Periods[0].Period, p.Periods[1].Period)
	}
	if !p.Periods[1].Reuse() {
		t.Fatal("second period should reuse")
	}
}

func TestParsePackage_RCH(t *testing.T) {
	text := ` 3  50
 1
CONSTANT  0.0001
 -1
`
	ctx := &modflow.DeckContext{Shape: domain.GridShape{Nlay: 1, Nrow: 2, Ncol: 2}, Nper: 2}
	entry := modflow.NameFileEntry{Type: "RCH", Unit: 18, File: "demo.rch"}
	p, err := modflow.ParsePackage(entry, []byte(text), ctx, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Periods) != 2 {
		t.Fatalf("periods = %d", len(p.Periods))
	}
	a := p.Periods[0].Array
	if a == nil || !a.Constant || a.Value != 0.0001 {
		t.Fatalf("period 0 recharge = %+v", a)
	}
	if !p.Periods[1].Reuse() || p.Periods[1].Array != nil {
		t.Fatalf("period 1 = %+v", p.Periods[1])
	}
}

// Packages with no dedicated parser round-trip byte-for-byte.
func TestParsePackage_OpaqueRoundTrip(t *testing.T) {
	text := "# solver knobs\n 50  30  1  1\n 1.E-4  1.E-3  1.  2  1  0  1.\n"
	entry := modflow.NameFileEntry{Type: "PCG", Unit: 19, File: "demo.pcg"}
	p, err := modflow.ParsePackage(entry, []byte(text), nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := modflow.RenderPackage(p); string(got) != text {
		t.Fatalf("opaque package altered:\n%q\n%q", text, got)
	}
}

func TestParseNameFile(t *testing.T) {
	text := "# demo model\n" +
		"LIST             2  demo.list\n" +
		"DIS             11  demo.dis\n" +
		"BAS6            13  demo.bas\n" +
		"DATA(BINARY)    30  demo.hds\n"
	comments, entries, err := modflow.ParseNameFile([]byte(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(comments) != 1 || len(entries) != 4 {
		t.Fatalf("got %d comments, %d entries", len(comments), len(entries))
	}
	if !entries[0].IsOutput() || !entries[3].IsOutput() {
		t.Fatal("LIST and DATA(BINARY) are output bindings")
	}
	if entries[1].IsOutput() {
		t.Fatal("DIS is not an output binding")
	}
	if entries[1].Unit != 11 || entries[1].File != "demo.dis" {
		t.Fatalf("DIS entry = %+v", entries[1])
	}
	if got := modflow.RenderNameFile(comments, entries); string(got) != text {
		t.Fatalf("name file altered:\n%q\n%q", text, got)
	}
}

func TestParseNameFile_Rejected(t *testing.T) {
	for _, text := range []string{"", "# only comments\n", "DIS eleven demo.dis\n", "DIS 11\n"} {
		if _, _, err := modflow.ParseNameFile([]byte(text)); err == nil {
			t.Errorf("parse %q: want error", text)
		}
	}
}
