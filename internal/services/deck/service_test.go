package deck_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mfrun/internal/domain"
	"mfrun/internal/services/deck"
)

const nameFileText = `# demo model
LIST           7  demo.list
DIS           11  demo.dis
BAS6          13  demo.bas
RCH           18  demo.rch
WEL           12  demo.wel
PCG           19  demo.pcg
DATA(BINARY)  30  demo.hds
DATA(BINARY)  31  demo.cbc
`

// freeTopRows renders a 10x10 TOP array in free format, one row per line.
func freeTopRows() string {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		vals := make([]string, 10)
		for j := 0; j < 10; j++ {
			vals[j] = fmt.Sprintf("%d", 100+i*10+j)
		}
		b.WriteString(strings.Join(vals, " ") + "\n")
	}
	return b.String()
}

// gluedTopRows renders the same shape in 10-character fixed columns with no
// separating blanks, while the control record still claims (FREE).
func gluedTopRows() string {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			v := 99999.9999
			if j%2 == 1 {
				v = -9999.9999
			}
			fmt.Fprintf(&b, "%10.4f", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func disText(topRows string) string {
	return " 1  10  10  2  4  2\n" +
		" 0\n" +
		"CONSTANT  100\n" +
		"CONSTANT  100\n" +
		"INTERNAL  1  (FREE)  0\n" +
		topRows +
		"CONSTANT  0\n" +
		" 10  1  1  SS\n" +
		" 100  10  1  TR\n"
}

const basText = `FREE
CONSTANT  1
 999.99
CONSTANT  50
`

const rchText = ` 3  0
 1
CONSTANT  0.0001
 -1
`

const welText = ` 2  0
 1
 1  5  5  -150
 -1
`

const pcgText = ` 50  30  1  1
 1.E-4  1.E-3
`

func writeWorkspace(t *testing.T, topRows, wel string) domain.Workspace {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"demo.nam": nameFileText,
		"demo.dis": disText(topRows),
		"demo.bas": basText,
		"demo.rch": rchText,
		"demo.wel": wel,
		"demo.pcg": pcgText,
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return domain.Workspace{
		Dir:      dir,
		Name:     "demo",
		NameFile: filepath.Join(dir, "demo.nam"),
	}
}

func TestLoad(t *testing.T) {
	ws := writeWorkspace(t, freeTopRows(), welText)
	d, err := deck.New().Load(context.Background(), ws)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	shape, ok := d.GridShape()
	if !ok {
		t.Fatal("no grid shape")
	}
	if want := (domain.GridShape{Nlay: 1, Nrow: 10, Ncol: 10}); shape != want {
		t.Fatalf("shape = %v, want %v", shape, want)
	}
	if len(d.Packages) != 5 {
		t.Fatalf("packages = %d", len(d.Packages))
	}
	if len(d.Outputs) != 3 {
		t.Fatalf("outputs = %v", d.Outputs)
	}
	if _, ok := d.Output("LIST"); !ok {
		t.Fatal("no listing binding")
	}

	dis, _ := d.Dis()
	top, ok := d.Packages[0].Array("TOP")
	if !ok || top.At(9, 9) != 199 {
		t.Fatalf("TOP = %+v", top)
	}
	if dis.Nper != 2 || !dis.Periods[0].Steady || dis.Periods[1].Steady {
		t.Fatalf("periods = %+v", dis.Periods)
	}

	wel, _ := d.Package("WEL")
	if len(wel.Periods) != 2 || !wel.Periods[1].Reuse() {
		t.Fatalf("well periods = %+v", wel.Periods)
	}
	c := wel.Periods[0].Cells[0]
	if c.Layer != 1 || c.Row != 5 || c.Col != 5 || c.Values[0] != -150 {
		t.Fatalf("well cell = %+v", c)
	}

	rch, _ := d.Package("RCH")
	if a := rch.Periods[0].Array; a == nil || !a.Constant || a.Value != 0.0001 {
		t.Fatalf("recharge = %+v", rch.Periods[0].Array)
	}

	pcg, _ := d.Package("PCG")
	if len(pcg.Lines) != 2 {
		t.Fatalf("opaque package lines = %q", pcg.Lines)
	}
}

func TestLoad_FormatAmbiguityThenFix(t *testing.T) {
	ws := writeWorkspace(t, gluedTopRows(), welText)
	svc := deck.New()
	ctx := context.Background()

	d, err := svc.Load(ctx, ws)
	amb, ok := deck.IsFormatAmbiguity(err)
	if !ok {
		t.Fatalf("want format ambiguity, got %v", err)
	}
	if amb.Package != "DIS" || amb.Array != "TOP" {
		t.Fatalf("ambiguity names %s/%s, want DIS/TOP", amb.Package, amb.Array)
	}
	if d == nil {
		t.Fatal("failed load must still return the partial deck")
	}
	// packages independent of the grid parsed despite the DIS failure
	if wel, _ := d.Package("WEL"); len(wel.Periods) != 2 {
		t.Fatalf("well package lost: %+v", wel)
	}

	fixed := domain.FieldFormat{Count: 10, Letter: 'F', Width: 10, Precision: 4}
	if err := svc.SetArrayFormat(d, "DIS", "TOP", fixed); err != nil {
		t.Fatalf("set format: %v", err)
	}
	for _, ftype := range []string{"DIS", "BAS6", "RCH"} {
		if err := svc.ReloadPackage(ctx, ws, d, ftype); err != nil {
			t.Fatalf("reload %s: %v", ftype, err)
		}
	}
	top, ok := d.Packages[0].Array("TOP")
	if !ok {
		t.Fatal("no TOP array after reload")
	}
	if top.Format != fixed {
		t.Fatalf("TOP format = %v", top.Format)
	}
	if top.At(0, 0) != 99999.9999 || top.At(0, 1) != -9999.9999 {
		t.Fatalf("TOP row 0 = [%g %g]", top.At(0, 0), top.At(0, 1))
	}

	// correcting again with the same format is a no-op
	if err := svc.SetArrayFormat(d, "DIS", "TOP", fixed); err != nil {
		t.Fatalf("set format again: %v", err)
	}
	if err := svc.ReloadPackage(ctx, ws, d, "DIS"); err != nil {
		t.Fatalf("second reload: %v", err)
	}
	top2, _ := d.Packages[0].Array("TOP")
	if !top.Equal(top2) {
		t.Fatal("repeated corrective reload changed the array")
	}
}

func TestLoad_CellOutsideGrid(t *testing.T) {
	badWel := " 2  0\n 1\n 1  11  5  -150\n -1\n"
	ws := writeWorkspace(t, freeTopRows(), badWel)
	_, err := deck.New().Load(context.Background(), ws)
	var ce *domain.ModelConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("want ModelConsistencyError, got %v", err)
	}
	if ce.Package != "WEL" {
		t.Fatalf("error names package %q", ce.Package)
	}
}

func TestLoad_PeriodCountMismatch(t *testing.T) {
	// one well period against a two-period discretization
	short := " 2  0\n 1\n 1  5  5  -150\n"
	ws := writeWorkspace(t, freeTopRows(), short)
	_, err := deck.New().Load(context.Background(), ws)
	var ce *domain.ModelConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("want ModelConsistencyError, got %v", err)
	}
	if ce.Package != "WEL" {
		t.Fatalf("error names package %q", ce.Package)
	}
}

func TestSetArrayFormat_Rejected(t *testing.T) {
	ws := writeWorkspace(t, freeTopRows(), welText)
	svc := deck.New()
	d, err := svc.Load(context.Background(), ws)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	bad := domain.FieldFormat{Count: 10, Letter: 'X', Width: 10, Precision: 4}
	if err := svc.SetArrayFormat(d, "DIS", "TOP", bad); err == nil {
		t.Fatal("invalid format accepted")
	}
	good := domain.FieldFormat{Count: 10, Letter: 'F', Width: 10, Precision: 4}
	if err := svc.SetArrayFormat(d, "GHB", "COND", good); err == nil {
		t.Fatal("unknown package accepted")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	ws := writeWorkspace(t, freeTopRows(), welText)
	svc := deck.New()
	ctx := context.Background()
	d, err := svc.Load(ctx, ws)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	dir2 := t.TempDir()
	ws2 := domain.Workspace{Dir: dir2, Name: "demo", NameFile: filepath.Join(dir2, "demo.nam")}
	if err := svc.Write(ctx, ws2, d); err != nil {
		t.Fatalf("write: %v", err)
	}
	d2, err := svc.Load(ctx, ws2)
	if err != nil {
		t.Fatalf("reload written deck: %v", err)
	}
	if !d.Equal(d2) {
		t.Fatal("written deck does not load back equal")
	}

	// name-file header comments and entry order survive the rewrite
	nam, err := os.ReadFile(ws2.NameFile)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(nam), "\n")
	if lines[0] != "# demo model" {
		t.Fatalf("name-file comment dropped on rewrite: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "LIST") {
		t.Fatalf("name-file entry order not preserved: %q", lines[1])
	}
	last := lines[len(lines)-2] // final entry before the trailing newline
	if !strings.HasPrefix(last, "DATA(BINARY)") {
		t.Fatalf("name-file entry order not preserved: %q", last)
	}

	// re-serializing an unmodified deck is byte-identical
	before := readAll(t, dir2)
	if err := svc.Write(ctx, ws2, d2); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	after := readAll(t, dir2)
	for name, b := range before {
		if !bytes.Equal(b, after[name]) {
			t.Fatalf("file %s changed on rewrite", name)
		}
	}
}

func readAll(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		out[e.Name()] = b
	}
	return out
}
