package modflow

import (
	"fmt"
	"strconv"
	"strings"

	"mfrun/internal/domain"
)

// DeckContext carries the discretization facts the stress and property
// package parsers need. The loader parses DIS first and threads this through.
type DeckContext struct {
	Shape domain.GridShape
	Nper  int
}

// ParsePackage parses one package file into a domain.Package. override, when
// non-nil, maps an array name to an explicit field format replacing the
// declared one (the corrective-retry path). Packages without a dedicated
// parser are carried opaquely and round-trip verbatim.
func ParsePackage(entry NameFileEntry, data []byte, ctx *DeckContext, override func(string) *domain.FieldFormat) (*domain.Package, error) {
	p := &domain.Package{Type: entry.Type, Unit: entry.Unit, File: entry.File}
	s := newLineScanner(data)
	p.Comments = s.comments()

	var err error
	switch entry.Type {
	case "DIS":
		err = parseDIS(s, p, override)
	case "BAS6":
		err = parseBAS6(s, p, ctx, override)
	case "LPF":
		err = parseLPF(s, p, ctx, override)
	case "RCH":
		err = parseRCH(s, p, ctx, override)
	case "WEL":
		err = parseWEL(s, p)
	default:
		p.Lines = s.rest()
	}
	if err != nil {
		if amb, ok := err.(*ambiguityErrorNamed); ok {
			return nil, &domain.FormatAmbiguityError{
				Package: entry.Type,
				Array:   amb.Array,
				Row:     amb.Row,
				Token:   amb.Token,
			}
		}
		return nil, &domain.PackageParseError{Package: entry.Type, File: entry.File, Err: err}
	}
	return p, nil
}

// ambiguityErrorNamed is an ambiguityError with the array name attached.
type ambiguityErrorNamed struct {
	ambiguityError
	Array string
}

func nameAmbiguity(err error, array string) error {
	var amb *ambiguityError
	if asAmbiguity(err, &amb) {
		return &ambiguityErrorNamed{ambiguityError: *amb, Array: array}
	}
	return err
}

func asAmbiguity(err error, out **ambiguityError) bool {
	for err != nil {
		if a, ok := err.(*ambiguityError); ok {
			*out = a
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func intFields(ln string, want int) ([]int, error) {
	fields := strings.Fields(ln)
	if len(fields) < want {
		return nil, fmt.Errorf("want %d integers, got %q", want, ln)
	}
	out := make([]int, want)
	for i := 0; i < want; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("bad integer %q", fields[i])
		}
		out[i] = v
	}
	return out, nil
}

func requireLine(s *lineScanner, what string) (string, error) {
	ln, ok := s.next()
	if !ok {
		return "", fmt.Errorf("unexpected end of file, want %s", what)
	}
	return ln, nil
}

func readNamedArray(s *lineScanner, name string, layer, rows, cols int, override func(string) *domain.FieldFormat) (*domain.Array, error) {
	var ov *domain.FieldFormat
	if override != nil {
		ov = override(name)
	}
	a, err := readArray(s, name, layer, rows, cols, ov)
	if err != nil {
		return nil, nameAmbiguity(unwrapArray(err), name)
	}
	return a, nil
}

// unwrapArray strips the "array NAME:" wrapper so ambiguity errors can be
// detected; other errors keep their context.
func unwrapArray(err error) error {
	var amb *ambiguityError
	if asAmbiguity(err, &amb) {
		return amb
	}
	return err
}

func parseDIS(s *lineScanner, p *domain.Package, override func(string) *domain.FieldFormat) error {
	ln, err := requireLine(s, "NLAY NROW NCOL NPER ITMUNI LENUNI")
	if err != nil {
		return err
	}
	hdr, err := intFields(ln, 6)
	if err != nil {
		return fmt.Errorf("discretization header: %w", err)
	}
	dis := &domain.DisData{
		Shape:    domain.GridShape{Nlay: hdr[0], Nrow: hdr[1], Ncol: hdr[2]},
		Nper:     hdr[3],
		TimeUnit: hdr[4],
		LenUnit:  hdr[5],
	}
	if dis.Shape.Nlay <= 0 || dis.Shape.Nrow <= 0 || dis.Shape.Ncol <= 0 || dis.Nper <= 0 {
		return fmt.Errorf("discretization header declares non-positive extents %v", hdr[:4])
	}

	ln, err = requireLine(s, "LAYCBD")
	if err != nil {
		return err
	}
	dis.LayCbd, err = intFields(ln, dis.Shape.Nlay)
	if err != nil {
		return fmt.Errorf("LAYCBD: %w", err)
	}

	if dis.Delr, err = readNamedArray(s, "DELR", 0, 1, dis.Shape.Ncol, override); err != nil {
		return err
	}
	if dis.Delc, err = readNamedArray(s, "DELC", 0, 1, dis.Shape.Nrow, override); err != nil {
		return err
	}
	if dis.Top, err = readNamedArray(s, "TOP", 0, dis.Shape.Nrow, dis.Shape.Ncol, override); err != nil {
		return err
	}
	for k := 1; k <= dis.Shape.Nlay; k++ {
		botm, err := readNamedArray(s, "BOTM", k, dis.Shape.Nrow, dis.Shape.Ncol, override)
		if err != nil {
			return err
		}
		dis.Botm = append(dis.Botm, botm)
	}

	for i := 0; i < dis.Nper; i++ {
		ln, err := requireLine(s, "PERLEN NSTP TSMULT SS/TR")
		if err != nil {
			return err
		}
		fields := strings.Fields(ln)
		if len(fields) < 4 {
			return fmt.Errorf("stress period %d: want PERLEN NSTP TSMULT SS/TR, got %q", i, ln)
		}
		perlen, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return fmt.Errorf("stress period %d: bad PERLEN %q", i, fields[0])
		}
		nstp, err := strconv.Atoi(fields[1])
		if err != nil || nstp <= 0 {
			return fmt.Errorf("stress period %d: bad NSTP %q", i, fields[1])
		}
		tsmult, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("stress period %d: bad TSMULT %q", i, fields[2])
		}
		var steady bool
		switch strings.ToUpper(fields[3]) {
		case "SS":
			steady = true
		case "TR":
			steady = false
		default:
			return fmt.Errorf("stress period %d: want SS or TR, got %q", i, fields[3])
		}
		dis.Periods = append(dis.Periods, domain.StressPeriod{
			Length: perlen, Steps: nstp, TimeMult: tsmult, Steady: steady,
		})
	}

	p.Dis = dis
	return nil
}

func parseBAS6(s *lineScanner, p *domain.Package, ctx *DeckContext, override func(string) *domain.FieldFormat) error {
	opts, err := requireLine(s, "options")
	if err != nil {
		return err
	}
	p.Header = append(p.Header, opts)
	for k := 1; k <= ctx.Shape.Nlay; k++ {
		a, err := readNamedArray(s, "IBOUND", k, ctx.Shape.Nrow, ctx.Shape.Ncol, override)
		if err != nil {
			return err
		}
		p.Arrays = append(p.Arrays, a)
	}
	hnoflo, err := requireLine(s, "HNOFLO")
	if err != nil {
		return err
	}
	p.Header = append(p.Header, hnoflo)
	for k := 1; k <= ctx.Shape.Nlay; k++ {
		a, err := readNamedArray(s, "STRT", k, ctx.Shape.Nrow, ctx.Shape.Ncol, override)
		if err != nil {
			return err
		}
		p.Arrays = append(p.Arrays, a)
	}
	return nil
}

// lpfHeaderLines is the count of scalar/flag lines ahead of the property
// arrays: ILPFCB HDRY NPLPF, then LAYTYP, LAYAVG, CHANI, LAYVKA, LAYWET.
const lpfHeaderLines = 6

func parseLPF(s *lineScanner, p *domain.Package, ctx *DeckContext, override func(string) *domain.FieldFormat) error {
	for i := 0; i < lpfHeaderLines; i++ {
		ln, err := requireLine(s, "layer-property flag line")
		if err != nil {
			return err
		}
		p.Header = append(p.Header, ln)
	}
	for k := 1; k <= ctx.Shape.Nlay; k++ {
		hk, err := readNamedArray(s, "HK", k, ctx.Shape.Nrow, ctx.Shape.Ncol, override)
		if err != nil {
			return err
		}
		vka, err := readNamedArray(s, "VKA", k, ctx.Shape.Nrow, ctx.Shape.Ncol, override)
		if err != nil {
			return err
		}
		p.Arrays = append(p.Arrays, hk, vka)
	}
	return nil
}

func parseRCH(s *lineScanner, p *domain.Package, ctx *DeckContext, override func(string) *domain.FieldFormat) error {
	opts, err := requireLine(s, "NRCHOP IRCHCB")
	if err != nil {
		return err
	}
	p.Header = append(p.Header, opts)
	for i := 0; i < ctx.Nper; i++ {
		ln, err := requireLine(s, "INRECH")
		if err != nil {
			return err
		}
		flag, err := intFields(ln, 1)
		if err != nil {
			return fmt.Errorf("period %d INRECH: %w", i, err)
		}
		pd := domain.PeriodData{Period: i, Flag: flag[0]}
		if flag[0] >= 0 {
			a, err := readNamedArray(s, "RECH", 0, ctx.Shape.Nrow, ctx.Shape.Ncol, override)
			if err != nil {
				return err
			}
			pd.Array = a
		}
		p.Periods = append(p.Periods, pd)
	}
	return nil
}

func parseWEL(s *lineScanner, p *domain.Package) error {
	opts, err := requireLine(s, "MXACTW IWELCB")
	if err != nil {
		return err
	}
	p.Header = append(p.Header, opts)
	period := 0
	for {
		ln, ok := s.next()
		if !ok {
			break
		}
		// interior blank lines do not open a stress period
		if strings.TrimSpace(ln) == "" {
			continue
		}
		flag, err := intFields(ln, 1)
		if err != nil {
			return fmt.Errorf("period %d ITMP: %w", period, err)
		}
		pd := domain.PeriodData{Period: period, Flag: flag[0]}
		for n := 0; n < flag[0]; n++ {
			ln, err := requireLine(s, "LAYER ROW COL Q")
			if err != nil {
				return err
			}
			cell, err := parseCellRecord(ln)
			if err != nil {
				return fmt.Errorf("period %d well %d: %w", period, n, err)
			}
			pd.Cells = append(pd.Cells, cell)
		}
		p.Periods = append(p.Periods, pd)
		period++
	}
	if len(p.Periods) == 0 {
		return fmt.Errorf("no stress periods declared")
	}
	return nil
}

func parseCellRecord(ln string) (domain.CellRecord, error) {
	fields := strings.Fields(ln)
	if len(fields) < 4 {
		return domain.CellRecord{}, fmt.Errorf("want LAYER ROW COL and at least one value, got %q", ln)
	}
	addr, err := intFields(ln, 3)
	if err != nil {
		return domain.CellRecord{}, err
	}
	vals := make([]float64, 0, len(fields)-3)
	for _, tok := range fields[3:] {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return domain.CellRecord{}, fmt.Errorf("bad value %q", tok)
		}
		vals = append(vals, v)
	}
	return domain.CellRecord{Layer: addr[0], Row: addr[1], Col: addr[2], Values: vals}, nil
}

// RenderPackage serializes a package back to its file text. The output is a
// pure function of the package value.
func RenderPackage(p *domain.Package) []byte {
	var b strings.Builder
	for _, c := range p.Comments {
		b.WriteString(c)
		b.WriteByte('\n')
	}
	switch p.Type {
	case "DIS":
		renderDIS(&b, p.Dis)
	case "BAS6":
		renderBAS6(&b, p)
	case "LPF":
		renderHeaderThenArrays(&b, p)
	case "RCH":
		renderRCH(&b, p)
	case "WEL":
		renderWEL(&b, p)
	default:
		for _, ln := range p.Lines {
			b.WriteString(ln)
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

func renderDIS(b *strings.Builder, dis *domain.DisData) {
	fmt.Fprintf(b, " %d  %d  %d  %d  %d  %d\n",
		dis.Shape.Nlay, dis.Shape.Nrow, dis.Shape.Ncol, dis.Nper, dis.TimeUnit, dis.LenUnit)
	parts := make([]string, len(dis.LayCbd))
	for i, v := range dis.LayCbd {
		parts[i] = strconv.Itoa(v)
	}
	b.WriteString(" " + strings.Join(parts, "  ") + "\n")
	writeArray(b, dis.Delr)
	writeArray(b, dis.Delc)
	writeArray(b, dis.Top)
	for _, botm := range dis.Botm {
		writeArray(b, botm)
	}
	for _, sp := range dis.Periods {
		flag := "TR"
		if sp.Steady {
			flag = "SS"
		}
		fmt.Fprintf(b, " %s  %d  %s  %s\n", formatScalar(sp.Length), sp.Steps, formatScalar(sp.TimeMult), flag)
	}
}

func renderBAS6(b *strings.Builder, p *domain.Package) {
	b.WriteString(p.Header[0])
	b.WriteByte('\n')
	for _, a := range p.Arrays {
		if a.Name == "IBOUND" {
			writeArray(b, a)
		}
	}
	b.WriteString(p.Header[1])
	b.WriteByte('\n')
	for _, a := range p.Arrays {
		if a.Name == "STRT" {
			writeArray(b, a)
		}
	}
}

func renderHeaderThenArrays(b *strings.Builder, p *domain.Package) {
	for _, h := range p.Header {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	for _, a := range p.Arrays {
		writeArray(b, a)
	}
}

func renderRCH(b *strings.Builder, p *domain.Package) {
	b.WriteString(p.Header[0])
	b.WriteByte('\n')
	for _, pd := range p.Periods {
		fmt.Fprintf(b, " %d\n", pd.Flag)
		if pd.Array != nil {
			writeArray(b, pd.Array)
		}
	}
}

func renderWEL(b *strings.Builder, p *domain.Package) {
	b.WriteString(p.Header[0])
	b.WriteByte('\n')
	for _, pd := range p.Periods {
		fmt.Fprintf(b, " %d\n", pd.Flag)
		for _, c := range pd.Cells {
			fmt.Fprintf(b, " %d  %d  %d", c.Layer, c.Row, c.Col)
			for _, v := range c.Values {
				b.WriteString("  " + formatScalar(v))
			}
			b.WriteByte('\n')
		}
	}
}
