package modflow

import (
	"fmt"
	"strconv"
	"strings"

	"mfrun/internal/domain"
)

// ambiguityError marks array data whose field boundaries could not be
// determined under the declared format. Package parsers wrap it into
// domain.FormatAmbiguityError with the package and array names attached.
type ambiguityError struct {
	Row   int
	Token string
}

func (e *ambiguityError) Error() string {
	return fmt.Sprintf("row %d: cannot split fields at %q", e.Row, e.Token)
}

// readArray reads one array: control record, then data rows if internal.
// override, when non-zero, replaces the declared field format for the data
// rows (the corrective-retry path).
func readArray(s *lineScanner, name string, layer, rows, cols int, override *domain.FieldFormat) (*domain.Array, error) {
	ln, ok := s.next()
	if !ok {
		return nil, fmt.Errorf("array %s: unexpected end of file", name)
	}
	ctrl, err := parseControlRecord(ln)
	if err != nil {
		return nil, fmt.Errorf("array %s: %w", name, err)
	}
	a := &domain.Array{
		Name:       name,
		Layer:      layer,
		Rows:       rows,
		Cols:       cols,
		Format:     ctrl.Format,
		Multiplier: ctrl.Value,
		IPRN:       ctrl.IPRN,
	}
	if ctrl.Constant {
		a.Constant = true
		a.Value = ctrl.Value
		a.Multiplier = 0
		a.Format = domain.FieldFormat{}
		return a, nil
	}
	format := ctrl.Format
	if override != nil {
		format = *override
		a.Format = format
	}
	data, err := readArrayData(s, rows, cols, format)
	if err != nil {
		return nil, fmt.Errorf("array %s: %w", name, err)
	}
	a.Data = data
	return a, nil
}

// readArrayData reads rows*cols values. Each array row starts on a fresh
// line and may continue over as many lines as it needs.
func readArrayData(s *lineScanner, rows, cols int, f domain.FieldFormat) ([][]float64, error) {
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, 0, cols)
		for len(row) < cols {
			ln, ok := s.next()
			if !ok {
				return nil, fmt.Errorf("row %d: unexpected end of file after %d of %d values", i, len(row), cols)
			}
			vals, err := splitRow(ln, cols-len(row), f, i)
			if err != nil {
				return nil, err
			}
			row = append(row, vals...)
		}
		out[i] = row
	}
	return out, nil
}

// splitRow extracts up to want values from one line under the given format.
func splitRow(ln string, want int, f domain.FieldFormat, rowIdx int) ([]float64, error) {
	if f.Free {
		fields := strings.Fields(ln)
		if len(fields) > want {
			return nil, &ambiguityError{Row: rowIdx, Token: ln}
		}
		out := make([]float64, 0, len(fields))
		for _, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				if numericLike(tok) {
					// e.g. "99.99999-100.0000": fixed-width fields with no
					// separating blank, misread as one free-form token
					return nil, &ambiguityError{Row: rowIdx, Token: tok}
				}
				return nil, fmt.Errorf("row %d: bad value %q", rowIdx, tok)
			}
			out = append(out, v)
		}
		return out, nil
	}

	per := f.Count
	if want < per {
		per = want
	}
	out := make([]float64, 0, per)
	for k := 0; k < per; k++ {
		start := k * f.Width
		if start >= len(ln) {
			break
		}
		end := start + f.Width
		if end > len(ln) {
			end = len(ln)
		}
		tok := strings.TrimSpace(ln[start:end])
		if tok == "" {
			break
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad fixed-width value %q", rowIdx, tok)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("row %d: no values on line %q", rowIdx, ln)
	}
	return out, nil
}

// numericLike reports whether a token is built only of numeric characters,
// the signature of glued fixed-width fields (as opposed to plain garbage).
func numericLike(tok string) bool {
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' || r == '+' || r == '-' || r == 'e' || r == 'E' || r == 'd' || r == 'D':
		default:
			return false
		}
	}
	return tok != ""
}

// writeArray renders an array back to text: control record, then data rows.
// Output is a pure function of the array value, so re-serializing an
// unmodified deck is byte-identical.
func writeArray(b *strings.Builder, a *domain.Array) {
	if a.Constant {
		b.WriteString(controlRecord{Constant: true, Value: a.Value}.render())
		b.WriteByte('\n')
		return
	}
	b.WriteString(controlRecord{Value: a.Multiplier, Format: a.Format, IPRN: a.IPRN}.render())
	b.WriteByte('\n')
	per := a.Format.Count
	if a.Format.Free {
		per = 10
	}
	for _, row := range a.Data {
		for start := 0; start < len(row); start += per {
			end := start + per
			if end > len(row) {
				end = len(row)
			}
			b.WriteString(renderValues(row[start:end], a.Format))
			b.WriteByte('\n')
		}
	}
}

func renderValues(vals []float64, f domain.FieldFormat) string {
	if f.Free {
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = formatScalar(v)
		}
		return strings.Join(parts, " ")
	}
	var b strings.Builder
	for _, v := range vals {
		b.WriteString(renderFixed(v, f))
	}
	return b.String()
}

func renderFixed(v float64, f domain.FieldFormat) string {
	switch f.Letter {
	case 'E':
		return fmt.Sprintf("%*.*E", f.Width, f.Precision, v)
	case 'G':
		return fmt.Sprintf("%*.*G", f.Width, f.Precision, v)
	default:
		return fmt.Sprintf("%*.*f", f.Width, f.Precision, v)
	}
}
