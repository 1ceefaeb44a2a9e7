package modflow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"mfrun/internal/domain"
)

var fixedFormatRe = regexp.MustCompile(`^\((\d+)([FEGfeg])(\d+)\.(\d+)\)$`)

// ParseFormat parses a Fortran-style field descriptor: "(FREE)" or
// "(10F10.4)" and friends.
func ParseFormat(s string) (domain.FieldFormat, error) {
	t := strings.TrimSpace(s)
	if strings.EqualFold(t, "(FREE)") || strings.EqualFold(t, "FREE") {
		return domain.FreeFormat, nil
	}
	m := fixedFormatRe.FindStringSubmatch(t)
	if m == nil {
		return domain.FieldFormat{}, fmt.Errorf("unrecognised field format %q", s)
	}
	count, _ := strconv.Atoi(m[1])
	width, _ := strconv.Atoi(m[3])
	prec, _ := strconv.Atoi(m[4])
	f := domain.FieldFormat{
		Count:     count,
		Letter:    strings.ToUpper(m[2])[0],
		Width:     width,
		Precision: prec,
	}
	if err := f.Validate(); err != nil {
		return domain.FieldFormat{}, err
	}
	return f, nil
}

// controlRecord is a parsed array header line (U2DREL-style): a constant
// fill, or an internal array with a multiplier, a field format and a print
// flag.
type controlRecord struct {
	Constant bool
	Value    float64 // fill value (CONSTANT) or multiplier (INTERNAL)
	Format   domain.FieldFormat
	IPRN     int
}

func parseControlRecord(line string) (controlRecord, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return controlRecord{}, fmt.Errorf("empty array control record")
	}
	switch strings.ToUpper(fields[0]) {
	case "CONSTANT":
		if len(fields) != 2 {
			return controlRecord{}, fmt.Errorf("CONSTANT record %q wants exactly one value", line)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return controlRecord{}, fmt.Errorf("CONSTANT value %q: %w", fields[1], err)
		}
		return controlRecord{Constant: true, Value: v}, nil
	case "INTERNAL":
		if len(fields) != 4 {
			return controlRecord{}, fmt.Errorf("INTERNAL record %q wants multiplier, format, print flag", line)
		}
		mult, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return controlRecord{}, fmt.Errorf("INTERNAL multiplier %q: %w", fields[1], err)
		}
		format, err := ParseFormat(fields[2])
		if err != nil {
			return controlRecord{}, err
		}
		iprn, err := strconv.Atoi(fields[3])
		if err != nil {
			return controlRecord{}, fmt.Errorf("INTERNAL print flag %q: %w", fields[3], err)
		}
		return controlRecord{Value: mult, Format: format, IPRN: iprn}, nil
	default:
		return controlRecord{}, fmt.Errorf("unrecognised array control record %q", line)
	}
}

func (c controlRecord) render() string {
	if c.Constant {
		return "CONSTANT  " + formatScalar(c.Value)
	}
	return fmt.Sprintf("INTERNAL  %s  %s  %d", formatScalar(c.Value), c.Format, c.IPRN)
}

// formatScalar renders a float the shortest way that parses back exactly.
func formatScalar(v float64) string {
	return strconv.FormatFloat(v, 'G', -1, 64)
}
