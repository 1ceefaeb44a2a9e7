package modflow

import (
	"fmt"
	"strconv"
	"strings"
)

// NameFileEntry is one "FTYPE NUNIT FNAME" line of the name file.
type NameFileEntry struct {
	Type string
	Unit int
	File string
}

// IsOutput reports whether the entry binds an output file rather than an
// input package: the listing and any DATA/DATA(BINARY) unit.
func (e NameFileEntry) IsOutput() bool {
	return e.Type == "LIST" || strings.HasPrefix(e.Type, "DATA")
}

// ParseNameFile reads the name-file manifest. Comment lines ('#') are
// preserved for the rewrite.
func ParseNameFile(data []byte) ([]string, []NameFileEntry, error) {
	s := newLineScanner(data)
	comments := s.comments()
	var entries []NameFileEntry
	for {
		ln, ok := s.next()
		if !ok {
			break
		}
		if strings.TrimSpace(ln) == "" {
			continue
		}
		fields := strings.Fields(ln)
		if len(fields) < 3 {
			return nil, nil, fmt.Errorf("name file line %d: want FTYPE NUNIT FNAME, got %q", s.lineno(), ln)
		}
		unit, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, nil, fmt.Errorf("name file line %d: bad unit %q", s.lineno(), fields[1])
		}
		entries = append(entries, NameFileEntry{
			Type: strings.ToUpper(fields[0]),
			Unit: unit,
			File: fields[2],
		})
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("name file declares no entries")
	}
	return comments, entries, nil
}

// RenderNameFile writes the manifest back in canonical column alignment.
func RenderNameFile(comments []string, entries []NameFileEntry) []byte {
	var b strings.Builder
	for _, c := range comments {
		b.WriteString(c)
		b.WriteByte('\n')
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "%-14s %3d  %s\n", e.Type, e.Unit, e.File)
	}
	return []byte(b.String())
}
