package modflow

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"mfrun/internal/domain"
)

// cbcHeader is the record header of a cell-by-cell budget file.
type cbcHeader struct {
	KSTP, KPER          int32
	TEXT                [16]byte
	NDIM1               int32 // NCOL
	NDIM2               int32 // NROW
	NDIM3               int32 // NLAY
	IMETH               int32
	DELT, PERTIM, TOTIM float64
}

// cbcAuxHeader precedes an IMETH=6 list body.
type cbcAuxHeader struct {
	TXT1ID1, TXT2ID1, TXT1ID2, TXT2ID2 [16]byte
	NDAT                               int32
}

// BudgetEntry locates one named record at one time within the budget file.
type BudgetEntry struct {
	Name   string
	Time   float64
	IMeth  int
	Ncol   int
	Nrow   int
	Nlay   int
	Offset int64 // where the record body starts
}

// BudgetIndex is the header scan of a budget file.
type BudgetIndex struct {
	Names   []string  // sorted, unique, upper-cased
	Times   []float64 // ascending, unique
	entries []BudgetEntry
}

// BuildBudgetIndex scans record headers, skipping each body by its declared
// size.
func BuildBudgetIndex(path string) (*BudgetIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ix := &BudgetIndex{}
	names := make(map[string]bool)
	times := make(map[float64]bool)
	for {
		var h cbcHeader
		err := binary.Read(f, binary.LittleEndian, &h)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record header: %w", err)
		}
		off, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		e := BudgetEntry{
			Name:   strings.ToUpper(strings.TrimSpace(string(h.TEXT[:]))),
			Time:   h.TOTIM,
			IMeth:  int(h.IMETH),
			Ncol:   int(h.NDIM1),
			Nrow:   int(h.NDIM2),
			Nlay:   abs(int(h.NDIM3)),
			Offset: off,
		}
		switch h.IMETH {
		case 1:
			n := int64(e.Ncol) * int64(e.Nrow) * int64(e.Nlay)
			if _, err := f.Seek(n*8, io.SeekCurrent); err != nil {
				return nil, err
			}
		case 6:
			if err := skipListBody(f); err != nil {
				return nil, fmt.Errorf("record %s: %w", e.Name, err)
			}
		default:
			return nil, fmt.Errorf("record %s: IMETH=%d not supported", e.Name, h.IMETH)
		}
		ix.entries = append(ix.entries, e)
		if !names[e.Name] {
			names[e.Name] = true
			ix.Names = append(ix.Names, e.Name)
		}
		if !times[e.Time] {
			times[e.Time] = true
			ix.Times = append(ix.Times, e.Time)
		}
	}
	sort.Strings(ix.Names)
	sort.Float64s(ix.Times)
	return ix, nil
}

func skipListBody(f *os.File) error {
	var aux cbcAuxHeader
	if err := binary.Read(f, binary.LittleEndian, &aux); err != nil {
		return err
	}
	if aux.NDAT < 1 {
		return fmt.Errorf("NDAT=%d", aux.NDAT)
	}
	// NDAT-1 auxiliary labels of 16 bytes each
	if _, err := f.Seek(int64(aux.NDAT-1)*16, io.SeekCurrent); err != nil {
		return err
	}
	var nlist int32
	if err := binary.Read(f, binary.LittleEndian, &nlist); err != nil {
		return err
	}
	// each list item: ID1, ID2 int32 + NDAT float64 values
	if _, err := f.Seek(int64(nlist)*(8+int64(aux.NDAT)*8), io.SeekCurrent); err != nil {
		return err
	}
	return nil
}

// CanonicalRecordName normalizes a record name the way the on-disk TEXT
// field is normalized: trimmed and upper-cased.
func CanonicalRecordName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// HasTime reports whether t is among the file's declared times.
func (ix *BudgetIndex) HasTime(t float64) bool {
	for _, v := range ix.Times {
		if v == t {
			return true
		}
	}
	return false
}

// HasName reports whether the upper-cased name appears in the file.
func (ix *BudgetIndex) HasName(name string) bool {
	for _, v := range ix.Names {
		if v == name {
			return true
		}
	}
	return false
}

// Find locates the entry for a record name (upper-cased) at a time.
func (ix *BudgetIndex) Find(name string, t float64) (BudgetEntry, bool) {
	for _, e := range ix.entries {
		if e.Name == name && e.Time == t {
			return e, true
		}
	}
	return BudgetEntry{}, false
}

// ReadBudgetRecord reads one record body. The file is opened, read and
// closed within the call.
func ReadBudgetRecord(path string, e BudgetEntry) (*domain.BudgetRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(e.Offset, io.SeekStart); err != nil {
		return nil, err
	}
	rec := &domain.BudgetRecord{Name: e.Name, Time: e.Time}
	switch e.IMeth {
	case 1:
		flat := make([]float64, e.Ncol*e.Nrow*e.Nlay)
		if err := binary.Read(f, binary.LittleEndian, flat); err != nil {
			return nil, fmt.Errorf("record %s at t=%g: %w", e.Name, e.Time, err)
		}
		rec.Array = reshape3(flat, e.Nlay, e.Nrow, e.Ncol)
	case 6:
		cells, err := readListBody(f)
		if err != nil {
			return nil, fmt.Errorf("record %s at t=%g: %w", e.Name, e.Time, err)
		}
		rec.Cells = cells
	default:
		return nil, fmt.Errorf("record %s: IMETH=%d not supported", e.Name, e.IMeth)
	}
	return rec, nil
}

func readListBody(f *os.File) ([]domain.BudgetCell, error) {
	var aux cbcAuxHeader
	if err := binary.Read(f, binary.LittleEndian, &aux); err != nil {
		return nil, err
	}
	if _, err := f.Seek(int64(aux.NDAT-1)*16, io.SeekCurrent); err != nil {
		return nil, err
	}
	var nlist int32
	if err := binary.Read(f, binary.LittleEndian, &nlist); err != nil {
		return nil, err
	}
	cells := make([]domain.BudgetCell, 0, nlist)
	for i := int32(0); i < nlist; i++ {
		var id1, id2 int32
		if err := binary.Read(f, binary.LittleEndian, &id1); err != nil {
			return nil, err
		}
		if err := binary.Read(f, binary.LittleEndian, &id2); err != nil {
			return nil, err
		}
		vals := make([]float64, aux.NDAT)
		if err := binary.Read(f, binary.LittleEndian, vals); err != nil {
			return nil, err
		}
		cell := domain.BudgetCell{Node: int(id1), Value: vals[0]}
		if len(vals) > 1 {
			cell.Aux = vals[1:]
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

func reshape3(flat []float64, nlay, nrow, ncol int) [][][]float64 {
	out := make([][][]float64, nlay)
	for k := 0; k < nlay; k++ {
		out[k] = make([][]float64, nrow)
		for i := 0; i < nrow; i++ {
			start := k*nrow*ncol + i*ncol
			out[k][i] = flat[start : start+ncol]
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
