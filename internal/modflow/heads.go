package modflow

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// dvarHeader is the record header of a dependent-variable output file
// (heads, drawdown): one record per layer per time step.
type dvarHeader struct {
	KSTP, KPER    int32
	PERTIM, TOTIM float64
	TEXT          [16]byte
	NCOL, NROW    int32
	ILAY          int32
}

// DvarEntry locates one layer's array within the file.
type DvarEntry struct {
	Step   int
	Period int
	Time   float64
	Label  string
	Layer  int // 1-based
	Rows   int
	Cols   int
	Offset int64 // where the data values start
}

// DvarIndex is the header scan of a dependent-variable file: every record's
// location, without its data.
type DvarIndex struct {
	Times   []float64 // ascending, unique
	entries map[float64][]DvarEntry
}

// BuildDvarIndex scans record headers, seeking past the data of each, so
// indexing cost is independent of array size.
func BuildDvarIndex(path string) (*DvarIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ix := &DvarIndex{entries: make(map[float64][]DvarEntry)}
	for {
		var h dvarHeader
		err := binary.Read(f, binary.LittleEndian, &h)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record header: %w", err)
		}
		if h.NCOL <= 0 || h.NROW <= 0 || h.ILAY <= 0 {
			return nil, fmt.Errorf("record header declares non-positive extents (%d, %d, %d)", h.ILAY, h.NROW, h.NCOL)
		}
		off, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		e := DvarEntry{
			Step:   int(h.KSTP),
			Period: int(h.KPER),
			Time:   h.TOTIM,
			Label:  strings.TrimSpace(string(h.TEXT[:])),
			Layer:  int(h.ILAY),
			Rows:   int(h.NROW),
			Cols:   int(h.NCOL),
			Offset: off,
		}
		if _, ok := ix.entries[e.Time]; !ok {
			ix.Times = append(ix.Times, e.Time)
		}
		ix.entries[e.Time] = append(ix.entries[e.Time], e)
		if _, err := f.Seek(int64(h.NROW)*int64(h.NCOL)*8, io.SeekCurrent); err != nil {
			return nil, err
		}
	}
	sort.Float64s(ix.Times)
	for _, es := range ix.entries {
		sort.Slice(es, func(i, j int) bool { return es[i].Layer < es[j].Layer })
	}
	return ix, nil
}

// Has reports whether t is one of the file's declared times.
func (ix *DvarIndex) Has(t float64) bool {
	_, ok := ix.entries[t]
	return ok
}

// Layers returns the per-layer entries at t, ordered by layer.
func (ix *DvarIndex) Layers(t float64) ([]DvarEntry, bool) {
	es, ok := ix.entries[t]
	return es, ok
}

// ReadDvarArray reads one entry's array. The file is opened, read and closed
// within the call.
func ReadDvarArray(path string, e DvarEntry) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(e.Offset, io.SeekStart); err != nil {
		return nil, err
	}
	flat := make([]float64, e.Rows*e.Cols)
	if err := binary.Read(f, binary.LittleEndian, flat); err != nil {
		return nil, fmt.Errorf("read layer %d at t=%g: %w", e.Layer, e.Time, err)
	}
	out := make([][]float64, e.Rows)
	for i := range out {
		out[i] = flat[i*e.Cols : (i+1)*e.Cols]
	}
	return out, nil
}
