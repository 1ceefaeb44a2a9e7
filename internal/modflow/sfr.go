package modflow

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"mfrun/internal/domain"
)

// ReadStreamflow reads a streamflow-routing output table: header lines, then
// one row per reach with LAYER ROW COL SEG REACH FLOW-IN FLOW-OUT STAGE
// DEPTH WIDTH.
func ReadStreamflow(path string) ([]domain.StreamflowRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := newLineScanner(data)
	var out []domain.StreamflowRecord
	for {
		ln, ok := s.next()
		if !ok {
			break
		}
		t := strings.TrimSpace(ln)
		if t == "" || !startsWithDigit(t) {
			continue
		}
		fields := strings.Fields(t)
		if len(fields) < 10 {
			return nil, fmt.Errorf("streamflow line %d: want 10 columns, got %q", s.lineno(), ln)
		}
		ints := make([]int, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, fmt.Errorf("streamflow line %d: bad integer %q", s.lineno(), fields[i])
			}
			ints[i] = v
		}
		floats := make([]float64, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(fields[5+i], 64)
			if err != nil {
				return nil, fmt.Errorf("streamflow line %d: bad value %q", s.lineno(), fields[5+i])
			}
			floats[i] = v
		}
		out = append(out, domain.StreamflowRecord{
			Layer: ints[0], Row: ints[1], Col: ints[2], Segment: ints[3], Reach: ints[4],
			FlowIn: floats[0], FlowOut: floats[1], Stage: floats[2], Depth: floats[3], Width: floats[4],
		})
	}
	return out, nil
}

func startsWithDigit(s string) bool {
	return s[0] >= '0' && s[0] <= '9'
}
