package modflow

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"mfrun/internal/domain"
)

// ReadObservations reads a head-observation output file: a header line, then
// "SIMULATED  OBSERVED  OBSNAME" rows.
func ReadObservations(path string) ([]domain.Observation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := newLineScanner(data)
	var out []domain.Observation
	for {
		ln, ok := s.next()
		if !ok {
			break
		}
		t := strings.TrimSpace(ln)
		if t == "" || strings.HasPrefix(t, "\"") || strings.HasPrefix(strings.ToUpper(t), "SIMULATED") {
			continue
		}
		fields := strings.Fields(t)
		if len(fields) < 3 {
			return nil, fmt.Errorf("observation line %d: want SIMULATED OBSERVED OBSNAME, got %q", s.lineno(), ln)
		}
		sim, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("observation line %d: bad simulated value %q", s.lineno(), fields[0])
		}
		obs, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("observation line %d: bad observed value %q", s.lineno(), fields[1])
		}
		out = append(out, domain.Observation{Name: fields[2], Simulated: sim, Observed: obs})
	}
	return out, nil
}
