package modflow

import (
	"bufio"
	"os"
	"strings"
)

// Markers the solver prints into its listing. Convergence is confirmed only
// when the normal-termination line is present and the failure line is not.
const (
	normalTerminationMarker = "Normal termination of simulation"
	convergenceFailMarker   = "FAILED TO MEET SOLVER CONVERGENCE CRITERIA"
)

// ScanListing reads a listing file and reports whether it confirms
// convergence.
func ScanListing(path string) (converged bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var sawNormal, sawFailure bool
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		ln := sc.Text()
		if strings.Contains(ln, normalTerminationMarker) {
			sawNormal = true
		}
		if strings.Contains(ln, convergenceFailMarker) {
			sawFailure = true
		}
	}
	if err := sc.Err(); err != nil {
		return false, err
	}
	return sawNormal && !sawFailure, nil
}
