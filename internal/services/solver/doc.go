// Package solver serializes a deck and invokes the external solver binary.
//
// The solver runs with the workspace as its working directory and the name
// file as its argument; its combined output is captured in order. A run is
// successful only when the process exits normally and the listing file
// confirms convergence. Solver output is never discarded: the captured log
// lines stay on the RunResult whatever the outcome.
package solver
