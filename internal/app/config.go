package app

import "os"

// Config holds runtime wiring options for building the app.
type Config struct {
	WorkspaceDir string // model directory, e.g. ./tutorial2
	ModelName    string // base model name, e.g. tutorial2
	SolverPath   string // solver executable, e.g. mf2005
	LogLevel     string // debug, info, warn, error
	LogFormat    string // text or json
}

// FromEnv fills unset fields from the environment (MFRUN_WORKSPACE,
// MFRUN_NAME, MFRUN_SOLVER), typically loaded from a .env file beforehand.
func (c Config) FromEnv() Config {
	if c.WorkspaceDir == "" {
		c.WorkspaceDir = os.Getenv("MFRUN_WORKSPACE")
	}
	if c.ModelName == "" {
		c.ModelName = os.Getenv("MFRUN_NAME")
	}
	if c.SolverPath == "" {
		c.SolverPath = os.Getenv("MFRUN_SOLVER")
	}
	if c.SolverPath == "" {
		c.SolverPath = "mf2005"
	}
	return c
}
