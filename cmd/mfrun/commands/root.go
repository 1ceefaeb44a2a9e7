package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mfrun/internal/app"
	"mfrun/internal/domain"
)

var (
	workspaceDir string
	modelName    string
	solverPath   string
	logLevel     string
	logFormat    string

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "mfrun",
		Short: "Drive a MODFLOW-style groundwater solver over a model workspace",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; flags win over it
			for _, p := range []string{".env", ".mfrun.env"} {
				if err := godotenv.Load(p); err == nil {
					break
				}
			}
			cfg := app.Config{
				WorkspaceDir: workspaceDir,
				ModelName:    modelName,
				SolverPath:   solverPath,
				LogLevel:     logLevel,
				LogFormat:    logFormat,
			}.FromEnv()
			if cfg.WorkspaceDir == "" || cfg.ModelName == "" {
				return fmt.Errorf("workspace and model name required (--workspace, --name, or MFRUN_WORKSPACE/MFRUN_NAME)")
			}
			var err error
			wire, err = app.NewWire(cfg)
			return err
		},
	}

	root.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", "", "model directory")
	root.PersistentFlags().StringVarP(&modelName, "name", "n", "", "base model name (the name file is <name>.nam)")
	root.PersistentFlags().StringVar(&solverPath, "solver", "", "solver executable (default mf2005)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(checkCmd(), loadCmd(), runCmd(), headsCmd(), budgetCmd(), obsCmd(), sfrCmd())
	return root.Execute()
}

// resolve runs the workspace stage for subcommands.
func resolve(ctx context.Context) (domain.Workspace, error) {
	cfg := app.Config{WorkspaceDir: workspaceDir, ModelName: modelName}.FromEnv()
	return wire.Resolver.Resolve(ctx, cfg.WorkspaceDir, cfg.ModelName)
}
