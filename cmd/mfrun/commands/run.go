package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mfrun/internal/domain"
)

// run: load the deck, serialize it, and invoke the solver. Loader failures
// stop before the solver starts; solver failures stop before any extraction.
func runCmd() *cobra.Command {
	var fixes []string
	var showLog bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load the deck, run the solver, and report convergence",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context()
			ws, err := resolve(ctx)
			if err != nil {
				return err
			}
			deck, err := loadWithFixes(ctx, ws, fixes)
			if err != nil {
				return err
			}
			res, err := wire.Invoker.Run(ctx, ws, deck)
			if res != nil && (showLog || !res.Success) {
				for _, ln := range res.Log {
					fmt.Println(ln)
				}
			}
			if err != nil {
				if errors.Is(err, domain.ErrNonConvergence) {
					return fmt.Errorf("run finished without convergence (exit %d)", res.ExitCode)
				}
				return err
			}
			fmt.Printf("Run successful: %d artifact(s)\n", len(res.Artifacts))
			for kind, fp := range res.Artifacts {
				fmt.Printf("  %-13s %s\n", kind, fp)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&fixes, "fix", nil, "explicit array format PKG:ARRAY:(nFw.d), repeatable")
	cmd.Flags().BoolVar(&showLog, "show-log", false, "print the solver log even on success")
	return cmd
}
