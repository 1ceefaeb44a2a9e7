package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Resolve the workspace and report its contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context()
			ws, err := resolve(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Workspace: %s (model %s)\n", ws.Dir, ws.Name)
			fmt.Printf("Name file: %s\n", ws.NameFile)
			fmt.Printf("Files (%d):\n", len(ws.Files))
			for _, f := range ws.Files {
				fmt.Printf("  %s\n", f)
			}
			for _, d := range ws.Subdirs {
				fmt.Printf("  %s/\n", d)
			}
			if len(ws.Outputs) == 0 {
				fmt.Println("No output artifacts yet (expected before a run).")
			} else {
				fmt.Printf("Existing outputs (%d):\n", len(ws.Outputs))
				for kind, fp := range ws.Outputs {
					fmt.Printf("  %-13s %s\n", kind, fp)
				}
			}
			return nil
		},
	}
}
