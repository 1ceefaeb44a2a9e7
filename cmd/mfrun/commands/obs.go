package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func obsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "obs",
		Short: "Print simulated-versus-observed head comparisons",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context()
			reader, err := openReader(ctx)
			if err != nil {
				return err
			}
			obs, err := reader.Observations()
			if err != nil {
				return err
			}
			fmt.Printf("%-16s %14s %14s %14s\n", "NAME", "SIMULATED", "OBSERVED", "RESIDUAL")
			for _, o := range obs {
				fmt.Printf("%-16s %14.6g %14.6g %14.6g\n", o.Name, o.Simulated, o.Observed, o.Simulated-o.Observed)
			}
			return nil
		},
	}
}
