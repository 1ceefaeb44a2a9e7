package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"mfrun/internal/domain"
)

func budgetCmd() *cobra.Command {
	var record string
	var totim float64
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "List budget records, or print one record at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context()
			reader, err := openReader(ctx)
			if err != nil {
				return err
			}
			if record == "" {
				names, err := reader.RecordNames()
				if err != nil {
					return err
				}
				times, err := reader.Times(domain.ArtifactBudget)
				if err != nil {
					return err
				}
				fmt.Printf("Budget records (%d):\n", len(names))
				for _, n := range names {
					fmt.Printf("  %s\n", n)
				}
				fmt.Printf("Times (%d):\n", len(times))
				for _, t := range times {
					fmt.Printf("  %g\n", t)
				}
				return nil
			}
			rec, err := reader.Record(record, totim)
			if err != nil {
				return err
			}
			fmt.Printf("%s at t=%g\n", rec.Name, rec.Time)
			if rec.Array != nil {
				for k, layer := range rec.Array {
					fmt.Printf("Layer %d:\n", k+1)
					printLayer(layer)
				}
				return nil
			}
			for _, c := range rec.Cells {
				fmt.Printf("  node %6d  %14.6g", c.Node, c.Value)
				for _, a := range c.Aux {
					fmt.Printf("  %14.6g", a)
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&record, "record", "r", "", "budget record name, e.g. \"FLOW RIGHT FACE\"")
	cmd.Flags().Float64VarP(&totim, "time", "t", 0, "output time (TOTIM)")
	return cmd
}
