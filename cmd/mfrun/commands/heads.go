package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mfrun/internal/domain"
	solversvc "mfrun/internal/services/solver"
)

// openReader rebuilds the previous run's result from the workspace and opens
// the artifact reader over it.
func openReader(ctx context.Context) (domain.ArtifactReader, error) {
	ws, err := resolve(ctx)
	if err != nil {
		return nil, err
	}
	res := solversvc.FromWorkspace(ctx, ws)
	return wire.Extractor.Open(res)
}

func headsCmd() *cobra.Command {
	var totim float64
	var layer int
	var drawdown bool
	var listTimes bool
	cmd := &cobra.Command{
		Use:   "heads",
		Short: "Print a head (or drawdown) layer at an output time",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context()
			reader, err := openReader(ctx)
			if err != nil {
				return err
			}
			kind := domain.ArtifactHeads
			if drawdown {
				kind = domain.ArtifactDrawdown
			}
			if listTimes {
				times, err := reader.Times(kind)
				if err != nil {
					return err
				}
				fmt.Printf("Available times (%d):\n", len(times))
				for _, t := range times {
					fmt.Printf("  %g\n", t)
				}
				return nil
			}
			layers, err := reader.Array(kind, totim)
			if err != nil {
				return err
			}
			if layer < 1 || layer > len(layers) {
				return fmt.Errorf("layer %d outside 1..%d", layer, len(layers))
			}
			printLayer(layers[layer-1])
			return nil
		},
	}
	cmd.Flags().Float64VarP(&totim, "time", "t", 0, "output time (TOTIM)")
	cmd.Flags().IntVarP(&layer, "layer", "l", 1, "1-based layer to print")
	cmd.Flags().BoolVar(&drawdown, "drawdown", false, "read the drawdown file instead of heads")
	cmd.Flags().BoolVar(&listTimes, "times", false, "list available times and exit")
	return cmd
}

func printLayer(rows [][]float64) {
	for _, row := range rows {
		for j, v := range row {
			if j > 0 {
				fmt.Print(" ")
			}
			fmt.Printf("%10.4f", v)
		}
		fmt.Println()
	}
}
