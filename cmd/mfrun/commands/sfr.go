package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func sfrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sfr",
		Short: "Print streamflow-routing reach records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context()
			reader, err := openReader(ctx)
			if err != nil {
				return err
			}
			reaches, err := reader.Streamflow()
			if err != nil {
				return err
			}
			fmt.Printf("%3s %3s %3s %4s %5s %12s %12s %10s %8s %8s\n",
				"LAY", "ROW", "COL", "SEG", "REACH", "FLOW IN", "FLOW OUT", "STAGE", "DEPTH", "WIDTH")
			for _, r := range reaches {
				fmt.Printf("%3d %3d %3d %4d %5d %12.4g %12.4g %10.4g %8.4g %8.4g\n",
					r.Layer, r.Row, r.Col, r.Segment, r.Reach, r.FlowIn, r.FlowOut, r.Stage, r.Depth, r.Width)
			}
			return nil
		},
	}
}
