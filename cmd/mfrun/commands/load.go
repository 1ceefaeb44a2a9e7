package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mfrun/internal/domain"
	"mfrun/internal/modflow"
	decksvc "mfrun/internal/services/deck"
)

// load [--fix PKG:ARRAY:(nFw.d)]...: load the deck, applying explicit array
// formats before parsing the packages they name.
func loadCmd() *cobra.Command {
	var fixes []string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the input deck and report grid and package facts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := wire.Context()
			ws, err := resolve(ctx)
			if err != nil {
				return err
			}
			deck, err := loadWithFixes(ctx, ws, fixes)
			if err != nil {
				if amb, ok := decksvc.IsFormatAmbiguity(err); ok {
					return fmt.Errorf("%w\n(hint: retry with --fix %s:%s:(10F10.4) or the file's actual layout)",
						err, amb.Package, amb.Array)
				}
				return err
			}
			reportDeck(deck)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&fixes, "fix", nil, "explicit array format PKG:ARRAY:(nFw.d), repeatable")
	return cmd
}

// loadWithFixes loads the deck; parsed fixes are applied up front so the
// corrective formats take effect on first parse, and again on a reload if
// the first pass surfaced the ambiguity before the fix's package.
func loadWithFixes(ctx context.Context, ws domain.Workspace, fixes []string) (*domain.ModelDeck, error) {
	deck, err := wire.Loader.Load(ctx, ws)
	if err == nil && len(fixes) == 0 {
		return deck, nil
	}
	if deck == nil {
		return nil, err
	}
	if len(fixes) == 0 {
		return deck, err
	}
	for _, fx := range fixes {
		pkg, array, format, perr := parseFix(fx)
		if perr != nil {
			return nil, perr
		}
		if serr := wire.Loader.SetArrayFormat(deck, pkg, array, format); serr != nil {
			return nil, serr
		}
		if rerr := wire.Loader.ReloadPackage(ctx, ws, deck, pkg); rerr != nil {
			return nil, rerr
		}
	}
	// packages that failed before the fix landed are still bare; bring them in
	for _, p := range deck.Packages {
		if p.Dis == nil && p.Arrays == nil && p.Periods == nil && p.Lines == nil {
			if rerr := wire.Loader.ReloadPackage(ctx, ws, deck, p.Type); rerr != nil {
				return nil, rerr
			}
		}
	}
	return deck, nil
}

func parseFix(s string) (pkg, array string, format domain.FieldFormat, err error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return "", "", domain.FieldFormat{}, fmt.Errorf("fix %q: want PKG:ARRAY:(nFw.d)", s)
	}
	format, err = modflow.ParseFormat(parts[2])
	if err != nil {
		return "", "", domain.FieldFormat{}, fmt.Errorf("fix %q: %w", s, err)
	}
	return strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), format, nil
}

func reportDeck(deck *domain.ModelDeck) {
	if shape, ok := deck.GridShape(); ok {
		fmt.Printf("Grid shape: %s\n", shape)
	}
	if dis, ok := deck.Dis(); ok {
		fmt.Printf("Stress periods: %d\n", dis.Nper)
		for i, sp := range dis.Periods {
			kind := "transient"
			if sp.Steady {
				kind = "steady"
			}
			fmt.Printf("  %2d: length %g, %d steps, %s\n", i, sp.Length, sp.Steps, kind)
		}
	}
	fmt.Printf("Packages (%d):\n", len(deck.Packages))
	for _, p := range deck.Packages {
		fmt.Printf("  %-6s unit %3d  %s\n", p.Type, p.Unit, p.File)
	}
	for _, o := range deck.Outputs {
		fmt.Printf("  %-6s unit %3d  %s (output)\n", o.Type, o.Unit, o.File)
	}
}
