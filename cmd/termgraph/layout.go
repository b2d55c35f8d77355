package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(layoutCmd)
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Compute node positions",
	Long: `Run the layout engine and print every node's final position, radius and
connection count. Positions are deterministic for a given --seed.

Examples:
  termgraph layout --dataset glossary.json
  termgraph layout --dataset glossary.json --layout circle --human`,
	Args: cobra.NoArgs,
	RunE: runLayout,
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	logger := mustNewLogger(cfg)
	defer logger.Sync()

	v := mustLoadView(cmd.Context(), cfg, logger, nil)

	positions := make([]NodePosition, 0, len(v.Graph().Nodes))
	for _, id := range v.Graph().UniqueIDs() {
		n, _ := v.Graph().Lookup(id)
		if !n.Placed {
			continue
		}
		positions = append(positions, NodePosition{
			ID:              n.ID,
			Name:            n.Name,
			X:               n.X,
			Y:               n.Y,
			Radius:          n.Radius,
			ConnectionCount: n.ConnectionCount,
		})
	}

	if !humanOutput {
		return outputJSON(positions)
	}

	for _, p := range positions {
		outputHuman("%-24s %s %s\n", p.ID, formatPoint(p.X, p.Y), Subtle.Sprintf("r=%.1f children=%d", p.Radius, p.ConnectionCount))
	}
	return nil
}
