package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/matsen/termgraph/internal/view"
)

func init() {
	rootCmd.AddCommand(neighborsCmd)
}

var neighborsCmd = &cobra.Command{
	Use:   "neighbors <id>",
	Short: "List the terms adjacent to a term",
	Long: `List the ids of every term directly connected to <id>, in either direction.
These are the terms highlighted when <id> is pinned in the page.

Examples:
  termgraph neighbors ml --dataset glossary.json`,
	Args: cobra.ExactArgs(1),
	RunE: runNeighbors,
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	logger := mustNewLogger(cfg)
	defer logger.Sync()

	v := mustLoadView(cmd.Context(), cfg, logger, nil)

	id := args[0]
	ids, err := v.Neighbors(id)
	if err != nil {
		if errors.Is(err, view.ErrUnknownNode) {
			exitWithError(ExitDataError, "no term with id %q", id)
		}
		return err
	}
	n, _ := v.Graph().Lookup(id)

	if !humanOutput {
		return outputJSON(NeighborsResponse{ID: id, Name: n.Name, Neighbors: ids})
	}

	Heading.Println(n.DisplayTitle())
	if len(ids) == 0 {
		outputHuman("  %s\n", Subtle.Sprint("(no neighbors)"))
		return nil
	}
	for _, nid := range ids {
		m, _ := v.Graph().Lookup(nid)
		outputHuman("  %-24s %s\n", nid, Subtle.Sprint(m.Name))
	}
	return nil
}
