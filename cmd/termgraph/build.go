package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the graph and report its statistics",
	Long: `Build the graph view from the configured dataset and report node and
edge counts, dangling edges, and how many terms fell back to placeholder
tooltip text.

Examples:
  termgraph build --dataset glossary.json
  termgraph build --dataset glossary.json --metadata ./terms --human`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	logger := mustNewLogger(cfg)
	defer logger.Sync()

	v := mustLoadView(cmd.Context(), cfg, logger, nil)

	resp := BuildResponse{
		ID:       v.ID(),
		Stats:    v.Graph().Stats(),
		Metadata: newMetadataReport(v.Report()),
	}
	for _, entry := range v.Scene().Legend {
		resp.Legend = append(resp.Legend, entry.Category)
	}

	if !humanOutput {
		return outputJSON(resp)
	}

	Heading.Println("Glossary graph")
	printStatsHuman(resp.Stats)
	printMetadataHuman(resp.Metadata)
	if len(resp.Legend) > 0 {
		outputHuman("%s %s\n", Subtle.Sprint("Categories: "), truncateList(resp.Legend, 8))
	}
	return nil
}
