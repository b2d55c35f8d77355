package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var renderOutput string
var renderFormat string

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "html", "Output format: html or svg")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the interactive graph page",
	Long: `Render the glossary graph as a self-contained interactive HTML page, or as
a static SVG of the laid-out scene.

The page supports pan and zoom, hover tooltips with each term's title and
summary, click-to-pin neighborhood highlighting, and a search box.

Examples:
  # Generate HTML to stdout
  termgraph render --dataset glossary.json > graph.html

  # Generate to file
  termgraph render --dataset glossary.json --output graph.html

  # Static SVG
  termgraph render --dataset glossary.json --format svg -o graph.svg`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderFormat != "html" && renderFormat != "svg" {
		exitWithError(ExitError, "invalid format %q (want html or svg)", renderFormat)
	}

	cfg := mustLoadConfig()
	logger := mustNewLogger(cfg)
	defer logger.Sync()

	v := mustLoadView(cmd.Context(), cfg, logger, nil)

	var out []byte
	switch renderFormat {
	case "svg":
		var buf bytes.Buffer
		if err := v.WriteSVG(&buf); err != nil {
			return fmt.Errorf("rendering SVG: %w", err)
		}
		out = buf.Bytes()
	default:
		html, err := v.HTML()
		if err != nil {
			return fmt.Errorf("generating HTML: %w", err)
		}
		out = []byte(html)
	}

	if renderOutput == "" {
		_, err := os.Stdout.Write(out)
		return err
	}

	if err := os.WriteFile(renderOutput, out, 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if !humanOutput {
		return outputJSON(StatusResponse{Status: "written", Path: renderOutput})
	}
	outputHuman("%s written to %s\n", Good.Sprint("Graph"), renderOutput)
	return nil
}
