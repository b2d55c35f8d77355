package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/matsen/termgraph/internal/metadata"
	"github.com/matsen/termgraph/internal/viz"
)

// Human output colors
var (
	Heading = color.New(color.FgHiGreen, color.Bold)
	Subtle  = color.New(color.FgHiBlack)
	Warn    = color.New(color.FgYellow)
	Good    = color.New(color.FgGreen)
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("error:"), msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// BuildResponse is the response for the build command.
type BuildResponse struct {
	ID       string         `json:"id"`
	Stats    viz.Stats      `json:"stats"`
	Metadata MetadataReport `json:"metadata"`
	Legend   []string       `json:"categories,omitempty"`
}

// MetadataReport summarizes metadata loading, naming the terms that fell back.
type MetadataReport struct {
	Loaded    int      `json:"loaded"`
	Failed    int      `json:"failed"`
	Fallbacks []string `json:"fallbacks,omitempty"`
}

// newMetadataReport converts a loader report with sorted fallback names.
func newMetadataReport(r metadata.Report) MetadataReport {
	out := MetadataReport{Loaded: r.Loaded, Failed: r.Failed}
	for name := range r.Failures {
		out.Fallbacks = append(out.Fallbacks, name)
	}
	sort.Strings(out.Fallbacks)
	return out
}

// NodePosition is one node in the layout command's output.
type NodePosition struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Radius          float64 `json:"radius"`
	ConnectionCount int     `json:"connectionCount"`
}

// NeighborsResponse is the response for the neighbors command.
type NeighborsResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Neighbors []string `json:"neighbors"`
}

// printStatsHuman prints graph statistics.
func printStatsHuman(s viz.Stats) {
	outputHuman("%s %d\n", Subtle.Sprint("Nodes:      "), s.Nodes)
	outputHuman("%s %d\n", Subtle.Sprint("Connections:"), s.Edges)
	if s.Featured > 0 {
		outputHuman("%s %d\n", Subtle.Sprint("Featured:   "), s.Featured)
	}
	if s.Dangling > 0 {
		outputHuman("%s %s\n", Subtle.Sprint("Dangling:   "), Warn.Sprintf("%d (not drawn)", s.Dangling))
	}
}

// printMetadataHuman prints the metadata load summary.
func printMetadataHuman(r MetadataReport) {
	loaded := Good.Sprintf("%d loaded", r.Loaded)
	if r.Failed == 0 {
		outputHuman("%s %s\n", Subtle.Sprint("Metadata:   "), loaded)
		return
	}
	outputHuman("%s %s, %s\n", Subtle.Sprint("Metadata:   "), loaded, Warn.Sprintf("%d using fallback text", r.Failed))
	outputHuman("  %s\n", Subtle.Sprint(truncateList(r.Fallbacks, 8)))
}

// truncateList joins at most max items, noting how many were left out.
func truncateList(items []string, max int) string {
	if len(items) <= max {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s, ... (%d more)", strings.Join(items[:max], ", "), len(items)-max)
}

// formatPoint formats a coordinate pair with one decimal.
func formatPoint(x, y float64) string {
	return fmt.Sprintf("(%.1f, %.1f)", x, y)
}
