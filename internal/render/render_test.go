package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/matsen/termgraph/internal/interact"
	"github.com/matsen/termgraph/internal/term"
	"github.com/matsen/termgraph/internal/viz"
)

func placedGraph() *viz.Graph {
	g := viz.Build([]term.Record{
		{ID: "ai", Name: "AI", Children: []string{"ml", "ghost"}, Featured: true},
		{ID: "ml", Name: "Machine Learning", Children: []string{"dl"}, Categories: []string{"learning"}},
		{ID: "dl", Name: "Deep <Learning>", Categories: []string{"learning", "neural"}},
		{ID: "kb", Name: "Knowledge Base", Categories: []string{"reasoning"}},
	})
	g.AssignRadii(12, 40)
	g.Place(map[string]viz.Point{
		"ai": {X: 100, Y: 100},
		"ml": {X: 300, Y: 100},
		"dl": {X: 300, Y: 300},
		"kb": {X: 100, Y: 300},
	})
	g.Describe(func(name string) (string, string) {
		if name == "AI" {
			return "Artificial Intelligence", "Machines that think."
		}
		return "", ""
	})
	return g
}

func TestBuildScene(t *testing.T) {
	g := placedGraph()
	scene, err := BuildScene(g, DefaultOptions(960, 720))
	if err != nil {
		t.Fatalf("BuildScene() error = %v", err)
	}

	if len(scene.Circles) != 4 {
		t.Errorf("got %d circles, want 4", len(scene.Circles))
	}
	if len(scene.Labels) != 4 {
		t.Errorf("got %d labels, want 4", len(scene.Labels))
	}
	// ai->ghost is dangling
	if len(scene.Lines) != 2 {
		t.Errorf("got %d lines, want 2", len(scene.Lines))
	}
	for _, l := range scene.Lines {
		if l.Target == "ghost" {
			t.Error("dangling edge should not be drawn")
		}
	}

	for _, c := range scene.Circles {
		want := DefaultNodeFill
		if c.ID == "ai" {
			want = DefaultFeaturedFill
		}
		if c.Fill != want {
			t.Errorf("circle %s fill = %s, want %s", c.ID, c.Fill, want)
		}
	}

	for i, l := range scene.Labels {
		c := scene.Circles[i]
		if l.X != c.CX {
			t.Errorf("label %s x = %v, want centered at %v", l.ID, l.X, c.CX)
		}
		if l.Y <= c.CY+c.R {
			t.Errorf("label %s y = %v, want below circle bottom %v", l.ID, l.Y, c.CY+c.R)
		}
		if l.FontSize < MinFontSize {
			t.Errorf("label %s font size %v below minimum", l.ID, l.FontSize)
		}
	}

	if scene.Stats.Nodes != 4 || scene.Stats.Edges != 3 {
		t.Errorf("stats = %+v, want 4 nodes 3 edges", scene.Stats)
	}
}

func TestBuildScene_LineIndexMatchesEdge(t *testing.T) {
	g := placedGraph()
	scene, err := BuildScene(g, DefaultOptions(960, 720))
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range scene.Lines {
		e := g.Edges[l.Edge]
		if e.Source != l.Source || e.Target != l.Target {
			t.Errorf("line %d is %s->%s but edge is %s->%s", l.Edge, l.Source, l.Target, e.Source, e.Target)
		}
	}
}

func TestBuildScene_CategoryColors(t *testing.T) {
	opts := DefaultOptions(960, 720)
	opts.ColorByCategory = true

	scene, err := BuildScene(placedGraph(), opts)
	if err != nil {
		t.Fatal(err)
	}

	wantLegend := []LegendEntry{
		{Category: "learning", Color: Palette[0]},
		{Category: "reasoning", Color: Palette[1]},
	}
	if len(scene.Legend) != len(wantLegend) {
		t.Fatalf("legend = %+v, want %+v", scene.Legend, wantLegend)
	}
	for i, want := range wantLegend {
		if scene.Legend[i] != want {
			t.Errorf("legend[%d] = %+v, want %+v", i, scene.Legend[i], want)
		}
	}

	fills := make(map[string]string)
	for _, c := range scene.Circles {
		fills[c.ID] = c.Fill
	}
	if fills["ai"] != DefaultFeaturedFill {
		t.Errorf("featured fill = %s, want %s", fills["ai"], DefaultFeaturedFill)
	}
	if fills["ml"] != Palette[0] || fills["dl"] != Palette[0] || fills["kb"] != Palette[1] {
		t.Errorf("category fills = %v", fills)
	}
}

func TestBuildScene_Errors(t *testing.T) {
	if _, err := BuildScene(nil, DefaultOptions(960, 720)); !errors.Is(err, ErrNilGraph) {
		t.Errorf("BuildScene(nil) error = %v, want ErrNilGraph", err)
	}
	if _, err := BuildScene(placedGraph(), DefaultOptions(0, 720)); err == nil {
		t.Error("BuildScene with zero width should fail")
	}
}

func TestBuildScene_UnplacedSkipped(t *testing.T) {
	g := viz.Build([]term.Record{{ID: "a", Name: "A", Children: []string{"b"}}, {ID: "b", Name: "B"}})
	g.Place(map[string]viz.Point{"a": {X: 1, Y: 1}})

	scene, err := BuildScene(g, DefaultOptions(100, 100))
	if err != nil {
		t.Fatal(err)
	}
	if len(scene.Circles) != 1 || len(scene.Lines) != 0 {
		t.Errorf("got %d circles and %d lines, want 1 and 0", len(scene.Circles), len(scene.Lines))
	}
}

func TestWriteSVG(t *testing.T) {
	scene, err := BuildScene(placedGraph(), DefaultOptions(960, 720))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteSVG(&buf, scene); err != nil {
		t.Fatalf("WriteSVG() error = %v", err)
	}
	svg := buf.String()

	if got := strings.Count(svg, `<g class="viewport">`); got != 1 {
		t.Errorf("got %d viewport groups, want 1", got)
	}
	if got := strings.Count(svg, "<circle "); got != 4 {
		t.Errorf("got %d circles, want 4", got)
	}
	if got := strings.Count(svg, "<line "); got != 2 {
		t.Errorf("got %d lines, want 2", got)
	}
	if !strings.Contains(svg, `viewBox="0 0 960 720"`) {
		t.Error("missing viewBox")
	}
	if strings.Contains(svg, "Deep <Learning>") {
		t.Error("label text not escaped")
	}
	if !strings.Contains(svg, "Deep &lt;Learning&gt;") {
		t.Error("escaped label missing")
	}

	if err := WriteSVG(&buf, nil); err == nil {
		t.Error("WriteSVG(nil) should fail")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{100, "100"},
		{12.5, "12.5"},
		{1.23456, "1.23"},
		{-0.001, "0"},
		{-3.1, "-3.1"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

var dataPattern = regexp.MustCompile(`const data = (\{.*\});`)

func TestGenerateHTML(t *testing.T) {
	g := placedGraph()
	scene, err := BuildScene(g, DefaultOptions(960, 720))
	if err != nil {
		t.Fatal(err)
	}

	html, err := GenerateHTML(Page{ID: "termgraph-1234", Graph: g, Scene: scene}, DefaultHTMLOptions())
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}

	checks := []string{
		`<!DOCTYPE html>`,
		`id="termgraph-1234"`,
		`id="termgraph-1234-canvas"`,
		`id="termgraph-1234-tooltip"`,
		`id="termgraph-1234-search"`,
		`<g class="viewport">`,
		`Nodes: 4 | Connections: 3`,
		`evt.stopPropagation()`,
	}
	for _, want := range checks {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}

	m := dataPattern.FindStringSubmatch(html)
	if m == nil {
		t.Fatal("embedded data not found")
	}
	var data pageData
	if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
		t.Fatalf("embedded data is not JSON: %v", err)
	}

	if data.Behavior.MinZoom != 0.1 || data.Behavior.MaxZoom != 10 || data.Behavior.InitialZoom != 0.75 {
		t.Errorf("zoom = %+v", data.Behavior)
	}
	if data.Behavior.FadeInMS != 200 || data.Behavior.FadeOutMS != 500 {
		t.Errorf("fades = %d/%d ms, want 200/500", data.Behavior.FadeInMS, data.Behavior.FadeOutMS)
	}
	if data.Behavior.OffsetX != 10 || data.Behavior.OffsetY != -10 {
		t.Errorf("offset = %v,%v, want 10,-10", data.Behavior.OffsetX, data.Behavior.OffsetY)
	}

	if tt := data.Tooltips["ai"]; tt.Title != "Artificial Intelligence" || tt.Summary != "Machines that think." {
		t.Errorf("tooltip ai = %+v", tt)
	}
	if tt := data.Tooltips["kb"]; tt.Title != "Knowledge Base" || tt.Summary != viz.FallbackSummary {
		t.Errorf("tooltip kb = %+v, want fallbacks", tt)
	}

	// Focus on ml: ai (parent) and dl (child) stay lit, kb dims.
	ml := data.States["ml"]
	lit := make(map[string]bool)
	for _, id := range ml.Nodes {
		lit[id] = true
	}
	if !lit["ml"] || !lit["ai"] || !lit["dl"] || lit["kb"] {
		t.Errorf("ml focus lights %v", ml.Nodes)
	}
	if len(ml.Edges) != 2 {
		t.Errorf("ml focus highlights edges %v, want 2", ml.Edges)
	}
	for _, i := range ml.Edges {
		e := g.Edges[i]
		if e.Source != "ml" && e.Target != "ml" {
			t.Errorf("edge %d (%s->%s) highlighted but does not touch ml", i, e.Source, e.Target)
		}
	}

	if data.Style.DimOpacity != interact.DimOpacity || data.Style.HighlightEdgeColor != interact.HighlightEdgeColor {
		t.Errorf("style = %+v", data.Style)
	}
}

func TestGenerateHTML_Empty(t *testing.T) {
	g := viz.Build(nil)
	scene, err := BuildScene(g, DefaultOptions(960, 720))
	if err != nil {
		t.Fatal(err)
	}

	html, err := GenerateHTML(Page{Graph: g, Scene: scene}, DefaultHTMLOptions())
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}
	if !strings.Contains(html, "No graph data") {
		t.Error("empty graph should produce empty-state page")
	}
	if strings.Contains(html, "<svg") {
		t.Error("empty-state page should not contain a canvas")
	}
}

func TestGenerateHTML_Options(t *testing.T) {
	g := placedGraph()
	scene, err := BuildScene(g, DefaultOptions(960, 720))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		modify  func(*HTMLOptions)
		wantErr bool
	}{
		{"defaults", func(o *HTMLOptions) {}, false},
		{"zero min zoom", func(o *HTMLOptions) { o.MinZoom = 0 }, true},
		{"inverted range", func(o *HTMLOptions) { o.MaxZoom = 0.05 }, true},
		{"initial outside range", func(o *HTMLOptions) { o.InitialZoom = 20 }, true},
		{"negative fade", func(o *HTMLOptions) { o.FadeIn = -1 }, true},
		{"no search", func(o *HTMLOptions) { o.ShowSearch = false }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultHTMLOptions()
			tt.modify(&opts)
			_, err := GenerateHTML(Page{Graph: g, Scene: scene}, opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("GenerateHTML() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := GenerateHTML(Page{}, DefaultHTMLOptions()); !errors.Is(err, ErrNilGraph) {
		t.Errorf("GenerateHTML(no graph) error = %v, want ErrNilGraph", err)
	}
}
