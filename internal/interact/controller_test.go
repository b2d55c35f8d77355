package interact

import (
	"testing"

	"github.com/matsen/termgraph/internal/term"
	"github.com/matsen/termgraph/internal/viz"
)

// testGraph: a -> b, a -> c, c -> d, e isolated, a -> ghost dangling.
func testGraph() *viz.Graph {
	return viz.Build([]term.Record{
		{ID: "a", Name: "A", Children: []string{"b", "c", "ghost"}},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C", Children: []string{"d"}},
		{ID: "d", Name: "D"},
		{ID: "e", Name: "E"},
	})
}

func TestController_Transitions(t *testing.T) {
	type step struct {
		action     string
		id         string
		wantMode   Mode
		wantFocus  string
		wantHandle bool
	}

	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "hover then unhover",
			steps: []step{
				{action: "hover", id: "a", wantMode: Neutral, wantFocus: "a"},
				{action: "unhover", wantMode: Neutral, wantFocus: ""},
			},
		},
		{
			name: "click pins, click again unpins",
			steps: []step{
				{action: "click", id: "a", wantMode: Pinned, wantFocus: "a", wantHandle: true},
				{action: "click", id: "a", wantMode: Neutral, wantFocus: "", wantHandle: true},
			},
		},
		{
			name: "click another node moves pin",
			steps: []step{
				{action: "click", id: "a", wantMode: Pinned, wantFocus: "a", wantHandle: true},
				{action: "click", id: "d", wantMode: Pinned, wantFocus: "d", wantHandle: true},
			},
		},
		{
			name: "hover ignored while pinned",
			steps: []step{
				{action: "click", id: "a", wantMode: Pinned, wantFocus: "a", wantHandle: true},
				{action: "hover", id: "e", wantMode: Pinned, wantFocus: "a"},
				{action: "unhover", wantMode: Pinned, wantFocus: "a"},
			},
		},
		{
			name: "background click unpins",
			steps: []step{
				{action: "click", id: "c", wantMode: Pinned, wantFocus: "c", wantHandle: true},
				{action: "background", wantMode: Neutral, wantFocus: ""},
				{action: "hover", id: "b", wantMode: Neutral, wantFocus: "b"},
			},
		},
		{
			name: "background click in neutral clears hover",
			steps: []step{
				{action: "hover", id: "b", wantMode: Neutral, wantFocus: "b"},
				{action: "background", wantMode: Neutral, wantFocus: ""},
			},
		},
		{
			name: "unknown ids ignored",
			steps: []step{
				{action: "hover", id: "ghost", wantMode: Neutral, wantFocus: ""},
				{action: "click", id: "ghost", wantMode: Neutral, wantFocus: "", wantHandle: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(testGraph())
			for i, s := range tt.steps {
				var handled bool
				switch s.action {
				case "hover":
					c.Hover(s.id)
				case "unhover":
					c.Unhover()
				case "click":
					handled = c.ClickNode(s.id)
				case "background":
					c.ClickBackground()
				}

				if got := c.Mode(); got != s.wantMode {
					t.Errorf("step %d (%s %s): mode = %v, want %v", i, s.action, s.id, got, s.wantMode)
				}
				if got := c.Focus(); got != s.wantFocus {
					t.Errorf("step %d (%s %s): focus = %q, want %q", i, s.action, s.id, got, s.wantFocus)
				}
				if s.action == "click" && handled != s.wantHandle {
					t.Errorf("step %d: ClickNode handled = %v, want %v", i, handled, s.wantHandle)
				}
				if got, want := c.HoverEnabled(), s.wantMode == Neutral; got != want {
					t.Errorf("step %d: HoverEnabled = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestController_OnSelect(t *testing.T) {
	c := NewController(testGraph())

	var got []string
	c.OnSelect(func(id string) { got = append(got, id) })

	c.ClickNode("a")
	c.ClickNode("b")
	c.ClickNode("b")
	c.ClickBackground() // already neutral, no callback
	c.ClickNode("c")
	c.ClickBackground()

	want := []string{"a", "b", "", "c", ""}
	if len(got) != len(want) {
		t.Fatalf("OnSelect calls = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCompute_NoFocus(t *testing.T) {
	g := testGraph()
	vs := Compute(g, "")

	for id, s := range vs.Nodes {
		if s.Opacity != FullOpacity || s.Focus {
			t.Errorf("node %s = %+v, want full opacity, no focus", id, s)
		}
	}
	if len(vs.Edges) != len(g.Edges) {
		t.Fatalf("got %d edge styles, want %d", len(vs.Edges), len(g.Edges))
	}
	for _, e := range vs.Edges {
		if e.Opacity != FullOpacity || e.Color != DefaultEdgeColor || e.Width != DefaultEdgeWidth {
			t.Errorf("edge %s->%s = %+v, want default style", e.Source, e.Target, e)
		}
	}
}

func TestCompute_Focus(t *testing.T) {
	vs := Compute(testGraph(), "c")

	wantNodes := map[string]float64{
		"a": FullOpacity, // incoming neighbor
		"b": DimOpacity,
		"c": FullOpacity,
		"d": FullOpacity, // outgoing neighbor
		"e": DimOpacity,
	}
	for id, want := range wantNodes {
		if got := vs.Nodes[id].Opacity; got != want {
			t.Errorf("node %s opacity = %v, want %v", id, got, want)
		}
	}
	if !vs.Nodes["c"].Focus {
		t.Error("focus node should be marked")
	}

	for _, e := range vs.Edges {
		touches := e.Source == "c" || e.Target == "c"
		switch {
		case touches && (e.Color != HighlightEdgeColor || e.Width != HighlightEdgeWidth || e.Opacity != FullOpacity):
			t.Errorf("edge %s->%s = %+v, want highlighted", e.Source, e.Target, e)
		case !touches && (e.Color != DefaultEdgeColor || e.Opacity != DimOpacity):
			t.Errorf("edge %s->%s = %+v, want dimmed default", e.Source, e.Target, e)
		}
	}
}

func TestController_StateMatchesCompute(t *testing.T) {
	g := testGraph()
	c := NewController(g)

	c.Hover("a")
	hovered := c.State()
	c.Unhover()
	c.ClickNode("a")
	pinned := c.State()

	if hovered.Focus != "a" || pinned.Focus != "a" {
		t.Fatalf("focus = %q / %q, want a", hovered.Focus, pinned.Focus)
	}
	if !hovered.HoverEnabled || pinned.HoverEnabled {
		t.Errorf("hoverEnabled = %v / %v, want true / false", hovered.HoverEnabled, pinned.HoverEnabled)
	}
	if pinned.Mode != "pinned" || hovered.Mode != "neutral" {
		t.Errorf("mode = %q / %q", hovered.Mode, pinned.Mode)
	}
	for id, s := range hovered.Nodes {
		if pinned.Nodes[id] != s {
			t.Errorf("node %s: hover %+v differs from pin %+v", id, s, pinned.Nodes[id])
		}
	}

	c.ClickBackground()
	reset := c.State()
	for id, s := range reset.Nodes {
		if s.Opacity != FullOpacity {
			t.Errorf("after reset node %s opacity = %v", id, s.Opacity)
		}
	}
}
