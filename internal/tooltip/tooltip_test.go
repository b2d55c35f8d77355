package tooltip

import (
	"testing"
	"time"

	"github.com/matsen/termgraph/internal/interact"
	"github.com/matsen/termgraph/internal/term"
	"github.com/matsen/termgraph/internal/viz"
)

type fixedGate bool

func (g fixedGate) HoverEnabled() bool { return bool(g) }

func TestPresenter_Show(t *testing.T) {
	tests := []struct {
		name        string
		gate        Gate
		node        *viz.Node
		wantShown   bool
		wantTitle   string
		wantSummary string
	}{
		{
			name:        "with metadata",
			gate:        fixedGate(true),
			node:        &viz.Node{ID: "a", Name: "Alpha", Title: "Alpha Term", Summary: "First letter."},
			wantShown:   true,
			wantTitle:   "Alpha Term",
			wantSummary: "First letter.",
		},
		{
			name:        "fallback text",
			gate:        fixedGate(true),
			node:        &viz.Node{ID: "b", Name: "Beta"},
			wantShown:   true,
			wantTitle:   "Beta",
			wantSummary: viz.FallbackSummary,
		},
		{
			name:        "nil gate allows hover",
			gate:        nil,
			node:        &viz.Node{ID: "c", Name: "Gamma"},
			wantShown:   true,
			wantTitle:   "Gamma",
			wantSummary: viz.FallbackSummary,
		},
		{
			name:      "hover disabled",
			gate:      fixedGate(false),
			node:      &viz.Node{ID: "a", Name: "Alpha"},
			wantShown: false,
		},
		{
			name:      "nil node",
			gate:      fixedGate(true),
			wantShown: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPresenter(tt.gate)
			shown := p.Show(tt.node, viz.Point{X: 100, Y: 200})
			if shown != tt.wantShown {
				t.Fatalf("Show() = %v, want %v", shown, tt.wantShown)
			}

			s := p.State()
			if s.Visible != tt.wantShown {
				t.Errorf("Visible = %v, want %v", s.Visible, tt.wantShown)
			}
			if !tt.wantShown {
				return
			}
			if s.Title != tt.wantTitle || s.Summary != tt.wantSummary {
				t.Errorf("content = %q / %q, want %q / %q", s.Title, s.Summary, tt.wantTitle, tt.wantSummary)
			}
			if want := (viz.Point{X: 110, Y: 190}); s.Position != want {
				t.Errorf("Position = %+v, want %+v", s.Position, want)
			}
			if s.Transition != DefaultFadeIn || s.Opacity != VisibleOpacity {
				t.Errorf("fade = %v at %v, want %v at %v", s.Transition, s.Opacity, DefaultFadeIn, VisibleOpacity)
			}
		})
	}
}

func TestPresenter_MoveAndHide(t *testing.T) {
	p := NewPresenter(nil, WithOffset(viz.Point{X: 5, Y: 5}), WithFades(time.Second, 2*time.Second))

	p.Move(viz.Point{X: 1, Y: 1})
	if s := p.State(); s.Position != (viz.Point{}) {
		t.Errorf("Move while hidden changed position to %+v", s.Position)
	}

	p.Show(&viz.Node{ID: "a", Name: "A"}, viz.Point{X: 0, Y: 0})
	p.Move(viz.Point{X: 20, Y: 30})
	if s := p.State(); s.Position != (viz.Point{X: 25, Y: 35}) {
		t.Errorf("Position after Move = %+v, want {25 35}", s.Position)
	}
	if p.State().Transition != time.Second {
		t.Errorf("fade-in = %v, want 1s", p.State().Transition)
	}

	p.Hide()
	s := p.State()
	if s.Visible || s.Opacity != 0 {
		t.Errorf("after Hide: visible=%v opacity=%v", s.Visible, s.Opacity)
	}
	if s.Transition != 2*time.Second {
		t.Errorf("fade-out = %v, want 2s", s.Transition)
	}
	if s.Title != "A" {
		t.Errorf("content should stay during fade-out, got %q", s.Title)
	}
}

func TestPresenter_FollowsControllerPin(t *testing.T) {
	g := viz.Build([]term.Record{
		{ID: "a", Name: "A", Children: []string{"b"}},
		{ID: "b", Name: "B"},
	})
	c := interact.NewController(g)
	p := NewPresenter(c)
	a, _ := g.Lookup("a")
	b, _ := g.Lookup("b")

	if !p.Show(a, viz.Point{}) {
		t.Fatal("Show should succeed in neutral state")
	}

	c.ClickNode("a")
	if p.Show(b, viz.Point{}) {
		t.Error("Show should be suppressed while pinned")
	}

	c.ClickBackground()
	if !p.Show(b, viz.Point{}) {
		t.Error("Show should succeed after unpin")
	}
}
