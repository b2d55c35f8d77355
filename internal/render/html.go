package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/matsen/termgraph/internal/interact"
	"github.com/matsen/termgraph/internal/tooltip"
	"github.com/matsen/termgraph/internal/viz"
)

const (
	DefaultMinZoom     = 0.1
	DefaultMaxZoom     = 10.0
	DefaultInitialZoom = 0.75
	DefaultTitle       = "Glossary Graph"
)

// HTMLOptions configures page generation.
type HTMLOptions struct {
	Title       string
	MinZoom     float64
	MaxZoom     float64
	InitialZoom float64

	TooltipOffset viz.Point
	FadeIn        time.Duration
	FadeOut       time.Duration

	ShowSearch bool
	ShowLegend bool
}

// DefaultHTMLOptions returns default page options.
func DefaultHTMLOptions() HTMLOptions {
	return HTMLOptions{
		Title:         DefaultTitle,
		MinZoom:       DefaultMinZoom,
		MaxZoom:       DefaultMaxZoom,
		InitialZoom:   DefaultInitialZoom,
		TooltipOffset: tooltip.DefaultOffset,
		FadeIn:        tooltip.DefaultFadeIn,
		FadeOut:       tooltip.DefaultFadeOut,
		ShowSearch:    true,
		ShowLegend:    true,
	}
}

// Validate checks the zoom range and fade durations.
func (o HTMLOptions) Validate() error {
	if o.MinZoom <= 0 || o.MaxZoom < o.MinZoom {
		return fmt.Errorf("invalid zoom range [%v, %v]", o.MinZoom, o.MaxZoom)
	}
	if o.InitialZoom < o.MinZoom || o.InitialZoom > o.MaxZoom {
		return fmt.Errorf("initial zoom %v outside [%v, %v]", o.InitialZoom, o.MinZoom, o.MaxZoom)
	}
	if o.FadeIn < 0 || o.FadeOut < 0 {
		return fmt.Errorf("fade durations must not be negative")
	}
	return nil
}

// Page is one mounted graph view ready to be written as HTML.
type Page struct {
	// ID is the DOM id of the view root; it prefixes every element id.
	ID    string
	Graph *viz.Graph
	Scene *Scene
}

// focusState lists what stays lit when a node is the focus: the node ids at
// full opacity and the indices of highlighted edges.
type focusState struct {
	Nodes []string `json:"nodes"`
	Edges []int    `json:"edges"`
}

type tooltipText struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type pageStyle struct {
	FullOpacity        float64 `json:"fullOpacity"`
	DimOpacity         float64 `json:"dimOpacity"`
	DefaultEdgeColor   string  `json:"defaultEdgeColor"`
	DefaultEdgeWidth   float64 `json:"defaultEdgeWidth"`
	HighlightEdgeColor string  `json:"highlightEdgeColor"`
	HighlightEdgeWidth float64 `json:"highlightEdgeWidth"`
}

type pageBehavior struct {
	MinZoom     float64 `json:"minZoom"`
	MaxZoom     float64 `json:"maxZoom"`
	InitialZoom float64 `json:"initialZoom"`
	OffsetX     float64 `json:"offsetX"`
	OffsetY     float64 `json:"offsetY"`
	FadeInMS    int64   `json:"fadeInMs"`
	FadeOutMS   int64   `json:"fadeOutMs"`
	Opacity     float64 `json:"tooltipOpacity"`
}

// pageData is embedded in the page as JSON. The runtime only applies these
// precomputed states.
type pageData struct {
	Names     map[string]string      `json:"names"`
	Tooltips  map[string]tooltipText `json:"tooltips"`
	Neighbors map[string][]string    `json:"neighbors"`
	States    map[string]focusState  `json:"states"`
	Style     pageStyle              `json:"style"`
	Behavior  pageBehavior           `json:"behavior"`
	Width     float64                `json:"width"`
	Height    float64                `json:"height"`
}

// templateData holds data for the HTML template.
type templateData struct {
	ID         string
	Canvas     sceneData
	Title      string
	DataJSON   template.JS
	ShowSearch bool
	Legend     []LegendEntry
	Stats      viz.Stats
}

// buildPageData precomputes tooltip text and the highlight state for every
// possible focus node.
func buildPageData(p Page, opts HTMLOptions) pageData {
	g := p.Graph
	data := pageData{
		Names:     make(map[string]string, len(g.Nodes)),
		Tooltips:  make(map[string]tooltipText, len(g.Nodes)),
		Neighbors: g.Adjacency(),
		States:    make(map[string]focusState, len(g.Nodes)),
		Style: pageStyle{
			FullOpacity:        interact.FullOpacity,
			DimOpacity:         interact.DimOpacity,
			DefaultEdgeColor:   interact.DefaultEdgeColor,
			DefaultEdgeWidth:   interact.DefaultEdgeWidth,
			HighlightEdgeColor: interact.HighlightEdgeColor,
			HighlightEdgeWidth: interact.HighlightEdgeWidth,
		},
		Behavior: pageBehavior{
			MinZoom:     opts.MinZoom,
			MaxZoom:     opts.MaxZoom,
			InitialZoom: opts.InitialZoom,
			OffsetX:     opts.TooltipOffset.X,
			OffsetY:     opts.TooltipOffset.Y,
			FadeInMS:    opts.FadeIn.Milliseconds(),
			FadeOutMS:   opts.FadeOut.Milliseconds(),
			Opacity:     tooltip.VisibleOpacity,
		},
		Width:  p.Scene.Width,
		Height: p.Scene.Height,
	}

	for _, id := range g.UniqueIDs() {
		n, _ := g.Lookup(id)
		data.Names[id] = n.Name
		data.Tooltips[id] = tooltipText{Title: n.DisplayTitle(), Summary: n.DisplaySummary()}

		vs := interact.Compute(g, id)
		fs := focusState{Nodes: []string{}, Edges: []int{}}
		for _, nid := range g.UniqueIDs() {
			if vs.Nodes[nid].Opacity == interact.FullOpacity {
				fs.Nodes = append(fs.Nodes, nid)
			}
		}
		for i, e := range vs.Edges {
			if e.Color == interact.HighlightEdgeColor {
				fs.Edges = append(fs.Edges, i)
			}
		}
		data.States[id] = fs
	}

	return data
}

// GenerateHTML generates a self-contained HTML page for a mounted view.
func GenerateHTML(p Page, opts HTMLOptions) (string, error) {
	if p.Graph == nil {
		return "", ErrNilGraph
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if p.ID == "" {
		p.ID = "termgraph"
	}

	if p.Graph.IsEmpty() || p.Scene.IsEmpty() {
		var buf bytes.Buffer
		if err := compiledTemplates.ExecuteTemplate(&buf, "empty", opts.Title); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	dataJSON, err := json.Marshal(buildPageData(p, opts))
	if err != nil {
		return "", fmt.Errorf("marshaling page data to JSON: %w", err)
	}

	data := templateData{
		ID:         p.ID,
		Canvas:     newSceneData(p.ID, p.Scene),
		Title:      opts.Title,
		DataJSON:   template.JS(dataJSON),
		ShowSearch: opts.ShowSearch,
		Stats:      p.Scene.Stats,
	}
	if opts.ShowLegend {
		data.Legend = p.Scene.Legend
	}

	var buf bytes.Buffer
	if err := compiledTemplates.ExecuteTemplate(&buf, "page", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const emptyTemplate = `{{define "empty"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.}} - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f9fafb;
    }
    .empty-state {
      text-align: center;
      color: #666;
    }
    .empty-state h2 {
      margin-bottom: 0.5em;
      color: #333;
    }
    .empty-state code {
      background: #e0e0e0;
      padding: 2px 6px;
      border-radius: 3px;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No graph data</h2>
    <p>The glossary dataset has no terms yet.</p>
    <p>Check the dataset with <code>termgraph build</code></p>
  </div>
</body>
</html>{{end}}`

const htmlTemplate = `{{define "page"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    * {
      box-sizing: border-box;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0;
      background: #f9fafb;
    }
    .termgraph {
      display: flex;
      flex-direction: column;
      height: 100vh;
    }
    .termgraph .canvas {
      flex: 1;
      width: 100%;
      cursor: grab;
      background: #f9fafb;
    }
    .termgraph .canvas.dragging {
      cursor: grabbing;
    }
    .termgraph circle, .termgraph text {
      cursor: pointer;
      transition: opacity 150ms;
    }
    .termgraph text {
      font-weight: 500;
      pointer-events: all;
      user-select: none;
    }
    .termgraph circle.match {
      stroke: #111827;
      stroke-width: 3;
    }
    .termgraph text.match {
      font-weight: bold;
    }
    .termgraph .toolbar {
      position: absolute;
      top: 12px;
      left: 12px;
    }
    .termgraph .toolbar input {
      padding: 6px 10px;
      border: 1px solid #d1d5db;
      border-radius: 4px;
      font-size: 13px;
    }
    .termgraph .legend {
      position: absolute;
      top: 12px;
      right: 12px;
      background: white;
      border: 1px solid #e5e7eb;
      border-radius: 4px;
      padding: 6px 10px;
      font-size: 12px;
    }
    .termgraph .legend span {
      display: inline-block;
      width: 10px;
      height: 10px;
      border-radius: 50%;
      margin-right: 6px;
    }
    .termgraph .footer {
      padding: 1rem;
      font-size: 0.875rem;
      color: #6b7280;
    }
    /* Tooltip container */
    .termgraph .tooltip {
      position: absolute;
      opacity: 0;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 300px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    .termgraph .tooltip .label {
      font-weight: bold;
      margin-bottom: 4px;
    }
    .termgraph .tooltip .summary {
      color: #555;
    }
  </style>
</head>
<body>
  <div id="{{.ID}}" class="termgraph">
    {{if .ShowSearch}}<div class="toolbar"><input id="{{.ID}}-search" type="search" placeholder="Search terms"></div>{{end}}
    {{if .Legend}}<div class="legend">{{range .Legend}}
      <div><span style="background: {{.Color}}"></span>{{.Category}}</div>{{end}}
    </div>{{end}}
    {{template "scene" .Canvas}}
    <div class="footer">Nodes: {{.Stats.Nodes}} | Connections: {{.Stats.Edges}}</div>
    <div id="{{.ID}}-tooltip" class="tooltip"><div class="label"></div><div class="summary"></div></div>
  </div>
  <script>
    (function() {
      const data = {{.DataJSON}};
      const rootId = "{{.ID}}";
      const root = document.getElementById(rootId);
      const svg = document.getElementById(rootId + "-canvas");
      const viewport = svg.querySelector("g.viewport");
      const tip = document.getElementById(rootId + "-tooltip");
      const style = data.style;
      const behavior = data.behavior;

      const circles = Array.from(svg.querySelectorAll("circle[data-id]"));
      const labels = Array.from(svg.querySelectorAll("text[data-id]"));
      const lines = Array.from(svg.querySelectorAll("line[data-edge]"));

      // Interaction state: a pinned node disables hover.
      let pinned = null;
      let hoverEnabled = true;

      function apply(focus) {
        const state = focus === null ? null : data.states[focus];
        const lit = state ? new Set(state.nodes) : null;
        const hot = state ? new Set(state.edges) : null;

        [circles, labels].forEach(function(elements) {
          elements.forEach(function(el) {
            const id = el.getAttribute("data-id");
            el.setAttribute("opacity", !lit || lit.has(id) ? style.fullOpacity : style.dimOpacity);
          });
        });

        lines.forEach(function(el) {
          const edge = Number(el.getAttribute("data-edge"));
          if (!hot) {
            el.setAttribute("opacity", style.fullOpacity);
            el.setAttribute("stroke", style.defaultEdgeColor);
            el.setAttribute("stroke-width", style.defaultEdgeWidth);
          } else if (hot.has(edge)) {
            el.setAttribute("opacity", style.fullOpacity);
            el.setAttribute("stroke", style.highlightEdgeColor);
            el.setAttribute("stroke-width", style.highlightEdgeWidth);
          } else {
            el.setAttribute("opacity", style.dimOpacity);
            el.setAttribute("stroke", style.defaultEdgeColor);
            el.setAttribute("stroke-width", style.defaultEdgeWidth);
          }
        });
      }

      function showTooltip(evt, id) {
        if (!hoverEnabled) return;
        const text = data.tooltips[id];
        tip.querySelector(".label").textContent = text.title;
        tip.querySelector(".summary").textContent = text.summary;
        tip.style.transition = "opacity " + behavior.fadeInMs + "ms";
        tip.style.opacity = behavior.tooltipOpacity;
        moveTooltip(evt);
      }

      function moveTooltip(evt) {
        tip.style.left = (evt.pageX + behavior.offsetX) + "px";
        tip.style.top = (evt.pageY + behavior.offsetY) + "px";
      }

      function hideTooltip() {
        tip.style.transition = "opacity " + behavior.fadeOutMs + "ms";
        tip.style.opacity = 0;
      }

      function unpin() {
        pinned = null;
        hoverEnabled = true;
        apply(null);
      }

      circles.concat(labels).forEach(function(el) {
        const id = el.getAttribute("data-id");
        el.addEventListener("mouseover", function(evt) {
          if (!hoverEnabled) return;
          apply(id);
          showTooltip(evt, id);
        });
        el.addEventListener("mousemove", function(evt) {
          if (hoverEnabled) moveTooltip(evt);
        });
        el.addEventListener("mouseout", function() {
          hideTooltip();
          if (hoverEnabled) apply(null);
        });
        el.addEventListener("click", function(evt) {
          // Keep the background handler from clearing the pin.
          evt.stopPropagation();
          if (pinned === id) {
            unpin();
            return;
          }
          pinned = id;
          hoverEnabled = false;
          hideTooltip();
          apply(id);
        });
      });

      svg.addEventListener("click", function(evt) {
        if (evt.target === svg && !dragged) unpin();
      });

      // Pan and zoom on the viewport group only.
      let k = behavior.initialZoom;
      let tx = data.width / 2 * (1 - k);
      let ty = data.height / 2 * (1 - k);
      let drag = null;
      let dragged = false;

      function transform() {
        viewport.setAttribute("transform", "translate(" + tx + "," + ty + ") scale(" + k + ")");
      }

      function svgPoint(evt) {
        const rect = svg.getBoundingClientRect();
        const scale = Math.max(data.width / rect.width, data.height / rect.height);
        return {
          x: (evt.clientX - rect.left) * scale - (rect.width * scale - data.width) / 2,
          y: (evt.clientY - rect.top) * scale - (rect.height * scale - data.height) / 2
        };
      }

      svg.addEventListener("wheel", function(evt) {
        evt.preventDefault();
        const p = svgPoint(evt);
        const next = Math.min(behavior.maxZoom, Math.max(behavior.minZoom, k * Math.pow(2, -evt.deltaY * 0.002)));
        tx = p.x - (p.x - tx) * next / k;
        ty = p.y - (p.y - ty) * next / k;
        k = next;
        transform();
      }, { passive: false });

      svg.addEventListener("pointerdown", function(evt) {
        if (evt.target !== svg) return;
        drag = { p: svgPoint(evt), tx: tx, ty: ty };
        dragged = false;
        svg.classList.add("dragging");
      });

      window.addEventListener("pointermove", function(evt) {
        if (!drag) return;
        const p = svgPoint(evt);
        const dx = p.x - drag.p.x;
        const dy = p.y - drag.p.y;
        if (Math.abs(dx) + Math.abs(dy) > 2) dragged = true;
        tx = drag.tx + dx;
        ty = drag.ty + dy;
        transform();
      });

      window.addEventListener("pointerup", function() {
        drag = null;
        svg.classList.remove("dragging");
      });

      const search = document.getElementById(rootId + "-search");
      if (search) {
        search.addEventListener("input", function() {
          const query = search.value.trim().toLowerCase();
          circles.concat(labels).forEach(function(el) {
            const name = data.names[el.getAttribute("data-id")] || "";
            el.classList.toggle("match", query !== "" && name.toLowerCase().includes(query));
          });
        });
      }

      transform();
      root.dataset.ready = "true";
    })();
  </script>
</body>
</html>{{end}}`
