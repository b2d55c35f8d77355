package render

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/matsen/termgraph/internal/interact"
)

// compiledTemplates is parsed at init time to fail fast on template errors.
var compiledTemplates *template.Template

func init() {
	compiledTemplates = template.Must(template.New("render").Funcs(template.FuncMap{
		"num": formatNumber,
	}).Parse(sceneTemplate + svgTemplate + htmlTemplate + emptyTemplate))
}

// sceneData feeds the shared "scene" template.
type sceneData struct {
	ID        string
	Scene     *Scene
	EdgeColor string
	EdgeWidth float64
}

func newSceneData(id string, scene *Scene) sceneData {
	return sceneData{
		ID:        id,
		Scene:     scene,
		EdgeColor: interact.DefaultEdgeColor,
		EdgeWidth: interact.DefaultEdgeWidth,
	}
}

// WriteSVG writes the scene as a standalone SVG document.
func WriteSVG(w io.Writer, scene *Scene) error {
	if scene == nil {
		return fmt.Errorf("scene cannot be nil")
	}
	if err := compiledTemplates.ExecuteTemplate(w, "svg", newSceneData("termgraph", scene)); err != nil {
		return fmt.Errorf("writing svg: %w", err)
	}
	return nil
}

// formatNumber prints coordinates with at most two decimals.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

const sceneTemplate = `{{define "scene"}}<svg id="{{.ID}}-canvas" class="canvas" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 {{num .Scene.Width}} {{num .Scene.Height}}" preserveAspectRatio="xMidYMid meet">
  <g class="viewport">
    <g class="links">{{range .Scene.Lines}}
      <line data-edge="{{.Edge}}" data-source="{{.Source}}" data-target="{{.Target}}" x1="{{num .X1}}" y1="{{num .Y1}}" x2="{{num .X2}}" y2="{{num .Y2}}" stroke="{{$.EdgeColor}}" stroke-width="{{num $.EdgeWidth}}"></line>{{end}}
    </g>
    <g class="nodes">{{range .Scene.Circles}}
      <circle data-id="{{.ID}}" cx="{{num .CX}}" cy="{{num .CY}}" r="{{num .R}}" fill="{{.Fill}}" stroke="{{$.Scene.Stroke}}" stroke-width="2"></circle>{{end}}
    </g>
    <g class="labels">{{range .Scene.Labels}}
      <text data-id="{{.ID}}" x="{{num .X}}" y="{{num .Y}}" text-anchor="middle" dominant-baseline="hanging" font-size="{{num .FontSize}}" fill="{{$.Scene.LabelColor}}">{{.Text}}</text>{{end}}
    </g>
  </g>
</svg>{{end}}`

const svgTemplate = `{{define "svg"}}{{template "scene" .}}
{{end}}`
