package diagram

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

var compiledTemplate = template.Must(template.New("diagram").Parse(htmlTemplate))

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", or "grid"
}

// ValidLayouts lists the supported layout names.
var ValidLayouts = []string{"force", "circle", "grid"}

// GenerateHTML renders a self-contained page showing the graph with Cytoscape.js.
func GenerateHTML(g *Graph, opts HTMLOptions) (string, error) {
	if g == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}

	graphJSON, err := g.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     g.Root,
		GraphJSON: template.JS(graphJSON),
		Layout:    layoutToCytoscape(opts.Layout),
		Empty:     g.IsEmpty(),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func validateLayout(layout string) error {
	if layout == "" {
		return nil
	}
	for _, l := range ValidLayouts {
		if l == layout {
			return nil
		}
	}
	return fmt.Errorf("invalid layout %q: must be one of %s", layout, strings.Join(ValidLayouts, ", "))
}

type templateData struct {
	Title     string
	GraphJSON template.JS
	Layout    string
	Empty     bool
}

// layoutToCytoscape maps layout names to Cytoscape.js layout algorithms.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle":
		return "circle"
	case "grid":
		return "grid"
	default:
		return "cose"
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}} relations</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #f5f5f5;
    }
    #cy {
      width: 100%;
      height: 100vh;
      background: white;
    }
    #legend {
      position: absolute;
      top: 10px;
      left: 10px;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 6px 10px;
      font-size: 12px;
    }
    #legend span { display: inline-block; width: 12px; height: 3px; margin-right: 4px; vertical-align: middle; }
    .note { position: absolute; bottom: 10px; left: 10px; color: #666; font-size: 13px; }
  </style>
</head>
<body>
  <div id="cy"></div>
  <div id="legend">
    <div><span style="background:#5CB85C"></span>child</div>
    <div><span style="background:#337AB7"></span>parent</div>
    <div><span style="background:#E8923A"></span>rs</div>
    <div><span style="background:#9B59B6"></span>rt</div>
  </div>
  {{if .Empty}}<div class="note">{{.Title}} has no recorded relations.</div>{{end}}
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const layout = "{{.Layout}}";

      function edgeStyle(color) {
        return {
          'line-color': color,
          'target-arrow-color': color,
          'target-arrow-shape': 'triangle',
          'curve-style': 'bezier',
          'label': 'data(relType)',
          'font-size': '8px',
          'width': 2
        };
      }

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: [
          {
            selector: 'node',
            style: {
              'background-color': '#4A90D9',
              'label': 'data(label)',
              'color': '#333',
              'font-size': '10px',
              'text-valign': 'bottom',
              'text-margin-y': '5px'
            }
          },
          {
            selector: 'node[kind="root"]',
            style: {
              'background-color': '#27AE60',
              'shape': 'hexagon',
              'font-weight': 'bold',
              'width': '45px',
              'height': '45px'
            }
          },
          { selector: 'edge', style: edgeStyle('#95A5A6') },
          { selector: 'edge[relType="child"]', style: edgeStyle('#5CB85C') },
          { selector: 'edge[relType="parent"]', style: edgeStyle('#337AB7') },
          { selector: 'edge[relType="rs"]', style: edgeStyle('#E8923A') },
          { selector: 'edge[relType="rt"]', style: edgeStyle('#9B59B6') }
        ],
        layout: {
          name: layout,
          animate: false,
          nodeRepulsion: 8000,
          idealEdgeLength: 100
        }
      });
    })();
  </script>
</body>
</html>`
