package dot

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/matzehuels/orrery/pkg/orbit"
	"github.com/matzehuels/orrery/pkg/planet"
)

// DefaultScale converts layout units to Graphviz inches.
const DefaultScale = 0.01

// DefaultColor fills bodies without a usable color attribute.
const DefaultColor = "#9aa5b1"

// Options configures DOT generation.
type Options struct {
	// Scale is inches per layout unit. Zero means DefaultScale.
	Scale float64
	// Labels prints node ids next to bodies. When false ids are only
	// available as tooltips.
	Labels bool
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{3}([0-9a-fA-F]{3})?([0-9a-fA-F]{2})?$`)

// ToDOT converts sys to Graphviz DOT source for the neato engine.
func ToDOT(sys *planet.System, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	var buf bytes.Buffer
	buf.WriteString("graph orrery {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"#0b0d17\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, penwidth=0, fontcolor=\"#e6e6e6\", fontsize=10];\n")
	buf.WriteString("  edge [color=\"#3b4252\", penwidth=0.6];\n")
	buf.WriteString("\n")
	buf.WriteString("  sun [pos=\"0,0!\", width=0.6, fillcolor=\"#f9d71c\", label=\"\", tooltip=\"sun\"];\n")

	index := make(map[string]int, len(sys.Planets))
	for i, p := range sys.Planets {
		index[p.ID] = i
	}

	for i, p := range sys.Planets {
		x, y := project(sys.Mode, p)
		attrs := []string{
			fmt.Sprintf("pos=\"%.4f,%.4f!\"", x*scale, y*scale),
			fmt.Sprintf("width=%.3f", diameter(p)),
			fmt.Sprintf("fillcolor=%q", color(p)),
			fmt.Sprintf("tooltip=%q", p.ID),
		}
		if opts.Labels {
			attrs = append(attrs, "label=\"\"", fmt.Sprintf("xlabel=%q", p.ID))
		} else {
			attrs = append(attrs, "label=\"\"")
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i, p := range sys.Planets {
		if p.Parent == "" {
			fmt.Fprintf(&buf, "  sun -- n%d [style=dotted];\n", i)
			continue
		}
		if j, ok := index[p.Parent]; ok {
			fmt.Fprintf(&buf, "  n%d -- n%d;\n", j, i)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func project(mode planet.Mode, p planet.Planet) (float64, float64) {
	if mode == planet.ModeJitter {
		return p.Position.X, p.Position.Y
	}
	return p.Radius * math.Cos(p.Theta0), p.Radius * math.Sin(p.Theta0)
}

// diameter maps mass to a node width in inches.
func diameter(p planet.Planet) float64 {
	size := p.Size
	if size == 0 {
		size = orbit.BodySize(int(math.Round(p.Mass)))
	}
	return 0.08 + 0.06*size
}

func color(p planet.Planet) string {
	if p.Attrs != nil {
		if v, ok := p.Attrs.Get("color"); ok {
			if s, ok := v.(string); ok && hexColor.MatchString(s) {
				return s
			}
		}
	}
	return DefaultColor
}
