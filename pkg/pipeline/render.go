package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/orrery/pkg/observability"
	"github.com/matzehuels/orrery/pkg/planet"
	"github.com/matzehuels/orrery/pkg/render/dot"
)

// Render generates output artifacts in the requested formats. Options must
// already be validated (see [Options.ValidateForRender]).
func Render(ctx context.Context, sys *planet.System, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var src string // DOT source, shared by dot and svg

	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}
		observability.Pipeline().OnRenderStart(ctx, format)
		start := time.Now()

		var data []byte
		var err error
		switch format {
		case FormatJSON:
			var buf bytes.Buffer
			err = sys.Encode(&buf)
			data = buf.Bytes()
		case FormatDOT, FormatSVG:
			if src == "" {
				src = dot.ToDOT(sys, opts.dotOptions())
			}
			if format == FormatDOT {
				data = []byte(src)
			} else {
				data, err = dot.RenderSVG(ctx, src)
			}
		default:
			err = ValidateFormat(format)
		}

		observability.Pipeline().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func (o *Options) dotOptions() dot.Options {
	return dot.Options{Scale: o.Scale, Labels: o.Labels}
}
