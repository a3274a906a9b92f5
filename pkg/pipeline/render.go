package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	wio "github.com/matzehuels/wiregraph/pkg/io"
	"github.com/matzehuels/wiregraph/pkg/nets"
	"github.com/matzehuels/wiregraph/pkg/render"
	"github.com/matzehuels/wiregraph/pkg/render/dot"
	"github.com/matzehuels/wiregraph/pkg/render/svg"
)

// Render generates output artifacts in the requested formats from a
// parsed snapshot and its extraction result.
func Render(ctx context.Context, p *Parsed, res *nets.Result, opts Options) (map[string][]byte, error) {
	ps := p.Editor.Pins()
	report := res.Report(ps)
	artifacts := make(map[string][]byte, len(opts.Formats))

	var drawing []byte
	drawSVG := func() []byte {
		if drawing == nil {
			svgOpts := []svg.Option{svg.WithNets(res), svg.WithPins(ps), svg.WithScale(opts.Scale)}
			if opts.Labels {
				svgOpts = append(svgOpts, svg.WithLabels())
			}
			drawing = svg.Render(p.Editor.Store(), svgOpts...)
		}
		return drawing
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatText:
			var buf bytes.Buffer
			err = report.WriteText(&buf)
			data = buf.Bytes()
		case FormatJSON:
			data, err = json.MarshalIndent(report, "", "  ")
		case FormatSnapshot:
			data, err = wio.Marshal(p.Document())
		case FormatSVG:
			data = drawSVG()
		case FormatDOT:
			data = []byte(toDOT(p, res, ps, opts))
		case FormatGraphviz:
			data, err = dot.RenderSVG(ctx, toDOT(p, res, ps, opts))
		case FormatPNG:
			data, err = render.ToPNG(ctx, drawSVG(), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, drawSVG())
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func toDOT(p *Parsed, res *nets.Result, ps []nets.Pin, opts Options) string {
	return dot.ToDOT(p.Editor.Store(), dot.Options{
		Result: res,
		Pins:   ps,
		Scale:  opts.Scale,
		Labels: opts.Labels,
	})
}
