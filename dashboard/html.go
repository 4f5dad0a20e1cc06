// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/go-a2a/patent-analyst/internal/pool"
	"github.com/go-a2a/patent-analyst/visualization"
)

//go:embed templates/*.html
var templateFS embed.FS

// Plot area of the portfolio chart, in SVG user units.
const (
	plotWidth   = 640.0
	plotHeight  = 400.0
	plotPadding = 50.0
)

// HTMLRenderer renders the dashboard as HTML pages.
type HTMLRenderer struct {
	tmpl *template.Template
}

var _ Renderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer parses the embedded page templates.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"barHeight":    barHeight,
		"bubbles":      placeBubbles,
		"holdsOutlier": holdsOutlier,
		"placeholder":  func() string { return SearchPlaceholder },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// RenderHome implements [Renderer].
func (r *HTMLRenderer) RenderHome(w io.Writer, v *HomeView) error {
	return r.execute(w, "home.html", v)
}

// RenderData implements [Renderer].
func (r *HTMLRenderer) RenderData(w io.Writer, v *DataView) error {
	return r.execute(w, "data.html", v)
}

// execute renders into a pooled buffer so a failing template never writes a partial page.
func (r *HTMLRenderer) execute(w io.Writer, name string, data any) error {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := r.tmpl.ExecuteTemplate(buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// barHeight returns the height of a histogram bar as a percentage of the tallest bar.
func barHeight(count, maxCount int) int {
	if maxCount == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(maxCount) * 100))
}

func holdsOutlier(b visualization.Bin, outliers []int64) bool {
	for _, o := range outliers {
		if o >= b.Start && o < b.End {
			return true
		}
	}
	return false
}

type placedBubble struct {
	visualization.Bubble
	CX, CY, R float64
}

// placeBubbles maps bubbles into the SVG plot area.
func placeBubbles(c *visualization.PortfolioChart) []placedBubble {
	if c == nil || len(c.Bubbles) == 0 {
		return nil
	}

	var maxX, maxY float64
	for _, b := range c.Bubbles {
		maxX = max(maxX, float64(b.InnovationBreadth))
		maxY = max(maxY, b.ConnectionDensity)
	}
	maxX = max(maxX, 1)
	maxY = max(maxY, 1)

	out := make([]placedBubble, 0, len(c.Bubbles))
	for _, b := range c.Bubbles {
		out = append(out, placedBubble{
			Bubble: b,
			CX:     plotPadding + float64(b.InnovationBreadth)/maxX*(plotWidth-2*plotPadding),
			CY:     plotHeight - plotPadding - b.ConnectionDensity/maxY*(plotHeight-2*plotPadding),
			R:      b.Size / 2,
		})
	}
	return out
}
