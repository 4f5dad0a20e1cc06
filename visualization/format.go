// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package visualization

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/go-a2a/patent-analyst/warehouse"
)

// Chart labels.
const (
	OutlierAnnotation = "Outliers: Highly Complex Inventions (>3 std. dev.)"

	DistributionXTitle = "Number of Components"
	DistributionYTitle = "Number of Patents"

	PortfolioXTitle = "Innovation Breadth (Number of Unique Domains)"
	PortfolioYTitle = "Architectural Complexity (Avg. Connections per Patent)"

	// BubbleSizeMax is the diameter of the largest portfolio bubble.
	BubbleSizeMax = 60

	maxBins = 30
)

// OutlierRow is one row of the outlier table.
type OutlierRow struct {
	PatentID       string `json:"patent_id"`
	ComponentCount int64  `json:"component_count"`
	URI            string `json:"uri"`
	Open           string `json:"open,omitempty"`
}

// LinkFunc returns a link that opens the document at a gs:// URI, or "" when none is available.
type LinkFunc func(uri string) string

// PatentID returns the last path segment of uri.
func PatentID(uri string) string {
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// FormatOutliers shapes outlier rows for display, highest component count first.
// link may be nil.
func FormatOutliers(rows []warehouse.Row, link LinkFunc) []OutlierRow {
	if len(rows) == 0 {
		return nil
	}

	out := make([]OutlierRow, 0, len(rows))
	for _, r := range rows {
		uri := r.String("uri")
		o := OutlierRow{
			PatentID:       PatentID(uri),
			ComponentCount: r.Int("num_components"),
			URI:            uri,
		}
		if link != nil {
			o.Open = link(uri)
		}
		out = append(out, o)
	}
	slices.SortStableFunc(out, func(a, b OutlierRow) int {
		return cmp.Compare(b.ComponentCount, a.ComponentCount)
	})
	return out
}

// Bin is a histogram bucket covering [Start, End).
type Bin struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Count int   `json:"count"`
}

// Annotation is a text label placed at X above the plot area.
type Annotation struct {
	X    float64 `json:"x"`
	Text string  `json:"text"`
}

// DistributionChart is the component count histogram.
type DistributionChart struct {
	Bins       []Bin      `json:"bins"`
	Outliers   []int64    `json:"outliers"`
	Annotation Annotation `json:"annotation"`
	XTitle     string     `json:"x_title"`
	YTitle     string     `json:"y_title"`
}

// MaxCount returns the largest bin count.
func (c *DistributionChart) MaxCount() int {
	m := 0
	for _, b := range c.Bins {
		m = max(m, b.Count)
	}
	return m
}

// FormatDistribution bins the component counts of distribution and marks each outlier.
// outliers may be nil.
func FormatDistribution(distribution, outliers []warehouse.Row) *DistributionChart {
	chart := &DistributionChart{
		Annotation: Annotation{Text: OutlierAnnotation},
		XTitle:     DistributionXTitle,
		YTitle:     DistributionYTitle,
	}

	counts := make([]int64, 0, len(distribution))
	for _, r := range distribution {
		counts = append(counts, r.Int("num_components"))
	}
	if len(counts) > 0 {
		lo, hi := slices.Min(counts), slices.Max(counts)
		chart.Annotation.X = float64(hi)

		width := max(int64(1), int64(math.Ceil(float64(hi-lo+1)/maxBins)))
		n := (hi-lo)/width + 1
		chart.Bins = make([]Bin, n)
		for i := range chart.Bins {
			start := lo + int64(i)*width
			chart.Bins[i] = Bin{Start: start, End: start + width}
		}
		for _, c := range counts {
			chart.Bins[(c-lo)/width].Count++
		}
	}

	for _, r := range outliers {
		chart.Outliers = append(chart.Outliers, r.Int("num_components"))
	}
	return chart
}

// Bubble is one applicant of the portfolio chart.
type Bubble struct {
	Applicant         string  `json:"applicant"`
	InnovationBreadth int64   `json:"innovation_breadth"`
	ConnectionDensity float64 `json:"average_connection_density"`
	TotalPatents      int64   `json:"total_patents"`

	// Size is the bubble diameter; areas are proportional to TotalPatents.
	Size float64 `json:"size"`
}

// PortfolioChart is the applicant bubble chart.
type PortfolioChart struct {
	Bubbles []Bubble `json:"bubbles"`
	SizeMax float64  `json:"size_max"`
	XTitle  string   `json:"x_title"`
	YTitle  string   `json:"y_title"`
}

// FormatPortfolio shapes portfolio rows into bubbles.
func FormatPortfolio(rows []warehouse.Row) *PortfolioChart {
	chart := &PortfolioChart{
		SizeMax: BubbleSizeMax,
		XTitle:  PortfolioXTitle,
		YTitle:  PortfolioYTitle,
	}

	var most int64
	for _, r := range rows {
		b := Bubble{
			Applicant:         r.String("applican"),
			InnovationBreadth: r.Int("innovation_breadth"),
			ConnectionDensity: r.Float("average_connection_density"),
			TotalPatents:      r.Int("total_patents"),
		}
		most = max(most, b.TotalPatents)
		chart.Bubbles = append(chart.Bubbles, b)
	}
	if most > 0 {
		for i := range chart.Bubbles {
			chart.Bubbles[i].Size = BubbleSizeMax * math.Sqrt(float64(chart.Bubbles[i].TotalPatents)/float64(most))
		}
	}
	return chart
}
