// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/go-a2a/patent-analyst/visualization"
)

// histogramWidth is the length of the longest histogram bar, in cells.
const histogramWidth = 40

var (
	primaryColor = lipgloss.Color("#101F38")
	accentColor  = lipgloss.Color("#8BC34A")
	mutedColor   = lipgloss.Color("#6B7280")
	warnColor    = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#DC2626")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginBottom(1)
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	successStyle  = lipgloss.NewStyle().Foreground(accentColor)
	warningStyle  = lipgloss.NewStyle().Foreground(warnColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	barStyle      = lipgloss.NewStyle().Foreground(accentColor)
	outlierStyle  = lipgloss.NewStyle().Foreground(errorColor)
	tableHeader   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	tableCell     = lipgloss.NewStyle().Padding(0, 1)
	statCardStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mutedColor).Padding(0, 2)
)

// TerminalRenderer renders the dashboard as styled terminal text.
type TerminalRenderer struct{}

var _ Renderer = (*TerminalRenderer)(nil)

// NewTerminalRenderer returns a [TerminalRenderer].
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// RenderHome implements [Renderer].
func (r *TerminalRenderer) RenderHome(w io.Writer, v *HomeView) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render(v.Title))
	b.WriteByte('\n')
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statCardStyle.Render("Patents\n"+v.Stats.PatentCount),
		statCardStyle.Render("Components\n"+v.Stats.ComponentCount),
		statCardStyle.Render("Status\n"+v.Stats.ConnectionStatus),
	))
	b.WriteString("\n\n")

	if v.Mode == ModeOverview || v.Search == nil {
		b.WriteString(subtleStyle.Render("Search: " + SearchPlaceholder))
		b.WriteByte('\n')
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(headingStyle.Render(fmt.Sprintf("Search Results for %q", v.Query)))
	b.WriteString("\n\n")
	switch s := v.Search; {
	case !s.Success && s.NotConnected():
		b.WriteString(warningStyle.Render(s.Message))
	case !s.Success:
		b.WriteString(errorStyle.Render(s.Message))
	case len(s.Results) == 0:
		b.WriteString(subtleStyle.Render(s.Message))
	default:
		b.WriteString(successStyle.Render(s.Message))
		b.WriteString("\n")
		rows := make([][]string, 0, len(s.Results))
		for _, res := range s.Results {
			rows = append(rows, []string{res.PatentURI, res.Component, res.Function, strconv.Itoa(res.Similarity) + "%"})
		}
		b.WriteString(renderTable([]string{"Patent URI", "Component", "Function", "Similarity"}, rows))
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderData implements [Renderer].
func (r *TerminalRenderer) RenderData(w io.Writer, v *DataView) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render(v.Title + ": Data Analysis"))
	b.WriteByte('\n')

	if !v.Connected {
		b.WriteString(warningStyle.Render("Data visualization requires BigQuery connection"))
		b.WriteByte('\n')
		if v.Message != "" {
			b.WriteString(subtleStyle.Render(v.Message))
			b.WriteByte('\n')
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(headingStyle.Render("Strategic Portfolio Analysis"))
	b.WriteByte('\n')
	if p := v.Portfolio; p.Success && p.Data != nil {
		rows := make([][]string, 0, len(p.Data.Bubbles))
		for _, bub := range p.Data.Bubbles {
			rows = append(rows, []string{
				bub.Applicant,
				strconv.FormatInt(bub.InnovationBreadth, 10),
				strconv.FormatFloat(bub.ConnectionDensity, 'f', 2, 64),
				strconv.FormatInt(bub.TotalPatents, 10),
			})
		}
		b.WriteString(renderTable([]string{"Applicant", "Domains", "Avg. Connections", "Patents"}, rows))
		b.WriteByte('\n')
		b.WriteString(successStyle.Render(p.Message))
	} else {
		b.WriteString(errorStyle.Render("Portfolio analysis failed: " + p.Message))
	}
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render("Component Distribution Analysis"))
	b.WriteByte('\n')
	if d := v.Distribution; d.Success && d.Data != nil {
		b.WriteString(renderHistogram(d.Data.Bins, d.Data.Outliers, d.Data.MaxCount()))
		b.WriteString(subtleStyle.Render(d.Data.Annotation.Text))
		b.WriteByte('\n')
		b.WriteString(successStyle.Render(d.Message))
	} else {
		b.WriteString(errorStyle.Render("Distribution analysis failed: " + d.Message))
	}
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render("Component Count Outlier Detection"))
	b.WriteByte('\n')
	switch o := v.Outliers; {
	case !o.Success:
		b.WriteString(errorStyle.Render("Outlier detection failed: " + o.Message))
	case len(o.Data) == 0:
		b.WriteString(successStyle.Render(o.Message))
	default:
		b.WriteString(warningStyle.Render(o.Message))
		b.WriteByte('\n')
		rows := make([][]string, 0, len(o.Data))
		for _, row := range o.Data {
			rows = append(rows, []string{row.PatentID, strconv.FormatInt(row.ComponentCount, 10), row.URI})
		}
		b.WriteString(renderTable([]string{"Patent ID", "Component Count", "URI"}, rows))
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(mutedColor)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeader
			}
			return tableCell
		})
	for _, r := range rows {
		t.Row(r...)
	}
	return t.String()
}

// renderHistogram draws one horizontal bar per bin. Bins holding an outlier are highlighted.
func renderHistogram(bins []visualization.Bin, outliers []int64, maxCount int) string {
	var b strings.Builder
	for _, bin := range bins {
		n := 0
		if maxCount > 0 {
			n = bin.Count * histogramWidth / maxCount
		}
		style := barStyle
		if holdsOutlier(bin, outliers) {
			style = outlierStyle
		}
		fmt.Fprintf(&b, "%5d-%-5d %s %d\n", bin.Start, bin.End-1, style.Render(strings.Repeat("█", n)), bin.Count)
	}
	return b.String()
}
