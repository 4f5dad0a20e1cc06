// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package visualization

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-a2a/patent-analyst/types"
	"github.com/go-a2a/patent-analyst/warehouse"
)

var testTables = Tables{
	ProjectID:      "proj",
	DatasetID:      "patents",
	KnowledgeGraph: "patent_knowledge_graph",
	TextExtraction: "ai_text_extraction",
}

func TestQueries(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "outliers",
			sql:  testTables.OutlierSQL(),
			want: []string{"`proj.patents.patent_knowledge_graph`", "avg_components + (3 * stddev_components)"},
		},
		{
			name: "distribution",
			sql:  testTables.DistributionSQL(),
			want: []string{"ARRAY_LENGTH(components) > 0"},
		},
		{
			name: "portfolio",
			sql:  testTables.PortfolioSQL(),
			want: []string{"`proj.patents.ai_text_extraction` AS t1", "`proj.patents.patent_knowledge_graph` AS t2", "HAVING COUNT(uri) > 1", "total_connections > 0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, w := range tt.want {
				if !strings.Contains(tt.sql, w) {
					t.Errorf("SQL missing %q:\n%s", w, tt.sql)
				}
			}
		})
	}
}

func TestService(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		fake    *warehouse.Fake
		run     func(*Service) Rows
		success bool
		kind    types.ErrorKind
		message string
		rows    int
	}{
		{
			name:    "outliers none",
			fake:    warehouse.NewFake(),
			run:     func(s *Service) Rows { return s.DetectComponentOutliers(ctx) },
			success: true,
			message: "No significant outliers found in component counts.",
		},
		{
			name: "outliers found",
			fake: warehouse.NewFake().On("stddev_components", []warehouse.Row{
				{"uri": "gs://b/US1.pdf", "num_components": int64(90)},
				{"uri": "gs://b/US2.pdf", "num_components": int64(120)},
			}, nil),
			run:     func(s *Service) Rows { return s.DetectComponentOutliers(ctx) },
			success: true,
			message: "Found 2 patents with unusually high number of components.",
			rows:    2,
		},
		{
			name:    "outliers error",
			fake:    warehouse.NewFake().On("stddev_components", nil, errors.New("table not found")),
			run:     func(s *Service) Rows { return s.DetectComponentOutliers(ctx) },
			kind:    types.KindQueryFailed,
			message: "outlier detection failed: table not found",
		},
		{
			name:    "distribution empty",
			fake:    warehouse.NewFake(),
			run:     func(s *Service) Rows { return s.ComponentDistribution(ctx) },
			success: true,
			message: "No data found for component distribution",
		},
		{
			name: "distribution",
			fake: warehouse.NewFake().On("num_components", []warehouse.Row{
				{"num_components": int64(3)}, {"num_components": int64(4)}, {"num_components": int64(5)},
			}, nil),
			run:     func(s *Service) Rows { return s.ComponentDistribution(ctx) },
			success: true,
			message: "Retrieved component distribution for 3 patents.",
			rows:    3,
		},
		{
			name: "portfolio",
			fake: warehouse.NewFake().On("innovation_breadth", []warehouse.Row{
				{"applican": "Acme", "innovation_breadth": int64(3), "average_connection_density": 2.5, "total_patents": int64(9)},
			}, nil),
			run:     func(s *Service) Rows { return s.PortfolioAnalysis(ctx) },
			success: true,
			message: "Retrieved portfolio analysis for 1 applicants.",
			rows:    1,
		},
		{
			name:    "portfolio error",
			fake:    warehouse.NewFake().On("innovation_breadth", nil, errors.New("denied")),
			run:     func(s *Service) Rows { return s.PortfolioAnalysis(ctx) },
			kind:    types.KindQueryFailed,
			message: "portfolio analysis failed: denied",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.run(NewService(tt.fake, testTables))
			if res.Success != tt.success || res.ErrorKind != tt.kind || res.Message != tt.message {
				t.Errorf("got (%v, %q, %q), want (%v, %q, %q)", res.Success, res.ErrorKind, res.Message, tt.success, tt.kind, tt.message)
			}
			if len(res.Data) != tt.rows {
				t.Errorf("rows = %d, want %d", len(res.Data), tt.rows)
			}
		})
	}
}

func TestService_NoClient(t *testing.T) {
	res := NewService(nil, testTables).PortfolioAnalysis(context.Background())
	if res.Success || res.ErrorKind != types.KindClientUnavailable || res.Message != "BigQuery client not available" {
		t.Errorf("PortfolioAnalysis() = %+v", res)
	}
}

func TestFormatOutliers(t *testing.T) {
	rows := []warehouse.Row{
		{"uri": "gs://b/patents/US1.pdf", "num_components": int64(90)},
		{"uri": "gs://b/patents/US2.pdf", "num_components": int64(120)},
		{"uri": "US3.pdf", "num_components": int64(100)},
	}
	link := func(uri string) string {
		if strings.HasPrefix(uri, "gs://") {
			return "/open?uri=" + uri
		}
		return ""
	}

	got := FormatOutliers(rows, link)
	want := []OutlierRow{
		{PatentID: "US2.pdf", ComponentCount: 120, URI: "gs://b/patents/US2.pdf", Open: "/open?uri=gs://b/patents/US2.pdf"},
		{PatentID: "US3.pdf", ComponentCount: 100, URI: "US3.pdf"},
		{PatentID: "US1.pdf", ComponentCount: 90, URI: "gs://b/patents/US1.pdf", Open: "/open?uri=gs://b/patents/US1.pdf"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FormatOutliers() mismatch (-want +got):\n%s", diff)
	}

	if got := FormatOutliers(nil, nil); got != nil {
		t.Errorf("FormatOutliers(nil) = %v, want nil", got)
	}
}

func TestFormatDistribution(t *testing.T) {
	var dist []warehouse.Row
	for _, n := range []int64{3, 3, 4, 6, 6, 6, 10} {
		dist = append(dist, warehouse.Row{"num_components": n})
	}
	outliers := []warehouse.Row{{"uri": "gs://b/x.pdf", "num_components": int64(10)}}

	chart := FormatDistribution(dist, outliers)

	if len(chart.Bins) != 8 {
		t.Fatalf("bins = %d, want 8", len(chart.Bins))
	}
	if diff := cmp.Diff(Bin{Start: 3, End: 4, Count: 2}, chart.Bins[0]); diff != "" {
		t.Errorf("first bin mismatch (-want +got):\n%s", diff)
	}
	if chart.Bins[3].Count != 3 || chart.Bins[7].Count != 1 {
		t.Errorf("bins = %+v", chart.Bins)
	}
	if chart.MaxCount() != 3 {
		t.Errorf("MaxCount() = %d, want 3", chart.MaxCount())
	}
	if diff := cmp.Diff([]int64{10}, chart.Outliers); diff != "" {
		t.Errorf("outliers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Annotation{X: 10, Text: OutlierAnnotation}, chart.Annotation); diff != "" {
		t.Errorf("annotation mismatch (-want +got):\n%s", diff)
	}
	if chart.XTitle != "Number of Components" || chart.YTitle != "Number of Patents" {
		t.Errorf("titles = %q, %q", chart.XTitle, chart.YTitle)
	}
}

func TestFormatDistribution_WideRange(t *testing.T) {
	var dist []warehouse.Row
	for n := int64(1); n <= 100; n++ {
		dist = append(dist, warehouse.Row{"num_components": n})
	}
	chart := FormatDistribution(dist, nil)

	if len(chart.Bins) > maxBins {
		t.Errorf("bins = %d, want at most %d", len(chart.Bins), maxBins)
	}
	total := 0
	for _, b := range chart.Bins {
		total += b.Count
	}
	if total != 100 {
		t.Errorf("binned %d values, want 100", total)
	}
}

func TestFormatDistribution_Empty(t *testing.T) {
	chart := FormatDistribution(nil, nil)
	if len(chart.Bins) != 0 || chart.Annotation.X != 0 || chart.Annotation.Text != OutlierAnnotation {
		t.Errorf("FormatDistribution(nil) = %+v", chart)
	}
}

func TestFormatPortfolio(t *testing.T) {
	chart := FormatPortfolio([]warehouse.Row{
		{"applican": "Acme", "innovation_breadth": int64(4), "average_connection_density": 3.25, "total_patents": int64(16)},
		{"applican": "Globex", "innovation_breadth": int64(2), "average_connection_density": 1.5, "total_patents": int64(4)},
	})

	want := []Bubble{
		{Applicant: "Acme", InnovationBreadth: 4, ConnectionDensity: 3.25, TotalPatents: 16, Size: 60},
		{Applicant: "Globex", InnovationBreadth: 2, ConnectionDensity: 1.5, TotalPatents: 4, Size: 30},
	}
	if diff := cmp.Diff(want, chart.Bubbles); diff != "" {
		t.Errorf("bubbles mismatch (-want +got):\n%s", diff)
	}
	if chart.SizeMax != 60 {
		t.Errorf("SizeMax = %v, want 60", chart.SizeMax)
	}
}

func TestPatentID(t *testing.T) {
	for uri, want := range map[string]string{
		"gs://bucket/dir/US123.pdf": "US123.pdf",
		"US123.pdf":                 "US123.pdf",
		"gs://bucket/dir/":          "",
	} {
		if got := PatentID(uri); got != want {
			t.Errorf("PatentID(%q) = %q, want %q", uri, got, want)
		}
	}
}
