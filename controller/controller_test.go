// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/go-cmp/cmp"

	"github.com/go-a2a/patent-analyst/config"
	"github.com/go-a2a/patent-analyst/types"
	"github.com/go-a2a/patent-analyst/visualization"
	"github.com/go-a2a/patent-analyst/warehouse"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.GCP.ProjectID = "proj"
	cfg.BigQuery.DatasetID = "patents"
	return cfg
}

type failingProvider struct{}

func (failingProvider) Querier(context.Context) (warehouse.Querier, error) {
	return nil, errors.New("no credentials")
}

func TestConnectionStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      *config.Config
		provider warehouse.Provider
		want     types.ConnectionStatus
	}{
		{
			name:     "healthy",
			cfg:      testConfig(),
			provider: warehouse.StaticProvider{Q: warehouse.NewFake()},
			want: types.ConnectionStatus{
				EnvValid:     true,
				EnvMessage:   "Environment configuration is valid",
				GCPConnected: true,
				GCPMessage:   "GCP connection successful",
			},
		},
		{
			name:     "no client",
			cfg:      testConfig(),
			provider: failingProvider{},
			want: types.ConnectionStatus{
				EnvValid:   true,
				EnvMessage: "Environment configuration is valid",
				GCPMessage: "Failed to authenticate with GCP",
			},
		},
		{
			name:     "ping fails",
			cfg:      config.Default(),
			provider: warehouse.StaticProvider{Q: warehouse.NewFake().On(warehouse.PingSQL, nil, errors.New("permission denied"))},
			want: types.ConnectionStatus{
				EnvMessage: "Missing required environment variables: GOOGLE_CLOUD_PROJECT_ID, BQ_DATASET_ID",
				GCPMessage: "GCP connection failed: permission denied",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.cfg, tt.provider).ConnectionStatus(ctx)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ConnectionStatus() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAppStats(t *testing.T) {
	ctx := context.Background()

	t.Run("connected", func(t *testing.T) {
		fake := warehouse.NewFake().On("COUNT(DISTINCT patent_id)", []warehouse.Row{
			{"patent_count": int64(403), "component_count": int64(12345)},
		}, nil)
		got := New(testConfig(), warehouse.StaticProvider{Q: fake}).AppStats(ctx)
		want := types.AppStats{PatentCount: "403", ComponentCount: "12,345", ConnectionStatus: "Connected to BigQuery"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("AppStats() mismatch (-want +got):\n%s", diff)
		}
		calls := fake.CallsMatching("COUNT(DISTINCT patent_id)")
		if len(calls) != 1 || !strings.Contains(calls[0].SQL, "`proj.patents.patent_knowledge_graph`") {
			t.Errorf("stats calls = %+v", calls)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		want := types.AppStats{PatentCount: "403", ComponentCount: "1,000", ConnectionStatus: "Using default values"}

		if diff := cmp.Diff(want, New(testConfig(), failingProvider{}).AppStats(ctx)); diff != "" {
			t.Errorf("AppStats() without client mismatch (-want +got):\n%s", diff)
		}

		fake := warehouse.NewFake().On("COUNT(DISTINCT patent_id)", nil, errors.New("boom"))
		if diff := cmp.Diff(want, New(testConfig(), warehouse.StaticProvider{Q: fake}).AppStats(ctx)); diff != "" {
			t.Errorf("AppStats() on query error mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("results", func(t *testing.T) {
		fake := warehouse.NewFake().On("VECTOR_SEARCH", []warehouse.Row{
			{"uri": "gs://b/US1.pdf", "component_name": "antenna", "component_function": "radiates", "distance": 0.12},
		}, nil)
		got := New(testConfig(), warehouse.StaticProvider{Q: fake}).Search(ctx, types.NewSearchRequest(" antenna "))
		want := types.SearchResponse{
			Success: true,
			Message: "Found 1 results for 'antenna'.",
			Results: []types.SearchResult{{PatentURI: "gs://b/US1.pdf", Component: "antenna", Function: "radiates", Similarity: 88}},
			Query:   "antenna",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Search() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got := New(testConfig(), warehouse.StaticProvider{Q: warehouse.NewFake()}).Search(ctx, types.NewSearchRequest("gear"))
		if !got.Success || len(got.Results) != 0 || got.Message != "No results found for 'gear'. Try a different query." {
			t.Errorf("Search() = %+v", got)
		}
	})

	t.Run("failure", func(t *testing.T) {
		fake := warehouse.NewFake().On("VECTOR_SEARCH", nil, errors.New("quota"))
		got := New(testConfig(), warehouse.StaticProvider{Q: fake}).Search(ctx, types.NewSearchRequest("gear"))
		if got.Success || !strings.HasPrefix(got.Message, "Vector search failed: ") || got.Query != "gear" {
			t.Errorf("Search() = %+v", got)
		}
	})

	t.Run("not connected", func(t *testing.T) {
		got := New(testConfig(), failingProvider{}).Search(ctx, types.NewSearchRequest("gear"))
		want := "Semantic search service not available: BigQuery not connected: Failed to authenticate with GCP"
		if got.Success || got.Message != want {
			t.Errorf("Search() = %+v, want message %q", got, want)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		c := New(testConfig(), warehouse.StaticProvider{Q: warehouse.NewFake()})
		// Create the service before canceling so only the search observes the cancellation.
		if _, err := c.searchService(ctx); err != nil {
			t.Fatalf("search service unavailable: %v", err)
		}
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		got := c.Search(cctx, types.NewSearchRequest("gear"))
		if got.Success || got.Message != "Search failed: context canceled" {
			t.Errorf("Search() = %+v", got)
		}
	})
}

// blockingQuerier holds vector searches until released so concurrent callers overlap.
type blockingQuerier struct {
	mu       sync.Mutex
	searches int
	release  chan struct{}
}

func (b *blockingQuerier) Query(ctx context.Context, sql string, _ ...bigquery.QueryParameter) ([]warehouse.Row, error) {
	if !strings.Contains(sql, "VECTOR_SEARCH") {
		return nil, nil
	}
	b.mu.Lock()
	b.searches++
	b.mu.Unlock()
	<-b.release
	return []warehouse.Row{{"uri": "gs://b/US1.pdf", "component_name": "antenna", "distance": 0.2}}, nil
}

func TestSearch_CollapsesConcurrentQueries(t *testing.T) {
	ctx := context.Background()
	q := &blockingQuerier{release: make(chan struct{})}
	c := New(testConfig(), warehouse.StaticProvider{Q: q})
	if _, err := c.searchService(ctx); err != nil {
		t.Fatalf("search service unavailable: %v", err)
	}

	const callers = 4
	var ready, done sync.WaitGroup
	responses := make([]types.SearchResponse, callers)
	for i := range callers {
		ready.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			ready.Done()
			responses[i] = c.Search(ctx, types.NewSearchRequest("antenna"))
		}()
	}
	ready.Wait()
	time.Sleep(100 * time.Millisecond)
	close(q.release)
	done.Wait()

	if q.searches != 1 {
		t.Errorf("vector searches = %d, want 1", q.searches)
	}
	for i, r := range responses {
		if !r.Success || len(r.Results) != 1 {
			t.Errorf("response %d = %+v", i, r)
		}
	}
}

func TestSearchGrouped(t *testing.T) {
	ctx := context.Background()
	fake := warehouse.NewFake().On("GROUP BY uri", []warehouse.Row{
		{
			"uri":           "gs://b/US1.pdf",
			"best_distance": 0.1,
			"hit_count":     int64(3),
			"top_components": []bigquery.Value{
				warehouse.Row{"component_name": "antenna", "component_function": "radiates", "distance": 0.1},
			},
		},
	}, nil)
	c := New(testConfig(), warehouse.StaticProvider{Q: fake})

	got := c.SearchGrouped(ctx, "antenna")
	want := types.OK("Found 1 patents for 'antenna'.", []types.PatentMatch{{
		PatentURI:      "gs://b/US1.pdf",
		BestSimilarity: 90,
		HitCount:       3,
		TopComponents:  []types.PatentHit{{Component: "antenna", Function: "radiates", Similarity: 90}},
	}})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchGrouped() mismatch (-want +got):\n%s", diff)
	}

	if res := c.SearchGrouped(ctx, " "); res.Success || res.ErrorKind != types.KindInvalidInput {
		t.Errorf("SearchGrouped(blank) = %+v", res)
	}
}

func TestPatentDetail(t *testing.T) {
	ctx := context.Background()
	fake := warehouse.NewFake().On("uri = @uri", []warehouse.Row{
		{"uri": "gs://b/US1.pdf", "component_name": "antenna", "component_function": "radiates", "distance": 0.25},
	}, nil)
	c := New(testConfig(), warehouse.StaticProvider{Q: fake})

	got := c.PatentDetail(ctx, "antenna", "gs://b/US1.pdf")
	if !got.Success || got.Message != "Found 1 matching components in US1.pdf." || got.Data[0].Similarity != 75 {
		t.Errorf("PatentDetail() = %+v", got)
	}

	bad := c.PatentDetail(ctx, "antenna", "")
	if bad.Success || bad.Message != "Invalid query or URI." {
		t.Errorf("PatentDetail(no uri) = %+v", bad)
	}
}

func TestSearchServiceUnavailable(t *testing.T) {
	ctx := context.Background()

	notConnected := New(testConfig(), warehouse.StaticProvider{Q: warehouse.NewFake().On(warehouse.PingSQL, nil, errors.New("permission denied"))})
	res := notConnected.SearchGrouped(ctx, "antenna")
	if res.ErrorKind != types.KindNotConnected || !strings.Contains(res.Message, "BigQuery not connected: GCP connection failed: permission denied") {
		t.Errorf("SearchGrouped() = %+v", res)
	}

	cfg := testConfig()
	cfg.GCP.ProjectID = ""
	noProject := New(cfg, warehouse.StaticProvider{Q: warehouse.NewFake()})
	detail := noProject.PatentDetail(ctx, "antenna", "gs://b/US1.pdf")
	if detail.ErrorKind != types.KindClientUnavailable || !strings.HasSuffix(detail.Message, "GOOGLE_CLOUD_PROJECT_ID not configured") {
		t.Errorf("PatentDetail() = %+v", detail)
	}
}

// flakyQuerier answers every statement until down is set.
type flakyQuerier struct {
	mu    sync.Mutex
	down  bool
	calls map[string]int
}

func (f *flakyQuerier) setDown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = true
}

func (f *flakyQuerier) count(sql string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sql]
}

func (f *flakyQuerier) Query(_ context.Context, sql string, _ ...bigquery.QueryParameter) ([]warehouse.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[sql]++
	if f.down {
		return nil, errors.New("backend unavailable")
	}
	return []warehouse.Row{{"patent_count": int64(1200), "component_count": int64(5300)}}, nil
}

func TestConnectionStatus_AfterOutage(t *testing.T) {
	ctx := context.Background()

	down := types.ConnectionStatus{
		EnvValid:   true,
		EnvMessage: "Environment configuration is valid",
		GCPMessage: "GCP connection failed: backend unavailable",
	}

	t.Run("controller query cache", func(t *testing.T) {
		q := &flakyQuerier{}
		c := New(testConfig(), warehouse.StaticProvider{Q: q}, WithQueryCache(10*time.Minute))
		defer c.Close()

		if got := c.ConnectionStatus(ctx); !got.GCPConnected {
			t.Fatalf("ConnectionStatus() = %+v, want connected", got)
		}
		stats := c.AppStats(ctx)
		q.setDown()

		if diff := cmp.Diff(down, c.ConnectionStatus(ctx)); diff != "" {
			t.Errorf("ConnectionStatus() after outage mismatch (-want +got):\n%s", diff)
		}
		if got := q.count(warehouse.PingSQL); got != 2 {
			t.Errorf("ping queries = %d, want 2", got)
		}
		if diff := cmp.Diff(stats, c.AppStats(ctx)); diff != "" {
			t.Errorf("AppStats() should be served from the cache (-want +got):\n%s", diff)
		}
		if got := q.count(c.statsSQL()); got != 1 {
			t.Errorf("stats queries = %d, want 1", got)
		}
	})

	t.Run("caching querier behind the provider", func(t *testing.T) {
		q := &flakyQuerier{}
		cached, err := warehouse.NewCachingQuerier(q, 10*time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		defer cached.Close()
		c := New(testConfig(), warehouse.StaticProvider{Q: cached})

		if got := c.ConnectionStatus(ctx); !got.GCPConnected {
			t.Fatalf("ConnectionStatus() = %+v, want connected", got)
		}
		q.setDown()
		if diff := cmp.Diff(down, c.ConnectionStatus(ctx)); diff != "" {
			t.Errorf("ConnectionStatus() after outage mismatch (-want +got):\n%s", diff)
		}
		if res := c.Search(ctx, types.NewSearchRequest("gear")); res.Success || !strings.Contains(res.Message, "BigQuery not connected") {
			t.Errorf("Search() after outage = %+v", res)
		}
	})
}

func TestAppStats_CachedRowsNotShared(t *testing.T) {
	ctx := context.Background()
	q := &flakyQuerier{}
	c := New(testConfig(), warehouse.StaticProvider{Q: q}, WithQueryCache(time.Minute))
	defer c.Close()

	want := types.AppStats{PatentCount: "1,200", ComponentCount: "5,300", ConnectionStatus: "Connected to BigQuery"}
	if diff := cmp.Diff(want, c.AppStats(ctx)); diff != "" {
		t.Fatalf("AppStats() mismatch (-want +got):\n%s", diff)
	}

	rows, err := c.analyticsQuerier(ctx, q).Query(ctx, c.statsSQL())
	if err != nil || len(rows) != 1 {
		t.Fatalf("Query() = %v, %v", rows, err)
	}
	rows[0]["patent_count"] = int64(0)

	if got := q.count(c.statsSQL()); got != 1 {
		t.Errorf("stats queries = %d, want 1", got)
	}
	if diff := cmp.Diff(want, c.AppStats(ctx)); diff != "" {
		t.Errorf("AppStats() mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalytics_NotConnected(t *testing.T) {
	ctx := context.Background()
	c := New(testConfig(), failingProvider{})

	for name, res := range map[string]types.Result[[]warehouse.Row]{
		"outliers":     c.ComponentOutliers(ctx),
		"distribution": c.ComponentDistribution(ctx),
		"portfolio":    c.PortfolioAnalysis(ctx),
	} {
		if res.Success || res.Message != "Visualization service not available" || res.ErrorKind != types.KindNotConnected {
			t.Errorf("%s = %+v", name, res)
		}
	}
	if res := c.PortfolioChart(ctx); res.Success || res.Message != "Visualization service not available" {
		t.Errorf("PortfolioChart() = %+v", res)
	}
}

func TestAnalytics_Charts(t *testing.T) {
	ctx := context.Background()
	fake := warehouse.NewFake().
		On("stddev_components", []warehouse.Row{{"uri": "gs://b/US9.pdf", "num_components": int64(40)}}, nil).
		On("innovation_breadth", []warehouse.Row{
			{"applican": "Acme", "innovation_breadth": int64(2), "average_connection_density": 1.5, "total_patents": int64(4)},
		}, nil).
		On("num_components", []warehouse.Row{{"num_components": int64(3)}, {"num_components": int64(40)}}, nil)

	c := New(testConfig(), warehouse.StaticProvider{Q: fake}, WithLinkFunc(func(uri string) string { return "/open?uri=" + uri }))

	outliers := c.FormattedComponentOutliers(ctx)
	want := []visualization.OutlierRow{{PatentID: "US9.pdf", ComponentCount: 40, URI: "gs://b/US9.pdf", Open: "/open?uri=gs://b/US9.pdf"}}
	if diff := cmp.Diff(want, outliers.Data); diff != "" {
		t.Errorf("FormattedComponentOutliers() mismatch (-want +got):\n%s", diff)
	}
	if outliers.Message != "Found 1 patents with unusually high number of components." {
		t.Errorf("outliers message = %q", outliers.Message)
	}

	dist := c.DistributionChart(ctx)
	if !dist.Success || dist.Message != "Retrieved component distribution for 2 patents." {
		t.Fatalf("DistributionChart() = %+v", dist)
	}
	if diff := cmp.Diff([]int64{40}, dist.Data.Outliers); diff != "" {
		t.Errorf("outlier markers mismatch (-want +got):\n%s", diff)
	}

	portfolio := c.PortfolioChart(ctx)
	if !portfolio.Success || len(portfolio.Data.Bubbles) != 1 || portfolio.Data.Bubbles[0].Applicant != "Acme" {
		t.Errorf("PortfolioChart() = %+v", portfolio)
	}
}

type stubSigner struct{}

func (stubSigner) SignedURL(_ context.Context, uri string) (string, error) {
	return "https://signed/" + strings.TrimPrefix(uri, "gs://"), nil
}

func TestDocumentLink(t *testing.T) {
	ctx := context.Background()

	if _, err := New(testConfig(), failingProvider{}).DocumentLink(ctx, "gs://b/o"); !errors.Is(err, ErrNoSigner) {
		t.Errorf("DocumentLink() without signer error = %v", err)
	}

	got, err := New(testConfig(), failingProvider{}, WithSigner(stubSigner{})).DocumentLink(ctx, "gs://b/o.pdf")
	if err != nil || got != "https://signed/b/o.pdf" {
		t.Errorf("DocumentLink() = %q, %v", got, err)
	}
}
