// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package warehouse

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/go-cmp/cmp"
)

func TestRowAccessors(t *testing.T) {
	row := Row{
		"uri":      "gs://bucket/patents/US123.pdf",
		"count":    int64(42),
		"avg":      float64(3.5),
		"numeric":  big.NewRat(7, 2),
		"text_num": "12",
		"null":     nil,
	}

	if got := row.String("uri"); got != "gs://bucket/patents/US123.pdf" {
		t.Errorf("String(uri) = %q", got)
	}
	if got := row.String("null"); got != "" {
		t.Errorf("String(null) = %q, want empty", got)
	}
	if got := row.String("count"); got != "42" {
		t.Errorf("String(count) = %q, want 42", got)
	}
	if got := row.Int("count"); got != 42 {
		t.Errorf("Int(count) = %d", got)
	}
	if got := row.Int("avg"); got != 3 {
		t.Errorf("Int(avg) = %d, want 3", got)
	}
	if got := row.Int("text_num"); got != 12 {
		t.Errorf("Int(text_num) = %d, want 12", got)
	}
	if got := row.Float("numeric"); got != 3.5 {
		t.Errorf("Float(numeric) = %v, want 3.5", got)
	}
	if got := row.Float("count"); got != 42 {
		t.Errorf("Float(count) = %v, want 42", got)
	}
	if got := row.Float("missing"); got != 0 {
		t.Errorf("Float(missing) = %v, want 0", got)
	}
}

func TestRowRecords(t *testing.T) {
	row := Row{
		"top_components": []bigquery.Value{
			Row{"component_name": "antenna", "distance": 0.1},
			map[string]bigquery.Value{"component_name": "battery", "distance": 0.2},
		},
	}

	recs := row.Records("top_components")
	if len(recs) != 2 {
		t.Fatalf("Records() len = %d, want 2", len(recs))
	}
	if recs[1].String("component_name") != "battery" {
		t.Errorf("Records()[1] = %v", recs[1])
	}
	if got := row.Records("absent"); got != nil {
		t.Errorf("Records(absent) = %v, want nil", got)
	}
}

func TestNameRecords(t *testing.T) {
	schema := bigquery.Schema{
		{Name: "uri", Type: bigquery.StringFieldType},
		{
			Name:     "top_components",
			Type:     bigquery.RecordFieldType,
			Repeated: true,
			Schema: bigquery.Schema{
				{Name: "component_name", Type: bigquery.StringFieldType},
				{Name: "distance", Type: bigquery.FloatFieldType},
			},
		},
	}
	values := map[string]bigquery.Value{
		"uri": "gs://b/o.pdf",
		"top_components": []bigquery.Value{
			[]bigquery.Value{"antenna", 0.1},
			[]bigquery.Value{"battery", 0.25},
		},
	}

	got := nameRecords(schema, values)
	want := Row{
		"uri": "gs://b/o.pdf",
		"top_components": []bigquery.Value{
			Row{"component_name": "antenna", "distance": 0.1},
			Row{"component_name": "battery", "distance": 0.25},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("nameRecords() mismatch (-want +got):\n%s", diff)
	}
}

func TestFake(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	f := NewFake().
		On("VECTOR_SEARCH", []Row{{"uri": "a"}}, nil).
		On("ML.GENERATE_TEXT", nil, boom)

	rows, err := f.Query(ctx, "SELECT * FROM VECTOR_SEARCH(...)", Param("query", "antenna"))
	if err != nil || len(rows) != 1 {
		t.Fatalf("Query() = %v, %v", rows, err)
	}
	if _, err := f.Query(ctx, "SELECT ML.GENERATE_TEXT"); !errors.Is(err, boom) {
		t.Errorf("Query() error = %v, want boom", err)
	}
	if rows, err := f.Query(ctx, "SELECT 2"); err != nil || rows != nil {
		t.Errorf("unmatched Query() = %v, %v", rows, err)
	}

	calls := f.CallsMatching("VECTOR_SEARCH")
	if len(calls) != 1 {
		t.Fatalf("CallsMatching() len = %d", len(calls))
	}
	if diff := cmp.Diff(map[string]any{"query": "antenna"}, calls[0].Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if got := len(f.Calls()); got != 3 {
		t.Errorf("Calls() len = %d, want 3", got)
	}
}

func TestFake_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFake().Query(ctx, PingSQL); !errors.Is(err, context.Canceled) {
		t.Errorf("Query() error = %v, want context.Canceled", err)
	}
}

type countingQuerier struct {
	n    int
	rows []Row
	err  error
}

func (c *countingQuerier) Query(context.Context, string, ...bigquery.QueryParameter) ([]Row, error) {
	c.n++
	return c.rows, c.err
}

func TestCachingQuerier(t *testing.T) {
	ctx := context.Background()
	next := &countingQuerier{rows: []Row{{"n": int64(1)}}}

	c, err := NewCachingQuerier(next, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	for range 3 {
		rows, err := c.Query(ctx, "SELECT n", Param("x", 1))
		if err != nil || len(rows) != 1 {
			t.Fatalf("Query() = %v, %v", rows, err)
		}
	}
	if next.n != 1 {
		t.Errorf("underlying queries = %d, want 1", next.n)
	}

	if _, err := c.Query(ctx, "SELECT n", Param("x", 2)); err != nil {
		t.Fatal(err)
	}
	if next.n != 2 {
		t.Errorf("different parameters should miss the cache, underlying queries = %d", next.n)
	}
}

func TestCachingQuerier_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	next := &countingQuerier{rows: []Row{{"n": int64(1)}}}

	c, err := NewCachingQuerier(next, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	first, err := c.Query(ctx, "SELECT n")
	if err != nil {
		t.Fatal(err)
	}
	first[0]["n"] = int64(99)

	second, err := c.Query(ctx, "SELECT n")
	if err != nil {
		t.Fatal(err)
	}
	if got := second[0].Int("n"); got != 1 {
		t.Errorf("cached n = %d after a caller mutated its rows, want 1", got)
	}
	second[0]["extra"] = "x"

	third, err := c.Query(ctx, "SELECT n")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Row{{"n": int64(1)}}, third); diff != "" {
		t.Errorf("cached rows changed (-want +got):\n%s", diff)
	}
	if next.n != 1 {
		t.Errorf("underlying queries = %d, want 1", next.n)
	}
}

func TestCachingQuerier_PingNotCached(t *testing.T) {
	ctx := context.Background()
	next := &countingQuerier{rows: []Row{{"test": int64(1)}}}

	c, err := NewCachingQuerier(next, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := Ping(ctx, c); err != nil {
		t.Fatal(err)
	}
	next.rows, next.err = nil, errors.New("unauthenticated")
	if err := Ping(ctx, c); err == nil {
		t.Error("Ping() error = nil after the backend failed, want unauthenticated")
	}
	if next.n != 2 {
		t.Errorf("underlying queries = %d, want 2", next.n)
	}
}

func TestCachingQuerier_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	next := &countingQuerier{err: errors.New("quota")}

	c, err := NewCachingQuerier(next, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	for range 2 {
		if _, err := c.Query(ctx, "SELECT 1"); err == nil {
			t.Fatal("Query() error = nil, want quota")
		}
	}
	if next.n != 2 {
		t.Errorf("underlying queries = %d, want 2", next.n)
	}
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	builds := 0
	fail := true
	fake := NewFake()

	p := NewCachedProvider(func(context.Context) (Querier, error) {
		builds++
		if fail {
			return nil, errors.New("no credentials")
		}
		return fake, nil
	})

	if _, err := p.Querier(ctx); err == nil {
		t.Fatal("Querier() error = nil on failing build")
	}

	fail = false
	for range 2 {
		q, err := p.Querier(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if q != fake {
			t.Error("Querier() returned an unexpected querier")
		}
	}
	if builds != 2 {
		t.Errorf("builds = %d, want 2 (one failure, one cached success)", builds)
	}
}

func TestStaticProvider(t *testing.T) {
	if _, err := (StaticProvider{}).Querier(context.Background()); !errors.Is(err, ErrNoClient) {
		t.Errorf("empty StaticProvider error = %v, want ErrNoClient", err)
	}
	f := NewFake()
	q, err := StaticProvider{Q: f}.Querier(context.Background())
	if err != nil || q != f {
		t.Errorf("StaticProvider.Querier() = %v, %v", q, err)
	}
}

func TestQueryError(t *testing.T) {
	inner := errors.New("access denied")
	err := &QueryError{Op: "run", Err: inner}
	if got, want := err.Error(), "access denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, inner) {
		t.Error("QueryError should unwrap to its cause")
	}
	var qe *QueryError
	if !errors.As(error(err), &qe) || qe.Op != "run" {
		t.Errorf("errors.As() = %v, want Op run", qe)
	}
}
