// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package warehouse

import (
	"context"
	"strings"
	"sync"

	"cloud.google.com/go/bigquery"
)

// Call is a statement recorded by [Fake].
type Call struct {
	SQL    string
	Params map[string]any
}

type fakeResponse struct {
	match string
	rows  []Row
	err   error
}

// Fake is a scriptable in-memory [Querier] for tests.
//
// Responses are matched by SQL substring in registration order; unmatched statements
// return no rows.
type Fake struct {
	mu        sync.Mutex
	responses []fakeResponse
	calls     []Call
}

var _ Querier = (*Fake)(nil)

// NewFake returns an empty [Fake].
func NewFake() *Fake {
	return &Fake{}
}

// On registers rows and err as the response to statements containing match.
func (f *Fake) On(match string, rows []Row, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses = append(f.responses, fakeResponse{match: match, rows: rows, err: err})
	return f
}

// Query implements [Querier].
func (f *Fake) Query(ctx context.Context, sql string, params ...bigquery.QueryParameter) ([]Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := Call{SQL: sql, Params: make(map[string]any, len(params))}
	for _, p := range params {
		call.Params[p.Name] = p.Value
	}
	f.calls = append(f.calls, call)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, r := range f.responses {
		if strings.Contains(sql, r.match) {
			return r.rows, r.err
		}
	}
	return nil, nil
}

// Calls returns the statements run so far.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]Call(nil), f.calls...)
}

// CallsMatching returns the statements run so far that contain match.
func (f *Fake) CallsMatching(match string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if strings.Contains(c.SQL, match) {
			out = append(out, c)
		}
	}
	return out
}
