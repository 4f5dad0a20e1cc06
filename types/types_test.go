// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResult(t *testing.T) {
	ok := OK("Found 2 rows", []int{1, 2})
	success, msg, data := ok.Unpack()
	if !success || msg != "Found 2 rows" || ok.ErrorKind != KindNone {
		t.Errorf("OK() = %+v", ok)
	}
	if diff := cmp.Diff([]int{1, 2}, data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}

	fail := Fail[[]int](KindQueryFailed, "boom")
	success, msg, data = fail.Unpack()
	if success || msg != "boom" || data != nil || fail.ErrorKind != KindQueryFailed {
		t.Errorf("Fail() = %+v", fail)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		distance float64
		want     int
	}{
		{distance: 0, want: 100},
		{distance: 0.12, want: 88},
		{distance: 0.8, want: 20},
		{distance: 1, want: 0},
	}
	for _, tt := range tests {
		if got := Similarity(tt.distance); got != tt.want {
			t.Errorf("Similarity(%v) = %d, want %d", tt.distance, got, tt.want)
		}
	}
}

func TestNewSearchRequest(t *testing.T) {
	if got := NewSearchRequest("  battery pack \n"); got.Query != "battery pack" {
		t.Errorf("NewSearchRequest().Query = %q", got.Query)
	}
}
