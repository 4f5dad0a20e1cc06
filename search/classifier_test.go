// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"os"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiClassifier(t *testing.T) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		t.Skipf("GOOGLE_API_KEY not set")
	}

	ctx := context.Background()
	cls, err := NewGeminiClassifier(ctx, "gemini-2.0-flash", &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query string
		want  bool
	}{
		{query: "impedance matching network for a patch antenna", want: true},
		{query: "my favourite holiday memories", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := cls.IsTechnical(ctx, tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("IsTechnical(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
