// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"slices"
	"testing"
)

func TestRootCmd(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "search", "status", "stats", "charts"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing command %q in %v", want, names)
		}
	}
	for _, flag := range []string{"config", "log-level", "log-format"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestRootCmd_Version(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetArgs([]string{"--version"})
	root.SetOut(&out)
	root.SetErr(new(bytes.Buffer))

	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "patent-analyst version "+version+"\n"; got != want {
		t.Errorf("--version = %q, want %q", got, want)
	}
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"search"})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	if err := root.Execute(); err == nil {
		t.Error("search without a query succeeded")
	}
}

func TestGeminiLocation(t *testing.T) {
	for in, want := range map[string]string{
		"":           "us-central1",
		"US":         "us-central1",
		"EU":         "europe-west4",
		"asia-east1": "asia-east1",
	} {
		if got := geminiLocation(in); got != want {
			t.Errorf("geminiLocation(%q) = %q, want %q", in, got, want)
		}
	}
}
