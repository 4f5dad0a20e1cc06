// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command patent-analyst serves the patent analysis dashboard and queries the knowledge
// graph from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "patent-analyst",
		Short:         "Semantic search and portfolio analytics over a patent knowledge graph",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file path (YAML, TOML or JSON)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: json or text")

	root.AddCommand(
		newServeCmd(&flags),
		newSearchCmd(&flags),
		newStatusCmd(&flags),
		newStatsCmd(&flags),
		newChartsCmd(&flags),
	)
	return root
}
