// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/go-a2a/patent-analyst/dashboard"
	"github.com/go-a2a/patent-analyst/server"
	"github.com/go-a2a/patent-analyst/session"
)

// withApp runs fn with a wired app and closes it afterwards.
func withApp(cmd *cobra.Command, flags *rootFlags, fn func(ctx context.Context, a *app) error) (err error) {
	ctx, a, err := newApp(cmd.Context(), flags)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close(context.WithoutCancel(ctx)))
	}()
	return fn(ctx, a)
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				sc := a.cfg.Server
				if addr != "" {
					sc.Addr = addr
				}

				store, err := session.NewStore(session.StoreType(sc.SessionStore), session.StoreOptions{
					TTL:           sc.SessionTTL,
					RedisAddr:     sc.RedisAddr,
					RedisPassword: sc.RedisPassword,
					RedisDB:       sc.RedisDB,
				})
				if err != nil {
					return err
				}
				defer store.Close()

				srv, err := server.New(a.controller, store,
					server.WithTitle(a.cfg.App.Title),
					server.WithCookie(sc.CookieName, sc.SessionTTL),
					server.WithSecureCookie(a.cfg.App.IsProduction()),
					server.WithShutdownTimeout(sc.ShutdownTimeout),
					server.WithLogger(a.logger),
				)
				if err != nil {
					return err
				}

				a.logger.InfoContext(ctx, "starting dashboard",
					slog.String("addr", sc.Addr),
					slog.String("session_store", sc.SessionStore),
				)
				return srv.ListenAndServe(ctx, sc.Addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func newSearchCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a semantic component search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				if asJSON {
					patents := a.controller.SearchGrouped(ctx, query)
					return writeJSON(out, patents)
				}

				e := dashboard.NewEngine(a.controller, session.NewMemoryState(nil), dashboard.NewTerminalRenderer(), a.cfg.App.Title)
				return e.Run(ctx, out, dashboard.Action{Submitted: true, Query: query})
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print patents grouped by URI as JSON")
	return cmd
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration and BigQuery connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				status := a.controller.ConnectionStatus(ctx)
				if err := writeJSON(cmd.OutOrStdout(), status); err != nil {
					return err
				}
				if !status.EnvValid || !status.GCPConnected {
					return fmt.Errorf("not ready: %s", status.GCPMessage)
				}
				return nil
			})
		},
	}
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the patent and component counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				return writeJSON(cmd.OutOrStdout(), a.controller.AppStats(ctx))
			})
		},
	}
}

func newChartsCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Print the portfolio, distribution and outlier analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				e := dashboard.NewEngine(a.controller, session.NewMemoryState(nil), dashboard.NewTerminalRenderer(), a.cfg.App.Title)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), e.Data(ctx))
				}
				return e.RunDataTab(ctx, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the chart payloads as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	if err := json.MarshalWrite(w, v, jsontext.WithIndent("  ")); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
