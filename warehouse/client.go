// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/bigquery"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/go-a2a/patent-analyst/internal/observability"
	"github.com/go-a2a/patent-analyst/pkg/logging"
)

// PingSQL is the statement used to check connectivity.
const PingSQL = "SELECT 1 AS test"

// Querier runs a SQL statement and returns all rows.
type Querier interface {
	Query(ctx context.Context, sql string, params ...bigquery.QueryParameter) ([]Row, error)
}

// Param returns a named query parameter, referenced in SQL as @name.
func Param(name string, value any) bigquery.QueryParameter {
	return bigquery.QueryParameter{Name: name, Value: value}
}

// Ping runs [PingSQL] on q.
func Ping(ctx context.Context, q Querier) error {
	_, err := q.Query(ctx, PingSQL)
	return err
}

// Client is a [Querier] backed by BigQuery.
type Client struct {
	bq        *bigquery.Client
	projectID string
	location  string
	logger    *slog.Logger
}

var _ Querier = (*Client)(nil)

// Credentials detects credentials for BigQuery.
//
// A non-empty serviceAccountJSON is used as the key; otherwise Application Default
// Credentials are detected.
func Credentials(serviceAccountJSON string) (*auth.Credentials, error) {
	opts := &credentials.DetectOptions{
		Scopes: []string{bigquery.Scope},
	}
	if serviceAccountJSON != "" {
		opts.CredentialsJSON = []byte(serviceAccountJSON)
	}

	creds, err := credentials.DetectDefault(opts)
	if err != nil {
		return nil, fmt.Errorf("get credentials for bigquery: %w", err)
	}
	return creds, nil
}

// NewClient creates a new [Client] for projectID running jobs in location.
func NewClient(ctx context.Context, projectID, location string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required")
	}

	bq, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	bq.Location = location

	c := &Client{
		bq:        bq,
		projectID: projectID,
		location:  location,
		logger:    logging.FromContext(ctx),
	}

	c.logger.InfoContext(ctx, "BigQuery client initialized",
		slog.String("project_id", projectID),
		slog.String("location", location),
	)

	return c, nil
}

// ProjectID returns the billing project of the client.
func (c *Client) ProjectID() string {
	return c.projectID
}

// Query implements [Querier].
func (c *Client) Query(ctx context.Context, sql string, params ...bigquery.QueryParameter) (rows []Row, err error) {
	ctx, span := observability.StartSpan(ctx, "bigquery.query",
		attribute.String("db.system", "bigquery"),
		attribute.String("gcp.project_id", c.projectID),
		attribute.Int("db.parameters", len(params)),
	)
	defer func() { observability.EndSpan(span, err) }()

	start := time.Now()
	q := c.bq.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, &QueryError{Op: "run", Err: err}
	}

	for {
		var values map[string]bigquery.Value
		err := it.Next(&values)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, &QueryError{Op: "read", Err: err}
		}
		rows = append(rows, nameRecords(it.Schema, values))
	}

	span.SetAttributes(attribute.Int("db.rows", len(rows)))
	logging.FromContext(ctx).DebugContext(ctx, "BigQuery query finished",
		slog.Int("rows", len(rows)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return rows, nil
}

// Close closes the underlying BigQuery client.
func (c *Client) Close() error {
	if c.bq == nil {
		return nil
	}
	if err := c.bq.Close(); err != nil {
		return fmt.Errorf("close bigquery client: %w", err)
	}
	return nil
}

// nameRecords converts STRUCT values, which the iterator yields as positional slices,
// into [Row]s keyed by field name.
func nameRecords(schema bigquery.Schema, values map[string]bigquery.Value) Row {
	row := make(Row, len(values))
	for k, v := range values {
		row[k] = v
	}
	for _, field := range schema {
		if field.Type != bigquery.RecordFieldType {
			continue
		}
		v, ok := row[field.Name]
		if !ok || v == nil {
			continue
		}
		row[field.Name] = nameValue(field, v)
	}
	return row
}

func nameValue(field *bigquery.FieldSchema, v bigquery.Value) bigquery.Value {
	if field.Repeated {
		items, ok := v.([]bigquery.Value)
		if !ok {
			return v
		}
		named := make([]bigquery.Value, len(items))
		for i, item := range items {
			named[i] = nameStruct(field.Schema, item)
		}
		return named
	}
	return nameStruct(field.Schema, v)
}

func nameStruct(schema bigquery.Schema, v bigquery.Value) bigquery.Value {
	vals, ok := v.([]bigquery.Value)
	if !ok {
		return v
	}
	row := make(Row, len(schema))
	for i, f := range schema {
		if i >= len(vals) {
			break
		}
		if f.Type == bigquery.RecordFieldType && vals[i] != nil {
			row[f.Name] = nameValue(f, vals[i])
			continue
		}
		row[f.Name] = vals[i]
	}
	return row
}
