// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package warehouse

import "errors"

// ErrNoClient is returned when no BigQuery client could be provided.
var ErrNoClient = errors.New("BigQuery client not available")

// QueryError is returned when BigQuery fails to run a statement or read its rows.
// Its message is the BigQuery error itself so callers can prefix it once.
type QueryError struct {
	// Op is "run" or "read".
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
