// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

// ErrorKind classifies why an operation behind the service boundary did not succeed.
type ErrorKind string

const (
	// KindNone is the zero kind carried by successful results.
	KindNone ErrorKind = ""

	// KindClientUnavailable means no BigQuery client could be obtained.
	KindClientUnavailable ErrorKind = "client_unavailable"

	// KindQueryFailed means BigQuery rejected or failed the query.
	KindQueryFailed ErrorKind = "query_execution_error"

	// KindNotConnected means the connection check failed before any query ran.
	KindNotConnected ErrorKind = "not_connected"

	// KindInvalidInput means the caller supplied an unusable query or URI.
	KindInvalidInput ErrorKind = "invalid_input"

	// KindNotTechnical means the classifier rejected the search query.
	KindNotTechnical ErrorKind = "not_technical"
)

// Result carries the outcome of a service operation: a success flag, a user-facing
// message and an optional payload. Services return a Result instead of an error so
// callers never have to unwind failures across the service boundary.
type Result[T any] struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitzero"`
	ErrorKind ErrorKind `json:"error_type,omitempty"`
}

// OK returns a successful [Result].
func OK[T any](message string, data T) Result[T] {
	return Result[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// Fail returns a failed [Result] of the given kind.
func Fail[T any](kind ErrorKind, message string) Result[T] {
	return Result[T]{
		Message:   message,
		ErrorKind: kind,
	}
}

// Unpack returns the result as the (success, message, data) triple used by the dashboard.
func (r Result[T]) Unpack() (bool, string, T) {
	return r.Success, r.Message, r.Data
}
