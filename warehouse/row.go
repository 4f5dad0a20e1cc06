// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package warehouse

import (
	"fmt"
	"math/big"
	"strconv"

	"cloud.google.com/go/bigquery"
)

// Row is a result row keyed by column name. STRUCT columns are nested [Row]s.
type Row map[string]bigquery.Value

// String returns column key as a string; NULL and missing columns are "".
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns column key as an int64; NULL, missing and unparsable values are 0.
func (r Row) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case *big.Rat:
		f, _ := v.Float64()
		return int64(f)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Float returns column key as a float64; NULL, missing and unparsable values are 0.
func (r Row) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case *big.Rat:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// Records returns a repeated STRUCT column as rows.
func (r Row) Records(key string) []Row {
	var items []bigquery.Value
	switch v := r[key].(type) {
	case []bigquery.Value:
		items = v
	case []Row:
		return v
	default:
		return nil
	}

	out := make([]Row, 0, len(items))
	for _, item := range items {
		switch rec := item.(type) {
		case Row:
			out = append(out, rec)
		case map[string]bigquery.Value:
			out = append(out, Row(rec))
		}
	}
	return out
}
