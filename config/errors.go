// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"
)

// MissingError is returned by [Config.Validate] when required settings are absent.
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("Missing required environment variables: %s", strings.Join(e.Vars, ", "))
}

// FieldError is returned by [Config.Validate] when a setting has an unusable value.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
