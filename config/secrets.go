// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/spf13/viper"
)

// serviceAccountFields are the keys of a Google service account JSON key file.
var serviceAccountFields = []string{
	"type",
	"project_id",
	"private_key_id",
	"private_key",
	"client_email",
	"client_id",
	"auth_uri",
	"token_uri",
	"auth_provider_x509_cert_url",
	"client_x509_cert_url",
	"universe_domain",
}

// Secrets is a parsed secrets TOML file. The zero value holds no secrets.
type Secrets struct {
	v *viper.Viper
}

// LoadSecrets reads the TOML secrets file at path. A missing file yields empty [Secrets].
func LoadSecrets(path string) (*Secrets, error) {
	if path == "" || fileMissing(path) {
		return &Secrets{}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading secrets %s: %w", path, err)
	}
	return &Secrets{v: v}, nil
}

// Empty reports whether no secrets file was loaded.
func (s *Secrets) Empty() bool {
	return s == nil || s.v == nil
}

// get looks key up at the top level, then under the [default] table.
func (s *Secrets) get(key string) any {
	if s.Empty() {
		return nil
	}
	if s.v.IsSet(key) {
		return s.v.Get(key)
	}
	if s.v.IsSet("default." + key) {
		return s.v.Get("default." + key)
	}
	return nil
}

// AppEnv returns APP_ENV from the secrets, if present.
func (s *Secrets) AppEnv() string {
	if env, ok := s.get("app_env").(string); ok {
		return strings.ToLower(env)
	}
	return ""
}

// ServiceAccount returns the service account held by the secrets in any supported shape:
// a [gcp_service_account] table, a GCP_SA_KEY table or JSON string, or decomposed
// top-level fields.
func (s *Secrets) ServiceAccount() map[string]any {
	if s.Empty() {
		return nil
	}

	if sa, ok := s.v.Get("gcp_service_account").(map[string]any); ok && len(sa) > 0 {
		return sa
	}

	switch key := s.get("gcp_sa_key").(type) {
	case map[string]any:
		return key
	case string:
		var sa map[string]any
		if err := json.Unmarshal([]byte(key), &sa); err == nil {
			return sa
		}
	}

	fields := make(map[string]any)
	for _, k := range serviceAccountFields {
		if val := s.get(k); val != nil {
			fields[k] = val
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ResolveServiceAccountKey returns the service account JSON to use.
//
// In production environments the secrets file wins over the environment value; otherwise
// the environment value wins.
func ResolveServiceAccountKey(appEnv, envJSON string, secrets *Secrets) (string, error) {
	var secretsJSON string
	if sa := secrets.ServiceAccount(); sa != nil {
		b, err := json.Marshal(sa, json.Deterministic(true))
		if err != nil {
			return "", fmt.Errorf("encode service account from secrets: %w", err)
		}
		secretsJSON = string(b)
	}

	if (AppConfig{Env: appEnv}).IsProduction() {
		return firstNonEmpty(secretsJSON, envJSON), nil
	}
	return firstNonEmpty(envJSON, secretsJSON), nil
}

// ProjectIDFromKey extracts project_id from a service account JSON key.
func ProjectIDFromKey(key string) string {
	if key == "" {
		return ""
	}
	var sa struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(key), &sa); err != nil {
		return ""
	}
	return sa.ProjectID
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
