// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for every configuration key that has no legacy environment name.
const EnvPrefix = "PATENT"

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	GCP      GCPConfig      `mapstructure:"gcp"`
	BigQuery BigQueryConfig `mapstructure:"bigquery"`
	Search   SearchConfig   `mapstructure:"search"`
	Server   ServerConfig   `mapstructure:"server"`
	Signer   SignerConfig   `mapstructure:"signer"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// AppConfig holds application metadata.
type AppConfig struct {
	Title       string `mapstructure:"title"`
	Env         string `mapstructure:"env"`
	Debug       bool   `mapstructure:"debug"`
	SecretsFile string `mapstructure:"secrets_file"`
}

// IsProduction reports whether the app runs with a production environment name.
func (c AppConfig) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

// GCPConfig identifies the Google Cloud project and credentials.
type GCPConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Location  string `mapstructure:"location"`

	// ServiceAccountKey is the service account JSON. Empty means Application Default Credentials.
	ServiceAccountKey string `mapstructure:"service_account_key"`
}

// BigQueryConfig names the dataset objects produced by the pipeline.
type BigQueryConfig struct {
	DatasetID           string        `mapstructure:"dataset_id"`
	KnowledgeGraphTable string        `mapstructure:"knowledge_graph_table"`
	TextExtractionTable string        `mapstructure:"text_extraction_table"`
	EmbeddingModel      string        `mapstructure:"embedding_model"`
	ClassificationModel string        `mapstructure:"classification_model"`
	SearchIndex         string        `mapstructure:"search_index"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

// SearchConfig tunes the semantic search.
type SearchConfig struct {
	DistanceThreshold float64 `mapstructure:"distance_threshold"`
	TopK              int     `mapstructure:"top_k"`
	PatentsLimit      int     `mapstructure:"patents_limit"`
	PerURILimit       int     `mapstructure:"per_uri_limit"`
	Classify          bool    `mapstructure:"classify"`

	// Classifier is "bigquery" or "gemini".
	Classifier   string `mapstructure:"classifier"`
	GeminiModel  string `mapstructure:"gemini_model"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
}

// ServerConfig configures the HTTP dashboard.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CookieName      string        `mapstructure:"cookie_name"`
	SessionStore    string        `mapstructure:"session_store"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SignerConfig configures signed document links.
type SignerConfig struct {
	Expiry time.Duration `mapstructure:"expiry"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// legacyEnv binds keys to the environment names used by the original deployment.
var legacyEnv = map[string]string{
	"app.title":                      "APP_TITLE",
	"app.env":                        "APP_ENV",
	"app.debug":                      "DEBUG_MODE",
	"gcp.project_id":                 "GOOGLE_CLOUD_PROJECT_ID",
	"gcp.location":                   "BQ_LOCATION",
	"gcp.service_account_key":        "GCP_SA_KEY",
	"bigquery.dataset_id":            "BQ_DATASET_ID",
	"bigquery.knowledge_graph_table": "BQ_TABLE_PATENT_KNOWLEDGE_GRAPH",
	"search.gemini_api_key":          "GOOGLE_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.title", "AI Patent Analyst")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.secrets_file", "secrets.toml")

	v.SetDefault("gcp.location", "US")

	v.SetDefault("bigquery.knowledge_graph_table", "patent_knowledge_graph")
	v.SetDefault("bigquery.text_extraction_table", "ai_text_extraction")
	v.SetDefault("bigquery.embedding_model", "embedding_model")
	v.SetDefault("bigquery.classification_model", "gemini_vision_analyzer")
	v.SetDefault("bigquery.search_index", "component_search_index")
	v.SetDefault("bigquery.cache_ttl", 10*time.Minute)

	v.SetDefault("search.distance_threshold", 0.8)
	v.SetDefault("search.top_k", 70)
	v.SetDefault("search.patents_limit", 20)
	v.SetDefault("search.per_uri_limit", 5)
	v.SetDefault("search.classify", false)
	v.SetDefault("search.classifier", "bigquery")
	v.SetDefault("search.gemini_model", "gemini-2.0-flash")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cookie_name", "patent_session")
	v.SetDefault("server.session_store", "memory")
	v.SetDefault("server.session_ttl", 24*time.Hour)
	v.SetDefault("server.redis_db", 0)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("signer.expiry", 10*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.service_name", "patent-analyst")
	v.SetDefault("tracing.sample_rate", 1.0)
}

// Default returns the configuration obtained with no file and an empty environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Unmarshalling plain defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from an optional file and the environment.
//
// An empty path skips the file. The service account key is then resolved against the
// secrets file named by app.secrets_file, honouring the environment precedence rules.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env, prefixed); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	secrets, err := LoadSecrets(cfg.App.SecretsFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.applySecrets(secrets); err != nil {
		return nil, err
	}

	if cfg.App.Debug {
		cfg.Log.Level = "debug"
	}

	return &cfg, nil
}

// applySecrets fills the service account key and the project ID from secrets.
func (c *Config) applySecrets(secrets *Secrets) error {
	env := c.App.Env
	if !secrets.Empty() && os.Getenv("APP_ENV") == "" {
		if se := secrets.AppEnv(); se != "" {
			env = se
			c.App.Env = se
		}
	}

	key, err := ResolveServiceAccountKey(env, c.GCP.ServiceAccountKey, secrets)
	if err != nil {
		return err
	}
	c.GCP.ServiceAccountKey = key

	if c.GCP.ProjectID == "" {
		c.GCP.ProjectID = ProjectIDFromKey(key)
	}
	return nil
}

var (
	projectIDPattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]*$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_-]*$`)
)

// Validate checks the required configuration.
//
// Identifiers are interpolated into SQL as backquoted paths, so anything beyond a plain
// BigQuery identifier is rejected.
func (c *Config) Validate() error {
	var missing []string
	if c.GCP.ProjectID == "" {
		missing = append(missing, "GOOGLE_CLOUD_PROJECT_ID")
	}
	if c.BigQuery.DatasetID == "" {
		missing = append(missing, "BQ_DATASET_ID")
	}
	if len(missing) > 0 {
		return &MissingError{Vars: missing}
	}

	if c.GCP.ServiceAccountKey != "" {
		var fields map[string]any
		if err := json.Unmarshal([]byte(c.GCP.ServiceAccountKey), &fields); err != nil {
			return &FieldError{Field: "GCP_SA_KEY", Reason: "must be valid JSON"}
		}
	}

	if !projectIDPattern.MatchString(c.GCP.ProjectID) {
		return &FieldError{Field: "GOOGLE_CLOUD_PROJECT_ID", Reason: "is not a valid project identifier"}
	}

	idents := []struct {
		field string
		value string
	}{
		{"BQ_DATASET_ID", c.BigQuery.DatasetID},
		{"BQ_TABLE_PATENT_KNOWLEDGE_GRAPH", c.BigQuery.KnowledgeGraphTable},
		{"bigquery.text_extraction_table", c.BigQuery.TextExtractionTable},
		{"bigquery.embedding_model", c.BigQuery.EmbeddingModel},
		{"bigquery.classification_model", c.BigQuery.ClassificationModel},
		{"bigquery.search_index", c.BigQuery.SearchIndex},
	}
	for _, id := range idents {
		if !identifierPattern.MatchString(id.value) {
			return &FieldError{Field: id.field, Reason: "is not a valid BigQuery identifier"}
		}
	}

	return nil
}

// Warnings reports configuration that works but is probably not intended.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.GCP.ServiceAccountKey == "" {
		warnings = append(warnings, "GCP_SA_KEY is empty; Application Default Credentials will be used")
	}
	if c.Search.DistanceThreshold <= 0 || c.Search.DistanceThreshold > 2 {
		warnings = append(warnings, fmt.Sprintf("search distance_threshold %.2f is outside the cosine range (0, 2]", c.Search.DistanceThreshold))
	}
	if c.Search.TopK <= 0 {
		warnings = append(warnings, fmt.Sprintf("search top_k %d is not positive", c.Search.TopK))
	}
	if c.Search.Classify && c.Search.Classifier == "gemini" && c.Search.GeminiAPIKey == "" {
		warnings = append(warnings, "gemini classifier selected without GOOGLE_API_KEY; Vertex AI credentials will be used")
	}
	if c.Server.SessionStore == "redis" && c.Server.RedisAddr == "" {
		warnings = append(warnings, "redis session store selected but server.redis_addr is empty")
	}

	return warnings
}

// fileMissing reports whether path names a file that does not exist.
func fileMissing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}
