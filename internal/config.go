package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"wilhelm/internal/flagger"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Neo4j     Neo4jConfig       `yaml:"neo4j"`
	Expansion ExpansionConfig   `yaml:"expansion"`
	History   HistoryConfig     `yaml:"history"`
	Gemini    GeminiConfig      `yaml:"gemini"`
	Health    HealthConfig      `yaml:"health"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Neo4j.Validate(); err != nil {
		return fmt.Errorf("neo4j: %w", err)
	}
	if err := c.Expansion.Validate(); err != nil {
		return fmt.Errorf("expansion: %w", err)
	}
	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return c.Health.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// Neo4jConfig holds the graph store connection.
type Neo4jConfig struct {
	URI              string        `yaml:"uri"`
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	Database         string        `yaml:"database"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
	RelationshipType string        `yaml:"relationship_type"`
}

func (c *Neo4jConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URI, validation.Required, is.RequestURI),
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.ConnectTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RelationshipType, validation.Required),
	)
}

// ExpansionConfig holds the traversal defaults.
type ExpansionConfig struct {
	DefaultMaxHops int           `yaml:"default_max_hops"`
	ApocMaxHops    int           `yaml:"apoc_max_hops"`
	Parallelism    int           `yaml:"parallelism"`
	Timeout        time.Duration `yaml:"timeout"`
}

func (c *ExpansionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultMaxHops, validation.Min(-1)),
		validation.Field(&c.ApocMaxHops, validation.Min(-1)),
		validation.Field(&c.Parallelism, validation.Required, validation.Min(1), validation.Max(64)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// HistoryConfig controls the DuckDB expansion history.
type HistoryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DuckDBPath    string `yaml:"duckdb_path"`
	Threads       int    `yaml:"threads"`
	MemoryLimitGB int    `yaml:"memory_limit_gb"`
	// Thresholds grade each stored run.
	Thresholds flagger.Config `yaml:"thresholds"`
}

func (c *HistoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DuckDBPath, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.Threads, validation.Min(0)),
		validation.Field(&c.MemoryLimitGB, validation.Min(0)),
		validation.Field(&c.Thresholds),
	)
}

// GeminiConfig enables the explain_word tool when APIKey is set.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Enabled reports whether an API key is configured.
func (c *GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

// HealthConfig controls the background store probe.
type HealthConfig struct {
	ProbeInterval time.Duration `yaml:"probe_interval"`
}

func (c *HealthConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ProbeInterval, validation.Required, validation.Min(time.Second)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Neo4j: Neo4jConfig{
			URI:              "neo4j://localhost:7687",
			Username:         "neo4j",
			Database:         "neo4j",
			ConnectTimeout:   5 * time.Second,
			RelationshipType: "LINK",
		},
		Expansion: ExpansionConfig{
			DefaultMaxHops: 3,
			ApocMaxHops:    -1,
			Parallelism:    1,
		},
		History: HistoryConfig{
			Enabled:    true,
			DuckDBPath: "./wilhelm-history.duckdb",
			Thresholds: flagger.DefaultConfig(),
		},
		Gemini: GeminiConfig{
			Model: "flash",
		},
		Health: HealthConfig{
			ProbeInterval: 15 * time.Second,
		},
	}
}

// WithHTTPPort returns a copy of the config listening on port.
func (c Config) WithHTTPPort(port int) Config {
	c.App.HTTP.Port = port
	return c
}

// WithNeo4jURI returns a copy of the config pointing at uri.
func (c Config) WithNeo4jURI(uri string) Config {
	c.Neo4j.URI = uri
	return c
}

// WithParallelism returns a copy of the config expanding n siblings at once.
func (c Config) WithParallelism(n int) Config {
	c.Expansion.Parallelism = n
	return c
}

// WithExpansionTimeout returns a copy of the config bounding each traversal by d.
func (c Config) WithExpansionTimeout(d time.Duration) Config {
	c.Expansion.Timeout = d
	return c
}

// WithHistory returns a copy of the config with history switched on or off.
func (c Config) WithHistory(enabled bool) Config {
	c.History.Enabled = enabled
	return c
}
