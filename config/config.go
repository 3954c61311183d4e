// Package config loads the faqmatch application configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/poiesic/faqmatch/ai"
	"github.com/poiesic/faqmatch/match"
	"gopkg.in/yaml.v3"
)

// Embedder types.
const (
	EmbedderTFIDF  = "tfidf"
	EmbedderOpenAI = "openai"
)

// EmbedderConfig selects and configures the embedding capability.
type EmbedderConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host,omitempty"`
	Model    string `yaml:"model,omitempty"`
	TokenEnv string `yaml:"token_env,omitempty"`
}

// CatalogConfig points at the catalog source. An empty path selects the built-in catalog.
type CatalogConfig struct {
	Path string `yaml:"path,omitempty"`
}

// CacheConfig configures the catalog embedding cache.
type CacheConfig struct {
	Path     string `yaml:"path,omitempty"`
	InMemory bool   `yaml:"in_memory,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// MatchingConfig overrides the matching policy. Nil fields keep the defaults.
type MatchingConfig struct {
	SemanticWeight *float64 `yaml:"semantic_weight,omitempty"`
	LexicalWeight  *float64 `yaml:"lexical_weight,omitempty"`
	Threshold      *float64 `yaml:"threshold,omitempty"`
	TopK           int      `yaml:"top_k,omitempty"`
	Precision      *int     `yaml:"precision,omitempty"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// WorkersConfig sizes the scoring worker pool. Zero disables the pool.
type WorkersConfig struct {
	PoolSize int `yaml:"pool_size"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Cache    CacheConfig    `yaml:"cache"`
	Matching MatchingConfig `yaml:"matching"`
	Server   ServerConfig   `yaml:"server"`
	Workers  WorkersConfig  `yaml:"workers"`
}

// Default returns the configuration used when no file exists.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a config from path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML config data, fills defaults and validates the result.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = EmbedderTFIDF
	}
	if cfg.Embedder.Type == EmbedderOpenAI {
		def := ai.DefaultConfig()
		if cfg.Embedder.Host == "" {
			cfg.Embedder.Host = def.EmbeddingHost
		}
		if cfg.Embedder.Model == "" {
			cfg.Embedder.Model = def.EmbeddingModel
		}
	}
	if cfg.Cache.Path == "" && !cfg.Cache.InMemory {
		cfg.Cache.Path = defaultCachePath()
	}
	if cfg.Matching.TopK == 0 {
		cfg.Matching.TopK = match.DefaultPolicy().TopK
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8800"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Workers.PoolSize == 0 {
		cfg.Workers.PoolSize = max(runtime.NumCPU()/2, 1)
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "faqmatch")
	}
	return filepath.Join(dir, "faqmatch")
}

// Validate checks that the configuration is usable.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case EmbedderTFIDF:
	case EmbedderOpenAI:
		if c.Embedder.Model == "" {
			return errors.New("config: embedder.model is required for openai")
		}
	default:
		return fmt.Errorf("config: unknown embedder type %q", c.Embedder.Type)
	}
	if c.Workers.PoolSize < 0 {
		return errors.New("config: workers.pool_size must not be negative")
	}
	return c.Policy().Validate()
}

// Policy returns the matching policy with overrides applied.
func (c *AppConfig) Policy() match.Policy {
	p := match.DefaultPolicy()
	m := c.Matching
	if m.SemanticWeight != nil {
		p.Weights.Semantic = *m.SemanticWeight
	}
	if m.LexicalWeight != nil {
		p.Weights.Lexical = *m.LexicalWeight
	}
	if m.Threshold != nil {
		p.Threshold = *m.Threshold
	}
	if m.TopK != 0 {
		p.TopK = m.TopK
	}
	if m.Precision != nil {
		p.Precision = *m.Precision
	}
	return p
}

// AIConfig returns the remote embedding service configuration.
// The token is read from the environment variable named by embedder.token_env.
func (c *AppConfig) AIConfig() *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.Embedder.Host),
		ai.WithEmbeddingModel(c.Embedder.Model),
	}
	if c.Embedder.TokenEnv != "" {
		opts = append(opts, ai.WithToken(os.Getenv(c.Embedder.TokenEnv)))
	}
	return ai.NewConfig(opts...)
}
