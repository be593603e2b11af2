// Package config provides configuration loading for the resource pool and its commands
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cohmetrix/resource-pool/database"
	"github.com/cohmetrix/resource-pool/logger"
)

// DefaultCapacity is the unpinned tier size used when none is configured.
const DefaultCapacity = 300

// Config is the full configuration of a pool deployment.
type Config struct {
	Pool     PoolConfig       `yaml:"pool" mapstructure:"pool"`
	Logging  logger.Config    `yaml:"logging" mapstructure:"logging"`
	Metrics  MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
	Database database.Options `yaml:"database" mapstructure:"database"`
	Tools    ToolsConfig      `yaml:"tools" mapstructure:"tools"`
	Batch    BatchConfig      `yaml:"batch" mapstructure:"batch"`
}

// PoolConfig sizes the pool.
type PoolConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Address   string `yaml:"address" mapstructure:"address"`
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
}

// ToolsConfig points at the model files the pinned tools load from.
// An empty path leaves the tool unavailable.
type ToolsConfig struct {
	LexiconPath       string `yaml:"lexicon_path" mapstructure:"lexicon_path"`
	LsaVectorsPath    string `yaml:"lsa_vectors_path" mapstructure:"lsa_vectors_path"`
	LanguageModelPath string `yaml:"language_model_path" mapstructure:"language_model_path"`
}

// BatchConfig controls the batch runner.
type BatchConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Pool:     PoolConfig{Capacity: DefaultCapacity},
		Logging:  logger.Default(),
		Metrics:  MetricsConfig{Address: ":9090", Namespace: "respool"},
		Database: database.DefaultOptions(),
		Batch:    BatchConfig{Workers: 4},
	}
}

// Load reads a YAML file on top of Default. ${VAR} references are
// replaced by environment values before parsing.
func Load(filePath string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filePath) //nolint:gosec // path comes from the operator
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	content := substituteEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(filePath string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later and further from the cause.
func (c Config) Validate() error {
	var errs []error
	if c.Pool.Capacity < 0 {
		errs = append(errs, fmt.Errorf("pool.capacity must be >= 0, got %d", c.Pool.Capacity))
	}
	if c.Batch.Workers <= 0 {
		errs = append(errs, fmt.Errorf("batch.workers must be > 0, got %d", c.Batch.Workers))
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		errs = append(errs, errors.New("metrics.address is required when metrics are enabled"))
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Substituted values are copied as-is and never scanned again.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
