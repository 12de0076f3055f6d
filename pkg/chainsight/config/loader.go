package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keys recognized by the pipeline. Environment variables use the same
// names uppercased with a CHAINSIGHT_ prefix (e.g. CHAINSIGHT_API_KEY).
const (
	KeyAPIKey      = "api_key"
	KeyModel       = "model"
	KeyEndpoint    = "endpoint"
	KeyDBPath      = "db_path"
	KeyBatchSize   = "batch_size"
	KeyMaxTokens   = "max_tokens"
	KeyTemperature = "temperature"
)

// envPrefix is prepended to uppercased keys for environment lookup.
const envPrefix = "CHAINSIGHT_"

// FromFile loads configuration from a file, auto-detecting format by
// extension. Supported extensions: .yaml, .yml, .json
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data into a Config.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return New(m), nil
}

// FromJSON parses JSON data into a Config.
func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return New(m), nil
}

// FromEnv builds a Config from CHAINSIGHT_* environment variables.
// Only the recognized keys are read; values are kept as strings.
func FromEnv() Config {
	c := New(nil)
	ApplyEnv(c)
	return c
}

// ApplyEnv layers CHAINSIGHT_* environment variables over c,
// overriding any file-loaded values.
func ApplyEnv(c Config) {
	keys := []string{
		KeyAPIKey, KeyModel, KeyEndpoint, KeyDBPath,
		KeyBatchSize, KeyMaxTokens, KeyTemperature,
	}
	for _, key := range keys {
		envName := envPrefix + strings.ToUpper(key)
		if val, ok := os.LookupEnv(envName); ok {
			c.Set(key, val)
		}
	}
}
