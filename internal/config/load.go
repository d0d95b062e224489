package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// applyEnv lets secrets live outside the config file.
func (c *Config) applyEnv() {
	c.LLM.APIKey = valueOrDefault(os.Getenv("OPENAI_API_KEY"), c.LLM.APIKey)
	if keys := splitAndClean(os.Getenv("GEMINI_API_KEYS")); len(keys) > 0 {
		c.LLM.GeminiKeys = keys
	}
	c.Transcription.APIKey = valueOrDefault(os.Getenv("TRANSCRIBE_API_KEY"), c.Transcription.APIKey)
	c.Storage.Bucket = valueOrDefault(os.Getenv("GCS_BUCKET"), c.Storage.Bucket)
	c.Storage.CredentialsJSON = valueOrDefault(os.Getenv("GCP_CREDENTIALS_JSON"), c.Storage.CredentialsJSON)
	c.Redis.Addr = valueOrDefault(os.Getenv("REDIS_ADDR"), c.Redis.Addr)
	c.Redis.Password = valueOrDefault(os.Getenv("REDIS_PASSWORD"), c.Redis.Password)
}

// valueOrDefault returns fallback if s is empty
func valueOrDefault(s string, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// splitAndClean splits a comma-separated list and trims spaces; empty entries are removed
func splitAndClean(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
