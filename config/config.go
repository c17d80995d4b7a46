// Package config loads the tripagent configuration from a toml or json file, a .env file
// and TRIPAGENT_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
)

const envPrefix = "TRIPAGENT_"

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	PlannerSummary = "summary"
	PlannerModel   = "model"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

const (
	defaultMaxTurns = 5
	maxTurnsCeiling = 10
	defaultRetries  = 3
	maxRetries      = 10
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	APIKey    string `toml:"api_key" json:"api_key"`
	BaseURL   string `toml:"base_url" json:"base_url"`
	Model     string `toml:"model" json:"model"`
	Provider  string `toml:"provider" json:"provider"`
	Language  string `toml:"language" json:"language"`
	MaxTurns  int    `toml:"max_turns" json:"max_turns"`
	Retries   int    `toml:"retries" json:"retries"`
	ToolMode  *bool  `toml:"tool_mode" json:"tool_mode"`
	Planner   string `toml:"planner" json:"planner"`
	Listen    string `toml:"listen" json:"listen"`
	Store     string `toml:"store" json:"store"`
	RedisAddr string `toml:"redis_addr" json:"redis_addr"`
	// SessionTTL is how long an idle redis session is kept, in seconds. 0 keeps it forever.
	SessionTTL int    `toml:"session_ttl" json:"session_ttl"`
	LogLevel   string `toml:"log_level" json:"log_level"`
}

func Default() *Config {
	toolMode := true
	return &Config{
		Model:    "gpt-4o-mini",
		Provider: ProviderOpenAI,
		Language: "zh",
		MaxTurns: defaultMaxTurns,
		Retries:  defaultRetries,
		ToolMode: &toolMode,
		Planner:  PlannerSummary,
		Listen:   ":8080",
		Store:    StoreMemory,
		LogLevel: "info",
	}
}

// Load reads path (may be empty), then .env, then the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("load .env failed", "error", err)
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes path into cfg, keeping values the file does not set.
func LoadFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("decode toml config %s: %w", path, err)
		}
	case ".json", "":
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if err := sonic.Unmarshal(raw, cfg); err != nil {
			return fmt.Errorf("decode json config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, filepath.Ext(path))
	}
	return nil
}

func (c *Config) ApplyEnvOverrides() {
	c.APIKey = envOrDefault("API_KEY", c.APIKey)
	c.BaseURL = envOrDefault("BASE_URL", c.BaseURL)
	c.Model = envOrDefault("MODEL", c.Model)
	c.Provider = envOrDefault("PROVIDER", c.Provider)
	c.Language = envOrDefault("LANGUAGE", c.Language)
	c.MaxTurns = envIntOrDefault("MAX_TURNS", c.MaxTurns)
	c.Retries = envIntOrDefault("RETRIES", c.Retries)
	if v, ok := lookupEnv("TOOL_MODE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ToolMode = &b
		} else {
			slog.Warn("ignore invalid env value", "key", envPrefix+"TOOL_MODE", "value", v)
		}
	}
	c.Planner = envOrDefault("PLANNER", c.Planner)
	c.Listen = envOrDefault("LISTEN", c.Listen)
	c.Store = envOrDefault("STORE", c.Store)
	c.RedisAddr = envOrDefault("REDIS_ADDR", c.RedisAddr)
	c.SessionTTL = envIntOrDefault("SESSION_TTL", c.SessionTTL)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
}

// Validate normalizes enumerations, clamps numeric limits and rejects unusable combinations.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Language = strings.ToLower(strings.TrimSpace(c.Language))
	c.Planner = strings.ToLower(strings.TrimSpace(c.Planner))
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))

	switch c.Provider {
	case "":
		c.Provider = ProviderOpenAI
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	switch c.Language {
	case "zh", "en":
	default:
		c.Language = "zh"
	}
	switch c.Planner {
	case "":
		c.Planner = PlannerSummary
	case PlannerSummary, PlannerModel:
	default:
		return fmt.Errorf("%w: unknown planner %q", ErrInvalidConfig, c.Planner)
	}
	switch c.Store {
	case "":
		c.Store = StoreMemory
	case StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis store needs redis_addr", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}

	c.MaxTurns = clamp(c.MaxTurns, defaultMaxTurns, maxTurnsCeiling)
	c.Retries = clamp(c.Retries, defaultRetries, maxRetries)
	if c.SessionTTL < 0 {
		c.SessionTTL = 0
	}
	if c.ToolMode == nil {
		toolMode := true
		c.ToolMode = &toolMode
	}
	return nil
}

// UseToolMode reports whether structured output uses forced tool calls.
func (c *Config) UseToolMode() bool {
	return c.ToolMode == nil || *c.ToolMode
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func clamp(v, def, ceiling int) int {
	switch {
	case v <= 0:
		return def
	case v > ceiling:
		return ceiling
	default:
		return v
	}
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envOrDefault(key, def string) string {
	if v, ok := lookupEnv(key); ok {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v, ok := lookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignore invalid env value", "key", envPrefix+key, "value", v)
		return def
	}
	return n
}
