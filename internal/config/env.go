package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port         string
	CORSOrigins  []string
	MaxBodyBytes int64
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// ProviderCredentials is the model and endpoint for one provider.
type ProviderCredentials struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ProviderConfig selects the model provider and its request limits.
type ProviderConfig struct {
	Name           string // "openai"|"anthropic"
	OpenAI         ProviderCredentials
	Anthropic      ProviderCredentials
	RequestTimeout time.Duration
	MaxTokens      int
	Temperature    float64
}

// Active returns the credentials of the selected provider.
func (p ProviderConfig) Active() ProviderCredentials {
	if p.Name == "anthropic" {
		return p.Anthropic
	}
	return p.OpenAI
}

type GenerationConfig struct {
	DuplicateThreshold float64
}

// StoreConfig configures the Redis status store. Empty RedisURL disables it.
type StoreConfig struct {
	RedisURL  string
	StatusTTL time.Duration
}

// ArchiveConfig configures the S3 deck archive. Empty Bucket disables it.
type ArchiveConfig struct {
	Bucket     string
	Prefix     string
	Passphrase string
	Timeout    time.Duration
}

// Config is the top-level configuration.
type Config struct {
	Server     ServerConfig
	Logging    LoggingConfig
	Axiom      AxiomConfig
	Provider   ProviderConfig
	Generation GenerationConfig
	Store      StoreConfig
	Archive    ArchiveConfig
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Port:         getEnv("PORT", "8080"),
		CORSOrigins:  parseList(getEnv("CORS_ORIGINS", "*")),
		MaxBodyBytes: int64(parseInt(getEnv("MAX_BODY_BYTES", ""), 1<<20)),
	}

	// Logging defaults
	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/slidegen.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	// Axiom defaults
	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_slidegen",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Provider = ProviderConfig{
		Name: strings.ToLower(strings.TrimSpace(getEnv("AI_PROVIDER", "openai"))),
		OpenAI: ProviderCredentials{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
		Anthropic: ProviderCredentials{
			APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
			Model:   getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			BaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		},
		RequestTimeout: parseDuration(getEnv("REQUEST_TIMEOUT", "60s"), 60*time.Second),
		MaxTokens:      parseInt(getEnv("MAX_TOKENS", "4096"), 4096),
		Temperature:    parseFloat(getEnv("TEMPERATURE", "0.7"), 0.7),
	}

	cfg.Generation = GenerationConfig{
		DuplicateThreshold: parseFloat(getEnv("DUPLICATE_THRESHOLD", "0.85"), 0.85),
	}

	cfg.Store = StoreConfig{
		RedisURL:  getEnv("REDIS_URL", ""),
		StatusTTL: parseDuration(getEnv("STATUS_TTL", "24h"), 24*time.Hour),
	}

	cfg.Archive = ArchiveConfig{
		Bucket:     getEnv("ARCHIVE_BUCKET", ""),
		Prefix:     strings.Trim(getEnv("ARCHIVE_PREFIX", "decks"), "/"),
		Passphrase: getEnv("ARCHIVE_PASSPHRASE", ""),
		Timeout:    parseDuration(getEnv("ARCHIVE_TIMEOUT", "30s"), 30*time.Second),
	}

	return cfg
}

// Validate rejects settings the service cannot run with.
// Missing API keys are allowed here; requests fail with a configuration error instead.
func (c Config) Validate() error {
	switch c.Provider.Name {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("AI_PROVIDER: unsupported provider %q", c.Provider.Name)
	}
	if t := c.Generation.DuplicateThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("DUPLICATE_THRESHOLD: %v not in (0,1]", t)
	}
	if c.Provider.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.Provider.MaxTokens <= 0 {
		return errors.New("MAX_TOKENS must be positive")
	}
	return nil
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
