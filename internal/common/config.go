package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Security    SecurityConfig   `toml:"security"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Extraction  ExtractionConfig `toml:"extraction"`
	Narrative   NarrativeConfig  `toml:"narrative"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	LLM         LLMConfig        `toml:"llm"`
}

type ServerConfig struct {
	Port         int    `toml:"port"`
	Host         string `toml:"host"`
	ReadTimeout  string `toml:"read_timeout"`  // e.g. "15s"
	WriteTimeout string `toml:"write_timeout"` // must cover narrative generation
	IdleTimeout  string `toml:"idle_timeout"`
	MaxUploadMB  int    `toml:"max_upload_mb"` // Upper bound for /api/upload bodies
}

// SecurityConfig controls API key enforcement and CORS.
type SecurityConfig struct {
	APIKey                string   `toml:"api_key"`                 // Required X-API-Key value; empty disables the check
	AllowedOrigins        []string `toml:"allowed_origins"`         // Exact origins allowed by CORS
	AllowedOriginSuffixes []string `toml:"allowed_origin_suffixes"` // Host suffixes allowed by CORS, e.g. ".vercel.app"
}

type StorageConfig struct {
	Type   string       `toml:"type"` // only "badger" is supported
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
	RetentionDays  int    `toml:"retention_days"`   // Analyses older than this are pruned; 0 keeps everything
	PruneSchedule  string `toml:"prune_schedule"`   // Cron expression for the retention job
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// ExtractionConfig controls document parsing.
type ExtractionConfig struct {
	LabelsFile       string `toml:"labels_file"`        // Optional YAML label dictionary overriding the built-in one
	TextExcerptLimit int    `toml:"text_excerpt_limit"` // Characters of raw text kept on the result
	AIFallback       bool   `toml:"ai_fallback"`        // Ask the LLM for missing core figures
}

// NarrativeConfig controls the LLM credit write-up.
type NarrativeConfig struct {
	Enabled      bool     `toml:"enabled"`
	Models       []string `toml:"models"`        // Fallback chain; empty uses the configured provider models
	Timeout      string   `toml:"timeout"`       // Per-model timeout
	MaxTokens    int      `toml:"max_tokens"`    // Response token cap
	Temperature  float32  `toml:"temperature"`   // Completion temperature
	ExcerptLimit int      `toml:"excerpt_limit"` // Characters of raw document text sent with the prompt
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"` // Minimum interval between requests, e.g. "4s"
	Temperature float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the default provider
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "claude")
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "localhost",
			ReadTimeout:  "15s",
			WriteTimeout: "3m",
			IdleTimeout:  "60s",
			MaxUploadMB:  20,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
			},
			AllowedOriginSuffixes: []string{".vercel.app"},
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path:          "./data",
				RetentionDays: 90,
				PruneSchedule: "@hourly",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Extraction: ExtractionConfig{
			TextExcerptLimit: 20000,
			AIFallback:       false,
		},
		Narrative: NarrativeConfig{
			Enabled:      true,
			Timeout:      "90s",
			MaxTokens:    4096,
			Temperature:  0.3,
			ExcerptLimit: 7000,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Timeout:     "2m",
			RateLimit:   "4s", // 15 RPM on the free tier
			Temperature: 0.3,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-5",
			MaxTokens:   4096,
			Timeout:     "2m",
			RateLimit:   "1s",
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> .env -> environment -> CLI.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// .env never overrides variables already present in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("BRAVIX_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("BRAVIX_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	} else if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("BRAVIX_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if maxUpload := os.Getenv("BRAVIX_MAX_UPLOAD_MB"); maxUpload != "" {
		if mb, err := strconv.Atoi(maxUpload); err == nil {
			config.Server.MaxUploadMB = mb
		}
	}

	// Security configuration
	if apiKey := os.Getenv("BRAVIX_API_KEY"); apiKey != "" {
		config.Security.APIKey = apiKey
	}
	if origins := splitList(os.Getenv("BRAVIX_ALLOWED_ORIGINS")); len(origins) > 0 {
		config.Security.AllowedOrigins = origins
	}
	if suffixes := splitList(os.Getenv("BRAVIX_ALLOWED_ORIGIN_SUFFIXES")); len(suffixes) > 0 {
		config.Security.AllowedOriginSuffixes = suffixes
	}

	// Storage configuration
	if badgerPath := os.Getenv("BRAVIX_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if days := os.Getenv("BRAVIX_RETENTION_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			config.Storage.Badger.RetentionDays = d
		}
	}
	if schedule := os.Getenv("BRAVIX_PRUNE_SCHEDULE"); schedule != "" {
		config.Storage.Badger.PruneSchedule = schedule
	}

	// Logging configuration
	if level := os.Getenv("BRAVIX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("BRAVIX_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if outputs := splitList(os.Getenv("BRAVIX_LOG_OUTPUT")); len(outputs) > 0 {
		config.Logging.Output = outputs
	}

	// Extraction configuration
	if labels := os.Getenv("BRAVIX_LABELS_FILE"); labels != "" {
		config.Extraction.LabelsFile = labels
	}
	if fallback := os.Getenv("BRAVIX_AI_FALLBACK"); fallback != "" {
		if b, err := strconv.ParseBool(fallback); err == nil {
			config.Extraction.AIFallback = b
		}
	}

	// Narrative configuration
	if enabled := os.Getenv("BRAVIX_NARRATIVE_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Narrative.Enabled = b
		}
	}
	if models := splitList(os.Getenv("BRAVIX_NARRATIVE_MODELS")); len(models) > 0 {
		config.Narrative.Models = models
	}

	// Gemini configuration
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("BRAVIX_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey // BRAVIX_ prefix takes priority
	}
	if model := os.Getenv("BRAVIX_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("BRAVIX_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // BRAVIX_ prefix takes priority
	}
	if model := os.Getenv("BRAVIX_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}

	if provider := os.Getenv("BRAVIX_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Storage.Badger.RetentionDays < 0 {
		return fmt.Errorf("storage.badger.retention_days must not be negative, got %d", c.Storage.Badger.RetentionDays)
	}
	if c.Storage.Badger.RetentionDays > 0 {
		if err := ValidateSchedule(c.Storage.Badger.PruneSchedule); err != nil {
			return fmt.Errorf("storage.badger.prune_schedule: %w", err)
		}
	}
	switch c.LLM.DefaultProvider {
	case LLMProviderClaude, LLMProviderGemini:
	default:
		return fmt.Errorf("unsupported llm.default_provider: %q", c.LLM.DefaultProvider)
	}
	return nil
}

// ValidateSchedule checks a cron expression in standard five-field or
// descriptor ("@hourly", "@every 30m") form.
func ValidateSchedule(schedule string) error {
	if strings.TrimSpace(schedule) == "" {
		return fmt.Errorf("schedule is empty")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// ParseDuration parses s, returning fallback when s is empty or invalid.
func ParseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// splitList splits a comma-separated environment value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
