package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"aptutor/internal/domain"
)

// Config holds all configuration for the tutor.
type Config struct {
	Index    IndexConfig    `yaml:"index"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
	LLM      LLMConfig      `yaml:"llm"`
	Bot      BotConfig      `yaml:"bot"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// IndexConfig holds document loading and chunking configuration.
type IndexConfig struct {
	ResourceDir  string   `yaml:"resource_dir"`
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	ChunkSize    int      `yaml:"chunk_size"`    // words per chunk
	ChunkOverlap int      `yaml:"chunk_overlap"` // words shared by consecutive chunks
	Workers      int      `yaml:"workers"`
	CacheText    bool     `yaml:"cache_text"` // keep extracted text in .aptutor/extract.db
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	MaxChunks int           `yaml:"max_chunks"`
	CacheSize int           `yaml:"cache_size"` // 0 disables the query cache
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// LLMConfig holds the chat-completion endpoint configuration.
type LLMConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	APIKeyEnv         string        `yaml:"api_key_env"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// BotConfig holds Discord bot configuration.
type BotConfig struct {
	Enabled       bool   `yaml:"enabled"`
	TokenEnv      string `yaml:"token_env"`
	Prefix        string `yaml:"prefix"`
	Command       string `yaml:"command"`
	MaxMessageLen int    `yaml:"max_message_len"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			ResourceDir:  "resources",
			Includes:     []string{"**/*.pdf", "**/*.txt", "**/*.md"},
			Excludes:     []string{"**/.git/**", "**/.aptutor/**"},
			ChunkSize:    1000,
			ChunkOverlap: 200,
			Workers:      4,
			CacheText:    true,
		},
		Retrieve: RetrieveConfig{
			MaxChunks: 3,
			CacheSize: 256,
			CacheTTL:  10 * time.Minute,
		},
		LLM: LLMConfig{
			BaseURL:           "https://openrouter.ai/api/v1",
			Model:             "deepseek/deepseek-r1-0528:free",
			APIKeyEnv:         "OPENROUTER_API_KEY",
			Timeout:           90 * time.Second,
			RequestsPerMinute: 20,
		},
		Bot: BotConfig{
			Enabled:       false,
			TokenEnv:      "DISCORD_BOT_TOKEN",
			Prefix:        ".",
			Command:       "ap",
			MaxMessageLen: 2000,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for aptutor.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "aptutor.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".aptutor", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with the process environment.
func (c *Config) applyEnv() {
	c.Server.Port = GetIntEnv("PORT", c.Server.Port)
	c.Index.ResourceDir = GetStringEnv("APTUTOR_RESOURCE_DIR", c.Index.ResourceDir)
	c.LLM.Model = GetStringEnv("APTUTOR_LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = GetStringEnv("APTUTOR_LLM_BASE_URL", c.LLM.BaseURL)
	c.Logging.Level = GetStringEnv("APTUTOR_LOG_LEVEL", c.Logging.Level)
	c.Bot.Enabled = GetBoolEnv("APTUTOR_BOT_ENABLED", c.Bot.Enabled)
}

// Validate checks values that would otherwise fail at index time.
func (c *Config) Validate() error {
	if err := domain.ValidateChunking(c.Index.ChunkSize, c.Index.ChunkOverlap); err != nil {
		return err
	}
	if c.Retrieve.MaxChunks < 0 {
		return &domain.ConfigurationError{Field: "max_chunks", Reason: "must not be negative"}
	}
	if c.Bot.Enabled && c.Bot.MaxMessageLen < 1 {
		return &domain.ConfigurationError{Field: "max_message_len", Reason: "must be at least 1"}
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResourcePath resolves the resource directory against the project root.
func (c *Config) ResourcePath(root string) string {
	if filepath.IsAbs(c.Index.ResourceDir) {
		return c.Index.ResourceDir
	}
	return filepath.Join(root, c.Index.ResourceDir)
}

// ExtractDBPath returns the path to the extracted-text cache.
func ExtractDBPath(dir string) string {
	return filepath.Join(dir, ".aptutor", "extract.db")
}

// EnsureStateDir ensures the .aptutor directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".aptutor"), 0755)
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
