package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Agent     AgentConfig     `yaml:"agent"`
	LLM       LLMConfig       `yaml:"llm"`
	Memory    MemoryConfig    `yaml:"memory"`
	Health    HealthConfig    `yaml:"health"`
	Logger    LoggerConfig    `yaml:"logger"`
	Tracer    TracerConfig    `yaml:"tracer"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Channels  []ChannelConfig `yaml:"channels"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Includes  []string        `yaml:"includes,omitempty"`
}

// AgentConfig holds orchestration behavior settings.
type AgentConfig struct {
	Timeout    time.Duration    `yaml:"timeout"`  // per-message processing budget
	DataDir    string           `yaml:"data_dir"` // conversation transcript root
	Transcript TranscriptConfig `yaml:"transcript"`
}

// TranscriptConfig controls token-budget trimming of specialist histories.
type TranscriptConfig struct {
	MaxTokens  int    `yaml:"max_tokens"`
	KeepRecent int    `yaml:"keep_recent"`
	Encoding   string `yaml:"encoding"`
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	DefaultProvider string               `yaml:"default_provider"`
	MaxTokens       int                  `yaml:"max_tokens"`
	Temperature     float64              `yaml:"temperature"`
	Providers       []ProviderConfig     `yaml:"providers"`
	CircuitBreaker  CircuitBreakerConfig `yaml:"circuit_breaker"`
	RateLimit       RateLimitConfig      `yaml:"rate_limit"`
}

// CircuitBreakerConfig holds circuit breaker settings for LLM providers.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// RateLimitConfig throttles outbound LLM calls.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// PoolConfig holds HTTP connection pool settings for LLM providers.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// ProviderConfig holds settings for a single LLM provider.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	Type        string        `yaml:"type"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Region      string        `yaml:"region,omitempty"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
	Pool        PoolConfig    `yaml:"pool"`
}

// MemoryConfig holds episodic and long-term memory settings.
type MemoryConfig struct {
	DataDir   string          `yaml:"data_dir"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
}

// EmbeddingConfig holds text embedding provider settings.
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider"` // "ollama"
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`
}

// SearchConfig holds episodic memory search tuning parameters.
type SearchConfig struct {
	DefaultThreshold   float64 `yaml:"default_threshold"`
	DefaultLimit       int     `yaml:"default_limit"`
	EmbeddingCacheSize int     `yaml:"embedding_cache_size"` // 0 = disabled
}

// HealthConfig holds the ring-data store settings.
type HealthConfig struct {
	DBPath string `yaml:"db_path"`
}

// SchedulerConfig holds cron/scheduler settings.
type SchedulerConfig struct {
	Enabled bool                  `yaml:"enabled"`
	Tasks   []ScheduledTaskConfig `yaml:"tasks"`
}

// ScheduledTaskConfig defines a single scheduled maintenance task.
type ScheduledTaskConfig struct {
	Name       string        `yaml:"name"`
	Schedule   string        `yaml:"schedule"` // cron expression
	Action     string        `yaml:"action"`   // "compute_baselines" or "reap_threads"
	UserID     string        `yaml:"user_id,omitempty"`
	WindowDays int           `yaml:"window_days,omitempty"` // compute_baselines lookback
	MaxAge     time.Duration `yaml:"max_age,omitempty"`     // reap_threads idle cutoff
}

// GatewayConfig holds the health/readiness HTTP endpoint settings.
type GatewayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ChannelConfig holds settings for a single channel.
type ChannelConfig struct {
	Type        string   `yaml:"type"`
	MentionOnly bool     `yaml:"mention_only,omitempty"`
	ChannelIDs  []string `yaml:"channel_ids,omitempty"`

	// Per-channel nested config (only one should be set, matching Type).
	Discord *DiscordChannelConfig `yaml:"discord,omitempty"`
	Slack   *SlackChannelConfig   `yaml:"slack,omitempty"`
}

// DiscordChannelConfig holds Discord channel settings.
type DiscordChannelConfig struct {
	Token   string `yaml:"token"`
	GuildID string `yaml:"guild_id,omitempty"`
}

// SlackChannelConfig holds Slack channel settings.
type SlackChannelConfig struct {
	BotToken string `yaml:"bot_token"`
	AppToken string `yaml:"app_token"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

// defaultDataDir returns the persistent data directory under $HOME/.ouraai/data.
// Falls back to "./data" if $HOME cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".ouraai", "data")
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Agent: AgentConfig{
			Timeout: 120 * time.Second,
			DataDir: filepath.Join(dataDir, "conversations"),
			Transcript: TranscriptConfig{
				MaxTokens:  8000,
				KeepRecent: 10,
				Encoding:   "cl100k_base",
			},
		},
		LLM: LLMConfig{
			DefaultProvider: "anthropic",
			MaxTokens:       4096,
			Temperature:     0.3,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     false,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
			RateLimit: RateLimitConfig{
				Enabled: false,
				RPS:     1,
				Burst:   2,
			},
		},
		Memory: MemoryConfig{
			DataDir: filepath.Join(dataDir, "memory"),
			Embedding: EmbeddingConfig{
				Provider:   "ollama",
				BaseURL:    "http://localhost:11434",
				Model:      "nomic-embed-text",
				Dimensions: 768,
				Timeout:    30 * time.Second,
			},
			Search: SearchConfig{
				DefaultThreshold:   0.7,
				DefaultLimit:       5,
				EmbeddingCacheSize: 512,
			},
		},
		Health: HealthConfig{
			DBPath: filepath.Join(dataDir, "oura.db"),
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		Scheduler: SchedulerConfig{
			Enabled: false,
		},
		Gateway: GatewayConfig{
			Enabled: false,
			Addr:    ":8090",
		},
	}
}

// Load reads a YAML config file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	if err := validatePermissions(absPath); err != nil {
		return nil, err
	}

	// First pass: unmarshal to get the includes list.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Process includes (merges included files into cfg).
	hasIncludes := len(cfg.Includes) > 0
	if hasIncludes {
		visited := map[string]bool{absPath: true}
		if err := processIncludes(cfg, filepath.Dir(absPath), visited, 0); err != nil {
			return nil, err
		}

		// Second pass: re-unmarshal main config so it takes precedence over includes.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (second pass): %w", err)
		}
		cfg.Includes = nil
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps OURAAI_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OURAAI_AGENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Agent.Timeout = d
		}
	}
	if v := os.Getenv("OURAAI_AGENT_DATA_DIR"); v != "" {
		cfg.Agent.DataDir = v
	}
	if v := os.Getenv("OURAAI_AGENT_TRANSCRIPT_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Agent.Transcript.MaxTokens = n
		}
	}

	if v := os.Getenv("OURAAI_LLM_DEFAULT_PROVIDER"); v != "" {
		cfg.LLM.DefaultProvider = v
	}
	if v := os.Getenv("OURAAI_LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LLM.MaxTokens = n
		}
	}
	if v := os.Getenv("OURAAI_LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.LLM.Temperature = f
		}
	}

	if v := os.Getenv("OURAAI_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("OURAAI_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("OURAAI_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("OURAAI_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}

	if v := os.Getenv("OURAAI_MEMORY_DATA_DIR"); v != "" {
		cfg.Memory.DataDir = v
	}
	if v := os.Getenv("OURAAI_MEMORY_SEARCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.Memory.Search.DefaultThreshold = f
		}
	}
	if v := os.Getenv("OURAAI_MEMORY_EMBEDDING_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Memory.Search.EmbeddingCacheSize = n
		}
	}
	if v := os.Getenv("OURAAI_EMBEDDING_BASE_URL"); v != "" {
		cfg.Memory.Embedding.BaseURL = v
	}
	if v := os.Getenv("OURAAI_EMBEDDING_MODEL"); v != "" {
		cfg.Memory.Embedding.Model = v
	}
	if v := os.Getenv("OURAAI_EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Memory.Embedding.Dimensions = n
		}
	}

	if v := os.Getenv("OURAAI_HEALTH_DB_PATH"); v != "" {
		cfg.Health.DBPath = v
	}

	if v := os.Getenv("OURAAI_SCHEDULER_ENABLED"); v == "true" {
		cfg.Scheduler.Enabled = true
	}

	if v := os.Getenv("OURAAI_GATEWAY_ENABLED"); v == "true" {
		cfg.Gateway.Enabled = true
	}
	if v := os.Getenv("OURAAI_GATEWAY_ADDR"); v != "" {
		cfg.Gateway.Addr = v
	}

	// Per-provider API key overrides: OURAAI_LLM_PROVIDER_<NAME>_API_KEY
	for i := range cfg.LLM.Providers {
		envKey := fmt.Sprintf("OURAAI_LLM_PROVIDER_%s_API_KEY",
			strings.ToUpper(cfg.LLM.Providers[i].Name))
		if v := os.Getenv(envKey); v != "" {
			cfg.LLM.Providers[i].APIKey = v
		}
	}

	// Channel token overrides (env vars populate nested config structs).
	if v := os.Getenv("OURAAI_DISCORD_TOKEN"); v != "" {
		for i := range cfg.Channels {
			if cfg.Channels[i].Type == "discord" {
				if cfg.Channels[i].Discord == nil {
					cfg.Channels[i].Discord = &DiscordChannelConfig{}
				}
				if cfg.Channels[i].Discord.Token == "" {
					cfg.Channels[i].Discord.Token = v
				}
			}
		}
	}
	if v := os.Getenv("OURAAI_DISCORD_GUILD_ID"); v != "" {
		for i := range cfg.Channels {
			if cfg.Channels[i].Type == "discord" {
				if cfg.Channels[i].Discord == nil {
					cfg.Channels[i].Discord = &DiscordChannelConfig{}
				}
				if cfg.Channels[i].Discord.GuildID == "" {
					cfg.Channels[i].Discord.GuildID = v
				}
			}
		}
	}
	if v := os.Getenv("OURAAI_DISCORD_CHANNEL_IDS"); v != "" {
		for i := range cfg.Channels {
			if cfg.Channels[i].Type == "discord" && len(cfg.Channels[i].ChannelIDs) == 0 {
				cfg.Channels[i].ChannelIDs = splitAndTrim(v, ",")
			}
		}
	}

	if v := os.Getenv("OURAAI_SLACK_BOT_TOKEN"); v != "" {
		for i := range cfg.Channels {
			if cfg.Channels[i].Type == "slack" {
				if cfg.Channels[i].Slack == nil {
					cfg.Channels[i].Slack = &SlackChannelConfig{}
				}
				if cfg.Channels[i].Slack.BotToken == "" {
					cfg.Channels[i].Slack.BotToken = v
				}
			}
		}
	}
	if v := os.Getenv("OURAAI_SLACK_APP_TOKEN"); v != "" {
		for i := range cfg.Channels {
			if cfg.Channels[i].Type == "slack" {
				if cfg.Channels[i].Slack == nil {
					cfg.Channels[i].Slack = &SlackChannelConfig{}
				}
				if cfg.Channels[i].Slack.AppToken == "" {
					cfg.Channels[i].Slack.AppToken = v
				}
			}
		}
	}
}

// splitAndTrim splits s by sep and trims whitespace from each element.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable)
	if mode&0o077 > 0o044 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
