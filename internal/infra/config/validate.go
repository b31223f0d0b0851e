package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateAgent(cfg, ve)
	validateLLM(cfg, ve)
	validateMemory(cfg, ve)
	validateHealth(cfg, ve)
	validateChannels(cfg, ve)
	validateScheduler(cfg, ve)
	validateGateway(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateAgent(cfg *Config, ve *ValidationError) {
	if cfg.Agent.Timeout <= 0 {
		ve.Add("agent.timeout must be > 0")
	}
	if cfg.Agent.DataDir == "" {
		ve.Add("agent.data_dir must not be empty")
	}
	if cfg.Agent.Transcript.MaxTokens <= 0 {
		ve.Add("agent.transcript.max_tokens must be > 0")
	}
	if cfg.Agent.Transcript.KeepRecent < 0 {
		ve.Add("agent.transcript.keep_recent must be >= 0")
	}
}

var validProviderTypes = map[string]bool{
	"anthropic": true,
	"bedrock":   true,
}

func validateLLM(cfg *Config, ve *ValidationError) {
	if cfg.LLM.DefaultProvider == "" {
		ve.Add("llm.default_provider must not be empty")
	}
	if cfg.LLM.MaxTokens <= 0 {
		ve.Add("llm.max_tokens must be > 0")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 1 {
		ve.Add("llm.temperature must be between 0 and 1")
	}
	if cfg.LLM.CircuitBreaker.Enabled && cfg.LLM.CircuitBreaker.MaxFailures == 0 {
		ve.Add("llm.circuit_breaker.max_failures must be > 0 when circuit breaker is enabled")
	}
	if cfg.LLM.RateLimit.Enabled {
		if cfg.LLM.RateLimit.RPS <= 0 {
			ve.Add("llm.rate_limit.rps must be > 0 when rate limit is enabled")
		}
		if cfg.LLM.RateLimit.Burst <= 0 {
			ve.Add("llm.rate_limit.burst must be > 0 when rate limit is enabled")
		}
	}

	if len(cfg.LLM.Providers) == 0 {
		return
	}

	seen := make(map[string]bool)
	foundDefault := false
	for i, p := range cfg.LLM.Providers {
		if p.Name == "" {
			ve.Add("llm.providers[%d].name must not be empty", i)
			continue
		}
		if seen[p.Name] {
			ve.Add("llm.providers[%d]: duplicate provider name %q", i, p.Name)
		}
		seen[p.Name] = true

		if p.Type != "" && !validProviderTypes[p.Type] {
			ve.Add("llm.providers[%d].type %q is invalid (want: anthropic, bedrock)", i, p.Type)
		}
		if p.APIKey == "" && p.Type != "bedrock" {
			ve.Add("llm.providers[%d] (%s): api_key is empty (set via OURAAI_LLM_PROVIDER_%s_API_KEY)",
				i, p.Name, strings.ToUpper(p.Name))
		}
		if p.Type == "bedrock" && p.Region == "" {
			ve.Add("llm.providers[%d] (%s): region is required for bedrock provider", i, p.Name)
		}
		if p.Model == "" {
			ve.Add("llm.providers[%d] (%s): model must not be empty", i, p.Name)
		}
		if p.Name == cfg.LLM.DefaultProvider {
			foundDefault = true
		}
	}

	if !foundDefault && cfg.LLM.DefaultProvider != "" {
		ve.Add("llm.default_provider %q does not match any configured provider", cfg.LLM.DefaultProvider)
	}
}

var validEmbeddingProviders = map[string]bool{
	"ollama": true,
}

func validateMemory(cfg *Config, ve *ValidationError) {
	if cfg.Memory.DataDir == "" {
		ve.Add("memory.data_dir must not be empty")
	}
	if !validEmbeddingProviders[cfg.Memory.Embedding.Provider] {
		ve.Add("memory.embedding.provider %q is invalid (want: ollama)", cfg.Memory.Embedding.Provider)
	}
	if cfg.Memory.Embedding.BaseURL == "" {
		ve.Add("memory.embedding.base_url must not be empty")
	}
	if cfg.Memory.Embedding.Model == "" {
		ve.Add("memory.embedding.model must not be empty")
	}
	if cfg.Memory.Embedding.Dimensions <= 0 {
		ve.Add("memory.embedding.dimensions must be > 0")
	}
	validateSearch(cfg, ve)
}

func validateSearch(cfg *Config, ve *ValidationError) {
	s := cfg.Memory.Search
	if s.DefaultThreshold < 0 || s.DefaultThreshold > 1 {
		ve.Add("memory.search.default_threshold must be between 0 and 1")
	}
	if s.DefaultLimit <= 0 {
		ve.Add("memory.search.default_limit must be > 0")
	}
	if s.EmbeddingCacheSize < 0 {
		ve.Add("memory.search.embedding_cache_size must be >= 0")
	}
}

func validateHealth(cfg *Config, ve *ValidationError) {
	if cfg.Health.DBPath == "" {
		ve.Add("health.db_path must not be empty")
	}
}

var validChannelTypes = map[string]bool{
	"discord": true,
	"slack":   true,
}

func validateChannels(cfg *Config, ve *ValidationError) {
	for i, ch := range cfg.Channels {
		if !validChannelTypes[ch.Type] {
			ve.Add("channels[%d].type %q is invalid (want: discord, slack)", i, ch.Type)
			continue
		}
		switch ch.Type {
		case "discord":
			if ch.Discord == nil || ch.Discord.Token == "" {
				ve.Add("channels[%d] (discord): discord.token is required (set via OURAAI_DISCORD_TOKEN)", i)
			}
		case "slack":
			if ch.Slack == nil {
				ve.Add("channels[%d] (slack): slack config section is required", i)
			} else {
				if ch.Slack.BotToken == "" {
					ve.Add("channels[%d] (slack): slack.bot_token is required (set via OURAAI_SLACK_BOT_TOKEN)", i)
				}
				if ch.Slack.AppToken == "" {
					ve.Add("channels[%d] (slack): slack.app_token is required (set via OURAAI_SLACK_APP_TOKEN)", i)
				}
			}
		}
	}
}

var validTaskActions = map[string]bool{
	"compute_baselines": true,
	"reap_threads":      true,
}

func validateScheduler(cfg *Config, ve *ValidationError) {
	if !cfg.Scheduler.Enabled {
		return
	}
	for i, t := range cfg.Scheduler.Tasks {
		if t.Name == "" {
			ve.Add("scheduler.tasks[%d].name is required", i)
		}
		if t.Schedule == "" {
			ve.Add("scheduler.tasks[%d].schedule is required", i)
		}
		if !validTaskActions[t.Action] {
			ve.Add("scheduler.tasks[%d].action %q is invalid (want: compute_baselines, reap_threads)", i, t.Action)
			continue
		}
		if t.Action == "compute_baselines" && t.UserID == "" {
			ve.Add("scheduler.tasks[%d] (compute_baselines): user_id is required", i)
		}
		if t.WindowDays < 0 {
			ve.Add("scheduler.tasks[%d].window_days must be >= 0", i)
		}
		if t.MaxAge < 0 {
			ve.Add("scheduler.tasks[%d].max_age must be >= 0", i)
		}
	}
}

func validateGateway(cfg *Config, ve *ValidationError) {
	if !cfg.Gateway.Enabled {
		return
	}
	if cfg.Gateway.Addr == "" {
		ve.Add("gateway.addr is required when gateway is enabled")
		return
	}
	if _, _, err := net.SplitHostPort(cfg.Gateway.Addr); err != nil {
		ve.Add("gateway.addr %q is not a valid host:port", cfg.Gateway.Addr)
	}
}
