package llm

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"oura-ai/internal/domain"
	"oura-ai/internal/infra/config"
)

// RateLimitedProvider wraps an LLMProvider with client-side request throttling.
// Calls block until a token is available, so a burst of specialist fan-outs
// cannot trip the upstream API's rate limits.
type RateLimitedProvider struct {
	inner   domain.LLMProvider
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewRateLimitedProvider wraps inner with a token-bucket limiter.
func NewRateLimitedProvider(inner domain.LLMProvider, cfg config.RateLimitConfig, logger *slog.Logger) *RateLimitedProvider {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Chat implements domain.LLMProvider. It waits for limiter capacity before
// delegating; a cancelled context aborts the wait.
func (p *RateLimitedProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	if p.limiter.Tokens() < 1 {
		p.logger.Debug("llm request throttled", "provider", p.inner.Name())
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, domain.WrapOp("ratelimit.wait", err)
	}
	return p.inner.Chat(ctx, req)
}

// Name implements domain.LLMProvider.
func (p *RateLimitedProvider) Name() string { return p.inner.Name() }

var _ domain.LLMProvider = (*RateLimitedProvider)(nil)
