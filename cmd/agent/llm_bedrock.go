//go:build bedrock

package main

import (
	"log/slog"

	"oura-ai/internal/adapter/llm"
	"oura-ai/internal/domain"
	"oura-ai/internal/infra/config"
)

func createBedrockProvider(pc config.ProviderConfig, log *slog.Logger) (domain.LLMProvider, error) {
	return llm.NewBedrockProvider(pc, log)
}
