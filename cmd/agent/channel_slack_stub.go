//go:build !slack

package main

import (
	"fmt"
	"log/slog"

	"oura-ai/internal/domain"
	"oura-ai/internal/infra/config"
)

func buildSlackChannel(_ config.ChannelConfig, _ *slog.Logger) (domain.Channel, error) {
	return nil, fmt.Errorf("slack channel requires build with -tags slack")
}
