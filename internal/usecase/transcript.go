package usecase

import (
	"fmt"
	"log/slog"

	"github.com/pkoukk/tiktoken-go"

	"oura-ai/internal/domain"
	"oura-ai/internal/infra/config"
)

// TranscriptTrimmer keeps specialist histories inside a token budget.
// Long-running threads accumulate tool-result messages far faster than
// plain chat; trimming drops the oldest turns while always retaining a
// recent window, so a specialist resumes with context it can afford.
type TranscriptTrimmer struct {
	enc        *tiktoken.Tiktoken
	maxTokens  int
	keepRecent int
	logger     *slog.Logger
}

// NewTranscriptTrimmer creates a trimmer with the given budget.
func NewTranscriptTrimmer(cfg config.TranscriptConfig, logger *slog.Logger) (*TranscriptTrimmer, error) {
	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8000
	}
	keepRecent := cfg.KeepRecent
	if keepRecent <= 0 {
		keepRecent = 10
	}

	return &TranscriptTrimmer{
		enc:        enc,
		maxTokens:  maxTokens,
		keepRecent: keepRecent,
		logger:     logger,
	}, nil
}

// CountMessages returns the token count of a message sequence, including
// tool-call payloads.
func (t *TranscriptTrimmer) CountMessages(msgs []domain.Message) int {
	total := 0
	for _, m := range msgs {
		total += len(t.enc.Encode(m.Content, nil, nil))
		for _, call := range m.ToolCalls {
			total += len(t.enc.Encode(call.Name, nil, nil))
			total += len(t.enc.Encode(string(call.Arguments), nil, nil))
		}
		// Per-message framing overhead (role, separators).
		total += 4
	}
	return total
}

// Trim returns a message sequence within the token budget, dropping whole
// messages from the front. The most recent keepRecent messages survive even
// when they alone exceed the budget; a trimmed sequence never starts with an
// orphaned tool result.
func (t *TranscriptTrimmer) Trim(msgs []domain.Message) []domain.Message {
	if t.CountMessages(msgs) <= t.maxTokens {
		return msgs
	}

	trimmed := msgs
	for len(trimmed) > t.keepRecent && t.CountMessages(trimmed) > t.maxTokens {
		trimmed = trimmed[1:]
	}
	// A tool result without its requesting assistant message confuses the
	// model; drop leading tool messages.
	for len(trimmed) > 0 && trimmed[0].Role == domain.RoleTool {
		trimmed = trimmed[1:]
	}

	if dropped := len(msgs) - len(trimmed); dropped > 0 {
		t.logger.Debug("transcript trimmed",
			"dropped", dropped,
			"kept", len(trimmed),
			"tokens", t.CountMessages(trimmed),
		)
	}
	return trimmed
}
