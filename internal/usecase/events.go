package usecase

import (
	"context"
	"encoding/json"
	"time"

	"oura-ai/internal/domain"
)

// publishEvent publishes a domain event when a bus is configured. Payloads
// that fail to marshal are published without one; events are best-effort.
func publishEvent(bus domain.EventBus, ctx context.Context, eventType domain.EventType, threadID string, payload any) {
	if bus == nil {
		return
	}
	var raw json.RawMessage
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			raw = data
		}
	}
	bus.Publish(ctx, domain.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		ThreadID:  threadID,
		Payload:   raw,
	})
}
