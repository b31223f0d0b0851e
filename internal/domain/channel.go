package domain

import "context"

// InboundMessage is a message received from a channel (user input).
type InboundMessage struct {
	Content     string
	ChannelName string

	// Enriched fields, all zero-value safe.
	SenderID   string            `json:"sender_id,omitempty"`
	SenderName string            `json:"sender_name,omitempty"`
	GroupID    string            `json:"group_id,omitempty"`  // channel/room the message arrived in
	MessageID  string            `json:"message_id,omitempty"`
	ThreadID   string            `json:"thread_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	IsMention  bool              `json:"is_mention,omitempty"`
}

// OutboundMessage is a message sent to a channel (agent response).
type OutboundMessage struct {
	Content string
	IsError bool

	// Enriched fields, all zero-value safe.
	GroupID   string            `json:"group_id,omitempty"`
	ReplyToID string            `json:"reply_to_id,omitempty"` // inbound message being answered
	ThreadID  string            `json:"thread_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// MessageHandler is a callback the channel invokes when it receives input.
type MessageHandler func(ctx context.Context, msg InboundMessage) error

// Channel is the interface for user-facing I/O adapters.
type Channel interface {
	Start(ctx context.Context, handler MessageHandler) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg OutboundMessage) error
	Name() string
}
