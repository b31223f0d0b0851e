package tool

import (
	"context"
	"encoding/json"

	"oura-ai/internal/domain"
)

// simpleTool binds a name, description, and JSON schema to a run function.
// Toolsets construct one per operation the model can call.
type simpleTool struct {
	name        string
	description string
	parameters  json.RawMessage
	run         func(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error)
}

func (t *simpleTool) Name() string        { return t.name }
func (t *simpleTool) Description() string { return t.description }

func (t *simpleTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.name,
		Description: t.description,
		Parameters:  t.parameters,
	}
}

func (t *simpleTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return t.run(ctx, params)
}

// noParamsSchema is the schema for tools the model calls without arguments.
var noParamsSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// daysSchema is the schema shared by the trend tools: an optional look-back
// window in days.
var daysSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"days": {
			"type": "integer",
			"description": "Number of days to analyze (default 7)",
			"minimum": 1
		}
	}
}`)

// daysParams is the parameter struct behind daysSchema.
type daysParams struct {
	Days int `json:"days"`
}

// window returns the look-back span, applying the default.
func (p daysParams) window() int {
	if p.Days <= 0 {
		return 7
	}
	return p.Days
}
