package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"oura-ai/internal/domain"
)

// --- Mocks ---

// scriptedLLM replays a fixed sequence of responses and records every request.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []scriptedStep
	requests  []domain.ChatRequest
	callIdx   int
}

type scriptedStep struct {
	msg domain.Message
	err error
}

func textStep(content string) scriptedStep {
	return scriptedStep{msg: domain.Message{Role: domain.RoleAssistant, Content: content}}
}

func toolStep(calls ...domain.ToolCall) scriptedStep {
	return scriptedStep{msg: domain.Message{Role: domain.RoleAssistant, ToolCalls: calls}}
}

func errStep(err error) scriptedStep {
	return scriptedStep{err: err}
}

func (m *scriptedLLM) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.callIdx >= len(m.responses) {
		return &domain.ChatResponse{
			Message: domain.Message{Role: domain.RoleAssistant, Content: "fallback"},
		}, nil
	}
	step := m.responses[m.callIdx]
	m.callIdx++
	if step.err != nil {
		return nil, step.err
	}
	return &domain.ChatResponse{Message: step.msg}, nil
}

func (m *scriptedLLM) Name() string { return "scripted" }

func (m *scriptedLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callIdx
}

func (m *scriptedLLM) request(i int) domain.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[i]
}

// countingTool records executions and returns a fixed result.
type countingTool struct {
	name   string
	result string
	mu     sync.Mutex
	execs  int
}

func (t *countingTool) Name() string        { return t.name }
func (t *countingTool) Description() string { return "counting test tool" }
func (t *countingTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{Name: t.name, Description: t.Description(), Parameters: json.RawMessage(`{"type":"object"}`)}
}
func (t *countingTool) Execute(_ context.Context, _ json.RawMessage) (*domain.ToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.execs++
	return &domain.ToolResult{Content: t.result}, nil
}
func (t *countingTool) executions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.execs
}

type failingTool struct {
	name string
}

func (t *failingTool) Name() string        { return t.name }
func (t *failingTool) Description() string { return "failing test tool" }
func (t *failingTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{Name: t.name}
}
func (t *failingTool) Execute(_ context.Context, _ json.RawMessage) (*domain.ToolResult, error) {
	return nil, fmt.Errorf("tool execution failed")
}

// mapExecutor is a minimal ToolExecutor over a name map.
type mapExecutor struct {
	tools map[string]domain.Tool
}

func newMapExecutor(tools ...domain.Tool) *mapExecutor {
	m := &mapExecutor{tools: make(map[string]domain.Tool)}
	for _, t := range tools {
		m.tools[t.Name()] = t
	}
	return m
}

func (m *mapExecutor) Get(name string) (domain.Tool, error) {
	t, ok := m.tools[name]
	if !ok {
		return nil, domain.NewDomainError("mapExecutor.Get", domain.ErrToolNotFound, name)
	}
	return t, nil
}

func (m *mapExecutor) Schemas() []domain.ToolSchema {
	schemas := make([]domain.ToolSchema, 0, len(m.tools))
	for _, t := range m.tools {
		schemas = append(schemas, t.Schema())
	}
	return schemas
}

// fakeSpecialist returns a canned answer or error and records what it saw.
type fakeSpecialist struct {
	name   domain.AgentName
	answer string
	err    error
	delay  time.Duration

	mu      sync.Mutex
	invokes int
	lastReq domain.InvocationRequest
}

func (f *fakeSpecialist) Name() domain.AgentName    { return f.name }
func (f *fakeSpecialist) SystemPrompt() string      { return "fake" }
func (f *fakeSpecialist) Tools() []domain.ToolSchema { return nil }

func (f *fakeSpecialist) Invoke(ctx context.Context, req domain.InvocationRequest) (*domain.InvocationResult, error) {
	f.mu.Lock()
	f.invokes++
	f.lastReq = req
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.InvocationResult{Agent: f.name, Answer: f.answer}, nil
}

func (f *fakeSpecialist) invoked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invokes
}

func (f *fakeSpecialist) request() domain.InvocationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *ConversationManager {
	t.Helper()
	return NewConversationManager(t.TempDir())
}
