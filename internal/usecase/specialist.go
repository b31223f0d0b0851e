package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"oura-ai/internal/domain"
	"oura-ai/internal/infra/tracer"
)

// fallbackAnswer is returned when a specialist finishes a turn without any
// usable assistant text, e.g. when the tool-call cap forces completion before
// the model produced a summary.
const fallbackAnswer = "I couldn't generate a response."

// SpecialistDeps holds injected dependencies shared by every specialist.
type SpecialistDeps struct {
	Provider    domain.LLMProvider
	Store       domain.ConversationStore
	Trimmer     *TranscriptTrimmer // optional, nil = no transcript budget
	Bus         domain.EventBus    // optional, nil = no events
	Logger      *slog.Logger
	MaxTokens   int
	Temperature float64
}

// SpecialistAgent runs the reason/act loop for one focused domain expert.
// Each specialist owns its tool registry and resumes its own private thread,
// so parallel specialists never contend over shared transcript state.
type SpecialistAgent struct {
	name         domain.AgentName
	systemPrompt string
	tools        domain.ToolExecutor
	deps         SpecialistDeps
}

// NewSpecialist creates a specialist with the given identity and tools.
func NewSpecialist(name domain.AgentName, systemPrompt string, tools domain.ToolExecutor, deps SpecialistDeps) *SpecialistAgent {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &SpecialistAgent{
		name:         name,
		systemPrompt: systemPrompt,
		tools:        tools,
		deps:         deps,
	}
}

// Name returns the specialist's routable identity.
func (s *SpecialistAgent) Name() domain.AgentName { return s.name }

// SystemPrompt returns the specialist's persona prompt.
func (s *SpecialistAgent) SystemPrompt() string { return s.systemPrompt }

// Tools returns the schemas of the specialist's registered tools.
func (s *SpecialistAgent) Tools() []domain.ToolSchema { return s.tools.Schemas() }

// Invoke processes one routed query through the reason/act loop and returns
// the specialist's final answer. The loop walks an explicit state machine:
// reasoning asks the model for the next step, calling_tools executes the
// requested tools in parallel, and done extracts the answer. Accumulated tool
// calls are capped at domain.MaxToolCalls per turn; hitting the cap forces
// completion with whatever the specialist has so far, which is a normal
// outcome rather than an error.
func (s *SpecialistAgent) Invoke(ctx context.Context, req domain.InvocationRequest) (*domain.InvocationResult, error) {
	ctx, span := tracer.StartSpan(ctx, "specialist.invoke",
		trace.WithAttributes(tracer.StringAttr("agent.name", string(s.name))),
	)
	defer span.End()

	threadID := domain.SpecialistThreadID(req.ThreadID, s.name)

	history := s.loadHistory(ctx, threadID)

	userMsg := domain.Message{
		Role:      domain.RoleUser,
		Content:   req.Query,
		Timestamp: time.Now(),
	}

	// msgs is the full prompt context; newMsgs is what gets persisted.
	msgs := make([]domain.Message, 0, len(history)+2)
	msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: s.systemPrompt})
	msgs = append(msgs, history...)
	msgs = append(msgs, userMsg)
	newMsgs := []domain.Message{userMsg}

	toolCalls := 0
	capReached := false

	for state := domain.StateReasoning; state != domain.StateDone; {
		switch state {
		case domain.StateReasoning:
			resp, err := s.chat(ctx, msgs)
			if err != nil {
				tracer.RecordError(span, err)
				return nil, &domain.DomainError{
					Op:     "Specialist.Invoke",
					Err:    domain.ErrSpecialist,
					Detail: fmt.Sprintf("%s: %v", s.name, err),
				}
			}

			assistant := resp.Message
			if assistant.Timestamp.IsZero() {
				assistant.Timestamp = time.Now()
			}
			msgs = append(msgs, assistant)
			newMsgs = append(newMsgs, assistant)

			s.deps.Logger.Debug("specialist reasoning step",
				"agent", s.name,
				"tool_calls", len(assistant.ToolCalls),
				"accumulated", toolCalls,
			)

			if !assistant.HasToolCalls() {
				state = domain.StateDone
				break
			}

			toolCalls += len(assistant.ToolCalls)
			if toolCalls >= domain.MaxToolCalls {
				// The just-requested calls are counted but never executed.
				s.deps.Logger.Warn("max tool calls reached, forcing completion",
					"agent", s.name, "tool_calls", toolCalls)
				span.AddEvent("tool_cap_reached", trace.WithAttributes(
					tracer.IntAttr("tool_calls", toolCalls),
				))
				publishEvent(s.deps.Bus, ctx, domain.EventToolCapReached, req.ThreadID, map[string]any{
					"agent":      string(s.name),
					"tool_calls": toolCalls,
				})
				capReached = true
				state = domain.StateDone
				break
			}
			state = domain.StateCallingTools

		case domain.StateCallingTools:
			last := msgs[len(msgs)-1]
			results := s.executeCalls(ctx, req.ThreadID, last.ToolCalls)
			msgs = append(msgs, results...)
			newMsgs = append(newMsgs, results...)
			state = domain.StateReasoning
		}
	}

	answer := extractAnswer(msgs)

	if err := s.deps.Store.Append(ctx, threadID, newMsgs...); err != nil {
		s.deps.Logger.Warn("failed to persist specialist transcript",
			"agent", s.name, "thread", threadID, "error", err)
	}

	tracer.SetOK(span)
	return &domain.InvocationResult{
		Agent:      s.name,
		Answer:     answer,
		ToolCalls:  toolCalls,
		CapReached: capReached,
	}, nil
}

// loadHistory restores the specialist's private transcript. Load failures
// degrade to an empty history; losing context is preferable to failing the
// whole turn.
func (s *SpecialistAgent) loadHistory(ctx context.Context, threadID string) []domain.Message {
	conv, err := s.deps.Store.Load(ctx, threadID)
	if err != nil {
		s.deps.Logger.Warn("failed to load specialist history",
			"agent", s.name, "thread", threadID, "error", err)
		return nil
	}
	history := conv.Messages
	if s.deps.Trimmer != nil {
		history = s.deps.Trimmer.Trim(history)
	}
	return RepairTranscript(history)
}

// chat performs one LLM call with the specialist's tools attached.
func (s *SpecialistAgent) chat(ctx context.Context, msgs []domain.Message) (*domain.ChatResponse, error) {
	llmCtx, llmSpan := tracer.StartSpan(ctx, "specialist.llm_call")
	defer llmSpan.End()

	resp, err := s.deps.Provider.Chat(llmCtx, domain.ChatRequest{
		Messages:    msgs,
		Tools:       s.tools.Schemas(),
		MaxTokens:   s.deps.MaxTokens,
		Temperature: s.deps.Temperature,
	})
	if err != nil {
		tracer.RecordError(llmSpan, err)
		return nil, err
	}
	return resp, nil
}

// executeCalls runs a batch of tool calls in parallel. Results are collected
// in an indexed slice to preserve the original call order.
func (s *SpecialistAgent) executeCalls(ctx context.Context, threadID string, calls []domain.ToolCall) []domain.Message {
	results := make([]domain.Message, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(idx int, c domain.ToolCall) {
			defer wg.Done()
			results[idx] = s.executeTool(ctx, threadID, c)
		}(i, call)
	}
	wg.Wait()
	return results
}

// executeTool runs a single tool call and returns the result as a Message.
// Tool failures become result content so the model can recover or report.
func (s *SpecialistAgent) executeTool(ctx context.Context, threadID string, call domain.ToolCall) domain.Message {
	ctx, span := tracer.StartSpan(ctx, "specialist.execute_tool",
		trace.WithAttributes(tracer.StringAttr("tool.name", call.Name)),
	)
	defer span.End()

	toolMsg := func(content string) domain.Message {
		return domain.Message{
			Role:    domain.RoleTool,
			Name:    call.Name,
			Content: content,
			ToolCalls: []domain.ToolCall{{
				ID:   call.ID,
				Name: call.Name,
			}},
			Timestamp: time.Now(),
		}
	}

	tool, err := s.tools.Get(call.Name)
	if err != nil {
		tracer.RecordError(span, err)
		return toolMsg(err.Error())
	}

	publishEvent(s.deps.Bus, ctx, domain.EventToolCallStarted, threadID, map[string]string{
		"agent": string(s.name),
		"tool":  call.Name,
	})
	result, err := tool.Execute(ctx, call.Arguments)
	publishEvent(s.deps.Bus, ctx, domain.EventToolCallCompleted, threadID, map[string]string{
		"agent":   string(s.name),
		"tool":    call.Name,
		"success": fmt.Sprintf("%v", err == nil),
	})

	if err != nil {
		tracer.RecordError(span, err)
		return toolMsg(err.Error())
	}

	tracer.SetOK(span)
	return toolMsg(result.Content)
}

// extractAnswer walks the transcript backwards for the last assistant message
// that carries text and requests no tools. A forced completion leaves the
// final assistant message holding unexecuted tool calls, so the walk skips it.
func extractAnswer(msgs []domain.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Role == domain.RoleAssistant && m.Content != "" && !m.HasToolCalls() {
			return m.Content
		}
	}
	return fallbackAnswer
}
