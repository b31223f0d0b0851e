package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"oura-ai/internal/domain"
	"oura-ai/internal/infra/tracer"
)

// genericErrorReply is returned for any failure inside the pipeline. Users
// never see raw error text.
const genericErrorReply = "I encountered an error processing your question. " +
	"Please try again or rephrase your question."

// directReplyPrompt drives the supervisor's own answer when routing decides
// no specialist is needed.
const directReplyPrompt = "You are a friendly health assistant. Respond helpfully and warmly " +
	"to greetings and general questions. Keep it brief."

// SupervisorDeps holds injected dependencies for the supervisor.
type SupervisorDeps struct {
	Provider    domain.LLMProvider
	Registry    *SpecialistRegistry
	Store       domain.ConversationStore
	Trimmer     *TranscriptTrimmer // optional, bounds direct-reply history
	Bus         domain.EventBus    // optional, nil = no events
	Logger      *slog.Logger
	Timeout     time.Duration // per-turn budget, 0 = unbounded
	MaxTokens   int
	Temperature float64
}

// Supervisor orchestrates one user turn: it classifies the query, fans out to
// the routed specialists in parallel, and synthesizes their answers into a
// single reply.
type Supervisor struct {
	deps SupervisorDeps
}

// NewSupervisor creates a supervisor with the given dependencies.
func NewSupervisor(deps SupervisorDeps) *Supervisor {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Supervisor{deps: deps}
}

// Process handles one inbound message end to end and always returns reply
// text. Pipeline failures are logged and collapse into a generic apology so
// channel adapters never surface internals to the user.
func (s *Supervisor) Process(ctx context.Context, message, userID, channelID, sessionID string) string {
	ctx, span := tracer.StartSpan(ctx, "supervisor.process")
	defer span.End()

	threadID := domain.ThreadID(userID, channelID)
	ctx = domain.ContextWithUserID(ctx, userID)
	ctx = domain.ContextWithSessionID(ctx, sessionID)

	if s.deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.Timeout)
		defer cancel()
	}

	reply, err := s.processInner(ctx, threadID, userID, message)
	if err != nil {
		s.deps.Logger.Error("supervisor pipeline failed",
			"thread", threadID,
			"error", err,
			"code", domain.ErrorCodeOf(err),
		)
		tracer.RecordError(span, err)
		return genericErrorReply
	}

	now := time.Now()
	if saveErr := s.deps.Store.Append(ctx, threadID,
		domain.Message{Role: domain.RoleUser, Content: message, Timestamp: now},
		domain.Message{Role: domain.RoleAssistant, Content: reply, Timestamp: now},
	); saveErr != nil {
		s.deps.Logger.Warn("failed to persist exchange", "thread", threadID, "error", saveErr)
	}

	tracer.SetOK(span)
	return reply
}

// specialistOutput pairs one routed agent with its answer text.
type specialistOutput struct {
	agent domain.AgentName
	text  string
}

func (s *Supervisor) processInner(ctx context.Context, threadID, userID, message string) (string, error) {
	agents, decision, err := s.route(ctx, message)
	if err != nil {
		return "", err
	}

	s.deps.Logger.Info("routing decision", "thread", threadID, "agents", agents, "raw", decision)
	publishEvent(s.deps.Bus, ctx, domain.EventQueryRouted, threadID, map[string]any{
		"agents":   agents,
		"decision": decision,
	})

	if len(agents) == 1 && agents[0] == domain.AgentSupervisor {
		return s.directReply(ctx, threadID, message)
	}

	outputs := s.fanOut(ctx, threadID, userID, message, agents)
	return s.synthesize(ctx, threadID, outputs)
}

// route classifies the query into specialist names. The classification call
// uses only the new message, not thread history; routing intent is judged per
// turn. Unknown names are dropped, duplicates collapse, and an empty result
// falls back to the supervisor's direct-reply path.
func (s *Supervisor) route(ctx context.Context, message string) ([]domain.AgentName, string, error) {
	ctx, span := tracer.StartSpan(ctx, "supervisor.route")
	defer span.End()

	resp, err := s.chat(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: routingPrompt},
		{Role: domain.RoleUser, Content: message},
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, "", &domain.DomainError{
			Op:     "Supervisor.Route",
			Err:    domain.ErrClassification,
			Detail: err.Error(),
		}
	}

	decision := strings.ToLower(strings.TrimSpace(resp.Message.Content))
	agents := parseRouting(decision, s.deps.Registry)

	span.SetAttributes(tracer.StringAttr("routing.decision", decision))
	return agents, decision, nil
}

// parseRouting turns the raw classification text into a validated agent list.
func parseRouting(decision string, registry *SpecialistRegistry) []domain.AgentName {
	var agents []domain.AgentName
	seen := make(map[domain.AgentName]bool)
	for _, part := range strings.Split(decision, ",") {
		name := domain.AgentName(strings.TrimSpace(part))
		if name != domain.AgentSupervisor && !registry.Has(name) {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		agents = append(agents, name)
	}
	if len(agents) == 0 {
		agents = []domain.AgentName{domain.AgentSupervisor}
	}
	return agents
}

// directReply answers greetings and general questions without delegating.
// Thread history is included so follow-ups stay coherent.
func (s *Supervisor) directReply(ctx context.Context, threadID, message string) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "supervisor.direct_reply")
	defer span.End()

	var history []domain.Message
	if conv, err := s.deps.Store.Load(ctx, threadID); err != nil {
		s.deps.Logger.Warn("failed to load thread history", "thread", threadID, "error", err)
	} else {
		history = conv.Messages
		if s.deps.Trimmer != nil {
			history = s.deps.Trimmer.Trim(history)
		}
	}

	msgs := make([]domain.Message, 0, len(history)+2)
	msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: directReplyPrompt})
	msgs = append(msgs, history...)
	msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: message})

	resp, err := s.chat(ctx, msgs)
	if err != nil {
		tracer.RecordError(span, err)
		return "", domain.WrapOp("Supervisor.DirectReply", err)
	}
	tracer.SetOK(span)
	return resp.Message.Content, nil
}

// fanOut invokes every routed specialist concurrently. A mixed routing that
// names the supervisor alongside specialists drops the supervisor. Specialist
// failures never abort the turn; they surface as error text in that agent's
// slot so synthesis can still use the others.
func (s *Supervisor) fanOut(ctx context.Context, threadID, userID, message string, agents []domain.AgentName) []specialistOutput {
	ctx, span := tracer.StartSpan(ctx, "supervisor.fan_out",
		trace.WithAttributes(tracer.IntAttr("agents", len(agents))),
	)
	defer span.End()

	var specialists []domain.AgentName
	for _, a := range agents {
		if a != domain.AgentSupervisor {
			specialists = append(specialists, a)
		}
	}

	outputs := make([]specialistOutput, len(specialists))
	var wg sync.WaitGroup
	for i, name := range specialists {
		wg.Add(1)
		go func(idx int, agent domain.AgentName) {
			defer wg.Done()
			outputs[idx] = specialistOutput{
				agent: agent,
				text:  s.invokeSpecialist(ctx, threadID, userID, message, agent),
			}
		}(i, name)
	}
	wg.Wait()
	return outputs
}

// invokeSpecialist runs one specialist and returns its answer, or an error
// string for a failed invocation.
func (s *Supervisor) invokeSpecialist(ctx context.Context, threadID, userID, message string, agent domain.AgentName) string {
	publishEvent(s.deps.Bus, ctx, domain.EventSpecialistStarted, threadID, map[string]string{
		"agent": string(agent),
	})

	specialist, err := s.deps.Registry.Get(agent)
	if err != nil {
		s.deps.Logger.Error("specialist lookup failed", "agent", agent, "error", err)
		publishEvent(s.deps.Bus, ctx, domain.EventSpecialistFailed, threadID, map[string]string{
			"agent": string(agent), "error": err.Error(),
		})
		return fmt.Sprintf("Error: %s", err)
	}

	result, err := specialist.Invoke(ctx, domain.InvocationRequest{
		ThreadID: threadID,
		UserID:   userID,
		Query:    message,
	})
	if err != nil {
		s.deps.Logger.Error("specialist invocation failed", "agent", agent, "error", err)
		publishEvent(s.deps.Bus, ctx, domain.EventSpecialistFailed, threadID, map[string]string{
			"agent": string(agent), "error": err.Error(),
		})
		return fmt.Sprintf("Error: %s", err)
	}

	publishEvent(s.deps.Bus, ctx, domain.EventSpecialistDone, threadID, map[string]any{
		"agent":       string(agent),
		"tool_calls":  result.ToolCalls,
		"cap_reached": result.CapReached,
	})
	return result.Answer
}

// synthesize merges specialist outputs into one reply. A single output passes
// through untouched; multiple outputs are combined by an LLM call whose
// prompt lists each specialist's answer under its display name, in routing
// order.
func (s *Supervisor) synthesize(ctx context.Context, threadID string, outputs []specialistOutput) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "supervisor.synthesize")
	defer span.End()

	var final string
	switch len(outputs) {
	case 0:
		return "", domain.NewDomainError("Supervisor.Synthesize", domain.ErrEmptyRouting, "no specialist outputs")
	case 1:
		final = outputs[0].text
	default:
		blocks := make([]string, len(outputs))
		for i, out := range outputs {
			blocks[i] = fmt.Sprintf("### %s\n%s", out.agent.Title(), out.text)
		}
		prompt := fmt.Sprintf(synthesisPrompt, strings.Join(blocks, "\n\n"))

		resp, err := s.chat(ctx, []domain.Message{
			{Role: domain.RoleSystem, Content: prompt},
		})
		if err != nil {
			tracer.RecordError(span, err)
			return "", &domain.DomainError{
				Op:     "Supervisor.Synthesize",
				Err:    domain.ErrSynthesis,
				Detail: err.Error(),
			}
		}
		final = resp.Message.Content
	}

	publishEvent(s.deps.Bus, ctx, domain.EventSynthesisCompleted, threadID, map[string]int{
		"outputs": len(outputs),
	})
	tracer.SetOK(span)
	return final, nil
}

// chat performs one LLM call with the supervisor's sampling settings. The
// supervisor itself never uses tools.
func (s *Supervisor) chat(ctx context.Context, msgs []domain.Message) (*domain.ChatResponse, error) {
	return s.deps.Provider.Chat(ctx, domain.ChatRequest{
		Messages:    msgs,
		MaxTokens:   s.deps.MaxTokens,
		Temperature: s.deps.Temperature,
	})
}

const routingPrompt = `You are a Health Assistant Supervisor. Your job is to route user queries to the right specialist agent(s).

## Available Specialists

1. **sleep_analyst** - Sleep questions
   - How did I sleep? Sleep quality, duration, stages
   - Sleep trends, patterns, efficiency
   - Deep sleep, REM, light sleep analysis
   - Optimal bedtime recommendations

2. **fitness_coach** - Activity and fitness questions
   - Steps, calories, movement, activity
   - Exercise readiness, recovery status
   - Workouts, training, exercise
   - HRV, resting heart rate

3. **memory_keeper** - Goals and memory questions
   - Setting health goals ("I want to sleep 8 hours")
   - Recalling past advice ("What did you tell me about...")
   - Tracking progress toward goals
   - User baselines and history

4. **data_auditor** - Data quality questions
   - Is my ring syncing?
   - Why is my data old?
   - Data freshness, collection status
   - Troubleshooting sync issues

## Routing Rules

1. **Single Domain**: Route to one specialist
   - "How did I sleep?" → sleep_analyst
   - "Should I work out?" → fitness_coach
   - "Set a goal for 8 hours sleep" → memory_keeper
   - "Is my data syncing?" → data_auditor

2. **Multi-Domain**: Route to multiple specialists (comma-separated)
   - "How did I sleep and am I ready to exercise?" → sleep_analyst,fitness_coach
   - "What's my sleep goal progress?" → memory_keeper,sleep_analyst

3. **Greetings/General**: Handle directly
   - "Hello", "Hi", "Thanks" → supervisor

## Your Response

Respond with ONLY the agent name(s) to route to, separated by commas.
If it's a greeting or unclear question, respond with "supervisor".

Examples:
- "How was my sleep?" → sleep_analyst
- "Steps today?" → fitness_coach
- "Remember my HRV advice" → memory_keeper
- "Is my ring working?" → data_auditor
- "Sleep and activity trends" → sleep_analyst,fitness_coach
- "Hello!" → supervisor
`

const synthesisPrompt = `You are a Health Assistant synthesizing responses from specialist agents.

Given the specialist responses below, create a unified, helpful response for the user.

## Guidelines
- Don't repeat information across specialists
- Highlight the most actionable insights
- If there are data quality warnings, mention them prominently
- Be conversational and supportive
- Keep the response concise but complete
- Use markdown formatting for readability

## Specialist Responses
%s

## Your Task
Create a cohesive response that combines these specialist insights into a helpful, unified answer.`
