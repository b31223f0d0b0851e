package domain

import (
	"context"
	"strings"
)

// AgentName identifies a routable agent.
type AgentName string

// Known agent names. AgentSupervisor is the routing fallback: it answers
// directly instead of delegating.
const (
	AgentSupervisor   AgentName = "supervisor"
	AgentSleepAnalyst AgentName = "sleep_analyst"
	AgentFitnessCoach AgentName = "fitness_coach"
	AgentMemoryKeeper AgentName = "memory_keeper"
	AgentDataAuditor  AgentName = "data_auditor"
)

// SpecialistNames lists every routable specialist, excluding the supervisor.
func SpecialistNames() []AgentName {
	return []AgentName{AgentSleepAnalyst, AgentFitnessCoach, AgentMemoryKeeper, AgentDataAuditor}
}

// Title renders the agent name for display, e.g. "sleep_analyst" -> "Sleep Analyst".
func (n AgentName) Title() string {
	words := strings.Split(string(n), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// LoopState tracks a specialist's position in its reason/act cycle.
type LoopState string

const (
	StateReasoning    LoopState = "reasoning"
	StateCallingTools LoopState = "calling_tools"
	StateDone         LoopState = "done"
)

// MaxToolCalls bounds the accumulated tool calls within a single specialist
// turn. Hitting the cap forces completion with whatever the specialist has;
// it is not an error.
const MaxToolCalls = 10

// InvocationRequest carries one routed user query to a specialist.
type InvocationRequest struct {
	ThreadID string `json:"thread_id"`
	UserID   string `json:"user_id"`
	Query    string `json:"query"`
}

// InvocationResult is a specialist's final answer for one turn.
type InvocationResult struct {
	Agent      AgentName `json:"agent"`
	Answer     string    `json:"answer"`
	ToolCalls  int       `json:"tool_calls"` // accumulated tool calls requested this turn
	CapReached bool      `json:"cap_reached,omitempty"`
}

// Specialist is a focused domain expert the supervisor can route queries to.
type Specialist interface {
	Name() AgentName
	SystemPrompt() string
	Tools() []ToolSchema
	Invoke(ctx context.Context, req InvocationRequest) (*InvocationResult, error)
}
