package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"oura-ai/internal/domain"
)

// MemoryToolset builds the memory keeper's tools: goal management, episodic
// recall, and baseline retrieval. The acting user comes from the request
// context, never from model-supplied arguments.
type MemoryToolset struct {
	episodic domain.EpisodicMemory
	longterm domain.LongTermMemory
	logger   *slog.Logger
}

// NewMemoryToolset creates the memory management tools.
func NewMemoryToolset(episodic domain.EpisodicMemory, longterm domain.LongTermMemory, logger *slog.Logger) *MemoryToolset {
	return &MemoryToolset{episodic: episodic, longterm: longterm, logger: logger}
}

var goalSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"goal_type": {
			"type": "string",
			"description": "Type of goal: sleep_duration, sleep_score, step_count, active_calories, hrv_target, readiness_score, workout_frequency, or meditation_minutes"
		},
		"target_value": {
			"type": "number",
			"description": "Numeric target value for the goal"
		}
	},
	"required": ["goal_type", "target_value"]
}`)

type goalParams struct {
	GoalType    string  `json:"goal_type"`
	TargetValue float64 `json:"target_value"`
}

var goalTypeSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"goal_type": {
			"type": "string",
			"description": "Type of goal that was achieved"
		}
	},
	"required": ["goal_type"]
}`)

type goalTypeParams struct {
	GoalType string `json:"goal_type"`
}

var querySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"description": "What to search for in past conversations"
		}
	},
	"required": ["query"]
}`)

type queryParams struct {
	Query string `json:"query"`
}

var insightSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"insight": {
			"type": "string",
			"description": "The insight to save"
		}
	},
	"required": ["insight"]
}`)

type insightParams struct {
	Insight string `json:"insight"`
}

// Tools returns the memory keeper's toolset.
func (m *MemoryToolset) Tools() []domain.Tool {
	return []domain.Tool{
		&simpleTool{
			name:        "set_health_goal",
			description: "Set a new health goal for the user. Use this when the user wants to set a health goal, aim for a target, or track progress toward something specific.",
			parameters:  goalSchema,
			run:         m.setGoal,
		},
		&simpleTool{
			name:        "get_active_goals",
			description: "Get the user's active health goals. Use this when the user asks about their goals, what they're tracking, or wants to see their health targets.",
			parameters:  noParamsSchema,
			run:         m.activeGoals,
		},
		&simpleTool{
			name:        "recall_past_insight",
			description: "Search past conversations for relevant health insights. Use this when the user asks \"what did you tell me about...\", \"remember when...\", or references past advice.",
			parameters:  querySchema,
			run:         m.recallInsight,
		},
		&simpleTool{
			name:        "save_important_insight",
			description: "Save an important health insight for future recall. Use this to save key findings or important discoveries that should be remembered for future reference.",
			parameters:  insightSchema,
			run:         m.saveInsight,
		},
		&simpleTool{
			name:        "get_user_baselines",
			description: "Get the user's computed health baselines. Use this when the user asks about their typical values, baselines, or wants personalized comparisons.",
			parameters:  noParamsSchema,
			run:         m.baselines,
		},
		&simpleTool{
			name:        "mark_goal_achieved",
			description: "Mark a goal as achieved. Use this when the user indicates they've achieved a goal or wants to mark it complete.",
			parameters:  goalTypeSchema,
			run:         m.markAchieved,
		},
	}
}

// validGoalTypes renders the supported goal types in a stable order for
// validation messages.
func validGoalTypes() string {
	types := make([]string, 0, len(domain.GoalTypes))
	for t := range domain.GoalTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}

func (m *MemoryToolset) setGoal(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.memory.set_goal", m.logger, raw,
		func(ctx context.Context, _ trace.Span, p goalParams) (any, error) {
			if _, ok := domain.GoalTypes[p.GoalType]; !ok {
				return fmt.Sprintf("Invalid goal type: %s. Valid types: %s", p.GoalType, validGoalTypes()), nil
			}

			userID := domain.UserIDFromContext(ctx)
			if _, err := m.longterm.SetGoal(ctx, userID, p.GoalType, p.TargetValue, ""); err != nil {
				return nil, err
			}

			return fmt.Sprintf(`✅ **Goal Set Successfully!**

📎 **Goal**: %s
🎯 **Target**: %s

I'll help you track progress toward this goal. Ask me anytime how you're doing!`,
				domain.GoalTypes[p.GoalType],
				num(p.TargetValue),
			), nil
		})
}

func (m *MemoryToolset) activeGoals(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.memory.active_goals", m.logger, raw,
		func(ctx context.Context, _ trace.Span, _ struct{}) (any, error) {
			goals, err := m.longterm.ActiveGoals(ctx, domain.UserIDFromContext(ctx))
			if err != nil {
				return nil, err
			}

			if len(goals) == 0 {
				return `No active health goals found.

💡 **Set a Goal!**
You can set goals like:
- "I want to get 8 hours of sleep"
- "My goal is 10,000 steps a day"
- "I want to work out 3 times a week"

Just let me know what you'd like to achieve!`, nil
			}

			lines := make([]string, 0, len(goals))
			for _, g := range goals {
				desc := domain.GoalTypes[g.Type]
				if desc == "" {
					desc = g.Type
				}
				value := g.TargetText
				if g.TargetValue != 0 {
					value = num(g.TargetValue)
				}
				if value == "" {
					value = "Not specified"
				}
				lines = append(lines, fmt.Sprintf("• **%s**: %s (since %s)",
					desc, value, g.CreatedAt.Format(domain.DateOnly)))
			}

			return fmt.Sprintf(`🎯 **Your Active Health Goals**

%s

💡 Ask me to check your progress anytime!`, strings.Join(lines, "\n")), nil
		})
}

// recallLimit and recallThreshold tune episodic search for the recall tool:
// few, loosely matched results beat an empty answer.
const (
	recallLimit     = 3
	recallThreshold = 0.5
)

func (m *MemoryToolset) recallInsight(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.memory.recall", m.logger, raw,
		func(ctx context.Context, _ trace.Span, p queryParams) (any, error) {
			if err := RequireField("query", p.Query); err != nil {
				return ErrResult("%v", err)
			}

			memories, err := m.episodic.Search(ctx, domain.UserIDFromContext(ctx), p.Query, recallLimit, recallThreshold)
			if err != nil {
				return nil, err
			}
			if len(memories) == 0 {
				return "I don't have any relevant past insights on that topic. This might be the first time we've discussed it!", nil
			}

			blocks := make([]string, 0, len(memories))
			for i, mem := range memories {
				blocks = append(blocks, fmt.Sprintf("**%d. %s** (relevance: %.0f%%)\n> %s\n\n%s",
					i+1,
					mem.CreatedAt.Format(domain.DateOnly),
					mem.Similarity*100,
					mem.Summary,
					mem.Outcome,
				))
			}

			return fmt.Sprintf(`📚 **From Our Past Conversations**

%s

---
These are the most relevant insights I found based on your question.`, strings.Join(blocks, "\n\n")), nil
		})
}

func (m *MemoryToolset) saveInsight(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.memory.save_insight", m.logger, raw,
		func(ctx context.Context, _ trace.Span, p insightParams) (any, error) {
			if err := RequireField("insight", p.Insight); err != nil {
				return ErrResult("%v", err)
			}

			_, err := m.episodic.Store(ctx, domain.Insight{
				UserID:    domain.UserIDFromContext(ctx),
				SessionID: domain.SessionIDFromContext(ctx),
				Summary:   firstRunes(p.Insight, 500),
				Outcome:   "Manually saved insight",
			})
			if err != nil {
				return nil, err
			}
			return "✅ Insight saved for future reference.", nil
		})
}

func (m *MemoryToolset) baselines(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.memory.baselines", m.logger, raw,
		func(ctx context.Context, _ trace.Span, _ struct{}) (any, error) {
			baselines, err := m.longterm.Baselines(ctx, domain.UserIDFromContext(ctx))
			if err != nil {
				return nil, err
			}

			if len(baselines) == 0 {
				return `No health baselines computed yet.

💡 Baselines are computed automatically as you use the service.
They help us give you personalized comparisons like "Your HRV is 10% above your usual."

Keep asking about your health metrics, and we'll build up your baselines!`, nil
			}

			metrics := make([]string, 0, len(baselines))
			for metric := range baselines {
				metrics = append(metrics, metric)
			}
			sort.Strings(metrics)

			lines := make([]string, 0, len(metrics))
			for _, metric := range metrics {
				bl := baselines[metric]
				desc := domain.BaselineMetrics[metric]
				if desc == "" {
					desc = metric
				}
				lines = append(lines, fmt.Sprintf("• **%s**: %.1f (based on %d data points, updated %s)",
					desc, bl.Value, bl.SampleSize, bl.ComputedAt.Format(domain.DateOnly)))
			}

			return fmt.Sprintf(`📊 **Your Health Baselines**

%s

💡 These are your typical values, used for personalized comparisons.`, strings.Join(lines, "\n")), nil
		})
}

func (m *MemoryToolset) markAchieved(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.memory.mark_achieved", m.logger, raw,
		func(ctx context.Context, _ trace.Span, p goalTypeParams) (any, error) {
			userID := domain.UserIDFromContext(ctx)
			goals, err := m.longterm.ActiveGoals(ctx, userID)
			if err != nil {
				return nil, err
			}

			var target *domain.HealthGoal
			for i := range goals {
				if goals[i].Type == p.GoalType {
					target = &goals[i]
					break
				}
			}
			if target == nil {
				return fmt.Sprintf("No active goal of type '%s' found.", p.GoalType), nil
			}

			if err := m.longterm.MarkGoalAchieved(ctx, target.ID); err != nil {
				return nil, err
			}

			desc := domain.GoalTypes[p.GoalType]
			if desc == "" {
				desc = p.GoalType
			}
			return fmt.Sprintf(`🎉 **Congratulations!**

You've achieved your goal: **%s**!

This is a fantastic accomplishment. Would you like to set a new goal to keep up the momentum?`, desc), nil
		})
}
