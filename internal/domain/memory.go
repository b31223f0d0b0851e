package domain

import (
	"context"
	"fmt"
	"time"
)

// ThreadID builds the working-memory key for a user in a channel. Every
// (user, channel) pair gets its own isolated conversation thread.
func ThreadID(userID, channelID string) string {
	return fmt.Sprintf("oura-health-%s-%s", userID, channelID)
}

// SpecialistThreadID derives the private thread a specialist resumes when it
// is invoked on behalf of a base thread.
func SpecialistThreadID(threadID string, agent AgentName) string {
	return fmt.Sprintf("%s:%s", threadID, agent)
}

// ConversationStore persists working memory: the per-thread transcripts the
// supervisor and specialists resume between turns.
type ConversationStore interface {
	// Load returns the conversation for the thread. A thread that has never
	// been written to loads as an empty conversation, not an error.
	Load(ctx context.Context, threadID string) (*Conversation, error)
	// Append adds messages to the end of the thread's transcript.
	Append(ctx context.Context, threadID string, msgs ...Message) error
	// Clear removes the thread's transcript. Clearing an absent thread is a no-op.
	Clear(ctx context.Context, threadID string) error
	// Threads lists the ids of all persisted threads.
	Threads(ctx context.Context) ([]string, error)
}

// Insight is one episodic memory: a summarized health conversation stored
// with an embedding for semantic recall.
type Insight struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	SessionID  string             `json:"session_id,omitempty"`
	Summary    string             `json:"summary"`
	Query      string             `json:"query,omitempty"`
	Outcome    string             `json:"outcome,omitempty"`
	Metrics    map[string]float64 `json:"health_metrics,omitempty"`
	Embedding  []float32          `json:"-"`
	CreatedAt  time.Time          `json:"created_at"`
	Similarity float64            `json:"similarity,omitempty"` // populated by Search
}

// EpisodicMemory stores and recalls past health conversations by semantic
// similarity.
type EpisodicMemory interface {
	// Store embeds and persists the insight, returning its id.
	Store(ctx context.Context, insight Insight) (string, error)
	// Search returns insights for the user whose similarity to the query
	// meets the threshold, best matches first.
	Search(ctx context.Context, userID, query string, limit int, threshold float64) ([]Insight, error)
	// Recent returns the user's newest insights.
	Recent(ctx context.Context, userID string, limit int) ([]Insight, error)
	// Delete removes an insight by id.
	Delete(ctx context.Context, id string) error
	// SaveExchange summarizes one question/answer exchange and stores it.
	SaveExchange(ctx context.Context, userID, sessionID, query, response string) (string, error)
}

// Goal statuses. Setting a new goal of an existing type replaces the old one.
const (
	GoalStatusActive    = "active"
	GoalStatusAchieved  = "achieved"
	GoalStatusReplaced  = "replaced"
	GoalStatusAbandoned = "abandoned"
)

// GoalTypes maps each supported goal type to its human description.
var GoalTypes = map[string]string{
	"sleep_duration":     "hours of sleep per night",
	"sleep_score":        "minimum sleep score",
	"step_count":         "daily steps",
	"active_calories":    "active calories burned daily",
	"hrv_target":         "target HRV",
	"readiness_score":    "minimum readiness score",
	"workout_frequency":  "workouts per week",
	"meditation_minutes": "meditation minutes per day",
}

// BaselineMetrics maps each supported baseline metric to its description.
var BaselineMetrics = map[string]string{
	"hrv_avg":            "average HRV",
	"resting_hr":         "resting heart rate",
	"sleep_efficiency":   "sleep efficiency percentage",
	"sleep_duration_avg": "average sleep duration",
	"step_count_avg":     "average daily steps",
	"readiness_avg":      "average readiness score",
	"activity_score_avg": "average activity score",
}

// HealthGoal is a user's persistent health goal.
type HealthGoal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"goal_type"`
	TargetValue float64   `json:"target_value,omitempty"`
	TargetText  string    `json:"target_text,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	AchievedAt  time.Time `json:"achieved_at,omitempty"`
}

// HealthBaseline is a computed per-user average for one metric.
type HealthBaseline struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Metric     string    `json:"metric"`
	Value      float64   `json:"baseline_value"`
	SampleSize int       `json:"sample_size"`
	ComputedAt time.Time `json:"computed_at"`
}

// LongTermMemory persists goals and baselines across all conversations.
type LongTermMemory interface {
	// SetGoal records a goal, replacing any active goal of the same type.
	SetGoal(ctx context.Context, userID, goalType string, targetValue float64, targetText string) (string, error)
	// ActiveGoals returns the user's active goals, newest first.
	ActiveGoals(ctx context.Context, userID string) ([]HealthGoal, error)
	// MarkGoalAchieved flips a goal's status to achieved.
	MarkGoalAchieved(ctx context.Context, goalID string) error
	// AbandonGoal flips a goal's status to abandoned.
	AbandonGoal(ctx context.Context, goalID string) error
	// SetBaseline upserts the user's baseline for one metric.
	SetBaseline(ctx context.Context, userID, metric string, value float64, sampleSize int) (string, error)
	// Baselines returns the user's baselines keyed by metric.
	Baselines(ctx context.Context, userID string) (map[string]HealthBaseline, error)
}
