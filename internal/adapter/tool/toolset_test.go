package tool

import (
	"context"
	"fmt"
	"time"

	"oura-ai/internal/adapter/healthdata"
	"oura-ai/internal/domain"
)

// fakeHealthStore serves canned ring data. Zero-value fields return
// domain.ErrNotFound for single-record lookups and empty slices for ranges.
type fakeHealthStore struct {
	sleep       *domain.SleepPeriod
	sleepRange  []domain.SleepPeriod
	bedtime     *domain.SleepTimeRecommendation
	activity    *domain.DailyActivity
	actRange    []domain.DailyActivity
	readiness   *domain.Readiness
	readyRange  []domain.Readiness
	workouts    []domain.Workout
	err         error
	rangeCalls  []int
	workoutType string
}

func (f *fakeHealthStore) LastNightSleep(context.Context) (*domain.SleepPeriod, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.sleep == nil {
		return nil, domain.ErrNotFound
	}
	return f.sleep, nil
}

func (f *fakeHealthStore) SleepByDate(_ context.Context, day time.Time) (*domain.SleepPeriod, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.sleep == nil || !f.sleep.Day.Equal(day) {
		return nil, domain.ErrNotFound
	}
	return f.sleep, nil
}

func (f *fakeHealthStore) SleepRange(_ context.Context, days int) ([]domain.SleepPeriod, error) {
	f.rangeCalls = append(f.rangeCalls, days)
	if f.err != nil {
		return nil, f.err
	}
	return f.sleepRange, nil
}

func (f *fakeHealthStore) LatestSleepTimeRecommendation(context.Context) (*domain.SleepTimeRecommendation, error) {
	if f.bedtime == nil {
		return nil, domain.ErrNotFound
	}
	return f.bedtime, nil
}

func (f *fakeHealthStore) TodayActivity(context.Context) (*domain.DailyActivity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.activity == nil {
		return nil, domain.ErrNotFound
	}
	return f.activity, nil
}

func (f *fakeHealthStore) ActivityRange(_ context.Context, days int) ([]domain.DailyActivity, error) {
	f.rangeCalls = append(f.rangeCalls, days)
	if f.err != nil {
		return nil, f.err
	}
	return f.actRange, nil
}

func (f *fakeHealthStore) LatestReadiness(context.Context) (*domain.Readiness, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.readiness == nil {
		return nil, domain.ErrNotFound
	}
	return f.readiness, nil
}

func (f *fakeHealthStore) ReadinessRange(_ context.Context, days int) ([]domain.Readiness, error) {
	f.rangeCalls = append(f.rangeCalls, days)
	if f.err != nil {
		return nil, f.err
	}
	return f.readyRange, nil
}

func (f *fakeHealthStore) RecentWorkouts(_ context.Context, days int) ([]domain.Workout, error) {
	f.rangeCalls = append(f.rangeCalls, days)
	if f.err != nil {
		return nil, f.err
	}
	return f.workouts, nil
}

func (f *fakeHealthStore) WorkoutsByType(_ context.Context, activityType string, days int) ([]domain.Workout, error) {
	f.workoutType = activityType
	f.rangeCalls = append(f.rangeCalls, days)
	if f.err != nil {
		return nil, f.err
	}
	return f.workouts, nil
}

func (f *fakeHealthStore) Ping(context.Context) error { return f.err }

var _ domain.HealthStore = (*fakeHealthStore)(nil)

// fakeEpisodic records stored insights and serves canned search results.
type fakeEpisodic struct {
	stored  []domain.Insight
	results []domain.Insight
	err     error
}

func (f *fakeEpisodic) Store(_ context.Context, insight domain.Insight) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.stored = append(f.stored, insight)
	return fmt.Sprintf("insight-%d", len(f.stored)), nil
}

func (f *fakeEpisodic) Search(context.Context, string, string, int, float64) ([]domain.Insight, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeEpisodic) Recent(context.Context, string, int) ([]domain.Insight, error) {
	return f.results, nil
}

func (f *fakeEpisodic) Delete(context.Context, string) error { return f.err }

func (f *fakeEpisodic) SaveExchange(ctx context.Context, userID, sessionID, query, response string) (string, error) {
	return f.Store(ctx, domain.Insight{UserID: userID, SessionID: sessionID, Query: query, Summary: response})
}

var _ domain.EpisodicMemory = (*fakeEpisodic)(nil)

// fakeLongterm keeps goals and baselines in memory.
type fakeLongterm struct {
	goals     []domain.HealthGoal
	baselines map[string]domain.HealthBaseline
	achieved  []string
	err       error
}

func (f *fakeLongterm) SetGoal(_ context.Context, userID, goalType string, targetValue float64, targetText string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	g := domain.HealthGoal{
		ID:          fmt.Sprintf("goal-%d", len(f.goals)+1),
		UserID:      userID,
		Type:        goalType,
		TargetValue: targetValue,
		TargetText:  targetText,
		Status:      domain.GoalStatusActive,
		CreatedAt:   time.Now(),
	}
	f.goals = append(f.goals, g)
	return g.ID, nil
}

func (f *fakeLongterm) ActiveGoals(context.Context, string) ([]domain.HealthGoal, error) {
	if f.err != nil {
		return nil, f.err
	}
	var active []domain.HealthGoal
	for _, g := range f.goals {
		if g.Status == domain.GoalStatusActive {
			active = append(active, g)
		}
	}
	return active, nil
}

func (f *fakeLongterm) MarkGoalAchieved(_ context.Context, goalID string) error {
	if f.err != nil {
		return f.err
	}
	f.achieved = append(f.achieved, goalID)
	for i := range f.goals {
		if f.goals[i].ID == goalID {
			f.goals[i].Status = domain.GoalStatusAchieved
		}
	}
	return nil
}

func (f *fakeLongterm) AbandonGoal(_ context.Context, goalID string) error {
	for i := range f.goals {
		if f.goals[i].ID == goalID {
			f.goals[i].Status = domain.GoalStatusAbandoned
		}
	}
	return nil
}

func (f *fakeLongterm) SetBaseline(_ context.Context, userID, metric string, value float64, sampleSize int) (string, error) {
	if f.baselines == nil {
		f.baselines = make(map[string]domain.HealthBaseline)
	}
	f.baselines[metric] = domain.HealthBaseline{
		UserID: userID, Metric: metric, Value: value,
		SampleSize: sampleSize, ComputedAt: time.Now(),
	}
	return metric, nil
}

func (f *fakeLongterm) Baselines(context.Context, string) (map[string]domain.HealthBaseline, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.baselines, nil
}

var _ domain.LongTermMemory = (*fakeLongterm)(nil)

// daysAgo returns midnight UTC n days before now, matching how synced
// records carry day-granularity timestamps.
func daysAgo(n int) time.Time {
	t := time.Now().UTC().AddDate(0, 0, -n)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func testValidator() *healthdata.Validator {
	return healthdata.NewValidator()
}

// toolNames extracts names from a toolset in declaration order.
func toolNames(tools []domain.Tool) []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name())
	}
	return names
}
