package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"oura-ai/internal/domain"
)

// fakeHealthStore serves canned range data; single-record lookups are unused
// by the baseline computer.
type fakeHealthStore struct {
	sleep     []domain.SleepPeriod
	activity  []domain.DailyActivity
	readiness []domain.Readiness
	failAll   bool
}

var errStoreDown = fmt.Errorf("store down")

func (f *fakeHealthStore) LastNightSleep(context.Context) (*domain.SleepPeriod, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeHealthStore) SleepByDate(context.Context, time.Time) (*domain.SleepPeriod, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeHealthStore) SleepRange(_ context.Context, _ int) ([]domain.SleepPeriod, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	return f.sleep, nil
}
func (f *fakeHealthStore) LatestSleepTimeRecommendation(context.Context) (*domain.SleepTimeRecommendation, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeHealthStore) TodayActivity(context.Context) (*domain.DailyActivity, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeHealthStore) ActivityRange(_ context.Context, _ int) ([]domain.DailyActivity, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	return f.activity, nil
}
func (f *fakeHealthStore) LatestReadiness(context.Context) (*domain.Readiness, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeHealthStore) ReadinessRange(_ context.Context, _ int) ([]domain.Readiness, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	return f.readiness, nil
}
func (f *fakeHealthStore) RecentWorkouts(context.Context, int) ([]domain.Workout, error) {
	return nil, nil
}
func (f *fakeHealthStore) WorkoutsByType(context.Context, string, int) ([]domain.Workout, error) {
	return nil, nil
}
func (f *fakeHealthStore) Ping(context.Context) error { return nil }

// recordingLongTerm captures SetBaseline calls.
type recordingLongTerm struct {
	baselines map[string]domain.HealthBaseline
}

func newRecordingLongTerm() *recordingLongTerm {
	return &recordingLongTerm{baselines: make(map[string]domain.HealthBaseline)}
}

func (r *recordingLongTerm) SetGoal(context.Context, string, string, float64, string) (string, error) {
	return "", nil
}
func (r *recordingLongTerm) ActiveGoals(context.Context, string) ([]domain.HealthGoal, error) {
	return nil, nil
}
func (r *recordingLongTerm) MarkGoalAchieved(context.Context, string) error { return nil }
func (r *recordingLongTerm) AbandonGoal(context.Context, string) error      { return nil }
func (r *recordingLongTerm) SetBaseline(_ context.Context, userID, metric string, value float64, sampleSize int) (string, error) {
	r.baselines[metric] = domain.HealthBaseline{
		UserID: userID, Metric: metric, Value: value, SampleSize: sampleSize,
	}
	return metric, nil
}
func (r *recordingLongTerm) Baselines(context.Context, string) (map[string]domain.HealthBaseline, error) {
	return r.baselines, nil
}

func TestBaselineComputeAllMetrics(t *testing.T) {
	store := &fakeHealthStore{
		sleep: []domain.SleepPeriod{
			{TotalSleepHours: 7, Efficiency: 90, HRVAvg: 40},
			{TotalSleepHours: 8, Efficiency: 94, HRVAvg: 44},
		},
		activity: []domain.DailyActivity{
			{Steps: 9000, Score: 80},
			{Steps: 11000, Score: 90},
		},
		readiness: []domain.Readiness{
			{Score: 70, RestingHeartRate: 52},
			{Score: 80, RestingHeartRate: 54},
		},
	}
	memory := newRecordingLongTerm()
	bc := NewBaselineComputer(store, memory, nil, testLogger())

	if err := bc.Compute(context.Background(), "u1", 30); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	want := map[string]float64{
		"hrv_avg":            42,
		"sleep_efficiency":   92,
		"sleep_duration_avg": 7.5,
		"step_count_avg":     10000,
		"activity_score_avg": 85,
		"resting_hr":         53,
		"readiness_avg":      75,
	}
	for metric, value := range want {
		b, ok := memory.baselines[metric]
		if !ok {
			t.Errorf("baseline %q not stored", metric)
			continue
		}
		if b.Value != value {
			t.Errorf("%s = %v, want %v", metric, b.Value, value)
		}
		if b.SampleSize != 2 {
			t.Errorf("%s sample size = %d", metric, b.SampleSize)
		}
		if b.UserID != "u1" {
			t.Errorf("%s user = %q", metric, b.UserID)
		}
	}
}

func TestBaselineComputeSkipsEmptySources(t *testing.T) {
	store := &fakeHealthStore{
		sleep: []domain.SleepPeriod{{TotalSleepHours: 8, Efficiency: 95, HRVAvg: 50}},
	}
	memory := newRecordingLongTerm()
	bc := NewBaselineComputer(store, memory, nil, testLogger())

	if err := bc.Compute(context.Background(), "u1", 30); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if _, ok := memory.baselines["step_count_avg"]; ok {
		t.Error("empty activity source should not produce a baseline")
	}
	if _, ok := memory.baselines["sleep_duration_avg"]; !ok {
		t.Error("sleep baseline missing")
	}
}

func TestBaselineComputeIgnoresZeroSamples(t *testing.T) {
	store := &fakeHealthStore{
		sleep: []domain.SleepPeriod{
			{TotalSleepHours: 8, HRVAvg: 0}, // unsynced HRV
			{TotalSleepHours: 6, HRVAvg: 40},
		},
	}
	memory := newRecordingLongTerm()
	bc := NewBaselineComputer(store, memory, nil, testLogger())

	if err := bc.Compute(context.Background(), "u1", 30); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	hrv := memory.baselines["hrv_avg"]
	if hrv.Value != 40 || hrv.SampleSize != 1 {
		t.Errorf("hrv baseline = %v (n=%d), zero values must not dilute", hrv.Value, hrv.SampleSize)
	}
}

func TestBaselineComputeAllSourcesFail(t *testing.T) {
	bc := NewBaselineComputer(&fakeHealthStore{failAll: true}, newRecordingLongTerm(), nil, testLogger())

	if err := bc.Compute(context.Background(), "u1", 30); err == nil {
		t.Error("expected error when every source fails")
	}
}
