package domain

import (
	"context"
	"time"
)

// DateOnly is the wire and storage format for health-record days.
const DateOnly = "2006-01-02"

// SleepPeriod is one scored sleep session. Stage and bed durations are in
// hours, latency in minutes. Score is the daily sleep score for the same
// day, 0 when no score exists.
type SleepPeriod struct {
	Day             time.Time `json:"date"`
	Type            string    `json:"type"`
	TotalSleepHours float64   `json:"total_sleep_hours"`
	TimeInBedHours  float64   `json:"time_in_bed_hours"`
	Efficiency      float64   `json:"efficiency_percent"`
	REMHours        float64   `json:"rem_hours"`
	DeepHours       float64   `json:"deep_hours"`
	LightHours      float64   `json:"light_hours"`
	AwakeHours      float64   `json:"awake_time"`
	REMPercent      float64   `json:"rem_percentage"`
	DeepPercent     float64   `json:"deep_percentage"`
	LightPercent    float64   `json:"light_percentage"`
	LatencyMinutes  float64   `json:"latency_minutes"`
	HeartRateAvg    float64   `json:"heart_rate_avg"`
	HeartRateMin    float64   `json:"heart_rate_min"`
	HRVAvg          float64   `json:"hrv_avg"`
	HRVMin          float64   `json:"hrv_min"`
	HRVMax          float64   `json:"hrv_max"`
	RespiratoryRate float64   `json:"respiratory_rate"`
	Score           int       `json:"sleep_score,omitempty"`
}

// SleepTypeLong marks a full overnight sleep period, the only type the
// analysis queries consider. Naps carry other types.
const SleepTypeLong = "long_sleep"

// SleepTimeRecommendation is the ring's bedtime guidance for a day.
type SleepTimeRecommendation struct {
	Day            time.Time `json:"date"`
	Recommendation string    `json:"recommendation"`
}

// DailyActivity is one day of movement metrics. Activity-level durations
// are in minutes.
type DailyActivity struct {
	Day                   time.Time `json:"date"`
	Score                 int       `json:"activity_score"`
	Steps                 int       `json:"steps"`
	DistanceKM            float64   `json:"distance_km"`
	CaloriesActive        int       `json:"calories_active"`
	CaloriesTotal         int       `json:"calories_total"`
	HighActivityMinutes   float64   `json:"high_activity_minutes"`
	MediumActivityMinutes float64   `json:"medium_activity_minutes"`
	LowActivityMinutes    float64   `json:"low_activity_minutes"`
	SedentaryMinutes      float64   `json:"sedentary_minutes"`
	TotalActiveMinutes    float64   `json:"total_active_minutes"`
	METMinutes            float64   `json:"met_minutes"`
	InactivityAlerts      int       `json:"inactivity_alerts"`
}

// Readiness is one day's recovery assessment. The Score* fields are the
// 0-100 contributor scores behind the headline readiness score.
type Readiness struct {
	Day                       time.Time `json:"date"`
	Score                     int       `json:"readiness_score"`
	TemperatureDeviation      float64   `json:"temperature_deviation"`
	TemperatureTrendDeviation float64   `json:"temperature_trend_deviation"`
	RecoveryIndex             int       `json:"recovery_index"`
	RestingHeartRate          float64   `json:"resting_heart_rate"`
	HRVBalance                int       `json:"hrv_balance"`
	ScoreActivityBalance      int       `json:"score_activity_balance"`
	ScoreBodyTemperature      int       `json:"score_body_temperature"`
	ScoreHRVBalance           int       `json:"score_hrv_balance"`
	ScorePreviousNight        int       `json:"score_previous_night"`
	ScoreRecoveryIndex        int       `json:"score_recovery_index"`
	ScoreRestingHeartRate     int       `json:"score_resting_heart_rate"`
	ScorePreviousDayActivity  int       `json:"score_previous_day_activity"`
	ScoreSleepBalance         int       `json:"score_sleep_balance"`
}

// Workout is one logged exercise session.
type Workout struct {
	Day             time.Time `json:"date"`
	Activity        string    `json:"activity"`
	Intensity       string    `json:"intensity"`
	DurationMinutes float64   `json:"duration_minutes"`
	Calories        float64   `json:"calories"`
	DistanceKM      float64   `json:"distance_km"`
	Source          string    `json:"source"`
	Label           string    `json:"label,omitempty"`
}

// HealthStore is the read surface over the synced ring data. Single-record
// lookups return ErrNotFound when nothing matches; range queries return an
// empty slice. An external collector populates the store.
type HealthStore interface {
	// LastNightSleep returns the most recent overnight sleep period.
	LastNightSleep(ctx context.Context) (*SleepPeriod, error)
	// SleepByDate returns the overnight sleep period for one day.
	SleepByDate(ctx context.Context, day time.Time) (*SleepPeriod, error)
	// SleepRange returns overnight sleep periods for the last N days,
	// oldest first.
	SleepRange(ctx context.Context, days int) ([]SleepPeriod, error)
	// LatestSleepTimeRecommendation returns the newest bedtime guidance.
	LatestSleepTimeRecommendation(ctx context.Context) (*SleepTimeRecommendation, error)
	// TodayActivity returns today's activity, falling back to yesterday
	// when today has not synced yet.
	TodayActivity(ctx context.Context) (*DailyActivity, error)
	// ActivityRange returns activity for the last N days, oldest first.
	ActivityRange(ctx context.Context, days int) ([]DailyActivity, error)
	// LatestReadiness returns the most recent readiness assessment.
	LatestReadiness(ctx context.Context) (*Readiness, error)
	// ReadinessRange returns readiness for the last N days, oldest first.
	ReadinessRange(ctx context.Context, days int) ([]Readiness, error)
	// RecentWorkouts returns workouts for the last N days, newest first.
	RecentWorkouts(ctx context.Context, days int) ([]Workout, error)
	// WorkoutsByType returns workouts whose activity contains the given
	// type, case-insensitive, for the last N days, newest first.
	WorkoutsByType(ctx context.Context, activityType string, days int) ([]Workout, error)
	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
