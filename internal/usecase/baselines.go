package usecase

import (
	"context"
	"log/slog"

	"oura-ai/internal/domain"
	"oura-ai/internal/infra/tracer"
)

// defaultBaselineWindowDays is the lookback for baseline averages.
const defaultBaselineWindowDays = 30

// BaselineComputer derives a user's personal baselines from recent ring data
// and persists them to long-term memory, where the memory keeper's tools read
// them back. It runs on a schedule, not per conversation.
type BaselineComputer struct {
	health domain.HealthStore
	memory domain.LongTermMemory
	bus    domain.EventBus
	logger *slog.Logger
}

// NewBaselineComputer creates a baseline computer.
func NewBaselineComputer(health domain.HealthStore, memory domain.LongTermMemory, bus domain.EventBus, logger *slog.Logger) *BaselineComputer {
	return &BaselineComputer{health: health, memory: memory, bus: bus, logger: logger}
}

// Compute averages the last windowDays of data into one baseline per metric.
// Metrics without samples are skipped, not zeroed; a store that has sleep but
// no workouts still gets sleep baselines. Returns an error only when every
// source query failed.
func (b *BaselineComputer) Compute(ctx context.Context, userID string, windowDays int) error {
	ctx, span := tracer.StartSpan(ctx, "baselines.compute")
	defer span.End()

	if windowDays <= 0 {
		windowDays = defaultBaselineWindowDays
	}

	var sourceErrs int

	sleep, err := b.health.SleepRange(ctx, windowDays)
	if err != nil {
		b.logger.Warn("baseline sleep query failed", "error", err)
		sourceErrs++
	}
	activity, err := b.health.ActivityRange(ctx, windowDays)
	if err != nil {
		b.logger.Warn("baseline activity query failed", "error", err)
		sourceErrs++
	}
	readiness, err := b.health.ReadinessRange(ctx, windowDays)
	if err != nil {
		b.logger.Warn("baseline readiness query failed", "error", err)
		sourceErrs++
	}

	if sourceErrs == 3 {
		err := domain.NewDomainError("BaselineComputer.Compute", domain.ErrNotFound, "all health sources unavailable")
		tracer.RecordError(span, err)
		return err
	}

	stored := 0
	save := func(metric string, value float64, samples int) {
		if samples == 0 {
			return
		}
		if _, err := b.memory.SetBaseline(ctx, userID, metric, value, samples); err != nil {
			b.logger.Warn("failed to store baseline", "metric", metric, "error", err)
			return
		}
		stored++
	}

	hrv, n := meanOf(sleep, func(s domain.SleepPeriod) float64 { return s.HRVAvg })
	save("hrv_avg", hrv, n)
	eff, n := meanOf(sleep, func(s domain.SleepPeriod) float64 { return s.Efficiency })
	save("sleep_efficiency", eff, n)
	dur, n := meanOf(sleep, func(s domain.SleepPeriod) float64 { return s.TotalSleepHours })
	save("sleep_duration_avg", dur, n)
	steps, n := meanOf(activity, func(a domain.DailyActivity) float64 { return float64(a.Steps) })
	save("step_count_avg", steps, n)
	actScore, n := meanOf(activity, func(a domain.DailyActivity) float64 { return float64(a.Score) })
	save("activity_score_avg", actScore, n)
	rhr, n := meanOf(readiness, func(r domain.Readiness) float64 { return r.RestingHeartRate })
	save("resting_hr", rhr, n)
	ready, n := meanOf(readiness, func(r domain.Readiness) float64 { return float64(r.Score) })
	save("readiness_avg", ready, n)

	b.logger.Info("baselines computed",
		"user", userID, "window_days", windowDays, "metrics", stored)
	publishEvent(b.bus, ctx, domain.EventBaselinesComputed, "", map[string]any{
		"user":    userID,
		"metrics": stored,
	})

	tracer.SetOK(span)
	return nil
}

// meanOf averages a field over records, ignoring zero values so unsynced days
// don't drag baselines down. Returns the mean and the sample count.
func meanOf[T any](records []T, field func(T) float64) (float64, int) {
	var sum float64
	n := 0
	for _, r := range records {
		v := field(r)
		if v == 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}
