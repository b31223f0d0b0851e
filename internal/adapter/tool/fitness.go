package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"oura-ai/internal/adapter/healthdata"
	"oura-ai/internal/domain"
)

// FitnessToolset builds the fitness coach's tools: activity, readiness, and
// workout queries with recovery-aware guidance.
type FitnessToolset struct {
	store     domain.HealthStore
	validator *healthdata.Validator
	logger    *slog.Logger
}

// NewFitnessToolset creates the fitness coaching tools.
func NewFitnessToolset(store domain.HealthStore, validator *healthdata.Validator, logger *slog.Logger) *FitnessToolset {
	return &FitnessToolset{store: store, validator: validator, logger: logger}
}

var activityTypeSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"activity_type": {
			"type": "string",
			"description": "Type of workout (e.g., \"running\", \"cycling\", \"strength\")"
		}
	},
	"required": ["activity_type"]
}`)

type activityTypeParams struct {
	ActivityType string `json:"activity_type"`
}

// Tools returns the fitness coach's toolset.
func (f *FitnessToolset) Tools() []domain.Tool {
	return []domain.Tool{
		&simpleTool{
			name:        "get_today_activity",
			description: "Get today's activity data including steps, calories, and movement. Use this when the user asks about today's activity, steps, or how active they were.",
			parameters:  noParamsSchema,
			run:         f.todayActivity,
		},
		&simpleTool{
			name:        "check_exercise_readiness",
			description: "Check if user is ready for exercise based on recovery status. Use this when the user asks if they should work out, exercise readiness, or recovery status.",
			parameters:  noParamsSchema,
			run:         f.exerciseReadiness,
		},
		&simpleTool{
			name:        "get_activity_trends",
			description: "Get activity trends over a period of time. Use this for questions about activity patterns, weekly activity, or step trends.",
			parameters:  daysSchema,
			run:         f.activityTrends,
		},
		&simpleTool{
			name:        "get_recent_workouts",
			description: "Get recent workout history. Use this when the user asks about their workouts, exercise history, or training log.",
			parameters:  daysSchema,
			run:         f.recentWorkouts,
		},
		&simpleTool{
			name:        "get_recovery_trends",
			description: "Analyze recovery and readiness trends over time. Use this when the user asks about recovery patterns, readiness trends, or training load.",
			parameters:  daysSchema,
			run:         f.recoveryTrends,
		},
		&simpleTool{
			name:        "get_workout_by_type",
			description: "Get workouts filtered by activity type. Use this when the user asks about specific workout types.",
			parameters:  activityTypeSchema,
			run:         f.workoutsByType,
		},
	}
}

func (f *FitnessToolset) todayActivity(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.fitness.today_activity", f.logger, raw,
		func(ctx context.Context, _ trace.Span, _ struct{}) (any, error) {
			a, err := f.store.TodayActivity(ctx)
			if errors.Is(err, domain.ErrNotFound) {
				return f.validator.Validate("oura_activity", time.Time{}, 0).Warning, nil
			}
			if err != nil {
				return nil, err
			}

			v := f.validator.Validate("oura_activity", a.Day, 1)
			stepPct := float64(a.Steps) / 10000 * 100
			result := fmt.Sprintf(`Today's Activity (%s):

🏃 **Movement**
• Steps: %s (%.0f%% of 10k goal)
• Distance: %.1f km

🔥 **Calories**
• Total: %s kcal
• Active: %s kcal

⏱️ **Activity Time**
• High Intensity: %.0f min
• Medium Intensity: %.0f min
• Low Intensity: %.0f min
• Sedentary: %.0f min

📊 **Score**
• Activity Score: %s/100
• MET Minutes: %.0f`,
				v.LatestDate,
				commas(a.Steps), stepPct,
				a.DistanceKM,
				commas(a.CaloriesTotal),
				commas(a.CaloriesActive),
				a.HighActivityMinutes,
				a.MediumActivityMinutes,
				a.LowActivityMinutes,
				a.SedentaryMinutes,
				scoreOrNA(a.Score),
				a.METMinutes,
			)

			if v.Stale {
				result = v.Warning + "\n\n" + result
			}
			return result, nil
		})
}

// readinessGuidance maps a readiness score to the day's training advice.
func readinessGuidance(score int) (recommendation, workoutType string) {
	switch {
	case score >= 85:
		return "✅ **Excellent!** Great day for high-intensity training. Your body is well-recovered.",
			"High intensity (HIIT, heavy lifting, sprints)"
	case score >= 70:
		return "👍 **Good to go!** Moderate exercise recommended. Save the all-out efforts for a better day.",
			"Moderate (steady cardio, moderate weights, yoga)"
	case score >= 50:
		return "⚠️ **Take it easy.** Consider lighter activity or active recovery.",
			"Light (walking, stretching, gentle yoga)"
	default:
		return "🛑 **Rest day recommended.** Your body needs recovery. Honor the signals.",
			"Rest or very light movement"
	}
}

func (f *FitnessToolset) exerciseReadiness(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.fitness.readiness", f.logger, raw,
		func(ctx context.Context, _ trace.Span, _ struct{}) (any, error) {
			r, err := f.store.LatestReadiness(ctx)
			if errors.Is(err, domain.ErrNotFound) {
				return f.validator.Validate("oura_readiness", time.Time{}, 0).Warning, nil
			}
			if err != nil {
				return nil, err
			}

			v := f.validator.Validate("oura_readiness", r.Day, 1)
			recommendation, workoutType := readinessGuidance(r.Score)

			result := fmt.Sprintf(`Exercise Readiness (%s):

📊 **Readiness Score: %d/100**

%s

💡 **Suggested Workout Type**: %s

📈 **Contributing Factors**
• Recovery Index: %d
• Resting HR: %s bpm
• HRV Balance: %d
• Temperature Deviation: %s°C

🔍 **Component Scores**
• Sleep Balance: %s/100
• Previous Night: %s/100
• Activity Balance: %s/100
• HRV Balance: %s/100`,
				v.LatestDate,
				r.Score,
				recommendation,
				workoutType,
				r.RecoveryIndex,
				num(r.RestingHeartRate),
				r.HRVBalance,
				num(r.TemperatureDeviation),
				scoreOrNA(r.ScoreSleepBalance),
				scoreOrNA(r.ScorePreviousNight),
				scoreOrNA(r.ScoreActivityBalance),
				scoreOrNA(r.ScoreHRVBalance),
			)

			if v.Stale {
				result = v.Warning + "\n\n" + result
			}
			return result, nil
		})
}

func (f *FitnessToolset) activityTrends(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.fitness.activity_trends", f.logger, raw,
		func(ctx context.Context, _ trace.Span, p daysParams) (any, error) {
			days := p.window()
			records, err := f.store.ActivityRange(ctx, days)
			if err != nil {
				return nil, err
			}
			if len(records) == 0 {
				return fmt.Sprintf("No activity data found for the last %d days.", days), nil
			}

			var stepSum, calSum, activeSum float64
			above10k := 0
			for _, a := range records {
				stepSum += float64(a.Steps)
				calSum += float64(a.CaloriesTotal)
				activeSum += a.TotalActiveMinutes
				if a.Steps >= 10000 {
					above10k++
				}
			}
			n := float64(len(records))
			avgSteps := stepSum / n

			recent := records
			if len(recent) > 7 {
				recent = recent[len(recent)-7:]
			}
			lines := make([]string, 0, len(recent))
			for _, a := range recent {
				emoji := "📊"
				switch {
				case a.Steps >= 10000:
					emoji = "🌟"
				case a.Steps >= 7500:
					emoji = "📈"
				}
				lines = append(lines, fmt.Sprintf("%s %s: %s steps", emoji, a.Day.Format(domain.DateOnly), commas(a.Steps)))
			}

			var stepNote string
			switch {
			case avgSteps >= 10000:
				stepNote = "Crushing it! 🎉"
			case avgSteps >= 7500:
				stepNote = "On track 👍"
			default:
				stepNote = "Room for improvement 💪"
			}

			avgActive := activeSum / n
			var activityLevel string
			switch {
			case avgActive >= 60:
				activityLevel = "Very Active"
			case avgActive >= 30:
				activityLevel = "Active"
			default:
				activityLevel = "Lightly Active"
			}

			result := fmt.Sprintf(`Activity Trends (Last %d Days):

📊 **Averages**
• Daily Steps: %s
• Daily Calories: %s kcal
• Active Minutes: %.0f min/day
• Days ≥ 10k Steps: %d/%d

📅 **Recent Days**
%s

💡 **Assessment**
• Step Goal: %s
• Activity Level: %s`,
				days,
				roundCommas(avgSteps),
				roundCommas(calSum/n),
				avgActive,
				above10k, len(records),
				strings.Join(lines, "\n"),
				stepNote,
				activityLevel,
			)

			if v := f.validator.Validate("oura_activity", records[len(records)-1].Day, len(records)); v.Stale {
				result = v.Warning + "\n\n" + result
			}
			return result, nil
		})
}

func (f *FitnessToolset) recentWorkouts(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.fitness.recent_workouts", f.logger, raw,
		func(ctx context.Context, _ trace.Span, p daysParams) (any, error) {
			days := p.window()
			workouts, err := f.store.RecentWorkouts(ctx, days)
			if err != nil {
				return nil, err
			}
			if len(workouts) == 0 {
				return fmt.Sprintf("No workouts recorded in the last %d days. Make sure to log workouts in the Oura app!", days), nil
			}

			var durSum, calSum float64
			for _, w := range workouts {
				durSum += w.DurationMinutes
				calSum += w.Calories
			}

			shown := workouts
			if len(shown) > 10 {
				shown = shown[:10]
			}
			lines := make([]string, 0, len(shown))
			for _, w := range shown {
				lines = append(lines, fmt.Sprintf("• %s: %s - %.0f min, %.0f kcal (%s)",
					w.Day.Format(domain.DateOnly), w.Activity, w.DurationMinutes, w.Calories, w.Intensity))
			}

			return fmt.Sprintf(`Recent Workouts (Last %d Days):

📊 **Summary**
• Total Workouts: %d
• Total Duration: %.0f minutes (%.1f hours)
• Total Calories: %s kcal

🏋️ **Workout Log**
%s

💡 **Tip**: Aim for 150 min of moderate activity or 75 min of vigorous activity per week.`,
				days,
				len(workouts),
				durSum, durSum/60,
				roundCommas(calSum),
				strings.Join(lines, "\n"),
			), nil
		})
}

func (f *FitnessToolset) recoveryTrends(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.fitness.recovery_trends", f.logger, raw,
		func(ctx context.Context, _ trace.Span, p daysParams) (any, error) {
			days := p.window()
			records, err := f.store.ReadinessRange(ctx, days)
			if err != nil {
				return nil, err
			}
			if len(records) == 0 {
				return fmt.Sprintf("No readiness data found for the last %d days.", days), nil
			}

			minScore, maxScore := records[0].Score, records[0].Score
			var scoreSum, rhrSum, hrvSum float64
			for _, r := range records {
				scoreSum += float64(r.Score)
				rhrSum += r.RestingHeartRate
				hrvSum += float64(r.HRVBalance)
				if r.Score < minScore {
					minScore = r.Score
				}
				if r.Score > maxScore {
					maxScore = r.Score
				}
			}
			n := float64(len(records))

			// Compare the newest three days against the oldest three to
			// label the direction of travel.
			trend := "➡️ Stable"
			if len(records) >= 2 {
				head := records
				if len(head) > 3 {
					head = head[:3]
				}
				tail := records
				if len(tail) > 3 {
					tail = tail[len(tail)-3:]
				}
				var headSum, tailSum float64
				for _, r := range head {
					headSum += float64(r.Score)
				}
				for _, r := range tail {
					tailSum += float64(r.Score)
				}
				recentAvg := tailSum / float64(len(tail))
				earlierAvg := headSum / float64(len(head))
				switch {
				case recentAvg > earlierAvg+5:
					trend = "📈 Improving"
				case recentAvg < earlierAvg-5:
					trend = "📉 Declining - consider more rest"
				}
			}

			recent := records
			if len(recent) > 7 {
				recent = recent[len(recent)-7:]
			}
			lines := make([]string, 0, len(recent))
			for _, r := range recent {
				emoji := "🔴"
				switch {
				case r.Score >= 85:
					emoji = "🟢"
				case r.Score >= 70:
					emoji = "🟡"
				}
				lines = append(lines, fmt.Sprintf("%s %s: %d", emoji, r.Day.Format(domain.DateOnly), r.Score))
			}

			result := fmt.Sprintf(`Recovery Trends (Last %d Days):

📊 **Readiness**
• Average Score: %.0f/100
• Range: %d - %d
• Trend: %s

❤️ **Heart Rate**
• Avg Resting HR: %.0f bpm
• HRV Balance: %.1f

📅 **Recent Days**
%s

💡 **Recovery Tips**
• Consistent sleep schedule improves recovery
• Balance training with rest days
• Watch for elevated RHR (sign of stress or overtraining)`,
				days,
				scoreSum/n,
				minScore, maxScore,
				trend,
				rhrSum/n,
				hrvSum/n,
				strings.Join(lines, "\n"),
			)

			if v := f.validator.Validate("oura_readiness", records[len(records)-1].Day, len(records)); v.Stale {
				result = v.Warning + "\n\n" + result
			}
			return result, nil
		})
}

// workoutTypeWindowDays is the look-back span for type-filtered workout
// queries; specific workout types recur less often than workouts overall.
const workoutTypeWindowDays = 90

func (f *FitnessToolset) workoutsByType(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.fitness.workouts_by_type", f.logger, raw,
		func(ctx context.Context, _ trace.Span, p activityTypeParams) (any, error) {
			if err := RequireField("activity_type", p.ActivityType); err != nil {
				return ErrResult("%v", err)
			}

			workouts, err := f.store.WorkoutsByType(ctx, p.ActivityType, workoutTypeWindowDays)
			if err != nil {
				return nil, err
			}
			if len(workouts) == 0 {
				return fmt.Sprintf("No '%s' workouts found in the last %d days.", p.ActivityType, workoutTypeWindowDays), nil
			}

			var durSum, calSum, distSum float64
			for _, w := range workouts {
				durSum += w.DurationMinutes
				calSum += w.Calories
				distSum += w.DistanceKM
			}

			shown := workouts
			if len(shown) > 5 {
				shown = shown[:5]
			}
			lines := make([]string, 0, len(shown))
			for _, w := range shown {
				lines = append(lines, fmt.Sprintf("• %s: %.0f min, %.0f kcal",
					w.Day.Format(domain.DateOnly), w.DurationMinutes, w.Calories))
			}

			return fmt.Sprintf(`%s Workouts (Last %d Days):

📊 **Summary**
• Total Sessions: %d
• Total Duration: %.0f min (%.1f hours)
• Total Calories: %s kcal
• Total Distance: %.1f km
• Avg Duration: %.0f min/session

🏃 **Recent Sessions**
%s

💡 Keep up the consistency! Regular %s is great for your health.`,
				titleCase(p.ActivityType), workoutTypeWindowDays,
				len(workouts),
				durSum, durSum/60,
				roundCommas(calSum),
				distSum,
				durSum/float64(len(workouts)),
				strings.Join(lines, "\n"),
				p.ActivityType,
			), nil
		})
}
