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

// SleepToolset builds the sleep analyst's tools. Every tool grounds its
// answer in stored ring data and surfaces freshness warnings so the model
// never presents week-old sleep as last night's.
type SleepToolset struct {
	store     domain.HealthStore
	validator *healthdata.Validator
	logger    *slog.Logger
}

// NewSleepToolset creates the sleep analysis tools.
func NewSleepToolset(store domain.HealthStore, validator *healthdata.Validator, logger *slog.Logger) *SleepToolset {
	return &SleepToolset{store: store, validator: validator, logger: logger}
}

var dateSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"date": {
			"type": "string",
			"description": "The date to check, in YYYY-MM-DD format"
		}
	},
	"required": ["date"]
}`)

type dateParams struct {
	Date string `json:"date"`
}

// Tools returns the sleep analyst's toolset.
func (s *SleepToolset) Tools() []domain.Tool {
	return []domain.Tool{
		&simpleTool{
			name:        "get_last_night_sleep",
			description: "Get detailed sleep data from last night including duration, stages, and quality score. Use this when the user asks about their recent sleep, how they slept, or general sleep questions without a specific date.",
			parameters:  noParamsSchema,
			run:         s.lastNightSleep,
		},
		&simpleTool{
			name:        "get_sleep_quality",
			description: "Get sleep quality data for a specific date. Use this when the user asks about sleep on a particular day.",
			parameters:  dateSchema,
			run:         s.sleepQuality,
		},
		&simpleTool{
			name:        "get_sleep_trends",
			description: "Get sleep score trends over a period of time. Use this when the user asks about their sleep patterns, weekly sleep, or how their sleep has been trending.",
			parameters:  daysSchema,
			run:         s.sleepTrends,
		},
		&simpleTool{
			name:        "get_sleep_stages_breakdown",
			description: "Get a breakdown of sleep stages (deep, REM, light) over time. Use this when the user asks about deep sleep, REM sleep, sleep stages, or sleep architecture.",
			parameters:  daysSchema,
			run:         s.sleepStages,
		},
		&simpleTool{
			name:        "get_sleep_efficiency_analysis",
			description: "Analyze sleep efficiency (time asleep vs time in bed) over time. Use this when the user asks about sleep efficiency, time awake in bed, or how well they're sleeping.",
			parameters:  daysSchema,
			run:         s.sleepEfficiency,
		},
		&simpleTool{
			name:        "get_optimal_sleep_time",
			description: "Get recommendations for optimal bedtime based on sleep patterns. Use this when the user asks when they should go to bed, their ideal bedtime, or optimal sleep schedule.",
			parameters:  noParamsSchema,
			run:         s.optimalSleepTime,
		},
	}
}

func (s *SleepToolset) lastNightSleep(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.sleep.last_night", s.logger, raw,
		func(ctx context.Context, _ trace.Span, _ struct{}) (any, error) {
			p, err := s.store.LastNightSleep(ctx)
			if errors.Is(err, domain.ErrNotFound) {
				return s.validator.Validate("oura_sleep_periods", time.Time{}, 0).Warning, nil
			}
			if err != nil {
				return nil, err
			}

			v := s.validator.Validate("oura_sleep_periods", p.Day, 1)
			result := fmt.Sprintf(`Last Night's Sleep (%s):

📊 **Overall**
• Sleep Score: %s/100
• Total Sleep: %.1f hours
• Time in Bed: %.1f hours
• Efficiency: %.0f%%

🌙 **Sleep Stages**
• Deep Sleep: %.0f min (%.0f%%)
• REM Sleep: %.0f min (%.0f%%)
• Light Sleep: %.0f min (%.0f%%)

❤️ **Heart Metrics**
• Avg HR: %s bpm
• Lowest HR: %s bpm
• Avg HRV: %s ms
• Respiratory Rate: %s breaths/min`,
				v.LatestDate,
				scoreOrNA(p.Score),
				p.TotalSleepHours,
				p.TimeInBedHours,
				p.Efficiency,
				p.DeepHours*60, p.DeepPercent,
				p.REMHours*60, p.REMPercent,
				p.LightHours*60, p.LightPercent,
				num(p.HeartRateAvg),
				num(p.HeartRateMin),
				num(p.HRVAvg),
				num(p.RespiratoryRate),
			)

			if v.Stale {
				result = v.Warning + "\n\n" + result
			}
			return result, nil
		})
}

func (s *SleepToolset) sleepQuality(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.sleep.quality", s.logger, raw,
		func(ctx context.Context, _ trace.Span, p dateParams) (any, error) {
			day, err := time.Parse(domain.DateOnly, p.Date)
			if err != nil {
				return fmt.Sprintf("Invalid date format: %s. Please use YYYY-MM-DD format.", p.Date), nil
			}

			sp, err := s.store.SleepByDate(ctx, day)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Sprintf("No sleep data found for %s.", p.Date), nil
			}
			if err != nil {
				return nil, err
			}

			return fmt.Sprintf(`Sleep Quality for %s:

• Sleep Score: %s/100
• Total Sleep: %.1f hours
• Efficiency: %.0f%%
• Deep Sleep: %.0f min
• REM Sleep: %.0f min
• Latency: %.0f min to fall asleep`,
				p.Date,
				scoreOrNA(sp.Score),
				sp.TotalSleepHours,
				sp.Efficiency,
				sp.DeepHours*60,
				sp.REMHours*60,
				sp.LatencyMinutes,
			), nil
		})
}

func (s *SleepToolset) sleepTrends(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.sleep.trends", s.logger, raw,
		func(ctx context.Context, _ trace.Span, p daysParams) (any, error) {
			days := p.window()
			periods, err := s.store.SleepRange(ctx, days)
			if err != nil {
				return nil, err
			}
			if len(periods) == 0 {
				return fmt.Sprintf("No sleep data found for the last %d days.", days), nil
			}

			var durSum, effSum, deepSum, remSum float64
			for _, sp := range periods {
				durSum += sp.TotalSleepHours
				effSum += sp.Efficiency
				deepSum += sp.DeepHours
				remSum += sp.REMHours
			}
			n := float64(len(periods))
			avgDuration := durSum / n
			avgEfficiency := effSum / n

			recent := periods
			if len(recent) > 7 {
				recent = recent[len(recent)-7:]
			}
			lines := make([]string, 0, len(recent))
			for _, sp := range recent {
				lines = append(lines, fmt.Sprintf("• %s: %.1fh", sp.Day.Format(domain.DateOnly), sp.TotalSleepHours))
			}

			var durationNote string
			switch {
			case avgDuration >= 7 && avgDuration <= 9:
				durationNote = "On track (7-9h)"
			case avgDuration < 7:
				durationNote = "Below target"
			default:
				durationNote = "Above average"
			}

			var efficiencyNote string
			switch {
			case avgEfficiency >= 90:
				efficiencyNote = "Excellent (≥90%)"
			case avgEfficiency >= 85:
				efficiencyNote = "Good (85-89%)"
			case avgEfficiency >= 80:
				efficiencyNote = "Fair (80-84%)"
			default:
				efficiencyNote = "Needs improvement"
			}

			result := fmt.Sprintf(`Sleep Trends (Last %d Days):

📈 **Averages**
• Sleep Duration: %.1f hours
• Efficiency: %.0f%%
• Deep Sleep: %.0f min/night
• REM Sleep: %.0f min/night

📅 **Recent Nights**
%s

💡 **Assessment**
• Duration: %s
• Efficiency: %s`,
				days,
				avgDuration,
				avgEfficiency,
				deepSum/n*60,
				remSum/n*60,
				strings.Join(lines, "\n"),
				durationNote,
				efficiencyNote,
			)

			if v := s.validator.Validate("oura_sleep_periods", periods[len(periods)-1].Day, len(periods)); v.Stale {
				result = v.Warning + "\n\n" + result
			}
			return result, nil
		})
}

// stageStatus classifies a nightly stage average against its healthy range
// in minutes.
func stageStatus(avgMin, lo, hi float64) string {
	switch {
	case avgMin >= lo && avgMin <= hi:
		return "✅ On track"
	case avgMin < lo:
		return "⚠️ Below target"
	default:
		return "⚠️ Above typical"
	}
}

func (s *SleepToolset) sleepStages(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.sleep.stages", s.logger, raw,
		func(ctx context.Context, _ trace.Span, p daysParams) (any, error) {
			days := p.window()
			periods, err := s.store.SleepRange(ctx, days)
			if err != nil {
				return nil, err
			}
			if len(periods) == 0 {
				return fmt.Sprintf("No sleep stage data found for the last %d days.", days), nil
			}

			var deepSum, remSum, lightSum, totalSum float64
			for _, sp := range periods {
				deepSum += sp.DeepHours
				remSum += sp.REMHours
				lightSum += sp.LightHours
				totalSum += sp.TotalSleepHours
			}
			n := float64(len(periods))
			avgDeep := deepSum / n * 60
			avgREM := remSum / n * 60
			avgLight := lightSum / n * 60
			avgTotal := totalSum / n * 60

			var deepPct, remPct, lightPct float64
			if avgTotal > 0 {
				deepPct = avgDeep / avgTotal * 100
				remPct = avgREM / avgTotal * 100
				lightPct = avgLight / avgTotal * 100
			}

			return fmt.Sprintf(`Sleep Stages Breakdown (Last %d Days):

🔵 **Deep Sleep**
• Average: %.0f min/night (%.0f%%)
• Target: 60-90 min (13-23%%)
• Status: %s

🟣 **REM Sleep**
• Average: %.0f min/night (%.0f%%)
• Target: 90-120 min (20-25%%)
• Status: %s

🟡 **Light Sleep**
• Average: %.0f min/night (%.0f%%)
• Typical: ~50%% of total sleep

💡 **Tips**
- Deep sleep: Keep bedroom cool (65-68°F), avoid alcohol
- REM sleep: Maintain consistent schedule, reduce stress
- Both improve with regular exercise (not too close to bedtime)`,
				days,
				avgDeep, deepPct, stageStatus(avgDeep, 60, 90),
				avgREM, remPct, stageStatus(avgREM, 90, 120),
				avgLight, lightPct,
			), nil
		})
}

func (s *SleepToolset) sleepEfficiency(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.sleep.efficiency", s.logger, raw,
		func(ctx context.Context, _ trace.Span, p daysParams) (any, error) {
			days := p.window()
			periods, err := s.store.SleepRange(ctx, days)
			if err != nil {
				return nil, err
			}
			if len(periods) == 0 {
				return fmt.Sprintf("No sleep efficiency data found for the last %d days.", days), nil
			}

			minEff, maxEff := periods[0].Efficiency, periods[0].Efficiency
			var effSum, latencySum float64
			for _, sp := range periods {
				effSum += sp.Efficiency
				latencySum += sp.LatencyMinutes
				if sp.Efficiency < minEff {
					minEff = sp.Efficiency
				}
				if sp.Efficiency > maxEff {
					maxEff = sp.Efficiency
				}
			}
			n := float64(len(periods))
			avgEff := effSum / n

			var status, emoji string
			switch {
			case avgEff >= 90:
				status, emoji = "Excellent", "🌟"
			case avgEff >= 85:
				status, emoji = "Good", "👍"
			case avgEff >= 80:
				status, emoji = "Fair", "📊"
			default:
				status, emoji = "Needs improvement", "⚠️"
			}

			return fmt.Sprintf(`Sleep Efficiency Analysis (Last %d Days):

%s **Overall: %s**

📊 **Metrics**
• Average Efficiency: %.0f%%
• Range: %.0f%% - %.0f%%
• Avg Time to Fall Asleep: %.0f min

📈 **Benchmarks**
• 90%%+: Excellent efficiency
• 85-89%%: Good efficiency
• 80-84%%: Fair efficiency
• Below 80%%: Consider sleep hygiene improvements

💡 **Improvement Tips**
• Go to bed only when sleepy
• Keep a consistent sleep schedule
• Limit screen time 1 hour before bed
• Keep bedroom cool (65-68°F) and dark
• Avoid caffeine after 2 PM`,
				days,
				emoji, status,
				avgEff,
				minEff, maxEff,
				latencySum/n,
			), nil
		})
}

func (s *SleepToolset) optimalSleepTime(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.sleep.optimal_time", s.logger, raw,
		func(ctx context.Context, _ trace.Span, _ struct{}) (any, error) {
			rec, err := s.store.LatestSleepTimeRecommendation(ctx)
			if errors.Is(err, domain.ErrNotFound) {
				return "Not enough sleep data to determine optimal sleep time. Need at least 7 days of data.", nil
			}
			if err != nil {
				return nil, err
			}

			window := rec.Recommendation
			if window == "" {
				window = "Go to bed between 10 PM and 11 PM for best results."
			}

			return fmt.Sprintf(`Optimal Sleep Time Recommendations:

Based on your Oura ring data:

🛏️ **Recommended Window**
%s

💡 **Tips for Better Sleep Timing**
• Keep wake time consistent (even weekends)
• Expose yourself to morning light
• Dim lights 1-2 hours before bed
• Your body's natural circadian rhythm matters most

Note: Individual optimal sleep times vary. Pay attention to how you feel on days following different bedtimes.`,
				window,
			), nil
		})
}
