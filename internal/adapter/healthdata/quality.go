package healthdata

import (
	"fmt"
	"strings"
	"time"

	"oura-ai/internal/domain"
)

// Validation is the freshness verdict for one table's query result.
// Tools check Valid before formatting and prepend Warning when Stale.
type Validation struct {
	Valid      bool
	Stale      bool
	DaysOld    int
	LatestDate string
	Warning    string
}

// freshnessThresholds is the number of days before a table's newest record
// counts as stale. Critical tables (sleep, activity, daily scores) need
// fresh data; workouts and sessions are sporadic by nature.
var freshnessThresholds = map[string]int{
	"sleep_periods":           2,
	"oura_sleep_periods":      2,
	"activity":                2,
	"oura_activity":           2,
	"daily_sleep":             1,
	"oura_daily_sleep":        1,
	"readiness":               1,
	"oura_readiness":          1,
	"daily_summaries":         1,
	"workouts":                7,
	"oura_workouts":           7,
	"sessions":                7,
	"oura_sessions":           7,
	"stress":                  2,
	"oura_stress":             2,
	"resilience":              3,
	"oura_resilience":         3,
	"spo2":                    2,
	"oura_spo2":               2,
	"vo2_max":                 30,
	"oura_vo2_max":            30,
	"cardiovascular_age":      90,
	"oura_cardiovascular_age": 90,
}

const defaultFreshnessThreshold = 3

// Validator checks query-result freshness so the agents never present
// stale ring data as current.
type Validator struct {
	now func() time.Time
}

// NewValidator returns a Validator using the wall clock.
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// Validate reports whether n records whose newest day is latest are usable
// for the given table. n == 0 yields an invalid result with a missing-data
// warning. A zero latest with records present counts as fresh (the result
// carries no dates).
func (v *Validator) Validate(table string, latest time.Time, n int) Validation {
	if n == 0 {
		return Validation{
			Valid:   false,
			Stale:   true,
			Warning: fmt.Sprintf("No %s data found in database.", displayName(table)),
		}
	}

	if latest.IsZero() {
		return Validation{Valid: true, LatestDate: "unknown"}
	}

	daysOld := daysBetween(latest, v.now())
	threshold, ok := freshnessThresholds[table]
	if !ok {
		threshold = defaultFreshnessThreshold
	}

	latestStr := latest.Format(domain.DateOnly)
	if daysOld > threshold {
		return Validation{
			Valid:      true,
			Stale:      true,
			DaysOld:    daysOld,
			LatestDate: latestStr,
			Warning: fmt.Sprintf(
				"⚠️ Data is %d days old (last: %s). Your Oura ring may not be syncing properly.",
				daysOld, latestStr,
			),
		}
	}

	return Validation{
		Valid:      true,
		DaysOld:    daysOld,
		LatestDate: latestStr,
	}
}

// displayName turns a table identifier into the human name used in
// missing-data warnings ("oura_sleep_periods" → "sleep periods").
func displayName(table string) string {
	name := strings.ReplaceAll(table, "_", " ")
	return strings.ReplaceAll(name, "oura ", "")
}

// daysBetween counts whole calendar days from one day to another,
// ignoring time-of-day.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
