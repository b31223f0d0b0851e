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

// AuditToolset builds the data auditor's tools: freshness checks over the
// synced ring data plus sync troubleshooting guidance.
type AuditToolset struct {
	store     domain.HealthStore
	validator *healthdata.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuditToolset creates the data auditing tools.
func NewAuditToolset(store domain.HealthStore, validator *healthdata.Validator, logger *slog.Logger) *AuditToolset {
	return &AuditToolset{store: store, validator: validator, logger: logger, now: time.Now}
}

var dataTypeSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"data_type": {
			"type": "string",
			"description": "Type of data to check (sleep, activity, readiness)"
		}
	},
	"required": ["data_type"]
}`)

type dataTypeParams struct {
	DataType string `json:"data_type"`
}

// Tools returns the data auditor's toolset.
func (a *AuditToolset) Tools() []domain.Tool {
	return []domain.Tool{
		&simpleTool{
			name:        "audit_all_data",
			description: "Audit freshness of all Oura data sources. Use this when the user asks about data quality, if their ring is syncing, or wants a complete overview of data status.",
			parameters:  noParamsSchema,
			run:         a.auditAll,
		},
		&simpleTool{
			name:        "check_specific_data",
			description: "Check freshness of a specific data type. Use this when the user asks about a specific type of data.",
			parameters:  dataTypeSchema,
			run:         a.checkSpecific,
		},
		&simpleTool{
			name:        "diagnose_sync_issues",
			description: "Diagnose potential ring sync issues. Use this when the user reports problems with their ring syncing or when data appears to be missing.",
			parameters:  noParamsSchema,
			run:         a.diagnose,
		},
		&simpleTool{
			name:        "get_data_collection_status",
			description: "Get the status of data collection from the Oura API. Use this when the user asks about the data pipeline, collection status, or wants to know if data is being pulled from Oura.",
			parameters:  noParamsSchema,
			run:         a.collectionStatus,
		},
	}
}

// sourceCheck is one audited table: its display name, validator key, and
// the newest record's day (zero when no record exists).
type sourceCheck struct {
	display string
	table   string
	latest  time.Time
	found   bool
}

// checkSources fetches the newest record from each critical table. A store
// error aborts the audit; a missing record is a finding, not an error.
func (a *AuditToolset) checkSources(ctx context.Context) ([]sourceCheck, error) {
	checks := make([]sourceCheck, 0, 3)

	sleep, err := a.store.LastNightSleep(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	c := sourceCheck{display: "Sleep Periods", table: "oura_sleep_periods"}
	if sleep != nil {
		c.latest, c.found = sleep.Day, true
	}
	checks = append(checks, c)

	activity, err := a.store.TodayActivity(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	c = sourceCheck{display: "Activity", table: "oura_activity"}
	if activity != nil {
		c.latest, c.found = activity.Day, true
	}
	checks = append(checks, c)

	readiness, err := a.store.LatestReadiness(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	c = sourceCheck{display: "Readiness", table: "oura_readiness"}
	if readiness != nil {
		c.latest, c.found = readiness.Day, true
	}
	checks = append(checks, c)

	return checks, nil
}

func (a *AuditToolset) auditAll(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.audit.all", a.logger, raw,
		func(ctx context.Context, _ trace.Span, _ struct{}) (any, error) {
			checks, err := a.checkSources(ctx)
			if err != nil {
				return nil, err
			}

			lines := make([]string, 0, len(checks))
			allOK := true
			for _, c := range checks {
				n := 0
				if c.found {
					n = 1
				}
				v := a.validator.Validate(c.table, c.latest, n)
				switch {
				case !v.Valid:
					lines = append(lines, fmt.Sprintf("❌ **%s**: No data", c.display))
					allOK = false
				case v.Stale:
					lines = append(lines, fmt.Sprintf("⚠️ **%s**: %d days old", c.display, v.DaysOld))
					allOK = false
				default:
					lines = append(lines, fmt.Sprintf("✅ **%s**: Fresh (as of %s)", c.display, v.LatestDate))
				}
			}

			summary := "🟢 **All data is up to date!**"
			recommendation := "Your Oura ring is syncing properly. No action needed."
			if !allOK {
				summary = "🟡 **Some data needs attention**"
				recommendation = `**Recommended Actions:**
1. Open the Oura app and let it sync
2. Make sure Bluetooth is enabled on your phone
3. Check your ring's battery level
4. Try force-closing and reopening the Oura app`
			}

			return fmt.Sprintf(`📊 **Data Quality Audit**

%s

%s

%s`, summary, strings.Join(lines, "\n"), recommendation), nil
		})
}

// auditedTypes maps user-facing data type names to validator table keys.
var auditedTypes = map[string]string{
	"sleep":     "oura_sleep_periods",
	"activity":  "oura_activity",
	"readiness": "oura_readiness",
}

func (a *AuditToolset) latestFor(ctx context.Context, dataType string) (time.Time, bool, error) {
	switch dataType {
	case "sleep":
		p, err := a.store.LastNightSleep(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			return time.Time{}, false, nil
		}
		if err != nil {
			return time.Time{}, false, err
		}
		return p.Day, true, nil
	case "activity":
		act, err := a.store.TodayActivity(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			return time.Time{}, false, nil
		}
		if err != nil {
			return time.Time{}, false, err
		}
		return act.Day, true, nil
	case "readiness":
		r, err := a.store.LatestReadiness(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			return time.Time{}, false, nil
		}
		if err != nil {
			return time.Time{}, false, err
		}
		return r.Day, true, nil
	}
	return time.Time{}, false, nil
}

func (a *AuditToolset) checkSpecific(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.audit.specific", a.logger, raw,
		func(ctx context.Context, _ trace.Span, p dataTypeParams) (any, error) {
			dataType := strings.ToLower(strings.TrimSpace(p.DataType))
			table, ok := auditedTypes[dataType]
			if !ok {
				return fmt.Sprintf("Unknown data type: %s\n\nValid types: sleep, activity, readiness", dataType), nil
			}

			latest, found, err := a.latestFor(ctx, dataType)
			if err != nil {
				return nil, err
			}
			n := 0
			if found {
				n = 1
			}
			v := a.validator.Validate(table, latest, n)

			if !v.Valid {
				return fmt.Sprintf(`❌ **No %s Data**

No %s data found in the database. This could mean:
1. Your ring hasn't synced recently
2. There's a collection issue

**Try:**
1. Open the Oura app
2. Wait for the sync to complete
3. Check back in a few minutes`, titleCase(dataType), dataType), nil
			}

			if v.Stale {
				return fmt.Sprintf(`⚠️ **%s Data is Stale**

Last data: %s (%d days ago)

Your %s data is older than expected. This suggests your ring may not be syncing.

**Troubleshooting:**
1. Open the Oura app and sync
2. Check Bluetooth is enabled
3. Check ring battery
4. Force-close and reopen the app`, titleCase(dataType), v.LatestDate, v.DaysOld, dataType), nil
			}

			return fmt.Sprintf(`✅ **%s Data is Fresh**

Last update: %s

Your %s data is current and syncing properly!`, titleCase(dataType), v.LatestDate, dataType), nil
		})
}

func (a *AuditToolset) diagnose(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.audit.diagnose", a.logger, raw,
		func(ctx context.Context, _ trace.Span, _ struct{}) (any, error) {
			checks, err := a.checkSources(ctx)
			if err != nil {
				return nil, err
			}

			var issues []string
			for _, c := range checks {
				n := 0
				if c.found {
					n = 1
				}
				v := a.validator.Validate(c.table, c.latest, n)
				name := strings.ToLower(c.display)
				switch {
				case !v.Valid:
					issues = append(issues, fmt.Sprintf("❌ No %s data at all", name))
				case v.Stale:
					issues = append(issues, fmt.Sprintf("⚠️ %s data is %d days old", titleCase(name), v.DaysOld))
				}
			}

			if len(issues) == 0 {
				return `✅ **No Sync Issues Detected**

All your data is syncing properly:
- Sleep data is current
- Activity data is current
- Readiness data is current

Your Oura ring and our data collection are working well!`, nil
			}

			return fmt.Sprintf(`🔍 **Sync Issue Diagnosis**

**Issues Found:**
%s

**Likely Causes:**
1. **Ring hasn't synced** - Open the Oura app
2. **Bluetooth issues** - Check it's enabled
3. **Ring not worn** - Make sure you're wearing it
4. **Low battery** - Charge your ring
5. **App needs update** - Check for updates

**Step-by-Step Fix:**
1. 📱 Open the Oura app on your phone
2. ⏳ Wait 1-2 minutes for the sync icon to complete
3. 🔄 If stuck, force-close the app and reopen
4. 🔋 Check your ring battery in the app
5. 🔵 Make sure Bluetooth is on
6. 🌐 Ensure you have internet connectivity

If issues persist after these steps, try:
- Logging out and back into the Oura app
- Reinstalling the Oura app
- Contacting Oura support`, strings.Join(issues, "\n")), nil
		})
}

func (a *AuditToolset) collectionStatus(ctx context.Context, raw json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.audit.collection_status", a.logger, raw,
		func(ctx context.Context, _ trace.Span, _ struct{}) (any, error) {
			checks, err := a.checkSources(ctx)
			if err != nil {
				return nil, err
			}

			today := a.now()
			var lines []string
			for _, c := range checks {
				if !c.found {
					continue
				}
				name := strings.TrimSuffix(c.display, " Periods")
				daysAgo := daysBetween(c.latest, today)
				switch {
				case daysAgo == 0:
					lines = append(lines, fmt.Sprintf("✅ %s: Today", name))
				case daysAgo == 1:
					lines = append(lines, fmt.Sprintf("✅ %s: Yesterday", name))
				case daysAgo <= 2:
					lines = append(lines, fmt.Sprintf("⚠️ %s: %d days ago", name, daysAgo))
				default:
					lines = append(lines, fmt.Sprintf("❌ %s: %d days ago", name, daysAgo))
				}
			}

			if len(lines) == 0 {
				return `❌ **No Data Collection**

No data has been collected from your Oura account yet.

This could mean:
1. The data collector hasn't run yet
2. There's an authentication issue with the Oura API
3. No Oura account is configured

Please check with the system administrator to verify the data collection pipeline is working.`, nil
			}

			return fmt.Sprintf(`📡 **Data Collection Status**

**Latest Data Points:**
%s

**How It Works:**
1. Your Oura ring collects data continuously
2. The Oura app syncs data to Oura Cloud
3. Our collector fetches data from Oura Cloud
4. Data is stored in our database for analysis

**If Data Is Stale:**
- First, sync your Oura app
- Then wait for the collector to run (usually every few hours)
- Check back later for updated data`, strings.Join(lines, "\n")), nil
		})
}

// daysBetween counts whole calendar days from one day to another, ignoring
// time-of-day.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
