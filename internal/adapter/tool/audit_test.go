package tool

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"oura-ai/internal/domain"
)

func newAuditToolset(store *fakeHealthStore) *AuditToolset {
	return NewAuditToolset(store, testValidator(), nopLogger())
}

func TestAuditToolsetNames(t *testing.T) {
	got := toolNames(newAuditToolset(&fakeHealthStore{}).Tools())
	want := []string{
		"audit_all_data",
		"check_specific_data",
		"diagnose_sync_issues",
		"get_data_collection_status",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tools, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tool %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAuditAllFresh(t *testing.T) {
	store := &fakeHealthStore{
		sleep:     &domain.SleepPeriod{Day: daysAgo(0)},
		activity:  &domain.DailyActivity{Day: daysAgo(0)},
		readiness: &domain.Readiness{Day: daysAgo(0)},
	}
	tool := findTool(t, newAuditToolset(store).Tools(), "audit_all_data")

	res, err := tool.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(res.Content, "All data is up to date") {
		t.Errorf("unexpected content:\n%s", res.Content)
	}
}

func TestAuditAllMixed(t *testing.T) {
	store := &fakeHealthStore{
		sleep:    &domain.SleepPeriod{Day: daysAgo(6)},
		activity: &domain.DailyActivity{Day: daysAgo(0)},
	}
	tool := findTool(t, newAuditToolset(store).Tools(), "audit_all_data")

	res, err := tool.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(res.Content, "Some data needs attention") {
		t.Errorf("expected attention summary:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "6 days old") {
		t.Errorf("expected stale sleep finding:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "❌ **Readiness**: No data") {
		t.Errorf("expected missing readiness finding:\n%s", res.Content)
	}
}

func TestCheckSpecificData(t *testing.T) {
	store := &fakeHealthStore{readiness: &domain.Readiness{Day: daysAgo(0)}}
	tool := findTool(t, newAuditToolset(store).Tools(), "check_specific_data")

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"data_type":"Readiness"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(res.Content, "Readiness Data is Fresh") {
		t.Errorf("unexpected content:\n%s", res.Content)
	}
}

func TestCheckSpecificDataUnknownType(t *testing.T) {
	tool := findTool(t, newAuditToolset(&fakeHealthStore{}).Tools(), "check_specific_data")

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"data_type":"blood_pressure"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(res.Content, "Unknown data type") {
		t.Errorf("unexpected content:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "sleep, activity, readiness") {
		t.Errorf("expected valid types listed:\n%s", res.Content)
	}
}

func TestDiagnoseNoIssues(t *testing.T) {
	store := &fakeHealthStore{
		sleep:     &domain.SleepPeriod{Day: daysAgo(0)},
		activity:  &domain.DailyActivity{Day: daysAgo(0)},
		readiness: &domain.Readiness{Day: daysAgo(0)},
	}
	tool := findTool(t, newAuditToolset(store).Tools(), "diagnose_sync_issues")

	res, err := tool.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(res.Content, "No Sync Issues Detected") {
		t.Errorf("unexpected content:\n%s", res.Content)
	}
}

func TestDiagnoseFindsIssues(t *testing.T) {
	store := &fakeHealthStore{activity: &domain.DailyActivity{Day: daysAgo(0)}}
	tool := findTool(t, newAuditToolset(store).Tools(), "diagnose_sync_issues")

	res, err := tool.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(res.Content, "Sync Issue Diagnosis") {
		t.Errorf("unexpected content:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "No sleep periods data at all") {
		t.Errorf("expected missing sleep issue:\n%s", res.Content)
	}
}

func TestCollectionStatusEmpty(t *testing.T) {
	tool := findTool(t, newAuditToolset(&fakeHealthStore{}).Tools(), "get_data_collection_status")

	res, err := tool.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(res.Content, "No Data Collection") {
		t.Errorf("unexpected content:\n%s", res.Content)
	}
}

func TestCollectionStatusRecency(t *testing.T) {
	store := &fakeHealthStore{
		sleep:    &domain.SleepPeriod{Day: daysAgo(0)},
		activity: &domain.DailyActivity{Day: daysAgo(1)},
	}
	tool := findTool(t, newAuditToolset(store).Tools(), "get_data_collection_status")

	res, err := tool.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(res.Content, "Sleep: Today") {
		t.Errorf("expected today marker:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "Activity: Yesterday") {
		t.Errorf("expected yesterday marker:\n%s", res.Content)
	}
}

func TestAuditStoreErrorAborts(t *testing.T) {
	store := &fakeHealthStore{err: domain.ErrTimeout}
	tool := findTool(t, newAuditToolset(store).Tools(), "audit_all_data")

	res, err := tool.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("store errors must become error results, got: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error result")
	}
}
