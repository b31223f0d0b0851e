package usecase

import (
	"errors"
	"testing"

	"oura-ai/internal/domain"
)

func TestRegistryRegisterGet(t *testing.T) {
	reg := NewSpecialistRegistry(testLogger())
	sleep := &fakeSpecialist{name: domain.AgentSleepAnalyst}
	reg.Register(sleep)

	got, err := reg.Get(domain.AgentSleepAnalyst)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name() != domain.AgentSleepAnalyst {
		t.Errorf("got %q", got.Name())
	}
	if !reg.Has(domain.AgentSleepAnalyst) {
		t.Error("Has should report registered specialist")
	}
}

func TestRegistryUnknownAgent(t *testing.T) {
	reg := NewSpecialistRegistry(testLogger())

	_, err := reg.Get(domain.AgentName("nutritionist"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrUnknownAgent) {
		t.Errorf("error = %v", err)
	}
	if reg.Has("nutritionist") {
		t.Error("Has should be false for unknown agent")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	reg := NewSpecialistRegistry(testLogger())
	reg.Register(&fakeSpecialist{name: domain.AgentMemoryKeeper})
	reg.Register(&fakeSpecialist{name: domain.AgentDataAuditor})
	reg.Register(&fakeSpecialist{name: domain.AgentFitnessCoach})

	names := reg.Names()
	want := []domain.AgentName{domain.AgentDataAuditor, domain.AgentFitnessCoach, domain.AgentMemoryKeeper}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names = %v, want %v", names, want)
			break
		}
	}
}
