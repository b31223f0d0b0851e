package tool

import (
	"errors"
	"fmt"
	"testing"

	"oura-ai/internal/domain"
)

func TestClassifyNilError(t *testing.T) {
	if classifyToolError(nil) {
		t.Error("expected nil error to be non-retryable")
	}
}

func TestClassifyRetryableSentinels(t *testing.T) {
	for _, err := range []error{
		domain.ErrTimeout,
		domain.ErrProviderError,
		domain.ErrRateLimit,
		domain.ErrEmbeddingFailed,
	} {
		if !classifyToolError(err) {
			t.Errorf("expected %v to be retryable", err)
		}
	}
}

func TestClassifyWrappedSentinel(t *testing.T) {
	err := fmt.Errorf("readiness query: %w", domain.ErrTimeout)
	if !classifyToolError(err) {
		t.Error("expected wrapped sentinel to be retryable")
	}
	wrapped := domain.NewDomainError("HealthStore.SleepRange", domain.ErrProviderError, "backend down")
	if !classifyToolError(wrapped) {
		t.Error("expected DomainError-wrapped sentinel to be retryable")
	}
}

func TestClassifyPermanentSentinels(t *testing.T) {
	for _, err := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrToolNotFound,
		domain.ErrUnknownAgent,
	} {
		if classifyToolError(err) {
			t.Errorf("expected %v to be non-retryable", err)
		}
	}
}

func TestClassifyMessagePatterns(t *testing.T) {
	retryable := []string{
		"dial tcp 127.0.0.1:5432: connection refused",
		"read tcp: connection reset by peer",
		"lookup api.ouraring.com: no such host",
		"context deadline exceeded",
		"Service Unavailable",
		"database is locked",
	}
	for _, msg := range retryable {
		if !classifyToolError(errors.New(msg)) {
			t.Errorf("expected %q to be retryable", msg)
		}
	}

	permanent := []string{
		"no sleep data for 2026-01-01",
		"goal type must be one of sleep, activity, readiness",
		"parse days: invalid syntax",
	}
	for _, msg := range permanent {
		if classifyToolError(errors.New(msg)) {
			t.Errorf("expected %q to be non-retryable", msg)
		}
	}
}
