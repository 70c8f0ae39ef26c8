package services_test

import (
	"context"
	"testing"

	"clipforge/internal/services"
)

func TestContextCarriesJobMetadata(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithJobID(ctx, 7)
	ctx = services.WithPhase(ctx, "rendering")
	ctx = services.WithSessionID(ctx, "exp-20260114-013255")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != 7 {
		t.Fatalf("JobIDFromContext = %d, %v", id, ok)
	}
	if phase, ok := services.PhaseFromContext(ctx); !ok || phase != "rendering" {
		t.Fatalf("PhaseFromContext = %q, %v", phase, ok)
	}
	if session, ok := services.SessionIDFromContext(ctx); !ok || session != "exp-20260114-013255" {
		t.Fatalf("SessionIDFromContext = %q, %v", session, ok)
	}
}

func TestContextValuesAbsentByDefault(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.JobIDFromContext(ctx); ok {
		t.Error("job id should be absent on a bare context")
	}
	if _, ok := services.PhaseFromContext(ctx); ok {
		t.Error("phase should be absent on a bare context")
	}
	if _, ok := services.SessionIDFromContext(ctx); ok {
		t.Error("session id should be absent on a bare context")
	}
}

func TestWithPhaseReplacesEarlierValue(t *testing.T) {
	ctx := services.WithPhase(context.Background(), "extract")
	ctx = services.WithPhase(ctx, "encode")
	if phase, _ := services.PhaseFromContext(ctx); phase != "encode" {
		t.Fatalf("phase = %q, want the latest value", phase)
	}
}

func TestEmptyAnnotationsAreDropped(t *testing.T) {
	if _, ok := services.PhaseFromContext(services.WithPhase(context.Background(), "")); ok {
		t.Fatal("empty phase should not be stored")
	}
	if _, ok := services.SessionIDFromContext(services.WithSessionID(context.Background(), "")); ok {
		t.Fatal("empty session id should not be stored")
	}
}
