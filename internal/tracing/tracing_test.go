package tracing

import (
	"context"
	"testing"

	"shark-tank-api/internal/config"
)

func TestNew_Disabled(t *testing.T) {
	tr, err := New(config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ctx, span := tr.StartSpan(context.Background(), "test")
	if ctx == nil {
		t.Fatal("Expected context")
	}
	if span.SpanContext().IsValid() {
		t.Error("Expected no-op span to carry an invalid span context")
	}
	span.End()

	if err := tr.Shutdown(context.Background()); err != nil {
		t.Errorf("Expected no-op shutdown, got %v", err)
	}
}
