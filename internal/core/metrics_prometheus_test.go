package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorderCountsOutcomes(t *testing.T) {
	registry := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(registry)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()

	rec.Observe(ctx, "assign_tenant", true, 12*time.Millisecond)
	rec.Observe(ctx, "assign_tenant", true, 8*time.Millisecond)
	rec.Observe(ctx, "assign_tenant", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Second)

	if got := testutil.ToFloat64(rec.outcomes.WithLabelValues("assign_tenant", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(rec.outcomes.WithLabelValues("assign_tenant", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if got := testutil.CollectAndCount(rec.durations); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
}

func TestPrometheusRecorderDuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	if _, err := NewPrometheusMetricsRecorder(registry); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(registry); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestServicePublishesPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(registry)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	svc := NewInMemoryService(nil, WithMetricsRecorder(rec))
	if _, _, err := svc.CreateProject(context.Background(), Project{Name: "Central"}); err != nil {
		t.Fatalf("create project: %v", err)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, want := range []string{
		"tenantcore_service_operation_duration_seconds",
		"tenantcore_service_operation_results_total",
	} {
		if !names[want] {
			t.Fatalf("missing metric family %s, got %v", want, names)
		}
	}
	if got := testutil.ToFloat64(rec.outcomes.WithLabelValues("create_project", "success")); got != 1 {
		t.Fatalf("expected one recorded success, got %v", got)
	}
}
