package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewPlacementMetrics(t *testing.T) {
	metrics := NewPlacementMetrics()

	if metrics == nil {
		t.Fatal("NewPlacementMetrics should not return nil")
	}
	if metrics.ordersPlaced == nil {
		t.Error("ordersPlaced counter should not be nil")
	}
	if metrics.ordersRejected == nil {
		t.Error("ordersRejected counter vec should not be nil")
	}
	if metrics.ordersFailed == nil {
		t.Error("ordersFailed counter should not be nil")
	}
	if metrics.placementDuration == nil {
		t.Error("placementDuration histogram should not be nil")
	}
	if metrics.stockConflicts == nil {
		t.Error("stockConflicts counter should not be nil")
	}
	if metrics.unreconciledOrders == nil {
		t.Error("unreconciledOrders counter should not be nil")
	}
	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}
	if metrics.inFlight == nil {
		t.Error("inFlight gauge should not be nil")
	}
}

func TestNewPlacementMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newPlacementMetricsWithRegisterer(reg)
	second := newPlacementMetricsWithRegisterer(reg)

	// Повторная регистрация должна вернуть уже существующие коллекторы.
	first.RecordPlaced()
	second.RecordPlaced()

	metric := &dto.Metric{}
	if err := first.ordersPlaced.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected shared counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordRejected(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newPlacementMetricsWithRegisterer(reg)

	metrics.RecordRejected(RejectReasonInsufficientStock)
	metrics.RecordRejected(RejectReasonInsufficientStock)
	metrics.RecordRejected(RejectReasonCustomerNotFound)

	metric := &dto.Metric{}
	counter := metrics.ordersRejected.WithLabelValues(RejectReasonInsufficientStock)
	if err := counter.(prometheus.Counter).Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newPlacementMetricsWithRegisterer(reg)

	metrics.RecordDuration(100 * time.Millisecond)
	metrics.RecordDuration(500 * time.Millisecond)

	metric := &dto.Metric{}
	if err := metrics.placementDuration.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 samples, got %d", metric.Histogram.GetSampleCount())
	}

	sum := metric.Histogram.GetSampleSum()
	if sum < 0.55 || sum > 0.65 {
		t.Errorf("expected sum around 0.6, got %f", sum)
	}
}

func TestInFlightLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newPlacementMetricsWithRegisterer(reg)

	metrics.RecordInFlightStarted()
	metrics.RecordInFlightStarted()
	metrics.RecordInFlightFinished()

	metric := &dto.Metric{}
	if err := metrics.inFlight.Write(metric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if metric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected 1.0 in flight, got %f", metric.Gauge.GetValue())
	}
}

func TestStockCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := newPlacementMetricsWithRegisterer(reg)

	metrics.RecordStockConflict()
	metrics.RecordUnreconciled()
	metrics.RecordUnreconciled()

	conflict := &dto.Metric{}
	if err := metrics.stockConflicts.Write(conflict); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if conflict.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 conflict, got %f", conflict.Counter.GetValue())
	}

	unreconciled := &dto.Metric{}
	if err := metrics.unreconciledOrders.Write(unreconciled); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if unreconciled.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 unreconciled orders, got %f", unreconciled.Counter.GetValue())
	}
}
