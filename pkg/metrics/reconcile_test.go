package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestReconcileMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewReconcileMetrics(reg)

	metrics.IncApplied("stock_update")
	metrics.IncApplied("stock_update")
	metrics.IncDropped("stock_update", DropReasonStale)
	metrics.IncClamp()
	metrics.IncRemoval()
	metrics.IncReconnect()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "inventory_events_applied", "event", "stock_update"); err != nil {
		t.Fatalf("fetch applied: %v", err)
	} else if got != 2 {
		t.Fatalf("expected applied=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "inventory_events_dropped", "reason", DropReasonStale); err != nil {
		t.Fatalf("fetch dropped: %v", err)
	} else if got != 1 {
		t.Fatalf("expected dropped=1, got %f", got)
	}

	for _, name := range []string{"cart_stock_clamps", "cart_stock_removals", "feed_reconnects"} {
		mf := findMetricFamily(mfs, name)
		if mf == nil {
			t.Fatalf("metric %q not exported", name)
		}
		if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
			t.Fatalf("expected %s=1, got %f", name, got)
		}
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	metrics := NewReconcileMetrics(nil)
	metrics.IncApplied("stock_update")
	metrics.IncDropped("stock_update", DropReasonMalformed)
	metrics.IncClamp()
	metrics.IncRemoval()
	metrics.IncReconnect()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
