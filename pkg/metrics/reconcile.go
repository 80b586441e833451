package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics records what the inventory reconciler did with incoming
// feed events and how the feed connection behaved.
type ReconcileMetrics struct {
	applied    *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	clamps     prometheus.Counter
	removals   prometheus.Counter
	reconnects prometheus.Counter
}

// Drop reasons recorded on the dropped counter.
const (
	DropReasonStale     = "stale"
	DropReasonMalformed = "malformed"
	DropReasonUnknown   = "unknown_event"
)

// NewReconcileMetrics registers the reconciliation metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_events_applied",
		Help: "Feed events applied to local state.",
	}, []string{"event"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_events_dropped",
		Help: "Feed events discarded before application.",
	}, []string{"event", "reason"})
	clamps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_stock_clamps",
		Help: "Cart lines clamped down by a stock decrease.",
	})
	removals := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_stock_removals",
		Help: "Cart lines removed because stock reached zero.",
	})
	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_reconnects",
		Help: "Inventory feed reconnect attempts.",
	})
	reg.MustRegister(applied, dropped, clamps, removals, reconnects)
	return &ReconcileMetrics{
		applied:    applied,
		dropped:    dropped,
		clamps:     clamps,
		removals:   removals,
		reconnects: reconnects,
	}
}

// IncApplied counts an applied event by feed event name.
func (m *ReconcileMetrics) IncApplied(event string) {
	if m == nil || m.applied == nil {
		return
	}
	m.applied.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncDropped counts a discarded event by feed event name and reason.
func (m *ReconcileMetrics) IncDropped(event, reason string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(event), normalizeLabel(reason)).Inc()
}

// IncClamp counts a cart quantity clamp.
func (m *ReconcileMetrics) IncClamp() {
	if m == nil || m.clamps == nil {
		return
	}
	m.clamps.Inc()
}

// IncRemoval counts a cart line removal caused by stock zero.
func (m *ReconcileMetrics) IncRemoval() {
	if m == nil || m.removals == nil {
		return
	}
	m.removals.Inc()
}

// IncReconnect counts a feed reconnect attempt.
func (m *ReconcileMetrics) IncReconnect() {
	if m == nil || m.reconnects == nil {
		return
	}
	m.reconnects.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
