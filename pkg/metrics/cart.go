package metrics

import (
	"context"

	"github.com/angelmondragon/mallcart/internal/cart"
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics counts cart loads and mutations. It is a cart.Observer.
type CartMetrics struct {
	changes  *prometheus.CounterVec
	failures *prometheus.CounterVec
	items    prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	changes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_changes_total",
		Help: "Cart loads and mutations by kind.",
	}, []string{"kind"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_storage_failures_total",
		Help: "Cart storage reads or writes that failed and were swallowed.",
	}, []string{"kind"})
	items := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_item_count",
		Help:    "Units in the cart after each change.",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})
	reg.MustRegister(changes, failures, items)
	return &CartMetrics{
		changes:  changes,
		failures: failures,
		items:    items,
	}
}

func (m *CartMetrics) CartChanged(_ context.Context, change cart.Change) {
	if m == nil || m.changes == nil {
		return
	}
	kind := normalizeLabel(string(change.Kind))
	m.changes.WithLabelValues(kind).Inc()
	if change.Err != nil {
		m.failures.WithLabelValues(kind).Inc()
	}
	m.items.Observe(float64(change.ItemCount))
}

func normalizeLabel(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return kind
}
