package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/angelmondragon/mallcart/internal/cart"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsCountsChangesAndFailures(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)

	m.CartChanged(ctx, cart.Change{Kind: cart.ChangeAdd, ItemCount: 2})
	m.CartChanged(ctx, cart.Change{Kind: cart.ChangeAdd, ItemCount: 3, Err: errors.New("quota")})
	m.CartChanged(ctx, cart.Change{Kind: cart.ChangeClear})

	if got := testutil.ToFloat64(m.changes.WithLabelValues("add")); got != 2 {
		t.Fatalf("expected 2 add changes, got %f", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("add")); got != 1 {
		t.Fatalf("expected 1 add failure, got %f", got)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "cart_changes_total", "kind", "clear"); err != nil {
		t.Fatalf("fetch clear: %v", err)
	} else if got != 1 {
		t.Fatalf("expected clear=1, got %f", got)
	}
	if count, sum, err := fetchHistogram(mfs, "cart_item_count"); err != nil {
		t.Fatalf("fetch histogram: %v", err)
	} else if count != 3 || sum != 5 {
		t.Fatalf("expected 3 observations summing to 5, got count=%d sum=%f", count, sum)
	}
}

func TestCartMetricsObservesStore(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)

	store, err := cart.New(ctx, cart.Options{
		Storage:  failingStorage{},
		Resolver: cart.StaticIdentity("guest"),
		Observer: m,
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	store.AddToCart(ctx, cart.Product{ID: "p1"}, 1)

	if got := testutil.ToFloat64(m.failures.WithLabelValues("load")); got != 1 {
		t.Fatalf("expected load failure counted, got %f", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("add")); got != 1 {
		t.Fatalf("expected add failure counted, got %f", got)
	}
}

func TestNilCartMetricsIsSafe(t *testing.T) {
	var m *CartMetrics
	m.CartChanged(context.Background(), cart.Change{Kind: cart.ChangeAdd})
	NewCartMetrics(nil).CartChanged(context.Background(), cart.Change{Kind: cart.ChangeAdd})
}

type failingStorage struct{}

func (failingStorage) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("down")
}

func (failingStorage) Set(context.Context, string, string) error {
	return errors.New("down")
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
	return 0, fmt.Errorf("metric %q with %s=%s not found", name, label, value)
}

func fetchHistogram(mfs []*dto.MetricFamily, name string) (uint64, float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil || len(mf.GetMetric()) == 0 {
		return 0, 0, fmt.Errorf("metric %q not found", name)
	}
	h := mf.GetMetric()[0].GetHistogram()
	return h.GetSampleCount(), h.GetSampleSum(), nil
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, key, value string) bool {
	for _, label := range labels {
		if label.GetName() == key && label.GetValue() == value {
			return true
		}
	}
	return false
}
