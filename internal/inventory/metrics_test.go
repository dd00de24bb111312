package inventory

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCatalogMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	c, err := Open(ctx, NewMemStore(mustProduct(t, "A", "a", "", 3, 10)), WithMetrics(m))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := testutil.ToFloat64(m.Products); got != 1 {
		t.Fatalf("products gauge after load = %v", got)
	}

	_ = c.Add(ctx, mustProduct(t, "B", "b", "", 2, 5))
	_ = c.Add(ctx, mustProduct(t, "B", "b", "", 2, 5))
	_ = c.Remove(ctx, "nope")
	_ = c.AdjustQuantity(ctx, "A", -10)

	checks := []struct {
		op, result string
		want       float64
	}{
		{"add", "ok", 1},
		{"add", "duplicate", 1},
		{"remove", "not_found", 1},
		{"adjust_quantity", "validation", 1},
	}
	for _, ck := range checks {
		if got := testutil.ToFloat64(m.Operations.WithLabelValues(ck.op, ck.result)); got != ck.want {
			t.Fatalf("%s/%s = %v want %v", ck.op, ck.result, got, ck.want)
		}
	}

	if got := testutil.ToFloat64(m.Products); got != 2 {
		t.Fatalf("products gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.StockValue); got != 40 {
		t.Fatalf("stock value gauge = %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.observe("add", nil)
	m.setState(1, 1)
}
