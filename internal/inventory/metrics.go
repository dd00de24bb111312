package inventory

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelOp     = "op"
	labelResult = "result"
)

// Metrics exports catalog state and mutation outcomes. A nil *Metrics is a
// no-op.
type Metrics struct {
	Operations *prometheus.CounterVec
	Products   prometheus.Gauge
	StockValue prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_operations_total",
				Help: "Catalog mutations by operation and result",
			},
			[]string{labelOp, labelResult},
		),
		Products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_products",
			Help: "Products in the catalog",
		}),
		StockValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_stock_value",
			Help: "Sum of quantity times price over the catalog",
		}),
	}

	reg.MustRegister(m.Operations, m.Products, m.StockValue)
	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, resultLabel(err)).Inc()
}

func (m *Metrics) setState(products int, value float64) {
	if m == nil {
		return
	}
	m.Products.Set(float64(products))
	m.StockValue.Set(value)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateSKU):
		return "duplicate"
	default:
		return "error"
	}
}
