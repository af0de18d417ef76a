// internal/service/marketplace/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_orders_placed_total",
		Help: "Number of orders successfully placed.",
	})

	orderFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_order_failures_total",
		Help: "Number of failed order placements, by reason.",
	}, []string{"reason"})

	ordersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_orders_cancelled_total",
		Help: "Number of orders cancelled (stock restored).",
	})

	stockConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_stock_conflicts_total",
		Help: "Number of order placements rejected for insufficient stock.",
	})
)
