package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "low_stock_scans_total",
			Help: "Total number of low stock scans by result",
		},
		[]string{"result"},
	)

	lowStockItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "low_stock_items",
			Help: "Number of items at or under their threshold at the last scan",
		},
	)
)

func init() {
	prometheus.MustRegister(scansTotal, lowStockItems)
}
