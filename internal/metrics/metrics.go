// Package metrics exposes Prometheus counters for the expiry aggregator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SweptTotal counts rows deleted by the expiry sweep per category.
	SweptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_expiry_swept_total",
			Help: "Total number of expired rows deleted per category",
		},
		[]string{"category"},
	)

	// DueFetchedTotal counts due rows returned by aggregation queries per category.
	DueFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_expiry_due_rows_total",
			Help: "Total number of due rows fetched per category",
		},
		[]string{"category"},
	)

	// CategoryErrorsTotal counts per-category failures during aggregation passes.
	CategoryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_expiry_errors_total",
			Help: "Total number of per-category failures during aggregation passes",
		},
		[]string{"category", "op"},
	)
)
