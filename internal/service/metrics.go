package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded by ProductsSynchronized.
const (
	resultSynchronized = "synchronized"
	resultRemoved      = "removed"
	resultNotFound     = "not_found"
	resultSerialize    = "serialization_failed"
	resultPublish      = "publish_failed"
)

var (
	// ProductsSynchronized counts product messages by outcome.
	ProductsSynchronized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "producer_products_synchronized_total",
			Help: "Product synchronize and remove attempts by result",
		},
		[]string{"result"},
	)

	// SyncAllDuration times full catalogue synchronizations.
	SyncAllDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "producer_sync_all_duration_seconds",
			Help:    "Duration of full catalogue synchronizations",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)
)
