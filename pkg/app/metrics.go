package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "energybridge_messages_total",
			Help: "Total number of meter messages handled.",
		},
		[]string{"result"},
	)
	diagnosticsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "energybridge_diagnostics_total",
			Help: "Total number of diagnostics raised while deriving readings.",
		},
		[]string{"kind"},
	)
	storageWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "energybridge_storage_writes_total",
			Help: "Total number of storage writes.",
		},
		[]string{"table", "result"},
	)
	storageWriteDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "energybridge_storage_write_duration_seconds",
			Help:    "Storage write latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table"},
	)
	totalUsedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "energybridge_total_used_milli_kwh",
		Help: "Last valid cumulative usage in milli kWh.",
	})
	totalExportedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "energybridge_total_exported_milli_kwh",
		Help: "Last valid cumulative export in milli kWh.",
	})
)

const (
	resultOK           = "ok"
	resultDecodeError  = "decode_error"
	resultDeriveError  = "derive_error"
	resultStorageError = "storage_error"
	resultError        = "error"
)
