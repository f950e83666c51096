package vector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// idfLookups counts IDF cache lookups.
	// Labels: result (hit, miss)
	idfLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agent_recall",
		Subsystem: "idf",
		Name:      "lookups_total",
		Help:      "IDF cache lookups by result",
	}, []string{"result"})

	idfFlushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agent_recall",
		Subsystem: "idf",
		Name:      "flushes_total",
		Help:      "Full IDF cache flushes",
	})

	similarityCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "agent_recall",
		Subsystem: "similarity",
		Name:      "candidates",
		Help:      "Records scored per similarity query",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
)
