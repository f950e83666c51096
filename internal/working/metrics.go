package working

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// overflowResolutions counts overflow resolution runs.
	// Labels: strategy, outcome (resolved, failed, busy)
	overflowResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agent_recall",
		Subsystem: "working",
		Name:      "overflow_resolutions_total",
		Help:      "Working memory overflow resolutions by strategy and outcome",
	}, []string{"strategy", "outcome"})

	evictedItems = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agent_recall",
		Subsystem: "working",
		Name:      "evicted_items_total",
		Help:      "Items removed by oldest-first eviction",
	})

	safetyValveHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agent_recall",
		Subsystem: "working",
		Name:      "safety_valve_total",
		Help:      "Eviction loops stopped by the iteration cap",
	})
)
