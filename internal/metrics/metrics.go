package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_plans_total",
		Help: "Number of daily planning runs executed.",
	})

	RoutesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_routes_generated_total",
		Help: "Number of routes materialized by the planner.",
	})

	UnroutableChildren = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_unroutable_children_total",
		Help: "Number of children the planner could not place on any route.",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "End-to-end HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "status"})
)
