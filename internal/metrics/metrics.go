// Package metrics holds the prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TaskMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_task_mutations_total",
			Help: "Task collection mutations by operation",
		},
		[]string{"op"},
	)
	StorageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_storage_failures_total",
			Help: "Recovered persisted-slot failures by operation",
		},
		[]string{"op"},
	)
	PostFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_post_fetches_total",
			Help: "Remote collection fetches by outcome",
		},
		[]string{"result"},
	)
	TasksGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskflow_tasks",
			Help: "Tasks in the collection by state",
		},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(TaskMutations)
	prometheus.MustRegister(StorageFailures)
	prometheus.MustRegister(PostFetches)
	prometheus.MustRegister(TasksGauge)
}
