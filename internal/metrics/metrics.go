// Package metrics Prometheus业务指标，经 /metrics 暴露
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "funradar_events_created_total",
		Help: "Number of hangout events created.",
	})

	SuggestionsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "funradar_suggestions_generated_total",
		Help: "Number of suggestion snapshots recorded, labeled by source (model name or fallback).",
	}, []string{"source"})

	VotesCast = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "funradar_votes_cast_total",
		Help: "Number of match votes written (creates and updates).",
	})

	EventsFinalized = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "funradar_events_finalized_total",
		Help: "Number of events auto-finalized after everyone voted.",
	})

	MatchJobsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "funradar_match_jobs_dropped_total",
		Help: "Number of match jobs deferred because the queue was full.",
	})
)

// Register 注册全部业务指标，进程启动时调用一次
func Register() {
	prometheus.MustRegister(
		EventsCreated,
		SuggestionsGenerated,
		VotesCast,
		EventsFinalized,
		MatchJobsDropped,
	)
}
