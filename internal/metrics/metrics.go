package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline outcomes
const (
	OutcomeReplied    = "replied"
	OutcomeDefault    = "default"
	OutcomeBadRequest = "bad_request"
	OutcomeFailed     = "failed"
)

var (
	PipelineRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avatar_pipeline_requests_total",
		Help: "Pipeline runs by input kind and outcome",
	}, []string{"input", "outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "avatar_pipeline_stage_duration_seconds",
		Help:    "Time spent in each pipeline stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	StageFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avatar_pipeline_stage_failures_total",
		Help: "Pipeline failures by stage",
	}, []string{"stage"})

	DefaultResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avatar_default_responses_total",
		Help: "Canned responses sent by the default-response gate",
	}, []string{"reason"})

	UtterancesEnrichedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avatar_utterances_enriched_total",
		Help: "Utterances given audio and lip-sync",
	})
)

// ObserveStage records the time since start for stage
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
