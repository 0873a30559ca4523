package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rampgpt_questions_total",
			Help: "Total number of natural-language questions processed.",
		},
	)
	generationSentinelTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rampgpt_generation_sentinel_total",
			Help: "Total number of generations replaced by the sentinel query.",
		},
	)
	sanitizerRuleApplications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rampgpt_sanitizer_rule_applications_total",
			Help: "Total number of sanitizer rewrites that changed a query, by rule.",
		},
		[]string{"rule"},
	)
	sqlExecutionFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rampgpt_sql_execution_failures_total",
			Help: "Total number of SQL executions that ended in a captured failure.",
		},
	)
	retrievedExamples = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rampgpt_retrieved_examples",
			Help:    "Number of similar examples retrieved per question.",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)
	pipelineDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rampgpt_pipeline_duration_seconds",
			Help:    "End-to-end question pipeline latency in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
)

func init() {
	prometheus.MustRegister(
		questionsTotal,
		generationSentinelTotal,
		sanitizerRuleApplications,
		sqlExecutionFailuresTotal,
		retrievedExamples,
		pipelineDurationSeconds,
	)
}

func ObserveQuestion(elapsed time.Duration, executionFailed bool) {
	questionsTotal.Inc()
	pipelineDurationSeconds.Observe(elapsed.Seconds())
	if executionFailed {
		sqlExecutionFailuresTotal.Inc()
	}
}

func IncrementGenerationSentinel() {
	generationSentinelTotal.Inc()
}

func IncrementSanitizerRule(rule string) {
	sanitizerRuleApplications.WithLabelValues(rule).Inc()
}

func ObserveRetrievedExamples(count int) {
	if count < 0 {
		count = 0
	}
	retrievedExamples.Observe(float64(count))
}
