package novelai

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeSuccess        = "success"
	outcomeDeliveryFailed = "delivery_failed"
)

var (
	generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novelai_generations_total",
			Help: "Finished generation jobs by outcome.",
		},
		[]string{"outcome"},
	)
	upstreamAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "novelai_upstream_attempts_total",
			Help: "Calls made to the NovelAI generate endpoint, retries included.",
		},
	)
	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "novelai_queue_depth",
			Help: "Jobs waiting behind the one generating.",
		},
	)
	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "novelai_generation_duration_seconds",
			Help:    "Time from a job starting to its image being delivered.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)
)

func init() {
	prometheus.MustRegister(generations, upstreamAttempts, queueDepth, generationDuration)
}
