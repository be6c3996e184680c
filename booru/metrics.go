package booru

import "github.com/prometheus/client_golang/prometheus"

var (
	tagLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booru_tag_lookups_total",
			Help: "Tag suggestion lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)
	searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booru_searches_total",
			Help: "Image searches by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(tagLookups, searches)
}
