package cards

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "ratingcard",
	Subsystem: "cards",
	Name:      "render_duration_seconds",
	Help:      "Time taken to composite a rating card.",
	Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
}, []string{"game"})
