package refresher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var downloads = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ratingcard",
	Subsystem: "refresh",
	Name:      "cover_downloads_total",
	Help:      "Cover downloads attempted by catalog refreshes.",
}, []string{"game", "result"})
