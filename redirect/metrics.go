package redirect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	redirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "urlkit_redirects_total",
			Help: "Total number of redirects issued",
		},
		[]string{"status"},
	)

	redirectErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "urlkit_redirect_errors_total",
			Help: "Total number of redirects refused",
		},
		[]string{"reason"},
	)
)
