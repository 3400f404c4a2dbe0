package imagejob

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persona_image_jobs_submitted_total",
			Help: "Total number of image jobs submitted, by outcome.",
		},
		[]string{"status"}, // success, error_config, error_http, error_clock
	)
	imageFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persona_image_fetches_total",
			Help: "Total number of generated image downloads, by outcome.",
		},
		[]string{"status"},
	)
	imageBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "persona_image_fetch_bytes",
		Help:    "Size of downloaded images in bytes.",
		Buckets: prometheus.ExponentialBuckets(64*1024, 2, 8), // 64KiB .. 8MiB
	})
)
