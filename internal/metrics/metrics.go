package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	// BatchRunTimeSummary observes the wall time of reconciliation runs.
	BatchRunTimeSummary = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: "osrecon",
			Name:      "batch_runtime_seconds",
			Help:      "Runtime of reconciliation batches by result.",
		},
		[]string{"result"},
	)

	// DeviceOutcomeCounter counts per-device terminal states.
	DeviceOutcomeCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "osrecon",
			Name:      "device_outcomes_total",
			Help:      "Per-device reconciliation outcomes by terminal state.",
		},
		[]string{"state"},
	)
)

// ListenAndServe exposes the metrics endpoint in the background.
func ListenAndServe(addr string, logger *logrus.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("metrics endpoint error")
		}
	}()
}
