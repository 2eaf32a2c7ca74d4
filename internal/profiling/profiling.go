package profiling

import (
	"net/http"
	_ "net/http/pprof" // nolint:gosec // profiling endpoint listens on localhost.
	"time"

	"github.com/sirupsen/logrus"
)

const (
	Endpoint          = "localhost:9091"
	ReadHeaderTimeout = 2 * time.Second
)

// Enable the profiling endpoint
func Enable(logger *logrus.Entry) {
	go func() {
		server := &http.Server{
			Addr:              Endpoint,
			ReadHeaderTimeout: ReadHeaderTimeout,
		}

		if err := server.ListenAndServe(); err != nil {
			logger.WithError(err).Error("failed to start profiling server")
		}
	}()

	logger.WithField("endpoint", Endpoint+"/debug/pprof").Info("profiling enabled")
}
