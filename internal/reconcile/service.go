// Package reconcile keeps the device-to-software associations in the
// inventory in agreement with the OS versions devices actually report.
package reconcile

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/fleetward/osrecon/internal/criteria"
	"github.com/fleetward/osrecon/internal/metrics"
	"github.com/fleetward/osrecon/internal/model"
	"github.com/fleetward/osrecon/internal/probe"
	"github.com/fleetward/osrecon/internal/store"
)

// Options bound one reconciliation run.
type Options struct {
	// Concurrency is the maximum number of devices processed at once.
	Concurrency int

	// Timeout bounds the whole run; zero means no timeout.
	Timeout time.Duration
}

// Service is the reconciliation entry point: criteria in, batch report
// out.
type Service struct {
	repo   store.Repository
	prober probe.Prober
	logger *logrus.Entry
}

func NewService(repo store.Repository, prober probe.Prober, logger *logrus.Entry) *Service {
	return &Service{
		repo:   repo,
		prober: prober,
		logger: logger,
	}
}

// Run selects the target devices, validates preconditions, and drives
// the concurrent reconciliation pipeline over them. A precondition
// failure aborts before any network activity and returns no report;
// any other path returns the full report.
func (s *Service) Run(ctx context.Context, crit *model.SelectionCriteria, opts Options) (*model.BatchReport, error) {
	started := time.Now()

	devices, err := criteria.Select(ctx, s.repo, crit)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("devices", len(devices)).Info("device set selected")

	if err := Validate(devices); err != nil {
		s.logger.WithError(err).Error("precondition validation failed")
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	orchestrator := NewOrchestrator(
		s.prober,
		NewRegistry(s.repo),
		NewReconciler(s.repo),
		opts.Concurrency,
		s.logger,
	)

	report := orchestrator.Run(ctx, devices)

	s.observe(report, started)

	s.logger.WithFields(logrus.Fields{
		"devices": len(devices),
		"success": report.OverallSuccess,
		"runtime": time.Since(started).String(),
	}).Info("reconciliation run complete")

	return report, nil
}

func (s *Service) observe(report *model.BatchReport, started time.Time) {
	result := "success"
	if !report.OverallSuccess {
		result = "failure"
	}

	metrics.BatchRunTimeSummary.With(
		prometheus.Labels{"result": result},
	).Observe(time.Since(started).Seconds())

	for state, count := range report.Counts() {
		metrics.DeviceOutcomeCounter.With(
			prometheus.Labels{"state": string(state)},
		).Add(float64(count))
	}
}
