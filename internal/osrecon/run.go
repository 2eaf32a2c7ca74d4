// Package osrecon wires configuration, logging, the inventory store and
// the prober into the reconciliation service.
package osrecon

import (
	"context"

	"github.com/pkg/errors"

	"github.com/fleetward/osrecon/internal/config"
	"github.com/fleetward/osrecon/internal/criteria"
	"github.com/fleetward/osrecon/internal/log"
	"github.com/fleetward/osrecon/internal/metrics"
	"github.com/fleetward/osrecon/internal/model"
	"github.com/fleetward/osrecon/internal/probe"
	"github.com/fleetward/osrecon/internal/profiling"
	"github.com/fleetward/osrecon/internal/reconcile"
	"github.com/fleetward/osrecon/internal/store"
	"github.com/fleetward/osrecon/internal/version"
)

var errRunFailed = errors.New("reconciliation completed with failures")

// Run executes one reconciliation batch over the devices matching the
// given criteria.
func Run(ctx context.Context, args *model.Args, input *criteria.Input) error {
	cfg, err := config.Load(args.ConfigFile, args.LogLevel)
	if err != nil {
		return err
	}

	logger := log.NewLogrusLogger(cfg.LogLevel).
		WithFields(version.Current().AsMap())

	logger.WithFields(cfg.AsLogFields()).Infof("initializing %s", model.AppName)

	metrics.ListenAndServe(cfg.MetricsListenAddress, logger)
	version.ExportBuildInfoMetric()

	if args.EnableProfiling || cfg.EnableProfiling {
		profiling.Enable(logger)
	}

	crit, err := criteria.Parse(input)
	if err != nil {
		return err
	}

	repo, err := store.NewRepository(ctx, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "failed to open inventory")
	}
	defer repo.Close()

	prober := probe.NewSNMPProber(&cfg.SNMP, logger)
	service := reconcile.NewService(repo, prober, logger)

	report, err := service.Run(ctx, crit, reconcile.Options{
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.BatchTimeout,
	})
	if err != nil {
		return err
	}

	for state, count := range report.Counts() {
		logger.WithFields(map[string]interface{}{
			"state": string(state),
			"count": count,
		}).Info("batch outcome")
	}

	if !report.OverallSuccess {
		return errRunFailed
	}

	return nil
}
