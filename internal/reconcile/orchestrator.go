package reconcile

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fleetward/osrecon/internal/model"
	"github.com/fleetward/osrecon/internal/probe"
)

// Orchestrator fans the probe/register/reconcile pipeline out over a
// device set with bounded concurrency. Each device's pipeline is
// independent; a failure is isolated to that device's outcome.
type Orchestrator struct {
	prober      probe.Prober
	registry    *Registry
	reconciler  *Reconciler
	logger      *logrus.Entry
	concurrency int
}

func NewOrchestrator(prober probe.Prober, registry *Registry, reconciler *Reconciler, concurrency int, logger *logrus.Entry) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Orchestrator{
		prober:      prober,
		registry:    registry,
		reconciler:  reconciler,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Run processes every device and returns the full outcome collection.
// Cancellation stops dispatch; devices never dispatched report a
// cancelled outcome, in-flight devices finish or are abandoned as
// cancelled. Committed reconciliations are not rolled back.
func (o *Orchestrator) Run(ctx context.Context, devices []model.Device) *model.BatchReport {
	var (
		mu       sync.Mutex
		outcomes = make([]model.DeviceOutcome, 0, len(devices))
	)

	appendOutcome := func(outcome model.DeviceOutcome) {
		mu.Lock()
		outcomes = append(outcomes, outcome)
		mu.Unlock()
	}

	group := &errgroup.Group{}
	group.SetLimit(o.concurrency)

	for i := range devices {
		device := devices[i]

		if ctx.Err() != nil {
			appendOutcome(model.DeviceOutcome{
				DeviceID:   device.ID,
				DeviceName: device.Name,
				State:      model.OutcomeCancelled,
				Error:      ctx.Err(),
			})

			continue
		}

		group.Go(func() error {
			appendOutcome(o.processDevice(ctx, &device))
			return nil
		})
	}

	_ = group.Wait() // workers never return errors

	report := &model.BatchReport{Outcomes: outcomes, OverallSuccess: true}

	for i := range outcomes {
		switch outcomes[i].State {
		case model.OutcomeFailed, model.OutcomeCancelled:
			report.OverallSuccess = false
		}
	}

	return report
}

// processDevice runs one device's pipeline: probe, register the
// observed version, reconcile the association. Steps are strictly
// sequential.
func (o *Orchestrator) processDevice(ctx context.Context, device *model.Device) model.DeviceOutcome {
	logger := o.logger.WithFields(device.AsLogFields())

	outcome := model.DeviceOutcome{
		DeviceID:   device.ID,
		DeviceName: device.Name,
	}

	version, err := probe.Collect(ctx, o.prober, device)
	if err != nil {
		logger.WithError(err).Error("failed to retrieve OS version")
		return o.failed(ctx, outcome, err)
	}

	outcome.Version = version
	logger = logger.WithField("version", version)

	software, created, err := o.registry.Get(ctx, version, device.Platform.ID)
	if err != nil {
		logger.WithError(err).Error("software version registration failed")
		return o.failed(ctx, outcome, err)
	}

	if created {
		logger.WithField("softwareID", software.ID.String()).Info("registered new software version")
	}

	state, err := o.reconciler.Reconcile(ctx, device.ID, software)
	if err != nil {
		logger.WithError(err).Error("association reconciliation failed")
		return o.failed(ctx, outcome, err)
	}

	outcome.State = state
	logger.WithFields(outcome.AsLogFields()).Info("device reconciled")

	return outcome
}

// failed classifies a pipeline error: context expiry marks the device
// cancelled, anything else failed.
func (o *Orchestrator) failed(ctx context.Context, outcome model.DeviceOutcome, err error) model.DeviceOutcome {
	outcome.Error = err

	if ctx.Err() != nil {
		outcome.State = model.OutcomeCancelled
	} else {
		outcome.State = model.OutcomeFailed
	}

	return outcome
}
