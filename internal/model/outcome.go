package model

import "github.com/google/uuid"

// OutcomeState is the terminal state of one device's reconciliation.
type OutcomeState string

const (
	OutcomeCreated   OutcomeState = "created"
	OutcomeReplaced  OutcomeState = "replaced"
	OutcomeUnchanged OutcomeState = "unchanged"
	OutcomeFailed    OutcomeState = "failed"
	OutcomeCancelled OutcomeState = "cancelled"
)

// DeviceOutcome is the per-device result of a reconciliation run.
type DeviceOutcome struct {
	DeviceID   uuid.UUID
	DeviceName string
	State      OutcomeState

	// Version is the observed OS version, empty when probing failed.
	Version string

	// Error holds the failure detail for failed outcomes.
	Error error
}

func (o *DeviceOutcome) AsLogFields() map[string]interface{} {
	fields := map[string]interface{}{
		"deviceID": o.DeviceID.String(),
		"device":   o.DeviceName,
		"state":    string(o.State),
	}

	if o.Version != "" {
		fields["version"] = o.Version
	}

	if o.Error != nil {
		fields["error"] = o.Error.Error()
	}

	return fields
}

// BatchReport aggregates the outcomes of one reconciliation run.
type BatchReport struct {
	Outcomes       []DeviceOutcome
	OverallSuccess bool
}

// Counts returns the number of outcomes per terminal state.
func (r *BatchReport) Counts() map[OutcomeState]int {
	counts := make(map[OutcomeState]int)
	for i := range r.Outcomes {
		counts[r.Outcomes[i].State]++
	}

	return counts
}
