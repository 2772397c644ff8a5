package service

import (
	"context"

	"github.com/atinyakov/FaultKeeper/internal/access"
	"github.com/atinyakov/FaultKeeper/internal/models"
)

// FaultDetail is a fault with its ordered resolution steps and the reader's
// access state after the read was charged.
type FaultDetail struct {
	Fault  models.FaultCode        `json:"fault"`
	Steps  []models.ResolutionStep `json:"steps"`
	Access access.State            `json:"access"`
}

// Detail serves gated fault pages.
type Detail struct {
	faults *FaultRepository
	steps  *StepRepository
	gate   *AccessGate
}

// NewDetail creates a Detail service.
func NewDetail(faults *FaultRepository, steps *StepRepository, gate *AccessGate) *Detail {
	return &Detail{faults: faults, steps: steps, gate: gate}
}

// Get returns the fault page for userID. Unknown faults and failed reads
// return an error without touching the quota; a denied read returns
// ErrQuotaExceeded.
func (d *Detail) Get(ctx context.Context, userID, faultID string) (*FaultDetail, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	fault, err := d.faults.GetByID(ctx, faultID)
	if err != nil {
		return nil, err
	}
	if fault == nil {
		return nil, ErrNotFound
	}

	// Steps are read before charging so a failed read costs no quota.
	steps, err := d.steps.ByFault(ctx, faultID)
	if err != nil {
		return nil, err
	}

	state, err := d.gate.Authorize(ctx, userID, faultID)
	if err != nil {
		return nil, err
	}
	return &FaultDetail{Fault: *fault, Steps: steps, Access: state}, nil
}
