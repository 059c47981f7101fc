package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

// RiskID is a UUID-based identifier for Risk
type RiskID string

// NewRiskID generates a new UUID v4 RiskID
func NewRiskID() RiskID {
	return RiskID(uuid.New().String())
}

// String returns the string representation of RiskID
func (id RiskID) String() string {
	return string(id)
}

// Risk is an entry of the risk register. The score is always derived from
// InherentSeverity and InherentLikelihood and never stored on the record.
type Risk struct {
	ID                 RiskID
	Title              string
	Description        string
	CategoryID         types.CategoryID
	Owner              string
	InherentSeverity   types.Severity
	InherentLikelihood types.Likelihood
	Treatment          types.TreatmentStrategy
	AppetiteID         AppetiteID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks required fields and enum values
func (r *Risk) Validate() error {
	if r.Title == "" {
		return goerr.Wrap(ErrMissingRequired, "risk title is required")
	}
	if err := r.InherentSeverity.Validate(); err != nil {
		return goerr.Wrap(err, "invalid inherent severity", goerr.V(RiskIDKey, r.ID))
	}
	if err := r.InherentLikelihood.Validate(); err != nil {
		return goerr.Wrap(err, "invalid inherent likelihood", goerr.V(RiskIDKey, r.ID))
	}
	if err := r.CategoryID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid category", goerr.V(RiskIDKey, r.ID))
	}
	if r.Treatment != "" && !r.Treatment.IsValid() {
		return goerr.Wrap(types.ErrInvalidArgument, "unknown treatment strategy",
			goerr.V(RiskIDKey, r.ID), goerr.V("treatment", r.Treatment))
	}
	return nil
}

// Copy returns a deep copy of the risk
func (r *Risk) Copy() *Risk {
	copied := *r
	return &copied
}
