package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

// ControlID is a UUID-based identifier for Control
type ControlID string

// NewControlID generates a new UUID v4 ControlID
func NewControlID() ControlID {
	return ControlID(uuid.New().String())
}

// Control is an entry of a framework's control library
type Control struct {
	ID                     ControlID
	FrameworkID            FrameworkID
	Code                   string
	Title                  string
	Description            string
	Domain                 string
	Subcategory            string
	ControlType            string
	Guidance               string
	ImplementationGuidance string
	ReferenceLinks         []string
	SecurityFunction       string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Copy returns a deep copy of the control
func (c *Control) Copy() *Control {
	copied := *c
	if c.ReferenceLinks != nil {
		copied.ReferenceLinks = make([]string, len(c.ReferenceLinks))
		copy(copied.ReferenceLinks, c.ReferenceLinks)
	}
	return &copied
}

// ControlImplementation records how a control is applied to a risk. It is the
// input of residual risk estimation.
type ControlImplementation struct {
	RiskID    RiskID
	ControlID ControlID
	Status    types.ImplementationStatus
	// EffectivenessEstimate is a percentage in 0..100; nil means not estimated
	EffectivenessEstimate *int
	Notes                 string
	UpdatedAt             time.Time
}

// Validate checks the status and the effectiveness range
func (c *ControlImplementation) Validate() error {
	if !c.Status.IsValid() {
		return goerr.Wrap(types.ErrInvalidArgument, "unknown implementation status",
			goerr.V(ControlIDKey, c.ControlID), goerr.V("status", c.Status))
	}
	if c.EffectivenessEstimate != nil {
		if e := *c.EffectivenessEstimate; e < 0 || e > 100 {
			return goerr.Wrap(types.ErrInvalidArgument, "effectiveness estimate must be between 0 and 100",
				goerr.V(ControlIDKey, c.ControlID), goerr.V("effectiveness", e))
		}
	}
	return nil
}

// Copy returns a deep copy of the control implementation
func (c *ControlImplementation) Copy() *ControlImplementation {
	copied := *c
	if c.EffectivenessEstimate != nil {
		e := *c.EffectivenessEstimate
		copied.EffectivenessEstimate = &e
	}
	return &copied
}

// Effectiveness returns a pointer to v. Convenience for building ControlImplementation literals.
func Effectiveness(v int) *int {
	return &v
}
