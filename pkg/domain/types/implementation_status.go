package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ImplementationStatus represents how far a control has been put in place for a risk
type ImplementationStatus string

const (
	ImplementationStatusPlanned       ImplementationStatus = "planned"
	ImplementationStatusInProgress    ImplementationStatus = "in_progress"
	ImplementationStatusImplemented   ImplementationStatus = "implemented"
	ImplementationStatusNotApplicable ImplementationStatus = "not_applicable"
)

// AllImplementationStatuses returns all valid implementation statuses
func AllImplementationStatuses() []ImplementationStatus {
	return []ImplementationStatus{
		ImplementationStatusPlanned,
		ImplementationStatusInProgress,
		ImplementationStatusImplemented,
		ImplementationStatusNotApplicable,
	}
}

// IsValid checks if the implementation status is valid
func (s ImplementationStatus) IsValid() bool {
	switch s {
	case ImplementationStatusPlanned,
		ImplementationStatusInProgress,
		ImplementationStatusImplemented,
		ImplementationStatusNotApplicable:
		return true
	default:
		return false
	}
}

// String returns the string representation of the implementation status
func (s ImplementationStatus) String() string {
	return string(s)
}

// ParseImplementationStatus parses a string into an ImplementationStatus.
// Hyphens and spaces are accepted in place of underscores.
func ParseImplementationStatus(s string) (ImplementationStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)

	status := ImplementationStatus(normalized)
	if !status.IsValid() {
		return "", goerr.Wrap(ErrInvalidArgument, "unknown implementation status", goerr.V(ValueKey, s))
	}
	return status, nil
}
