package types

import "github.com/m-mizutani/goerr/v2"

// TreatmentStrategy is the chosen response to a registered risk
type TreatmentStrategy string

const (
	TreatmentMitigate TreatmentStrategy = "mitigate"
	TreatmentAccept   TreatmentStrategy = "accept"
	TreatmentTransfer TreatmentStrategy = "transfer"
	TreatmentAvoid    TreatmentStrategy = "avoid"
)

// IsValid checks if the treatment strategy is valid
func (t TreatmentStrategy) IsValid() bool {
	switch t {
	case TreatmentMitigate,
		TreatmentAccept,
		TreatmentTransfer,
		TreatmentAvoid:
		return true
	default:
		return false
	}
}

// Normalize returns the strategy, treating empty as TreatmentMitigate
func (t TreatmentStrategy) Normalize() TreatmentStrategy {
	if t == "" {
		return TreatmentMitigate
	}
	return t
}

// String returns the string representation of the treatment strategy
func (t TreatmentStrategy) String() string {
	return string(t)
}

// ParseTreatmentStrategy parses a string into a TreatmentStrategy
func ParseTreatmentStrategy(s string) (TreatmentStrategy, error) {
	strategy := TreatmentStrategy(s)
	if !strategy.IsValid() {
		return "", goerr.Wrap(ErrInvalidArgument, "unknown treatment strategy", goerr.V(ValueKey, s))
	}
	return strategy, nil
}
