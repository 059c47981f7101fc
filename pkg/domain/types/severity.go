package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Severity is the impact axis of the risk matrix. Ordinals are fixed to 1..5.
type Severity string

const (
	SeverityNegligible Severity = "negligible"
	SeverityLow        Severity = "low"
	SeverityMedium     Severity = "medium"
	SeverityHigh       Severity = "high"
	SeverityCritical   Severity = "critical"
)

var severityOrdinals = map[Severity]int{
	SeverityNegligible: 1,
	SeverityLow:        2,
	SeverityMedium:     3,
	SeverityHigh:       4,
	SeverityCritical:   5,
}

// AllSeverities returns all severities in ascending ordinal order
func AllSeverities() []Severity {
	return []Severity{
		SeverityNegligible,
		SeverityLow,
		SeverityMedium,
		SeverityHigh,
		SeverityCritical,
	}
}

// Ordinal returns 1..5, or 0 for an unknown severity
func (s Severity) Ordinal() int {
	return severityOrdinals[s]
}

// IsValid checks if the severity is one of the known values
func (s Severity) IsValid() bool {
	_, ok := severityOrdinals[s]
	return ok
}

// Validate returns ErrInvalidArgument for unknown severities
func (s Severity) Validate() error {
	if !s.IsValid() {
		return goerr.Wrap(ErrInvalidArgument, "unknown severity", goerr.V(ValueKey, string(s)))
	}
	return nil
}

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a severity case-insensitively
func ParseSeverity(s string) (Severity, error) {
	severity := Severity(strings.ToLower(strings.TrimSpace(s)))
	if err := severity.Validate(); err != nil {
		return "", err
	}
	return severity, nil
}

// SeverityFromOrdinal converts 1..5 back to a Severity
func SeverityFromOrdinal(ordinal int) (Severity, error) {
	all := AllSeverities()
	if ordinal < 1 || ordinal > len(all) {
		return "", goerr.Wrap(ErrInvalidArgument, "severity ordinal out of range", goerr.V(OrdinalKey, ordinal))
	}
	return all[ordinal-1], nil
}
