package model

import "github.com/secmon-lab/cottus/pkg/domain/types"

// ResidualRisk is the post-control restatement of a risk. Score is authoritative;
// Severity and Likelihood are a best-effort qualitative restatement and their
// product does not have to equal Score.
type ResidualRisk struct {
	Severity      types.Severity
	Likelihood    types.Likelihood
	Score         int
	Level         types.RiskLevel
	InherentScore int
	// Effectiveness is the capped average effectiveness applied, in 0..1
	Effectiveness float64
}

// Assessment combines inherent and residual scoring of one register entry
type Assessment struct {
	RiskID        RiskID
	RiskTitle     string
	InherentScore int
	InherentLevel types.RiskLevel
	Residual      *ResidualRisk
	// AppetiteID is empty when the assessment used no appetite
	AppetiteID AppetiteID
	// Band is nil when no appetite is attached or no band covers the residual score
	Band *Band
	// Tolerance is the appetite tolerance; 0 means the appetite sets none
	Tolerance int
	// ExceedsTolerance is true when the residual score is above the appetite tolerance
	ExceedsTolerance bool
}
