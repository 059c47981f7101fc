package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

func TestCategoryID_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      types.CategoryID
		wantErr bool
	}{
		{"valid lowercase", "data-breach", false},
		{"valid single word", "security", false},
		{"valid with numbers", "risk-123", false},
		{"empty is optional", "", false},
		{"uppercase", "Data-Breach", true},
		{"spaces", "data breach", true},
		{"underscore", "data_breach", true},
		{"starting with hyphen", "-data", true},
		{"ending with hyphen", "data-", true},
		{"double hyphen", "data--breach", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("CategoryID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSeverity_Ordinal(t *testing.T) {
	for i, s := range types.AllSeverities() {
		gt.Value(t, s.Ordinal()).Equal(i + 1)

		back, err := types.SeverityFromOrdinal(i + 1)
		gt.NoError(t, err).Required()
		gt.Value(t, back).Equal(s)
	}

	gt.Value(t, types.Severity("catastrophic").Ordinal()).Equal(0)
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Severity
		wantErr bool
	}{
		{"lowercase", "high", types.SeverityHigh, false},
		{"mixed case with spaces", "  Critical ", types.SeverityCritical, false},
		{"negligible", "negligible", types.SeverityNegligible, false},
		{"unknown", "catastrophic", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseSeverity(tt.input)
			if tt.wantErr {
				gt.Error(t, err).Is(types.ErrInvalidArgument)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestParseLikelihood(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Likelihood
		wantErr bool
	}{
		{"underscore", "almost_certain", types.LikelihoodAlmostCertain, false},
		{"hyphen", "almost-certain", types.LikelihoodAlmostCertain, false},
		{"space and case", "Almost Certain", types.LikelihoodAlmostCertain, false},
		{"rare", "rare", types.LikelihoodRare, false},
		{"unknown", "always", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseLikelihood(tt.input)
			if tt.wantErr {
				gt.Error(t, err).Is(types.ErrInvalidArgument)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestLikelihoodFromOrdinal(t *testing.T) {
	for _, ordinal := range []int{0, 6, -1} {
		_, err := types.LikelihoodFromOrdinal(ordinal)
		gt.Error(t, err).Is(types.ErrInvalidArgument)
	}

	l, err := types.LikelihoodFromOrdinal(5)
	gt.NoError(t, err).Required()
	gt.Value(t, l).Equal(types.LikelihoodAlmostCertain)
}

func TestParseImplementationStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    types.ImplementationStatus
		wantErr bool
	}{
		{"implemented", types.ImplementationStatusImplemented, false},
		{"in-progress", types.ImplementationStatusInProgress, false},
		{"Not Applicable", types.ImplementationStatusNotApplicable, false},
		{"planned", types.ImplementationStatusPlanned, false},
		{"done", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseImplementationStatus(tt.input)
			if tt.wantErr {
				gt.Error(t, err).Is(types.ErrInvalidArgument)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestTargetField_IsValid(t *testing.T) {
	for _, f := range types.AllTargetFields() {
		gt.B(t, f.IsValid()).True()
		gt.B(t, f.IsMapped()).True()
	}
	gt.B(t, types.TargetFieldNone.IsValid()).False()
	gt.B(t, types.TargetFieldNone.IsMapped()).False()
	gt.B(t, types.TargetField("owner").IsValid()).False()
}

func TestTreatmentStrategy(t *testing.T) {
	gt.Value(t, types.TreatmentStrategy("").Normalize()).Equal(types.TreatmentMitigate)
	gt.B(t, types.TreatmentTransfer.IsValid()).True()

	_, err := types.ParseTreatmentStrategy("ignore")
	gt.Error(t, err).Is(types.ErrInvalidArgument)
}

func TestParseRiskLevel(t *testing.T) {
	level, err := types.ParseRiskLevel("high")
	gt.NoError(t, err).Required()
	gt.Value(t, level).Equal(types.RiskLevelHigh)

	_, err = types.ParseRiskLevel("HIGH")
	gt.Error(t, err).Is(types.ErrInvalidArgument)
}
