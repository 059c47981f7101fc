package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cottus/pkg/domain/model/config"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

func TestScoringValidate(t *testing.T) {
	testCases := []struct {
		name    string
		modify  func(s *config.Scoring)
		wantErr bool
	}{
		{name: "default is valid", modify: func(s *config.Scoring) {}},
		{name: "thresholds not ascending", modify: func(s *config.Scoring) { s.Thresholds.High = 9 }, wantErr: true},
		{name: "critical above 25", modify: func(s *config.Scoring) { s.Thresholds.Critical = 26 }, wantErr: true},
		{name: "medium below 1", modify: func(s *config.Scoring) { s.Thresholds.Medium = 0 }, wantErr: true},
		{name: "cap above 1", modify: func(s *config.Scoring) { s.EffectivenessCap = 1.5 }, wantErr: true},
		{name: "cap of 1 allowed", modify: func(s *config.Scoring) { s.EffectivenessCap = 1 }},
		{name: "zero step", modify: func(s *config.Scoring) { s.StepWeight = 0 }, wantErr: true},
		{name: "factor out of range", modify: func(s *config.Scoring) {
			s.StatusFactors[types.ImplementationStatusPlanned] = 2
		}, wantErr: true},
		{name: "factor for not_applicable", modify: func(s *config.Scoring) {
			s.StatusFactors[types.ImplementationStatusNotApplicable] = 0.1
		}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := config.DefaultScoring()
			tc.modify(s)
			err := s.Validate()
			if tc.wantErr {
				gt.Error(t, err).Is(types.ErrInvalidArgument)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}
