package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/repository/memory"
	"github.com/secmon-lab/cottus/pkg/usecase"
)

func setupControls(t *testing.T, repo *memory.Memory, n int) []*model.Control {
	t.Helper()
	ctx := context.Background()

	fw, err := repo.Framework().Create(ctx, &model.Framework{Name: "NIST"})
	gt.NoError(t, err).Required()

	var controls []*model.Control
	for i := 0; i < n; i++ {
		controls = append(controls, &model.Control{ID: model.NewControlID(), Code: string(rune('A' + i)), Title: "control"})
	}
	gt.NoError(t, repo.Control().SaveMany(ctx, fw.ID, controls)).Required()
	return controls
}

func TestRiskUseCase_CreateRisk(t *testing.T) {
	ctx := context.Background()

	t.Run("creates risk with default treatment", func(t *testing.T) {
		uc := usecase.New(memory.New())
		created, err := uc.Risk.CreateRisk(ctx, &model.Risk{
			Title:              "Ransomware",
			InherentSeverity:   types.SeverityCritical,
			InherentLikelihood: types.LikelihoodLikely,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).NotEqual(model.RiskID(""))
		gt.Value(t, created.Treatment).Equal(types.TreatmentMitigate)
	})

	testCases := []struct {
		name string
		risk *model.Risk
	}{
		{name: "missing title", risk: &model.Risk{InherentSeverity: types.SeverityLow, InherentLikelihood: types.LikelihoodRare}},
		{name: "unknown severity", risk: &model.Risk{Title: "x", InherentSeverity: "catastrophic", InherentLikelihood: types.LikelihoodRare}},
		{name: "unknown likelihood", risk: &model.Risk{Title: "x", InherentSeverity: types.SeverityLow, InherentLikelihood: "often"}},
		{name: "unknown treatment", risk: &model.Risk{Title: "x", InherentSeverity: types.SeverityLow, InherentLikelihood: types.LikelihoodRare, Treatment: "ignore"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := usecase.New(memory.New())
			_, err := uc.Risk.CreateRisk(ctx, tc.risk)
			gt.Value(t, err).NotNil()
		})
	}

	t.Run("unknown appetite", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.Risk.CreateRisk(ctx, &model.Risk{
			Title:              "x",
			InherentSeverity:   types.SeverityLow,
			InherentLikelihood: types.LikelihoodRare,
			AppetiteID:         model.NewAppetiteID(),
		})
		gt.Error(t, err).Is(usecase.ErrAppetiteNotFound)
	})
}

func TestRiskUseCase_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)
	controls := setupControls(t, repo, 1)

	created, err := uc.Risk.CreateRisk(ctx, &model.Risk{
		Title:              "Phishing",
		InherentSeverity:   types.SeverityMedium,
		InherentLikelihood: types.LikelihoodLikely,
	})
	gt.NoError(t, err).Required()

	created.Title = "Credential phishing"
	updated, err := uc.Risk.UpdateRisk(ctx, created)
	gt.NoError(t, err).Required()
	gt.Value(t, updated.Title).Equal("Credential phishing")

	gt.NoError(t, uc.Risk.PutControlImplementation(ctx, &model.ControlImplementation{
		RiskID: created.ID, ControlID: controls[0].ID, Status: types.ImplementationStatusImplemented,
	})).Required()

	gt.NoError(t, uc.Risk.DeleteRisk(ctx, created.ID)).Required()

	_, err = uc.Risk.GetRisk(ctx, created.ID)
	gt.Error(t, err).Is(usecase.ErrRiskNotFound)

	impls, err := repo.ControlImplementation().ListByRisk(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, impls).Length(0)

	_, err = uc.Risk.UpdateRisk(ctx, created)
	gt.Error(t, err).Is(usecase.ErrRiskNotFound)
}

func TestRiskUseCase_PutControlImplementation(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)
	controls := setupControls(t, repo, 1)

	risk, err := uc.Risk.CreateRisk(ctx, &model.Risk{
		Title: "r", InherentSeverity: types.SeverityHigh, InherentLikelihood: types.LikelihoodPossible,
	})
	gt.NoError(t, err).Required()

	t.Run("unknown control", func(t *testing.T) {
		err := uc.Risk.PutControlImplementation(ctx, &model.ControlImplementation{
			RiskID: risk.ID, ControlID: model.NewControlID(), Status: types.ImplementationStatusPlanned,
		})
		gt.Error(t, err).Is(usecase.ErrControlNotFound)
	})

	t.Run("effectiveness out of range", func(t *testing.T) {
		err := uc.Risk.PutControlImplementation(ctx, &model.ControlImplementation{
			RiskID: risk.ID, ControlID: controls[0].ID, Status: types.ImplementationStatusImplemented,
			EffectivenessEstimate: model.Effectiveness(150),
		})
		gt.Error(t, err).Is(types.ErrInvalidArgument)
	})

	t.Run("unknown risk", func(t *testing.T) {
		err := uc.Risk.PutControlImplementation(ctx, &model.ControlImplementation{
			RiskID: model.NewRiskID(), ControlID: controls[0].ID, Status: types.ImplementationStatusPlanned,
		})
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	})
}

func TestRiskUseCase_ReplaceControlImplementations(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)
	controls := setupControls(t, repo, 3)

	risk, err := uc.Risk.CreateRisk(ctx, &model.Risk{
		Title: "r", InherentSeverity: types.SeverityHigh, InherentLikelihood: types.LikelihoodPossible,
	})
	gt.NoError(t, err).Required()

	_, err = uc.Risk.ReplaceControlImplementations(ctx, risk.ID, []*model.ControlImplementation{
		{ControlID: controls[0].ID, Status: types.ImplementationStatusPlanned},
		{ControlID: controls[1].ID, Status: types.ImplementationStatusPlanned},
	})
	gt.NoError(t, err).Required()

	impls, err := uc.Risk.ReplaceControlImplementations(ctx, risk.ID, []*model.ControlImplementation{
		{ControlID: controls[2].ID, Status: types.ImplementationStatusImplemented},
	})
	gt.NoError(t, err).Required()
	gt.Array(t, impls).Length(1)
	gt.Value(t, impls[0].ControlID).Equal(controls[2].ID)

	t.Run("invalid entry aborts before writing", func(t *testing.T) {
		_, err := uc.Risk.ReplaceControlImplementations(ctx, risk.ID, []*model.ControlImplementation{
			{ControlID: controls[0].ID, Status: types.ImplementationStatusPlanned},
			{ControlID: controls[1].ID, Status: "done"},
		})
		gt.Error(t, err).Is(types.ErrInvalidArgument)

		impls, err := uc.Risk.ListControlImplementations(ctx, risk.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, impls).Length(1)
	})
}

func TestRiskUseCase_Assess(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)
	controls := setupControls(t, repo, 2)

	appetite, err := uc.Appetite.PutAppetite(ctx, &model.RiskAppetite{
		Name: "default",
		Bands: []model.Band{
			{Label: "Acceptable", MinScore: 1, MaxScore: 5},
			{Label: "Tolerable", MinScore: 6, MaxScore: 12},
			{Label: "Unacceptable", MinScore: 13, MaxScore: 25},
		},
		Tolerance: 5,
	})
	gt.NoError(t, err).Required()

	risk, err := uc.Risk.CreateRisk(ctx, &model.Risk{
		Title:              "Data breach",
		InherentSeverity:   types.SeverityCritical,
		InherentLikelihood: types.LikelihoodAlmostCertain,
		AppetiteID:         appetite.ID,
	})
	gt.NoError(t, err).Required()

	t.Run("no controls keeps inherent score", func(t *testing.T) {
		a, err := uc.Risk.Assess(ctx, risk.ID, "")
		gt.NoError(t, err).Required()
		gt.Value(t, a.InherentScore).Equal(25)
		gt.Value(t, a.InherentLevel).Equal(types.RiskLevelCritical)
		gt.Value(t, a.Residual.Score).Equal(25)
		gt.Value(t, a.Band.Label).Equal("Unacceptable")
		gt.Bool(t, a.ExceedsTolerance).True()
	})

	t.Run("implemented controls reduce residual", func(t *testing.T) {
		for _, c := range controls {
			gt.NoError(t, uc.Risk.PutControlImplementation(ctx, &model.ControlImplementation{
				RiskID: risk.ID, ControlID: c.ID, Status: types.ImplementationStatusImplemented,
			})).Required()
		}

		a, err := uc.Risk.Assess(ctx, risk.ID, "")
		gt.NoError(t, err).Required()
		gt.Value(t, a.Residual.Score).Equal(4)
		gt.Value(t, a.Residual.Level).Equal(types.RiskLevelLow)
		gt.Value(t, a.Band.Label).Equal("Acceptable")
		gt.Bool(t, a.ExceedsTolerance).False()
	})

	t.Run("explicit appetite without matching band", func(t *testing.T) {
		other, err := uc.Appetite.PutAppetite(ctx, &model.RiskAppetite{
			Name:  "strict",
			Bands: []model.Band{{Label: "Top", MinScore: 20, MaxScore: 25}},
		})
		gt.NoError(t, err).Required()

		a, err := uc.Risk.Assess(ctx, risk.ID, other.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, a.Band).Nil()
		gt.Value(t, a.AppetiteID).Equal(other.ID)
	})

	t.Run("unknown explicit appetite", func(t *testing.T) {
		_, err := uc.Risk.Assess(ctx, risk.ID, model.NewAppetiteID())
		gt.Error(t, err).Is(usecase.ErrAppetiteNotFound)
	})

	t.Run("deleted attached appetite assesses without bands", func(t *testing.T) {
		gt.NoError(t, uc.Appetite.DeleteAppetite(ctx, appetite.ID)).Required()
		a, err := uc.Risk.Assess(ctx, risk.ID, "")
		gt.NoError(t, err).Required()
		gt.Value(t, a.Band).Nil()
		gt.Bool(t, a.ExceedsTolerance).False()
	})
}

func TestRiskUseCase_AssessAll(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New(), usecase.WithAssessConcurrency(2))

	titles := []string{"a", "b", "c", "d", "e"}
	for _, title := range titles {
		_, err := uc.Risk.CreateRisk(ctx, &model.Risk{
			Title: title, InherentSeverity: types.SeverityMedium, InherentLikelihood: types.LikelihoodPossible,
		})
		gt.NoError(t, err).Required()
	}

	risks, err := uc.Risk.ListRisks(ctx)
	gt.NoError(t, err).Required()

	assessments, err := uc.Risk.AssessAll(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, assessments).Length(len(titles))
	for i, a := range assessments {
		gt.Value(t, a.RiskID).Equal(risks[i].ID)
		gt.Value(t, a.InherentScore).Equal(9)
		gt.Value(t, a.Residual.Score).Equal(9)
	}
}
