package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/interfaces"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/service/scoring"
	"github.com/secmon-lab/cottus/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

type RiskUseCase struct {
	repo        interfaces.Repository
	engine      *scoring.Engine
	concurrency int
}

func NewRiskUseCase(repo interfaces.Repository, engine *scoring.Engine, concurrency int) *RiskUseCase {
	return &RiskUseCase{
		repo:        repo,
		engine:      engine,
		concurrency: concurrency,
	}
}

func (uc *RiskUseCase) CreateRisk(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	input := risk.Copy()
	input.ID = ""
	input.Treatment = input.Treatment.Normalize()
	if err := input.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid risk")
	}
	if err := uc.ensureAppetite(ctx, input.AppetiteID); err != nil {
		return nil, err
	}

	created, err := uc.repo.Risk().Create(ctx, input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk")
	}
	return created, nil
}

func (uc *RiskUseCase) UpdateRisk(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	if _, err := uc.GetRisk(ctx, risk.ID); err != nil {
		return nil, err
	}

	input := risk.Copy()
	input.Treatment = input.Treatment.Normalize()
	if err := input.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid risk", goerr.V(model.RiskIDKey, risk.ID))
	}
	if err := uc.ensureAppetite(ctx, input.AppetiteID); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Risk().Update(ctx, input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V(model.RiskIDKey, risk.ID))
	}
	return updated, nil
}

func (uc *RiskUseCase) GetRisk(ctx context.Context, id model.RiskID) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(model.RiskIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(model.RiskIDKey, id))
	}
	return risk, nil
}

func (uc *RiskUseCase) ListRisks(ctx context.Context) ([]*model.Risk, error) {
	risks, err := uc.repo.Risk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}
	return risks, nil
}

// DeleteRisk removes the risk and its control implementation records
func (uc *RiskUseCase) DeleteRisk(ctx context.Context, id model.RiskID) error {
	if _, err := uc.GetRisk(ctx, id); err != nil {
		return err
	}

	impls, err := uc.repo.ControlImplementation().ListByRisk(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to list control implementations", goerr.V(model.RiskIDKey, id))
	}
	for _, impl := range impls {
		if err := uc.repo.ControlImplementation().Delete(ctx, id, impl.ControlID); err != nil {
			return goerr.Wrap(err, "failed to delete control implementation",
				goerr.V(model.RiskIDKey, id), goerr.V(model.ControlIDKey, impl.ControlID))
		}
	}

	if err := uc.repo.Risk().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V(model.RiskIDKey, id))
	}
	return nil
}

// PutControlImplementation records how a library control is applied to a risk
func (uc *RiskUseCase) PutControlImplementation(ctx context.Context, impl *model.ControlImplementation) error {
	if err := impl.Validate(); err != nil {
		return goerr.Wrap(err, "invalid control implementation", goerr.V(model.RiskIDKey, impl.RiskID))
	}
	if _, err := uc.GetRisk(ctx, impl.RiskID); err != nil {
		return err
	}
	if err := uc.ensureControl(ctx, impl.ControlID); err != nil {
		return err
	}

	if err := uc.repo.ControlImplementation().Put(ctx, impl); err != nil {
		return goerr.Wrap(err, "failed to put control implementation",
			goerr.V(model.RiskIDKey, impl.RiskID), goerr.V(model.ControlIDKey, impl.ControlID))
	}
	return nil
}

// ReplaceControlImplementations makes impls the complete set of controls of the risk.
// Everything is validated before the first write.
func (uc *RiskUseCase) ReplaceControlImplementations(ctx context.Context, riskID model.RiskID, impls []*model.ControlImplementation) ([]*model.ControlImplementation, error) {
	if _, err := uc.GetRisk(ctx, riskID); err != nil {
		return nil, err
	}

	keep := make(map[model.ControlID]bool, len(impls))
	for _, impl := range impls {
		impl.RiskID = riskID
		if err := impl.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid control implementation", goerr.V(model.RiskIDKey, riskID))
		}
		if err := uc.ensureControl(ctx, impl.ControlID); err != nil {
			return nil, err
		}
		keep[impl.ControlID] = true
	}

	existing, err := uc.repo.ControlImplementation().ListByRisk(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list control implementations", goerr.V(model.RiskIDKey, riskID))
	}
	for _, e := range existing {
		if keep[e.ControlID] {
			continue
		}
		if err := uc.repo.ControlImplementation().Delete(ctx, riskID, e.ControlID); err != nil {
			return nil, goerr.Wrap(err, "failed to delete control implementation",
				goerr.V(model.RiskIDKey, riskID), goerr.V(model.ControlIDKey, e.ControlID))
		}
	}

	for _, impl := range impls {
		if err := uc.repo.ControlImplementation().Put(ctx, impl); err != nil {
			return nil, goerr.Wrap(err, "failed to put control implementation",
				goerr.V(model.RiskIDKey, riskID), goerr.V(model.ControlIDKey, impl.ControlID))
		}
	}

	return uc.ListControlImplementations(ctx, riskID)
}

func (uc *RiskUseCase) ListControlImplementations(ctx context.Context, riskID model.RiskID) ([]*model.ControlImplementation, error) {
	impls, err := uc.repo.ControlImplementation().ListByRisk(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list control implementations", goerr.V(model.RiskIDKey, riskID))
	}
	return impls, nil
}

// Assess evaluates the inherent and residual risk of a register entry. appetiteID
// overrides the appetite attached to the risk; when both are empty no band is resolved.
func (uc *RiskUseCase) Assess(ctx context.Context, riskID model.RiskID, appetiteID model.AppetiteID) (*model.Assessment, error) {
	risk, err := uc.GetRisk(ctx, riskID)
	if err != nil {
		return nil, err
	}

	var appetite *model.RiskAppetite
	switch {
	case appetiteID != "":
		appetite, err = uc.getAppetite(ctx, appetiteID)
		if err != nil {
			return nil, err
		}
	case risk.AppetiteID != "":
		appetite, err = uc.getAppetite(ctx, risk.AppetiteID)
		if errors.Is(err, ErrAppetiteNotFound) {
			logging.From(ctx).Warn("risk refers to a missing appetite, assessing without bands",
				"risk_id", risk.ID, "appetite_id", risk.AppetiteID)
		} else if err != nil {
			return nil, err
		}
	}

	return uc.assess(ctx, risk, appetite)
}

// AssessAll evaluates every risk against its own appetite. Risks are assessed in
// parallel with bounded concurrency; results keep the order of ListRisks.
func (uc *RiskUseCase) AssessAll(ctx context.Context) ([]*model.Assessment, error) {
	risks, err := uc.ListRisks(ctx)
	if err != nil {
		return nil, err
	}

	appetites, err := uc.repo.Appetite().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list appetites")
	}
	appetiteByID := make(map[model.AppetiteID]*model.RiskAppetite, len(appetites))
	for _, a := range appetites {
		appetiteByID[a.ID] = a
	}

	results := make([]*model.Assessment, len(risks))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.concurrency)

	for i, risk := range risks {
		eg.Go(func() error {
			assessment, err := uc.assess(egCtx, risk, appetiteByID[risk.AppetiteID])
			if err != nil {
				return goerr.Wrap(err, "failed to assess risk", goerr.V(model.RiskIDKey, risk.ID))
			}
			results[i] = assessment
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (uc *RiskUseCase) assess(ctx context.Context, risk *model.Risk, appetite *model.RiskAppetite) (*model.Assessment, error) {
	impls, err := uc.ListControlImplementations(ctx, risk.ID)
	if err != nil {
		return nil, err
	}

	controls := make([]model.ControlImplementation, len(impls))
	for i, impl := range impls {
		controls[i] = *impl
	}

	inherentScore, err := uc.engine.CalculateScore(risk.InherentSeverity, risk.InherentLikelihood)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid stored risk", goerr.V(model.RiskIDKey, risk.ID))
	}
	residual, err := uc.engine.EstimateResidual(risk.InherentSeverity, risk.InherentLikelihood, controls)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to estimate residual risk", goerr.V(model.RiskIDKey, risk.ID))
	}

	assessment := &model.Assessment{
		RiskID:        risk.ID,
		RiskTitle:     risk.Title,
		InherentScore: inherentScore,
		InherentLevel: uc.engine.ClassifyLevel(inherentScore),
		Residual:      residual,
	}
	if appetite != nil {
		if band, ok := scoring.ClassifyBand(residual.Score, appetite.Bands); ok {
			assessment.Band = band
		}
		assessment.AppetiteID = appetite.ID
		assessment.Tolerance = appetite.Tolerance
		assessment.ExceedsTolerance = appetite.Tolerance > 0 && residual.Score > appetite.Tolerance
	}
	return assessment, nil
}

func (uc *RiskUseCase) getAppetite(ctx context.Context, id model.AppetiteID) (*model.RiskAppetite, error) {
	appetite, err := uc.repo.Appetite().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrAppetiteNotFound, "appetite not found", goerr.V(model.AppetiteIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get appetite", goerr.V(model.AppetiteIDKey, id))
	}
	return appetite, nil
}

func (uc *RiskUseCase) ensureAppetite(ctx context.Context, id model.AppetiteID) error {
	if id == "" {
		return nil
	}
	_, err := uc.getAppetite(ctx, id)
	return err
}

func (uc *RiskUseCase) ensureControl(ctx context.Context, id model.ControlID) error {
	if _, err := uc.repo.Control().Get(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrControlNotFound, "control not found", goerr.V(model.ControlIDKey, id))
		}
		return goerr.Wrap(err, "failed to get control", goerr.V(model.ControlIDKey, id))
	}
	return nil
}
