package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/interfaces"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/service/scoring"
	"github.com/secmon-lab/cottus/pkg/utils/logging"
)

type AppetiteUseCase struct {
	repo interfaces.Repository
}

func NewAppetiteUseCase(repo interfaces.Repository) *AppetiteUseCase {
	return &AppetiteUseCase{repo: repo}
}

// PutAppetite creates or replaces an appetite profile. Overlapping bands are
// accepted because classification is first-match; they are only logged.
func (uc *AppetiteUseCase) PutAppetite(ctx context.Context, appetite *model.RiskAppetite) (*model.RiskAppetite, error) {
	input := appetite.Copy()
	if input.ID == "" {
		input.ID = model.NewAppetiteID()
	}
	if err := input.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid appetite")
	}

	for _, pair := range input.OverlappingBands() {
		logging.From(ctx).Warn("appetite bands overlap, the earlier band wins",
			"appetite_id", input.ID,
			"band", input.Bands[pair[0]].Label,
			"overlapped_band", input.Bands[pair[1]].Label,
		)
	}

	if err := uc.repo.Appetite().Put(ctx, input); err != nil {
		return nil, goerr.Wrap(err, "failed to put appetite", goerr.V(model.AppetiteIDKey, input.ID))
	}
	return uc.GetAppetite(ctx, input.ID)
}

func (uc *AppetiteUseCase) GetAppetite(ctx context.Context, id model.AppetiteID) (*model.RiskAppetite, error) {
	appetite, err := uc.repo.Appetite().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrAppetiteNotFound, "appetite not found", goerr.V(model.AppetiteIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get appetite", goerr.V(model.AppetiteIDKey, id))
	}
	return appetite, nil
}

func (uc *AppetiteUseCase) ListAppetites(ctx context.Context) ([]*model.RiskAppetite, error) {
	appetites, err := uc.repo.Appetite().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list appetites")
	}
	return appetites, nil
}

// DeleteAppetite removes the profile. Risks still referring to it are assessed without bands.
func (uc *AppetiteUseCase) DeleteAppetite(ctx context.Context, id model.AppetiteID) error {
	if err := uc.repo.Appetite().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrAppetiteNotFound, "appetite not found", goerr.V(model.AppetiteIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete appetite", goerr.V(model.AppetiteIDKey, id))
	}
	return nil
}

// Classify returns the first band of the appetite containing score. ok is false when
// no band matches, which is not an error.
func (uc *AppetiteUseCase) Classify(ctx context.Context, score int, appetiteID model.AppetiteID) (*model.Band, bool, error) {
	if score < model.MinRiskScore || score > model.MaxRiskScore {
		return nil, false, goerr.Wrap(types.ErrInvalidArgument, "score must be within 1..25", goerr.V("score", score))
	}

	appetite, err := uc.GetAppetite(ctx, appetiteID)
	if err != nil {
		return nil, false, err
	}

	band, ok := scoring.ClassifyBand(score, appetite.Bands)
	return band, ok, nil
}
