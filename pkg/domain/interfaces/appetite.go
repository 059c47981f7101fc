package interfaces

import (
	"context"

	"github.com/secmon-lab/cottus/pkg/domain/model"
)

type AppetiteRepository interface {
	// Put creates or replaces a risk appetite profile
	Put(ctx context.Context, appetite *model.RiskAppetite) error
	Get(ctx context.Context, id model.AppetiteID) (*model.RiskAppetite, error)
	List(ctx context.Context) ([]*model.RiskAppetite, error)
	Delete(ctx context.Context, id model.AppetiteID) error
}
