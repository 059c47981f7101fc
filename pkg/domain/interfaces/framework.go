package interfaces

import (
	"context"

	"github.com/secmon-lab/cottus/pkg/domain/model"
)

type FrameworkRepository interface {
	Create(ctx context.Context, framework *model.Framework) (*model.Framework, error)
	Get(ctx context.Context, id model.FrameworkID) (*model.Framework, error)
	List(ctx context.Context) ([]*model.Framework, error)
	Delete(ctx context.Context, id model.FrameworkID) error
}
