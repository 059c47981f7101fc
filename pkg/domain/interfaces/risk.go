package interfaces

import (
	"context"

	"github.com/secmon-lab/cottus/pkg/domain/model"
)

type RiskRepository interface {
	// Create stores a new risk. ID is generated when empty.
	Create(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Get retrieves a risk by ID
	Get(ctx context.Context, id model.RiskID) (*model.Risk, error)

	// List retrieves all risks ordered by creation time
	List(ctx context.Context) ([]*model.Risk, error)

	// Update replaces an existing risk
	Update(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Delete deletes a risk by ID
	Delete(ctx context.Context, id model.RiskID) error
}
