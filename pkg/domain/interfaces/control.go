package interfaces

import (
	"context"

	"github.com/secmon-lab/cottus/pkg/domain/model"
)

type ControlRepository interface {
	// SaveMany stores controls of a framework, overwriting controls with the same ID
	SaveMany(ctx context.Context, frameworkID model.FrameworkID, controls []*model.Control) error

	// Get retrieves a control by ID
	Get(ctx context.Context, id model.ControlID) (*model.Control, error)

	// ListByFramework retrieves controls of a framework ordered by code
	ListByFramework(ctx context.Context, frameworkID model.FrameworkID) ([]*model.Control, error)

	// DeleteByFramework removes every control of a framework and returns the count
	DeleteByFramework(ctx context.Context, frameworkID model.FrameworkID) (int, error)

	// DeleteMany removes the listed controls and returns how many existed. Unknown IDs are ignored.
	DeleteMany(ctx context.Context, ids []model.ControlID) (int, error)
}

type ControlImplementationRepository interface {
	// Put creates or replaces the implementation record of a control for a risk
	Put(ctx context.Context, impl *model.ControlImplementation) error

	// ListByRisk retrieves implementation records attached to a risk
	ListByRisk(ctx context.Context, riskID model.RiskID) ([]*model.ControlImplementation, error)

	// Delete removes the record for (riskID, controlID)
	Delete(ctx context.Context, riskID model.RiskID, controlID model.ControlID) error

	// DeleteByControls removes every record that refers to one of controlIDs, across all risks
	DeleteByControls(ctx context.Context, controlIDs []model.ControlID) (int, error)
}
