package interfaces

import (
	"context"

	"github.com/secmon-lab/cottus/pkg/domain/model"
)

// MappingAssistant improves rule based column mappings. Implementations must
// return base unchanged when they cannot help.
type MappingAssistant interface {
	Augment(ctx context.Context, base []model.ColumnMapping, header []string, rows [][]string) []model.ColumnMapping
}
