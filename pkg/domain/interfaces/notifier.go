package interfaces

import (
	"context"

	"github.com/secmon-lab/cottus/pkg/domain/model"
)

// Notifier delivers notifications to humans
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}
