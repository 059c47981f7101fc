package interfaces

import (
	"context"
)

// Repository defines the interface for data persistence
type Repository interface {
	Risk() RiskRepository
	Control() ControlRepository
	ControlImplementation() ControlImplementationRepository
	Framework() FrameworkRepository
	Appetite() AppetiteRepository

	// Close releases resources held by the backend
	Close(ctx context.Context) error
}
