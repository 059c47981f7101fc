package memory

import (
	"context"

	"github.com/secmon-lab/cottus/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps every entity in process memory. Values returned to callers are
// copies, so mutating them never changes stored state.
type Memory struct {
	risk                  *riskRepository
	control               *controlRepository
	controlImplementation *controlImplementationRepository
	framework             *frameworkRepository
	appetite              *appetiteRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		risk:                  newRiskRepository(),
		control:               newControlRepository(),
		controlImplementation: newControlImplementationRepository(),
		framework:             newFrameworkRepository(),
		appetite:              newAppetiteRepository(),
	}
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) Control() interfaces.ControlRepository {
	return m.control
}

func (m *Memory) ControlImplementation() interfaces.ControlImplementationRepository {
	return m.controlImplementation
}

func (m *Memory) Framework() interfaces.FrameworkRepository {
	return m.framework
}

func (m *Memory) Appetite() interfaces.AppetiteRepository {
	return m.appetite
}

func (m *Memory) Close(ctx context.Context) error {
	return nil
}
