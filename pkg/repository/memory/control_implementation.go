package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
)

// implementationKey is a composite key for control implementations (riskID + controlID)
type implementationKey struct {
	riskID    model.RiskID
	controlID model.ControlID
}

type controlImplementationRepository struct {
	mu    sync.RWMutex
	impls map[implementationKey]*model.ControlImplementation
}

func newControlImplementationRepository() *controlImplementationRepository {
	return &controlImplementationRepository{
		impls: make(map[implementationKey]*model.ControlImplementation),
	}
}

func (r *controlImplementationRepository) Put(ctx context.Context, impl *model.ControlImplementation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := impl.Copy()
	saved.UpdatedAt = time.Now().UTC()
	r.impls[implementationKey{riskID: impl.RiskID, controlID: impl.ControlID}] = saved
	return nil
}

func (r *controlImplementationRepository) ListByRisk(ctx context.Context, riskID model.RiskID) ([]*model.ControlImplementation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var impls []*model.ControlImplementation
	for key, impl := range r.impls {
		if key.riskID == riskID {
			impls = append(impls, impl.Copy())
		}
	}

	sort.Slice(impls, func(i, j int) bool {
		return impls[i].ControlID < impls[j].ControlID
	})
	return impls, nil
}

func (r *controlImplementationRepository) Delete(ctx context.Context, riskID model.RiskID, controlID model.ControlID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := implementationKey{riskID: riskID, controlID: controlID}
	if _, exists := r.impls[key]; !exists {
		return goerr.Wrap(ErrNotFound, "control implementation not found",
			goerr.V(model.RiskIDKey, riskID), goerr.V(model.ControlIDKey, controlID))
	}
	delete(r.impls, key)
	return nil
}

func (r *controlImplementationRepository) DeleteByControls(ctx context.Context, controlIDs []model.ControlID) (int, error) {
	targets := make(map[model.ControlID]struct{}, len(controlIDs))
	for _, id := range controlIDs {
		targets[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for key := range r.impls {
		if _, ok := targets[key.controlID]; ok {
			delete(r.impls, key)
			deleted++
		}
	}
	return deleted, nil
}
