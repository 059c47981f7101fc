package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
)

type appetiteRepository struct {
	mu        sync.RWMutex
	appetites map[model.AppetiteID]*model.RiskAppetite
}

func newAppetiteRepository() *appetiteRepository {
	return &appetiteRepository{
		appetites: make(map[model.AppetiteID]*model.RiskAppetite),
	}
}

func (r *appetiteRepository) Put(ctx context.Context, appetite *model.RiskAppetite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := appetite.Copy()
	saved.UpdatedAt = time.Now().UTC()
	r.appetites[saved.ID] = saved
	return nil
}

func (r *appetiteRepository) Get(ctx context.Context, id model.AppetiteID) (*model.RiskAppetite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.appetites[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "appetite not found", goerr.V(model.AppetiteIDKey, id))
	}
	return a.Copy(), nil
}

func (r *appetiteRepository) List(ctx context.Context) ([]*model.RiskAppetite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appetites := make([]*model.RiskAppetite, 0, len(r.appetites))
	for _, a := range r.appetites {
		appetites = append(appetites, a.Copy())
	}

	sort.Slice(appetites, func(i, j int) bool {
		return appetites[i].Name < appetites[j].Name
	})
	return appetites, nil
}

func (r *appetiteRepository) Delete(ctx context.Context, id model.AppetiteID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.appetites[id]; !exists {
		return goerr.Wrap(ErrNotFound, "appetite not found", goerr.V(model.AppetiteIDKey, id))
	}
	delete(r.appetites, id)
	return nil
}
