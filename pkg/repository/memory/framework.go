package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
)

type frameworkRepository struct {
	mu         sync.RWMutex
	frameworks map[model.FrameworkID]*model.Framework
}

func newFrameworkRepository() *frameworkRepository {
	return &frameworkRepository{
		frameworks: make(map[model.FrameworkID]*model.Framework),
	}
}

func (r *frameworkRepository) Create(ctx context.Context, framework *model.Framework) (*model.Framework, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := *framework
	if created.ID == "" {
		created.ID = model.NewFrameworkID()
	}
	if _, exists := r.frameworks[created.ID]; exists {
		return nil, goerr.New("framework already exists", goerr.V(model.FrameworkIDKey, created.ID))
	}

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.frameworks[created.ID] = &created
	result := created
	return &result, nil
}

func (r *frameworkRepository) Get(ctx context.Context, id model.FrameworkID) (*model.Framework, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fw, exists := r.frameworks[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "framework not found", goerr.V(model.FrameworkIDKey, id))
	}
	copied := *fw
	return &copied, nil
}

func (r *frameworkRepository) List(ctx context.Context) ([]*model.Framework, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	frameworks := make([]*model.Framework, 0, len(r.frameworks))
	for _, fw := range r.frameworks {
		copied := *fw
		frameworks = append(frameworks, &copied)
	}

	sort.Slice(frameworks, func(i, j int) bool {
		return frameworks[i].Name < frameworks[j].Name
	})
	return frameworks, nil
}

func (r *frameworkRepository) Delete(ctx context.Context, id model.FrameworkID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.frameworks[id]; !exists {
		return goerr.Wrap(ErrNotFound, "framework not found", goerr.V(model.FrameworkIDKey, id))
	}
	delete(r.frameworks, id)
	return nil
}
