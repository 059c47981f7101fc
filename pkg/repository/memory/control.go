package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
)

type controlRepository struct {
	mu       sync.RWMutex
	controls map[model.ControlID]*model.Control
}

func newControlRepository() *controlRepository {
	return &controlRepository{
		controls: make(map[model.ControlID]*model.Control),
	}
}

func (r *controlRepository) SaveMany(ctx context.Context, frameworkID model.FrameworkID, controls []*model.Control) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, c := range controls {
		saved := c.Copy()
		if saved.ID == "" {
			saved.ID = model.NewControlID()
		}
		saved.FrameworkID = frameworkID
		if existing, ok := r.controls[saved.ID]; ok {
			saved.CreatedAt = existing.CreatedAt
		} else {
			saved.CreatedAt = now
		}
		saved.UpdatedAt = now
		r.controls[saved.ID] = saved
	}
	return nil
}

func (r *controlRepository) Get(ctx context.Context, id model.ControlID) (*model.Control, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.controls[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "control not found", goerr.V(model.ControlIDKey, id))
	}
	return c.Copy(), nil
}

func (r *controlRepository) ListByFramework(ctx context.Context, frameworkID model.FrameworkID) ([]*model.Control, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var controls []*model.Control
	for _, c := range r.controls {
		if c.FrameworkID == frameworkID {
			controls = append(controls, c.Copy())
		}
	}

	sort.Slice(controls, func(i, j int) bool {
		if controls[i].Code == controls[j].Code {
			return controls[i].ID < controls[j].ID
		}
		return controls[i].Code < controls[j].Code
	})
	return controls, nil
}

func (r *controlRepository) DeleteByFramework(ctx context.Context, frameworkID model.FrameworkID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, c := range r.controls {
		if c.FrameworkID == frameworkID {
			delete(r.controls, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *controlRepository) DeleteMany(ctx context.Context, ids []model.ControlID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := r.controls[id]; ok {
			delete(r.controls, id)
			deleted++
		}
	}
	return deleted, nil
}
