package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
)

type riskRepository struct {
	mu    sync.RWMutex
	risks map[model.RiskID]*model.Risk

	// seq records insertion order; timestamps can collide
	seq     map[model.RiskID]int64
	nextSeq int64
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		risks: make(map[model.RiskID]*model.Risk),
		seq:   make(map[model.RiskID]int64),
	}
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := risk.Copy()
	if created.ID == "" {
		created.ID = model.NewRiskID()
	}
	if _, exists := r.risks[created.ID]; exists {
		return nil, goerr.New("risk already exists", goerr.V(model.RiskIDKey, created.ID))
	}

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.risks[created.ID] = created
	r.seq[created.ID] = r.nextSeq
	r.nextSeq++
	return created.Copy(), nil
}

func (r *riskRepository) Get(ctx context.Context, id model.RiskID) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risk, exists := r.risks[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V(model.RiskIDKey, id))
	}
	return risk.Copy(), nil
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risks := make([]*model.Risk, 0, len(r.risks))
	for _, risk := range r.risks {
		risks = append(risks, risk.Copy())
	}

	sort.Slice(risks, func(i, j int) bool {
		return r.seq[risks[i].ID] < r.seq[risks[j].ID]
	})
	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.risks[risk.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V(model.RiskIDKey, risk.ID))
	}

	updated := risk.Copy()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.risks[updated.ID] = updated
	return updated.Copy(), nil
}

func (r *riskRepository) Delete(ctx context.Context, id model.RiskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.risks[id]; !exists {
		return goerr.Wrap(ErrNotFound, "risk not found", goerr.V(model.RiskIDKey, id))
	}
	delete(r.risks, id)
	delete(r.seq, id)
	return nil
}
