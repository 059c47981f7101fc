package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/secmon-lab/cottus/pkg/domain/interfaces"
	"github.com/secmon-lab/cottus/pkg/domain/model"
)

// recordingNotifier keeps every notification it receives
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []*model.Notification
	err           error
}

func (n *recordingNotifier) Notify(ctx context.Context, notification *model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notifications)
}

// stubAssistant maps every unmapped column to a fixed field
type stubAssistant struct {
	called bool
}

func (a *stubAssistant) Augment(ctx context.Context, base []model.ColumnMapping, header []string, rows [][]string) []model.ColumnMapping {
	a.called = true
	out := make([]model.ColumnMapping, len(base))
	copy(out, base)
	for i := range out {
		if !out[i].TargetField.IsMapped() {
			out[i].TargetField = "guidance"
			out[i].Confidence = 0.5
			out[i].Reasoning = "AI: stub"
			break
		}
	}
	return out
}

// waitFor polls cond until it holds or a second has passed
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// failingSaveRepository stores only the first control of a SaveMany call and
// then fails, once failSave is set
type failingSaveRepository struct {
	interfaces.Repository
	control *failingControlRepository
}

func newFailingSaveRepository(repo interfaces.Repository) *failingSaveRepository {
	return &failingSaveRepository{
		Repository: repo,
		control:    &failingControlRepository{ControlRepository: repo.Control()},
	}
}

func (r *failingSaveRepository) Control() interfaces.ControlRepository {
	return r.control
}

type failingControlRepository struct {
	interfaces.ControlRepository
	failSave bool
}

func (r *failingControlRepository) SaveMany(ctx context.Context, frameworkID model.FrameworkID, controls []*model.Control) error {
	if !r.failSave {
		return r.ControlRepository.SaveMany(ctx, frameworkID, controls)
	}
	if len(controls) > 0 {
		if err := r.ControlRepository.SaveMany(ctx, frameworkID, controls[:1]); err != nil {
			return err
		}
	}
	return errors.New("write quota exceeded")
}
