package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/interfaces"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/utils/logging"
)

// Assessor evaluates every risk in the register
type Assessor interface {
	AssessAll(ctx context.Context) ([]*model.Assessment, error)
}

// AppetiteBreachWorker periodically assesses the register and notifies when a
// residual score exceeds the tolerance of its appetite.
//
// A risk is notified once per residual level. It is notified again when its
// residual level changes while still in breach, or when it leaves and re-enters
// breach. State is kept in memory, so a restart notifies current breaches again.
type AppetiteBreachWorker struct {
	assessor Assessor
	notifier interfaces.Notifier
	interval time.Duration

	mu       sync.Mutex
	notified map[model.RiskID]types.RiskLevel

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewAppetiteBreachWorker creates a worker checking the register every interval
func NewAppetiteBreachWorker(assessor Assessor, notifier interfaces.Notifier, interval time.Duration) *AppetiteBreachWorker {
	return &AppetiteBreachWorker{
		assessor: assessor,
		notifier: notifier,
		interval: interval,
		notified: make(map[model.RiskID]types.RiskLevel),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the first check and the periodic loop in a goroutine. It does not block.
func (w *AppetiteBreachWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("breach check interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("appetite breach worker starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for the loop to exit
func (w *AppetiteBreachWorker) Stop() {
	logging.Default().Info("appetite breach worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("appetite breach worker stopped")
}

func (w *AppetiteBreachWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if _, err := w.Check(ctx); err != nil {
		logging.Default().Error("initial appetite breach check failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Check(ctx); err != nil {
				logging.Default().Error("appetite breach check failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("appetite breach worker context cancelled")
			return
		}
	}
}

// Check runs one assessment cycle and returns how many notifications were sent.
// A failed notification is retried on the next cycle.
func (w *AppetiteBreachWorker) Check(ctx context.Context) (int, error) {
	assessments, err := w.assessor.AssessAll(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to assess risks")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[model.RiskID]struct{}, len(assessments))
	sent := 0
	for _, a := range assessments {
		if !a.ExceedsTolerance {
			continue
		}
		seen[a.RiskID] = struct{}{}

		level := a.Residual.Level
		if last, ok := w.notified[a.RiskID]; ok && last == level {
			continue
		}

		if err := w.notifier.Notify(ctx, breachNotification(a)); err != nil {
			logging.From(ctx).Warn("failed to send breach notification", "error", err, "risk_id", a.RiskID)
			continue
		}
		w.notified[a.RiskID] = level
		sent++
	}

	for id := range w.notified {
		if _, ok := seen[id]; !ok {
			delete(w.notified, id)
		}
	}

	if sent > 0 {
		logging.From(ctx).Info("appetite breach notifications sent", "count", sent)
	}
	return sent, nil
}

func breachNotification(a *model.Assessment) *model.Notification {
	name := a.RiskTitle
	if name == "" {
		name = a.RiskID.String()
	}

	fields := map[string]string{
		"Residual score": strconv.Itoa(a.Residual.Score),
		"Residual level": string(a.Residual.Level),
		"Inherent score": strconv.Itoa(a.InherentScore),
		"Tolerance":      strconv.Itoa(a.Tolerance),
	}
	if a.Band != nil {
		fields["Band"] = a.Band.Label
	}

	return &model.Notification{
		Title: "Risk appetite exceeded: " + name,
		Body: fmt.Sprintf("Residual score %d of *%s* is above the tolerance %d.",
			a.Residual.Score, name, a.Tolerance),
		Fields: fields,
	}
}
