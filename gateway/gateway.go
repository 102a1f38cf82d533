package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/use-agent/seatrack/carrier"
	"github.com/use-agent/seatrack/models"
	"github.com/use-agent/seatrack/session"
)

// Gateway dispatches lookup tasks to carrier workflows over pooled browser
// sessions. It owns the task lifecycle: validation, carrier resolution,
// session acquisition and guaranteed release, and envelope construction.
// Workflows only ever see a tab that is theirs for the duration of one task.
type Gateway struct {
	pool     *session.Pool
	registry *carrier.Registry
}

// New builds a gateway over the given pool and carrier registry.
func New(pool *session.Pool, registry *carrier.Registry) *Gateway {
	return &Gateway{pool: pool, registry: registry}
}

// Handle runs one task to completion and returns its envelope. Validation
// and carrier resolution fail before any session is acquired; from
// acquisition onward the session is released on every path, panics included.
func (g *Gateway) Handle(ctx context.Context, task models.LookupTask) *models.ResultEnvelope {
	return g.handle(ctx, task, nil)
}

func (g *Gateway) handle(ctx context.Context, task models.LookupTask, scope *Scope) *models.ResultEnvelope {
	if err := task.Validate(); err != nil {
		return models.ErrorEnvelope(task, messageOf(err), nil)
	}

	wf, ok := g.registry.Lookup(task.CarrierCode)
	if !ok {
		return models.ErrorEnvelope(task, fmt.Sprintf("No scraper for code %s", task.CarrierCode), nil)
	}

	tab, sessionID, err := g.pool.Acquire(task.TaskID())
	if err != nil {
		slog.Error("gateway: session acquisition failed", "trackingNumber", task.TrackingNumber, "error", err)
		return models.ErrorEnvelope(task, messageOf(err), nil)
	}
	if scope != nil {
		scope.track(sessionID)
	}
	defer func() {
		g.pool.Release(sessionID)
		if scope != nil {
			scope.untrack(sessionID)
		}
	}()

	slog.Info("gateway: task started",
		"taskID", sessionID, "code", task.CarrierCode, "trackingNumber", task.TrackingNumber)

	raw, err := g.run(ctx, wf, task, tab)
	if err != nil {
		slog.Warn("gateway: task failed", "taskID", sessionID, "error", err)
		return models.ErrorEnvelope(task, messageOf(err), raw)
	}

	slog.Info("gateway: task completed", "taskID", sessionID)
	return models.SuccessEnvelope(task, raw)
}

// run executes the workflow with panic isolation. A panicking workflow fails
// its own task and nothing else.
func (g *Gateway) run(ctx context.Context, wf carrier.Workflow, task models.LookupTask, tab session.Tab) (raw any, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("gateway: workflow panicked",
				"code", task.CarrierCode, "trackingNumber", task.TrackingNumber, "panic", r)
			err = models.NewTrackError(models.ErrCodeInternal, fmt.Sprintf("workflow panicked: %v", r), nil)
		}
	}()
	return wf.Run(ctx, task, tab)
}

// HandleBatch fans tasks out with full concurrency and delivers each
// envelope as it completes. deliver is never called concurrently with
// itself, so transports can write straight to a connection. The summary is
// returned only after every task has been delivered.
func (g *Gateway) HandleBatch(ctx context.Context, tasks []models.LookupTask, deliver func(*models.ResultEnvelope)) models.BatchSummary {
	return g.handleBatch(ctx, tasks, deliver, nil)
}

func (g *Gateway) handleBatch(ctx context.Context, tasks []models.LookupTask, deliver func(*models.ResultEnvelope), scope *Scope) models.BatchSummary {
	var (
		wg        sync.WaitGroup
		deliverMu sync.Mutex
		succeeded atomic.Int64
	)

	for _, task := range tasks {
		wg.Add(1)
		go func(task models.LookupTask) {
			defer wg.Done()

			envelope := g.handle(ctx, task, scope)
			if envelope.Status == models.StatusSuccess {
				succeeded.Add(1)
			}

			deliverMu.Lock()
			deliver(envelope)
			deliverMu.Unlock()
		}(task)
	}
	wg.Wait()

	summary := models.BatchSummary{
		Total:     len(tasks),
		Succeeded: int(succeeded.Load()),
	}
	summary.Failed = summary.Total - summary.Succeeded
	slog.Info("gateway: batch completed",
		"total", summary.Total, "succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary
}

// messageOf prefers the human-readable message of a TrackError over the full
// wrapped chain the Error method prints.
func messageOf(err error) string {
	var te *models.TrackError
	if errors.As(err, &te) {
		return te.Message
	}
	return err.Error()
}
