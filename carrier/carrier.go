package carrier

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/use-agent/seatrack/models"
	"github.com/use-agent/seatrack/session"
)

// Workflow drives one carrier portal's interaction sequence for a task.
// A workflow owns its tab exclusively for the duration of Run; acquisition
// and release belong to the gateway. Run returns the carrier's raw data
// payload; on error the returned payload carries whatever partial data had
// been captured before the failure.
type Workflow interface {
	// Code is the carrier code this workflow serves, e.g. "12IH".
	Code() string
	Run(ctx context.Context, task models.LookupTask, tab session.Tab) (rawData any, err error)
}

// Registry maps carrier codes to their workflows.
type Registry struct {
	workflows map[string]Workflow
}

// NewRegistry builds a registry from the given workflows.
func NewRegistry(workflows ...Workflow) *Registry {
	r := &Registry{workflows: make(map[string]Workflow, len(workflows))}
	for _, w := range workflows {
		r.workflows[w.Code()] = w
	}
	return r
}

// Lookup returns the workflow registered for code.
func (r *Registry) Lookup(code string) (Workflow, bool) {
	w, ok := r.workflows[code]
	return w, ok
}

// pageOf unwraps the browser page from a pooled tab.
func pageOf(tab session.Tab) (*rod.Page, error) {
	rt, ok := tab.(*session.RodTab)
	if !ok {
		return nil, models.NewTrackError(
			models.ErrCodeSessionFailure,
			"session does not expose a browser page",
			nil,
		)
	}
	return rt.Page(), nil
}
