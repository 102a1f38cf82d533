package gateway

import (
	"context"
	"sync"

	"github.com/use-agent/seatrack/models"
)

// Scope ties together the sessions spawned on behalf of one client
// connection, so a transport can tear down exactly its own sessions on
// disconnect without touching lookups owned by other clients. Sessions leave
// the scope as their tasks complete; Close only finds the ones still in
// flight.
type Scope struct {
	g *Gateway

	mu   sync.Mutex
	live map[string]struct{}
}

// NewScope creates an empty scope over the gateway's pool.
func (g *Gateway) NewScope() *Scope {
	return &Scope{g: g, live: make(map[string]struct{})}
}

// Handle is Gateway.Handle with the task's session tracked by the scope.
func (s *Scope) Handle(ctx context.Context, task models.LookupTask) *models.ResultEnvelope {
	return s.g.handle(ctx, task, s)
}

// HandleBatch is Gateway.HandleBatch with every task's session tracked by
// the scope.
func (s *Scope) HandleBatch(ctx context.Context, tasks []models.LookupTask, deliver func(*models.ResultEnvelope)) models.BatchSummary {
	return s.g.handleBatch(ctx, tasks, deliver, s)
}

// Close releases every session still live for this scope. Tasks whose
// session is pulled out from under them fail with a session error; their
// own deferred release becomes a no-op.
func (s *Scope) Close() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.live))
	for id := range s.live {
		ids = append(ids, id)
	}
	s.live = make(map[string]struct{})
	s.mu.Unlock()

	for _, id := range ids {
		s.g.pool.Release(id)
	}
}

func (s *Scope) track(id string) {
	s.mu.Lock()
	s.live[id] = struct{}{}
	s.mu.Unlock()
}

func (s *Scope) untrack(id string) {
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()
}
