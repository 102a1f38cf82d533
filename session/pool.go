package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Tab is one owned browser page bound exclusively to one in-flight task.
// Exactly one workflow drives a Tab at a time; the pool only ever touches
// its foreground state.
type Tab interface {
	// Activate brings the tab to the OS foreground.
	Activate() error
	// Close closes the tab. Closing an already-closed tab is a no-op.
	Close() error
	// Closed reports whether the tab has been closed, by us or externally.
	Closed() bool
}

// Factory creates a fresh Tab for a task.
type Factory func() (Tab, error)

// Pool owns the set of live tabs keyed by task ID and runs the background
// focus rotation. Many carrier sites throttle background tabs and some
// anti-bot heuristics flag tabs that never receive focus; round-robin
// foregrounding keeps every concurrent lookup alive from the site's
// perspective without serializing the lookups.
//
// Rotation runs iff the set is non-empty: it starts on the 0→1 transition
// and stops on the N→0 transition. It is purely best-effort and never
// required for extraction correctness.
type Pool struct {
	newTab   Factory
	interval time.Duration

	mu      sync.Mutex
	tabs    map[string]Tab
	order   []string
	current int
	seq     uint64        // suffix source for colliding task IDs
	stop    chan struct{} // non-nil while rotation runs
}

// NewPool creates a pool. Rotation does not start until the first Acquire.
func NewPool(newTab Factory, rotationInterval time.Duration) *Pool {
	return &Pool{
		newTab:   newTab,
		interval: rotationInterval,
		tabs:     make(map[string]Tab),
	}
}

// Acquire creates a new tab and registers it. The returned id is the handle
// for Release: it is taskID itself unless a lookup with the same id is still
// live (same tracking number submitted twice in one batch), in which case a
// sequence suffix keeps the two registrations distinct. If this is the first
// registered tab, the rotation timer starts.
func (p *Pool) Acquire(taskID string) (Tab, string, error) {
	tab, err := p.newTab()
	if err != nil {
		return nil, "", err
	}

	p.mu.Lock()
	id := taskID
	for {
		if _, exists := p.tabs[id]; !exists {
			break
		}
		p.seq++
		id = fmt.Sprintf("%s#%d", taskID, p.seq)
	}
	p.tabs[id] = tab
	p.order = append(p.order, id)
	total := len(p.tabs)
	var stop chan struct{}
	if p.stop == nil {
		stop = make(chan struct{})
		p.stop = stop
	}
	p.mu.Unlock()

	if stop != nil {
		slog.Info("session: starting tab rotation")
		go p.rotate(stop)
	}
	slog.Info("session: created tab", "taskId", id, "openTabs", total)
	return tab, id, nil
}

// Release closes the tab registered under taskID and deregisters it. If the
// set becomes empty, the rotation timer stops. Releasing an unknown or
// already-released taskID is a no-op.
func (p *Pool) Release(taskID string) {
	p.mu.Lock()
	tab, ok := p.tabs[taskID]
	if ok {
		p.removeLocked(taskID)
	}
	stop := p.takeStopIfEmptyLocked()
	p.mu.Unlock()

	if stop != nil {
		close(stop)
		slog.Info("session: stopped tab rotation")
	}
	if !ok {
		return
	}
	if err := tab.Close(); err != nil {
		slog.Warn("session: failed to close tab", "taskId", taskID, "error", err)
	}
	slog.Info("session: closed tab", "taskId", taskID)
}

// ReleaseAll stops rotation, closes every tracked tab concurrently, waits
// for all closures, and clears the set. Individual close failures are
// logged, never propagated. Used only at process shutdown or transport
// disconnect.
func (p *Pool) ReleaseAll() {
	p.mu.Lock()
	stop := p.stop
	p.stop = nil
	tabs := p.tabs
	p.tabs = make(map[string]Tab)
	p.order = nil
	p.current = 0
	p.mu.Unlock()

	if stop != nil {
		close(stop)
		slog.Info("session: stopped tab rotation")
	}

	var wg sync.WaitGroup
	for taskID, tab := range tabs {
		wg.Add(1)
		go func(id string, t Tab) {
			defer wg.Done()
			if err := t.Close(); err != nil {
				slog.Warn("session: error closing tab during shutdown", "taskId", id, "error", err)
			}
		}(taskID, tab)
	}
	wg.Wait()
	slog.Info("session: all tabs closed")
}

// Size returns the number of tracked tabs.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tabs)
}

// RotationActive reports whether the rotation timer is running.
func (p *Pool) RotationActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

// rotate is the rotation loop. It exits when stop is closed.
func (p *Pool) rotate(stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.focusNext()
		}
	}
}

// focusNext prunes tabs found already closed, then brings the next tab in
// round-robin order to the foreground. Foreground failures do not stop
// rotation.
func (p *Pool) focusNext() {
	p.mu.Lock()
	for id, t := range p.tabs {
		if t.Closed() {
			slog.Info("session: pruning externally closed tab", "taskId", id)
			p.removeLocked(id)
		}
	}
	if len(p.order) == 0 {
		stop := p.takeStopIfEmptyLocked()
		p.mu.Unlock()
		if stop != nil {
			close(stop)
			slog.Info("session: stopped tab rotation")
		}
		return
	}
	p.current = (p.current + 1) % len(p.order)
	taskID := p.order[p.current]
	tab, ok := p.tabs[taskID]
	if !ok {
		// order and tabs should never diverge; drop the stray entry
		// rather than let the sweep trip over it.
		slog.Warn("session: dropping untracked rotation entry", "taskId", taskID)
		p.removeLocked(taskID)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	if err := tab.Activate(); err != nil {
		slog.Warn("session: error focusing tab", "taskId", taskID, "error", err)
		return
	}
	slog.Debug("session: rotated focus", "taskId", taskID)
}

// removeLocked deregisters taskID. Caller must hold p.mu.
func (p *Pool) removeLocked(taskID string) {
	delete(p.tabs, taskID)
	for i, id := range p.order {
		if id == taskID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	if p.current >= len(p.order) {
		p.current = 0
	}
}

// takeStopIfEmptyLocked returns the stop channel (clearing it) when the set
// is empty, nil otherwise. Caller must hold p.mu and close the result.
func (p *Pool) takeStopIfEmptyLocked() chan struct{} {
	if len(p.tabs) != 0 || p.stop == nil {
		return nil
	}
	stop := p.stop
	p.stop = nil
	return stop
}
