package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeTab is an in-memory Tab for exercising pool invariants without a
// browser.
type fakeTab struct {
	mu        sync.Mutex
	closed    bool
	activated int
	closeErr  error
}

func (f *fakeTab) Activate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrTabClosed
	}
	f.activated++
	return nil
}

func (f *fakeTab) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}

func (f *fakeTab) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTab) activations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activated
}

func newFakePool(interval time.Duration) (*Pool, *[]*fakeTab) {
	created := []*fakeTab{}
	factory := func() (Tab, error) {
		t := &fakeTab{}
		created = append(created, t)
		return t, nil
	}
	return NewPool(factory, interval), &created
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestAcquireReleaseTracking(t *testing.T) {
	pool, _ := newFakePool(time.Hour) // rotation ticks never fire

	if pool.Size() != 0 || pool.RotationActive() {
		t.Fatal("fresh pool should be empty with rotation stopped")
	}

	for i := 0; i < 3; i++ {
		if _, _, err := pool.Acquire(fmt.Sprintf("task-%d", i)); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	if pool.Size() != 3 {
		t.Errorf("size = %d, want 3", pool.Size())
	}
	if !pool.RotationActive() {
		t.Error("rotation should be active while tabs are open")
	}

	pool.Release("task-1")
	if pool.Size() != 2 {
		t.Errorf("size after one release = %d, want 2", pool.Size())
	}
	if !pool.RotationActive() {
		t.Error("rotation should stay active while tabs remain")
	}

	pool.Release("task-0")
	pool.Release("task-2")
	if pool.Size() != 0 {
		t.Errorf("size after all releases = %d, want 0", pool.Size())
	}
	if pool.RotationActive() {
		t.Error("rotation should stop on the N→0 transition")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	pool, tabs := newFakePool(time.Hour)

	if _, _, err := pool.Acquire("task-a"); err != nil {
		t.Fatal(err)
	}

	pool.Release("never-acquired") // unknown id is a no-op
	if pool.Size() != 1 {
		t.Errorf("size = %d, want 1", pool.Size())
	}

	pool.Release("task-a")
	pool.Release("task-a") // second release is a no-op
	if pool.Size() != 0 {
		t.Errorf("size = %d, want 0", pool.Size())
	}
	if !(*tabs)[0].Closed() {
		t.Error("released tab should be closed")
	}
}

func TestAcquireAfterDrainRestartsRotation(t *testing.T) {
	pool, _ := newFakePool(time.Hour)

	pool.Acquire("first")
	pool.Release("first")
	if pool.RotationActive() {
		t.Fatal("rotation should be stopped after drain")
	}

	pool.Acquire("second")
	if !pool.RotationActive() {
		t.Error("rotation should restart on the 0→1 transition")
	}
	pool.Release("second")
}

func TestReleaseAll(t *testing.T) {
	pool, tabs := newFakePool(time.Hour)

	for i := 0; i < 4; i++ {
		if _, _, err := pool.Acquire(fmt.Sprintf("task-%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	// One tab fails to close; ReleaseAll must swallow it.
	(*tabs)[2].closeErr = errors.New("target crashed")

	pool.ReleaseAll()

	if pool.Size() != 0 {
		t.Errorf("size after ReleaseAll = %d, want 0", pool.Size())
	}
	if pool.RotationActive() {
		t.Error("rotation should be stopped after ReleaseAll")
	}
	for i, tab := range *tabs {
		if !tab.Closed() {
			t.Errorf("tab %d not closed by ReleaseAll", i)
		}
	}
}

func TestAcquireDuplicateTaskID(t *testing.T) {
	pool, tabs := newFakePool(5 * time.Millisecond)
	defer pool.ReleaseAll()

	_, firstID, err := pool.Acquire("dup")
	if err != nil {
		t.Fatal(err)
	}
	_, secondID, err := pool.Acquire("dup")
	if err != nil {
		t.Fatal(err)
	}
	if firstID == secondID {
		t.Fatalf("duplicate task ids must get distinct handles, both %q", firstID)
	}
	if _, _, err := pool.Acquire("other"); err != nil {
		t.Fatal(err)
	}
	if pool.Size() != 3 {
		t.Fatalf("size = %d, want 3 (no tab may be overwritten)", pool.Size())
	}

	pool.Release(firstID)
	if pool.Size() != 2 {
		t.Fatalf("size after releasing the first duplicate = %d, want 2", pool.Size())
	}

	// The rotation sweep keeps focusing the survivors; a stale entry for
	// the released handle would crash the rotation goroutine here.
	waitFor(t, func() bool {
		return (*tabs)[1].activations() > 0 && (*tabs)[2].activations() > 0
	}, "rotation never focused the remaining tabs after a duplicate release")
}

func TestReleaseAllOnEmptyPool(t *testing.T) {
	pool, _ := newFakePool(time.Hour)
	pool.ReleaseAll() // must not panic or block
	if pool.Size() != 0 || pool.RotationActive() {
		t.Error("empty pool should stay empty with rotation stopped")
	}
}

func TestRotationFocusesOpenTabs(t *testing.T) {
	pool, tabs := newFakePool(5 * time.Millisecond)

	pool.Acquire("task-a")
	pool.Acquire("task-b")
	defer pool.ReleaseAll()

	waitFor(t, func() bool {
		return (*tabs)[0].activations() > 0 && (*tabs)[1].activations() > 0
	}, "rotation never focused both tabs")
}

func TestRotationPrunesClosedTabs(t *testing.T) {
	pool, tabs := newFakePool(5 * time.Millisecond)

	pool.Acquire("task-a")
	pool.Acquire("task-b")
	defer pool.ReleaseAll()

	// Simulate an external closure the pool did not initiate.
	(*tabs)[0].Close()

	waitFor(t, func() bool { return pool.Size() == 1 },
		"rotation sweep never pruned the closed tab")
}

func TestRotationStopsWhenPruneEmptiesPool(t *testing.T) {
	pool, tabs := newFakePool(5 * time.Millisecond)

	pool.Acquire("task-a")
	(*tabs)[0].Close()

	waitFor(t, func() bool { return pool.Size() == 0 && !pool.RotationActive() },
		"rotation should stop once pruning empties the pool")
}

func TestAcquireFactoryFailure(t *testing.T) {
	boom := errors.New("browser gone")
	pool := NewPool(func() (Tab, error) { return nil, boom }, time.Hour)

	if _, _, err := pool.Acquire("task-a"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if pool.Size() != 0 || pool.RotationActive() {
		t.Error("failed acquire must not register a tab or start rotation")
	}
}
