package carrier

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAttemptReturnsFirstDoneResult(t *testing.T) {
	calls := 0
	v, err := Attempt(context.Background(), RetryPolicy{MaxAttempts: 3}, func(ctx context.Context) (int, bool, error) {
		calls++
		return 42, true, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Errorf("expected 42, got %d", v)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestAttemptRetriesOnNotDone(t *testing.T) {
	calls := 0
	v, err := Attempt(context.Background(), RetryPolicy{MaxAttempts: 3}, func(ctx context.Context) (string, bool, error) {
		calls++
		if calls < 3 {
			return "", false, nil
		}
		return "ok", true, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "ok" {
		t.Errorf("expected ok, got %q", v)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestAttemptExhaustedWithoutResult(t *testing.T) {
	calls := 0
	_, err := Attempt(context.Background(), RetryPolicy{MaxAttempts: 3}, func(ctx context.Context) (int, bool, error) {
		calls++
		return 0, false, nil
	})
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("expected ErrAttemptsExhausted, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestAttemptReturnsLastError(t *testing.T) {
	sentinel := errors.New("sensor never initialised")
	calls := 0
	_, err := Attempt(context.Background(), RetryPolicy{MaxAttempts: 2}, func(ctx context.Context) (int, bool, error) {
		calls++
		return 0, false, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestAttemptErrorThenSuccess(t *testing.T) {
	calls := 0
	v, err := Attempt(context.Background(), RetryPolicy{MaxAttempts: 3}, func(ctx context.Context) (int, bool, error) {
		calls++
		if calls == 1 {
			return 0, false, errors.New("flaky")
		}
		return 7, true, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 7 {
		t.Errorf("expected 7, got %d", v)
	}
}

func TestAttemptStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Attempt(ctx, RetryPolicy{MaxAttempts: 3}, func(ctx context.Context) (int, bool, error) {
		calls++
		return 0, false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected 0 calls after cancellation, got %d", calls)
	}
}

func TestAttemptPerAttemptTimeout(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 2, PerAttemptTimeout: 10 * time.Millisecond}
	calls := 0
	_, err := Attempt(context.Background(), policy, func(ctx context.Context) (int, bool, error) {
		calls++
		<-ctx.Done()
		return 0, false, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected both attempts to run, got %d", calls)
	}
}
