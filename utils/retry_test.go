package utils

import (
	"context"
	"errors"
	"testing"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, Logger: Discard()}
	calls := 0

	err := r.Do(context.Background(), "ping", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2}
	boom := errors.New("boom")

	err := r.Do(context.Background(), "ping", func(context.Context) error { return boom })

	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped boom", err)
	}
}
