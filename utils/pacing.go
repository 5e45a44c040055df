package utils

import (
	"context"
	"sync"
	"time"
)

// Pacer inserts the fixed waits that let a rendered UI settle before its
// state is read. It is not a rate limiter and never adapts to errors.
type Pacer struct {
	mu     sync.Mutex
	waited time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a Pacer that really sleeps.
func NewPacer() *Pacer {
	return &Pacer{sleep: sleepContext}
}

// Pause blocks for d or until ctx is done.
func (p *Pacer) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if err := p.sleep(ctx, d); err != nil {
		return err
	}
	p.mu.Lock()
	p.waited += d
	p.mu.Unlock()
	return nil
}

// Waited returns the total time spent pausing.
func (p *Pacer) Waited() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waited
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
