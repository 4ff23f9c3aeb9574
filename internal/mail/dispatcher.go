package mail

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const sendTimeout = 30 * time.Second

// Dispatcher queues confirmations and delivers them on background workers.
// Delivery is best-effort: failures and overflow are logged, never returned.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
	queue  chan Confirmation
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts workers goroutines draining a queue of size queueSize.
func NewDispatcher(sender Sender, log *zap.Logger, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	d := &Dispatcher{
		sender: sender,
		log:    log,
		queue:  make(chan Confirmation, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Enqueue schedules c without blocking. It reports whether c was accepted.
func (d *Dispatcher) Enqueue(c Confirmation) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("confirmation mail dropped: dispatcher closed", zap.String("email", c.Email))
		return false
	}

	select {
	case d.queue <- c:
		return true
	default:
		d.log.Warn("confirmation mail dropped: queue full", zap.String("email", c.Email))
		return false
	}
}

// Close stops accepting mail and waits for queued mail to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for c := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.sender.Send(ctx, c); err != nil {
			d.log.Warn("confirmation mail failed", zap.String("email", c.Email), zap.Error(err))
		} else {
			d.log.Info("confirmation mail sent", zap.String("email", c.Email))
		}
		cancel()
	}
}
