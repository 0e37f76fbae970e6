// Package queue provides the asynchronous email delivery worker: a
// bounded in-memory queue with per-message retries, drained by a
// single background goroutine. High-priority messages (customer
// confirmations) are always drained before normal ones.
package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chimehq/roi-capture/internal/domain/mail"
	"github.com/chimehq/roi-capture/internal/middleware"
)

const defaultCapacity = 256

type item struct {
	id       string
	msg      mail.Message
	attempts int
}

// EmailQueue implements mail.Queue on top of two buffered channels.
type EmailQueue struct {
	sender     mail.Sender
	log        *zap.Logger
	maxRetries int
	retryDelay time.Duration

	high   chan item
	normal chan item

	processed atomic.Uint64
	failed    atomic.Uint64
	seq       atomic.Uint64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Option tweaks queue behavior; used mostly by tests to shrink delays.
type Option func(*EmailQueue)

func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(q *EmailQueue) {
		q.maxRetries = maxRetries
		q.retryDelay = delay
	}
}

func WithCapacity(n int) Option {
	return func(q *EmailQueue) {
		q.high = make(chan item, n)
		q.normal = make(chan item, n)
	}
}

// New builds the queue and starts its worker.
func New(sender mail.Sender, log *zap.Logger, opts ...Option) *EmailQueue {
	if log == nil {
		log = zap.NewNop()
	}
	q := &EmailQueue{
		sender:     sender,
		log:        log,
		maxRetries: 3,
		retryDelay: time.Minute,
		high:       make(chan item, defaultCapacity),
		normal:     make(chan item, defaultCapacity),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.run()
	return q
}

// Enqueue queues msg for delivery and returns its queue id. A full
// queue is an error; callers treat enqueue failures as a degraded
// side effect, not a fatal one.
func (q *EmailQueue) Enqueue(msg mail.Message, priority mail.Priority) (string, error) {
	it := item{
		id:  fmt.Sprintf("%d-%s", q.seq.Add(1), msg.SubmissionID),
		msg: msg,
	}

	ch := q.normal
	if priority == mail.PriorityHigh {
		ch = q.high
	}

	select {
	case ch <- it:
		q.log.Info("email enqueued",
			zap.String("queue_id", it.id),
			zap.String("kind", msg.Kind),
			zap.String("to", msg.To))
		return it.id, nil
	default:
		return "", fmt.Errorf("email queue full")
	}
}

// Stats reports delivery counters.
func (q *EmailQueue) Stats() (processed, failed uint64) {
	return q.processed.Load(), q.failed.Load()
}

// Stop shuts the worker down. Messages still queued are dropped; the
// queue is an at-most-N-attempts best-effort channel, not a durable
// outbox.
func (q *EmailQueue) Stop() {
	q.stopOnce.Do(func() { close(q.stop) })
	<-q.done
}

func (q *EmailQueue) run() {
	defer close(q.done)
	for {
		// Drain high priority first.
		select {
		case it := <-q.high:
			q.deliver(it)
			continue
		case <-q.stop:
			return
		default:
		}

		select {
		case it := <-q.high:
			q.deliver(it)
		case it := <-q.normal:
			q.deliver(it)
		case <-q.stop:
			return
		}
	}
}

func (q *EmailQueue) deliver(it item) {
	for {
		it.attempts++
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := q.sender.Send(ctx, it.msg)
		cancel()

		if err == nil {
			q.processed.Add(1)
			q.log.Info("email delivered",
				zap.String("queue_id", it.id),
				zap.String("kind", it.msg.Kind),
				zap.Int("attempts", it.attempts))
			return
		}

		q.log.Warn("email delivery failed",
			zap.String("queue_id", it.id),
			zap.Int("attempt", it.attempts),
			zap.Error(err))

		if it.attempts >= q.maxRetries {
			q.failed.Add(1)
			middleware.IncrementEmailsFailed()
			q.log.Error("email dropped after max attempts",
				zap.String("queue_id", it.id),
				zap.String("kind", it.msg.Kind))
			return
		}

		select {
		case <-time.After(q.retryDelay):
		case <-q.stop:
			return
		}
	}
}
