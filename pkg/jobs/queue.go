package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of background work keyed by the schedule group it
// concerns. Tasks for the same (kind, group) pair coalesce while pending:
// warming a group's conflict cache twice in quick succession does the work
// once.
type Task struct {
	Kind    string
	GroupID string
	Attempt int
}

func (t Task) key() string {
	return t.Kind + "|" + t.GroupID
}

// Handler processes one task.
type Handler func(ctx context.Context, task Task) error

// Config tunes the worker pool.
type Config struct {
	Workers    int
	Buffer     int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue is an in-memory group-task dispatcher backed by a goroutine pool.
// It exists so request handlers can hand off cache warming and similar
// follow-up work without blocking the response.
type Queue struct {
	name    string
	handler Handler

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	tasks   chan Task
	pending map[string]bool

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewQueue builds a queue with the provided handler.
func NewQueue(name string, handler Handler, cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = cfg.Workers * 8
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		tasks:      make(chan Task, cfg.Buffer),
		pending:    make(map[string]bool),
	}
}

// Start spins up the workers. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("task queue started", zap.String("queue", q.name), zap.Int("workers", q.workers))
}

// Stop cancels the workers and waits for them to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.started = false
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("task queue stopped", zap.String("queue", q.name))
}

// Enqueue submits a task. A task whose (kind, group) pair is already waiting
// is dropped silently; the queued run will observe the newer state anyway.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return fmt.Errorf("queue %s not started", q.name)
	}
	if task.Attempt == 0 && q.pending[task.key()] {
		q.mu.Unlock()
		return nil
	}
	q.pending[task.key()] = true
	ctx := q.ctx
	q.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.tasks <- task:
		return nil
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			q.mu.Lock()
			delete(q.pending, task.key())
			q.mu.Unlock()
			if err := q.handler(q.ctx, task); err != nil {
				q.retry(task, err)
			}
		}
	}
}

func (q *Queue) retry(task Task, err error) {
	task.Attempt++
	if task.Attempt > q.maxRetries {
		q.logger.Error("task exceeded retries",
			zap.String("queue", q.name),
			zap.String("kind", task.Kind),
			zap.String("group_id", task.GroupID),
			zap.Error(err))
		return
	}
	q.logger.Warn("task failed, retrying",
		zap.String("queue", q.name),
		zap.String("kind", task.Kind),
		zap.String("group_id", task.GroupID),
		zap.Int("attempt", task.Attempt),
		zap.Error(err))

	go func(t Task) {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			if err := q.Enqueue(t); err != nil {
				q.logger.Error("failed to requeue task",
					zap.String("queue", q.name), zap.String("group_id", t.GroupID), zap.Error(err))
			}
		}
	}(task)
}
