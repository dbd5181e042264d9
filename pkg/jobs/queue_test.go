package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	seen  []Task
	done  chan struct{}
	fails int
}

func newRecorder(expected int) *recorder {
	return &recorder{done: make(chan struct{}, expected)}
}

func (r *recorder) handle(_ context.Context, task Task) error {
	r.mu.Lock()
	shouldFail := r.fails > 0
	if shouldFail {
		r.fails--
	} else {
		r.seen = append(r.seen, task)
	}
	r.mu.Unlock()
	if shouldFail {
		return errors.New("transient failure")
	}
	r.done <- struct{}{}
	return nil
}

func (r *recorder) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for task %d of %d", i+1, n)
		}
	}
}

func (r *recorder) tasks() []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Task, len(r.seen))
	copy(out, r.seen)
	return out
}

func TestQueueRunsEnqueuedTasks(t *testing.T) {
	rec := newRecorder(2)
	q := NewQueue("test", rec.handle, Config{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Task{Kind: "warm", GroupID: "g-1"}))
	require.NoError(t, q.Enqueue(Task{Kind: "warm", GroupID: "g-2"}))
	rec.wait(t, 2)

	groups := map[string]bool{}
	for _, task := range rec.tasks() {
		groups[task.GroupID] = true
	}
	assert.True(t, groups["g-1"])
	assert.True(t, groups["g-2"])
}

func TestQueueCoalescesPendingDuplicates(t *testing.T) {
	block := make(chan struct{})
	var mu sync.Mutex
	var runs int
	q := NewQueue("test", func(_ context.Context, _ Task) error {
		<-block
		mu.Lock()
		runs++
		mu.Unlock()
		return nil
	}, Config{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	// First task occupies the single worker; the next two for the same
	// group coalesce into one pending entry.
	require.NoError(t, q.Enqueue(Task{Kind: "warm", GroupID: "busy"}))
	require.NoError(t, q.Enqueue(Task{Kind: "warm", GroupID: "g-1"}))
	require.NoError(t, q.Enqueue(Task{Kind: "warm", GroupID: "g-1"}))
	close(block)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return runs == 2
	}, 2*time.Second, 10*time.Millisecond, "duplicate pending task should be dropped")
}

func TestQueueRetriesFailedTasks(t *testing.T) {
	rec := newRecorder(1)
	rec.fails = 1
	q := NewQueue("test", rec.handle, Config{Workers: 1, MaxRetries: 2, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Task{Kind: "warm", GroupID: "g-1"}))
	rec.wait(t, 1)

	tasks := rec.tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, tasks[0].Attempt, "task succeeded on its first retry")
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Task) error { return nil }, Config{})
	require.Error(t, q.Enqueue(Task{Kind: "warm", GroupID: "g-1"}))
}
