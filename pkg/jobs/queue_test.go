package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsSubmittedJobs(t *testing.T) {
	done := make(chan Job, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		done <- job
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	id, err := q.Submit("provision", "import-1")
	require.NoError(t, err)

	select {
	case job := <-done:
		assert.Equal(t, id, job.ID)
		assert.Equal(t, "provision", job.Kind)
		assert.Equal(t, "import-1", job.Payload)
		assert.False(t, job.EnqueuedAt.IsZero())
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRetriesUntilLimit(t *testing.T) {
	var calls int32
	finished := make(chan struct{})
	q := NewQueue("test", func(_ context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) == 2 {
			close(finished)
		}
		return errors.New("provider unavailable")
	}, QueueConfig{Workers: 1, MaxRetries: 1, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())

	_, err := q.Submit("provision", nil)
	require.NoError(t, err)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("job was not retried")
	}
	time.Sleep(20 * time.Millisecond)
	q.Stop()
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSubmitRequiresRunningQueue(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	_, err := q.Submit("provision", nil)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestSubmitFullBuffer(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, _ Job) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(block)

	var full error
	for i := 0; i < 5 && full == nil; i++ {
		_, full = q.Submit("provision", i)
	}
	assert.ErrorIs(t, full, ErrQueueFull)
}
