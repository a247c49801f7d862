package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectingHandler records processed jobs and signals each completion
type collectingHandler struct {
	mu   sync.Mutex
	jobs []Job
	done chan struct{}
}

func newCollectingHandler() *collectingHandler {
	return &collectingHandler{done: make(chan struct{}, 64)}
}

func (h *collectingHandler) handle(_ context.Context, job Job) error {
	h.mu.Lock()
	h.jobs = append(h.jobs, job)
	h.mu.Unlock()

	h.done <- struct{}{}

	return nil
}

func (h *collectingHandler) waitFor(t *testing.T, n int) []Job {
	t.Helper()

	for i := 0; i < n; i++ {
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for job %d of %d", i+1, n)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]Job(nil), h.jobs...)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestEnqueue_ProcessesJob(t *testing.T) {
	handler := newCollectingHandler()

	d, err := New(handler.handle, WithWorkers(2))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.Start(ctx)

	job, err := d.Enqueue("page-1", "author-1", "wh-1")
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)

	processed := handler.waitFor(t, 1)
	require.Len(t, processed, 1)
	assert.Equal(t, "page-1", processed[0].PageID)
	assert.Equal(t, "author-1", processed[0].AuthorID)
}

func TestEnqueue_MissingPageID(t *testing.T) {
	d, err := New(newCollectingHandler().handle)
	require.NoError(t, err)

	_, err = d.Enqueue("", "author-1", "wh-1")
	assert.ErrorIs(t, err, ErrMissingPageID)
}

func TestEnqueue_DuplicateWithinWindow(t *testing.T) {
	d, err := New(newCollectingHandler().handle)
	require.NoError(t, err)

	_, err = d.Enqueue("page-1", "author-1", "wh-1")
	require.NoError(t, err)

	_, err = d.Enqueue("page-1", "author-1", "wh-1")
	assert.ErrorIs(t, err, ErrDuplicateJob)
}

func TestEnqueue_DifferentAuthorNotDeduplicated(t *testing.T) {
	d, err := New(newCollectingHandler().handle)
	require.NoError(t, err)

	_, err = d.Enqueue("page-1", "author-1", "wh-1")
	require.NoError(t, err)

	_, err = d.Enqueue("page-1", "author-2", "wh-1")
	assert.NoError(t, err)
}

func TestEnqueue_WindowExpiryAllowsRequeue(t *testing.T) {
	d, err := New(newCollectingHandler().handle, WithDedupWindow(time.Minute))
	require.NoError(t, err)

	now := time.Now()
	d.now = func() time.Time { return now }

	_, err = d.Enqueue("page-1", "author-1", "wh-1")
	require.NoError(t, err)

	d.now = func() time.Time { return now.Add(2 * time.Minute) }

	_, err = d.Enqueue("page-1", "author-1", "wh-1")
	assert.NoError(t, err)
}

func TestEnqueue_QueueFull(t *testing.T) {
	d, err := New(newCollectingHandler().handle, WithQueueSize(1))
	require.NoError(t, err)

	// no workers started, so the buffer never drains
	_, err = d.Enqueue("page-1", "author-1", "wh-1")
	require.NoError(t, err)

	_, err = d.Enqueue("page-2", "author-1", "wh-2")
	assert.ErrorIs(t, err, ErrQueueFull)

	// a rejected event is not remembered as a duplicate
	_, err = d.Enqueue("page-2", "author-1", "wh-2")
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	handler := newCollectingHandler()

	d, err := New(handler.handle, WithWorkers(2))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	_, err = d.Enqueue("page-1", "author-1", "wh-1")
	require.NoError(t, err)

	handler.waitFor(t, 1)

	cancel()
	d.Wait()
}
