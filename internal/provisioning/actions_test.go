package provisioning

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[Outcome]int
}

func (c *countingMetrics) CatalogLookup(string, bool) {}
func (c *countingMetrics) MachineDestroyed(bool)      {}
func (c *countingMetrics) ActionPerformed(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[Outcome]int{}
	}
	c.outcomes[o]++
}

func TestRecordingActionHandler_Executes(t *testing.T) {
	t.Parallel()
	observer := NewMemoryObserver()
	metrics := &countingMetrics{}
	h := NewRecordingActionHandler(observer, metrics, false)

	ran := false
	err := h.PerformAction(context.Background(), "create machine web-1", func(context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, h.UpdatedResources())

	actions := h.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, "create machine web-1", actions[0].Description)
	assert.Equal(t, OutcomeSucceeded, actions[0].Outcome)
	assert.NotEqual(t, uuid.Nil, actions[0].ID)
	assert.Equal(t, 1, metrics.outcomes[OutcomeSucceeded])

	assert.Len(t, observer.EventsOfType(EventActionStarted), 1)
	completed := observer.EventsOfType(EventActionCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, actions[0].ID.String(), completed[0].Fields["action"])
}

func TestRecordingActionHandler_Failure(t *testing.T) {
	t.Parallel()
	observer := NewMemoryObserver()
	metrics := &countingMetrics{}
	h := NewRecordingActionHandler(observer, metrics, false)
	boom := errors.New("boom")

	err := h.PerformAction(context.Background(), "destroy machine web-1", func(context.Context) error {
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.False(t, h.UpdatedResources())
	actions := h.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, OutcomeFailed, actions[0].Outcome)
	assert.Equal(t, "boom", actions[0].Error)
	assert.Equal(t, 1, metrics.outcomes[OutcomeFailed])

	failed := observer.EventsOfType(EventActionFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "boom", failed[0].Fields["error"])
}

func TestRecordingActionHandler_DryRun(t *testing.T) {
	t.Parallel()
	observer := NewMemoryObserver()
	h := NewRecordingActionHandler(observer, nil, true)

	err := h.PerformAction(context.Background(), "destroy machine web-1", func(context.Context) error {
		t.Fatal("dry-run must not execute the action")
		return nil
	})

	require.NoError(t, err)
	assert.True(t, h.DryRun())
	assert.False(t, h.UpdatedResources())
	assert.Equal(t, []string{"destroy machine web-1"}, h.Descriptions())
	assert.Equal(t, OutcomeSkipped, h.Actions()[0].Outcome)
	assert.Len(t, observer.EventsOfType(EventActionSkipped), 1)
}

func TestRecordingActionHandler_Concurrent(t *testing.T) {
	t.Parallel()
	h := NewRecordingActionHandler(nil, nil, false)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.PerformAction(context.Background(), "noop", func(context.Context) error { return nil })
		}()
	}
	wg.Wait()

	assert.Len(t, h.Actions(), 20)
}
