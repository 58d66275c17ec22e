package provisioning

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of a recorded action.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	// OutcomeSkipped marks an action that was not executed because of dry-run.
	OutcomeSkipped Outcome = "skipped"
)

// Action is one recorded remote mutation.
type Action struct {
	ID          uuid.UUID     `json:"id"`
	Description string        `json:"description"`
	Outcome     Outcome       `json:"outcome"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
}

// RecordingActionHandler executes actions and keeps a log of them.
// It is safe for concurrent use.
type RecordingActionHandler struct {
	dryRun   bool
	observer Observer
	metrics  MetricsRecorder
	now      func() time.Time

	mu      sync.Mutex
	actions []Action
}

// NewRecordingActionHandler creates a handler reporting to observer and metrics.
// Either may be nil.
func NewRecordingActionHandler(observer Observer, metrics MetricsRecorder, dryRun bool) *RecordingActionHandler {
	if observer == nil {
		observer = NewMemoryObserver()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &RecordingActionHandler{
		dryRun:   dryRun,
		observer: observer,
		metrics:  metrics,
		now:      time.Now,
	}
}

// DryRun reports whether actions are only recorded.
func (h *RecordingActionHandler) DryRun() bool {
	return h.dryRun
}

// PerformAction implements ActionHandler.
func (h *RecordingActionHandler) PerformAction(ctx context.Context, description string, fn func(context.Context) error) error {
	action := Action{
		ID:          uuid.New(),
		Description: description,
		StartedAt:   h.now(),
	}
	observer := h.observer.WithFields(map[string]string{"action": action.ID.String()})

	if h.dryRun {
		action.Outcome = OutcomeSkipped
		h.record(action)
		LogAction(observer, EventActionSkipped, description, nil)
		return nil
	}

	LogAction(observer, EventActionStarted, description, nil)
	err := fn(ctx)
	action.Duration = h.now().Sub(action.StartedAt)
	if err != nil {
		action.Outcome = OutcomeFailed
		action.Error = err.Error()
		h.record(action)
		LogAction(observer, EventActionFailed, description, err)
		return err
	}

	action.Outcome = OutcomeSucceeded
	h.record(action)
	LogAction(observer, EventActionCompleted, description, nil)
	return nil
}

func (h *RecordingActionHandler) record(a Action) {
	h.metrics.ActionPerformed(a.Outcome)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, a)
}

// Actions returns a copy of the recorded actions in execution order.
func (h *RecordingActionHandler) Actions() []Action {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.actions)
}

// Descriptions returns the descriptions of the recorded actions.
func (h *RecordingActionHandler) Descriptions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.actions))
	for i, a := range h.actions {
		out[i] = a.Description
	}
	return out
}

// UpdatedResources reports whether any action actually changed something.
func (h *RecordingActionHandler) UpdatedResources() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.ContainsFunc(h.actions, func(a Action) bool {
		return a.Outcome == OutcomeSucceeded
	})
}

var _ ActionHandler = (*RecordingActionHandler)(nil)
