package provisioning

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Logger is the minimal printf-style logging interface.
type Logger interface {
	Printf(format string, v ...any)
}

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "compute", "keys", "destroy")
	Message   string            // Human-readable message
	Resource  string            // Resource name/ID if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already exists.
	EventResourceExists EventType = "resource.exists"
	// EventResourceDeleting indicates a resource is being deleted.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource was deleted successfully.
	EventResourceDeleted EventType = "resource.deleted"

	EventActionStarted   EventType = "action.started"
	EventActionCompleted EventType = "action.completed"
	EventActionFailed    EventType = "action.failed"
	EventActionSkipped   EventType = "action.skipped"

	// EventWarning flags a surprising but non-fatal situation, such as an
	// ambiguous catalog match.
	EventWarning EventType = "warning"
)

// LogObserver implements Observer on top of a logr.Logger.
type LogObserver struct {
	log           logr.Logger
	contextFields map[string]string
}

// NewLogObserver creates an observer writing to log.
func NewLogObserver(log logr.Logger) *LogObserver {
	return &LogObserver{
		log:           log,
		contextFields: make(map[string]string),
	}
}

// Printf implements Logger.
func (o *LogObserver) Printf(format string, v ...any) {
	o.log.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer. Failures go to the error sink, everything else
// is logged at info level with the event type as a key.
func (o *LogObserver) Event(event Event) {
	event = stampEvent(event, o.contextFields)

	kv := []any{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
		kv = append(kv, k, event.Fields[k])
	}

	if event.Type == EventActionFailed {
		o.log.Error(nil, event.Message, kv...)
		return
	}
	o.log.Info(event.Message, kv...)
}

// WithFields implements Observer.
func (o *LogObserver) WithFields(fields map[string]string) Observer {
	return &LogObserver{
		log:           o.log,
		contextFields: mergeFields(o.contextFields, fields),
	}
}

// MemoryObserver keeps every event in memory. Tests use it to assert on
// what an operation reported.
type MemoryObserver struct {
	fields map[string]string
	sink   *memorySink
}

type memorySink struct {
	mu       sync.Mutex
	events   []Event
	messages []string
}

// NewMemoryObserver creates an empty MemoryObserver.
func NewMemoryObserver() *MemoryObserver {
	return &MemoryObserver{sink: &memorySink{}}
}

// Printf implements Logger.
func (m *MemoryObserver) Printf(format string, v ...any) {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.messages = append(m.sink.messages, fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (m *MemoryObserver) Event(event Event) {
	event = stampEvent(event, m.fields)
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.events = append(m.sink.events, event)
}

// WithFields implements Observer. Derived observers share the event log.
func (m *MemoryObserver) WithFields(fields map[string]string) Observer {
	return &MemoryObserver{fields: mergeFields(m.fields, fields), sink: m.sink}
}

// Events returns the recorded events.
func (m *MemoryObserver) Events() []Event {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	return slices.Clone(m.sink.events)
}

// EventsOfType returns the recorded events of type t.
func (m *MemoryObserver) EventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns the Printf output.
func (m *MemoryObserver) Messages() []string {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	return slices.Clone(m.sink.messages)
}

func stampEvent(event Event, contextFields map[string]string) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	fields := make(map[string]string, len(event.Fields)+len(contextFields))
	maps.Copy(fields, contextFields)
	maps.Copy(fields, event.Fields)
	event.Fields = fields
	return event
}

func mergeFields(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}

// Helper functions for common events

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("creating %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceCreated logs a successful resource creation event.
func LogResourceCreated(observer Observer, phase, resourceType, resourceName, resourceID string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s created", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   resourceID,
		},
	})
}

// LogResourceExists logs when a resource already exists.
func LogResourceExists(observer Observer, phase, resourceType, resourceName, resourceID string) {
	observer.Event(Event{
		Type:     EventResourceExists,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s already exists", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   resourceID,
		},
	})
}

// LogResourceDeleting logs a resource deletion start event.
func LogResourceDeleting(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleting,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("deleting %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceDeleted logs a successful resource deletion event.
func LogResourceDeleted(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleted,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s deleted", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogWarning logs a non-fatal warning.
func LogWarning(observer Observer, phase, message string, fields map[string]string) {
	observer.Event(Event{
		Type:    EventWarning,
		Phase:   phase,
		Message: message,
		Fields:  fields,
	})
}

// LogAction logs an action handler transition. err is only set for failures.
func LogAction(observer Observer, t EventType, description string, err error) {
	event := Event{
		Type:    t,
		Phase:   "action",
		Message: description,
	}
	if err != nil {
		event.Fields = map[string]string{"error": err.Error()}
	}
	observer.Event(event)
}
