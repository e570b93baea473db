package workflow

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"composer/internal/config"
	"composer/internal/credentials"
	"composer/internal/registry"
	"composer/internal/resolver"
	"composer/pkg/logging"
)

// StateID names a state in a machine. Each domain kind defines its own
// closed set of identifiers.
type StateID string

// Intent is the outcome of handling one state: stay and wait for the next
// reconciliation, or transition to another state. Errors travel on the
// error return, never inside the intent.
type Intent struct {
	transition bool
	next       StateID
}

// Stay returns the no-transition intent.
func Stay() Intent { return Intent{} }

// TransitionTo returns an intent to move to the given state.
func TransitionTo(id StateID) Intent { return Intent{transition: true, next: id} }

// Transition reports the target state, if any.
func (i Intent) Transition() (StateID, bool) { return i.next, i.transition }

// Recorder publishes best-effort events about an object. Failures to
// record must never abort reconciliation.
type Recorder interface {
	Record(object runtime.Object, reason, message string)
}

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) Record(runtime.Object, string, string) {}

// Context carries everything a state handler may need for one
// reconciliation pass of one object. The controller owns the authoritative
// copy of Object for the duration of the pass; handlers mutate external
// state only through the synchronizer's patch calls.
type Context[T runtime.Object] struct {
	// Object is the object being reconciled.
	Object T

	// Client is the object store client used by the synchronizer calls.
	Client client.Client

	// Credentials is the shared registry-credential store.
	Credentials *credentials.Store

	// Prober answers registry existence checks.
	Prober registry.Prober

	// Fetcher resolves partner manifests.
	Fetcher resolver.ManifestFetcher

	// Registry identifies the target image registry.
	Registry config.RegistryConfig

	// Recorder publishes best-effort events.
	Recorder Recorder
}

// Record emits an event for the context's object, tolerating a nil
// recorder.
func (c *Context[T]) Record(reason, message string) {
	if c.Recorder == nil {
		return
	}
	c.Recorder.Record(c.Object, reason, message)
}

// Task is one gated unit of work within a state.
type Task[T runtime.Object] interface {
	// Matches is a pure precondition over the object's current status.
	// A task whose precondition is false is skipped with no side effects;
	// this is what makes repeated reconciliation of an unchanged object a
	// no-op.
	Matches(wc *Context[T]) bool

	// Execute performs side effects and returns the next intent or an
	// error.
	Execute(ctx context.Context, wc *Context[T]) (Intent, error)
}

// State handles one lifecycle state of a machine.
type State[T runtime.Object] interface {
	Handle(ctx context.Context, wc *Context[T]) (Intent, error)
}

// TaskState is a State composed of gated tasks. Exactly one task's
// precondition is expected to hold for a given status value; the first
// matching task runs, the rest are skipped. If no task matches, the state
// stays put.
type TaskState[T runtime.Object] struct {
	Name  string
	Tasks []Task[T]
}

// Handle runs the first matching task.
func (s TaskState[T]) Handle(ctx context.Context, wc *Context[T]) (Intent, error) {
	for _, task := range s.Tasks {
		if !task.Matches(wc) {
			continue
		}
		return task.Execute(ctx, wc)
	}
	return Stay(), nil
}

// Machine is a per-object-kind workflow engine: a closed set of named
// states, each advancing the object by evaluating its gated tasks.
type Machine[T runtime.Object] struct {
	kind   string
	states map[StateID]State[T]
}

// NewMachine creates an empty machine for the given kind name (used in
// logs only).
func NewMachine[T runtime.Object](kind string) *Machine[T] {
	return &Machine[T]{
		kind:   kind,
		states: make(map[StateID]State[T]),
	}
}

// Register adds a state to the machine. Registering the same identifier
// twice is a programming error.
func (m *Machine[T]) Register(id StateID, state State[T]) *Machine[T] {
	if _, exists := m.states[id]; exists {
		panic(fmt.Sprintf("workflow: state %q already registered for %s", id, m.kind))
	}
	m.states[id] = state
	return m
}

// Handle dispatches one reconciliation pass to the handler of the given
// state. Dispatching an unknown state is an error: status values are a
// closed enumeration, so this indicates a corrupted status.
func (m *Machine[T]) Handle(ctx context.Context, id StateID, wc *Context[T]) (Intent, error) {
	state, ok := m.states[id]
	if !ok {
		return Stay(), fmt.Errorf("workflow: %s has no handler for state %q", m.kind, id)
	}

	logging.Debug("Workflow", "%s: handling state %s", m.kind, id)
	intent, err := state.Handle(ctx, wc)
	if err != nil {
		return Stay(), err
	}
	if next, ok := intent.Transition(); ok {
		logging.Debug("Workflow", "%s: intent %s -> %s", m.kind, id, next)
	}
	return intent, nil
}
