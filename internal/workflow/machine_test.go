package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"composer/pkg/apis/composer/v1alpha1"
)

type recordingTask struct {
	matches  bool
	intent   Intent
	err      error
	executed bool
}

func (t *recordingTask) Matches(*Context[*v1alpha1.Actor]) bool { return t.matches }

func (t *recordingTask) Execute(context.Context, *Context[*v1alpha1.Actor]) (Intent, error) {
	t.executed = true
	return t.intent, t.err
}

func TestIntent(t *testing.T) {
	if _, ok := Stay().Transition(); ok {
		t.Error("Stay must not report a transition")
	}

	next, ok := TransitionTo("Building").Transition()
	require.True(t, ok)
	assert.Equal(t, StateID("Building"), next)
}

func TestTaskStateRunsFirstMatchingTask(t *testing.T) {
	skipped := &recordingTask{matches: false}
	matched := &recordingTask{matches: true, intent: TransitionTo("Next")}
	shadowed := &recordingTask{matches: true}

	state := TaskState[*v1alpha1.Actor]{
		Name:  "Pending",
		Tasks: []Task[*v1alpha1.Actor]{skipped, matched, shadowed},
	}

	intent, err := state.Handle(context.Background(), &Context[*v1alpha1.Actor]{Object: &v1alpha1.Actor{}})
	require.NoError(t, err)

	next, ok := intent.Transition()
	require.True(t, ok)
	assert.Equal(t, StateID("Next"), next)

	assert.False(t, skipped.executed)
	assert.True(t, matched.executed)
	assert.False(t, shadowed.executed, "only the first matching task may run")
}

func TestTaskStateNoMatchIsNoOp(t *testing.T) {
	state := TaskState[*v1alpha1.Actor]{
		Name:  "Pending",
		Tasks: []Task[*v1alpha1.Actor]{&recordingTask{matches: false}},
	}

	intent, err := state.Handle(context.Background(), &Context[*v1alpha1.Actor]{Object: &v1alpha1.Actor{}})
	require.NoError(t, err)

	_, ok := intent.Transition()
	assert.False(t, ok)
}

func TestMachineHandleUnknownState(t *testing.T) {
	m := NewMachine[*v1alpha1.Actor]("Actor")

	_, err := m.Handle(context.Background(), "Bogus", &Context[*v1alpha1.Actor]{Object: &v1alpha1.Actor{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bogus")
}

func TestMachineRegisterDuplicatePanics(t *testing.T) {
	m := NewMachine[*v1alpha1.Actor]("Actor")
	m.Register("Pending", TaskState[*v1alpha1.Actor]{Name: "Pending"})

	assert.Panics(t, func() {
		m.Register("Pending", TaskState[*v1alpha1.Actor]{Name: "Pending"})
	})
}

func TestMachineHandlePropagatesTaskError(t *testing.T) {
	wantErr := errors.New("boom")
	m := NewMachine[*v1alpha1.Actor]("Actor").
		Register("Pending", TaskState[*v1alpha1.Actor]{
			Name:  "Pending",
			Tasks: []Task[*v1alpha1.Actor]{&recordingTask{matches: true, err: wantErr}},
		})

	_, err := m.Handle(context.Background(), "Pending", &Context[*v1alpha1.Actor]{Object: &v1alpha1.Actor{}})
	assert.ErrorIs(t, err, wantErr)
}

func TestContextRecordToleratesNilRecorder(t *testing.T) {
	wc := &Context[*v1alpha1.Actor]{Object: &v1alpha1.Actor{}}

	assert.NotPanics(t, func() {
		wc.Record("Reason", "message")
	})
}
