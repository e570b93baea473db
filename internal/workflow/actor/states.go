package actor

import (
	"composer/internal/builder"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
)

// State identifiers for the actor machine. They mirror the status
// enumeration one-to-one: dispatch always goes through the durably
// patched status, never through in-memory state.
const (
	StatePending   workflow.StateID = workflow.StateID(v1alpha1.ActorPending)
	StateBuilding  workflow.StateID = workflow.StateID(v1alpha1.ActorBuilding)
	StateDeploying workflow.StateID = workflow.StateID(v1alpha1.ActorDeploying)
	StateRunning   workflow.StateID = workflow.StateID(v1alpha1.ActorRunning)
)

// StateOf maps an actor's patched status to the machine state to
// dispatch.
func StateOf(actor *v1alpha1.Actor) workflow.StateID {
	return workflow.StateID(actor.Status.State)
}

// NewMachine assembles the actor workflow:
//
//	Pending → Building → Deploying → Running
//
// with Running re-enterable when the spec changes. The build stage is
// skipped entirely when the target image already exists in the registry
// and the actor is not live.
func NewMachine(b builder.Builder) *workflow.Machine[*v1alpha1.Actor] {
	return workflow.NewMachine[*v1alpha1.Actor]("Actor").
		Register(StatePending, workflow.TaskState[*v1alpha1.Actor]{
			Name:  "Pending",
			Tasks: []workflow.Task[*v1alpha1.Actor]{&InitTask{}},
		}).
		Register(StateBuilding, workflow.TaskState[*v1alpha1.Actor]{
			Name:  "Building",
			Tasks: []workflow.Task[*v1alpha1.Actor]{&BuildTask{Builder: b}},
		}).
		Register(StateDeploying, workflow.TaskState[*v1alpha1.Actor]{
			Name:  "Deploying",
			Tasks: []workflow.Task[*v1alpha1.Actor]{&DeployTask{}},
		}).
		Register(StateRunning, workflow.TaskState[*v1alpha1.Actor]{
			Name:  "Running",
			Tasks: []workflow.Task[*v1alpha1.Actor]{&WatchTask{}},
		})
}
