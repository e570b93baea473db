package playbook

import (
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
)

// State identifiers for the playbook machine, mirroring the status
// enumeration.
const (
	StatePending workflow.StateID = workflow.StateID(v1alpha1.PlaybookPending)
	StateSolving workflow.StateID = workflow.StateID(v1alpha1.PlaybookSolving)
	StateRunning workflow.StateID = workflow.StateID(v1alpha1.PlaybookRunning)
)

// StateOf maps a playbook's patched status to the machine state to
// dispatch.
func StateOf(playbook *v1alpha1.Playbook) workflow.StateID {
	return workflow.StateID(playbook.Status.State)
}

// NewMachine assembles the playbook workflow:
//
//	Pending → Solving → Running
//
// Pending provisions the playbook's namespace and credentials, Solving
// computes and materializes the dependency closure, Running keeps every
// actor spec synchronized with its Actor resource.
func NewMachine() *workflow.Machine[*v1alpha1.Playbook] {
	return workflow.NewMachine[*v1alpha1.Playbook]("Playbook").
		Register(StatePending, workflow.TaskState[*v1alpha1.Playbook]{
			Name:  "Pending",
			Tasks: []workflow.Task[*v1alpha1.Playbook]{&InitTask{}},
		}).
		Register(StateSolving, workflow.TaskState[*v1alpha1.Playbook]{
			Name:  "Solving",
			Tasks: []workflow.Task[*v1alpha1.Playbook]{&SolveTask{}},
		}).
		Register(StateRunning, workflow.TaskState[*v1alpha1.Playbook]{
			Name:  "Running",
			Tasks: []workflow.Task[*v1alpha1.Playbook]{&PerformTask{}},
		})
}
