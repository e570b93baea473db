package playbook

import (
	"context"

	"composer/internal/resources"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// PerformTask drives a running playbook: every actor spec is materialized
// as an Actor resource, created when absent and refreshed when present.
type PerformTask struct{}

// Matches gates the task on the Running status.
func (t *PerformTask) Matches(wc *workflow.Context[*v1alpha1.Playbook]) bool {
	return wc.Object.Status.Running()
}

func (t *PerformTask) Execute(ctx context.Context, wc *workflow.Context[*v1alpha1.Playbook]) (workflow.Intent, error) {
	playbook := wc.Object

	for _, spec := range playbook.Spec.Actors {
		exists, err := resources.ActorExists(ctx, wc.Client, playbook, spec.Name)
		if err != nil {
			return workflow.Stay(), &workflow.StoreError{Err: err}
		}

		if exists {
			logging.Debug("PlaybookWorkflow", "Actor %s already exists, refreshing if changed", spec.Name)
			if err := resources.UpdateActor(ctx, wc.Client, playbook, spec); err != nil {
				return workflow.Stay(), &workflow.StoreError{Err: err}
			}
		} else {
			wc.Record("ActorCreated", "Creating new actor "+spec.Name)
			if err := resources.CreateActor(ctx, wc.Client, playbook, spec); err != nil {
				return workflow.Stay(), &workflow.StoreError{Err: err}
			}
		}
	}

	return workflow.Stay(), nil
}
