package actor

import (
	"context"

	"composer/internal/builder"
	"composer/internal/resources"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
)

// BuildTask dispatches the actor's build through the configured strategy.
// Dispatch is idempotent: an existing build for the same inputs is
// refreshed in place, never duplicated.
type BuildTask struct {
	Builder builder.Builder
}

// Matches gates the task on the Building status.
func (t *BuildTask) Matches(wc *workflow.Context[*v1alpha1.Actor]) bool {
	return wc.Object.Status.Building()
}

func (t *BuildTask) Execute(ctx context.Context, wc *workflow.Context[*v1alpha1.Actor]) (workflow.Intent, error) {
	if err := t.Builder.Build(ctx, wc.Object); err != nil {
		return workflow.Stay(), err
	}

	wc.Record("BuildDispatched", "Build dispatched, proceeding to deploy")
	if err := resources.PatchActorStatus(ctx, wc.Client, wc.Object, v1alpha1.ActorDeployingState()); err != nil {
		return workflow.Stay(), &workflow.StoreError{Err: err}
	}
	return workflow.TransitionTo(StateDeploying), nil
}
