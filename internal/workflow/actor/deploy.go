package actor

import (
	"context"

	"composer/internal/builder"
	"composer/internal/resources"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
)

// DeployTask rolls the actor's image out as a workload deployment,
// following the exists-then-branch discipline.
type DeployTask struct{}

// Matches gates the task on the Deploying status.
func (t *DeployTask) Matches(wc *workflow.Context[*v1alpha1.Actor]) bool {
	return wc.Object.Status.Deploying()
}

func (t *DeployTask) Execute(ctx context.Context, wc *workflow.Context[*v1alpha1.Actor]) (workflow.Intent, error) {
	image := builder.ImageTag(wc.Registry, wc.Object)

	exists, err := resources.DeploymentExists(ctx, wc.Client, wc.Object)
	if err != nil {
		return workflow.Stay(), &workflow.StoreError{Err: err}
	}

	if exists {
		if err := resources.UpdateDeployment(ctx, wc.Client, wc.Object, image); err != nil {
			return workflow.Stay(), &workflow.StoreError{Err: err}
		}
	} else {
		if err := resources.CreateDeployment(ctx, wc.Client, wc.Object, image); err != nil {
			return workflow.Stay(), &workflow.StoreError{Err: err}
		}
	}

	wc.Record("Deployed", "Workload rolled out")
	if err := resources.PatchActorStatus(ctx, wc.Client, wc.Object, v1alpha1.ActorRunningState(true, "AutoRun", "")); err != nil {
		return workflow.Stay(), &workflow.StoreError{Err: err}
	}
	return workflow.TransitionTo(StateRunning), nil
}
