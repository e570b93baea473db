package actor

import (
	"context"

	"composer/internal/builder"
	"composer/internal/resources"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// InitTask makes the build decision for a freshly pending actor: build if
// the actor is live or the image has not been built yet, otherwise skip
// straight to deploying.
type InitTask struct{}

// Matches gates the task on the Pending status.
func (t *InitTask) Matches(wc *workflow.Context[*v1alpha1.Actor]) bool {
	return wc.Object.Status.Pending()
}

func (t *InitTask) Execute(ctx context.Context, wc *workflow.Context[*v1alpha1.Actor]) (workflow.Intent, error) {
	orchestrator := &builder.Orchestrator{
		Registry:    wc.Registry,
		Credentials: wc.Credentials,
		Prober:      wc.Prober,
	}

	required, err := orchestrator.Required(ctx, wc.Object)
	if err != nil {
		return workflow.Stay(), err
	}

	if required {
		wc.Record("BuildRequired", "Image not built yet, scheduling build")
		if err := resources.PatchActorStatus(ctx, wc.Client, wc.Object, v1alpha1.ActorBuildingState()); err != nil {
			return workflow.Stay(), &workflow.StoreError{Err: err}
		}
		return workflow.TransitionTo(StateBuilding), nil
	}

	logging.Info("ActorWorkflow", "Image for actor %s/%s already built, skipping build stage",
		wc.Object.Namespace, wc.Object.Name)
	wc.Record("ImageReady", "Image already exists, skipping build stage")
	if err := resources.PatchActorStatus(ctx, wc.Client, wc.Object, v1alpha1.ActorDeployingState()); err != nil {
		return workflow.Stay(), &workflow.StoreError{Err: err}
	}
	return workflow.TransitionTo(StateDeploying), nil
}
