package actor

import (
	"context"

	"composer/internal/builder"
	"composer/internal/resources"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// WatchTask keeps a running actor converged: Running is not a terminal
// state. When the spec drifts from what is deployed (new commit, new
// image), the actor re-enters the pipeline at Pending.
type WatchTask struct{}

// Matches gates the task on the Running status.
func (t *WatchTask) Matches(wc *workflow.Context[*v1alpha1.Actor]) bool {
	return wc.Object.Status.Running()
}

func (t *WatchTask) Execute(ctx context.Context, wc *workflow.Context[*v1alpha1.Actor]) (workflow.Intent, error) {
	desired := builder.ImageTag(wc.Registry, wc.Object)

	deployed, err := resources.DeployedImage(ctx, wc.Client, wc.Object)
	if err != nil {
		return workflow.Stay(), &workflow.StoreError{Err: err}
	}

	if deployed == "" || deployed == desired {
		return workflow.Stay(), nil
	}

	logging.Info("ActorWorkflow", "Actor %s/%s spec changed (deployed %s, desired %s), re-entering pipeline",
		wc.Object.Namespace, wc.Object.Name, deployed, desired)
	wc.Record("SpecChanged", "Spec changed, re-entering pipeline")

	status := v1alpha1.ActorStatus{State: v1alpha1.ActorPending, Ready: false, Reason: "SpecChanged"}
	if err := resources.PatchActorStatus(ctx, wc.Client, wc.Object, status); err != nil {
		return workflow.Stay(), &workflow.StoreError{Err: err}
	}
	return workflow.TransitionTo(StatePending), nil
}
