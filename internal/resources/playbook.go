package resources

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/client"

	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// AddActor appends a resolved actor spec to the playbook's actor list via
// a merge patch. The list is replaced wholesale; de-duplication against
// existing actors is the resolver's responsibility, not the patch path's.
//
// On success the accepted append is folded back into the in-memory
// playbook. A pass that appends several actors computes every patch
// against the grown list; a stale base would make each patch overwrite
// the previous append. The patch itself triggers a new watch event, so
// the next reconciliation re-evaluates the dependency closure against
// the updated actor list.
func AddActor(ctx context.Context, c client.Client, playbook *v1alpha1.Playbook, spec v1alpha1.ActorSpec) error {
	updated := playbook.DeepCopy()
	updated.Spec.Actors = append(updated.Spec.Actors, spec)

	if err := c.Patch(ctx, updated, client.MergeFrom(playbook)); err != nil {
		return fmt.Errorf("failed to add actor %q to playbook %s: %w", spec.Name, playbook.Name, err)
	}
	updated.DeepCopyInto(playbook)

	logging.Info("Resources", "Added actor %q to playbook %s", spec.Name, playbook.Name)
	return nil
}

// PatchPlaybookStatus patches only the status subresource of the playbook
// with the given lifecycle state. The durable status patch is what gates
// the next state transition: a reconciliation never observes a transition
// that was not first accepted by the store.
func PatchPlaybookStatus(ctx context.Context, c client.Client, playbook *v1alpha1.Playbook, status v1alpha1.PlaybookStatus) error {
	updated := playbook.DeepCopy()
	updated.Status = status

	if err := c.Status().Patch(ctx, updated, client.MergeFrom(playbook)); err != nil {
		return fmt.Errorf("failed to patch status of playbook %s: %w", playbook.Name, err)
	}

	logging.Debug("Resources", "Patched playbook %s status to %s", playbook.Name, status.State)
	return nil
}
