package resources

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// ActorExists reports whether an Actor resource with the given spec's name
// is present in the playbook's namespace.
func ActorExists(ctx context.Context, c client.Client, playbook *v1alpha1.Playbook, name string) (bool, error) {
	actor := &v1alpha1.Actor{}
	err := c.Get(ctx, types.NamespacedName{Namespace: playbook.Spec.Namespace, Name: name}, actor)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get actor %s/%s: %w", playbook.Spec.Namespace, name, err)
	}
	return true, nil
}

// GetActor fetches an Actor resource from the playbook's namespace.
func GetActor(ctx context.Context, c client.Client, playbook *v1alpha1.Playbook, name string) (*v1alpha1.Actor, error) {
	actor := &v1alpha1.Actor{}
	err := c.Get(ctx, types.NamespacedName{Namespace: playbook.Spec.Namespace, Name: name}, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor %s/%s: %w", playbook.Spec.Namespace, name, err)
	}
	return actor, nil
}

// CreateActor materializes an actor spec as an Actor resource in the
// playbook's namespace, owned by the playbook.
func CreateActor(ctx context.Context, c client.Client, playbook *v1alpha1.Playbook, spec v1alpha1.ActorSpec) error {
	actor := &v1alpha1.Actor{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: playbook.Spec.Namespace,
			Name:      spec.Name,
			Labels: map[string]string{
				ManagedByLabel: "composer",
				PlaybookLabel:  playbook.Name,
			},
			OwnerReferences: []metav1.OwnerReference{ownerReference(playbook)},
		},
		Spec: spec,
	}

	if err := c.Create(ctx, actor); err != nil {
		return fmt.Errorf("failed to create actor %s/%s: %w", playbook.Spec.Namespace, spec.Name, err)
	}

	logging.Info("Resources", "Created actor %s/%s", playbook.Spec.Namespace, spec.Name)
	return nil
}

// UpdateActor patches an existing Actor resource's spec to match the
// playbook's current spec for it. Patching only fires when the spec
// actually differs so that re-running the same synchronization is a
// no-op against the store.
func UpdateActor(ctx context.Context, c client.Client, playbook *v1alpha1.Playbook, spec v1alpha1.ActorSpec) error {
	actor, err := GetActor(ctx, c, playbook, spec.Name)
	if err != nil {
		return err
	}

	if specEqual(actor.Spec, spec) {
		return nil
	}

	updated := actor.DeepCopy()
	updated.Spec = spec
	if err := c.Patch(ctx, updated, client.MergeFrom(actor)); err != nil {
		return fmt.Errorf("failed to update actor %s/%s: %w", playbook.Spec.Namespace, spec.Name, err)
	}

	logging.Info("Resources", "Updated actor %s/%s", playbook.Spec.Namespace, spec.Name)
	return nil
}

// PatchActorStatus patches only the status subresource of the actor with
// the given lifecycle state.
func PatchActorStatus(ctx context.Context, c client.Client, actor *v1alpha1.Actor, status v1alpha1.ActorStatus) error {
	updated := actor.DeepCopy()
	updated.Status = status

	if err := c.Status().Patch(ctx, updated, client.MergeFrom(actor)); err != nil {
		return fmt.Errorf("failed to patch status of actor %s/%s: %w", actor.Namespace, actor.Name, err)
	}

	logging.Debug("Resources", "Patched actor %s/%s status to %s", actor.Namespace, actor.Name, status.State)
	return nil
}

// specEqual compares the fields of two actor specs that affect the
// deployed workload.
func specEqual(a, b v1alpha1.ActorSpec) bool {
	if a.Name != b.Name || a.Image != b.Image || a.Repository != b.Repository ||
		a.Reference != b.Reference || a.Commit != b.Commit || a.Path != b.Path ||
		a.Live != b.Live || a.Description != b.Description {
		return false
	}
	if len(a.Partners) != len(b.Partners) {
		return false
	}
	for i := range a.Partners {
		if a.Partners[i] != b.Partners[i] {
			return false
		}
	}
	return true
}
