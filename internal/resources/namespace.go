package resources

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	composerv1alpha1 "composer/pkg/apis/composer/v1alpha1"
)

// ManagedByLabel marks every resource created by the composer control
// plane.
const ManagedByLabel = "app.kubernetes.io/managed-by"

// PlaybookLabel records which playbook a sub-resource belongs to.
const PlaybookLabel = "composer.dev/playbook"

// ActorLabel records which actor a sub-resource belongs to.
const ActorLabel = "composer.dev/actor"

// NamespaceExists reports whether the playbook's dedicated namespace is
// present in the store.
func NamespaceExists(ctx context.Context, c client.Client, playbook *composerv1alpha1.Playbook) (bool, error) {
	ns := &corev1.Namespace{}
	err := c.Get(ctx, types.NamespacedName{Name: playbook.Spec.Namespace}, ns)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get namespace %s: %w", playbook.Spec.Namespace, err)
	}
	return true, nil
}

// CreateNamespace creates the playbook's dedicated namespace. The namespace
// is owned by the playbook so that store-side garbage collection removes it
// if the finalizer path is ever bypassed.
func CreateNamespace(ctx context.Context, c client.Client, playbook *composerv1alpha1.Playbook) error {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name: playbook.Spec.Namespace,
			Labels: map[string]string{
				ManagedByLabel: "composer",
				PlaybookLabel:  playbook.Name,
			},
			OwnerReferences: []metav1.OwnerReference{ownerReference(playbook)},
		},
	}

	if err := c.Create(ctx, ns); err != nil {
		return fmt.Errorf("failed to create namespace %s: %w", playbook.Spec.Namespace, err)
	}
	return nil
}

// DeleteNamespace removes the playbook's namespace. Everything living in
// the namespace (secrets, jobs, actors' workloads) is garbage collected by
// the store along with it.
func DeleteNamespace(ctx context.Context, c client.Client, playbook *composerv1alpha1.Playbook) error {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: playbook.Spec.Namespace},
	}
	if err := c.Delete(ctx, ns); err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete namespace %s: %w", playbook.Spec.Namespace, err)
	}
	return nil
}

// ownerReference builds the controller owner reference for resources owned
// by a playbook.
func ownerReference(playbook *composerv1alpha1.Playbook) metav1.OwnerReference {
	controller := true
	return metav1.OwnerReference{
		APIVersion: composerv1alpha1.GroupVersion.String(),
		Kind:       "Playbook",
		Name:       playbook.Name,
		UID:        playbook.UID,
		Controller: &controller,
	}
}
