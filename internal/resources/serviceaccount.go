package resources

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// PatchServiceAccount attaches the registry credential secret to the named
// service account in the playbook's namespace. With imagePull set the
// secret is added to imagePullSecrets; with mount set it is added to the
// mountable secrets list so build pods can push to the registry.
//
// The patch is a server-side merge computed against the current object, so
// concurrent writers to other fields of the service account are not
// clobbered. Patching is idempotent: an already-attached secret is left
// alone.
func PatchServiceAccount(ctx context.Context, c client.Client, namespace, name string, imagePull, mount bool) error {
	sa := &corev1.ServiceAccount{}
	if err := c.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, sa); err != nil {
		return fmt.Errorf("failed to get service account %s/%s: %w", namespace, name, err)
	}

	original := sa.DeepCopy()
	changed := false

	if imagePull && !hasImagePullSecret(sa, RegistrySecretName) {
		sa.ImagePullSecrets = append(sa.ImagePullSecrets,
			corev1.LocalObjectReference{Name: RegistrySecretName})
		changed = true
	}
	if mount && !hasMountableSecret(sa, RegistrySecretName) {
		sa.Secrets = append(sa.Secrets,
			corev1.ObjectReference{Name: RegistrySecretName, Namespace: namespace})
		changed = true
	}

	if !changed {
		return nil
	}

	if err := c.Patch(ctx, sa, client.MergeFrom(original)); err != nil {
		return fmt.Errorf("failed to patch service account %s/%s: %w", namespace, name, err)
	}
	return nil
}

func hasImagePullSecret(sa *corev1.ServiceAccount, name string) bool {
	for _, ref := range sa.ImagePullSecrets {
		if ref.Name == name {
			return true
		}
	}
	return false
}

func hasMountableSecret(sa *corev1.ServiceAccount, name string) bool {
	for _, ref := range sa.Secrets {
		if ref.Name == name {
			return true
		}
	}
	return false
}
