package resources

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"composer/pkg/logging"
)

// ImageGVK identifies the declarative image custom resource consumed by
// the external image-building operator.
var ImageGVK = schema.GroupVersionKind{Group: "kpack.io", Version: "v1alpha2", Kind: "Image"}

// ImageExists reports whether the named image resource is present.
func ImageExists(ctx context.Context, c client.Client, namespace, name string) (bool, error) {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(ImageGVK)
	err := c.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, obj)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get image %s/%s: %w", namespace, name, err)
	}
	return true, nil
}

// CreateImage creates an image resource.
func CreateImage(ctx context.Context, c client.Client, image *unstructured.Unstructured) error {
	if err := c.Create(ctx, image); err != nil {
		return fmt.Errorf("failed to create image %s/%s: %w", image.GetNamespace(), image.GetName(), err)
	}

	logging.Info("Resources", "Created image %s/%s", image.GetNamespace(), image.GetName())
	return nil
}

// UpdateImage merge-patches the spec of an existing image resource.
func UpdateImage(ctx context.Context, c client.Client, image *unstructured.Unstructured) error {
	existing := &unstructured.Unstructured{}
	existing.SetGroupVersionKind(ImageGVK)
	key := types.NamespacedName{Namespace: image.GetNamespace(), Name: image.GetName()}
	if err := c.Get(ctx, key, existing); err != nil {
		return fmt.Errorf("failed to get image %s for update: %w", key, err)
	}

	updated := existing.DeepCopy()
	updated.Object["spec"] = image.Object["spec"]
	if err := c.Patch(ctx, updated, client.MergeFrom(existing)); err != nil {
		return fmt.Errorf("failed to update image %s: %w", key, err)
	}

	logging.Info("Resources", "Updated image %s", key)
	return nil
}

// DeleteActorImages removes every image resource labelled for the given
// actor, including those left behind by earlier commits. Used by actor
// cleanup. Absence of the image CRD is tolerated.
func DeleteActorImages(ctx context.Context, c client.Client, namespace, actorName string) error {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(ImageGVK)
	err := c.DeleteAllOf(ctx, obj,
		client.InNamespace(namespace),
		client.MatchingLabels{ActorLabel: actorName},
	)
	if err != nil && !apierrors.IsNotFound(err) && !meta.IsNoMatchError(err) {
		return fmt.Errorf("failed to delete images for actor %s/%s: %w", namespace, actorName, err)
	}
	return nil
}

// DeleteImages removes every image resource labelled for the given
// playbook from its namespace. Used by playbook cleanup. A store without
// the image CRD installed is tolerated: there is nothing to delete.
func DeleteImages(ctx context.Context, c client.Client, namespace, playbookName string) error {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(ImageGVK)
	err := c.DeleteAllOf(ctx, obj,
		client.InNamespace(namespace),
		client.MatchingLabels{PlaybookLabel: playbookName},
	)
	if err != nil && !apierrors.IsNotFound(err) && !meta.IsNoMatchError(err) {
		return fmt.Errorf("failed to delete images for playbook %s: %w", playbookName, err)
	}
	return nil
}
