package resources

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// DeploymentExists reports whether the actor's workload deployment is
// present.
func DeploymentExists(ctx context.Context, c client.Client, actor *v1alpha1.Actor) (bool, error) {
	deployment := &appsv1.Deployment{}
	err := c.Get(ctx, types.NamespacedName{Namespace: actor.Namespace, Name: actor.Spec.Name}, deployment)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get deployment %s/%s: %w", actor.Namespace, actor.Spec.Name, err)
	}
	return true, nil
}

// CreateDeployment creates the actor's workload deployment running the
// given image.
func CreateDeployment(ctx context.Context, c client.Client, actor *v1alpha1.Actor, image string) error {
	replicas := int32(1)
	selector := map[string]string{ActorLabel: actor.Name}

	deployment := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: actor.Namespace,
			Name:      actor.Spec.Name,
			Labels: map[string]string{
				ManagedByLabel: "composer",
				PlaybookLabel:  actor.Labels[PlaybookLabel],
				ActorLabel:     actor.Name,
			},
			OwnerReferences: []metav1.OwnerReference{actorOwnerReference(actor)},
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: selector},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  actor.Spec.Name,
							Image: image,
						},
					},
					ImagePullSecrets: []corev1.LocalObjectReference{
						{Name: RegistrySecretName},
					},
				},
			},
		},
	}

	if err := c.Create(ctx, deployment); err != nil {
		return fmt.Errorf("failed to create deployment %s/%s: %w", actor.Namespace, actor.Spec.Name, err)
	}

	logging.Info("Resources", "Created deployment %s/%s", actor.Namespace, actor.Spec.Name)
	return nil
}

// UpdateDeployment patches the actor's deployment to run the given image.
// A deployment already running the image is left untouched.
func UpdateDeployment(ctx context.Context, c client.Client, actor *v1alpha1.Actor, image string) error {
	deployment := &appsv1.Deployment{}
	key := types.NamespacedName{Namespace: actor.Namespace, Name: actor.Spec.Name}
	if err := c.Get(ctx, key, deployment); err != nil {
		return fmt.Errorf("failed to get deployment %s: %w", key, err)
	}

	containers := deployment.Spec.Template.Spec.Containers
	if len(containers) == 0 || containers[0].Image == image {
		return nil
	}

	updated := deployment.DeepCopy()
	updated.Spec.Template.Spec.Containers[0].Image = image
	if err := c.Patch(ctx, updated, client.MergeFrom(deployment)); err != nil {
		return fmt.Errorf("failed to update deployment %s: %w", key, err)
	}

	logging.Info("Resources", "Updated deployment %s to image %s", key, image)
	return nil
}

// DeployedImage returns the image the actor's deployment currently runs,
// or an empty string if no deployment exists.
func DeployedImage(ctx context.Context, c client.Client, actor *v1alpha1.Actor) (string, error) {
	deployment := &appsv1.Deployment{}
	key := types.NamespacedName{Namespace: actor.Namespace, Name: actor.Spec.Name}
	if err := c.Get(ctx, key, deployment); err != nil {
		if apierrors.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get deployment %s: %w", key, err)
	}
	if len(deployment.Spec.Template.Spec.Containers) == 0 {
		return "", nil
	}
	return deployment.Spec.Template.Spec.Containers[0].Image, nil
}
