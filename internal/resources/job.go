package resources

import (
	"context"
	"fmt"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// BuildJobName returns the name of the build job for an actor.
func BuildJobName(actor *v1alpha1.Actor) string {
	return actor.Spec.Name + "-builder"
}

// BuildJobExists reports whether the actor's build job is present.
func BuildJobExists(ctx context.Context, c client.Client, actor *v1alpha1.Actor) (bool, error) {
	job := &batchv1.Job{}
	err := c.Get(ctx, types.NamespacedName{Namespace: actor.Namespace, Name: BuildJobName(actor)}, job)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get build job for actor %s/%s: %w", actor.Namespace, actor.Name, err)
	}
	return true, nil
}

// CreateBuildJob creates the actor's build job around the given pod spec.
func CreateBuildJob(ctx context.Context, c client.Client, actor *v1alpha1.Actor, podSpec corev1.PodSpec) error {
	job := buildJob(actor, podSpec)
	if err := c.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to create build job %s/%s: %w", job.Namespace, job.Name, err)
	}

	logging.Info("Resources", "Created build job %s/%s", job.Namespace, job.Name)
	return nil
}

// UpdateBuildJob replaces the pod template of an existing build job. Job
// pod templates are immutable in the store, so an update deletes the old
// job (with foreground propagation, taking its pods with it) and creates a
// fresh one carrying the new template.
func UpdateBuildJob(ctx context.Context, c client.Client, actor *v1alpha1.Actor, podSpec corev1.PodSpec) error {
	existing := &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{Namespace: actor.Namespace, Name: BuildJobName(actor)},
	}
	propagation := metav1.DeletePropagationForeground
	if err := c.Delete(ctx, existing, &client.DeleteOptions{PropagationPolicy: &propagation}); err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete build job %s/%s for update: %w", actor.Namespace, BuildJobName(actor), err)
	}

	job := buildJob(actor, podSpec)
	if err := c.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to recreate build job %s/%s: %w", job.Namespace, job.Name, err)
	}

	logging.Info("Resources", "Refreshed build job %s/%s", job.Namespace, job.Name)
	return nil
}

// DeleteBuildJob removes the actor's build job, tolerating its absence.
// Used by actor cleanup.
func DeleteBuildJob(ctx context.Context, c client.Client, actor *v1alpha1.Actor) error {
	job := &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{Namespace: actor.Namespace, Name: BuildJobName(actor)},
	}
	propagation := metav1.DeletePropagationBackground
	err := c.Delete(ctx, job, &client.DeleteOptions{PropagationPolicy: &propagation})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete build job %s/%s: %w", actor.Namespace, BuildJobName(actor), err)
	}
	return nil
}

// DeleteBuildJobs removes every build job labelled for the given playbook
// from its namespace. Used by playbook cleanup.
func DeleteBuildJobs(ctx context.Context, c client.Client, playbook *v1alpha1.Playbook) error {
	propagation := metav1.DeletePropagationBackground
	err := c.DeleteAllOf(ctx, &batchv1.Job{},
		client.InNamespace(playbook.Spec.Namespace),
		client.MatchingLabels{PlaybookLabel: playbook.Name},
		client.PropagationPolicy(propagation),
	)
	if err != nil {
		return fmt.Errorf("failed to delete build jobs for playbook %s: %w", playbook.Name, err)
	}
	return nil
}

func buildJob(actor *v1alpha1.Actor, podSpec corev1.PodSpec) *batchv1.Job {
	backoffLimit := int32(3)
	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: actor.Namespace,
			Name:      BuildJobName(actor),
			Labels: map[string]string{
				ManagedByLabel:        "composer",
				PlaybookLabel:         actor.Labels[PlaybookLabel],
				ActorLabel:            actor.Name,
				"composer.dev/commit": actor.Spec.Commit,
			},
			OwnerReferences: []metav1.OwnerReference{actorOwnerReference(actor)},
		},
		Spec: batchv1.JobSpec{
			BackoffLimit: &backoffLimit,
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{
						ManagedByLabel: "composer",
						ActorLabel:     actor.Name,
					},
				},
				Spec: podSpec,
			},
		},
	}
}

// actorOwnerReference builds the controller owner reference for resources
// owned by an actor.
func actorOwnerReference(actor *v1alpha1.Actor) metav1.OwnerReference {
	controller := true
	return metav1.OwnerReference{
		APIVersion: v1alpha1.GroupVersion.String(),
		Kind:       "Actor",
		Name:       actor.Name,
		UID:        actor.UID,
		Controller: &controller,
	}
}
