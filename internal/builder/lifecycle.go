package builder

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"composer/internal/config"
	"composer/internal/resources"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

const (
	lifecycleImage = "buildpacksio/lifecycle:0.20.5"
	gitCloneImage  = "alpine/git:2.47.2"
)

// LifecycleBuilder builds actors in-cluster with the buildpacks lifecycle:
// a Job whose pod clones the actor's source at the pinned commit and runs
// the lifecycle creator, pushing the result to the configured registry.
type LifecycleBuilder struct {
	client   client.Client
	registry config.RegistryConfig
}

// NewLifecycleBuilder returns a lifecycle-based build strategy.
func NewLifecycleBuilder(c client.Client, reg config.RegistryConfig) *LifecycleBuilder {
	return &LifecycleBuilder{client: c, registry: reg}
}

// Build creates the actor's build job, or refreshes it in place if one
// already exists.
func (b *LifecycleBuilder) Build(ctx context.Context, actor *v1alpha1.Actor) error {
	podSpec := b.podSpec(actor)

	exists, err := resources.BuildJobExists(ctx, b.client, actor)
	if err != nil {
		return &workflow.StoreError{Err: err}
	}

	name := resources.BuildJobName(actor)
	if exists {
		logging.Info("Builder", "Refreshing existing build job %s", name)
		if err := resources.UpdateBuildJob(ctx, b.client, actor, podSpec); err != nil {
			return &workflow.StoreError{Err: err}
		}
		return nil
	}

	logging.Info("Builder", "Creating build job %s", name)
	if err := resources.CreateBuildJob(ctx, b.client, actor, podSpec); err != nil {
		return &workflow.StoreError{Err: err}
	}
	return nil
}

// podSpec assembles the build pod: an init container cloning the source at
// the pinned commit into a shared workspace, then the lifecycle creator
// building and pushing the image.
func (b *LifecycleBuilder) podSpec(actor *v1alpha1.Actor) corev1.PodSpec {
	tag := ImageTag(b.registry, actor)
	workspace := corev1.VolumeMount{Name: "workspace", MountPath: "/workspace"}

	return corev1.PodSpec{
		RestartPolicy:      corev1.RestartPolicyNever,
		ServiceAccountName: "default",
		Volumes: []corev1.Volume{
			{
				Name: "workspace",
				VolumeSource: corev1.VolumeSource{
					EmptyDir: &corev1.EmptyDirVolumeSource{},
				},
			},
			{
				Name: "registry-credential",
				VolumeSource: corev1.VolumeSource{
					Secret: &corev1.SecretVolumeSource{
						SecretName: resources.RegistrySecretName,
						Items: []corev1.KeyToPath{
							{Key: corev1.DockerConfigJsonKey, Path: "config.json"},
						},
					},
				},
			},
		},
		InitContainers: []corev1.Container{
			{
				Name:  "fetch-source",
				Image: gitCloneImage,
				Args: []string{
					"clone", "--depth", "1",
					"--revision", actor.Spec.Commit,
					actor.Spec.Repository,
					"/workspace/source",
				},
				VolumeMounts: []corev1.VolumeMount{workspace},
			},
		},
		Containers: []corev1.Container{
			{
				Name:       "build",
				Image:      lifecycleImage,
				Command:    []string{"/cnb/lifecycle/creator"},
				Args:       []string{"-app=.", tag},
				WorkingDir: "/workspace/source/" + actor.Spec.Path,
				VolumeMounts: []corev1.VolumeMount{
					workspace,
					{
						Name:      "registry-credential",
						MountPath: "/home/cnb/.docker",
						ReadOnly:  true,
					},
				},
			},
		},
	}
}
