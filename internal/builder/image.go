package builder

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"composer/internal/config"
	"composer/internal/resources"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

const (
	defaultClusterBuilder = "composer-default-cluster-builder"
)

// imageResource is a typed builder for the declarative Image custom
// resource consumed by the external image-building operator. Required
// fields are validated at construction time so a malformed actor surfaces
// a typed error instead of a late runtime failure from the store.
type imageResource struct {
	Name               string
	Namespace          string
	Tag                string
	ServiceAccountName string
	BuilderName        string
	GitURL             string
	GitRevision        string
	SubPath            string
	PlaybookName       string
	ActorName          string
}

func (r imageResource) validate() error {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.Namespace == "" {
		missing = append(missing, "namespace")
	}
	if r.Tag == "" {
		missing = append(missing, "tag")
	}
	if r.GitURL == "" {
		missing = append(missing, "git url")
	}
	if r.GitRevision == "" {
		missing = append(missing, "git revision")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %v", missing)
	}
	return nil
}

func (r imageResource) toUnstructured() *unstructured.Unstructured {
	obj := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"metadata": map[string]interface{}{
				"name":      r.Name,
				"namespace": r.Namespace,
				"labels": map[string]interface{}{
					resources.ManagedByLabel: "composer",
					resources.PlaybookLabel:  r.PlaybookName,
					resources.ActorLabel:     r.ActorName,
				},
			},
			"spec": map[string]interface{}{
				"tag":                r.Tag,
				"serviceAccountName": r.ServiceAccountName,
				"builder": map[string]interface{}{
					"name": r.BuilderName,
					"kind": "ClusterBuilder",
				},
				"source": map[string]interface{}{
					"git": map[string]interface{}{
						"url":      r.GitURL,
						"revision": r.GitRevision,
					},
					"subPath": r.SubPath,
				},
			},
		},
	}
	obj.SetGroupVersionKind(resources.ImageGVK)
	return obj
}

// ImageBuilder builds actors by declaring an Image custom resource and
// leaving the actual build to the external image-building operator.
type ImageBuilder struct {
	client   client.Client
	registry config.RegistryConfig
}

// NewImageBuilder returns an image-resource build strategy.
func NewImageBuilder(c client.Client, reg config.RegistryConfig) *ImageBuilder {
	return &ImageBuilder{client: c, registry: reg}
}

// Build declares the actor's image resource, or refreshes its spec if one
// already exists.
func (b *ImageBuilder) Build(ctx context.Context, actor *v1alpha1.Actor) error {
	if actor.Spec.Commit == "" {
		return &workflow.SerializationError{
			Kind: "Image",
			Err:  errors.New("actor has no resolved commit"),
		}
	}

	resource := imageResource{
		Name:               fmt.Sprintf("%s-%s", actor.Spec.Name, actor.Spec.Commit),
		Namespace:          actor.Namespace,
		Tag:                ImageTag(b.registry, actor),
		ServiceAccountName: "default",
		BuilderName:        defaultClusterBuilder,
		GitURL:             actor.Spec.Repository,
		GitRevision:        actor.Spec.Commit,
		SubPath:            actor.Spec.Path,
		PlaybookName:       actor.Labels[resources.PlaybookLabel],
		ActorName:          actor.Name,
	}
	if err := resource.validate(); err != nil {
		return &workflow.SerializationError{Kind: "Image", Err: err}
	}

	image := resource.toUnstructured()

	exists, err := resources.ImageExists(ctx, b.client, resource.Namespace, resource.Name)
	if err != nil {
		return &workflow.StoreError{Err: err}
	}

	if exists {
		logging.Info("Builder", "Refreshing existing image %s/%s", resource.Namespace, resource.Name)
		if err := resources.UpdateImage(ctx, b.client, image); err != nil {
			return &workflow.StoreError{Err: err}
		}
		return nil
	}

	logging.Info("Builder", "Declaring new image %s/%s", resource.Namespace, resource.Name)
	if err := resources.CreateImage(ctx, b.client, image); err != nil {
		return &workflow.StoreError{Err: err}
	}
	return nil
}
