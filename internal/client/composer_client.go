package client

import (
	"context"
	"fmt"

	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	composerv1alpha1 "composer/pkg/apis/composer/v1alpha1"
)

// ComposerClient is the typed interface for composer resources. It embeds
// the controller-runtime client for generic CRUD and adds per-kind
// convenience operations.
type ComposerClient interface {
	client.Client

	// Playbook operations
	GetPlaybook(ctx context.Context, name string) (*composerv1alpha1.Playbook, error)
	ListPlaybooks(ctx context.Context) ([]composerv1alpha1.Playbook, error)
	CreatePlaybook(ctx context.Context, playbook *composerv1alpha1.Playbook) error
	UpdatePlaybook(ctx context.Context, playbook *composerv1alpha1.Playbook) error
	DeletePlaybook(ctx context.Context, name string) error

	// Actor operations
	GetActor(ctx context.Context, name, namespace string) (*composerv1alpha1.Actor, error)
	ListActors(ctx context.Context, namespace string) ([]composerv1alpha1.Actor, error)
	CreateActor(ctx context.Context, actor *composerv1alpha1.Actor) error
	UpdateActor(ctx context.Context, actor *composerv1alpha1.Actor) error
	DeleteActor(ctx context.Context, name, namespace string) error

	// Status update operations (use the status subresource)
	UpdatePlaybookStatus(ctx context.Context, playbook *composerv1alpha1.Playbook) error
	UpdateActorStatus(ctx context.Context, actor *composerv1alpha1.Actor) error

	// CreateEvent emits a Kubernetes Event for the given object.
	CreateEvent(ctx context.Context, obj client.Object, reason, message, eventType string) error
}

// NewComposerClient creates a typed client using the standard Kubernetes
// configuration detection (in-cluster config, then kubeconfig).
func NewComposerClient() (ComposerClient, error) {
	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get Kubernetes config: %w", err)
	}
	return NewComposerClientWithConfig(restConfig)
}

// NewComposerClientWithConfig creates a typed client for the given REST
// configuration.
func NewComposerClientWithConfig(restConfig *rest.Config) (ComposerClient, error) {
	return newKubernetesClient(restConfig)
}

// NewComposerClientFromClient wraps an already configured controller-runtime
// client. CRD validation is skipped; the caller vouches for the scheme.
func NewComposerClientFromClient(c client.Client) ComposerClient {
	return &kubernetesClient{Client: c, scheme: c.Scheme()}
}
