package client

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"

	composerv1alpha1 "composer/pkg/apis/composer/v1alpha1"
)

// kubernetesClient implements ComposerClient on the Kubernetes API via
// controller-runtime.
type kubernetesClient struct {
	client.Client
	scheme *runtime.Scheme
}

// newKubernetesClient creates the Kubernetes-backed typed client and
// verifies the composer CRDs are installed.
func newKubernetesClient(restConfig *rest.Config) (ComposerClient, error) {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(composerv1alpha1.AddToScheme(scheme))

	k8sClient, err := client.New(restConfig, client.Options{
		Scheme: scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	c := &kubernetesClient{
		Client: k8sClient,
		scheme: scheme,
	}

	if err := c.validateCRDs(context.Background()); err != nil {
		return nil, fmt.Errorf("CRD validation failed: %w", err)
	}

	return c, nil
}

// validateCRDs fails when the composer CRDs are not installed; a list
// against a missing CRD surfaces the no-match error immediately.
func (k *kubernetesClient) validateCRDs(ctx context.Context) error {
	if _, err := k.ListPlaybooks(ctx); err != nil {
		return fmt.Errorf("Playbook CRD not available: %w", err)
	}
	return nil
}

// GetPlaybook retrieves a playbook. Playbooks are cluster-scoped.
func (k *kubernetesClient) GetPlaybook(ctx context.Context, name string) (*composerv1alpha1.Playbook, error) {
	playbook := &composerv1alpha1.Playbook{}
	if err := k.Get(ctx, types.NamespacedName{Name: name}, playbook); err != nil {
		return nil, fmt.Errorf("failed to get playbook %s: %w", name, err)
	}
	return playbook, nil
}

// ListPlaybooks lists all playbooks.
func (k *kubernetesClient) ListPlaybooks(ctx context.Context) ([]composerv1alpha1.Playbook, error) {
	playbookList := &composerv1alpha1.PlaybookList{}
	if err := k.List(ctx, playbookList); err != nil {
		return nil, fmt.Errorf("failed to list playbooks: %w", err)
	}
	return playbookList.Items, nil
}

// CreatePlaybook creates a new playbook.
func (k *kubernetesClient) CreatePlaybook(ctx context.Context, playbook *composerv1alpha1.Playbook) error {
	if err := k.Create(ctx, playbook); err != nil {
		return fmt.Errorf("failed to create playbook %s: %w", playbook.Name, err)
	}
	return nil
}

// UpdatePlaybook updates an existing playbook.
func (k *kubernetesClient) UpdatePlaybook(ctx context.Context, playbook *composerv1alpha1.Playbook) error {
	if err := k.Update(ctx, playbook); err != nil {
		return fmt.Errorf("failed to update playbook %s: %w", playbook.Name, err)
	}
	return nil
}

// DeletePlaybook deletes a playbook. Cleanup of its sub-resources is
// driven by the controller's finalizer.
func (k *kubernetesClient) DeletePlaybook(ctx context.Context, name string) error {
	playbook := &composerv1alpha1.Playbook{
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
	if err := k.Delete(ctx, playbook); err != nil {
		return fmt.Errorf("failed to delete playbook %s: %w", name, err)
	}
	return nil
}

// GetActor retrieves an actor from a namespace.
func (k *kubernetesClient) GetActor(ctx context.Context, name, namespace string) (*composerv1alpha1.Actor, error) {
	actor := &composerv1alpha1.Actor{}
	key := types.NamespacedName{Name: name, Namespace: namespace}
	if err := k.Get(ctx, key, actor); err != nil {
		return nil, fmt.Errorf("failed to get actor %s/%s: %w", namespace, name, err)
	}
	return actor, nil
}

// ListActors lists actors, in one namespace or in all of them.
func (k *kubernetesClient) ListActors(ctx context.Context, namespace string) ([]composerv1alpha1.Actor, error) {
	actorList := &composerv1alpha1.ActorList{}
	listOpts := []client.ListOption{}
	if namespace != "" {
		listOpts = append(listOpts, client.InNamespace(namespace))
	}

	if err := k.List(ctx, actorList, listOpts...); err != nil {
		return nil, fmt.Errorf("failed to list actors in namespace %s: %w", namespace, err)
	}
	return actorList.Items, nil
}

// CreateActor creates a new actor.
func (k *kubernetesClient) CreateActor(ctx context.Context, actor *composerv1alpha1.Actor) error {
	if err := k.Create(ctx, actor); err != nil {
		return fmt.Errorf("failed to create actor %s/%s: %w", actor.Namespace, actor.Name, err)
	}
	return nil
}

// UpdateActor updates an existing actor.
func (k *kubernetesClient) UpdateActor(ctx context.Context, actor *composerv1alpha1.Actor) error {
	if err := k.Update(ctx, actor); err != nil {
		return fmt.Errorf("failed to update actor %s/%s: %w", actor.Namespace, actor.Name, err)
	}
	return nil
}

// DeleteActor deletes an actor.
func (k *kubernetesClient) DeleteActor(ctx context.Context, name, namespace string) error {
	actor := &composerv1alpha1.Actor{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
	}
	if err := k.Delete(ctx, actor); err != nil {
		return fmt.Errorf("failed to delete actor %s/%s: %w", namespace, name, err)
	}
	return nil
}

// UpdatePlaybookStatus updates only the status subresource of a playbook.
func (k *kubernetesClient) UpdatePlaybookStatus(ctx context.Context, playbook *composerv1alpha1.Playbook) error {
	if err := k.Status().Update(ctx, playbook); err != nil {
		return fmt.Errorf("failed to update playbook %s status: %w", playbook.Name, err)
	}
	return nil
}

// UpdateActorStatus updates only the status subresource of an actor.
func (k *kubernetesClient) UpdateActorStatus(ctx context.Context, actor *composerv1alpha1.Actor) error {
	if err := k.Status().Update(ctx, actor); err != nil {
		return fmt.Errorf("failed to update actor %s/%s status: %w", actor.Namespace, actor.Name, err)
	}
	return nil
}

// CreateEvent emits a Kubernetes Event attributed to the composer
// component for the given object.
func (k *kubernetesClient) CreateEvent(ctx context.Context, obj client.Object, reason, message, eventType string) error {
	gvk, err := k.GroupVersionKindFor(obj)
	if err != nil {
		return fmt.Errorf("failed to get GroupVersionKind for object: %w", err)
	}

	namespace := obj.GetNamespace()
	if namespace == "" {
		namespace = "default"
	}

	event := &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{
			GenerateName: obj.GetName() + "-",
			Namespace:    namespace,
		},
		InvolvedObject: corev1.ObjectReference{
			APIVersion: gvk.GroupVersion().String(),
			Kind:       gvk.Kind,
			Name:       obj.GetName(),
			Namespace:  obj.GetNamespace(),
			UID:        obj.GetUID(),
		},
		Reason:         reason,
		Message:        message,
		Type:           eventType,
		Source:         corev1.EventSource{Component: "composer"},
		FirstTimestamp: metav1.NewTime(time.Now()),
		LastTimestamp:  metav1.NewTime(time.Now()),
		Count:          1,
	}

	if err := k.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create event for %s %s: %w", gvk.Kind, obj.GetName(), err)
	}
	return nil
}
