package controller

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"composer/internal/builder"
	"composer/internal/config"
	"composer/internal/credentials"
	"composer/internal/registry"
	"composer/internal/resources"
	"composer/internal/workflow"
	actorflow "composer/internal/workflow/actor"
	composerv1alpha1 "composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// ActorFinalizer guards actor deletion until its sub-resources are
// cleaned up.
const ActorFinalizer = "actors.composer.dev/finalizer"

// ActorReconciler drives actors through their workflow: the build
// decision, the build itself, the rollout, and drift watching.
type ActorReconciler struct {
	client   client.Client
	machine  *workflow.Machine[*composerv1alpha1.Actor]
	store    *credentials.Store
	prober   registry.Prober
	registry config.RegistryConfig
	recorder workflow.Recorder
	resync   ReconcileResult
}

// ActorReconcilerOptions collects the collaborators of an ActorReconciler.
type ActorReconcilerOptions struct {
	Client      client.Client
	Builder     builder.Builder
	Credentials *credentials.Store
	Prober      registry.Prober
	Registry    config.RegistryConfig
	Recorder    workflow.Recorder
	Resync      ReconcileResult
}

// NewActorReconciler creates a reconciler for Actor resources.
func NewActorReconciler(opts ActorReconcilerOptions) *ActorReconciler {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = workflow.NopRecorder{}
	}
	b := opts.Builder
	if b == nil {
		b = builder.NewLifecycleBuilder(opts.Client, opts.Registry)
	}
	return &ActorReconciler{
		client:   opts.Client,
		machine:  actorflow.NewMachine(b),
		store:    opts.Credentials,
		prober:   opts.Prober,
		registry: opts.Registry,
		recorder: recorder,
		resync:   opts.Resync,
	}
}

// GetResourceType returns the resource type this reconciler handles.
func (r *ActorReconciler) GetResourceType() ResourceType {
	return ResourceTypeActor
}

// Reconcile processes a single actor reconciliation request.
func (r *ActorReconciler) Reconcile(ctx context.Context, req ReconcileRequest) ReconcileResult {
	actor := &composerv1alpha1.Actor{}
	key := types.NamespacedName{Namespace: req.Namespace, Name: req.Name}
	if err := r.client.Get(ctx, key, actor); err != nil {
		if apierrors.IsNotFound(err) {
			logging.Debug("ActorReconciler", "Actor %s no longer exists", key)
			return ReconcileResult{}
		}
		return ReconcileResult{Error: fmt.Errorf("failed to get actor %s: %w", key, err)}
	}

	if !actor.DeletionTimestamp.IsZero() {
		return r.cleanup(ctx, actor)
	}

	if !controllerutil.ContainsFinalizer(actor, ActorFinalizer) {
		original := actor.DeepCopy()
		controllerutil.AddFinalizer(actor, ActorFinalizer)
		if err := r.client.Patch(ctx, actor, client.MergeFrom(original)); err != nil {
			return ReconcileResult{Error: fmt.Errorf("failed to add finalizer to actor %s: %w", key, err)}
		}
	}

	if actor.Status.Empty() {
		if err := resources.PatchActorStatus(ctx, r.client, actor, composerv1alpha1.ActorPendingState()); err != nil {
			return ReconcileResult{Error: fmt.Errorf("failed to initialize actor %s status: %w", key, err)}
		}
		return ReconcileResult{Requeue: true}
	}

	wc := &workflow.Context[*composerv1alpha1.Actor]{
		Object:      actor,
		Client:      r.client,
		Credentials: r.store,
		Prober:      r.prober,
		Registry:    r.registry,
		Recorder:    r.recorder,
	}

	intent, err := r.machine.Handle(ctx, actorflow.StateOf(actor), wc)
	if err != nil {
		return ReconcileResult{Error: err}
	}

	if _, transition := intent.Transition(); transition {
		return ReconcileResult{Requeue: true}
	}
	return r.resync
}

// cleanup removes the actor's build artifacts and releases the finalizer.
// The workload deployment is owned by the actor and is collected by the
// store's garbage collector.
func (r *ActorReconciler) cleanup(ctx context.Context, actor *composerv1alpha1.Actor) ReconcileResult {
	if !controllerutil.ContainsFinalizer(actor, ActorFinalizer) {
		return ReconcileResult{}
	}

	logging.Info("ActorReconciler", "Cleaning up actor %s/%s", actor.Namespace, actor.Name)

	if err := resources.DeleteBuildJob(ctx, r.client, actor); err != nil {
		return ReconcileResult{Error: err}
	}
	if err := resources.DeleteActorImages(ctx, r.client, actor.Namespace, actor.Name); err != nil {
		return ReconcileResult{Error: err}
	}

	original := actor.DeepCopy()
	controllerutil.RemoveFinalizer(actor, ActorFinalizer)
	if err := r.client.Patch(ctx, actor, client.MergeFrom(original)); err != nil {
		return ReconcileResult{Error: fmt.Errorf("failed to remove finalizer from actor %s/%s: %w", actor.Namespace, actor.Name, err)}
	}

	return ReconcileResult{}
}
