package controller

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"composer/internal/config"
	"composer/internal/credentials"
	"composer/internal/resolver"
	"composer/internal/resources"
	"composer/internal/workflow"
	playbookflow "composer/internal/workflow/playbook"
	composerv1alpha1 "composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// PlaybookFinalizer guards playbook deletion until its sub-resources are
// cleaned up.
const PlaybookFinalizer = "playbooks.composer.dev/finalizer"

// PlaybookReconciler drives playbooks through their workflow. Every pass
// re-reads the live object and dispatches on its patched status, so
// reconciliation is idempotent regardless of which event triggered it.
type PlaybookReconciler struct {
	client      client.Client
	machine     *workflow.Machine[*composerv1alpha1.Playbook]
	credentials *credentials.Store
	fetcher     resolver.ManifestFetcher
	registry    config.RegistryConfig
	recorder    workflow.Recorder
	resync      ReconcileResult
}

// PlaybookReconcilerOptions collects the collaborators of a
// PlaybookReconciler.
type PlaybookReconcilerOptions struct {
	Client      client.Client
	Credentials *credentials.Store
	Fetcher     resolver.ManifestFetcher
	Registry    config.RegistryConfig
	Recorder    workflow.Recorder
	Resync      ReconcileResult
}

// NewPlaybookReconciler creates a reconciler for Playbook resources.
func NewPlaybookReconciler(opts PlaybookReconcilerOptions) *PlaybookReconciler {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = workflow.NopRecorder{}
	}
	return &PlaybookReconciler{
		client:      opts.Client,
		machine:     playbookflow.NewMachine(),
		credentials: opts.Credentials,
		fetcher:     opts.Fetcher,
		registry:    opts.Registry,
		recorder:    recorder,
		resync:      opts.Resync,
	}
}

// GetResourceType returns the resource type this reconciler handles.
func (r *PlaybookReconciler) GetResourceType() ResourceType {
	return ResourceTypePlaybook
}

// Reconcile processes a single playbook reconciliation request.
func (r *PlaybookReconciler) Reconcile(ctx context.Context, req ReconcileRequest) ReconcileResult {
	playbook := &composerv1alpha1.Playbook{}
	if err := r.client.Get(ctx, types.NamespacedName{Name: req.Name}, playbook); err != nil {
		if apierrors.IsNotFound(err) {
			logging.Debug("PlaybookReconciler", "Playbook %s no longer exists", req.Name)
			return ReconcileResult{}
		}
		return ReconcileResult{Error: fmt.Errorf("failed to get playbook %s: %w", req.Name, err)}
	}

	if !playbook.DeletionTimestamp.IsZero() {
		return r.cleanup(ctx, playbook)
	}

	if !controllerutil.ContainsFinalizer(playbook, PlaybookFinalizer) {
		original := playbook.DeepCopy()
		controllerutil.AddFinalizer(playbook, PlaybookFinalizer)
		if err := r.client.Patch(ctx, playbook, client.MergeFrom(original)); err != nil {
			return ReconcileResult{Error: fmt.Errorf("failed to add finalizer to playbook %s: %w", req.Name, err)}
		}
	}

	// A playbook without actors has nothing to converge toward; surfacing
	// the error keeps it visible instead of silently idling.
	if len(playbook.Spec.Actors) == 0 {
		return ReconcileResult{Error: &workflow.PreconditionError{
			Reason: fmt.Sprintf("playbook %s has no actors", playbook.Name),
		}}
	}

	// A freshly created playbook carries no status yet; seed it and come
	// straight back.
	if playbook.Status.Empty() {
		if err := resources.PatchPlaybookStatus(ctx, r.client, playbook, composerv1alpha1.PendingState()); err != nil {
			return ReconcileResult{Error: fmt.Errorf("failed to initialize playbook %s status: %w", req.Name, err)}
		}
		return ReconcileResult{Requeue: true}
	}

	wc := &workflow.Context[*composerv1alpha1.Playbook]{
		Object:      playbook,
		Client:      r.client,
		Credentials: r.credentials,
		Fetcher:     r.fetcher,
		Registry:    r.registry,
		Recorder:    r.recorder,
	}

	intent, err := r.machine.Handle(ctx, playbookflow.StateOf(playbook), wc)
	if err != nil {
		return ReconcileResult{Error: err}
	}

	if _, transition := intent.Transition(); transition {
		return ReconcileResult{Requeue: true}
	}
	return r.resync
}

// cleanup tears down the playbook's sub-resources and releases the
// finalizer. Each step tolerates absence, so a partially failed cleanup
// can be retried from the top.
func (r *PlaybookReconciler) cleanup(ctx context.Context, playbook *composerv1alpha1.Playbook) ReconcileResult {
	if !controllerutil.ContainsFinalizer(playbook, PlaybookFinalizer) {
		return ReconcileResult{}
	}

	logging.Info("PlaybookReconciler", "Cleaning up playbook %s", playbook.Name)

	if err := resources.DeleteBuildJobs(ctx, r.client, playbook); err != nil {
		return ReconcileResult{Error: err}
	}
	if err := resources.DeleteImages(ctx, r.client, playbook.Spec.Namespace, playbook.Name); err != nil {
		return ReconcileResult{Error: err}
	}
	if err := resources.DeleteRegistrySecret(ctx, r.client, playbook.Spec.Namespace); err != nil {
		return ReconcileResult{Error: err}
	}
	if err := resources.DeleteNamespace(ctx, r.client, playbook); err != nil {
		return ReconcileResult{Error: err}
	}

	original := playbook.DeepCopy()
	controllerutil.RemoveFinalizer(playbook, PlaybookFinalizer)
	if err := r.client.Patch(ctx, playbook, client.MergeFrom(original)); err != nil {
		return ReconcileResult{Error: fmt.Errorf("failed to remove finalizer from playbook %s: %w", playbook.Name, err)}
	}

	logging.Info("PlaybookReconciler", "Playbook %s cleaned up", playbook.Name)
	return ReconcileResult{}
}
