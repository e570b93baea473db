package controller

import (
	"context"
	"time"
)

// ResourceType identifies the kind of resource being reconciled.
type ResourceType string

const (
	// ResourceTypePlaybook represents Playbook resources.
	ResourceTypePlaybook ResourceType = "Playbook"

	// ResourceTypeActor represents Actor resources.
	ResourceTypeActor ResourceType = "Actor"
)

// ChangeOperation represents the type of change detected.
type ChangeOperation string

const (
	// OperationCreate indicates a new resource was created.
	OperationCreate ChangeOperation = "Create"

	// OperationUpdate indicates an existing resource was modified.
	OperationUpdate ChangeOperation = "Update"

	// OperationDelete indicates a resource was deleted.
	OperationDelete ChangeOperation = "Delete"
)

// ChangeSource indicates where a change originated.
type ChangeSource string

const (
	// SourceKubernetes indicates the change came from Kubernetes informers.
	SourceKubernetes ChangeSource = "Kubernetes"

	// SourceManual indicates the change was triggered manually (e.g., API call).
	SourceManual ChangeSource = "Manual"
)

// ChangeEvent represents a detected change in a resource.
type ChangeEvent struct {
	// Type is the type of resource that changed.
	Type ResourceType

	// Name is the name of the resource that changed.
	Name string

	// Namespace is the resource's namespace (empty for cluster-scoped resources).
	Namespace string

	// Operation describes what kind of change occurred.
	Operation ChangeOperation

	// Timestamp is when the change was detected.
	Timestamp time.Time

	// Source indicates where the change came from.
	Source ChangeSource
}

// ReconcileRequest represents a request to reconcile a specific resource.
type ReconcileRequest struct {
	// Type is the type of resource to reconcile.
	Type ResourceType

	// Name is the name of the resource.
	Name string

	// Namespace is the resource's namespace (empty for cluster-scoped resources).
	Namespace string

	// Attempt is the current retry attempt number (starts at 1).
	Attempt int

	// LastError is the error from the previous attempt, if any.
	LastError error
}

// ReconcileResult represents the outcome of a reconciliation attempt.
type ReconcileResult struct {
	// Requeue indicates the resource should be requeued immediately.
	Requeue bool

	// RequeueAfter specifies when to requeue (0 means no requeue unless
	// Requeue is set).
	RequeueAfter time.Duration

	// Error is any error that occurred during reconciliation. A non-nil
	// error always requeues with backoff.
	Error error
}

// Reconciler is the interface that per-kind reconcilers implement.
//
// Reconcile must be idempotent: the request names the resource but
// carries no state, and the reconciler re-reads the live object on every
// pass. Reconciling an already-converged resource is a no-op.
type Reconciler interface {
	// Reconcile processes a single reconciliation request.
	Reconcile(ctx context.Context, req ReconcileRequest) ReconcileResult

	// GetResourceType returns the type of resource this reconciler handles.
	GetResourceType() ResourceType
}

// ChangeDetector is the interface for components that detect resource changes.
type ChangeDetector interface {
	// Start begins watching for changes, sending events to the provided
	// channel.
	Start(ctx context.Context, changes chan<- ChangeEvent) error

	// Stop gracefully stops the change detector.
	Stop() error

	// GetSource returns the source type this detector monitors.
	GetSource() ChangeSource

	// AddResourceType adds a resource type to watch.
	AddResourceType(resourceType ResourceType) error
}

// ReconcileQueue represents a queue of resources awaiting reconciliation.
type ReconcileQueue interface {
	// Add adds a request to the queue. If the same resource is already
	// queued, the existing entry is updated in place.
	Add(req ReconcileRequest)

	// Get retrieves the next request from the queue, blocking until a
	// request is available or the context is cancelled.
	Get(ctx context.Context) (ReconcileRequest, bool)

	// Done marks a request as processed.
	Done(req ReconcileRequest)

	// Len returns the current queue length.
	Len() int

	// Shutdown signals the queue to stop accepting new items.
	Shutdown()
}

// ReconcileState describes where a resource sits in the reconciliation
// lifecycle, for status reporting.
type ReconcileState string

const (
	// StatePending means a change was detected and reconciliation is queued.
	StatePending ReconcileState = "Pending"

	// StateReconciling means reconciliation is in progress.
	StateReconciling ReconcileState = "Reconciling"

	// StateSynced means the last reconciliation succeeded.
	StateSynced ReconcileState = "Synced"

	// StateError means the last reconciliation failed and will be retried.
	StateError ReconcileState = "Error"

	// StateFailed means reconciliation exhausted its retries on a failure
	// that retrying cannot cure. A spec edit re-enqueues the resource.
	StateFailed ReconcileState = "Failed"
)

// ReconcileStatus tracks the reconciliation state of one resource.
type ReconcileStatus struct {
	ResourceType      ResourceType
	Name              string
	Namespace         string
	State             ReconcileState
	LastError         string
	LastReconcileTime *time.Time
	RetryCount        int
}

// ManagerConfig holds configuration for the reconciliation Manager.
type ManagerConfig struct {
	// Namespace restricts watching to one namespace. Empty watches all
	// namespaces; cluster-scoped resources are watched regardless.
	Namespace string

	// WorkerCount is the number of concurrent reconciliation workers.
	// Defaults to 2 if not specified.
	WorkerCount int

	// MaxRetries is the number of attempts after which a failure that
	// retrying cannot cure is parked in the Failed state. Transient
	// failures keep retrying at MaxBackoff beyond it. Defaults to 10 if
	// not specified.
	MaxRetries int

	// ErrorBackoff is the backoff after the first failed attempt; later
	// attempts back off exponentially. Defaults to 1 minute.
	ErrorBackoff time.Duration

	// MaxBackoff caps the exponential backoff. Defaults to 5 minutes.
	MaxBackoff time.Duration

	// ResyncInterval is the periodic requeue delay after a successful
	// reconciliation. Defaults to 2 minutes.
	ResyncInterval time.Duration

	// ReconcileTimeout bounds a single reconciliation pass. Defaults to
	// 30 seconds.
	ReconcileTimeout time.Duration
}
