package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"k8s.io/client-go/rest"

	"composer/internal/workflow"
	"composer/pkg/logging"
)

// Manager coordinates all reconciliation activities.
//
// It manages:
//   - The change detector feeding resource events
//   - Resource-specific reconcilers
//   - The work queue and worker pool
//   - Retry logic with exponential backoff and periodic resync
type Manager struct {
	mu sync.RWMutex

	config ManagerConfig

	// restConfig is used to build the change detector when none is injected
	restConfig *rest.Config

	// changeDetector detects resource changes
	changeDetector ChangeDetector

	// reconcilers maps resource types to their reconcilers
	reconcilers map[ResourceType]Reconciler

	// queue is the work queue for reconciliation requests
	queue *delayedQueue

	// statusTracker tracks reconciliation status for each resource
	statusTracker map[string]*ReconcileStatus

	// metrics tracks reconciliation counters
	metrics *Metrics

	// changeChan receives change events from the detector
	changeChan chan ChangeEvent

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	running    bool
}

// NewManager creates a new reconciliation manager.
func NewManager(config ManagerConfig, restConfig *rest.Config) *Manager {
	// Apply defaults
	if config.WorkerCount == 0 {
		config.WorkerCount = 2
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 10
	}
	if config.ErrorBackoff == 0 {
		config.ErrorBackoff = time.Minute
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 5 * time.Minute
	}
	if config.ResyncInterval == 0 {
		config.ResyncInterval = 2 * time.Minute
	}
	if config.ReconcileTimeout == 0 {
		config.ReconcileTimeout = 30 * time.Second
	}

	return &Manager{
		config:        config,
		restConfig:    restConfig,
		reconcilers:   make(map[ResourceType]Reconciler),
		queue:         NewDelayedQueue(),
		statusTracker: make(map[string]*ReconcileStatus),
		metrics:       NewMetrics(),
		changeChan:    make(chan ChangeEvent, 100),
	}
}

// SetChangeDetector injects a change detector, replacing the default
// Kubernetes detector. Must be called before Start.
func (m *Manager) SetChangeDetector(detector ChangeDetector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changeDetector = detector
}

// RegisterReconciler registers a reconciler for a specific resource type.
func (m *Manager) RegisterReconciler(reconciler Reconciler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resourceType := reconciler.GetResourceType()
	if _, exists := m.reconcilers[resourceType]; exists {
		return fmt.Errorf("reconciler for %s already registered", resourceType)
	}

	m.reconcilers[resourceType] = reconciler
	logging.Info("ReconcileManager", "Registered reconciler for %s", resourceType)

	if m.changeDetector != nil {
		if err := m.changeDetector.AddResourceType(resourceType); err != nil {
			logging.Warn("ReconcileManager", "Failed to add watch for %s: %v", resourceType, err)
		}
	}

	return nil
}

// Start begins the reconciliation system.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}

	m.ctx, m.cancelFunc = context.WithCancel(ctx)
	m.running = true

	if m.changeDetector == nil {
		detector, err := NewKubernetesDetector(m.restConfig, m.config.Namespace)
		if err != nil {
			m.running = false
			m.mu.Unlock()
			return fmt.Errorf("failed to create change detector: %w", err)
		}
		m.changeDetector = detector
	}

	// Add all registered resource types to the detector
	for resourceType := range m.reconcilers {
		if err := m.changeDetector.AddResourceType(resourceType); err != nil {
			logging.Warn("ReconcileManager", "Failed to add watch for %s: %v", resourceType, err)
		}
	}

	m.mu.Unlock()

	// Start change detector
	if err := m.changeDetector.Start(m.ctx, m.changeChan); err != nil {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		return fmt.Errorf("failed to start change detector: %w", err)
	}

	// Start event processor
	m.wg.Add(1)
	go m.processChangeEvents()

	// Start workers
	for i := 0; i < m.config.WorkerCount; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	logging.Info("ReconcileManager", "Started with %d workers", m.config.WorkerCount)
	return nil
}

// processChangeEvents converts change events to reconcile requests.
func (m *Manager) processChangeEvents() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return

		case event, ok := <-m.changeChan:
			if !ok {
				return
			}
			m.handleChangeEvent(event)
		}
	}
}

// handleChangeEvent processes a single change event.
func (m *Manager) handleChangeEvent(event ChangeEvent) {
	logging.Debug("ReconcileManager", "Handling change event: %s %s/%s",
		event.Operation, event.Type, event.Name)

	m.updateStatus(event.Type, event.Name, event.Namespace, StatePending, "")

	// Deletes still enqueue: the reconciler observes the absence (or the
	// deletion timestamp) and runs cleanup.
	m.queue.Add(ReconcileRequest{
		Type:      event.Type,
		Name:      event.Name,
		Namespace: event.Namespace,
		Attempt:   1,
	})
}

// worker processes reconciliation requests from the queue.
func (m *Manager) worker(id int) {
	defer m.wg.Done()

	logging.Debug("ReconcileManager", "Worker %d started", id)

	for {
		req, ok := m.queue.Get(m.ctx)
		if !ok {
			logging.Debug("ReconcileManager", "Worker %d shutting down", id)
			return
		}

		m.processRequest(req)
		m.queue.Done(req)
	}
}

// processRequest handles a single reconciliation request.
func (m *Manager) processRequest(req ReconcileRequest) {
	m.mu.RLock()
	reconciler, ok := m.reconcilers[req.Type]
	timeout := m.config.ReconcileTimeout
	m.mu.RUnlock()

	if !ok {
		logging.Warn("ReconcileManager", "No reconciler for resource type: %s", req.Type)
		return
	}

	m.updateStatus(req.Type, req.Name, req.Namespace, StateReconciling, "")
	m.metrics.RecordAttempt(req.Type)

	logging.Debug("ReconcileManager", "Reconciling %s/%s (attempt %d)",
		req.Type, req.Name, req.Attempt)

	// A timeout prevents a hung reconciler from blocking its worker
	ctx, cancel := context.WithTimeout(m.ctx, timeout)
	defer cancel()

	result := reconciler.Reconcile(ctx, req)

	if ctx.Err() == context.DeadlineExceeded {
		result.Error = fmt.Errorf("reconciliation timed out after %v", timeout)
		result.Requeue = true
	}

	switch {
	case result.Error != nil:
		m.handleReconcileError(req, result)
	case result.Requeue || result.RequeueAfter > 0:
		m.handleRequeue(req, result)
		m.metrics.RecordSuccess(req.Type)
		m.updateStatus(req.Type, req.Name, req.Namespace, StateSynced, "")
	default:
		m.metrics.RecordSuccess(req.Type)
		m.handleSuccess(req)
	}
}

// handleReconcileError handles a failed reconciliation.
//
// Transient failures are retried forever: once the retry budget is
// spent they keep requeueing at the backoff ceiling, because a store or
// registry outage can outlast any fixed number of attempts. Only
// failures retrying cannot cure park the resource in the Failed state;
// the spec edit that cures them re-enqueues it through the watch.
func (m *Manager) handleReconcileError(req ReconcileRequest, result ReconcileResult) {
	logging.Warn("ReconcileManager", "Reconciliation failed for %s/%s: %v",
		req.Type, req.Name, result.Error)

	m.metrics.RecordFailure(req.Type)

	if req.Attempt >= m.config.MaxRetries && terminalError(result.Error) {
		logging.Error("ReconcileManager", result.Error,
			"Max retries exceeded for %s/%s", req.Type, req.Name)
		m.updateStatus(req.Type, req.Name, req.Namespace, StateFailed, result.Error.Error())
		return
	}

	m.updateStatus(req.Type, req.Name, req.Namespace, StateError, result.Error.Error())

	backoff := m.calculateBackoff(req.Attempt)

	req.Attempt++
	req.LastError = result.Error
	m.queue.AddAfter(req, backoff)

	logging.Debug("ReconcileManager", "Requeuing %s/%s after %v (attempt %d)",
		req.Type, req.Name, backoff, req.Attempt)
}

// terminalError reports whether another attempt can never cure the
// failure: malformed resource construction and unmet spec preconditions
// need a spec edit, not a retry. Everything else, unclassified errors
// included, is treated as transient.
func terminalError(err error) bool {
	var serialization *workflow.SerializationError
	var precondition *workflow.PreconditionError
	return errors.As(err, &serialization) || errors.As(err, &precondition)
}

// handleRequeue handles a successful reconciliation that needs requeueing.
func (m *Manager) handleRequeue(req ReconcileRequest, result ReconcileResult) {
	req.Attempt = 1
	req.LastError = nil

	if result.Requeue {
		m.queue.Add(req)
		logging.Debug("ReconcileManager", "Requeuing %s/%s immediately", req.Type, req.Name)
		return
	}

	m.queue.AddAfter(req, result.RequeueAfter)
	logging.Debug("ReconcileManager", "Requeuing %s/%s after %v",
		req.Type, req.Name, result.RequeueAfter)
}

// handleSuccess handles a successful reconciliation.
func (m *Manager) handleSuccess(req ReconcileRequest) {
	logging.Debug("ReconcileManager", "Successfully reconciled %s/%s", req.Type, req.Name)
	m.updateStatus(req.Type, req.Name, req.Namespace, StateSynced, "")
}

// calculateBackoff computes exponential backoff: errorBackoff * 2^(attempt-1),
// capped at maxBackoff. Attempts keep counting past the retry budget, so
// large attempt numbers must not overflow the shift.
func (m *Manager) calculateBackoff(attempt int) time.Duration {
	if attempt > 16 {
		return m.config.MaxBackoff
	}

	backoff := m.config.ErrorBackoff * time.Duration(1<<uint(attempt-1))

	if backoff > m.config.MaxBackoff || backoff <= 0 {
		backoff = m.config.MaxBackoff
	}

	return backoff
}

// updateStatus updates the reconciliation status for a resource.
func (m *Manager) updateStatus(resourceType ResourceType, name, namespace string, state ReconcileState, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := statusKey(resourceType, name, namespace)
	status, ok := m.statusTracker[key]
	if !ok {
		status = &ReconcileStatus{
			ResourceType: resourceType,
			Name:         name,
			Namespace:    namespace,
		}
		m.statusTracker[key] = status
	}

	status.State = state
	status.LastError = errMsg

	switch state {
	case StateSynced:
		now := time.Now()
		status.LastReconcileTime = &now
		status.RetryCount = 0
	case StateError:
		status.RetryCount++
	}
}

// statusKey generates a unique key for status tracking.
func statusKey(resourceType ResourceType, name, namespace string) string {
	if namespace != "" {
		return string(resourceType) + "/" + namespace + "/" + name
	}
	return string(resourceType) + "/" + name
}

// Stop gracefully shuts down the reconciliation manager.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.mu.Unlock()

	logging.Info("ReconcileManager", "Stopping reconciliation manager...")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.changeDetector != nil {
		if err := m.changeDetector.Stop(); err != nil {
			logging.Error("ReconcileManager", err, "Error stopping change detector")
		}
	}

	m.queue.Shutdown()

	m.wg.Wait()

	logging.Info("ReconcileManager", "Reconciliation manager stopped")
	return nil
}

// GetStatus returns the reconciliation status for a resource.
func (m *Manager) GetStatus(resourceType ResourceType, name, namespace string) (*ReconcileStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := statusKey(resourceType, name, namespace)
	status, ok := m.statusTracker[key]
	return status, ok
}

// GetAllStatuses returns all reconciliation statuses.
func (m *Manager) GetAllStatuses() []ReconcileStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]ReconcileStatus, 0, len(m.statusTracker))
	for _, status := range m.statusTracker {
		statuses = append(statuses, *status)
	}
	return statuses
}

// Metrics returns the manager's metrics collector.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// TriggerReconcile manually triggers reconciliation for a resource.
func (m *Manager) TriggerReconcile(resourceType ResourceType, name, namespace string) {
	m.handleChangeEvent(ChangeEvent{
		Type:      resourceType,
		Name:      name,
		Namespace: namespace,
		Operation: OperationUpdate,
		Timestamp: time.Now(),
		Source:    SourceManual,
	})
}

// IsRunning returns whether the manager is running.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// GetQueueLength returns the current queue length.
func (m *Manager) GetQueueLength() int {
	return m.queue.Len()
}
