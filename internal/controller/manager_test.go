package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"composer/internal/workflow"
)

// fakeDetector feeds change events from a channel owned by the test.
type fakeDetector struct {
	mu      sync.Mutex
	out     chan<- ChangeEvent
	types   map[ResourceType]bool
	stopped bool
}

func newFakeDetector() *fakeDetector {
	return &fakeDetector{types: make(map[ResourceType]bool)}
}

func (d *fakeDetector) Start(ctx context.Context, changes chan<- ChangeEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out = changes
	return nil
}

func (d *fakeDetector) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	return nil
}

func (d *fakeDetector) GetSource() ChangeSource { return SourceKubernetes }

func (d *fakeDetector) AddResourceType(rt ResourceType) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.types[rt] = true
	return nil
}

func (d *fakeDetector) emit(event ChangeEvent) {
	d.mu.Lock()
	out := d.out
	d.mu.Unlock()
	out <- event
}

// fakeReconciler records requests and returns canned results.
type fakeReconciler struct {
	mu       sync.Mutex
	typ      ResourceType
	requests []ReconcileRequest
	results  []ReconcileResult
	notify   chan struct{}
}

func newFakeReconciler(typ ResourceType, results ...ReconcileResult) *fakeReconciler {
	return &fakeReconciler{
		typ:     typ,
		results: results,
		notify:  make(chan struct{}, 16),
	}
}

func (r *fakeReconciler) Reconcile(ctx context.Context, req ReconcileRequest) ReconcileResult {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	var result ReconcileResult
	if len(r.results) > 0 {
		result = r.results[0]
		if len(r.results) > 1 {
			r.results = r.results[1:]
		}
	}
	r.mu.Unlock()

	r.notify <- struct{}{}
	return result
}

func (r *fakeReconciler) GetResourceType() ResourceType { return r.typ }

func (r *fakeReconciler) requestCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func waitForReconcile(t *testing.T, r *fakeReconciler) ReconcileRequest {
	t.Helper()
	select {
	case <-r.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reconcile")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func startTestManager(t *testing.T, reconcilers ...Reconciler) (*Manager, *fakeDetector) {
	t.Helper()
	return startTestManagerWithConfig(t, ManagerConfig{
		WorkerCount:      1,
		ErrorBackoff:     10 * time.Millisecond,
		MaxBackoff:       50 * time.Millisecond,
		ResyncInterval:   time.Hour,
		ReconcileTimeout: time.Second,
	}, reconcilers...)
}

func startTestManagerWithConfig(t *testing.T, cfg ManagerConfig, reconcilers ...Reconciler) (*Manager, *fakeDetector) {
	t.Helper()

	detector := newFakeDetector()
	m := NewManager(cfg, nil)
	m.SetChangeDetector(detector)

	for _, r := range reconcilers {
		if err := m.RegisterReconciler(r); err != nil {
			t.Fatalf("failed to register reconciler: %v", err)
		}
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("failed to start manager: %v", err)
	}
	t.Cleanup(func() { _ = m.Stop() })

	return m, detector
}

func TestManager_DispatchesChangeEvents(t *testing.T) {
	reconciler := newFakeReconciler(ResourceTypePlaybook)
	_, detector := startTestManager(t, reconciler)

	detector.emit(ChangeEvent{
		Type:      ResourceTypePlaybook,
		Name:      "demo",
		Operation: OperationCreate,
		Timestamp: time.Now(),
		Source:    SourceKubernetes,
	})

	req := waitForReconcile(t, reconciler)
	if req.Name != "demo" || req.Type != ResourceTypePlaybook {
		t.Errorf("got unexpected request: %+v", req)
	}
	if req.Attempt != 1 {
		t.Errorf("expected first attempt, got %d", req.Attempt)
	}
}

func TestManager_RetriesWithBackoffOnError(t *testing.T) {
	reconciler := newFakeReconciler(ResourceTypeActor,
		ReconcileResult{Error: context.DeadlineExceeded},
		ReconcileResult{},
	)
	m, detector := startTestManager(t, reconciler)

	detector.emit(ChangeEvent{
		Type:      ResourceTypeActor,
		Name:      "web",
		Namespace: "composer-x",
		Operation: OperationUpdate,
		Timestamp: time.Now(),
		Source:    SourceKubernetes,
	})

	waitForReconcile(t, reconciler)
	second := waitForReconcile(t, reconciler)

	if second.Attempt != 2 {
		t.Errorf("expected retry attempt 2, got %d", second.Attempt)
	}
	if second.LastError == nil {
		t.Error("expected retry to carry the previous error")
	}

	// After the successful second pass the status settles on Synced.
	deadline := time.After(2 * time.Second)
	for {
		status, ok := m.GetStatus(ResourceTypeActor, "web", "composer-x")
		if ok && status.State == StateSynced {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("status never reached Synced: %+v", status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestManager_TransientErrorsOutlastRetryBudget(t *testing.T) {
	reconciler := newFakeReconciler(ResourceTypeActor,
		ReconcileResult{Error: &workflow.StoreError{Err: errors.New("store down")}},
	)
	m, detector := startTestManagerWithConfig(t, ManagerConfig{
		WorkerCount:      1,
		MaxRetries:       2,
		ErrorBackoff:     10 * time.Millisecond,
		MaxBackoff:       20 * time.Millisecond,
		ResyncInterval:   time.Hour,
		ReconcileTimeout: time.Second,
	}, reconciler)

	detector.emit(ChangeEvent{
		Type:      ResourceTypeActor,
		Name:      "web",
		Namespace: "composer-x",
		Operation: OperationUpdate,
		Timestamp: time.Now(),
		Source:    SourceKubernetes,
	})

	// A store outage must keep retrying past the retry budget instead of
	// parking the actor as Failed.
	var last ReconcileRequest
	for i := 0; i < 4; i++ {
		last = waitForReconcile(t, reconciler)
	}
	if last.Attempt <= 2 {
		t.Errorf("expected attempts beyond the retry budget, got %d", last.Attempt)
	}

	status, ok := m.GetStatus(ResourceTypeActor, "web", "composer-x")
	if !ok {
		t.Fatal("no status tracked for the actor")
	}
	if status.State == StateFailed {
		t.Errorf("transient errors must never park the resource as Failed: %+v", status)
	}
}

func TestManager_TerminalErrorParksAsFailed(t *testing.T) {
	reconciler := newFakeReconciler(ResourceTypePlaybook,
		ReconcileResult{Error: &workflow.PreconditionError{Reason: "playbook demo has no actors"}},
	)
	m, detector := startTestManagerWithConfig(t, ManagerConfig{
		WorkerCount:      1,
		MaxRetries:       1,
		ErrorBackoff:     10 * time.Millisecond,
		MaxBackoff:       20 * time.Millisecond,
		ResyncInterval:   time.Hour,
		ReconcileTimeout: time.Second,
	}, reconciler)

	detector.emit(ChangeEvent{
		Type:      ResourceTypePlaybook,
		Name:      "demo",
		Operation: OperationCreate,
		Timestamp: time.Now(),
		Source:    SourceKubernetes,
	})

	waitForReconcile(t, reconciler)

	deadline := time.After(2 * time.Second)
	for {
		status, ok := m.GetStatus(ResourceTypePlaybook, "demo", "")
		if ok && status.State == StateFailed {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("status never reached Failed: %+v", status)
		case <-time.After(10 * time.Millisecond):
		}
	}

	// No further attempts are scheduled; only a new watch event would
	// re-enqueue the playbook.
	time.Sleep(100 * time.Millisecond)
	if got := reconciler.requestCount(); got != 1 {
		t.Errorf("expected exactly one attempt, got %d", got)
	}
}

func TestManager_RequeueAfterSchedulesResync(t *testing.T) {
	reconciler := newFakeReconciler(ResourceTypePlaybook,
		ReconcileResult{RequeueAfter: 20 * time.Millisecond},
		ReconcileResult{},
	)
	_, detector := startTestManager(t, reconciler)

	detector.emit(ChangeEvent{
		Type:      ResourceTypePlaybook,
		Name:      "resync",
		Operation: OperationUpdate,
		Timestamp: time.Now(),
		Source:    SourceKubernetes,
	})

	waitForReconcile(t, reconciler)
	waitForReconcile(t, reconciler)

	if reconciler.requestCount() < 2 {
		t.Errorf("expected a resync pass, got %d requests", reconciler.requestCount())
	}
}

func TestManager_TriggerReconcile(t *testing.T) {
	reconciler := newFakeReconciler(ResourceTypePlaybook)
	m, _ := startTestManager(t, reconciler)

	m.TriggerReconcile(ResourceTypePlaybook, "manual", "")

	req := waitForReconcile(t, reconciler)
	if req.Name != "manual" {
		t.Errorf("got unexpected request: %+v", req)
	}
}

func TestManager_RegisterReconcilerTwiceFails(t *testing.T) {
	m := NewManager(ManagerConfig{}, nil)

	if err := m.RegisterReconciler(newFakeReconciler(ResourceTypePlaybook)); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := m.RegisterReconciler(newFakeReconciler(ResourceTypePlaybook)); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestManager_MetricsCountOutcomes(t *testing.T) {
	reconciler := newFakeReconciler(ResourceTypeActor,
		ReconcileResult{Error: context.DeadlineExceeded},
		ReconcileResult{},
	)
	m, detector := startTestManager(t, reconciler)

	detector.emit(ChangeEvent{
		Type:      ResourceTypeActor,
		Name:      "metrics",
		Namespace: "composer-x",
		Operation: OperationCreate,
		Timestamp: time.Now(),
		Source:    SourceKubernetes,
	})

	waitForReconcile(t, reconciler)
	waitForReconcile(t, reconciler)

	deadline := time.After(2 * time.Second)
	for {
		summary := m.Metrics().Summary()
		if summary.TotalAttempts >= 2 && summary.TotalFailures >= 1 && summary.TotalSuccesses >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("metrics never settled: %+v", summary)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
