package controller

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestWorkQueue_AddAndGet(t *testing.T) {
	q := NewQueue()

	req := ReconcileRequest{
		Type:    ResourceTypePlaybook,
		Name:    "test-playbook",
		Attempt: 1,
	}

	q.Add(req)

	if q.Len() != 1 {
		t.Errorf("expected queue length 1, got %d", q.Len())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, ok := q.Get(ctx)
	if !ok {
		t.Fatal("expected to get item from queue")
	}

	if got.Name != req.Name || got.Type != req.Type {
		t.Errorf("got unexpected request: %+v", got)
	}

	q.Done(got)
}

func TestWorkQueue_Deduplication(t *testing.T) {
	q := NewQueue()

	req1 := ReconcileRequest{
		Type:    ResourceTypePlaybook,
		Name:    "test-playbook",
		Attempt: 1,
	}

	req2 := ReconcileRequest{
		Type:    ResourceTypePlaybook,
		Name:    "test-playbook",
		Attempt: 2, // Updated attempt
	}

	q.Add(req1)
	q.Add(req2)

	// Should only have one item (deduplicated by key)
	if q.Len() != 1 {
		t.Errorf("expected queue length 1 after deduplication, got %d", q.Len())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, ok := q.Get(ctx)
	if !ok {
		t.Fatal("expected to get item from queue")
	}

	if got.Attempt != 2 {
		t.Errorf("expected attempt 2, got %d", got.Attempt)
	}

	q.Done(got)
}

func TestWorkQueue_DirtyRequeue(t *testing.T) {
	q := NewQueue()

	req := ReconcileRequest{
		Type:    ResourceTypeActor,
		Name:    "test-actor",
		Attempt: 1,
	}

	q.Add(req)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, ok := q.Get(ctx)
	if !ok {
		t.Fatal("expected to get item from queue")
	}

	// While processing, add the same key again: it must be marked dirty
	// and come back after Done, not run concurrently.
	q.Add(req)

	if q.Len() != 0 {
		t.Errorf("expected in-flight duplicate to be held back, queue length %d", q.Len())
	}

	q.Done(got)

	if q.Len() != 1 {
		t.Errorf("expected dirty request requeued after Done, queue length %d", q.Len())
	}
}

func TestWorkQueue_NamespacedKeys(t *testing.T) {
	q := NewQueue()

	q.Add(ReconcileRequest{Type: ResourceTypeActor, Namespace: "ns-a", Name: "web", Attempt: 1})
	q.Add(ReconcileRequest{Type: ResourceTypeActor, Namespace: "ns-b", Name: "web", Attempt: 1})

	// Same name, different namespace: two distinct keys.
	if q.Len() != 2 {
		t.Errorf("expected 2 items, got %d", q.Len())
	}
}

func TestWorkQueue_GetBlocksUntilAdd(t *testing.T) {
	q := NewQueue()

	var wg sync.WaitGroup
	wg.Add(1)

	var got ReconcileRequest
	var ok bool

	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		got, ok = q.Get(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	q.Add(ReconcileRequest{Type: ResourceTypePlaybook, Name: "late", Attempt: 1})

	wg.Wait()

	if !ok {
		t.Fatal("expected blocked Get to return the added item")
	}
	if got.Name != "late" {
		t.Errorf("got unexpected request: %+v", got)
	}
}

func TestWorkQueue_ShutdownUnblocksGet(t *testing.T) {
	q := NewQueue()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, ok := q.Get(context.Background())
		if ok {
			t.Error("expected Get to report shutdown")
		}
	}()

	time.Sleep(50 * time.Millisecond)
	q.Shutdown()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Get did not return after Shutdown")
	}
}

func TestDelayedQueue_AddAfter(t *testing.T) {
	q := NewDelayedQueue()
	defer q.Shutdown()

	req := ReconcileRequest{Type: ResourceTypePlaybook, Name: "delayed", Attempt: 1}
	q.AddAfter(req, 50*time.Millisecond)

	if q.Len() != 0 {
		t.Errorf("expected empty queue before the delay elapses, got %d", q.Len())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, ok := q.Get(ctx)
	if !ok {
		t.Fatal("expected delayed item to arrive")
	}
	if got.Name != "delayed" {
		t.Errorf("got unexpected request: %+v", got)
	}
	q.Done(got)
}

func TestDelayedQueue_AddAfterReplacesPendingTimer(t *testing.T) {
	q := NewDelayedQueue()
	defer q.Shutdown()

	req := ReconcileRequest{Type: ResourceTypePlaybook, Name: "resync", Attempt: 1}
	q.AddAfter(req, time.Hour)

	// The second AddAfter for the same key must replace the first timer.
	q.AddAfter(req, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, ok := q.Get(ctx); !ok {
		t.Fatal("expected replacement timer to fire")
	}
}

func TestCalculateBackoff(t *testing.T) {
	m := NewManager(ManagerConfig{
		ErrorBackoff: time.Minute,
		MaxBackoff:   5 * time.Minute,
	}, nil)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 5 * time.Minute}, // capped
		{10, 5 * time.Minute},
	}

	for _, tt := range tests {
		if got := m.calculateBackoff(tt.attempt); got != tt.want {
			t.Errorf("calculateBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
