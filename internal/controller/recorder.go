package controller

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	"sigs.k8s.io/controller-runtime/pkg/client"

	composerclient "composer/internal/client"
	"composer/pkg/logging"
)

// eventRecorder adapts a client-go event recorder to the workflow's
// Recorder interface. All events are Normal type; failures surface as
// errors on the reconcile pass, not as events.
type eventRecorder struct {
	recorder record.EventRecorder
}

// NewEventRecorder wraps a client-go EventRecorder.
func NewEventRecorder(recorder record.EventRecorder) *eventRecorder {
	return &eventRecorder{recorder: recorder}
}

func (r *eventRecorder) Record(object runtime.Object, reason, message string) {
	if r.recorder == nil {
		return
	}
	r.recorder.Event(object, corev1.EventTypeNormal, reason, message)
}

// clientRecorder records events through the typed client's event path.
// Event emission is best effort: a failed write is logged and dropped.
type clientRecorder struct {
	client composerclient.ComposerClient
}

// NewClientRecorder builds a recorder on top of the typed client.
func NewClientRecorder(c composerclient.ComposerClient) *clientRecorder {
	return &clientRecorder{client: c}
}

func (r *clientRecorder) Record(object runtime.Object, reason, message string) {
	obj, ok := object.(client.Object)
	if !ok {
		return
	}
	if err := r.client.CreateEvent(context.Background(), obj, reason, message, corev1.EventTypeNormal); err != nil {
		logging.Warn("EventRecorder", "Failed to record event %s for %s: %v", reason, obj.GetName(), err)
	}
}
