package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// PlaybookSpec defines the desired state of Playbook
type PlaybookSpec struct {
	// Title is a short human-readable title for this playbook.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MaxLength=200
	Title string `json:"title" yaml:"title"`

	// Description provides a human-readable description of the playbook's purpose.
	// +kubebuilder:validation:MaxLength=500
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Namespace is the dedicated namespace in which all of this playbook's
	// sub-resources (secrets, build jobs, actors) are created. It is derived
	// deterministically from the playbook's identifier at creation time and
	// is immutable afterwards.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:XValidation:rule="self == oldSelf",message="namespace is immutable"
	Namespace string `json:"namespace" yaml:"namespace"`

	// Actors is the ordered list of actor specs belonging to this playbook.
	// The list only grows (or is replaced wholesale) through the
	// synchronizer's patch path; it is never mutated in place.
	// +kubebuilder:validation:MinItems=1
	Actors []ActorSpec `json:"actors" yaml:"actors"`

	// Sync optionally configures live source synchronization for actors
	// running with live=true.
	Sync *SyncSpec `json:"sync,omitempty" yaml:"sync,omitempty"`
}

// SyncSpec configures live source synchronization.
type SyncSpec struct {
	// Interval is the polling interval for live source changes, expressed
	// as a Go duration string (e.g. "30s").
	// +kubebuilder:default="30s"
	Interval string `json:"interval,omitempty" yaml:"interval,omitempty"`
}

// PlaybookState represents the lifecycle state of a Playbook.
// +kubebuilder:validation:Enum=Pending;Solving;Running
type PlaybookState string

const (
	// PlaybookPending indicates the playbook was created but its namespace
	// and credentials have not been provisioned yet.
	PlaybookPending PlaybookState = "Pending"

	// PlaybookSolving indicates the dependency closure is being computed:
	// partner references are being resolved into new actor specs.
	PlaybookSolving PlaybookState = "Solving"

	// PlaybookRunning indicates the closure is complete and all actors are
	// being driven toward their running state.
	PlaybookRunning PlaybookState = "Running"
)

// PlaybookStatus defines the observed state of Playbook.
//
// Status is the only externally visible representation of lifecycle; no
// hidden internal state duplicates it.
type PlaybookStatus struct {
	// State represents the current lifecycle state of the playbook.
	State PlaybookState `json:"state,omitempty" yaml:"state,omitempty"`

	// Ready indicates whether the playbook has reached its desired state.
	Ready bool `json:"ready,omitempty" yaml:"ready,omitempty"`

	// Reason is a machine-readable, one-word reason for the current state.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Message is an optional human-readable message with details.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Pending reports whether the playbook is in the Pending state.
func (s *PlaybookStatus) Pending() bool { return s.State == PlaybookPending }

// Solving reports whether the playbook is in the Solving state.
func (s *PlaybookStatus) Solving() bool { return s.State == PlaybookSolving }

// Running reports whether the playbook is in the Running state.
func (s *PlaybookStatus) Running() bool { return s.State == PlaybookRunning }

// Empty reports whether the status has never been initialized. A freshly
// created playbook has an empty status until the controller patches it to
// Pending on the first reconciliation.
func (s *PlaybookStatus) Empty() bool { return s.State == "" }

// PendingState returns a status record for the Pending state.
func PendingState() PlaybookStatus {
	return PlaybookStatus{State: PlaybookPending, Ready: false, Reason: "Created"}
}

// SolvingState returns a status record for the Solving state.
func SolvingState() PlaybookStatus {
	return PlaybookStatus{State: PlaybookSolving, Ready: false, Reason: "Initialized"}
}

// RunningState returns a status record for the Running state.
func RunningState(ready bool, reason, message string) PlaybookStatus {
	return PlaybookStatus{State: PlaybookRunning, Ready: ready, Reason: reason, Message: message}
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Cluster,shortName=pb
// +kubebuilder:printcolumn:name="Title",type="string",JSONPath=".spec.title"
// +kubebuilder:printcolumn:name="Namespace",type="string",JSONPath=".spec.namespace"
// +kubebuilder:printcolumn:name="State",type="string",JSONPath=".status.state"
// +kubebuilder:printcolumn:name="Ready",type="boolean",JSONPath=".status.ready"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// Playbook is the Schema for the playbooks API
type Playbook struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   PlaybookSpec   `json:"spec,omitempty"`
	Status PlaybookStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// PlaybookList contains a list of Playbook
type PlaybookList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Playbook `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Playbook{}, &PlaybookList{})
}
