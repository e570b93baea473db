package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Partner is a dependency edge from one actor to another actor that may not
// be part of the playbook yet. Two partners are equal iff their resolved URL
// (repository + reference + path) is equal. Partners exist only during
// dependency-closure computation; they are not persisted independently.
type Partner struct {
	// Name is the logical name of the dependency.
	// +kubebuilder:validation:Required
	Name string `json:"name" yaml:"name"`

	// Repository is the source repository URL of the dependency.
	// +kubebuilder:validation:Required
	Repository string `json:"repository" yaml:"repository"`

	// Reference is the branch, tag or revision to resolve.
	// +kubebuilder:default="main"
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`

	// Path is the subpath within the repository.
	// +kubebuilder:default="."
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// URL returns the normalized identity of the partner. Membership in the
// dependency closure is decided by this value alone.
func (p Partner) URL() string {
	return p.Repository + "#" + p.Reference + ":" + p.Path
}

// ActorSpec defines one buildable and deployable unit.
type ActorSpec struct {
	// Name is the actor's name, unique within its owning playbook.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:Pattern="^[a-z0-9]([-a-z0-9]*[a-z0-9])?$"
	Name string `json:"name" yaml:"name"`

	// Description provides a human-readable description of the actor.
	// +kubebuilder:validation:MaxLength=500
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Image is the image reference (without registry host) that builds of
	// this actor are tagged with and deployments run from.
	// +kubebuilder:validation:Required
	Image string `json:"image" yaml:"image"`

	// Repository is the source repository URL.
	// +kubebuilder:validation:Required
	Repository string `json:"repository" yaml:"repository"`

	// Reference is the branch, tag or revision to build from.
	// +kubebuilder:default="main"
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`

	// Commit is the resolved commit the actor is pinned to.
	Commit string `json:"commit,omitempty" yaml:"commit,omitempty"`

	// Path is the subpath within the repository.
	// +kubebuilder:default="."
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Live skips the registry cache: an actor with live=true always
	// rebuilds and deploys from live source regardless of whether the
	// image already exists in the registry.
	// +kubebuilder:default=false
	Live bool `json:"live,omitempty" yaml:"live,omitempty"`

	// Partners is the ordered set of dependency references declared by
	// this actor.
	Partners []Partner `json:"partners,omitempty" yaml:"partners,omitempty"`
}

// URL returns the normalized identity of the actor's source, comparable
// with Partner.URL during dependency-closure computation.
func (s ActorSpec) URL() string {
	return s.Repository + "#" + s.Reference + ":" + s.Path
}

// ActorState represents the lifecycle state of an Actor.
// +kubebuilder:validation:Enum=Pending;Building;Deploying;Running
type ActorState string

const (
	// ActorPending indicates the actor was created but the build decision
	// has not been made yet.
	ActorPending ActorState = "Pending"

	// ActorBuilding indicates a build job or image resource is in flight.
	ActorBuilding ActorState = "Building"

	// ActorDeploying indicates the built (or cached) image is being rolled
	// out.
	ActorDeploying ActorState = "Deploying"

	// ActorRunning indicates the actor's workload is up. Running is
	// re-enterable: a spec change moves the actor back through the
	// pipeline.
	ActorRunning ActorState = "Running"
)

// ActorStatus defines the observed state of Actor.
type ActorStatus struct {
	// State represents the current lifecycle state of the actor.
	State ActorState `json:"state,omitempty" yaml:"state,omitempty"`

	// Ready indicates whether the actor has reached its desired state.
	Ready bool `json:"ready,omitempty" yaml:"ready,omitempty"`

	// Reason is a machine-readable, one-word reason for the current state.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Message is an optional human-readable message with details.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Pending reports whether the actor is in the Pending state.
func (s *ActorStatus) Pending() bool { return s.State == ActorPending }

// Building reports whether the actor is in the Building state.
func (s *ActorStatus) Building() bool { return s.State == ActorBuilding }

// Deploying reports whether the actor is in the Deploying state.
func (s *ActorStatus) Deploying() bool { return s.State == ActorDeploying }

// Running reports whether the actor is in the Running state.
func (s *ActorStatus) Running() bool { return s.State == ActorRunning }

// Empty reports whether the status has never been initialized.
func (s *ActorStatus) Empty() bool { return s.State == "" }

// ActorPendingState returns a status record for the Pending state.
func ActorPendingState() ActorStatus {
	return ActorStatus{State: ActorPending, Ready: false, Reason: "Created"}
}

// ActorBuildingState returns a status record for the Building state.
func ActorBuildingState() ActorStatus {
	return ActorStatus{State: ActorBuilding, Ready: false, Reason: "BuildRequired"}
}

// ActorDeployingState returns a status record for the Deploying state.
func ActorDeployingState() ActorStatus {
	return ActorStatus{State: ActorDeploying, Ready: false, Reason: "ImageReady"}
}

// ActorRunningState returns a status record for the Running state.
func ActorRunningState(ready bool, reason, message string) ActorStatus {
	return ActorStatus{State: ActorRunning, Ready: ready, Reason: reason, Message: message}
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Image",type="string",JSONPath=".spec.image"
// +kubebuilder:printcolumn:name="Live",type="boolean",JSONPath=".spec.live"
// +kubebuilder:printcolumn:name="State",type="string",JSONPath=".status.state"
// +kubebuilder:printcolumn:name="Ready",type="boolean",JSONPath=".status.ready"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// Actor is the Schema for the actors API
type Actor struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ActorSpec   `json:"spec,omitempty"`
	Status ActorStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ActorList contains a list of Actor
type ActorList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Actor `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Actor{}, &ActorList{})
}
