// Package v1alpha1 contains API Schema definitions for the composer v1alpha1 API group.
//
// This package defines the Kubernetes Custom Resource Definitions (CRDs) for the
// composer control plane. The v1alpha1 API version represents the initial alpha
// release of the composer Kubernetes API and is subject to change.
//
// # API Group: composer.dev/v1alpha1
//
// ## Playbook
//
// Playbook is the aggregate root: a set of Actors (plus their transitive
// Partner dependencies) that should be brought to a running state together.
// Playbooks are cluster-scoped; each Playbook owns a dedicated namespace
// derived from its identifier, in which all of its sub-resources live.
//
// Example:
//
//	apiVersion: composer.dev/v1alpha1
//	kind: Playbook
//	metadata:
//	  name: 9b9ffa27-76e4-4375-8d45-eaa3dbca0e13
//	spec:
//	  title: "Example"
//	  description: "A multi-service example application"
//	  namespace: composer-9b9ffa27-76e4-4375-8d45-eaa3dbca0e13
//	  actors:
//	    - name: web
//	      image: example-web
//	      repository: https://github.com/example/web
//	      reference: main
//	      path: "."
//
// ## Actor
//
// Actor represents one buildable and deployable unit belonging to a Playbook:
// a source repository at a specific commit and subpath, an image reference,
// and an ordered set of Partner dependency references.
//
// +kubebuilder:object:generate=true
// +groupName=composer.dev
package v1alpha1
