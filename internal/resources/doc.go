// Package resources implements the resource synchronizer: idempotent
// create-or-update primitives against the object store for every
// sub-resource the control plane manages (namespaces, secrets, service
// accounts, build jobs, playbooks, actors and their status subresources).
//
// All mutating calls use server-side-mergeable patch semantics so that
// concurrent writers to disjoint fields do not clobber each other; status
// patches touch only the status subresource. The synchronizer itself does
// not enforce idempotence; callers are responsible for the
// exists-then-branch discipline (check Exists, then Create or Update).
package resources
