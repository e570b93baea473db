package workflow

import "fmt"

// The error kinds below classify task failures for the controller's error
// policy. All of them unwrap to the underlying cause so callers can use
// errors.As/errors.Is across package boundaries.

// StoreError wraps any failure talking to the object store. Transient;
// retried via the controller's backoff.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store error: %v", e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// ResolveError wraps a dependency-resolution failure. Retried.
type ResolveError struct {
	Partner string
	Err     error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve partner %q: %v", e.Partner, e.Err)
}
func (e *ResolveError) Unwrap() error { return e.Err }

// RegistryProbeError wraps an unreachable-registry failure. Retried rather
// than treated as "image does not exist".
type RegistryProbeError struct {
	Image string
	Err   error
}

func (e *RegistryProbeError) Error() string {
	return fmt.Sprintf("registry probe failed for %q: %v", e.Image, e.Err)
}
func (e *RegistryProbeError) Unwrap() error { return e.Err }

// SerializationError marks malformed resource construction. This is a
// programmer error and is surfaced loudly in logs rather than silently
// retried forever.
type SerializationError struct {
	Kind string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to construct %s resource: %v", e.Kind, e.Err)
}
func (e *SerializationError) Unwrap() error { return e.Err }

// PreconditionError marks an object that cannot make progress until its
// spec is edited by a user, e.g. a playbook with an empty actor list.
// Retries are bounded: the spec edit that cures it re-triggers
// reconciliation through the watch, so the controller parks the object
// once its retry budget is spent.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return "precondition failed: " + e.Reason }
