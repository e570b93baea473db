// Package workflow implements the generic per-kind state machine that
// advances a domain object through its lifecycle.
//
// A Machine holds a closed set of named States. Each State owns one or
// more Tasks; a Task's Matches precondition is a pure function of the
// object's current status, and only a matching task executes. Handling a
// state yields an Intent, stay or transition to another state, while
// failures travel on the ordinary error return. Because every transition
// is gated on a durably patched status, re-running the machine on an
// unchanged object is a no-op.
package workflow
