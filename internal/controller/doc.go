// Package controller implements the level-triggered reconciliation engine
// driving playbooks and actors toward their declared state.
//
// A Manager owns the change detector, the deduplicating work queue and the
// worker pool. The detector watches the composer custom resources through
// informers and turns every create, update and delete into a change event;
// workers pop requests from the queue and dispatch them to the registered
// per-kind reconciler. Failed reconciliations are requeued with
// exponential backoff, successful ones with the periodic resync interval,
// so convergence never depends on observing a particular edge.
package controller
