// Package client provides the typed client for composer resources.
//
// ComposerClient wraps a controller-runtime client with convenience
// operations for Playbooks and Actors, status subresource updates, and
// event emission. Construction validates that the composer CRDs are
// installed so a misconfigured cluster fails fast instead of erroring on
// first use.
package client
