// Package credentials implements the shared registry-credential store.
//
// The store is seeded from configuration at startup and may be refreshed
// at runtime by a single writer while many reconciliations read from it
// concurrently. Lookup is by the registry host component of an image
// reference; a miss is not an error, build checks fall back to anonymous
// registry access.
package credentials
