// Package registry implements the image-registry existence probe used by
// the build orchestrator to decide whether an actor needs a build.
//
// The probe issues a manifest HEAD request against the registry. Only a
// definitive 404 means "image absent"; any other failure (network,
// authorization, 5xx) is reported as an error so the controller retries
// instead of triggering a spurious rebuild.
package registry
