// Package builder implements the build orchestrator: the decision of
// whether an actor needs a build, and the pluggable strategies that
// dispatch one.
//
// A build is required when the actor is live (live actors always rebuild)
// or when the target image tag is absent from the configured registry.
// Two strategies exist: LifecycleBuilder runs the buildpacks lifecycle in
// a Job, ImageBuilder declares an Image custom resource for an external
// image-building operator. Both follow the exists-then-branch discipline
// so repeated dispatch never duplicates resources.
package builder
