// Package actor defines the workflow states of an Actor: the build
// decision (Pending), build dispatch (Building), workload rollout
// (Deploying) and drift watching (Running).
package actor
