// Package playbook defines the workflow states of a Playbook: namespace
// and credential provisioning (Pending), dependency-closure resolution
// (Solving) and actor synchronization (Running).
package playbook
