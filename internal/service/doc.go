// Package service offers programmatic lifecycle verbs for playbooks on
// top of the typed client: create, get, list, start, stop and delete.
// It is the layer an API surface would call; the controller never goes
// through it.
package service
