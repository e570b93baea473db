// Package resolver implements dependency-closure resolution for playbooks.
//
// Each actor may declare partner references: dependencies on actors not
// yet part of the playbook. The resolver computes the set of partners
// missing from the playbook (set semantics, keyed by repository +
// reference + path) and materializes each one into a full actor spec by
// fetching the partner repository's manifest. The closure converges after
// at most depth-of-the-dependency-graph additional reconciliations,
// because each appended actor triggers a new pass.
package resolver
