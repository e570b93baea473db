package playbook

import (
	"context"

	"composer/internal/resolver"
	"composer/internal/resources"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// SolveTask computes the playbook's dependency closure. Each pass fetches
// the partners missing from the actor list and appends them; the append
// patch triggers the next pass, so the closure converges after at most
// graph-depth additional reconciliations. Once no partner is missing, the
// playbook transitions to Running.
type SolveTask struct{}

// Matches gates the task on the Solving status.
func (t *SolveTask) Matches(wc *workflow.Context[*v1alpha1.Playbook]) bool {
	return wc.Object.Status.Solving()
}

func (t *SolveTask) Execute(ctx context.Context, wc *workflow.Context[*v1alpha1.Playbook]) (workflow.Intent, error) {
	playbook := wc.Object

	fetches := resolver.Fetches(playbook)
	if len(fetches) == 0 {
		wc.Record("Solved", "Solved successfully, running")
		if err := resources.PatchPlaybookStatus(ctx, wc.Client, playbook, v1alpha1.RunningState(true, "AutoRun", "")); err != nil {
			return workflow.Stay(), &workflow.StoreError{Err: err}
		}
		return workflow.TransitionTo(StateRunning), nil
	}

	for _, partner := range fetches {
		logging.Info("PlaybookWorkflow", "Fetching partner %s", partner.URL())

		spec, err := resolver.Resolve(ctx, wc.Fetcher, partner)
		if err != nil {
			return workflow.Stay(), &workflow.ResolveError{Partner: partner.URL(), Err: err}
		}

		wc.Record("PartnerFetched", "Fetched and added actor "+spec.Name+" to this playbook")
		if err := resources.AddActor(ctx, wc.Client, playbook, spec); err != nil {
			return workflow.Stay(), &workflow.StoreError{Err: err}
		}
	}

	// The appended actors re-trigger reconciliation; the next pass
	// re-evaluates the closure against the grown actor list.
	return workflow.Stay(), nil
}
