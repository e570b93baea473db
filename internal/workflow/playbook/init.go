package playbook

import (
	"context"

	"composer/internal/resources"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// InitTask provisions a pending playbook: the dedicated namespace, the
// registry credential secret, and the default service account patch that
// lets build pods push and workload pods pull.
type InitTask struct{}

// Matches gates the task on the Pending status.
func (t *InitTask) Matches(wc *workflow.Context[*v1alpha1.Playbook]) bool {
	return wc.Object.Status.Pending()
}

func (t *InitTask) Execute(ctx context.Context, wc *workflow.Context[*v1alpha1.Playbook]) (workflow.Intent, error) {
	playbook := wc.Object
	namespace := playbook.Spec.Namespace

	exists, err := resources.NamespaceExists(ctx, wc.Client, playbook)
	if err != nil {
		return workflow.Stay(), &workflow.StoreError{Err: err}
	}
	if !exists {
		if err := resources.CreateNamespace(ctx, wc.Client, playbook); err != nil {
			return workflow.Stay(), &workflow.StoreError{Err: err}
		}
		wc.Record("NamespaceCreated", "Created namespace for this playbook")
	}

	// A missing registry credential degrades to anonymous registry
	// access: no secret, no service account patch.
	credential, ok := wc.Credentials.ResolveHost(wc.Registry.Host)
	if !ok {
		logging.Warn("PlaybookWorkflow", "No credential for registry %q, skipping secret provisioning", wc.Registry.Host)
	} else {
		secretExists, err := resources.RegistrySecretExists(ctx, wc.Client, namespace)
		if err != nil {
			return workflow.Stay(), &workflow.StoreError{Err: err}
		}
		if !secretExists {
			wc.Record("SecretCreated", "Creating secret for the registry credential")
			if err := resources.CreateRegistrySecret(ctx, wc.Client, namespace, credential); err != nil {
				return workflow.Stay(), &workflow.StoreError{Err: err}
			}
		}

		// The default service account is created asynchronously by the
		// store after the namespace; until it appears this errors and the
		// controller retries.
		wc.Record("ServiceAccountPatched", "Patching the credential to the default service account")
		if err := resources.PatchServiceAccount(ctx, wc.Client, namespace, "default", true, true); err != nil {
			return workflow.Stay(), &workflow.StoreError{Err: err}
		}
	}

	wc.Record("Initialized", "Init successfully, beginning to solve")
	if err := resources.PatchPlaybookStatus(ctx, wc.Client, playbook, v1alpha1.SolvingState()); err != nil {
		return workflow.Stay(), &workflow.StoreError{Err: err}
	}
	return workflow.TransitionTo(StateSolving), nil
}
