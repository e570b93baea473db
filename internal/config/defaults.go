package config

import "time"

const (
	// DefaultResyncInterval is the success-path requeue interval. Even if
	// every watch event is missed, each object is re-reconciled this often.
	DefaultResyncInterval = Duration(2 * time.Minute)

	// DefaultErrorBackoff is the initial requeue delay after a failure.
	DefaultErrorBackoff = Duration(60 * time.Second)

	// DefaultMaxBackoff caps the exponential error backoff.
	DefaultMaxBackoff = Duration(5 * time.Minute)

	// DefaultReconcileTimeout bounds a single reconciliation pass.
	DefaultReconcileTimeout = Duration(30 * time.Second)

	// DefaultWorkerCount is the default number of reconciliation workers.
	DefaultWorkerCount = 2

	// DefaultRegistryHost is the in-cluster registry used when none is
	// configured.
	DefaultRegistryHost = "harbor.composer-system.svc.cluster.local"

	// DefaultRegistryProject is the registry project images are pushed
	// under when none is configured.
	DefaultRegistryProject = "library"
)

// GetDefaultConfig returns the default configuration for composer.
func GetDefaultConfig() ComposerConfig {
	return ComposerConfig{
		Controller: ControllerConfig{
			WorkerCount:      DefaultWorkerCount,
			ResyncInterval:   DefaultResyncInterval,
			ErrorBackoff:     DefaultErrorBackoff,
			MaxBackoff:       DefaultMaxBackoff,
			ReconcileTimeout: DefaultReconcileTimeout,
		},
		Registry: RegistryConfig{
			Host:    DefaultRegistryHost,
			Project: DefaultRegistryProject,
		},
	}
}
