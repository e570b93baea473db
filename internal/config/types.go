package config

// ComposerConfig is the top-level configuration structure for composer.
type ComposerConfig struct {
	Controller  ControllerConfig `yaml:"controller"`
	Registry    RegistryConfig   `yaml:"registry"`
	Credentials []CredentialSeed `yaml:"credentials,omitempty"`
}

// ControllerConfig tunes the reconciliation controller.
type ControllerConfig struct {
	// WorkerCount is the number of concurrent reconciliation workers.
	// The queue still guarantees at most one in-flight reconciliation per
	// object key, regardless of worker count.
	WorkerCount int `yaml:"workerCount,omitempty"`

	// ResyncInterval is how often an object is requeued after a successful
	// reconciliation that produced no transition. This is the safety net
	// against missed or coalesced watch events.
	ResyncInterval Duration `yaml:"resyncInterval,omitempty"`

	// ErrorBackoff is the initial requeue delay after a failed
	// reconciliation. Subsequent failures back off exponentially up to
	// MaxBackoff.
	ErrorBackoff Duration `yaml:"errorBackoff,omitempty"`

	// MaxBackoff caps the exponential error backoff.
	MaxBackoff Duration `yaml:"maxBackoff,omitempty"`

	// ReconcileTimeout bounds a single reconciliation pass.
	ReconcileTimeout Duration `yaml:"reconcileTimeout,omitempty"`

	// Namespace restricts watches to a single namespace. Empty watches all
	// namespaces.
	Namespace string `yaml:"namespace,omitempty"`
}

// RegistryConfig identifies the image registry builds are pushed to.
type RegistryConfig struct {
	// Host is the registry host, e.g. "harbor.composer-system.svc.cluster.local".
	Host string `yaml:"host,omitempty"`

	// Project is the registry project/library images are pushed under.
	Project string `yaml:"project,omitempty"`
}

// CredentialSeed is a registry credential loaded at startup into the
// credential store. Additional credentials may be refreshed at runtime.
type CredentialSeed struct {
	// Kind classifies the credential. Currently only "image" is used.
	Kind string `yaml:"kind"`

	// Host is the registry host this credential applies to.
	Host string `yaml:"host"`

	// Username is the principal.
	Username string `yaml:"username"`

	// Password is the secret.
	Password string `yaml:"password"`
}
