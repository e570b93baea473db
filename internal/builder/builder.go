package builder

import (
	"context"
	"fmt"

	"composer/internal/config"
	"composer/internal/credentials"
	"composer/internal/registry"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// Builder is the pluggable build strategy. Implementations must be
// idempotent: if a build for this actor already exists, it is updated in
// place; otherwise it is created. Invoking Build repeatedly with the same
// inputs is safe.
type Builder interface {
	Build(ctx context.Context, actor *v1alpha1.Actor) error
}

// ImageTag returns the full registry reference the actor's build is
// tagged with.
func ImageTag(reg config.RegistryConfig, actor *v1alpha1.Actor) string {
	return fmt.Sprintf("%s/%s/%s:%s", reg.Host, reg.Project, actor.Spec.Image, actor.Spec.Commit)
}

// Orchestrator decides whether an actor needs a build.
type Orchestrator struct {
	Registry    config.RegistryConfig
	Credentials *credentials.Store
	Prober      registry.Prober
}

// Required reports whether a build is required: always for a live actor,
// otherwise only when the target image tag is absent from the registry.
//
// A credential-resolution miss degrades to an anonymous probe (logged, not
// propagated). A failing probe is an error: the registry being
// unreachable must not be mistaken for the image being absent.
func (o *Orchestrator) Required(ctx context.Context, actor *v1alpha1.Actor) (bool, error) {
	if actor.Spec.Live {
		logging.Debug("Builder", "Actor %s is live, build always required", actor.Name)
		return true, nil
	}

	imageRef := ImageTag(o.Registry, actor)

	var credential *credentials.Credential
	if cred, ok := o.Credentials.Resolve(imageRef); ok {
		credential = &cred
	} else {
		logging.Warn("Builder", "No credential for %q, probing anonymously", imageRef)
	}

	exists, err := o.Prober.Exists(ctx, imageRef, credential)
	if err != nil {
		return false, &workflow.RegistryProbeError{Image: imageRef, Err: err}
	}
	if exists {
		logging.Info("Builder", "Image %q already exists, skipping build", imageRef)
	}
	return !exists, nil
}
