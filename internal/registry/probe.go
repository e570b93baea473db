package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"

	"composer/internal/credentials"
)

// Prober answers whether an image tag already exists in its registry.
type Prober interface {
	// Exists checks the registry's manifest-existence endpoint for the
	// given image reference. A nil credential performs an anonymous probe.
	// An unreachable registry is an error, never "image does not exist".
	Exists(ctx context.Context, imageRef string, credential *credentials.Credential) (bool, error)
}

// remoteProber probes registries over the network.
type remoteProber struct{}

// NewProber returns a Prober backed by the remote registry API.
func NewProber() Prober {
	return remoteProber{}
}

func (remoteProber) Exists(ctx context.Context, imageRef string, credential *credentials.Credential) (bool, error) {
	ref, err := name.ParseReference(imageRef)
	if err != nil {
		return false, fmt.Errorf("invalid image reference %q: %w", imageRef, err)
	}

	opts := []remote.Option{remote.WithContext(ctx)}
	if credential != nil {
		opts = append(opts, remote.WithAuth(authn.FromConfig(authn.AuthConfig{
			Username: credential.Username,
			Password: credential.Password,
		})))
	}

	if _, err := remote.Head(ref, opts...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("registry probe for %q failed: %w", imageRef, err)
	}
	return true, nil
}

// isNotFound distinguishes "the manifest is absent" from transport and
// authorization failures, which must surface as probe errors.
func isNotFound(err error) bool {
	var terr *transport.Error
	if errors.As(err, &terr) {
		return terr.StatusCode == http.StatusNotFound
	}
	return false
}
