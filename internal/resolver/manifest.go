package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"composer/pkg/apis/composer/v1alpha1"
)

// ManifestFileName is the manifest file looked up in a partner's
// repository.
const ManifestFileName = ".composer.yaml"

// Manifest is the subset of a repository's manifest needed to materialize
// an actor spec from a partner reference.
type Manifest struct {
	Name        string             `json:"name,omitempty"`
	Description string             `json:"description,omitempty"`
	Image       string             `json:"image,omitempty"`
	Commit      string             `json:"commit,omitempty"`
	Live        bool               `json:"live,omitempty"`
	Partners    []v1alpha1.Partner `json:"partners,omitempty"`
}

// ToActorSpec normalizes the manifest into an actor spec for the given
// partner. Source coordinates always come from the partner reference; a
// manifest cannot redirect the dependency to a different repository.
func (m Manifest) ToActorSpec(partner v1alpha1.Partner) v1alpha1.ActorSpec {
	name := m.Name
	if name == "" {
		name = partner.Name
	}
	image := m.Image
	if image == "" {
		image = name
	}

	return v1alpha1.ActorSpec{
		Name:        name,
		Description: m.Description,
		Image:       image,
		Repository:  partner.Repository,
		Reference:   partner.Reference,
		Commit:      m.Commit,
		Path:        partner.Path,
		Live:        m.Live,
		Partners:    m.Partners,
	}
}

// ManifestFetcher resolves a partner reference into its manifest.
type ManifestFetcher interface {
	Fetch(ctx context.Context, partner v1alpha1.Partner) (Manifest, error)
}

// HTTPFetcher fetches manifests from the partner's repository host over
// HTTP.
type HTTPFetcher struct {
	client *http.Client

	// BaseURL overrides the repository URL as the fetch root. Used in
	// tests to point at a local server.
	BaseURL string
}

// NewHTTPFetcher returns a fetcher with a bounded request timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch downloads and parses the partner's manifest file.
func (f *HTTPFetcher) Fetch(ctx context.Context, partner v1alpha1.Partner) (Manifest, error) {
	url := f.manifestURL(partner)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to build manifest request for %q: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to fetch manifest from %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Manifest{}, fmt.Errorf("manifest fetch from %q returned status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest from %q: %w", url, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("malformed manifest at %q: %w", url, err)
	}
	return manifest, nil
}

// manifestURL builds the raw-file URL of the partner's manifest. Hosts
// with a GitHub-style "/raw/<ref>/<path>" layout are served directly;
// other hosts need a proxy configured as BaseURL.
func (f *HTTPFetcher) manifestURL(partner v1alpha1.Partner) string {
	root := strings.TrimSuffix(partner.Repository, ".git")
	if f.BaseURL != "" {
		root = f.BaseURL
	}

	sub := partner.Path
	if sub == "." {
		sub = ""
	}
	return root + "/raw/" + partner.Reference + "/" + path.Join(sub, ManifestFileName)
}
