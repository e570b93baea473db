package resolver

import (
	"context"
	"sort"

	"composer/pkg/apis/composer/v1alpha1"
	"composer/pkg/logging"
)

// Fetches computes the set of partner references declared by the
// playbook's actors that are not yet present in the playbook.
//
// Membership is decided by normalized identity (repository + reference +
// path): partners are de-duplicated across all actors' partner lists, and
// any partner whose identity matches an existing actor is skipped. The
// result is order-independent set arithmetic, fetches = union(partners)
// minus existing, returned in a stable order for deterministic patching.
//
// Because existing only ever grows, a partner that is its own ancestor
// appears at most once; the closure converges without detecting true
// cycles.
func Fetches(playbook *v1alpha1.Playbook) []v1alpha1.Partner {
	existing := make(map[string]struct{}, len(playbook.Spec.Actors))
	for _, actor := range playbook.Spec.Actors {
		existing[actor.URL()] = struct{}{}
	}

	fetches := make(map[string]v1alpha1.Partner)
	for _, actor := range playbook.Spec.Actors {
		for _, partner := range actor.Partners {
			if _, ok := existing[partner.URL()]; ok {
				continue
			}
			fetches[partner.URL()] = partner
		}
	}

	result := make([]v1alpha1.Partner, 0, len(fetches))
	for _, partner := range fetches {
		result = append(result, partner)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].URL() < result[j].URL() })

	logging.Debug("Resolver", "Playbook %s: %d existing actors, %d partners to fetch",
		playbook.Name, len(existing), len(result))
	return result
}

// Resolve turns a partner reference into a full actor spec by fetching the
// partner's manifest and normalizing it against the reference.
func Resolve(ctx context.Context, fetcher ManifestFetcher, partner v1alpha1.Partner) (v1alpha1.ActorSpec, error) {
	manifest, err := fetcher.Fetch(ctx, partner)
	if err != nil {
		return v1alpha1.ActorSpec{}, err
	}
	return manifest.ToActorSpec(partner), nil
}
