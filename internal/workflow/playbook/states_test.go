package playbook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"composer/internal/config"
	"composer/internal/credentials"
	"composer/internal/resolver"
	"composer/internal/resources"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
)

type staticFetcher struct {
	manifests map[string]resolver.Manifest
	err       error
}

func (f *staticFetcher) Fetch(_ context.Context, partner v1alpha1.Partner) (resolver.Manifest, error) {
	if f.err != nil {
		return resolver.Manifest{}, f.err
	}
	manifest, ok := f.manifests[partner.URL()]
	if !ok {
		return resolver.Manifest{}, errors.New("no manifest for " + partner.URL())
	}
	return manifest, nil
}

func testScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	require.NoError(t, v1alpha1.AddToScheme(scheme))
	return scheme
}

func newPlaybook(state v1alpha1.PlaybookState, actors ...v1alpha1.ActorSpec) *v1alpha1.Playbook {
	return &v1alpha1.Playbook{
		ObjectMeta: metav1.ObjectMeta{Name: "demo"},
		Spec: v1alpha1.PlaybookSpec{
			Title:     "Demo",
			Namespace: "composer-demo",
			Actors:    actors,
		},
		Status: v1alpha1.PlaybookStatus{State: state},
	}
}

func webActor(partners ...v1alpha1.Partner) v1alpha1.ActorSpec {
	return v1alpha1.ActorSpec{
		Name:       "web",
		Image:      "web",
		Repository: "https://github.com/example/web",
		Reference:  "main",
		Path:       ".",
		Partners:   partners,
	}
}

func newContext(c client.Client, playbook *v1alpha1.Playbook, fetcher resolver.ManifestFetcher, creds *credentials.Store) *workflow.Context[*v1alpha1.Playbook] {
	if creds == nil {
		creds = credentials.NewStore()
	}
	return &workflow.Context[*v1alpha1.Playbook]{
		Object:      playbook,
		Client:      c,
		Credentials: creds,
		Fetcher:     fetcher,
		Registry:    config.RegistryConfig{Host: "harbor.example.com", Project: "library"},
	}
}

func fetchPlaybook(t *testing.T, c client.Client, name string) *v1alpha1.Playbook {
	t.Helper()
	playbook := &v1alpha1.Playbook{}
	require.NoError(t, c.Get(context.Background(), types.NamespacedName{Name: name}, playbook))
	return playbook
}

func TestInitTask_ProvisionsNamespaceWithoutCredential(t *testing.T) {
	playbook := newPlaybook(v1alpha1.PlaybookPending, webActor())
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(playbook).
		WithStatusSubresource(&v1alpha1.Playbook{}).
		Build()

	// No credential for the registry host: namespace only, no secret.
	wc := newContext(c, playbook, nil, credentials.NewStore())

	intent, err := (&InitTask{}).Execute(context.Background(), wc)
	require.NoError(t, err)

	next, ok := intent.Transition()
	require.True(t, ok)
	assert.Equal(t, StateSolving, next)

	namespace := &corev1.Namespace{}
	require.NoError(t, c.Get(context.Background(), types.NamespacedName{Name: "composer-demo"}, namespace))

	secret := &corev1.Secret{}
	err = c.Get(context.Background(), types.NamespacedName{Namespace: "composer-demo", Name: resources.RegistrySecretName}, secret)
	assert.Error(t, err, "no secret expected without a credential")

	fetched := fetchPlaybook(t, c, "demo")
	assert.Equal(t, v1alpha1.PlaybookSolving, fetched.Status.State)
}

func TestInitTask_ProvisionsSecretAndServiceAccount(t *testing.T) {
	playbook := newPlaybook(v1alpha1.PlaybookPending, webActor())
	sa := &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{Namespace: "composer-demo", Name: "default"},
	}
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(playbook, sa).
		WithStatusSubresource(&v1alpha1.Playbook{}).
		Build()

	creds := credentials.NewStore(credentials.Basic(credentials.KindImage, "harbor.example.com", "robot", "token"))
	wc := newContext(c, playbook, nil, creds)

	intent, err := (&InitTask{}).Execute(context.Background(), wc)
	require.NoError(t, err)

	_, ok := intent.Transition()
	require.True(t, ok)

	secret := &corev1.Secret{}
	key := types.NamespacedName{Namespace: "composer-demo", Name: resources.RegistrySecretName}
	require.NoError(t, c.Get(context.Background(), key, secret))
	assert.Equal(t, corev1.SecretTypeDockerConfigJson, secret.Type)

	patched := &corev1.ServiceAccount{}
	require.NoError(t, c.Get(context.Background(), types.NamespacedName{Namespace: "composer-demo", Name: "default"}, patched))
	require.Len(t, patched.ImagePullSecrets, 1)
	assert.Equal(t, resources.RegistrySecretName, patched.ImagePullSecrets[0].Name)
}

func TestInitTask_MissingServiceAccountErrorsForRetry(t *testing.T) {
	playbook := newPlaybook(v1alpha1.PlaybookPending, webActor())
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(playbook).
		WithStatusSubresource(&v1alpha1.Playbook{}).
		Build()

	creds := credentials.NewStore(credentials.Basic(credentials.KindImage, "harbor.example.com", "robot", "token"))
	wc := newContext(c, playbook, nil, creds)

	// The default service account has not appeared yet: the pass fails
	// and the playbook stays Pending for the next attempt.
	_, err := (&InitTask{}).Execute(context.Background(), wc)
	require.Error(t, err)

	var storeErr *workflow.StoreError
	assert.ErrorAs(t, err, &storeErr)

	fetched := fetchPlaybook(t, c, "demo")
	assert.Equal(t, v1alpha1.PlaybookPending, fetched.Status.State)
}

func TestInitTask_IdempotentOnExistingNamespace(t *testing.T) {
	playbook := newPlaybook(v1alpha1.PlaybookPending, webActor())
	namespace := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "composer-demo"}}
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(playbook, namespace).
		WithStatusSubresource(&v1alpha1.Playbook{}).
		Build()

	wc := newContext(c, playbook, nil, credentials.NewStore())

	intent, err := (&InitTask{}).Execute(context.Background(), wc)
	require.NoError(t, err)

	next, ok := intent.Transition()
	require.True(t, ok)
	assert.Equal(t, StateSolving, next)
}

func TestSolveTask_ClosureCompleteTransitionsToRunning(t *testing.T) {
	playbook := newPlaybook(v1alpha1.PlaybookSolving, webActor())
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(playbook).
		WithStatusSubresource(&v1alpha1.Playbook{}).
		Build()

	wc := newContext(c, playbook, &staticFetcher{}, nil)

	intent, err := (&SolveTask{}).Execute(context.Background(), wc)
	require.NoError(t, err)

	next, ok := intent.Transition()
	require.True(t, ok)
	assert.Equal(t, StateRunning, next)

	fetched := fetchPlaybook(t, c, "demo")
	assert.Equal(t, v1alpha1.PlaybookRunning, fetched.Status.State)
	assert.True(t, fetched.Status.Ready)
}

func TestSolveTask_FetchesMissingPartner(t *testing.T) {
	partner := v1alpha1.Partner{
		Name:       "api",
		Repository: "https://github.com/example/api",
		Reference:  "main",
		Path:       ".",
	}
	playbook := newPlaybook(v1alpha1.PlaybookSolving, webActor(partner))
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(playbook).
		WithStatusSubresource(&v1alpha1.Playbook{}).
		Build()

	fetcher := &staticFetcher{manifests: map[string]resolver.Manifest{
		partner.URL(): {Name: "api", Image: "api"},
	}}
	wc := newContext(c, playbook, fetcher, nil)

	intent, err := (&SolveTask{}).Execute(context.Background(), wc)
	require.NoError(t, err)

	// The pass appends the fetched actor and stays; the grown actor list
	// converges the closure on the next pass.
	_, ok := intent.Transition()
	assert.False(t, ok)

	fetched := fetchPlaybook(t, c, "demo")
	require.Len(t, fetched.Spec.Actors, 2)
	assert.Equal(t, "api", fetched.Spec.Actors[1].Name)
	assert.Equal(t, "https://github.com/example/api", fetched.Spec.Actors[1].Repository)
}

func TestSolveTask_AppendsAllMissingPartnersInOnePass(t *testing.T) {
	api := v1alpha1.Partner{
		Name:       "api",
		Repository: "https://github.com/example/api",
		Reference:  "main",
		Path:       ".",
	}
	db := v1alpha1.Partner{
		Name:       "db",
		Repository: "https://github.com/example/db",
		Reference:  "main",
		Path:       ".",
	}
	playbook := newPlaybook(v1alpha1.PlaybookSolving, webActor(api, db))
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(playbook).
		WithStatusSubresource(&v1alpha1.Playbook{}).
		Build()

	fetcher := &staticFetcher{manifests: map[string]resolver.Manifest{
		api.URL(): {Name: "api", Image: "api"},
		db.URL():  {Name: "db", Image: "db"},
	}}
	wc := newContext(c, playbook, fetcher, nil)

	_, err := (&SolveTask{}).Execute(context.Background(), wc)
	require.NoError(t, err)

	// The actor list only grows: the second append must build on the
	// first, not on the list the pass started from.
	fetched := fetchPlaybook(t, c, "demo")
	require.Len(t, fetched.Spec.Actors, 3)
	assert.Equal(t, "web", fetched.Spec.Actors[0].Name)
	assert.Equal(t, "api", fetched.Spec.Actors[1].Name)
	assert.Equal(t, "db", fetched.Spec.Actors[2].Name)
}

func TestSolveTask_FetchFailureSurfacesResolveError(t *testing.T) {
	partner := v1alpha1.Partner{
		Name:       "api",
		Repository: "https://github.com/example/api",
		Reference:  "main",
		Path:       ".",
	}
	playbook := newPlaybook(v1alpha1.PlaybookSolving, webActor(partner))
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(playbook).
		WithStatusSubresource(&v1alpha1.Playbook{}).
		Build()

	wc := newContext(c, playbook, &staticFetcher{err: errors.New("manifest host down")}, nil)

	_, err := (&SolveTask{}).Execute(context.Background(), wc)
	require.Error(t, err)

	var resolveErr *workflow.ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, partner.URL(), resolveErr.Partner)
}

func TestPerformTask_CreatesMissingActors(t *testing.T) {
	playbook := newPlaybook(v1alpha1.PlaybookRunning, webActor())
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(playbook).
		WithStatusSubresource(&v1alpha1.Playbook{}).
		Build()

	wc := newContext(c, playbook, nil, nil)

	intent, err := (&PerformTask{}).Execute(context.Background(), wc)
	require.NoError(t, err)

	_, ok := intent.Transition()
	assert.False(t, ok, "Running is a steady state")

	actor := &v1alpha1.Actor{}
	key := types.NamespacedName{Namespace: "composer-demo", Name: "web"}
	require.NoError(t, c.Get(context.Background(), key, actor))
	assert.Equal(t, "https://github.com/example/web", actor.Spec.Repository)
	assert.Equal(t, "demo", actor.Labels[resources.PlaybookLabel])
}

func TestPerformTask_RefreshesChangedActorSpec(t *testing.T) {
	spec := webActor()
	spec.Commit = "newcommit"
	playbook := newPlaybook(v1alpha1.PlaybookRunning, spec)

	stale := spec
	stale.Commit = "oldcommit"
	existing := &v1alpha1.Actor{
		ObjectMeta: metav1.ObjectMeta{Namespace: "composer-demo", Name: "web"},
		Spec:       stale,
	}

	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(playbook, existing).
		WithStatusSubresource(&v1alpha1.Playbook{}).
		Build()

	wc := newContext(c, playbook, nil, nil)

	_, err := (&PerformTask{}).Execute(context.Background(), wc)
	require.NoError(t, err)

	actor := &v1alpha1.Actor{}
	key := types.NamespacedName{Namespace: "composer-demo", Name: "web"}
	require.NoError(t, c.Get(context.Background(), key, actor))
	assert.Equal(t, "newcommit", actor.Spec.Commit)
}

func TestMachineDrivesFullLifecycle(t *testing.T) {
	playbook := newPlaybook(v1alpha1.PlaybookPending, webActor())
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithObjects(playbook).
		WithStatusSubresource(&v1alpha1.Playbook{}).
		Build()

	machine := NewMachine()

	// Pending -> Solving -> Running, refetching between passes like the
	// controller does.
	for i := 0; i < 2; i++ {
		current := fetchPlaybook(t, c, "demo")
		wc := newContext(c, current, &staticFetcher{}, nil)

		intent, err := machine.Handle(context.Background(), StateOf(current), wc)
		require.NoError(t, err)

		_, ok := intent.Transition()
		require.True(t, ok, "pass %d should transition", i)
	}

	fetched := fetchPlaybook(t, c, "demo")
	assert.Equal(t, v1alpha1.PlaybookRunning, fetched.Status.State)
}
