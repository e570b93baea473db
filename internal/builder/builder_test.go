package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	batchv1 "k8s.io/api/batch/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"composer/internal/config"
	"composer/internal/credentials"
	"composer/internal/resources"
	"composer/internal/workflow"
	"composer/pkg/apis/composer/v1alpha1"
)

// fakeProber answers existence probes from a canned map.
type fakeProber struct {
	exists map[string]bool
	err    error
	probes []string
}

func (p *fakeProber) Exists(ctx context.Context, imageRef string, credential *credentials.Credential) (bool, error) {
	p.probes = append(p.probes, imageRef)
	if p.err != nil {
		return false, p.err
	}
	return p.exists[imageRef], nil
}

func testActor(live bool) *v1alpha1.Actor {
	return &v1alpha1.Actor{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "composer-x"},
		Spec: v1alpha1.ActorSpec{
			Name:       "web",
			Image:      "web",
			Repository: "https://github.com/example/web",
			Reference:  "main",
			Commit:     "deadbeefcafe",
			Live:       live,
		},
	}
}

func testRegistry() config.RegistryConfig {
	return config.RegistryConfig{Host: "harbor.example.com", Project: "library"}
}

func TestImageTag(t *testing.T) {
	got := ImageTag(testRegistry(), testActor(false))
	assert.Equal(t, "harbor.example.com/library/web:deadbeefcafe", got)
}

func TestRequired_LiveActorSkipsProbe(t *testing.T) {
	prober := &fakeProber{}
	o := &Orchestrator{
		Registry:    testRegistry(),
		Credentials: credentials.NewStore(),
		Prober:      prober,
	}

	required, err := o.Required(context.Background(), testActor(true))
	require.NoError(t, err)
	assert.True(t, required)
	assert.Empty(t, prober.probes, "live actors must not be probed")
}

func TestRequired_ImagePresent(t *testing.T) {
	tag := ImageTag(testRegistry(), testActor(false))
	prober := &fakeProber{exists: map[string]bool{tag: true}}
	o := &Orchestrator{
		Registry:    testRegistry(),
		Credentials: credentials.NewStore(),
		Prober:      prober,
	}

	required, err := o.Required(context.Background(), testActor(false))
	require.NoError(t, err)
	assert.False(t, required)
}

func TestRequired_ImageAbsent(t *testing.T) {
	prober := &fakeProber{exists: map[string]bool{}}
	o := &Orchestrator{
		Registry:    testRegistry(),
		Credentials: credentials.NewStore(),
		Prober:      prober,
	}

	required, err := o.Required(context.Background(), testActor(false))
	require.NoError(t, err)
	assert.True(t, required)
}

func TestRequired_ProbeFailureIsNotAbsence(t *testing.T) {
	prober := &fakeProber{err: errors.New("registry unreachable")}
	o := &Orchestrator{
		Registry:    testRegistry(),
		Credentials: credentials.NewStore(),
		Prober:      prober,
	}

	_, err := o.Required(context.Background(), testActor(false))
	require.Error(t, err)

	var probeErr *workflow.RegistryProbeError
	assert.ErrorAs(t, err, &probeErr)
}

func TestRequired_MissingCredentialDegradesToAnonymous(t *testing.T) {
	// Store seeded for a different host: resolution misses, probe still runs.
	store := credentials.NewStore(credentials.Basic(credentials.KindImage, "other.example.com", "u", "p"))
	prober := &fakeProber{exists: map[string]bool{}}
	o := &Orchestrator{
		Registry:    testRegistry(),
		Credentials: store,
		Prober:      prober,
	}

	required, err := o.Required(context.Background(), testActor(false))
	require.NoError(t, err)
	assert.True(t, required)
	assert.Len(t, prober.probes, 1)
}

func TestLifecycleBuilder_DispatchIsIdempotent(t *testing.T) {
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	require.NoError(t, v1alpha1.AddToScheme(scheme))
	c := fake.NewClientBuilder().WithScheme(scheme).Build()

	b := NewLifecycleBuilder(c, testRegistry())
	actor := testActor(false)

	require.NoError(t, b.Build(context.Background(), actor))

	// A second dispatch with the same inputs refreshes the existing job
	// instead of creating a duplicate.
	require.NoError(t, b.Build(context.Background(), actor))

	jobs := &batchv1.JobList{}
	require.NoError(t, c.List(context.Background(), jobs))
	require.Len(t, jobs.Items, 1)
	assert.Equal(t, "web-builder", jobs.Items[0].Name)
	assert.Equal(t, "deadbeefcafe", jobs.Items[0].Labels["composer.dev/commit"])
}

func TestLifecycleBuilder_RefreshCarriesNewCommit(t *testing.T) {
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	require.NoError(t, v1alpha1.AddToScheme(scheme))
	c := fake.NewClientBuilder().WithScheme(scheme).Build()

	b := NewLifecycleBuilder(c, testRegistry())
	actor := testActor(false)

	require.NoError(t, b.Build(context.Background(), actor))

	actor.Spec.Commit = "cafebabe0000"
	require.NoError(t, b.Build(context.Background(), actor))

	job := &batchv1.Job{}
	key := types.NamespacedName{Namespace: "composer-x", Name: resources.BuildJobName(actor)}
	require.NoError(t, c.Get(context.Background(), key, job))
	assert.Equal(t, "cafebabe0000", job.Labels["composer.dev/commit"])
}

func TestImageResourceValidate(t *testing.T) {
	resource := imageResource{
		Name:        "web-deadbeef",
		Namespace:   "composer-x",
		Tag:         "harbor.example.com/library/web:deadbeef",
		GitURL:      "https://github.com/example/web",
		GitRevision: "deadbeef",
	}
	assert.NoError(t, resource.validate())

	resource.GitRevision = ""
	err := resource.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git revision")
}

func TestImageBuilderRejectsUnresolvedCommit(t *testing.T) {
	b := NewImageBuilder(nil, testRegistry())

	actor := testActor(false)
	actor.Spec.Commit = ""

	err := b.Build(context.Background(), actor)
	require.Error(t, err)

	var serErr *workflow.SerializationError
	assert.ErrorAs(t, err, &serErr)
}
