package credentials

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_ResolveByHost(t *testing.T) {
	store := NewStore(
		Basic(KindImage, "harbor.internal", "admin", "secret"),
		Basic(KindImage, "registry.example.com", "bot", "hunter2"),
	)

	cred, ok := store.Resolve("harbor.internal/library/web:abc123")
	assert.True(t, ok)
	assert.Equal(t, "admin", cred.Username)

	cred, ok = store.Resolve("registry.example.com/apps/api:v1")
	assert.True(t, ok)
	assert.Equal(t, "bot", cred.Username)
}

func TestStore_ResolveUnknownHost(t *testing.T) {
	store := NewStore(Basic(KindImage, "harbor.internal", "admin", "secret"))

	_, ok := store.Resolve("ghcr.io/example/web:latest")
	assert.False(t, ok)
}

func TestStore_ResolveMalformedReference(t *testing.T) {
	store := NewStore(Basic(KindImage, "harbor.internal", "admin", "secret"))

	_, ok := store.Resolve(":::not-a-reference")
	assert.False(t, ok)
}

func TestStore_Replace(t *testing.T) {
	store := NewStore(Basic(KindImage, "harbor.internal", "admin", "secret"))

	store.Replace([]Credential{Basic(KindImage, "harbor.internal", "robot", "token")})

	cred, ok := store.Resolve("harbor.internal/library/web:abc123")
	assert.True(t, ok)
	assert.Equal(t, "robot", cred.Username)
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	store := NewStore(Basic(KindImage, "harbor.internal", "admin", "secret"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Resolve("harbor.internal/library/web:abc123")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 100; j++ {
			store.Replace([]Credential{Basic(KindImage, "harbor.internal", "admin", "secret")})
		}
	}()
	wg.Wait()

	_, ok := store.Resolve("harbor.internal/library/web:abc123")
	assert.True(t, ok)
}
