package credentials

import (
	"sync"

	"github.com/google/go-containerregistry/pkg/name"
)

// Kind classifies a credential.
type Kind string

const (
	// KindImage is a credential for an image registry.
	KindImage Kind = "image"
)

// Credential is a registry credential held by the store.
type Credential struct {
	Kind     Kind
	Host     string
	Username string
	Password string
}

// Basic returns a basic-auth credential.
func Basic(kind Kind, host, username, password string) Credential {
	return Credential{Kind: kind, Host: host, Username: username, Password: password}
}

// Store holds the shared registry-credential set.
//
// The store is read by many concurrent build-checks and occasionally
// refreshed by one writer; readers are non-exclusive and never block each
// other. The store is injected into each reconciliation's context rather
// than being an ambient singleton.
type Store struct {
	mu          sync.RWMutex
	credentials []Credential
}

// NewStore creates a store pre-populated with the given credentials.
func NewStore(seeds ...Credential) *Store {
	s := &Store{}
	s.credentials = append(s.credentials, seeds...)
	return s
}

// Replace swaps the full credential set. Used by the refresh path, which
// runs independently of reconciliation.
func (s *Store) Replace(credentials []Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials = append([]Credential(nil), credentials...)
}

// Resolve returns the credential matching the registry host of the given
// image reference. The second return value is false when no credential is
// known for that host; callers degrade to an anonymous probe in that case.
func (s *Store) Resolve(imageRef string) (Credential, bool) {
	ref, err := name.ParseReference(imageRef, name.WithDefaultRegistry(""))
	if err != nil {
		return Credential{}, false
	}
	host := ref.Context().RegistryStr()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cred := range s.credentials {
		if cred.Kind == KindImage && cred.Host == host {
			return cred, true
		}
	}
	return Credential{}, false
}

// ResolveHost returns the credential for an exact registry host.
func (s *Store) ResolveHost(host string) (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cred := range s.credentials {
		if cred.Kind == KindImage && cred.Host == host {
			return cred, true
		}
	}
	return Credential{}, false
}

// All returns a copy of the current credential set.
func (s *Store) All() []Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Credential(nil), s.credentials...)
}
