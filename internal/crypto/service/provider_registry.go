package service

import (
	"fmt"

	cryptoDomain "github.com/allisson/envelope/internal/crypto/domain"
)

// ProviderRegistry holds the known key providers keyed by provider version,
// with one designated as active.
//
// New data encryption keys are wrapped by the active provider. Unwrapping
// routes through the provider version recorded with each key, so records
// written by an older provider stay readable after the active provider
// changes. That is the whole migration story: register both providers, make
// the new one active, and rewrap at leisure.
type ProviderRegistry struct {
	active    KeyProvider
	providers map[string]KeyProvider
}

// NewProviderRegistry creates a registry with the given active provider and
// any additional providers kept for unwrapping older records.
func NewProviderRegistry(active KeyProvider, others ...KeyProvider) *ProviderRegistry {
	providers := make(map[string]KeyProvider, len(others)+1)
	providers[active.ProviderVersion()] = active
	for _, p := range others {
		providers[p.ProviderVersion()] = p
	}

	return &ProviderRegistry{
		active:    active,
		providers: providers,
	}
}

// Active returns the provider used to wrap new data encryption keys.
func (r *ProviderRegistry) Active() KeyProvider {
	return r.active
}

// Get returns the provider matching the given provider version.
// Returns ErrProviderNotFound when no registered provider matches.
func (r *ProviderRegistry) Get(version string) (KeyProvider, error) {
	p, ok := r.providers[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s", cryptoDomain.ErrProviderNotFound, version)
	}

	return p, nil
}
