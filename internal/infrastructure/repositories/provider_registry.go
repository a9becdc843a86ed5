package repositories

import (
	"fmt"
	"sort"

	cmap "github.com/orcaman/concurrent-map"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	domainRepos "github.com/rios0rios0/scmforge/internal/domain/repositories"
)

// ProviderFactory is a constructor function that creates a ScmProvider for the given settings.
type ProviderFactory func(settings *entities.Settings) domainRepos.ScmProvider

// ProviderRegistry manages all registered SCM backends.
type ProviderRegistry struct {
	providers cmap.ConcurrentMap
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: cmap.New()}
}

// Register adds a provider factory under the given type (e.g. "svn").
func (r *ProviderRegistry) Register(providerType entities.ProviderType, factory ProviderFactory) {
	r.providers.Set(string(providerType), factory)
}

// Get returns a provider configured with settings.
func (r *ProviderRegistry) Get(providerType entities.ProviderType, settings *entities.Settings) (domainRepos.ScmProvider, error) {
	value, ok := r.providers.Get(string(providerType))
	if !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownProvider, providerType)
	}
	factory, _ := value.(ProviderFactory)
	return factory(settings), nil
}

// Names returns the registered provider types in a stable order.
func (r *ProviderRegistry) Names() []entities.ProviderType {
	keys := r.providers.Keys()
	sort.Strings(keys)
	names := make([]entities.ProviderType, 0, len(keys))
	for _, key := range keys {
		names = append(names, entities.ProviderType(key))
	}
	return names
}
