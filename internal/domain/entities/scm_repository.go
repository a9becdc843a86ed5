package entities

// Credentials is embedded by every provider descriptor.
type Credentials struct {
	User            string
	Password        string
	PushChanges     bool
	PersistCheckout bool
}

// Auth exposes the embedded credentials through the ProviderRepository interface.
func (c *Credentials) Auth() *Credentials {
	return c
}

// ProviderRepository is the backend specific half of a repository descriptor.
type ProviderRepository interface {
	// ConnectionURL renders the provider specific part back, joined with delimiter.
	ConnectionURL(delimiter string) string
	Auth() *Credentials
}

// ScmRepository is a parsed SCM URL. Descriptors are only built through a successful parse.
type ScmRepository struct {
	Type      ProviderType
	Delimiter string
	Provider  ProviderRepository
}

// NewScmRepository pairs a provider descriptor with its envelope.
func NewScmRepository(providerType ProviderType, delimiter string, provider ProviderRepository) *ScmRepository {
	return &ScmRepository{Type: providerType, Delimiter: delimiter, Provider: provider}
}

// String renders the canonical "scm:<type><delim><connection>" form.
func (r *ScmRepository) String() string {
	if r == nil || r.Provider == nil {
		return ""
	}
	return scmURLPrefix + string(r.Type) + r.Delimiter + r.Provider.ConnectionURL(r.Delimiter)
}

// Auth is nil safe and never returns nil.
func (r *ScmRepository) Auth() *Credentials {
	if r == nil || r.Provider == nil || r.Provider.Auth() == nil {
		return &Credentials{}
	}
	return r.Provider.Auth()
}
