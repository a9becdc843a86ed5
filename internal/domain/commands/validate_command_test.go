//go:build unit

package commands_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/scmforge/internal/domain/commands"
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	domainRepos "github.com/rios0rios0/scmforge/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/scmforge/internal/infrastructure/repositories"
	"github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

func newValidateCommand(provider *repositorydoubles.StubScmProvider) *commands.ValidateCommand {
	registry := infraRepos.NewProviderRegistry()
	registry.Register(provider.ProviderType, func(*entities.Settings) domainRepos.ScmProvider {
		return provider
	})
	return commands.NewValidateCommand(registry)
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	t.Run("should accept a url the provider can parse", func(t *testing.T) {
		t.Parallel()

		// given
		command := newValidateCommand(repositorydoubles.NewStubScmProvider(entities.ProviderSVN))

		// when
		messages := command.Execute(nil, "scm:svn:https://svn.example.com/repo/trunk")

		// then
		assert.Empty(t, messages)
	})

	t.Run("should report envelope problems before looking up the provider", func(t *testing.T) {
		t.Parallel()

		// given
		command := newValidateCommand(repositorydoubles.NewStubScmProvider(entities.ProviderSVN))

		// when
		messages := command.Execute(nil, "svn:https://svn.example.com/repo")

		// then
		assert.Equal(t, []string{"The scm url must start with 'scm:'."}, messages)
	})

	t.Run("should report an unknown provider", func(t *testing.T) {
		t.Parallel()

		// given
		command := newValidateCommand(repositorydoubles.NewStubScmProvider(entities.ProviderSVN))

		// when
		messages := command.Execute(nil, "scm:darcs:http://example.com/repo")

		// then
		assert.Equal(t, []string{"No such provider installed 'darcs'."}, messages)
	})

	t.Run("should return the provider messages", func(t *testing.T) {
		t.Parallel()

		// given
		provider := repositorydoubles.NewStubScmProvider(entities.ProviderSVN)
		provider.ParseErr = errors.New("invalid svn url")
		command := newValidateCommand(provider)

		// when
		messages := command.Execute(nil, "scm:svn:not a url")

		// then
		assert.Equal(t, []string{"invalid svn url"}, messages)
	})
}
