//go:build unit

package cvs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/cvs"
)

func TestParseRepository(t *testing.T) {
	t.Parallel()

	t.Run("should parse a pserver connection string", func(t *testing.T) {
		t.Parallel()

		// given
		specific := "pserver:anoncvs@cvs.apache.org:/home/cvspublic:maven"

		// when
		parsed, err := cvs.ParseRepository(specific, ":")

		// then
		require.NoError(t, err)
		repository := parsed.(*cvs.Repository)
		assert.Equal(t, cvs.MethodPServer, repository.Method)
		assert.Equal(t, "anoncvs", repository.User)
		assert.Equal(t, "cvs.apache.org", repository.Host)
		assert.Equal(t, "/home/cvspublic", repository.Path)
		assert.Equal(t, "maven", repository.Module)
		assert.Zero(t, repository.Port)
		assert.Equal(t, specific, repository.ConnectionURL(":"))
		assert.Equal(t, ":pserver:anoncvs@cvs.apache.org:/home/cvspublic", repository.CvsRoot())
	})

	t.Run("should keep the password out of the connection url but inside the pserver root", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := cvs.ParseRepository("pserver:anoncvs:secret@cvs.apache.org:2401:/home/cvspublic:maven", ":")

		// then
		require.NoError(t, err)
		repository := parsed.(*cvs.Repository)
		assert.Equal(t, "secret", repository.Password)
		assert.Equal(t, 2401, repository.Port)
		assert.Equal(t, "pserver:anoncvs@cvs.apache.org:2401:/home/cvspublic:maven", repository.ConnectionURL(":"))
		assert.Equal(t, ":pserver:anoncvs:secret@cvs.apache.org:2401/home/cvspublic", repository.CvsRoot())
	})

	t.Run("should parse a local repository with the pipe delimiter", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := cvs.ParseRepository("local|/var/cvs/root|module", "|")

		// then
		require.NoError(t, err)
		repository := parsed.(*cvs.Repository)
		assert.True(t, repository.IsLocal())
		assert.Equal(t, "/var/cvs/root", repository.Path)
		assert.Equal(t, "local|/var/cvs/root|module", repository.ConnectionURL("|"))
		assert.Equal(t, ":local:/var/cvs/root", repository.CvsRoot())
	})

	t.Run("should not render a user that was not given", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := cvs.ParseRepository("ext:cvs.example.com:/cvs:app", ":")

		// then
		require.NoError(t, err)
		assert.Equal(t, "ext:cvs.example.com:/cvs:app", parsed.ConnectionURL(":"))
	})

	malformed := []struct {
		name     string
		specific string
	}{
		{name: "should reject too few tokens", specific: "pserver:host"},
		{name: "should reject an unknown access method", specific: "bogus:host:/cvs:module"},
		{name: "should reject a relative repository path", specific: "pserver:host:cvs:module"},
		{name: "should reject an empty module", specific: "pserver:host:/cvs:"},
		{name: "should reject too many tokens for the local method", specific: "local:/cvs:extra:module"},
		{name: "should reject a non numeric port", specific: "pserver:host:abc:/cvs:module"},
		{name: "should reject an empty host", specific: "pserver:user@:/cvs:module"},
	}
	for _, tc := range malformed {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			parsed, err := cvs.ParseRepository(tc.specific, ":")

			// then
			require.Error(t, err)
			assert.Nil(t, parsed)
			assert.ErrorIs(t, err, entities.ErrInvalidScmURL)
		})
	}
}
