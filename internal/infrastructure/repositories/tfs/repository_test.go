//go:build unit

package tfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/tfs"
)

func TestParseRepository(t *testing.T) {
	t.Parallel()

	t.Run("should parse credentials, policies and server path", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := tfs.ParseRepository("alice;secret@https://tfs.example.com:8080/tfs|false|ws1|$/Product/Main/", "|")

		// then
		require.NoError(t, err)
		repository := parsed.(*tfs.Repository)
		assert.Equal(t, "alice", repository.User)
		assert.Equal(t, "secret", repository.Password)
		assert.Equal(t, "https://tfs.example.com:8080/tfs", repository.ServerURL)
		assert.False(t, repository.CheckinPolicies)
		assert.Equal(t, "ws1", repository.Workspace)
		assert.Equal(t, "$/Product/Main", repository.ServerPath)
		assert.Equal(t, "$/Product/Main/src/a.txt", repository.Item("src/a.txt"))
		assert.Equal(t, "alice@https://tfs.example.com:8080/tfs|false|ws1|$/Product/Main", repository.ConnectionURL("|"))
	})

	t.Run("should not take the port for the policies flag", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := tfs.ParseRepository("http://tfs.example.com:8080:ws1:$/Product", ":")

		// then
		require.NoError(t, err)
		repository := parsed.(*tfs.Repository)
		assert.Equal(t, "http://tfs.example.com:8080", repository.ServerURL)
		assert.True(t, repository.CheckinPolicies)
		assert.Equal(t, "http://tfs.example.com:8080::ws1:$/Product", repository.ConnectionURL(":"))
	})

	t.Run("should parse its own connection url back", func(t *testing.T) {
		t.Parallel()

		// given
		first, err := tfs.ParseRepository("http://tfs.example.com:8080:ws1:$/Product", ":")
		require.NoError(t, err)

		// when
		second, err := tfs.ParseRepository(first.ConnectionURL(":"), ":")

		// then
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	malformed := []struct {
		name     string
		specific string
	}{
		{name: "should reject a url without server path", specific: "https://tfs.example.com/tfs|ws1"},
		{name: "should reject an empty workspace", specific: "https://tfs.example.com/tfs||$/Product"},
		{name: "should reject an empty user", specific: "@https://tfs.example.com/tfs|ws1|$/Product"},
		{name: "should reject a foreign protocol", specific: "ftp://tfs.example.com|ws1|$/Product"},
		{name: "should reject a server without scheme", specific: "tfs.example.com|ws1|$/Product"},
	}
	for _, tc := range malformed {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			parsed, err := tfs.ParseRepository(tc.specific, "|")

			// then
			require.Error(t, err)
			assert.Nil(t, parsed)
			assert.ErrorIs(t, err, entities.ErrInvalidScmURL)
		})
	}
}
