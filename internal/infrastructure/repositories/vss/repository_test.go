//go:build unit

package vss_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/vss"
)

func TestParseRepository(t *testing.T) {
	t.Parallel()

	t.Run("should parse a pipe delimited url and hide the password", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := vss.ParseRepository("alice|secret@//fileserver/vss|$/Product/Core", "|")

		// then
		require.NoError(t, err)
		repository := parsed.(*vss.Repository)
		assert.Equal(t, "alice", repository.User)
		assert.Equal(t, "secret", repository.Password)
		assert.Equal(t, "//fileserver/vss", repository.VssDir)
		assert.Equal(t, "$/Product/Core", repository.Project)
		assert.Equal(t, "$/Product/Core/src/a.txt", repository.Item("src/a.txt"))
		assert.Equal(t, "alice@//fileserver/vss|$/Product/Core", repository.ConnectionURL("|"))
	})

	t.Run("should split on the last delimiter before the project", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := vss.ParseRepository(`alice@C:\vss:$/Product/`, ":")

		// then
		require.NoError(t, err)
		repository := parsed.(*vss.Repository)
		assert.Equal(t, `C:\vss`, repository.VssDir)
		assert.Equal(t, "$/Product", repository.Project)
		assert.Empty(t, repository.Password)
	})

	malformed := []struct {
		name     string
		specific string
	}{
		{name: "should reject a url without user", specific: "//fileserver/vss|$/Product"},
		{name: "should reject an empty user", specific: "@//fileserver/vss|$/Product"},
		{name: "should reject a url without project", specific: "alice@//fileserver/vss"},
		{name: "should reject an empty database directory", specific: "alice@|$/Product"},
		{name: "should reject a project outside the root", specific: "alice@//fileserver/vss|$Product"},
	}
	for _, tc := range malformed {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			parsed, err := vss.ParseRepository(tc.specific, "|")

			// then
			require.Error(t, err)
			assert.Nil(t, parsed)
			assert.ErrorIs(t, err, entities.ErrInvalidScmURL)
		})
	}
}
