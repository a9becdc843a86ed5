//go:build unit

package jazz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/jazz"
)

func TestParseRepository(t *testing.T) {
	t.Parallel()

	t.Run("should parse a workspace url with credentials", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := jazz.ParseRepository("alice;secret@https://rtc.example.com:9443/ccm:My Workspace", ":")

		// then
		require.NoError(t, err)
		repository := parsed.(*jazz.Repository)
		assert.Equal(t, "alice", repository.User)
		assert.Equal(t, "secret", repository.Password)
		assert.Equal(t, "https://rtc.example.com:9443/ccm", repository.RepositoryURI)
		assert.Equal(t, "https", repository.Protocol)
		assert.Equal(t, "rtc.example.com", repository.Host)
		assert.Equal(t, "9443", repository.Port)
		assert.Equal(t, "ccm", repository.Context)
		assert.Equal(t, "My Workspace", repository.Workspace)
		assert.Equal(t, "alice@https://rtc.example.com:9443/ccm:My Workspace", repository.ConnectionURL(":"))
	})

	t.Run("should round trip a url without user", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := jazz.ParseRepository("http://rtc.example.com/jazz|dev", "|")

		// then
		require.NoError(t, err)
		assert.Empty(t, parsed.(*jazz.Repository).Port)
		assert.Equal(t, "http://rtc.example.com/jazz|dev", parsed.ConnectionURL("|"))
	})

	malformed := []struct {
		name     string
		specific string
	}{
		{name: "should reject an empty user", specific: "@https://rtc.example.com/ccm|ws"},
		{name: "should reject a url without workspace delimiter", specific: "https://rtc.example.com/ccm"},
		{name: "should reject an empty workspace", specific: "https://rtc.example.com/ccm|"},
		{name: "should reject a foreign protocol", specific: "ftp://rtc.example.com/ccm|ws"},
		{name: "should reject a url without host", specific: "https:///ccm|ws"},
		{name: "should reject a url without scheme", specific: "rtc.example.com/ccm|ws"},
	}
	for _, tc := range malformed {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			parsed, err := jazz.ParseRepository(tc.specific, "|")

			// then
			require.Error(t, err)
			assert.Nil(t, parsed)
			assert.ErrorIs(t, err, entities.ErrInvalidScmURL)
		})
	}
}
