//go:build unit

package starteam_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/starteam"
)

func TestParseRepository(t *testing.T) {
	t.Parallel()

	t.Run("should parse a folder url with credentials", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := starteam.ParseRepository("alice:secret@st.example.com:49201/Proj/View/src/main", ":")

		// then
		require.NoError(t, err)
		repository := parsed.(*starteam.Repository)
		assert.Equal(t, "st.example.com", repository.Host)
		assert.Equal(t, 49201, repository.Port)
		assert.Equal(t, "Proj", repository.Project)
		assert.Equal(t, "View", repository.View)
		assert.Equal(t, "src/main", repository.Folder)
		assert.Equal(t, "alice@st.example.com:49201/Proj/View/src/main", repository.ConnectionURL(":"))
		assert.Equal(t, "alice:secret@st.example.com:49201/Proj/View/src/main", repository.ProjectURL("alice", "secret"))
		assert.Equal(t, "bob@st.example.com:49201/Proj/View/src/main", repository.ProjectURL("bob", ""))
	})

	t.Run("should round trip a view url without user", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := starteam.ParseRepository("st.example.com:49201/Proj/View", ":")

		// then
		require.NoError(t, err)
		assert.Equal(t, "st.example.com:49201/Proj/View", parsed.ConnectionURL(":"))
		assert.Equal(t, "st.example.com:49201/Proj/View", parsed.(*starteam.Repository).ProjectURL("", ""))
	})

	malformed := []struct {
		name     string
		specific string
	}{
		{name: "should reject a url without project", specific: "st.example.com:49201"},
		{name: "should reject a url without port", specific: "st.example.com/Proj/View"},
		{name: "should reject an empty host", specific: ":49201/Proj/View"},
		{name: "should reject a non numeric port", specific: "st.example.com:abc/Proj/View"},
		{name: "should reject an empty user", specific: "@st.example.com:49201/Proj/View"},
		{name: "should reject a url without view", specific: "st.example.com:49201/Proj"},
	}
	for _, tc := range malformed {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			parsed, err := starteam.ParseRepository(tc.specific, ":")

			// then
			require.Error(t, err)
			assert.Nil(t, parsed)
			assert.ErrorIs(t, err, entities.ErrInvalidScmURL)
		})
	}
}
