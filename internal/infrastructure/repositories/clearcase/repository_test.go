//go:build unit

package clearcase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/clearcase"
)

func TestParseRepository(t *testing.T) {
	t.Parallel()

	t.Run("should parse a named view with a load rule", func(t *testing.T) {
		t.Parallel()

		// when
		parsed, err := clearcase.ParseRepository("myview:load /vob/proj", ":")

		// then
		require.NoError(t, err)
		repository := parsed.(*clearcase.Repository)
		assert.Equal(t, "myview", repository.ViewName)
		assert.Equal(t, "/vob/proj", repository.LoadDirectory)
		assert.Empty(t, repository.ConfigSpecFile)
		assert.Equal(t, "myview:load /vob/proj", repository.ConnectionURL(":"))
		assert.Equal(t, "element * CHECKEDOUT\nelement * /main/LATEST\nload /vob/proj\n", repository.ConfigSpec(nil))
		assert.Equal(t,
			"element * CHECKEDOUT\nelement * REL_1.0\nload /vob/proj\n",
			repository.ConfigSpec(entities.NewTagVersion("REL_1.0")),
		)
	})

	t.Run("should round trip config spec files and drive letters", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			specific  string
			delimiter string
			specFile  string
		}{
			{specific: "/etc/specs/config.cs", delimiter: ":", specFile: "/etc/specs/config.cs"},
			{specific: `C:\specs\config.cs`, delimiter: ":", specFile: `C:\specs\config.cs`},
			{specific: "view|/etc/specs/config.cs", delimiter: "|", specFile: "/etc/specs/config.cs"},
		}
		for _, tc := range cases {
			// when
			parsed, err := clearcase.ParseRepository(tc.specific, tc.delimiter)

			// then
			require.NoError(t, err, tc.specific)
			assert.Equal(t, tc.specFile, parsed.(*clearcase.Repository).ConfigSpecFile)
			assert.Equal(t, tc.specific, parsed.ConnectionURL(tc.delimiter))
		}
	})

	malformed := []struct {
		name     string
		specific string
	}{
		{name: "should reject an empty url", specific: ""},
		{name: "should reject a view name with spaces", specific: "my view:load /vob"},
		{name: "should reject a load rule without directory", specific: "view:load "},
		{name: "should reject an empty config spec", specific: "view:"},
	}
	for _, tc := range malformed {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			parsed, err := clearcase.ParseRepository(tc.specific, ":")

			// then
			require.Error(t, err)
			assert.Nil(t, parsed)
			assert.ErrorIs(t, err, entities.ErrInvalidScmURL)
		})
	}
}
