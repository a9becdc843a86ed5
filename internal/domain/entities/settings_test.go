//go:build unit

package entities_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewSettings(t *testing.T) {
	t.Parallel()

	t.Run("should load a yaml config", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "scmforge.yaml", `
timeout: 30s
encoding: latin1
author:
  name: Jane Doe
  email: jane@example.com
providers:
  cvs:
    executable: /opt/cvs/bin/cvs
    arguments: "-T '/tmp/cvs tmp'"
    options:
      compression_level: 9
      use_cvsrc: true
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, settings.Timeout)
		assert.Equal(t, "latin1", settings.Encoding)
		assert.Equal(t, "Jane Doe", settings.Author.Name)
		cvs := settings.Provider(entities.ProviderCVS)
		assert.Equal(t, "/opt/cvs/bin/cvs", cvs.ExecutableOr("cvs"))
		assert.Equal(t, 9, cvs.IntOption("compression_level", 3))
		assert.True(t, cvs.BoolOption("use_cvsrc", false))
		args, err := cvs.GlobalArguments()
		require.NoError(t, err)
		assert.Equal(t, []string{"-T", "/tmp/cvs tmp"}, args)
	})

	t.Run("should fall back to option defaults", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.NewDefaultSettings()

		// when
		svn := settings.Provider(entities.ProviderSVN)

		// then
		assert.Equal(t, "svn", svn.ExecutableOr("svn"))
		assert.Equal(t, 3, svn.IntOption("compression_level", 3))
		assert.Equal(t, "default", svn.Option("config_dir", "default"))
	})

	t.Run("should read a password from a file", func(t *testing.T) {
		t.Parallel()

		// given
		secret := writeConfig(t, "secret.txt", "file-password\n")
		path := writeConfig(t, "scmforge.yml", "providers:\n  svn:\n    password: "+secret+"\n")

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "file-password", settings.Provider(entities.ProviderSVN).Password)
	})

	t.Run("should reject an unknown provider", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "scmforge.yaml", "providers:\n  darcs: {}\n")

		// when
		_, err := entities.NewSettings(path)

		// then
		require.ErrorIs(t, err, entities.ErrUnknownProvider)
	})

	t.Run("should reject a negative timeout", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "scmforge.yaml", "timeout: -1s\n")

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
	})

	t.Run("should load an hcl config", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "scmforge.hcl", `
timeout = "2m"
verbose = true

author {
  name  = "Jane Doe"
  email = "jane@example.com"
}

provider "perforce" {
  executable = "/usr/local/bin/p4"
  options = {
    client = "ci-client"
  }
  environment = {
    P4CHARSET = "utf8"
  }
}
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, 2*time.Minute, settings.Timeout)
		assert.True(t, settings.Verbose)
		perforce := settings.Provider(entities.ProviderPerforce)
		assert.Equal(t, "/usr/local/bin/p4", perforce.Executable)
		assert.Equal(t, "ci-client", perforce.Option("client", ""))
		assert.Equal(t, map[string]string{"P4CHARSET": "utf8"}, perforce.Environment)
	})
}

// Not parallel: the environment is process wide.
func TestNewSettings_Environment(t *testing.T) {
	t.Run("should expand environment placeholders in yaml passwords", func(t *testing.T) {
		// given
		t.Setenv("SCMFORGE_TEST_SVN_PASSWORD", "from-env")
		path := writeConfig(t, "scmforge.yaml", "providers:\n  svn:\n    password: ${SCMFORGE_TEST_SVN_PASSWORD}\n")

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "from-env", settings.Provider(entities.ProviderSVN).Password)
	})

	t.Run("should expose the environment to hcl expressions", func(t *testing.T) {
		// given
		t.Setenv("SCMFORGE_TEST_CVS_PASSWORD", "hcl-env")
		path := writeConfig(t, "scmforge.hcl", "provider \"cvs\" {\n  password = env.SCMFORGE_TEST_CVS_PASSWORD\n}\n")

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "hcl-env", settings.Provider(entities.ProviderCVS).Password)
	})
}
