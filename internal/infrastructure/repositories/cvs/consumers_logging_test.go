//go:build unit

package cvs_test

import (
	"strings"
	"testing"

	logger "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/cvs"
	doubles "github.com/rios0rios0/scmforge/test/infrastructure/repositorydoubles"
)

// warningsAbout returns the warnings that quote line.
func warningsAbout(hook *logtest.Hook, line string) int {
	count := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logger.WarnLevel && strings.Contains(entry.Message, line) {
			count++
		}
	}
	return count
}

//nolint:paralleltest // the hook is installed on the global logger
func TestConsumersWarnAboutUnparseableLines(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(func() { logger.StandardLogger().ReplaceHooks(make(logger.LevelHooks)) })

	t.Run("should warn about an update line without a known status", func(t *testing.T) {
		// given
		consumer := cvs.NewUpdateConsumer()

		// when
		result := doubles.Apply(consumer, "U a.txt\nZ garbled-update-line")

		// then
		assert.Equal(t, []string{"a.txt"}, doubles.Paths(result))
		assert.Equal(t, 1, warningsAbout(hook, "Z garbled-update-line"))
	})

	t.Run("should warn about an annotate line that does not match", func(t *testing.T) {
		// given
		consumer := cvs.NewBlameConsumer()

		// when
		result := doubles.Apply(consumer, "1.1 (anoncvs 12-Jun-09): hello\nnot an annotation")

		// then
		assert.Len(t, result.Blame, 1)
		assert.Equal(t, 1, warningsAbout(hook, "not an annotation"))
	})

	t.Run("should stay quiet about blank lines", func(t *testing.T) {
		// given
		consumer := cvs.NewBlameConsumer()
		before := len(hook.AllEntries())

		// when
		doubles.Apply(consumer, "\n   \n")

		// then
		assert.Len(t, hook.AllEntries(), before)
	})
}
