package scmcore

import (
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

// Tool creates invocations of one backend executable, honouring its provider settings.
type Tool struct {
	Type       entities.ProviderType
	Executable string
	Settings   entities.ProviderSettings
	globalArgs []string
}

// NewTool resolves the executable and the extra global arguments of a backend.
func NewTool(settings *entities.Settings, providerType entities.ProviderType, defaultExecutable string) *Tool {
	providerSettings := settings.Provider(providerType)
	args, err := providerSettings.GlobalArguments()
	if err != nil {
		logger.Warnf("Ignoring the extra arguments of %s: %v", providerType, err)
	}
	return &Tool{
		Type:       providerType,
		Executable: providerSettings.ExecutableOr(defaultExecutable),
		Settings:   providerSettings,
		globalArgs: args,
	}
}

// Command starts an invocation in dir with the configured environment and global arguments.
func (t *Tool) Command(dir string, args ...string) *entities.Invocation {
	invocation := entities.NewInvocation(t.Executable).In(dir)
	invocation.Arg(t.globalArgs...)
	invocation.Arg(args...)
	for k, v := range t.Settings.Environment {
		invocation.WithEnv(k, v)
	}
	return invocation.Secret(t.Settings.Password)
}

// Spec describes the version command of the tool.
func (t *Tool) Spec(minimum string, versionArgs ...string) *repositories.ToolSpec {
	return &repositories.ToolSpec{Executable: t.Executable, VersionArgs: versionArgs, MinimumVersion: minimum}
}

// Credentials merges the URL credentials with the configured ones; the URL wins.
func (t *Tool) Credentials(repository *entities.ScmRepository) (user, password string) {
	auth := repository.Auth()
	user, password = auth.User, auth.Password
	if user == "" {
		user = t.Settings.Username
	}
	if password == "" {
		password = t.Settings.Password
	}
	return user, password
}
