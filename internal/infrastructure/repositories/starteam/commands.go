package starteam

import (
	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// Commands builds the stcmd pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

// stcmd starts "stcmd <verb> -x -nologo -stop -p <url> -fp <basedir>".
func (it *Commands) stcmd(request *entities.CommandRequest, verb string, args ...string) *entities.Invocation {
	user, password := it.tool.Credentials(request.Repository)
	inv := it.tool.Command(request.BaseDir(), verb, "-x", "-nologo", "-stop")
	inv.Arg("-p", Of(request).ProjectURL(user, password)).Secret(password)
	return inv.Arg("-fp", request.BaseDir()).Arg(args...)
}

func (it *Commands) single(command entities.CommandType, build scmcore.BuildFunc, consumer scmcore.ConsumerFunc) *scmcore.Pipeline {
	return scmcore.Single(entities.ProviderStarteam, command, build, consumer)
}

func action(verb string, status entities.ScmFileStatus) scmcore.ConsumerFunc {
	return func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
		return NewActionConsumer(request.BaseDir(), verb, status)
	}
}

// scope selects the requested files, or every file recursively.
func scope(request *entities.CommandRequest) []string {
	if request.FileSet.IsEmpty() {
		return []string{"-is"}
	}
	return scmcore.Files(request)
}

func labelArgs(version *entities.ScmVersion) []string {
	if version.IsSet() {
		return []string{"-vl", version.Name}
	}
	return nil
}

func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.single(entities.CommandCheckOut,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.stcmd(request, "co", "-o", "-eol", "on").Arg(labelArgs(request.Parameters.Version)...)
			return inv.Arg(scope(request)...), nil
		},
		action("checked out", entities.StatusCheckedOut),
	)
}

// Update checks out the files that are out of date only.
func (it *Commands) Update() *scmcore.Pipeline {
	return it.single(entities.CommandUpdate,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.stcmd(request, "co", "-filter", "O", "-eol", "on").Arg(labelArgs(request.Parameters.Version)...)
			return inv.Arg(scope(request)...), nil
		},
		action("checked out", entities.StatusUpdated),
	)
}

func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.single(entities.CommandCheckIn,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireMessage(request); err != nil {
				return nil, err
			}
			inv := it.stcmd(request, "ci", "-f", "NCI", "-r", request.Parameters.Message)
			return inv.Arg(scope(request)...), nil
		},
		action("checked in", entities.StatusCheckedIn),
	)
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.single(entities.CommandStatus,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.stcmd(request, "list").Arg(scope(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewStatusConsumer(request.BaseDir())
		},
	)
}

func (it *Commands) Add() *scmcore.Pipeline {
	return it.single(entities.CommandAdd,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.stcmd(request, "add")
			if request.Parameters.Message != "" {
				inv.Arg("-d", request.Parameters.Message)
			}
			return inv.Arg(scmcore.Files(request)...), nil
		},
		action("added", entities.StatusAdded),
	)
}

func (it *Commands) Remove() *scmcore.Pipeline {
	return it.single(entities.CommandRemove,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.stcmd(request, "remove").Arg(scmcore.Files(request)...), nil
		},
		action("removed", entities.StatusDeleted),
	)
}

func (it *Commands) Tag() *scmcore.Pipeline {
	return it.single(entities.CommandTag,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			inv := it.stcmd(request, "label", "-nl", request.Parameters.Name)
			if request.Parameters.Message != "" {
				inv.Arg("-d", request.Parameters.Message)
			}
			return inv.Arg("-b"), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return scmcore.NewFixedFilesConsumer(scmcore.Files(request), entities.StatusTagged)
		},
	)
}

func (it *Commands) Edit() *scmcore.Pipeline {
	return it.single(entities.CommandEdit,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.stcmd(request, "lck").Arg(scmcore.Files(request)...), nil
		},
		action("locked", entities.StatusEdited),
	)
}

func (it *Commands) UnEdit() *scmcore.Pipeline {
	return it.single(entities.CommandUnEdit,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.stcmd(request, "unlck").Arg(scmcore.Files(request)...), nil
		},
		action("unlocked", entities.StatusCheckedIn),
	)
}

func (it *Commands) Diff() *scmcore.Pipeline {
	return it.single(entities.CommandDiff,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.stcmd(request, "diff").Arg(labelArgs(params.StartVersion)...).Arg(labelArgs(params.EndVersion)...)
			inv.ArgIf(params.IgnoreWhitespace, "-w")
			return inv.Arg(scope(request)...).AcceptExitCodes(0, 1), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return scmcore.NewUnifiedDiffConsumer()
		},
	)
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.single(entities.CommandChangeLog,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.stcmd(request, "hist").Arg(scope(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewChangeLogConsumer(request)
		},
	)
}
