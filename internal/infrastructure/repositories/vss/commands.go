package vss

import (
	"time"

	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// Commands builds the ss pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

func (it *Commands) single(command entities.CommandType, build scmcore.BuildFunc, consumer scmcore.ConsumerFunc) *scmcore.Pipeline {
	return scmcore.Single(entities.ProviderVSS, command, build, consumer)
}

// ss starts "ss <verb>" against the database of the URL with the credentials.
func (it *Commands) ss(request *entities.CommandRequest, verb string, args ...string) *entities.Invocation {
	repository := Of(request)
	user, password := it.tool.Credentials(request.Repository)
	inv := it.tool.Command(request.BaseDir(), verb).Arg(args...).WithEnv("SSDIR", repository.VssDir)
	credentials := user
	if password != "" {
		credentials += "," + password
	}
	return inv.Arg("-Y" + credentials).Secret(password)
}

// items maps the requested files into the project, or the project itself.
func items(request *entities.CommandRequest) []string {
	repository := Of(request)
	if request.FileSet.IsEmpty() {
		return []string{repository.Project}
	}
	return lo.Map(scmcore.Files(request), func(f string, _ int) string { return repository.Item(f) })
}

func recursive(request *entities.CommandRequest) []string {
	if request.FileSet.IsEmpty() {
		return []string{"-R"}
	}
	return nil
}

func versionArg(version *entities.ScmVersion) []string {
	switch {
	case version.IsTag():
		return []string{"-VL" + version.Name}
	case version.IsSet():
		return []string{"-V" + version.Name}
	default:
		return nil
	}
}

func comment(message string) string {
	return lo.Ternary(message == "", "-C-", "-C"+message)
}

func fixedFiles(status entities.ScmFileStatus) scmcore.ConsumerFunc {
	return func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
		return scmcore.NewFixedFilesConsumer(scmcore.Files(request), status)
	}
}

func (it *Commands) get(command entities.CommandType, status entities.ScmFileStatus) *scmcore.Pipeline {
	return it.single(command,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.ss(request, "Get", items(request)...).Arg(recursive(request)...)
			inv.Arg("-GL"+request.BaseDir(), "-GWR", "-I-N", "-W")
			return inv.Arg(versionArg(request.Parameters.Version)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewGetConsumer(Of(request).Project, status)
		},
	)
}

func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.get(entities.CommandCheckOut, entities.StatusCheckedOut)
}

func (it *Commands) Update() *scmcore.Pipeline {
	return it.get(entities.CommandUpdate, entities.StatusUpdated)
}

func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.single(entities.CommandCheckIn,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireMessage(request); err != nil {
				return nil, err
			}
			inv := it.ss(request, "Checkin", items(request)...).Arg(recursive(request)...)
			return inv.Arg("-GL"+request.BaseDir(), comment(request.Parameters.Message), "-I-Y"), nil
		},
		fixedFiles(entities.StatusCheckedIn),
	)
}

func (it *Commands) Edit() *scmcore.Pipeline {
	return it.single(entities.CommandEdit,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.ss(request, "Checkout", items(request)...).Arg("-GL"+request.BaseDir(), "-I-N"), nil
		},
		fixedFiles(entities.StatusEdited),
	)
}

func (it *Commands) UnEdit() *scmcore.Pipeline {
	return it.single(entities.CommandUnEdit,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.ss(request, "Undocheckout", items(request)...).Arg("-GL"+request.BaseDir(), "-I-Y"), nil
		},
		fixedFiles(entities.StatusCheckedIn),
	)
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.single(entities.CommandStatus,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.ss(request, "Diff", items(request)...).Arg(recursive(request)...)
			// Diff exits with 1 when it reports differences
			return inv.Arg("-GL"+request.BaseDir(), "-I-N").AcceptExitCodes(0, 1), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewStatusConsumer(Of(request).Project)
		},
	)
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.single(entities.CommandChangeLog,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.ss(request, "History", items(request)...).Arg(recursive(request)...).Arg("-I-N")
			if start := params.ResolvedStartDate(time.Now()); start != nil {
				end := time.Now()
				if params.EndDate != nil {
					end = *params.EndDate
				}
				inv.Arg("-Vd" + end.Format("1/2/06") + "~" + start.Format("1/2/06"))
			}
			return inv, nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewChangeLogConsumer(request)
		},
	)
}

func (it *Commands) Tag() *scmcore.Pipeline {
	return it.single(entities.CommandTag,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			inv := it.ss(request, "Label", items(request)...)
			return inv.Arg("-L"+request.Parameters.Name, comment(request.Parameters.Message), "-I-Y"), nil
		},
		fixedFiles(entities.StatusTagged),
	)
}
