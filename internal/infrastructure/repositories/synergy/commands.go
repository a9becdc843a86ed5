package synergy

import (
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

const addressKey = "CCM_ADDR"

// Commands builds the ccm pipelines over one tool configuration. Every pipeline runs inside
// its own "ccm start" session that is stopped even when a step fails.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

// session wraps steps between "ccm start" and "ccm stop".
func (it *Commands) session(command entities.CommandType, steps ...scmcore.Step) *scmcore.Pipeline {
	all := append([]scmcore.Step{it.start(command)}, steps...)
	all = append(all, it.stop())
	return &scmcore.Pipeline{Provider: entities.ProviderSynergy, Command: command, Steps: all}
}

// precondition runs before "ccm start": a build error in a later step skips "ccm stop".
func precondition(command entities.CommandType, request *entities.CommandRequest) error {
	switch command {
	case entities.CommandCheckIn:
		return scmcore.RequireMessage(request)
	case entities.CommandTag:
		return scmcore.RequireName(request)
	default:
		return nil
	}
}

func (it *Commands) start(command entities.CommandType) scmcore.Step {
	return scmcore.Step{
		Name: "start",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := precondition(command, request); err != nil {
				return nil, err
			}
			repository := Of(request)
			user, password := it.tool.Credentials(request.Repository)
			inv := it.tool.Command(request.BaseDir(), "start", "-nogui", "-m", "-q", "-n", user)
			if password != "" {
				inv.Arg("-pw", password).Secret(password)
			}
			if repository.Engine != "" {
				inv.Arg("-s", repository.Engine)
			}
			if repository.Database != "" {
				inv.Arg("-d", repository.Database)
			}
			return inv.Arg("-r", it.tool.Settings.Option("role", "build_mgr")), nil
		},
		Consumer: func(_ *entities.CommandRequest, session *scmcore.Session) repositories.ResultConsumer {
			return NewAddressConsumer(func(address string) { session.Set(addressKey, address) })
		},
	}
}

func (it *Commands) stop() scmcore.Step {
	return scmcore.Step{
		Name:   "stop",
		Always: true,
		Build: func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			address := session.Get(addressKey)
			if address == "" {
				return nil, nil
			}
			return it.tool.Command(request.BaseDir(), "stop").WithEnv(addressKey, address), nil
		},
	}
}

// ccm starts a command bound to the session started by the first step.
func (it *Commands) ccm(request *entities.CommandRequest, session *scmcore.Session, args ...string) (*entities.Invocation, error) {
	address := session.Get(addressKey)
	if address == "" {
		return nil, errors.New("ccm start did not report a " + addressKey)
	}
	return it.tool.Command(request.BaseDir(), args...).WithEnv(addressKey, address), nil
}

func (it *Commands) step(name string, build scmcore.BuildFunc, consumer scmcore.ConsumerFunc) scmcore.Step {
	return scmcore.Step{Name: name, Build: build, Consumer: consumer, FailOn: []string{"Warning: Cannot", "Error:"}}
}

func fixedFiles(status entities.ScmFileStatus) scmcore.ConsumerFunc {
	return func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
		return scmcore.NewFixedFilesConsumer(scmcore.Files(request), status)
	}
}

// CheckOut copies the project into the base dir and reports the copied files.
func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.session(entities.CommandCheckOut, it.step("copy_to_file_system",
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			inv, err := it.ccm(request, session, "copy_to_file_system", "-path", request.BaseDir(), "-recurse")
			if err != nil {
				return nil, err
			}
			project := Of(request)
			spec := project.ProjectSpec()
			if version := request.Parameters.Version; version.IsSet() {
				spec = project.Project + project.Delimiter + version.Name
			}
			return inv.Arg(spec), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return &scmcore.LineFunc{OnApply: func(result *entities.ScmResult) {
				copied, err := entities.NewFileSetWithPatterns(request.BaseDir(), nil, nil)
				if err != nil {
					logger.Warnf("Failed to list the copied files: %v", err)
					return
				}
				for _, f := range copied.Files() {
					result.AddFiles(entities.NewScmFile(f, entities.StatusCheckedOut))
				}
			}}
		},
	))
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.session(entities.CommandStatus, it.step("query",
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			inv, err := it.ccm(request, session, "query", "-u", "-f", StatusFormat)
			if err != nil {
				return nil, err
			}
			return inv.Arg("is_member_of('" + Of(request).ProjectSpec() + "') and status='working'"), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewStatusConsumer(request)
		},
	))
}

func (it *Commands) files(command entities.CommandType, status entities.ScmFileStatus, args ...string) *scmcore.Pipeline {
	return it.session(command, it.step(args[0],
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			inv, err := it.ccm(request, session, args...)
			if err != nil {
				return nil, err
			}
			return inv.Arg(scmcore.Files(request)...), nil
		},
		fixedFiles(status),
	))
}

func (it *Commands) Edit() *scmcore.Pipeline {
	return it.files(entities.CommandEdit, entities.StatusEdited, "co")
}

func (it *Commands) UnEdit() *scmcore.Pipeline {
	return it.files(entities.CommandUnEdit, entities.StatusCheckedIn, "delete", "-replace")
}

func (it *Commands) Add() *scmcore.Pipeline {
	return it.files(entities.CommandAdd, entities.StatusAdded, "create")
}

func (it *Commands) Remove() *scmcore.Pipeline {
	return it.files(entities.CommandRemove, entities.StatusDeleted, "delete")
}

// CheckIn checks in the default task, which holds every object checked out in this session.
func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.session(entities.CommandCheckIn, it.step("task -checkin",
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			return it.ccm(request, session, "task", "-checkin", "default", "-comment", request.Parameters.Message)
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewCheckInConsumer(Of(request).Delimiter)
		},
	))
}

// Tag creates a baseline of the project.
func (it *Commands) Tag() *scmcore.Pipeline {
	return it.session(entities.CommandTag, it.step("baseline",
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			repository := Of(request)
			inv, err := it.ccm(request, session, "baseline", "-create", request.Parameters.Name)
			if err != nil {
				return nil, err
			}
			inv.Arg("-description", request.Parameters.Message)
			inv.Arg("-release", repository.Release, "-purpose", repository.Purpose)
			return inv.Arg("-project", repository.ProjectSpec(), "-subprojects"), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return &scmcore.LineFunc{OnApply: func(result *entities.ScmResult) {
				result.AddTag(request.Parameters.Name, "")
			}}
		},
	))
}

func (it *Commands) Update() *scmcore.Pipeline {
	return it.session(entities.CommandUpdate, it.step("update",
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			inv, err := it.ccm(request, session, "update", "-r", "-p")
			if err != nil {
				return nil, err
			}
			return inv.Arg(Of(request).ProjectSpec()), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewUpdateConsumer(Of(request).Delimiter)
		},
	))
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.session(entities.CommandChangeLog, it.step("query",
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			inv, err := it.ccm(request, session, "query", "-u", "-f", ChangeLogFormat)
			if err != nil {
				return nil, err
			}
			query := "is_member_of('" + Of(request).ProjectSpec() + "')"
			if start := request.Parameters.ResolvedStartDate(time.Now()); start != nil {
				query += " and create_time>time('" + start.Format("2006/01/02 15:04:05") + "')"
			}
			if end := request.Parameters.EndDate; end != nil {
				query += " and create_time<time('" + end.Format("2006/01/02 15:04:05") + "')"
			}
			return inv.Arg(query), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewChangeLogConsumer(request)
		},
	))
}
