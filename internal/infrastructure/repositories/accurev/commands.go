package accurev

import (
	"time"

	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// Commands builds the accurev pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

func (it *Commands) pipeline(command entities.CommandType, steps ...scmcore.Step) *scmcore.Pipeline {
	return &scmcore.Pipeline{Provider: entities.ProviderAccuRev, Command: command, Steps: steps}
}

// accurev starts "accurev <verb> [-H host:port]" in the base directory.
func (it *Commands) accurev(request *entities.CommandRequest, verb string, args ...string) *entities.Invocation {
	inv := it.tool.Command(request.BaseDir(), verb)
	if server := Of(request).Server(); server != "" {
		inv.Arg("-H", server)
	}
	return inv.Arg(args...)
}

func comment(request *entities.CommandRequest) []string {
	if request.Parameters.Message == "" {
		return nil
	}
	return []string{"-c", request.Parameters.Message}
}

func (it *Commands) step(name string, build scmcore.BuildFunc, consumer scmcore.ConsumerFunc) scmcore.Step {
	return scmcore.Step{Name: name, Build: build, Consumer: consumer, FailOn: []string{"Not authenticated", "You are not in a directory"}}
}

func (it *Commands) Login() *scmcore.Pipeline {
	return it.pipeline(entities.CommandLogin, scmcore.Step{
		Name: "login",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			user, password := it.tool.Credentials(request.Repository)
			if request.Parameters.Password != "" {
				password = request.Parameters.Password
			}
			return it.accurev(request, "login", user, password).Secret(password), nil
		},
		FailOn: []string{"Bad password", "Unknown principal"},
	})
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.pipeline(entities.CommandStatus, it.step("stat",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.accurev(request, "stat", "-fx")
			if request.FileSet.IsEmpty() {
				return inv.Arg("-a"), nil
			}
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewStatConsumer() },
	))
}

func (it *Commands) Add() *scmcore.Pipeline {
	return it.pipeline(entities.CommandAdd, it.step("add",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.accurev(request, "add").Arg(comment(request)...).Arg(scmcore.Files(request)...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return NewElementConsumer(AddedPattern, entities.StatusAdded)
		},
	))
}

// Remove defuncts the elements; the removal reaches the stream on the next promote.
func (it *Commands) Remove() *scmcore.Pipeline {
	return it.pipeline(entities.CommandRemove, it.step("defunct",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.accurev(request, "defunct").Arg(comment(request)...).Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return scmcore.NewFixedFilesConsumer(scmcore.Files(request), entities.StatusDeleted)
		},
	))
}

// CheckIn keeps the modified files in the workspace and promotes them to the backing stream.
func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckIn,
		it.step("keep",
			func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				if err := scmcore.RequireMessage(request); err != nil {
					return nil, err
				}
				inv := it.accurev(request, "keep", "-c", request.Parameters.Message)
				if request.FileSet.IsEmpty() {
					return inv.Arg("-m"), nil
				}
				return inv.Arg(scmcore.Files(request)...), nil
			},
			nil,
		),
		it.step("promote",
			func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.accurev(request, "promote", "-c", request.Parameters.Message)
				if request.FileSet.IsEmpty() {
					return inv.Arg("-k"), nil
				}
				return inv.Arg(scmcore.Files(request)...), nil
			},
			func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewPromoteConsumer() },
		),
	)
}

// CheckOut populates the stream into the base directory without a workspace.
func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckOut, it.step("pop",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			repository := Of(request)
			inv := it.accurev(request, "pop", "-R", "-O", "-v", repository.Stream, "-L", request.BaseDir())
			if tx := transactionID(request.Parameters.Version); tx != "" {
				inv.Arg("-t", tx)
			}
			return inv.Arg(lo.Ternary(repository.ProjectPath != "", "/./"+repository.ProjectPath, ".")), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return NewElementConsumer(PopulatingPattern, entities.StatusCheckedOut)
		},
	))
}

func (it *Commands) Update() *scmcore.Pipeline {
	return it.pipeline(entities.CommandUpdate, it.step("update",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.accurev(request, "update")
			if tx := transactionID(request.Parameters.Version); tx != "" {
				inv.Arg("-t", tx)
			}
			return inv, nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return NewElementConsumer(UpdatingPattern, entities.StatusUpdated)
		},
	))
}

// Tag creates a snapshot of the stream at the requested transaction or now.
func (it *Commands) Tag() *scmcore.Pipeline {
	return it.pipeline(entities.CommandTag, it.step("mksnap",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			tx := lo.Ternary(transactionID(request.Parameters.Version) != "", transactionID(request.Parameters.Version), "now")
			return it.accurev(request, "mksnap", "-s", request.Parameters.Name, "-b", Of(request).Stream, "-t", tx), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return scmcore.NewFixedFilesConsumer(scmcore.Files(request), entities.StatusTagged)
		},
	))
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.pipeline(entities.CommandChangeLog, it.step("hist",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			stream := Of(request).Stream
			if params.Branch.IsSet() {
				stream = params.Branch.Name
			}
			inv := it.accurev(request, "hist", "-fx", "-s", stream)
			switch start := params.ResolvedStartDate(time.Now()); {
			case params.StartVersion.IsSet():
				end := lo.Ternary(params.EndVersion.IsSet(), params.EndVersion.NameOrEmpty(), "highest")
				inv.Arg("-t", end+"-"+params.StartVersion.Name)
			case start != nil:
				end := "now"
				if params.EndDate != nil {
					end = transactionTime(*params.EndDate)
				}
				inv.Arg("-t", end+"-"+transactionTime(*start))
			}
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewHistConsumer(request)
		},
	))
}

func (it *Commands) Info() *scmcore.Pipeline {
	return it.pipeline(entities.CommandInfo, it.step("info",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.accurev(request, "info"), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewInfoConsumer(request)
		},
	))
}
