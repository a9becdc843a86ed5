package jazz

import (
	"strconv"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// Commands builds the "scm" (lscm) pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

func (it *Commands) pipeline(command entities.CommandType, steps ...scmcore.Step) *scmcore.Pipeline {
	return &scmcore.Pipeline{Provider: entities.ProviderJazz, Command: command, Steps: steps}
}

// scm starts "scm <verb...>" with the repository URI and the credentials.
func (it *Commands) scm(request *entities.CommandRequest, verb ...string) *entities.Invocation {
	inv := it.tool.Command(request.BaseDir(), verb...)
	inv.Arg("-r", Of(request).RepositoryURI)
	user, password := it.tool.Credentials(request.Repository)
	if user != "" {
		inv.Arg("-u", user)
	}
	if password != "" {
		inv.Arg("-P", password).Secret(password)
	}
	return inv
}

func (it *Commands) step(name string, build scmcore.BuildFunc, consumer scmcore.ConsumerFunc) scmcore.Step {
	return scmcore.Step{Name: name, Build: build, Consumer: consumer, FailOn: []string{"Problem running", "CRRTC"}}
}

func fixedFiles(status entities.ScmFileStatus) scmcore.ConsumerFunc {
	return func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
		return scmcore.NewFixedFilesConsumer(scmcore.Files(request), status)
	}
}

// component is the component listed by "list remotefiles"; it defaults to the workspace name.
func (it *Commands) component(request *entities.CommandRequest) string {
	return it.tool.Settings.Option("component", Of(request).Workspace)
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.pipeline(entities.CommandStatus, scmcore.Step{
		Name: "status",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			// status works on the sandbox and takes no repository URI
			inv := it.tool.Command(request.BaseDir(), "status", "--wide", "--xchange")
			user, password := it.tool.Credentials(request.Repository)
			if user != "" {
				inv.Arg("-u", user)
			}
			if password != "" {
				inv.Arg("-P", password).Secret(password)
			}
			return inv, nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewStatusConsumer() },
	})
}

// Add checks in unversioned files; jazz has no separate add.
func (it *Commands) Add() *scmcore.Pipeline {
	return it.pipeline(entities.CommandAdd, it.step("checkin",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.scm(request, "checkin").Arg(scmcore.Files(request)...), nil
		},
		fixedFiles(entities.StatusAdded),
	))
}

// CheckIn checks in the files and delivers the outgoing change sets to the flow target.
func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckIn,
		it.step("checkin",
			func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				if err := scmcore.RequireMessage(request); err != nil {
					return nil, err
				}
				inv := it.scm(request, "checkin", "--comment", request.Parameters.Message)
				return inv.Arg(request.FileSet.PathsOrDot()...), nil
			},
			func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
				if request.FileSet.IsEmpty() {
					return &scmcore.LineCollector{}
				}
				return scmcore.NewFixedFilesConsumer(scmcore.Files(request), entities.StatusCheckedIn)
			},
		),
		scmcore.Step{
			Name: "deliver",
			Skip: func(*entities.CommandRequest, *scmcore.Session) bool {
				return !it.tool.Settings.BoolOption("deliver", true)
			},
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.scm(request, "deliver", "-s", Of(request).Workspace), nil
			},
			FailOn: []string{"Problem running"},
		},
	)
}

// CheckOut loads the workspace into the base directory and reports the loaded files.
func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckOut, it.step("load",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.scm(request, "load", "--force", "-d", request.BaseDir(), Of(request).Workspace), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return &scmcore.LineFunc{OnApply: func(result *entities.ScmResult) {
				loaded, err := entities.NewFileSetWithPatterns(request.BaseDir(), nil, nil)
				if err != nil {
					logger.Warnf("Failed to list the loaded files: %v", err)
					return
				}
				for _, f := range loaded.Files() {
					result.AddFiles(entities.NewScmFile(f, entities.StatusCheckedOut))
				}
			}}
		},
	))
}

func (it *Commands) Update() *scmcore.Pipeline {
	return it.pipeline(entities.CommandUpdate, it.step("accept",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.scm(request, "accept", "-v", "--target", Of(request).Workspace), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewAcceptConsumer() },
	))
}

// Tag creates a snapshot of the workspace.
func (it *Commands) Tag() *scmcore.Pipeline {
	return it.pipeline(entities.CommandTag, it.step("snapshot",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			inv := it.scm(request, "create", "snapshot", "--name", request.Parameters.Name)
			if request.Parameters.Message != "" {
				inv.Arg("--description", request.Parameters.Message)
			}
			return inv.Arg(Of(request).Workspace), nil
		},
		fixedFiles(entities.StatusTagged),
	))
}

func (it *Commands) lock(command entities.CommandType, verb string, status entities.ScmFileStatus) *scmcore.Pipeline {
	return it.pipeline(command, it.step("lock "+verb,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.scm(request, "lock", verb, "-s", Of(request).Workspace)
			return inv.Arg(scmcore.Files(request)...), nil
		},
		fixedFiles(status),
	))
}

func (it *Commands) Edit() *scmcore.Pipeline {
	return it.lock(entities.CommandEdit, "acquire", entities.StatusEdited)
}

func (it *Commands) UnEdit() *scmcore.Pipeline {
	return it.lock(entities.CommandUnEdit, "release", entities.StatusCheckedIn)
}

func (it *Commands) Diff() *scmcore.Pipeline {
	return it.pipeline(entities.CommandDiff, scmcore.Step{
		Name: "diff",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.tool.Command(request.BaseDir(), "diff", "file")
			return inv.Arg(scmcore.Files(request)...).AcceptExitCodes(0, 1), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return scmcore.NewUnifiedDiffConsumer()
		},
	})
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.pipeline(entities.CommandChangeLog, it.step("list changesets",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.scm(request, "list", "changesets", "-w", Of(request).Workspace)
			if limit := request.Parameters.Limit; limit > 0 {
				inv.Arg("-m", strconv.Itoa(limit))
			}
			return inv, nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewChangeSetsConsumer(request)
		},
	))
}

func (it *Commands) Blame() *scmcore.Pipeline {
	return it.pipeline(entities.CommandBlame, it.step("annotate",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.scm(request, "annotate", scmcore.Files(request)[0]), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewBlameConsumer() },
	))
}

func (it *Commands) List() *scmcore.Pipeline {
	return it.pipeline(entities.CommandList, it.step("list remotefiles",
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.scm(request, "list", "remotefiles")
			inv.ArgIf(request.Parameters.Recursive, "--depth", "-")
			return inv.Arg(Of(request).Workspace, it.component(request)).Arg(scmcore.Files(request)...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewRemoteFilesConsumer() },
	))
}
