package tfs

import (
	"path"
	"strconv"
	"time"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// tfFailure is the exit code of tf for a failed operation; 1 means partial success.
const tfFailure = 100

// Commands builds the tf pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

func (it *Commands) pipeline(command entities.CommandType, steps ...scmcore.Step) *scmcore.Pipeline {
	return &scmcore.Pipeline{Provider: entities.ProviderTFS, Command: command, Steps: steps}
}

func (it *Commands) single(command entities.CommandType, build scmcore.BuildFunc, consumer scmcore.ConsumerFunc) *scmcore.Pipeline {
	return scmcore.Single(entities.ProviderTFS, command, build, consumer)
}

// tf starts "tf <verb>" with the credentials and without prompts.
func (it *Commands) tf(request *entities.CommandRequest, verb string, args ...string) *entities.Invocation {
	inv := it.tool.Command(request.BaseDir(), verb).Arg(args...).Arg("-noprompt")
	user, password := it.tool.Credentials(request.Repository)
	if user != "" {
		inv.Arg("-login:" + user + "," + password).Secret(password)
	}
	return inv
}

// server adds the collection url for commands that do not need a workspace.
func (it *Commands) server(request *entities.CommandRequest, verb string, args ...string) *entities.Invocation {
	return it.tf(request, verb, args...).Arg("-collection:" + Of(request).ServerURL)
}

func versionSpec(version *entities.ScmVersion) string {
	switch {
	case version.IsTag():
		return "-version:L" + version.Name
	case version.IsRevision():
		return "-version:C" + version.Name
	default:
		return ""
	}
}

func recursive(request *entities.CommandRequest) string {
	if request.FileSet.IsEmpty() {
		return "-recursive"
	}
	return ""
}

func comment(request *entities.CommandRequest) string {
	if request.Parameters.Message == "" {
		return ""
	}
	return "-comment:" + request.Parameters.Message
}

func fixedFiles(status entities.ScmFileStatus) scmcore.ConsumerFunc {
	return func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
		return scmcore.NewFixedFilesConsumer(scmcore.Files(request), status)
	}
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.single(entities.CommandStatus,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.tf(request, "status", "-workspace:"+Of(request).Workspace, "-format:detailed", recursive(request))
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewStatusConsumer(request.BaseDir())
		},
	)
}

func (it *Commands) getStep(status entities.ScmFileStatus) scmcore.Step {
	return scmcore.Step{
		Name: "get",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.tf(request, "get", recursive(request), versionSpec(request.Parameters.Version))
			inv.ArgIf(status == entities.StatusCheckedOut, "-force")
			return inv.Arg(request.FileSet.PathsOrDot()...).AcceptExitCodes(0, 1), nil
		},
		Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewGetConsumer(request.BaseDir(), status)
		},
	}
}

// CheckOut creates the workspace, maps the server path onto the base dir and gets it.
func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckOut,
		scmcore.Step{
			Name: "workspace",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.server(request, "workspace", "-new", "-comment:scmforge", Of(request).Workspace)
				// an existing workspace is reused
				return inv.AcceptExitCodes(0, tfFailure), nil
			},
		},
		scmcore.Step{
			Name: "workfold",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				repository := Of(request)
				inv := it.server(request, "workfold", "-map", "-workspace:"+repository.Workspace)
				return inv.Arg(repository.ServerPath, request.BaseDir()), nil
			},
		},
		it.getStep(entities.StatusCheckedOut),
	)
}

func (it *Commands) Update() *scmcore.Pipeline {
	return it.pipeline(entities.CommandUpdate, it.getStep(entities.StatusUpdated))
}

func (it *Commands) Add() *scmcore.Pipeline {
	return it.single(entities.CommandAdd,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.tf(request, "add").Arg(scmcore.Files(request)...), nil
		},
		fixedFiles(entities.StatusAdded),
	)
}

func (it *Commands) Edit() *scmcore.Pipeline {
	return it.single(entities.CommandEdit,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.tf(request, "checkout").Arg(scmcore.Files(request)...), nil
		},
		fixedFiles(entities.StatusEdited),
	)
}

func (it *Commands) UnEdit() *scmcore.Pipeline {
	return it.single(entities.CommandUnEdit,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.tf(request, "undo").Arg(scmcore.Files(request)...), nil
		},
		fixedFiles(entities.StatusCheckedIn),
	)
}

func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.single(entities.CommandCheckIn,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireMessage(request); err != nil {
				return nil, err
			}
			inv := it.tf(request, "checkin", comment(request), recursive(request))
			if !Of(request).CheckinPolicies {
				inv.Arg("-override:Checkin policies disabled for this repository")
			}
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewCheckInConsumer(request.BaseDir())
		},
	)
}

// Tag labels the server path.
func (it *Commands) Tag() *scmcore.Pipeline {
	return it.single(entities.CommandTag,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			repository := Of(request)
			inv := it.server(request, "label", request.Parameters.Name, repository.ServerPath, "-recursive", "-child:replace")
			return inv.Arg(comment(request)), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return &scmcore.LineFunc{OnApply: func(result *entities.ScmResult) {
				result.AddTag(request.Parameters.Name, "")
			}}
		},
	)
}

// BranchPath is the server path of a new branch: a sibling of the mapped path unless the
// "branches" option names a parent.
func (it *Commands) BranchPath(request *entities.CommandRequest) string {
	parent := it.tool.Settings.Option("branches", path.Dir(Of(request).ServerPath))
	return path.Join(parent, request.Parameters.Name)
}

func (it *Commands) Branch() *scmcore.Pipeline {
	return it.single(entities.CommandBranch,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			inv := it.server(request, "branch", Of(request).ServerPath, it.BranchPath(request), "-checkin")
			return inv.Arg(comment(request)), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			revision := scmcore.NewRevisionConsumer(changesetPattern)
			return &scmcore.LineFunc{
				OnLine: revision.ConsumeLine,
				OnApply: func(result *entities.ScmResult) {
					result.AddBranch(request.Parameters.Name, revision.Revision())
					revision.Apply(result)
				},
			}
		},
	)
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.single(entities.CommandChangeLog,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			target := Of(request).ServerPath
			if files := scmcore.Files(request); len(files) == 1 {
				target = Of(request).Item(files[0])
			}
			inv := it.server(request, "history", target, "-format:detailed", "-recursive")
			if params.Limit > 0 {
				inv.Arg("-stopafter:" + strconv.Itoa(params.Limit))
			}
			if start := params.ResolvedStartDate(time.Now()); start != nil {
				end := time.Now()
				if params.EndDate != nil {
					end = *params.EndDate
				}
				inv.Arg("-version:D" + start.Format("2006-01-02T15:04:05") + "~D" + end.Format("2006-01-02T15:04:05"))
			} else if params.StartVersion.IsSet() {
				inv.Arg("-version:C" + params.StartVersion.Name + "~" + endVersion(params.EndVersion))
			}
			return inv, nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewChangeLogConsumer(request)
		},
	)
}

// endVersion is the changeset upper bound, "T" (latest) when unset.
func endVersion(version *entities.ScmVersion) string {
	if version.IsSet() {
		return "C" + version.Name
	}
	return "T"
}

func (it *Commands) Diff() *scmcore.Pipeline {
	return it.single(entities.CommandDiff,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.tf(request, "diff", "-format:unified", recursive(request))
			return inv.Arg(request.FileSet.PathsOrDot()...).AcceptExitCodes(0, 1), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			consumer := scmcore.NewUnifiedDiffConsumer()
			consumer.PathOf = func(p string) string { return scmcore.Relativize(request.BaseDir(), p) }
			return consumer
		},
	)
}

func (it *Commands) List() *scmcore.Pipeline {
	return it.single(entities.CommandList,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			repository := Of(request)
			inv := it.server(request, "dir", repository.ServerPath)
			inv.ArgIf(request.Parameters.Recursive, "-recursive")
			return inv.Arg(versionSpec(request.Parameters.Version)), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewDirConsumer(Of(request).ServerPath)
		},
	)
}
