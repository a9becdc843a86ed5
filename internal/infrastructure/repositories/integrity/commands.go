package integrity

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// Commands builds the si pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

func (it *Commands) pipeline(command entities.CommandType, steps ...scmcore.Step) *scmcore.Pipeline {
	return &scmcore.Pipeline{Provider: entities.ProviderIntegrity, Command: command, Steps: steps}
}

func (it *Commands) single(command entities.CommandType, build scmcore.BuildFunc, consumer scmcore.ConsumerFunc) *scmcore.Pipeline {
	return it.pipeline(command, scmcore.Step{
		Name:        string(command),
		Build:       build,
		Consumer:    consumer,
		ParseStderr: true,
		FailOn:      []string{"MKS1", "Error"},
	})
}

// si starts "si <verb>" against the server of the URL in batch mode.
func (it *Commands) si(request *entities.CommandRequest, verb string) *entities.Invocation {
	repository := Of(request)
	user, password := it.tool.Credentials(request.Repository)
	inv := it.tool.Command(request.BaseDir(), verb, "--batch")
	inv.Arg("--hostname="+repository.Host, "--port="+strconv.Itoa(repository.Port), "--user="+user)
	if password != "" {
		inv.Arg("--password=" + password).Secret(password)
	}
	return inv
}

// sandbox is the project file of the sandbox rooted at the base dir.
func (it *Commands) sandbox(request *entities.CommandRequest) string {
	return filepath.Join(request.BaseDir(), it.tool.Settings.Option("sandbox_file", "project.pj"))
}

func (it *Commands) sandboxArg(request *entities.CommandRequest) string {
	return "--sandbox=" + it.sandbox(request)
}

func (it *Commands) project(request *entities.CommandRequest) string {
	return "--project=" + Of(request).ConfigPath
}

func description(request *entities.CommandRequest) string {
	return "--description=" + lo.Ternary(request.Parameters.Message == "", "scmforge", request.Parameters.Message)
}

func fixedFiles(status entities.ScmFileStatus) scmcore.ConsumerFunc {
	return func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
		return scmcore.NewFixedFilesConsumer(scmcore.Files(request), status)
	}
}

// Login opens the server connection that the following si commands reuse.
func (it *Commands) Login() *scmcore.Pipeline {
	return it.single(entities.CommandLogin,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.si(request, "connect")
			_, configured := it.tool.Credentials(request.Repository)
			if password := request.Parameters.Password; configured == "" && password != "" {
				inv.Arg("--password=" + password).Secret(password)
			}
			return inv, nil
		},
		nil,
	)
}

// CheckOut creates the sandbox, unless one exists, then lists its members.
func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckOut,
		scmcore.Step{
			Name: "createsandbox",
			Skip: func(request *entities.CommandRequest, _ *scmcore.Session) bool {
				_, err := os.Stat(it.sandbox(request))
				return err == nil
			},
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.si(request, "createsandbox").Arg(it.project(request), "--yes", "--recurse")
				if version := request.Parameters.Version; version.IsSet() {
					inv.Arg("--projectRevision=" + version.Name)
				}
				return inv.Arg(request.BaseDir()), nil
			},
			ParseStderr: true,
			FailOn:      []string{"MKS1"},
		},
		scmcore.Step{
			Name: "viewsandbox",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.si(request, "viewsandbox").Arg(it.sandboxArg(request), "--recurse")
				return inv.Arg("--fields=name,type", "--fieldsDelim="+fieldsDelimiter), nil
			},
			Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
				return NewSandboxConsumer(request.BaseDir(), entities.StatusCheckedOut)
			},
		},
	)
}

func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.single(entities.CommandCheckIn,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireMessage(request); err != nil {
				return nil, err
			}
			inv := it.si(request, "ci").Arg(it.sandboxArg(request), description(request), "--yes", "--nocloseCP")
			inv.ArgIf(request.FileSet.IsEmpty(), "--recurse")
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewMemberConsumer(request.BaseDir(), CheckedInPattern, entities.StatusCheckedIn)
		},
	)
}

func (it *Commands) Add() *scmcore.Pipeline {
	return it.single(entities.CommandAdd,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.si(request, "add").Arg(it.sandboxArg(request), description(request))
			return inv.Arg(scmcore.Files(request)...), nil
		},
		fixedFiles(entities.StatusAdded),
	)
}

func (it *Commands) Remove() *scmcore.Pipeline {
	return it.single(entities.CommandRemove,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.si(request, "drop").Arg(it.sandboxArg(request), "--noconfirm", "--delete")
			return inv.Arg(scmcore.Files(request)...), nil
		},
		fixedFiles(entities.StatusDeleted),
	)
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.single(entities.CommandStatus,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.si(request, "viewsandbox").Arg(it.sandboxArg(request), "--recurse", "--filter=changed:all")
			return inv.Arg("--fields=wfdelta,name", "--fieldsDelim="+fieldsDelimiter), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewStatusConsumer(request.BaseDir())
		},
	)
}

func (it *Commands) Update() *scmcore.Pipeline {
	return it.single(entities.CommandUpdate,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.si(request, "resync").Arg(it.sandboxArg(request), "--yes", "--overwriteChanged=false")
			inv.ArgIf(request.FileSet.IsEmpty(), "--recurse")
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewMemberConsumer(request.BaseDir(), ResyncPattern, entities.StatusUpdated)
		},
	)
}

func (it *Commands) Edit() *scmcore.Pipeline {
	return it.single(entities.CommandEdit,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.si(request, "co").Arg(it.sandboxArg(request), "--lock", "--yes")
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewMemberConsumer(request.BaseDir(), CheckedOutPattern, entities.StatusEdited)
		},
	)
}

func (it *Commands) UnEdit() *scmcore.Pipeline {
	return it.single(entities.CommandUnEdit,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.si(request, "revert").Arg(it.sandboxArg(request), "--overwriteChanged", "--yes")
			return inv.Arg(scmcore.Files(request)...), nil
		},
		fixedFiles(entities.StatusCheckedIn),
	)
}

// Tag checkpoints the project with the tag name as label.
func (it *Commands) Tag() *scmcore.Pipeline {
	return it.single(entities.CommandTag,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			inv := it.si(request, "checkpoint").Arg(it.project(request), "--label="+request.Parameters.Name)
			return inv.Arg(description(request)), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewCheckpointConsumer(request)
		},
	)
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.single(entities.CommandChangeLog,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.si(request, "rlog").Arg(it.project(request), "--recurse", "--noHeaderFormat", "--noTrailerFormat")
			inv.Arg("--format=" + RlogFormat)
			if start := params.ResolvedStartDate(time.Now()); start != nil {
				end := time.Now()
				if params.EndDate != nil {
					end = *params.EndDate
				}
				inv.Arg("--rfilter=daterange:" + start.Format(rlogLayout) + "-" + end.Format(rlogLayout))
			}
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewChangeLogConsumer(request)
		},
	)
}

// Mkdir creates a subproject for each requested directory.
func (it *Commands) Mkdir() *scmcore.Pipeline {
	return it.single(entities.CommandMkdir,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			projectFile := filepath.Base(it.sandbox(request))
			inv := it.si(request, "createsubproject").Arg(it.sandboxArg(request), "--createSubprojects")
			for _, dir := range scmcore.Files(request) {
				inv.Arg(filepath.Join(dir, projectFile))
			}
			return inv, nil
		},
		fixedFiles(entities.StatusAdded),
	)
}

func (it *Commands) Diff() *scmcore.Pipeline {
	return it.pipeline(entities.CommandDiff, scmcore.Step{
		Name: "diff",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.si(request, "diff").Arg(it.sandboxArg(request))
			inv.ArgIf(request.FileSet.IsEmpty(), "--recurse")
			return inv.Arg(scmcore.Files(request)...).AcceptExitCodes(0, 1), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return NewPatchConsumer()
		},
	})
}
