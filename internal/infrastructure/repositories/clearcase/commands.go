package clearcase

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// Commands builds the cleartool pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

func (it *Commands) pipeline(command entities.CommandType, steps ...scmcore.Step) *scmcore.Pipeline {
	return &scmcore.Pipeline{Provider: entities.ProviderClearCase, Command: command, Steps: steps}
}

func (it *Commands) cleartool(dir string, args ...string) *entities.Invocation {
	return it.tool.Command(dir, args...)
}

// ViewName is the view of the URL, the configured one, or one derived from the base directory.
func (it *Commands) ViewName(request *entities.CommandRequest) string {
	if name := Of(request).ViewName; name != "" {
		return name
	}
	if name := it.tool.Settings.Option("view", ""); name != "" {
		return name
	}
	return "scmforge-" + strings.ReplaceAll(filepath.Base(request.BaseDir()), " ", "_")
}

func quoted(pattern *regexp.Regexp, status entities.ScmFileStatus) scmcore.ConsumerFunc {
	return func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
		return NewQuotedConsumer(request.BaseDir(), pattern, status)
	}
}

func (it *Commands) single(command entities.CommandType, build scmcore.BuildFunc, consumer scmcore.ConsumerFunc) *scmcore.Pipeline {
	return it.pipeline(command, scmcore.Step{Name: string(command), Build: build, Consumer: consumer})
}

func comment(request *entities.CommandRequest) []string {
	if request.Parameters.Message == "" {
		return []string{"-nc"}
	}
	return []string{"-c", request.Parameters.Message}
}

// configSpecFile returns the config spec of the URL, writing a generated one for load rules.
func configSpecFile(request *entities.CommandRequest, session *scmcore.Session) (string, error) {
	repository := Of(request)
	if repository.ConfigSpecFile != "" {
		return repository.ConfigSpecFile, nil
	}
	return scmcore.MessageFile(session, repository.ConfigSpec(request.Parameters.Version))
}

// CheckOut creates a snapshot view in the base directory and loads it with the config spec.
func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckOut,
		scmcore.Step{
			Name: "mkview",
			Skip: func(request *entities.CommandRequest, _ *scmcore.Session) bool {
				_, err := os.Stat(filepath.Join(request.BaseDir(), "view.dat"))
				return err == nil
			},
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.cleartool(filepath.Dir(request.BaseDir()), "mkview", "-snapshot", "-tag", it.ViewName(request))
				if store := it.tool.Settings.Option("view_store", ""); store != "" {
					inv.Arg("-vws", filepath.Join(store, it.ViewName(request)+".vws"))
				}
				return inv.Arg(request.BaseDir()), nil
			},
		},
		scmcore.Step{
			Name: "setcs",
			Build: func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
				spec, err := configSpecFile(request, session)
				if err != nil {
					return nil, err
				}
				return it.cleartool(request.BaseDir(), "setcs", "-force", "-overwrite", spec), nil
			},
			Consumer: quoted(LoadingPattern, entities.StatusCheckedOut),
		},
	)
}

func (it *Commands) Update() *scmcore.Pipeline {
	return it.single(entities.CommandUpdate,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.cleartool(request.BaseDir(), "update", "-force", "-overwrite", "-log", os.DevNull), nil
		},
		quoted(LoadingPattern, entities.StatusUpdated),
	)
}

func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.single(entities.CommandCheckIn,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireMessage(request); err != nil {
				return nil, err
			}
			inv := it.cleartool(request.BaseDir(), "ci").Arg(comment(request)...).Arg("-identical")
			return inv.Arg(scmcore.Files(request)...), nil
		},
		quoted(CheckedInPattern, entities.StatusCheckedIn),
	)
}

func (it *Commands) Edit() *scmcore.Pipeline {
	return it.single(entities.CommandEdit,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.cleartool(request.BaseDir(), "co").Arg(comment(request)...).Arg(scmcore.Files(request)...), nil
		},
		quoted(CheckedOutPattern, entities.StatusEdited),
	)
}

func (it *Commands) UnEdit() *scmcore.Pipeline {
	return it.single(entities.CommandUnEdit,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.cleartool(request.BaseDir(), "unco", "-keep").Arg(scmcore.Files(request)...), nil
		},
		quoted(CancelledPattern, entities.StatusCheckedIn),
	)
}

// Status lists the files checked out in this view.
func (it *Commands) Status() *scmcore.Pipeline {
	return it.single(entities.CommandStatus,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.cleartool(request.BaseDir(), "lscheckout", "-cview", "-recurse", "-fmt", `%n\n`)
			return inv.Arg(request.FileSet.PathsOrDot()...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return scmcore.ListConsumer(entities.StatusModified, func(line string) string {
				if strings.TrimSpace(line) == "" {
					return ""
				}
				return scmcore.Relativize(request.BaseDir(), line)
			})
		},
	)
}

func (it *Commands) Add() *scmcore.Pipeline {
	return it.single(entities.CommandAdd,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.cleartool(request.BaseDir(), "mkelem").Arg(comment(request)...).Arg("-nco")
			inv.ArgIf(request.Parameters.Binary, "-eltype", "binary_delta_file")
			return inv.Arg(scmcore.Files(request)...), nil
		},
		quoted(CreatedPattern, entities.StatusAdded),
	)
}

func (it *Commands) Remove() *scmcore.Pipeline {
	return it.single(entities.CommandRemove,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.cleartool(request.BaseDir(), "rmname").Arg(comment(request)...).Arg(scmcore.Files(request)...), nil
		},
		quoted(RemovedPattern, entities.StatusDeleted),
	)
}

// Tag creates the label type when it is missing and applies it recursively.
func (it *Commands) Tag() *scmcore.Pipeline {
	return it.pipeline(entities.CommandTag,
		scmcore.Step{
			Name: "mklbtype",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				if err := scmcore.RequireName(request); err != nil {
					return nil, err
				}
				// an existing label type is reused
				return it.cleartool(request.BaseDir(), "mklbtype", "-nc", request.Parameters.Name).AcceptExitCodes(0, 1), nil
			},
		},
		scmcore.Step{
			Name: "mklabel",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.cleartool(request.BaseDir(), "mklabel", "-replace")
				inv.ArgIf(request.FileSet.IsEmpty() || request.Parameters.Recursive, "-recurse")
				return inv.Arg(request.Parameters.Name).Arg(request.FileSet.PathsOrDot()...), nil
			},
			Consumer: quoted(LabelPattern, entities.StatusTagged),
		},
	)
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.single(entities.CommandChangeLog,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.cleartool(request.BaseDir(), "lshistory", "-fmt", historyFormat, "-recurse", "-nco")
			if start := params.ResolvedStartDate(time.Now()); start != nil {
				inv.Arg("-since", start.Format("02-Jan-2006.15:04:05"))
			}
			if params.Branch.IsSet() {
				inv.Arg("-branch", params.Branch.Name)
			}
			return inv.Arg(request.FileSet.PathsOrDot()...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewChangeLogConsumer(request)
		},
	)
}

func (it *Commands) Blame() *scmcore.Pipeline {
	return it.single(entities.CommandBlame,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			file := scmcore.Files(request)[0]
			if version := request.Parameters.Version; version.IsSet() {
				file += "@@" + version.Name
			}
			return it.cleartool(request.BaseDir(), "annotate", "-out", "-", "-nheader",
				"-fmt", annotateFormat, "-rmfmt", annotateFormat, file), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewBlameConsumer() },
	)
}
