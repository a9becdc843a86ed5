package cvs

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

const cvsDateLayout = "2006-01-02 15:04:05 -0700"

// Commands builds the cvs pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

// cvs starts an invocation with the global options: compression for remote roots, no
// ~/.cvsrc unless configured, the CVSROOT and quiet output.
func (it *Commands) cvs(request *entities.CommandRequest, dir string, args ...string) *entities.Invocation {
	repository := Of(request)
	inv := it.tool.Command(dir)
	if !repository.IsLocal() {
		level := it.tool.Settings.IntOption("compression_level", 3)
		inv.ArgIf(level > 0, "-z"+strconv.Itoa(level))
	}
	inv.ArgIf(!it.tool.Settings.BoolOption("use_cvsrc", false), "-f")
	inv.Arg("-d", repository.CvsRoot()).Secret(repository.Password)
	return inv.Arg(args...)
}

func (it *Commands) single(
	command entities.CommandType,
	build scmcore.BuildFunc,
	consumer scmcore.ConsumerFunc,
) *scmcore.Pipeline {
	return scmcore.Single(entities.ProviderCVS, command, build, consumer)
}

// versionArgs selects a tag or branch with -r; revisions are per file in cvs, so a revision
// is passed the same way.
func versionArgs(version *entities.ScmVersion) []string {
	if version.IsSet() {
		return []string{"-r", version.Name}
	}
	return nil
}

func fixedFiles(status entities.ScmFileStatus) scmcore.ConsumerFunc {
	return func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
		return scmcore.NewFixedFilesConsumer(scmcore.Files(request), status)
	}
}

func updateConsumer(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
	return NewUpdateConsumer()
}

func (it *Commands) Add() *scmcore.Pipeline {
	return it.single(entities.CommandAdd,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.cvs(request, request.BaseDir(), "-q", "add")
			inv.ArgIf(request.Parameters.Binary, "-kb")
			if request.Parameters.Message != "" {
				inv.Arg("-m", request.Parameters.Message)
			}
			return inv.Arg(scmcore.Files(request)...), nil
		},
		fixedFiles(entities.StatusAdded),
	)
}

func (it *Commands) Remove() *scmcore.Pipeline {
	return it.single(entities.CommandRemove,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.cvs(request, request.BaseDir(), "-q", "remove", "-f").Arg(scmcore.Files(request)...), nil
		},
		fixedFiles(entities.StatusDeleted),
	)
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.single(entities.CommandStatus,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.cvs(request, request.BaseDir(), "-n", "-q", "update", "-d").Arg(scmcore.Files(request)...), nil
		},
		updateConsumer,
	)
}

func (it *Commands) Update() *scmcore.Pipeline {
	return it.single(entities.CommandUpdate,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.cvs(request, request.BaseDir(), "-q", "update", "-d")
			version := request.Parameters.Version
			if version.IsSet() {
				inv.Arg(versionArgs(version)...)
			} else {
				inv.Arg("-A")
			}
			return inv.Arg(scmcore.Files(request)...), nil
		},
		updateConsumer,
	)
}

// CheckOut runs in the parent directory and names the checkout after the base directory.
func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.single(entities.CommandCheckOut,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			baseDir := request.BaseDir()
			inv := it.cvs(request, filepath.Dir(baseDir), "-q", "checkout")
			inv.ArgIf(!request.Parameters.Recursive && !request.FileSet.IsEmpty(), "-l")
			inv.Arg(versionArgs(request.Parameters.Version)...)
			return inv.Arg("-d", filepath.Base(baseDir), Of(request).Module), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return NewCheckOutConsumer(entities.StatusCheckedOut)
		},
	)
}

func (it *Commands) CheckIn() *scmcore.Pipeline {
	pipeline := it.single(entities.CommandCheckIn,
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireMessage(request); err != nil {
				return nil, err
			}
			messageFile, err := scmcore.MessageFile(session, request.Parameters.Message)
			if err != nil {
				return nil, err
			}
			inv := it.cvs(request, request.BaseDir(), "commit", "-R", "-F", messageFile)
			inv.Arg(versionArgs(request.Parameters.Branch)...)
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return NewCheckInConsumer()
		},
	)
	// newer servers print the per file report on stderr
	pipeline.Steps[0].ParseStderr = true
	return pipeline
}

func (it *Commands) tag(command entities.CommandType, branch bool) *scmcore.Pipeline {
	return it.single(command,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			if request.Parameters.Remote {
				inv := it.cvs(request, request.BaseDir(), "-q", "rtag")
				inv.ArgIf(branch, "-b")
				inv.Arg(versionArgs(request.Parameters.Version)...)
				return inv.Arg(request.Parameters.Name, Of(request).Module), nil
			}
			inv := it.cvs(request, request.BaseDir(), "-q", "tag", "-F", "-c")
			inv.ArgIf(branch, "-b")
			return inv.Arg(request.Parameters.Name).Arg(scmcore.Files(request)...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return NewTagConsumer(entities.StatusTagged)
		},
	)
}

func (it *Commands) Tag() *scmcore.Pipeline {
	return it.tag(entities.CommandTag, false)
}

func (it *Commands) Branch() *scmcore.Pipeline {
	return it.tag(entities.CommandBranch, true)
}

func (it *Commands) Untag() *scmcore.Pipeline {
	return it.single(entities.CommandUntag,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			inv := it.cvs(request, request.BaseDir(), "-q", "tag", "-d", request.Parameters.Name)
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return NewTagConsumer(entities.StatusDeleted)
		},
	)
}

func (it *Commands) Diff() *scmcore.Pipeline {
	return it.single(entities.CommandDiff,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.cvs(request, request.BaseDir(), "-q", "diff", "-u", "-N")
			inv.Arg(versionArgs(params.StartVersion)...)
			inv.Arg(versionArgs(params.EndVersion)...)
			inv.ArgIf(params.IgnoreWhitespace, "-w")
			// cvs diff exits with 1 when differences were found
			return inv.Arg(scmcore.Files(request)...).AcceptExitCodes(0, 1), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return scmcore.NewUnifiedDiffConsumer()
		},
	)
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.single(entities.CommandChangeLog,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.cvs(request, request.BaseDir(), "-q", "log")
			switch start := params.ResolvedStartDate(time.Now()); {
			case params.StartVersion.IsSet():
				end := lo.Ternary(params.EndVersion.IsSet(), params.EndVersion.NameOrEmpty(), "")
				inv.Arg("-r" + params.StartVersion.Name + "::" + end)
			case start != nil:
				end := ""
				if params.EndDate != nil {
					end = params.EndDate.Format(cvsDateLayout)
				}
				inv.Arg("-d", start.Format(cvsDateLayout)+"<"+end)
			}
			if params.Branch.IsSet() {
				inv.Arg("-r" + params.Branch.Name)
			}
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewChangeLogConsumer(request)
		},
	)
}

func (it *Commands) Blame() *scmcore.Pipeline {
	return it.single(entities.CommandBlame,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.cvs(request, request.BaseDir(), "-q", "annotate", "-F")
			inv.Arg(versionArgs(request.Parameters.Version)...)
			return inv.Arg(scmcore.Files(request)[0]), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewBlameConsumer() },
	)
}

func (it *Commands) List() *scmcore.Pipeline {
	return it.single(entities.CommandList,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.cvs(request, "", "-q", "rls")
			inv.ArgIf(request.Parameters.Recursive, "-R")
			inv.Arg(versionArgs(request.Parameters.Version)...)
			module := Of(request).Module
			if request.FileSet.IsEmpty() {
				return inv.Arg(module), nil
			}
			return inv.Arg(lo.Map(scmcore.Files(request), func(f string, _ int) string { return module + "/" + f })...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewListConsumer() },
	)
}

func (it *Commands) Export() *scmcore.Pipeline {
	return it.single(entities.CommandExport,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			target := lo.Ternary(request.Parameters.OutputDirectory != "", request.Parameters.OutputDirectory, request.BaseDir())
			inv := it.cvs(request, filepath.Dir(target), "-q", "export")
			if version := request.Parameters.Version; version.IsSet() {
				inv.Arg(versionArgs(version)...)
			} else {
				inv.Arg("-D", "now")
			}
			return inv.Arg("-d", filepath.Base(target), Of(request).Module), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return NewCheckOutConsumer(entities.StatusAdded)
		},
	)
}
