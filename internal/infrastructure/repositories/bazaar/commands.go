package bazaar

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

const sessionExisting = "existing"

// Commands builds the bzr pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

func (it *Commands) pipeline(command entities.CommandType, steps ...scmcore.Step) *scmcore.Pipeline {
	return &scmcore.Pipeline{Provider: entities.ProviderBazaar, Command: command, Steps: steps}
}

func (it *Commands) bzr(dir string, args ...string) *entities.Invocation {
	return it.tool.Command(dir, args...)
}

func revisionArg(version *entities.ScmVersion) []string {
	switch {
	case version.IsTag():
		return []string{"-r", "tag:" + version.Name}
	case version.IsRevision():
		return []string{"-r", version.Name}
	default:
		return nil
	}
}

func (it *Commands) lsStep(status entities.ScmFileStatus) scmcore.Step {
	return scmcore.Step{
		Name: "ls",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.bzr(request.BaseDir(), "ls", "--versioned")
			inv.ArgIf(request.Parameters.Recursive || request.Command != entities.CommandList, "--recursive")
			inv.Arg(revisionArg(request.Parameters.Version)...)
			return inv.Arg(scmcore.Files(request)...), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return NewListConsumer(status)
		},
	}
}

func (it *Commands) pushStep() scmcore.Step {
	return scmcore.Step{
		Name: "push",
		Skip: func(request *entities.CommandRequest, _ *scmcore.Session) bool { return !request.ShouldPush() },
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			repository := Of(request)
			return it.bzr(request.BaseDir(), "push", repository.RemoteURL()).Secret(repository.Password), nil
		},
	}
}

func (it *Commands) Add() *scmcore.Pipeline {
	return it.pipeline(entities.CommandAdd, scmcore.Step{
		Name: "add",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.bzr(request.BaseDir(), "add")
			inv.ArgIf(!request.Parameters.Recursive, "--no-recurse")
			return inv.Arg(scmcore.Files(request)...), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewAddConsumer() },
	})
}

func (it *Commands) Remove() *scmcore.Pipeline {
	return it.pipeline(entities.CommandRemove, scmcore.Step{
		Name: "remove",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.bzr(request.BaseDir(), "remove").Arg(scmcore.Files(request)...), nil
		},
		Consumer:    func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewRemoveConsumer() },
		ParseStderr: true,
	})
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.pipeline(entities.CommandStatus, scmcore.Step{
		Name: "status",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.bzr(request.BaseDir(), "status").Arg(scmcore.Files(request)...), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewStatusConsumer() },
	})
}

func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckIn,
		scmcore.Step{
			Name: "commit",
			Build: func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
				if err := scmcore.RequireMessage(request); err != nil {
					return nil, err
				}
				messageFile, err := scmcore.MessageFile(session, request.Parameters.Message)
				if err != nil {
					return nil, err
				}
				return it.bzr(request.BaseDir(), "commit", "--file", messageFile).Arg(scmcore.Files(request)...), nil
			},
			Consumer:    func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewCheckInConsumer() },
			ParseStderr: true,
			FailOn:      []string{"bzr: ERROR"},
		},
		it.pushStep(),
	)
}

// CheckOut branches into the base directory, or pulls into an existing branch.
func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckOut,
		scmcore.Step{
			Name: "branch",
			Skip: func(request *entities.CommandRequest, session *scmcore.Session) bool {
				if _, err := os.Stat(filepath.Join(request.BaseDir(), ".bzr")); err == nil {
					session.Set(sessionExisting, "true")
					return true
				}
				return false
			},
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				repository := Of(request)
				inv := it.bzr(filepath.Dir(request.BaseDir()), "branch").Arg(revisionArg(request.Parameters.Version)...)
				return inv.Arg(repository.RemoteURL(), request.BaseDir()).Secret(repository.Password), nil
			},
		},
		scmcore.Step{
			Name: "pull",
			Skip: func(_ *entities.CommandRequest, session *scmcore.Session) bool { return session.Get(sessionExisting) == "" },
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				repository := Of(request)
				inv := it.bzr(request.BaseDir(), "pull", "--overwrite").Arg(revisionArg(request.Parameters.Version)...)
				return inv.Arg(repository.RemoteURL()).Secret(repository.Password), nil
			},
		},
		it.lsStep(entities.StatusCheckedOut),
	)
}

func (it *Commands) Update() *scmcore.Pipeline {
	return it.pipeline(entities.CommandUpdate,
		scmcore.Step{
			Name: "pull",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				repository := Of(request)
				inv := it.bzr(request.BaseDir(), "pull", "--verbose").Arg(revisionArg(request.Parameters.Version)...)
				return inv.Arg(repository.RemoteURL()).Secret(repository.Password), nil
			},
			Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
				return NewUpdateConsumer(entities.StatusUpdated)
			},
			ParseStderr: true,
		},
		scmcore.Step{
			Name: "revno",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.bzr(request.BaseDir(), "revno", "--tree"), nil
			},
			Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewRevnoConsumer() },
		},
	)
}

func (it *Commands) Diff() *scmcore.Pipeline {
	return it.pipeline(entities.CommandDiff, scmcore.Step{
		Name: "diff",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.bzr(request.BaseDir(), "diff")
			if params.StartVersion.IsSet() {
				rng := params.StartVersion.Name + ".." + params.EndVersion.NameOrEmpty()
				inv.Arg("-r", rng)
			}
			inv.ArgIf(params.IgnoreWhitespace, "--diff-options", "-w")
			// bzr diff exits with 1 when there are differences
			return inv.Arg(scmcore.Files(request)...).AcceptExitCodes(0, 1), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return scmcore.NewUnifiedDiffConsumer()
		},
	})
}

func (it *Commands) Tag() *scmcore.Pipeline {
	return it.pipeline(entities.CommandTag,
		scmcore.Step{
			Name: "tag",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				if err := scmcore.RequireName(request); err != nil {
					return nil, err
				}
				inv := it.bzr(request.BaseDir(), "tag").Arg(revisionArg(request.Parameters.Version)...)
				return inv.Arg(request.Parameters.Name), nil
			},
		},
		it.pushStep(),
		it.lsStep(entities.StatusTagged),
	)
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.pipeline(entities.CommandChangeLog, scmcore.Step{
		Name: "log",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.bzr(request.BaseDir(), "log", "--verbose", "--long")
			switch start := params.ResolvedStartDate(time.Now()); {
			case params.StartVersion.IsSet():
				inv.Arg("-r", params.StartVersion.Name+".."+params.EndVersion.NameOrEmpty())
			case start != nil:
				end := ""
				if params.EndDate != nil {
					end = "date:" + params.EndDate.Format("2006-01-02,15:04:05")
				}
				inv.Arg("-r", "date:"+start.Format("2006-01-02,15:04:05")+".."+end)
			}
			if params.Limit > 0 {
				inv.Arg("--limit", strconv.Itoa(params.Limit))
			}
			return inv.Arg(scmcore.Files(request)...), nil
		},
		Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewChangeLogConsumer(request)
		},
	})
}

func (it *Commands) Blame() *scmcore.Pipeline {
	return it.pipeline(entities.CommandBlame, scmcore.Step{
		Name: "annotate",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.bzr(request.BaseDir(), "annotate", "--all", "--long").Arg(revisionArg(request.Parameters.Version)...)
			return inv.Arg(scmcore.Files(request)[0]), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewBlameConsumer() },
	})
}

func (it *Commands) List() *scmcore.Pipeline {
	return it.pipeline(entities.CommandList, it.lsStep(entities.StatusCheckedIn))
}

func (it *Commands) Info() *scmcore.Pipeline {
	return it.pipeline(entities.CommandInfo, scmcore.Step{
		Name: "revno",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.bzr(request.BaseDir(), "revno", "--tree"), nil
		},
		Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			revno := NewRevnoConsumer()
			return &scmcore.LineFunc{
				OnLine: revno.ConsumeLine,
				OnApply: func(result *entities.ScmResult) {
					revno.Apply(result)
					result.Info = append(result.Info, lo.Map(request.FileSet.PathsOrDot(), func(path string, _ int) entities.InfoItem {
						return entities.InfoItem{Path: path, URL: Of(request).ConnectionURL(""), Revision: revno.Revision()}
					})...)
				},
			}
		},
	})
}
