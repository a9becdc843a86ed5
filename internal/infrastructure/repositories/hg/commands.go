package hg

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

const (
	sessionBefore    = "before"
	sessionCommitted = "committed"
	sessionExisting  = "existing"
)

// Commands builds the hg pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

func (it *Commands) pipeline(command entities.CommandType, steps ...scmcore.Step) *scmcore.Pipeline {
	return &scmcore.Pipeline{Provider: entities.ProviderHg, Command: command, Steps: steps}
}

// hg starts a non interactive invocation in dir.
func (it *Commands) hg(dir string, args ...string) *entities.Invocation {
	return it.tool.Command(dir, "--noninteractive").Arg(args...)
}

func (it *Commands) remote(request *entities.CommandRequest) (string, string) {
	repository := Of(request)
	return repository.RemoteURL(), repository.Password
}

func (it *Commands) revisionStep(key string) scmcore.Step {
	return scmcore.Step{
		Name: "id",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.hg(request.BaseDir(), "log", "-r", ".", "--template", "{node}\\n"), nil
		},
		Consumer: func(_ *entities.CommandRequest, session *scmcore.Session) repositories.ResultConsumer {
			node := NewNodeConsumer()
			return &scmcore.LineFunc{
				OnLine: node.ConsumeLine,
				OnApply: func(result *entities.ScmResult) {
					if key != "" {
						session.Set(key, node.Revision())
						return
					}
					node.Apply(result)
				},
			}
		},
	}
}

func (it *Commands) pushStep() scmcore.Step {
	return scmcore.Step{
		Name: "push",
		Skip: func(request *entities.CommandRequest, _ *scmcore.Session) bool { return !request.ShouldPush() },
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			target, password := it.remote(request)
			inv := it.hg(request.BaseDir(), "push", target).Secret(password)
			// push exits with 1 when there is nothing to push
			return inv.AcceptExitCodes(0, 1), nil
		},
	}
}

func (it *Commands) locateStep(status entities.ScmFileStatus) scmcore.Step {
	return scmcore.Step{
		Name: "locate",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.hg(request.BaseDir(), "locate")
			if version := request.Parameters.Version; version.IsSet() {
				inv.Arg("-r", version.Name)
			}
			// locate exits with 1 when nothing matches
			return inv.Arg(scmcore.Files(request)...).AcceptExitCodes(0, 1), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return scmcore.ListConsumer(status, nil)
		},
	}
}

func (it *Commands) Add() *scmcore.Pipeline {
	return it.pipeline(entities.CommandAdd, scmcore.Step{
		Name: "add",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.hg(request.BaseDir(), "add", "--verbose").Arg(scmcore.Files(request)...), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewVerboseConsumer() },
	})
}

func (it *Commands) Remove() *scmcore.Pipeline {
	return it.pipeline(entities.CommandRemove, scmcore.Step{
		Name: "remove",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.hg(request.BaseDir(), "remove", "--verbose").Arg(scmcore.Files(request)...), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewVerboseConsumer() },
	})
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.pipeline(entities.CommandStatus, scmcore.Step{
		Name: "status",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.hg(request.BaseDir(), "status").Arg(scmcore.Files(request)...), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewStatusConsumer() },
	})
}

// CheckIn commits the pending changes, records the new changeset and pushes when asked.
func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckIn,
		scmcore.Step{
			Name: "status",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.hg(request.BaseDir(), "status", "-mar").Arg(scmcore.Files(request)...), nil
			},
			Consumer: func(_ *entities.CommandRequest, session *scmcore.Session) repositories.ResultConsumer {
				status := NewStatusConsumer()
				return &scmcore.LineFunc{
					OnLine: status.ConsumeLine,
					OnApply: func(*entities.ScmResult) {
						paths := lo.Map(status.Files(), func(f entities.ScmFile, _ int) string { return f.Path })
						session.Set(sessionCommitted, strings.Join(paths, "\n"))
					},
				}
			},
		},
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
				inv := it.hg(request.BaseDir(), "commit", "--logfile", messageFile)
				return inv.Arg(scmcore.Files(request)...), nil
			},
			Consumer: func(_ *entities.CommandRequest, session *scmcore.Session) repositories.ResultConsumer {
				return &scmcore.LineFunc{OnApply: func(result *entities.ScmResult) {
					for _, path := range strings.Split(session.Get(sessionCommitted), "\n") {
						if path != "" {
							result.AddFiles(entities.NewScmFile(path, entities.StatusCheckedIn))
						}
					}
				}}
			},
		},
		it.revisionStep(""),
		it.pushStep(),
	)
}

// CheckOut clones into the base directory, or pulls when a clone is already there.
func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckOut,
		scmcore.Step{
			Name: "clone",
			Skip: func(request *entities.CommandRequest, session *scmcore.Session) bool {
				if _, err := os.Stat(filepath.Join(request.BaseDir(), ".hg")); err == nil {
					session.Set(sessionExisting, "true")
					return true
				}
				return false
			},
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				source, password := it.remote(request)
				inv := it.hg(filepath.Dir(request.BaseDir()), "clone").Secret(password)
				if version := request.Parameters.Version; version.IsSet() {
					inv.Arg("-r", version.Name)
				}
				return inv.Arg(source, request.BaseDir()), nil
			},
		},
		scmcore.Step{
			Name: "pull",
			Skip: func(_ *entities.CommandRequest, session *scmcore.Session) bool { return session.Get(sessionExisting) == "" },
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				source, password := it.remote(request)
				inv := it.hg(request.BaseDir(), "pull", "--update").Secret(password)
				if version := request.Parameters.Version; version.IsSet() {
					inv.Arg("-r", version.Name)
				}
				return inv.Arg(source), nil
			},
		},
		it.locateStep(entities.StatusCheckedOut),
		it.revisionStep(""),
	)
}

// Update pulls, moves the working copy and reports the files changed since the old parent.
func (it *Commands) Update() *scmcore.Pipeline {
	return it.pipeline(entities.CommandUpdate,
		it.revisionStep(sessionBefore),
		scmcore.Step{
			Name: "pull",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				source, password := it.remote(request)
				return it.hg(request.BaseDir(), "pull", source).Secret(password), nil
			},
		},
		scmcore.Step{
			Name: "update",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.hg(request.BaseDir(), "update")
				if version := request.Parameters.Version; version.IsSet() {
					inv.Arg("-r", version.Name)
				}
				return inv, nil
			},
		},
		it.revisionStep(""),
		scmcore.Step{
			Name: "status",
			Skip: func(_ *entities.CommandRequest, session *scmcore.Session) bool { return session.Get(sessionBefore) == "" },
			Build: func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
				return it.hg(request.BaseDir(), "status", "--rev", session.Get(sessionBefore)).Arg(scmcore.Files(request)...), nil
			},
			Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewUpdateConsumer() },
		},
	)
}

func (it *Commands) Diff() *scmcore.Pipeline {
	return it.pipeline(entities.CommandDiff, scmcore.Step{
		Name: "diff",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.hg(request.BaseDir(), "diff")
			if params.StartVersion.IsSet() {
				inv.Arg("-r", params.StartVersion.Name)
				if params.EndVersion.IsSet() {
					inv.Arg("-r", params.EndVersion.Name)
				}
			}
			inv.ArgIf(params.IgnoreWhitespace, "-w")
			return inv.Arg(scmcore.Files(request)...), nil
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
				params := request.Parameters
				message := lo.Ternary(params.Message != "", params.Message, "tag "+params.Name)
				inv := it.hg(request.BaseDir(), "tag", "--message", message)
				if params.Version.IsRevision() {
					inv.Arg("-r", params.Version.Name)
				}
				return inv.Arg(params.Name), nil
			},
		},
		it.pushStep(),
		it.locateStep(entities.StatusTagged),
	)
}

// Branch marks the working directory as a new named branch and commits it.
func (it *Commands) Branch() *scmcore.Pipeline {
	return it.pipeline(entities.CommandBranch,
		scmcore.Step{
			Name: "branch",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				if err := scmcore.RequireName(request); err != nil {
					return nil, err
				}
				return it.hg(request.BaseDir(), "branch", request.Parameters.Name), nil
			},
		},
		scmcore.Step{
			Name: "commit",
			Build: func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
				params := request.Parameters
				messageFile, err := scmcore.MessageFile(session,
					lo.Ternary(params.Message != "", params.Message, "branch "+params.Name))
				if err != nil {
					return nil, err
				}
				return it.hg(request.BaseDir(), "commit", "--logfile", messageFile), nil
			},
		},
		scmcore.Step{
			Name: "push",
			Skip: func(request *entities.CommandRequest, _ *scmcore.Session) bool { return !request.ShouldPush() },
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				target, password := it.remote(request)
				return it.hg(request.BaseDir(), "push", "--new-branch", target).Secret(password).AcceptExitCodes(0, 1), nil
			},
		},
		it.locateStep(entities.StatusTagged),
	)
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.pipeline(entities.CommandChangeLog, scmcore.Step{
		Name: "log",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.hg(request.BaseDir(), "log", "--verbose")
			switch start := params.ResolvedStartDate(time.Now()); {
			case params.StartVersion.IsSet():
				end := lo.Ternary(params.EndVersion.IsSet(), params.EndVersion.NameOrEmpty(), "tip")
				inv.Arg("-r", params.StartVersion.Name+":"+end)
			case start != nil:
				end := time.Now()
				if params.EndDate != nil {
					end = *params.EndDate
				}
				inv.Arg("--date", start.Format("2006-01-02 15:04:05")+" to "+end.Format("2006-01-02 15:04:05"))
			}
			if params.Branch.IsSet() {
				inv.Arg("--branch", params.Branch.Name)
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
			inv := it.hg(request.BaseDir(), "annotate", "--user", "--number", "--changeset", "--date")
			if version := request.Parameters.Version; version.IsSet() {
				inv.Arg("-r", version.Name)
			}
			return inv.Arg(scmcore.Files(request)[0]), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewBlameConsumer() },
	})
}

func (it *Commands) List() *scmcore.Pipeline {
	return it.pipeline(entities.CommandList, it.locateStep(entities.StatusCheckedIn))
}

func (it *Commands) Info() *scmcore.Pipeline {
	return it.pipeline(entities.CommandInfo, scmcore.Step{
		Name: "id",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			revision := lo.Ternary(request.Parameters.Version.IsSet(), request.Parameters.Version.NameOrEmpty(), ".")
			return it.hg(request.BaseDir(), "log", "-r", revision, "--template", "{node}\\n"), nil
		},
		Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			node := NewNodeConsumer()
			return &scmcore.LineFunc{
				OnLine: node.ConsumeLine,
				OnApply: func(result *entities.ScmResult) {
					revision := node.Revision()
					if n := request.Parameters.ShortRevisionLength; n > 0 && n < len(revision) {
						revision = revision[:n]
					}
					result.Revision = revision
					for _, path := range request.FileSet.PathsOrDot() {
						result.Info = append(result.Info, entities.InfoItem{
							Path:     path,
							URL:      Of(request).ConnectionURL(""),
							Revision: revision,
						})
					}
				},
			}
		},
	})
}
