package git

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

const (
	sessionPrefix    = "prefix"
	sessionBefore    = "before"
	sessionCommitted = "committed"
	sessionExisting  = "existing"
)

var headPattern = regexp.MustCompile(`^([0-9a-f]{7,64})$`)

// Commands builds the git pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

func (it *Commands) pipeline(command entities.CommandType, steps ...scmcore.Step) *scmcore.Pipeline {
	return &scmcore.Pipeline{Provider: entities.ProviderGit, Command: command, Steps: steps}
}

// git starts a command in the working copy. The url passwords are masked on every
// invocation, since remotes may carry them in their userinfo.
func (it *Commands) git(request *entities.CommandRequest, args ...string) *entities.Invocation {
	return it.inDir(request, request.BaseDir(), args...)
}

func (it *Commands) inDir(request *entities.CommandRequest, dir string, args ...string) *entities.Invocation {
	return it.tool.Command(dir, args...).Secret(Of(request).Secrets()...)
}

func (it *Commands) showPrefix() scmcore.Step {
	return scmcore.Step{
		Name: "rev-parse",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.git(request, "rev-parse", "--show-prefix"), nil
		},
		Consumer: func(_ *entities.CommandRequest, session *scmcore.Session) repositories.ResultConsumer {
			return &scmcore.LineFunc{OnLine: func(line string) {
				if strings.TrimSpace(line) != "" {
					session.Set(sessionPrefix, strings.TrimSpace(line))
				}
			}}
		},
	}
}

func (it *Commands) pushStep(refspec func(request *entities.CommandRequest) string) scmcore.Step {
	return scmcore.Step{
		Name: "push",
		Skip: func(request *entities.CommandRequest, _ *scmcore.Session) bool { return !request.ShouldPush() },
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.git(request, "push", Of(request).PushURL, refspec(request)), nil
		},
	}
}

func (it *Commands) lsFiles(status entities.ScmFileStatus) scmcore.Step {
	return scmcore.Step{
		Name: "ls-files",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.git(request, append([]string{"ls-files", "--"}, scmcore.Files(request)...)...), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return scmcore.ListConsumer(status, unquote)
		},
	}
}

// Add stages the files and reports the ones git now sees as added.
func (it *Commands) Add() *scmcore.Pipeline {
	return it.pipeline(entities.CommandAdd,
		scmcore.Step{
			Name: "add",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.git(request, "add")
				inv.ArgIf(request.Parameters.ForceAdd, "--force")
				return inv.Arg("--").Arg(scmcore.Files(request)...), nil
			},
		},
		it.showPrefix(),
		scmcore.Step{
			Name: "status",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.git(request, append([]string{"status", "--porcelain", "--"}, scmcore.Files(request)...)...), nil
			},
			Consumer: func(_ *entities.CommandRequest, session *scmcore.Session) repositories.ResultConsumer {
				status := NewStatusConsumer(session.Get(sessionPrefix))
				return &scmcore.LineFunc{
					OnLine: status.ConsumeLine,
					OnApply: func(result *entities.ScmResult) {
						result.AddFiles(lo.Filter(status.Files(), func(f entities.ScmFile, _ int) bool {
							return f.Status == entities.StatusAdded
						})...)
					},
				}
			},
		},
	)
}

func (it *Commands) Remove() *scmcore.Pipeline {
	return scmcore.Single(entities.ProviderGit, entities.CommandRemove,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.git(request, "rm")
			inv.ArgIf(request.Parameters.Recursive, "-r")
			return inv.Arg("--").Arg(scmcore.Files(request)...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewRemoveConsumer() },
	)
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.pipeline(entities.CommandStatus,
		it.showPrefix(),
		scmcore.Step{
			Name: "status",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.git(request, append([]string{"status", "--porcelain", "--"}, request.FileSet.PathsOrDot()...)...), nil
			},
			Consumer: func(_ *entities.CommandRequest, session *scmcore.Session) repositories.ResultConsumer {
				return NewStatusConsumer(session.Get(sessionPrefix))
			},
		},
	)
}

// CheckIn commits, optionally staging the given files first and pushing afterwards.
func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckIn,
		scmcore.Step{
			Name: "add",
			Skip: func(request *entities.CommandRequest, _ *scmcore.Session) bool { return request.FileSet.IsEmpty() },
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.git(request, append([]string{"add", "--"}, scmcore.Files(request)...)...), nil
			},
		},
		it.showPrefix(),
		scmcore.Step{
			Name: "status",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.git(request, "status", "--porcelain", "--untracked-files=no"), nil
			},
			Consumer: func(request *entities.CommandRequest, session *scmcore.Session) repositories.ResultConsumer {
				status := NewStatusConsumer(session.Get(sessionPrefix))
				return &scmcore.LineFunc{
					OnLine: status.ConsumeLine,
					OnApply: func(*entities.ScmResult) {
						paths := lo.FilterMap(status.Files(), func(f entities.ScmFile, _ int) (string, bool) {
							return f.Path, request.FileSet.IsEmpty() || request.FileSet.Contains(f.Path)
						})
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
				inv := it.git(request, "commit", "--verbose", "-F", messageFile)
				if request.FileSet.IsEmpty() {
					return inv.Arg("-a"), nil
				}
				return inv.Arg("--").Arg(scmcore.Files(request)...), nil
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
		scmcore.Step{
			Name: "rev-parse",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.git(request, "rev-parse", "HEAD"), nil
			},
			Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
				return scmcore.NewRevisionConsumer(headPattern)
			},
		},
		it.pushStep(func(*entities.CommandRequest) string { return "HEAD" }),
	)
}

// CheckOut clones into the base dir, or pulls when it already is a clone.
func (it *Commands) CheckOut() *scmcore.Pipeline {
	isClone := func(request *entities.CommandRequest) bool {
		_, err := os.Stat(filepath.Join(request.BaseDir(), ".git"))
		return err == nil
	}
	return it.pipeline(entities.CommandCheckOut,
		scmcore.Step{
			Name: "clone",
			Skip: func(request *entities.CommandRequest, session *scmcore.Session) bool {
				if isClone(request) {
					session.Set(sessionExisting, "true")
					return true
				}
				return false
			},
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.inDir(request, "", "clone")
				if v := request.Parameters.Version; v.IsBranch() || v.IsTag() {
					inv.Arg("--branch", v.Name)
				}
				return inv.Arg(Of(request).FetchURL, request.BaseDir()), nil
			},
		},
		scmcore.Step{
			Name: "pull",
			Skip: func(_ *entities.CommandRequest, session *scmcore.Session) bool {
				return session.Get(sessionExisting) != "true"
			},
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.git(request, "pull", Of(request).FetchURL)
				if v := request.Parameters.Version; v.IsBranch() {
					inv.Arg(v.Name)
				}
				return inv, nil
			},
		},
		scmcore.Step{
			Name: "checkout",
			Skip: func(request *entities.CommandRequest, _ *scmcore.Session) bool {
				return !request.Parameters.Version.IsRevision()
			},
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.git(request, "checkout", request.Parameters.Version.Name), nil
			},
		},
		it.lsFiles(entities.StatusCheckedOut),
	)
}

// Update pulls and reports what changed between the old and the new HEAD.
func (it *Commands) Update() *scmcore.Pipeline {
	return it.pipeline(entities.CommandUpdate,
		scmcore.Step{
			Name: "rev-parse",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.git(request, "rev-parse", "HEAD"), nil
			},
			Consumer: func(_ *entities.CommandRequest, session *scmcore.Session) repositories.ResultConsumer {
				return &scmcore.LineFunc{OnLine: func(line string) {
					if headPattern.MatchString(strings.TrimSpace(line)) {
						session.Set(sessionBefore, strings.TrimSpace(line))
					}
				}}
			},
		},
		scmcore.Step{
			Name: "pull",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.git(request, "pull", Of(request).FetchURL)
				if v := request.Parameters.Version; v.IsBranch() {
					inv.Arg(v.Name)
				}
				return inv, nil
			},
		},
		scmcore.Step{
			Name: "rev-parse",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.git(request, "rev-parse", "HEAD"), nil
			},
			Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
				return scmcore.NewRevisionConsumer(headPattern)
			},
		},
		scmcore.Step{
			Name: "diff",
			Skip: func(_ *entities.CommandRequest, session *scmcore.Session) bool { return session.Get(sessionBefore) == "" },
			Build: func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
				return it.git(request, "diff", "--name-status", session.Get(sessionBefore)+"..HEAD"), nil
			},
			Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
				return NewNameStatusConsumer()
			},
		},
	)
}

func (it *Commands) Diff() *scmcore.Pipeline {
	return scmcore.Single(entities.ProviderGit, entities.CommandDiff,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.git(request, "diff", "--no-color", "--no-ext-diff")
			inv.ArgIf(params.IgnoreWhitespace, "--ignore-all-space")
			inv.ArgIf(params.StartVersion.IsSet(), params.StartVersion.NameOrEmpty())
			inv.ArgIf(params.EndVersion.IsSet(), params.EndVersion.NameOrEmpty())
			return inv.Arg("--").Arg(scmcore.Files(request)...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return scmcore.NewUnifiedDiffConsumer()
		},
	)
}

func (it *Commands) Tag() *scmcore.Pipeline {
	return it.pipeline(entities.CommandTag,
		scmcore.Step{
			Name: "tag",
			Build: func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
				if err := scmcore.RequireName(request); err != nil {
					return nil, err
				}
				message := request.Parameters.Message
				if message == "" {
					message = "tag " + request.Parameters.Name
				}
				messageFile, err := scmcore.MessageFile(session, message)
				if err != nil {
					return nil, err
				}
				return it.git(request, "tag", "-F", messageFile, request.Parameters.Name), nil
			},
		},
		it.pushStep(func(request *entities.CommandRequest) string { return "refs/tags/" + request.Parameters.Name }),
		it.lsFiles(entities.StatusTagged),
	)
}

func (it *Commands) Untag() *scmcore.Pipeline {
	return it.pipeline(entities.CommandUntag,
		scmcore.Step{
			Name: "tag",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				if err := scmcore.RequireName(request); err != nil {
					return nil, err
				}
				return it.git(request, "tag", "-d", request.Parameters.Name), nil
			},
		},
		it.pushStep(func(request *entities.CommandRequest) string { return ":refs/tags/" + request.Parameters.Name }),
	)
}

func (it *Commands) Branch() *scmcore.Pipeline {
	return it.pipeline(entities.CommandBranch,
		scmcore.Step{
			Name: "branch",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				if err := scmcore.RequireName(request); err != nil {
					return nil, err
				}
				return it.git(request, "branch", request.Parameters.Name), nil
			},
		},
		it.pushStep(func(request *entities.CommandRequest) string { return "refs/heads/" + request.Parameters.Name }),
		it.lsFiles(entities.StatusTagged),
	)
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return scmcore.Single(entities.ProviderGit, entities.CommandChangeLog,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.git(request, "log", "--raw", "--no-merges", "--no-color", "--date=iso-strict")
			if start := params.ResolvedStartDate(time.Now()); start != nil {
				inv.Arg("--since=" + start.Format(time.RFC3339))
			}
			if params.EndDate != nil {
				inv.Arg("--until=" + params.EndDate.Format(time.RFC3339))
			}
			if params.Limit > 0 {
				inv.Arg("-n", strconv.Itoa(params.Limit))
			}
			switch {
			case params.StartVersion.IsSet():
				inv.Arg(params.StartVersion.Name + ".." + lo.Ternary(params.EndVersion.IsSet(), params.EndVersion.NameOrEmpty(), "HEAD"))
			case params.Branch.IsSet():
				inv.Arg(params.Branch.Name)
			}
			return inv.Arg("--").Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewChangeLogConsumer(request)
		},
	)
}

func (it *Commands) Blame() *scmcore.Pipeline {
	return scmcore.Single(entities.ProviderGit, entities.CommandBlame,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.git(request, "blame", "--porcelain")
			inv.ArgIf(request.Parameters.IgnoreWhitespace, "-w")
			inv.ArgIf(request.Parameters.Version.IsSet(), request.Parameters.Version.NameOrEmpty())
			return inv.Arg("--", scmcore.Files(request)[0]), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewBlameConsumer() },
	)
}

func (it *Commands) List() *scmcore.Pipeline {
	return it.pipeline(entities.CommandList, it.lsFiles(entities.StatusCheckedIn))
}

func (it *Commands) RemoteInfo() *scmcore.Pipeline {
	return scmcore.Single(entities.ProviderGit, entities.CommandRemoteInfo,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.git(request, "ls-remote", Of(request).FetchURL), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewRemoteInfoConsumer() },
	)
}

func (it *Commands) Info() *scmcore.Pipeline {
	return scmcore.Single(entities.ProviderGit, entities.CommandInfo,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.git(request, "rev-parse", "--verify")
			if n := request.Parameters.ShortRevisionLength; n > 0 {
				inv.Arg(fmt.Sprintf("--short=%d", n))
			}
			return inv.Arg(lo.Ternary(request.Parameters.Version.IsSet(), request.Parameters.Version.NameOrEmpty(), "HEAD")), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			revision := scmcore.NewRevisionConsumer(headPattern)
			return &scmcore.LineFunc{
				OnLine: revision.ConsumeLine,
				OnApply: func(result *entities.ScmResult) {
					revision.Apply(result)
					for _, path := range request.FileSet.PathsOrDot() {
						result.Info = append(result.Info, entities.InfoItem{
							Path:     path,
							URL:      Of(request).FetchURL,
							Revision: revision.Revision(),
						})
					}
				},
			}
		},
	)
}
