package svn

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// Commands builds the svn pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

// svn starts a non interactive invocation carrying the credentials and configured options.
func (it *Commands) svn(request *entities.CommandRequest, dir string, args ...string) *entities.Invocation {
	inv := it.tool.Command(dir)
	inv.Arg("--non-interactive")
	user, password := it.tool.Credentials(request.Repository)
	if user != "" {
		inv.Arg("--username", user)
	}
	if password != "" {
		inv.Arg("--password", password).Secret(password)
	}
	inv.ArgIf(it.tool.Settings.BoolOption("trust_server_cert", false), "--trust-server-cert")
	if configDir := it.tool.Settings.Option("config_dir", ""); configDir != "" {
		inv.Arg("--config-dir", configDir)
	}
	return inv.Arg(args...)
}

func (it *Commands) single(
	command entities.CommandType,
	build scmcore.BuildFunc,
	consumer scmcore.ConsumerFunc,
) *scmcore.Pipeline {
	return scmcore.Single(entities.ProviderSVN, command, build, consumer)
}

func revisionArg(version *entities.ScmVersion) []string {
	if version.IsRevision() {
		return []string{"-r", version.Name}
	}
	return nil
}

// versionURL resolves a branch or tag to its URL below the bases.
func versionURL(repository *Repository, version *entities.ScmVersion) string {
	switch {
	case version.IsTag():
		return repository.TagBase + "/" + version.Name
	case version.IsBranch():
		return repository.BranchBase + "/" + version.Name
	default:
		return repository.URL
	}
}

func addRemoveConsumer(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
	return NewAddRemoveConsumer(request.BaseDir())
}

func (it *Commands) Add() *scmcore.Pipeline {
	return it.single(entities.CommandAdd,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.svn(request, request.BaseDir(), "add")
			inv.ArgIf(!request.Parameters.Recursive, "--depth", "empty")
			inv.ArgIf(request.Parameters.ForceAdd, "--force")
			return inv.Arg("--parents").Arg(scmcore.Files(request)...), nil
		},
		addRemoveConsumer,
	)
}

func (it *Commands) Remove() *scmcore.Pipeline {
	return it.single(entities.CommandRemove,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.svn(request, request.BaseDir(), "delete").Arg(scmcore.Files(request)...), nil
		},
		addRemoveConsumer,
	)
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.single(entities.CommandStatus,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.svn(request, request.BaseDir(), "status").Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewStatusConsumer(request.BaseDir())
		},
	)
}

func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.single(entities.CommandCheckIn,
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireMessage(request); err != nil {
				return nil, err
			}
			messageFile, err := scmcore.MessageFile(session, request.Parameters.Message)
			if err != nil {
				return nil, err
			}
			return it.svn(request, request.BaseDir(), "commit", "--file", messageFile).Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewCheckInConsumer(request.BaseDir())
		},
	)
}

func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.single(entities.CommandCheckOut,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			version := request.Parameters.Version
			inv := it.svn(request, "", "checkout")
			inv.ArgIf(!request.Parameters.Recursive && !request.FileSet.IsEmpty(), "--depth", "files")
			inv.Arg(revisionArg(version)...)
			return inv.Arg(versionURL(Of(request), version), request.BaseDir()), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewUpdateConsumer(request.BaseDir(), entities.StatusCheckedOut)
		},
	)
}

func (it *Commands) Update() *scmcore.Pipeline {
	return it.single(entities.CommandUpdate,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			version := request.Parameters.Version
			if version.IsBranch() || version.IsTag() {
				return it.svn(request, request.BaseDir(), "switch", versionURL(Of(request), version)), nil
			}
			inv := it.svn(request, request.BaseDir(), "update").Arg(revisionArg(version)...)
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewUpdateConsumer(request.BaseDir(), entities.StatusAdded)
		},
	)
}

func (it *Commands) Diff() *scmcore.Pipeline {
	return it.single(entities.CommandDiff,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.svn(request, request.BaseDir(), "diff")
			if params.StartVersion.IsSet() {
				rng := params.StartVersion.Name
				if params.EndVersion.IsSet() {
					rng += ":" + params.EndVersion.Name
				}
				inv.Arg("-r", rng)
			}
			inv.ArgIf(params.IgnoreWhitespace, "-x", "-w")
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return scmcore.NewUnifiedDiffConsumer()
		},
	)
}

// copyTo is shared by tag and branch: a remote copy when Remote is set, otherwise a copy of
// the working copy, which also captures uncommitted local modifications.
func (it *Commands) copyTo(
	command entities.CommandType,
	base func(repository *Repository) string,
) *scmcore.Pipeline {
	return it.single(command,
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			message := lo.Ternary(request.Parameters.Message != "", request.Parameters.Message,
				string(command)+" "+request.Parameters.Name)
			messageFile, err := scmcore.MessageFile(session, message)
			if err != nil {
				return nil, err
			}
			repository := Of(request)
			inv := it.svn(request, request.BaseDir(), "copy", "--parents", "--file", messageFile)
			if request.Parameters.Remote {
				inv.Arg(revisionArg(request.Parameters.Version)...).Arg(repository.URL)
			} else {
				inv.Arg(".")
			}
			return inv.Arg(base(repository) + "/" + request.Parameters.Name), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			files := scmcore.NewFixedFilesConsumer(scmcore.Files(request), entities.StatusTagged)
			revision := scmcore.NewRevisionConsumer(revisionLinePattern)
			return &scmcore.LineFunc{
				OnLine: revision.ConsumeLine,
				OnApply: func(result *entities.ScmResult) {
					files.Apply(result)
					revision.Apply(result)
				},
			}
		},
	)
}

func (it *Commands) Tag() *scmcore.Pipeline {
	return it.copyTo(entities.CommandTag, func(r *Repository) string { return r.TagBase })
}

func (it *Commands) Branch() *scmcore.Pipeline {
	return it.copyTo(entities.CommandBranch, func(r *Repository) string { return r.BranchBase })
}

func (it *Commands) Untag() *scmcore.Pipeline {
	return it.single(entities.CommandUntag,
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			messageFile, err := scmcore.MessageFile(session, "remove tag "+request.Parameters.Name)
			if err != nil {
				return nil, err
			}
			return it.svn(request, "", "delete", "--file", messageFile,
				Of(request).TagBase+"/"+request.Parameters.Name), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return scmcore.NewRevisionConsumer(revisionLinePattern)
		},
	)
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.single(entities.CommandChangeLog,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.svn(request, request.BaseDir(), "log", "-v")
			switch start := params.ResolvedStartDate(time.Now()); {
			case params.StartVersion.IsSet():
				end := lo.Ternary(params.EndVersion.IsSet(), params.EndVersion.NameOrEmpty(), "HEAD")
				inv.Arg("-r", params.StartVersion.Name+":"+end)
			case start != nil:
				end := "HEAD"
				if params.EndDate != nil {
					end = "{" + params.EndDate.Format(time.RFC3339) + "}"
				}
				inv.Arg("-r", "{"+start.Format(time.RFC3339)+"}:"+end)
			}
			if params.Limit > 0 {
				inv.Arg("--limit", strconv.Itoa(params.Limit))
			}
			if params.Branch.IsSet() {
				return inv.Arg(Of(request).BranchBase + "/" + params.Branch.Name), nil
			}
			if request.FileSet.IsEmpty() {
				return inv.Arg(Of(request).URL), nil
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
			inv := it.svn(request, request.BaseDir(), "blame", "--xml")
			inv.Arg(revisionArg(request.Parameters.Version)...)
			return inv.Arg(scmcore.Files(request)[0]), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewBlameConsumer() },
	)
}

func (it *Commands) List() *scmcore.Pipeline {
	return it.single(entities.CommandList,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.svn(request, "", "list")
			inv.ArgIf(request.Parameters.Recursive, "--recursive")
			inv.Arg(revisionArg(request.Parameters.Version)...)
			root := versionURL(Of(request), request.Parameters.Version)
			if request.FileSet.IsEmpty() {
				return inv.Arg(root), nil
			}
			return inv.Arg(lo.Map(scmcore.Files(request), func(f string, _ int) string { return root + "/" + path.Clean(f) })...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
			return scmcore.ListConsumer(entities.StatusCheckedIn, nil)
		},
	)
}

func (it *Commands) Info() *scmcore.Pipeline {
	return it.single(entities.CommandInfo,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.svn(request, request.BaseDir(), "info").Arg(revisionArg(request.Parameters.Version)...)
			return inv.Arg(scmcore.Files(request)...), nil
		},
		func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewInfoConsumer() },
	)
}

func (it *Commands) RemoteInfo() *scmcore.Pipeline {
	listStep := func(name string, base func(*Repository) string, add func(*entities.ScmResult, string)) scmcore.Step {
		return scmcore.Step{
			Name: name,
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.svn(request, "", "list", base(Of(request))), nil
			},
			Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer {
				return NewNamesConsumer(add)
			},
		}
	}
	return &scmcore.Pipeline{
		Provider: entities.ProviderSVN,
		Command:  entities.CommandRemoteInfo,
		Steps: []scmcore.Step{
			listStep("list tags", func(r *Repository) string { return r.TagBase },
				func(result *entities.ScmResult, name string) { result.AddTag(name, "") }),
			listStep("list branches", func(r *Repository) string { return r.BranchBase },
				func(result *entities.ScmResult, name string) { result.AddBranch(name, "") }),
		},
	}
}

func (it *Commands) Mkdir() *scmcore.Pipeline {
	return it.single(entities.CommandMkdir,
		func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
			if request.Parameters.CreateInLocal {
				return it.svn(request, request.BaseDir(), "mkdir", "--parents").Arg(scmcore.Files(request)...), nil
			}
			message := lo.Ternary(request.Parameters.Message != "", request.Parameters.Message, "mkdir")
			messageFile, err := scmcore.MessageFile(session, message)
			if err != nil {
				return nil, err
			}
			root := Of(request).URL
			inv := it.svn(request, "", "mkdir", "--parents", "--file", messageFile)
			return inv.Arg(lo.Map(scmcore.Files(request), func(f string, _ int) string {
				return root + "/" + strings.TrimPrefix(path.Clean(f), "/")
			})...), nil
		},
		addRemoveConsumer,
	)
}

func (it *Commands) Export() *scmcore.Pipeline {
	return it.single(entities.CommandExport,
		func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			target := lo.Ternary(request.Parameters.OutputDirectory != "", request.Parameters.OutputDirectory, request.BaseDir())
			inv := it.svn(request, "", "export", "--force").Arg(revisionArg(request.Parameters.Version)...)
			return inv.Arg(versionURL(Of(request), request.Parameters.Version), target), nil
		},
		func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewUpdateConsumer(request.Parameters.OutputDirectory, entities.StatusAdded)
		},
	)
}
