package perforce

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

const sessionOpened = "opened"

// Commands builds the p4 pipelines over one tool configuration.
type Commands struct {
	tool *scmcore.Tool
}

func NewCommands(tool *scmcore.Tool) *Commands {
	return &Commands{tool: tool}
}

func (it *Commands) pipeline(command entities.CommandType, steps ...scmcore.Step) *scmcore.Pipeline {
	return &scmcore.Pipeline{Provider: entities.ProviderPerforce, Command: command, Steps: steps}
}

// ClientName is the configured client, or one derived from the host and the base directory.
func (it *Commands) ClientName(request *entities.CommandRequest) string {
	if client := it.tool.Settings.Option("client", ""); client != "" {
		return client
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	name := "scmforge-" + host + "-" + filepath.Base(request.BaseDir())
	return strings.NewReplacer(" ", "_", ".", "_").Replace(name)
}

// p4 starts an invocation carrying the server, the credentials and the client.
func (it *Commands) p4(request *entities.CommandRequest, args ...string) *entities.Invocation {
	repository := Of(request)
	inv := it.tool.Command(request.BaseDir(), "-d", request.BaseDir())
	if port := repository.P4Port(); port != "" {
		inv.Arg("-p", port)
	}
	user, password := it.tool.Credentials(request.Repository)
	if user != "" {
		inv.Arg("-u", user)
	}
	if password != "" {
		inv.Arg("-P", password).Secret(password)
	}
	inv.Arg("-c", it.ClientName(request))
	return inv.Arg(args...)
}

// depotFiles maps the requested files to depot paths, or the whole view.
func depotFiles(request *entities.CommandRequest, revision string) []string {
	repository := Of(request)
	if request.FileSet.IsEmpty() {
		return []string{repository.View() + revision}
	}
	return lo.Map(scmcore.Files(request), func(f string, _ int) string {
		return repository.Path + "/" + f + revision
	})
}

func versionSuffix(version *entities.ScmVersion) string {
	if !version.IsSet() {
		return ""
	}
	// labels and change numbers share the "@" syntax
	return "@" + version.Name
}

func indent(text string) string {
	return "\t" + strings.ReplaceAll(strings.TrimSpace(text), "\n", "\n\t")
}

func (it *Commands) open(command entities.CommandType, verb string, status entities.ScmFileStatus, extra ...string) *scmcore.Pipeline {
	return it.pipeline(command, scmcore.Step{
		Name: verb,
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.p4(request, verb).Arg(extra...).Arg(scmcore.Files(request)...), nil
		},
		Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewOpenConsumer(Of(request), status)
		},
	})
}

// Login feeds the password to "p4 login" on stdin.
func (it *Commands) Login() *scmcore.Pipeline {
	return it.pipeline(entities.CommandLogin, scmcore.Step{
		Name: "login",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			_, password := it.tool.Credentials(request.Repository)
			if request.Parameters.Password != "" {
				password = request.Parameters.Password
			}
			inv := it.p4(request, "login", "-a")
			return inv.WithStdin(password + "\n").Secret(password), nil
		},
		FailOn: []string{"Password invalid", "Access for user"},
	})
}

func (it *Commands) Add() *scmcore.Pipeline {
	return it.pipeline(entities.CommandAdd, scmcore.Step{
		Name: "add",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.p4(request, "add")
			inv.ArgIf(request.Parameters.Binary, "-t", "binary")
			inv.ArgIf(request.Parameters.ForceAdd, "-f")
			return inv.Arg(scmcore.Files(request)...), nil
		},
		Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewOpenConsumer(Of(request), entities.StatusAdded)
		},
	})
}

func (it *Commands) Remove() *scmcore.Pipeline {
	return it.open(entities.CommandRemove, "delete", entities.StatusDeleted)
}

func (it *Commands) Edit() *scmcore.Pipeline {
	return it.open(entities.CommandEdit, "edit", entities.StatusEdited)
}

// UnEdit reverts opened files; reverted files are back to their checked in state.
func (it *Commands) UnEdit() *scmcore.Pipeline {
	return it.open(entities.CommandUnEdit, "revert", entities.StatusCheckedIn)
}

func (it *Commands) Status() *scmcore.Pipeline {
	return it.pipeline(entities.CommandStatus, scmcore.Step{
		Name: "opened",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.p4(request, "opened").Arg(depotFiles(request, "")...), nil
		},
		Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewStatusConsumer(Of(request))
		},
		// "file(s) not opened on this client." is not an error
		FailOn: []string{"must refer to client"},
	})
}

// ChangeSpec renders the change specification fed to "p4 submit -i".
func ChangeSpec(client, user, message string, depotPaths []string) string {
	var b strings.Builder
	b.WriteString("Change: new\n\nClient: " + client + "\n\n")
	if user != "" {
		b.WriteString("User: " + user + "\n\n")
	}
	b.WriteString("Status: new\n\nDescription:\n" + indent(message) + "\n\nFiles:\n")
	for _, p := range depotPaths {
		b.WriteString("\t" + p + "\n")
	}
	return b.String()
}

// CheckIn collects the opened files and submits them in one change.
func (it *Commands) CheckIn() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckIn,
		scmcore.Step{
			Name: "opened",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				if err := scmcore.RequireMessage(request); err != nil {
					return nil, err
				}
				return it.p4(request, "opened").Arg(depotFiles(request, "")...), nil
			},
			Consumer: func(request *entities.CommandRequest, session *scmcore.Session) repositories.ResultConsumer {
				status := NewStatusConsumer(Of(request))
				return &scmcore.LineFunc{
					OnLine: status.ConsumeLine,
					OnApply: func(*entities.ScmResult) {
						session.Set(sessionOpened, strings.Join(status.DepotPaths(), "\n"))
					},
				}
			},
		},
		scmcore.Step{
			Name: "submit",
			Build: func(request *entities.CommandRequest, session *scmcore.Session) (*entities.Invocation, error) {
				opened := lo.Compact(strings.Split(session.Get(sessionOpened), "\n"))
				if len(opened) == 0 {
					return nil, nil
				}
				user, _ := it.tool.Credentials(request.Repository)
				spec := ChangeSpec(it.ClientName(request), user, request.Parameters.Message, opened)
				return it.p4(request, "submit", "-i").WithStdin(spec), nil
			},
			Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
				return NewCheckInConsumer(Of(request))
			},
			FailOn: []string{"Submit aborted", "No files to submit"},
		},
	)
}

// ClientSpec renders the client specification mapping the repository view to root.
func ClientSpec(client, user, root string, repository *Repository) string {
	var b strings.Builder
	b.WriteString("Client: " + client + "\n\n")
	if user != "" {
		b.WriteString("Owner: " + user + "\n\n")
	}
	b.WriteString("Description:\n\tCreated by scmforge.\n\n")
	b.WriteString("Root: " + root + "\n\n")
	b.WriteString("Options: noallwrite clobber nocompress unlocked nomodtime normdir\n\n")
	b.WriteString("LineEnd: local\n\n")
	b.WriteString("View:\n\t" + repository.View() + " //" + client + "/...\n")
	return b.String()
}

// CheckOut creates or refreshes the client spec, then force syncs the view.
func (it *Commands) CheckOut() *scmcore.Pipeline {
	return it.pipeline(entities.CommandCheckOut,
		scmcore.Step{
			Name: "client",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				if err := os.MkdirAll(request.BaseDir(), 0o755); err != nil {
					return nil, err
				}
				user, _ := it.tool.Credentials(request.Repository)
				spec := ClientSpec(it.ClientName(request), user, request.BaseDir(), Of(request))
				return it.p4(request, "client", "-i").WithStdin(spec), nil
			},
		},
		scmcore.Step{
			Name: "sync",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				return it.p4(request, "sync", "-f").Arg(depotFiles(request, versionSuffix(request.Parameters.Version))...), nil
			},
			Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
				return NewSyncConsumer(Of(request), entities.StatusCheckedOut)
			},
			FailOn: []string{"no such file", "not in client view"},
		},
	)
}

func (it *Commands) Update() *scmcore.Pipeline {
	return it.pipeline(entities.CommandUpdate, scmcore.Step{
		Name: "sync",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			return it.p4(request, "sync").Arg(depotFiles(request, versionSuffix(request.Parameters.Version))...), nil
		},
		Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewSyncConsumer(Of(request), entities.StatusUpdated)
		},
	})
}

// LabelSpec renders the label specification fed to "p4 label -i".
func LabelSpec(name, user, message string, repository *Repository) string {
	var b strings.Builder
	b.WriteString("Label: " + name + "\n\n")
	if user != "" {
		b.WriteString("Owner: " + user + "\n\n")
	}
	b.WriteString("Description:\n" + indent(message) + "\n\n")
	b.WriteString("Options: unlocked\n\n")
	b.WriteString("View:\n\t" + repository.View() + "\n")
	return b.String()
}

func (it *Commands) Tag() *scmcore.Pipeline {
	return it.pipeline(entities.CommandTag,
		scmcore.Step{
			Name: "label",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				if err := scmcore.RequireName(request); err != nil {
					return nil, err
				}
				params := request.Parameters
				user, _ := it.tool.Credentials(request.Repository)
				message := lo.Ternary(params.Message != "", params.Message, "Label "+params.Name)
				return it.p4(request, "label", "-i").WithStdin(LabelSpec(params.Name, user, message, Of(request))), nil
			},
		},
		scmcore.Step{
			Name: "labelsync",
			Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
				inv := it.p4(request, "labelsync", "-l", request.Parameters.Name)
				return inv.Arg(depotFiles(request, versionSuffix(request.Parameters.Version))...), nil
			},
			Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
				return NewLabelSyncConsumer(Of(request))
			},
		},
	)
}

func (it *Commands) Untag() *scmcore.Pipeline {
	return it.pipeline(entities.CommandUntag, scmcore.Step{
		Name: "label",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			if err := scmcore.RequireName(request); err != nil {
				return nil, err
			}
			return it.p4(request, "label", "-d", request.Parameters.Name), nil
		},
		FailOn: []string{"doesn't exist"},
	})
}

// changesRange renders the "@from,@to" revision range of "p4 changes".
func changesRange(params *entities.CommandParameters) string {
	switch start := params.ResolvedStartDate(time.Now()); {
	case params.StartVersion.IsSet():
		end := lo.Ternary(params.EndVersion.IsSet(), params.EndVersion.NameOrEmpty(), "now")
		return "@" + params.StartVersion.Name + ",@" + end
	case start != nil:
		end := "now"
		if params.EndDate != nil {
			end = params.EndDate.Format(p4DateLayout)
		}
		return "@" + start.Format(p4DateLayout) + ",@" + end
	default:
		return ""
	}
}

func (it *Commands) ChangeLog() *scmcore.Pipeline {
	return it.pipeline(entities.CommandChangeLog, scmcore.Step{
		Name: "changes",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			inv := it.p4(request, "changes", "-l", "-t", "-s", "submitted")
			if params.Limit > 0 {
				inv.Arg("-m", strconv.Itoa(params.Limit))
			}
			return inv.Arg(depotFiles(request, changesRange(&params))...), nil
		},
		Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewChangeLogConsumer(request)
		},
	})
}

// Diff compares two versions with diff2, or the workspace with the have revision.
func (it *Commands) Diff() *scmcore.Pipeline {
	return it.pipeline(entities.CommandDiff, scmcore.Step{
		Name: "diff",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			params := request.Parameters
			if !params.StartVersion.IsSet() {
				inv := it.p4(request, "diff", "-du")
				inv.ArgIf(params.IgnoreWhitespace, "-dw")
				return inv.Arg(scmcore.Files(request)...), nil
			}
			view := Of(request).View()
			end := lo.Ternary(params.EndVersion.IsSet(), versionSuffix(params.EndVersion), "#head")
			inv := it.p4(request, "diff2", "-du")
			inv.ArgIf(params.IgnoreWhitespace, "-dw")
			return inv.Arg(view+versionSuffix(params.StartVersion), view+end), nil
		},
		Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			consumer := scmcore.NewUnifiedDiffConsumer()
			repository := Of(request)
			consumer.PathOf = func(path string) string {
				if strings.HasPrefix(path, "//") {
					return depotRelative(repository, path)
				}
				return scmcore.Relativize(request.BaseDir(), path)
			}
			return consumer
		},
	})
}

func (it *Commands) Blame() *scmcore.Pipeline {
	return it.pipeline(entities.CommandBlame, scmcore.Step{
		Name: "annotate",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			file := scmcore.Files(request)[0] + versionSuffix(request.Parameters.Version)
			return it.p4(request, "annotate", "-u", "-c", "-q", file), nil
		},
		Consumer: func(*entities.CommandRequest, *scmcore.Session) repositories.ResultConsumer { return NewBlameConsumer() },
	})
}

func (it *Commands) Info() *scmcore.Pipeline {
	return it.pipeline(entities.CommandInfo, scmcore.Step{
		Name: "fstat",
		Build: func(request *entities.CommandRequest, _ *scmcore.Session) (*entities.Invocation, error) {
			inv := it.p4(request, "fstat", "-T", "depotFile,headRev,headType,headChange,headTime")
			return inv.Arg(depotFiles(request, versionSuffix(request.Parameters.Version))...), nil
		},
		Consumer: func(request *entities.CommandRequest, _ *scmcore.Session) repositories.ResultConsumer {
			return NewFstatConsumer(Of(request))
		},
	})
}
