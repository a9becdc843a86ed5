package gogit

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	scmgit "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/git"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// Commands implements the git commands in process with go-git.
type Commands struct {
	settings *entities.Settings
	tool     *scmcore.Tool
}

func NewCommands(settings *entities.Settings, tool *scmcore.Tool) *Commands {
	return &Commands{settings: settings, tool: tool}
}

func (it *Commands) command(commandType entities.CommandType, run scmcore.RunFunc) scmcore.CommandFunc {
	return scmcore.InProcess(entities.ProviderGoGit, commandType, run)
}

func (it *Commands) CheckOut() scmcore.CommandFunc {
	return it.command(entities.CommandCheckOut, func(ctx context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		repository := scmgit.Of(request)
		options := &git.CloneOptions{URL: repository.FetchURL, Auth: it.auth(request), RemoteName: remoteName}
		version := request.Parameters.Version
		switch {
		case version.IsBranch():
			options.ReferenceName = plumbing.NewBranchReferenceName(version.Name)
			options.SingleBranch = true
		case version.IsTag():
			options.ReferenceName = plumbing.NewTagReferenceName(version.Name)
		}

		repo, err := git.PlainCloneContext(ctx, request.BaseDir(), false, options)
		if err != nil {
			return fmt.Errorf("cloning %s: %w", repository.FetchURL, err)
		}
		if version.IsRevision() {
			worktree, worktreeErr := repo.Worktree()
			if worktreeErr != nil {
				return worktreeErr
			}
			if err = worktree.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(version.Name)}); err != nil {
				return fmt.Errorf("checking out %s: %w", version.Name, err)
			}
		}

		head, err := resolve(repo, nil)
		if err != nil {
			return err
		}
		files, err := treeFiles(request, head, entities.StatusCheckedOut)
		if err != nil {
			return err
		}
		result.AddFiles(files...)
		result.Revision = head.Hash.String()
		return nil
	})
}

// Update pulls and reports the files changed between the old and the new HEAD.
func (it *Commands) Update() scmcore.CommandFunc {
	return it.command(entities.CommandUpdate, func(ctx context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		repo, worktree, err := open(request)
		if err != nil {
			return err
		}
		before, err := resolve(repo, nil)
		if err != nil {
			return err
		}

		pull := &git.PullOptions{RemoteName: remoteName, Auth: it.auth(request)}
		if version := request.Parameters.Version; version.IsBranch() {
			pull.ReferenceName = plumbing.NewBranchReferenceName(version.Name)
		}
		if err = ignoreUpToDate(worktree.PullContext(ctx, pull)); err != nil {
			return fmt.Errorf("pulling: %w", err)
		}
		if version := request.Parameters.Version; version.IsTag() || version.IsRevision() {
			target, resolveErr := resolve(repo, version)
			if resolveErr != nil {
				return resolveErr
			}
			if err = worktree.Checkout(&git.CheckoutOptions{Hash: target.Hash}); err != nil {
				return fmt.Errorf("checking out %s: %w", version.Name, err)
			}
		}

		after, err := resolve(repo, nil)
		if err != nil {
			return err
		}
		result.Revision = after.Hash.String()
		files, err := treeChanges(ctx, request, before, after, entities.StatusUpdated)
		if err != nil {
			return err
		}
		result.AddFiles(files...)
		return nil
	})
}

func (it *Commands) Status() scmcore.CommandFunc {
	return it.command(entities.CommandStatus, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		_, worktree, err := open(request)
		if err != nil {
			return err
		}
		files, err := changes(request, worktree, true)
		if err != nil {
			return err
		}
		result.AddFiles(files...)
		return nil
	})
}

func (it *Commands) Add() scmcore.CommandFunc {
	return it.command(entities.CommandAdd, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		_, worktree, err := open(request)
		if err != nil {
			return err
		}
		for _, file := range scmcore.Files(request) {
			if _, err = worktree.Add(file); err != nil {
				return fmt.Errorf("adding %s: %w", file, err)
			}
			result.AddFiles(entities.NewScmFile(file, entities.StatusAdded))
		}
		return nil
	})
}

func (it *Commands) Remove() scmcore.CommandFunc {
	return it.command(entities.CommandRemove, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		_, worktree, err := open(request)
		if err != nil {
			return err
		}
		for _, file := range scmcore.Files(request) {
			if _, err = worktree.Remove(file); err != nil {
				return fmt.Errorf("removing %s: %w", file, err)
			}
			result.AddFiles(entities.NewScmFile(file, entities.StatusDeleted))
		}
		return nil
	})
}

// CheckIn commits the requested files, or every tracked change, and pushes when asked to.
func (it *Commands) CheckIn() scmcore.CommandFunc {
	return it.command(entities.CommandCheckIn, func(ctx context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		if err := scmcore.RequireMessage(request); err != nil {
			return err
		}
		repo, worktree, err := open(request)
		if err != nil {
			return err
		}
		for _, file := range scmcore.Files(request) {
			if _, err = worktree.Add(file); err != nil {
				return fmt.Errorf("staging %s: %w", file, err)
			}
		}
		pending, err := changes(request, worktree, false)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			logger.Infof("Nothing to commit in %s", request.BaseDir())
			return nil
		}

		hash, err := worktree.Commit(request.Parameters.Message, &git.CommitOptions{
			All:    request.FileSet.IsEmpty(),
			Author: it.signature(),
		})
		if err != nil {
			return fmt.Errorf("committing: %w", err)
		}
		for _, file := range pending {
			result.AddFiles(entities.NewScmFile(file.Path, entities.StatusCheckedIn).WithRevision(hash.String()))
		}
		result.Revision = hash.String()

		if request.ShouldPush() {
			return it.push(ctx, request, repo)
		}
		return nil
	})
}

// push sends the given refspecs, or the configured ones, to the push url.
func (it *Commands) push(ctx context.Context, request *entities.CommandRequest, repo *git.Repository, refSpecs ...config.RefSpec) error {
	options := &git.PushOptions{RemoteName: remoteName, Auth: it.auth(request), RefSpecs: refSpecs}
	if repository := scmgit.Of(request); repository.PushURL != "" && repository.PushURL != repository.FetchURL {
		options.RemoteURL = repository.PushURL
	}
	if err := ignoreUpToDate(repo.PushContext(ctx, options)); err != nil {
		return fmt.Errorf("pushing: %w", err)
	}
	return nil
}

func (it *Commands) Tag() scmcore.CommandFunc {
	return it.command(entities.CommandTag, func(ctx context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		if err := scmcore.RequireName(request); err != nil {
			return err
		}
		name := request.Parameters.Name
		repo, _, err := open(request)
		if err != nil {
			return err
		}
		head, err := resolve(repo, nil)
		if err != nil {
			return err
		}
		message := request.Parameters.Message
		if message == "" {
			message = name
		}
		if _, err = repo.CreateTag(name, head.Hash, &git.CreateTagOptions{Tagger: it.signature(), Message: message}); err != nil {
			return fmt.Errorf("creating tag %s: %w", name, err)
		}

		files, err := treeFiles(request, head, entities.StatusTagged)
		if err != nil {
			return err
		}
		result.AddFiles(files...)
		result.AddTag(name, head.Hash.String())

		if request.ShouldPush() {
			ref := plumbing.NewTagReferenceName(name)
			return it.push(ctx, request, repo, config.RefSpec(ref+":"+ref))
		}
		return nil
	})
}

func (it *Commands) Untag() scmcore.CommandFunc {
	return it.command(entities.CommandUntag, func(ctx context.Context, request *entities.CommandRequest, _ *entities.ScmResult) error {
		if err := scmcore.RequireName(request); err != nil {
			return err
		}
		name := request.Parameters.Name
		repo, _, err := open(request)
		if err != nil {
			return err
		}
		if err = repo.DeleteTag(name); err != nil {
			return fmt.Errorf("deleting tag %s: %w", name, err)
		}
		if request.ShouldPush() {
			return it.push(ctx, request, repo, config.RefSpec(":"+plumbing.NewTagReferenceName(name)))
		}
		return nil
	})
}

func (it *Commands) Branch() scmcore.CommandFunc {
	return it.command(entities.CommandBranch, func(ctx context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		if err := scmcore.RequireName(request); err != nil {
			return err
		}
		name := request.Parameters.Name
		repo, _, err := open(request)
		if err != nil {
			return err
		}
		head, err := resolve(repo, nil)
		if err != nil {
			return err
		}
		ref := plumbing.NewBranchReferenceName(name)
		if _, err = repo.Reference(ref, false); err == nil {
			return fmt.Errorf("branch %s already exists", name)
		}
		if err = repo.Storer.SetReference(plumbing.NewHashReference(ref, head.Hash)); err != nil {
			return fmt.Errorf("creating branch %s: %w", name, err)
		}
		result.AddBranch(name, head.Hash.String())

		if request.ShouldPush() {
			return it.push(ctx, request, repo, config.RefSpec(ref+":"+ref))
		}
		return nil
	})
}

// Diff compares the working copy, or EndVersion, with StartVersion (HEAD by default).
func (it *Commands) Diff() scmcore.CommandFunc {
	return it.command(entities.CommandDiff, func(ctx context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		repo, worktree, err := open(request)
		if err != nil {
			return err
		}
		params := request.Parameters
		base, err := resolve(repo, params.StartVersion)
		if err != nil {
			return err
		}

		var end *object.Commit
		var files []entities.ScmFile
		if params.EndVersion.IsSet() {
			if end, err = resolve(repo, params.EndVersion); err != nil {
				return err
			}
			files, err = treeChanges(ctx, request, base, end, entities.StatusModified)
		} else {
			files, err = changes(request, worktree, false)
		}
		if err != nil {
			return err
		}

		var patch strings.Builder
		for _, file := range files {
			before, readErr := contents(base, file.Path)
			if readErr != nil {
				return readErr
			}
			var after string
			if end != nil {
				after, readErr = contents(end, file.Path)
			} else {
				after, readErr = workingContents(request, file.Path)
			}
			if readErr != nil {
				return readErr
			}

			text, diffErr := scmcore.UnifiedDiff(file.Path, before, after)
			if diffErr != nil {
				return diffErr
			}
			if text == "" {
				continue
			}
			added, deleted := scmcore.LineStats(before, after)
			result.AddFiles(file)
			result.AddDifference(file.Path, text)
			result.AddDiffStat(file.Path, added, deleted)
			patch.WriteString(text)
		}
		result.Patch = patch.String()
		return nil
	})
}

// Info describes HEAD of the working copy.
func (it *Commands) Info() scmcore.CommandFunc {
	return it.command(entities.CommandInfo, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		repo, _, err := open(request)
		if err != nil {
			return err
		}
		head, err := resolve(repo, request.Parameters.Version)
		if err != nil {
			return err
		}
		url := ""
		if remote, remoteErr := repo.Remote(remoteName); remoteErr == nil && len(remote.Config().URLs) > 0 {
			url = remote.Config().URLs[0]
		}
		revision := shortHash(head.Hash, request.Parameters.ShortRevisionLength)
		result.Info = append(result.Info, entities.InfoItem{
			Path:                request.BaseDir(),
			URL:                 url,
			Revision:            revision,
			Kind:                "dir",
			LastChangedAuthor:   head.Author.Name,
			LastChangedRevision: revision,
			LastChangedDate:     head.Author.When.Format("2006-01-02 15:04:05 -0700"),
		})
		result.Revision = revision
		return nil
	})
}

// List reports the files of a version, HEAD by default.
func (it *Commands) List() scmcore.CommandFunc {
	return it.command(entities.CommandList, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		repo, _, err := open(request)
		if err != nil {
			return err
		}
		commit, err := resolve(repo, request.Parameters.Version)
		if err != nil {
			return err
		}
		files, err := treeFiles(request, commit, entities.StatusCheckedIn)
		if err != nil {
			return err
		}
		result.AddFiles(files...)
		return nil
	})
}

// RemoteInfo lists the branches and tags of the remote without a working copy.
func (it *Commands) RemoteInfo() scmcore.CommandFunc {
	return it.command(entities.CommandRemoteInfo, func(ctx context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		url := scmgit.Of(request).FetchURL
		remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{Name: remoteName, URLs: []string{url}})
		refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: it.auth(request)})
		if err != nil {
			return fmt.Errorf("listing %s: %w", url, err)
		}
		for _, ref := range refs {
			switch {
			case ref.Name().IsBranch():
				result.AddBranch(ref.Name().Short(), ref.Hash().String())
			case ref.Name().IsTag():
				result.AddTag(ref.Name().Short(), ref.Hash().String())
			}
		}
		return nil
	})
}
