package gogit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// ChangeLog walks the history from EndVersion (or the branch, or HEAD) back to StartVersion.
func (it *Commands) ChangeLog() scmcore.CommandFunc {
	return it.command(entities.CommandChangeLog, func(ctx context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		repo, _, err := open(request)
		if err != nil {
			return err
		}
		params := request.Parameters
		from := params.EndVersion
		if !from.IsSet() && params.Branch.IsSet() {
			from = params.Branch
		}
		head, err := resolve(repo, from)
		if err != nil {
			return err
		}
		stop := plumbing.ZeroHash
		if params.StartVersion.IsSet() {
			start, resolveErr := resolve(repo, params.StartVersion)
			if resolveErr != nil {
				return resolveErr
			}
			stop = start.Hash
		}

		options := &git.LogOptions{From: head.Hash, Order: git.LogOrderCommitterTime, Until: params.EndDate}
		if since := params.ResolvedStartDate(time.Now()); since != nil {
			options.Since = since
		}
		if !request.FileSet.IsEmpty() {
			options.PathFilter = func(path string) bool { return selected(request, path) }
		}
		commits, err := repo.Log(options)
		if err != nil {
			return fmt.Errorf("reading the log: %w", err)
		}
		defer commits.Close()

		var sets []entities.ChangeSet
		err = commits.ForEach(func(commit *object.Commit) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if commit.Hash == stop || (params.Limit > 0 && len(sets) >= params.Limit) {
				return storer.ErrStop
			}
			set, setErr := changeSet(ctx, request, commit)
			if setErr != nil {
				return setErr
			}
			sets = append(sets, set)
			return nil
		})
		if err != nil {
			return fmt.Errorf("walking the log: %w", err)
		}
		result.ChangeLog = scmcore.BuildChangeLog(request, sets, false)
		return nil
	})
}

// changeSet describes one commit with the files it changed against its first parent.
func changeSet(ctx context.Context, request *entities.CommandRequest, commit *object.Commit) (entities.ChangeSet, error) {
	set := entities.ChangeSet{
		Date:     commit.Author.When,
		Author:   commit.Author.Name,
		Comment:  strings.TrimSpace(commit.Message),
		Revision: commit.Hash.String(),
	}

	var files []entities.ScmFile
	var err error
	previous := ""
	if commit.NumParents() == 0 {
		files, err = treeFiles(request, commit, entities.StatusAdded)
	} else {
		parent, parentErr := commit.Parent(0)
		if parentErr != nil {
			return set, parentErr
		}
		previous = parent.Hash.String()
		files, err = treeChanges(ctx, request, parent, commit, entities.StatusModified)
	}
	if err != nil {
		return set, err
	}
	for _, file := range files {
		set.Files = append(set.Files, entities.ChangeFile{
			Name:             file.Path,
			Revision:         set.Revision,
			PreviousRevision: previous,
			Action:           file.Status,
		})
	}
	return set, nil
}

// Blame attributes every line of the first requested file at Version (HEAD by default).
func (it *Commands) Blame() scmcore.CommandFunc {
	return it.command(entities.CommandBlame, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		repo, _, err := open(request)
		if err != nil {
			return err
		}
		commit, err := resolve(repo, request.Parameters.Version)
		if err != nil {
			return err
		}
		path := scmcore.Files(request)[0]
		blame, err := git.Blame(commit, path)
		if err != nil {
			return fmt.Errorf("blaming %s: %w", path, err)
		}
		for i, line := range blame.Lines {
			author := line.AuthorName
			if author == "" {
				author = line.Author
			}
			result.Blame = append(result.Blame, entities.BlameLine{
				Revision:   line.Hash.String(),
				Author:     author,
				Date:       line.Date,
				LineNumber: i + 1,
				Line:       line.Text,
			})
		}
		return nil
	})
}
