package gogit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/samber/lo"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	scmgit "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/git"
)

const remoteName = "origin"

// open opens the working copy at the base dir of the request.
func open(request *entities.CommandRequest) (*git.Repository, *git.Worktree, error) {
	repo, err := git.PlainOpenWithOptions(request.BaseDir(), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", request.BaseDir(), err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, nil, fmt.Errorf("reading the worktree of %s: %w", request.BaseDir(), err)
	}
	return repo, worktree, nil
}

// resolve finds the commit of a version, HEAD when unset.
func resolve(repo *git.Repository, version *entities.ScmVersion) (*object.Commit, error) {
	revision := "HEAD"
	if version.IsSet() {
		revision = version.Name
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", revision, err)
	}
	return repo.CommitObject(*hash)
}

// auth returns basic auth for http remotes; ssh remotes use the agent.
func (it *Commands) auth(request *entities.CommandRequest) transport.AuthMethod {
	repository := scmgit.Of(request)
	if repository.Protocol != "http" && repository.Protocol != "https" {
		return nil
	}
	user, password := it.tool.Credentials(request.Repository)
	if user == "" && password == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: user, Password: password}
}

// signature is the configured author, stamped now.
func (it *Commands) signature() *object.Signature {
	author := it.settings.Author
	return &object.Signature{
		Name:  lo.Ternary(author.Name == "", "scmforge", author.Name),
		Email: author.Email,
		When:  time.Now(),
	}
}

// selected reports whether a repository path is covered by the file set of the request.
func selected(request *entities.CommandRequest, path string) bool {
	if request.FileSet.IsEmpty() {
		return true
	}
	for _, f := range request.FileSet.Files() {
		if f == "." || path == f || strings.HasPrefix(path, f+"/") {
			return true
		}
	}
	return false
}

// treeFiles lists the files of a commit covered by the request.
func treeFiles(request *entities.CommandRequest, commit *object.Commit, status entities.ScmFileStatus) ([]entities.ScmFile, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	var files []entities.ScmFile
	err = tree.Files().ForEach(func(file *object.File) error {
		if selected(request, file.Name) {
			files = append(files, entities.NewScmFile(file.Name, status))
		}
		return nil
	})
	return files, err
}

// fileStatus maps a go-git status code; unmodified entries report false.
func fileStatus(code git.StatusCode) (entities.ScmFileStatus, bool) {
	switch code {
	case git.Added:
		return entities.StatusAdded, true
	case git.Modified:
		return entities.StatusModified, true
	case git.Deleted:
		return entities.StatusDeleted, true
	case git.Renamed:
		return entities.StatusRenamed, true
	case git.Copied:
		return entities.StatusCopied, true
	case git.UpdatedButUnmerged:
		return entities.StatusConflict, true
	case git.Untracked:
		return entities.StatusUnknown, true
	default:
		return "", false
	}
}

// changes lists the worktree status in path order. The staging code wins over the
// worktree code, as in "git status --porcelain".
func changes(request *entities.CommandRequest, worktree *git.Worktree, untracked bool) ([]entities.ScmFile, error) {
	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("reading the status: %w", err)
	}
	paths := lo.Keys(status)
	sort.Strings(paths)

	var files []entities.ScmFile
	for _, path := range paths {
		if !selected(request, path) {
			continue
		}
		entry := status[path]
		code := entry.Staging
		if code == git.Unmodified || code == git.Untracked {
			code = entry.Worktree
		}
		if code == git.Untracked && !untracked {
			continue
		}
		if fileState, ok := fileStatus(code); ok {
			file := entities.NewScmFile(path, fileState)
			if entry.Extra != "" {
				file.OriginalPath = entry.Extra
			}
			files = append(files, file)
		}
	}
	return files, nil
}

// treeChanges lists the files that differ between two commits; modified files get the
// given status.
func treeChanges(
	ctx context.Context,
	request *entities.CommandRequest,
	from, to *object.Commit,
	modified entities.ScmFileStatus,
) ([]entities.ScmFile, error) {
	if from.Hash == to.Hash {
		return nil, nil
	}
	fromTree, err := from.Tree()
	if err != nil {
		return nil, err
	}
	toTree, err := to.Tree()
	if err != nil {
		return nil, err
	}
	diff, err := fromTree.DiffContext(ctx, toTree)
	if err != nil {
		return nil, err
	}

	var files []entities.ScmFile
	for _, change := range diff {
		action, actionErr := change.Action()
		if actionErr != nil {
			return nil, actionErr
		}
		name, status := change.To.Name, modified
		switch action {
		case merkletrie.Insert:
			status = entities.StatusAdded
		case merkletrie.Delete:
			name, status = change.From.Name, entities.StatusDeleted
		case merkletrie.Modify:
		}
		if selected(request, name) {
			files = append(files, entities.NewScmFile(name, status))
		}
	}
	return files, nil
}

// contents reads a file of a commit, "" when it does not exist there.
func contents(commit *object.Commit, path string) (string, error) {
	if commit == nil {
		return "", nil
	}
	file, err := commit.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return file.Contents()
}

// workingContents reads a file of the working copy, "" when it was deleted.
func workingContents(request *entities.CommandRequest, path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(request.BaseDir(), filepath.FromSlash(path)))
	if os.IsNotExist(err) {
		return "", nil
	}
	return string(data), err
}

// ignoreUpToDate treats "already up-to-date" as success.
func ignoreUpToDate(err error) error {
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// shortHash truncates a hash to length characters when length is positive.
func shortHash(hash plumbing.Hash, length int) string {
	full := hash.String()
	if length > 0 && length < len(full) {
		return full[:length]
	}
	return full
}
