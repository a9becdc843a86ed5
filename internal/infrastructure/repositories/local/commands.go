package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

func command(commandType entities.CommandType, run scmcore.RunFunc) scmcore.CommandFunc {
	return scmcore.InProcess(entities.ProviderLocal, commandType, run)
}

// checkout opens the source tree and the working copy of a request.
func checkout(request *entities.CommandRequest) (*Tree, *Tree, *Manifest, error) {
	manifest, err := LoadManifest(request.BaseDir())
	if err != nil {
		return nil, nil, nil, err
	}
	source, err := NewTree(Of(request).Source())
	if err != nil {
		return nil, nil, nil, err
	}
	working, err := NewTree(request.BaseDir())
	if err != nil {
		return nil, nil, nil, err
	}
	return source, working, manifest, nil
}

// selected narrows a list to the files of the request, or keeps all when none were given.
func selected(request *entities.CommandRequest, files []string) []string {
	if request.FileSet.IsEmpty() {
		return files
	}
	var result []string
	for _, file := range files {
		if request.FileSet.Contains(file) {
			result = append(result, file)
		}
	}
	return result
}

func CheckOut() scmcore.CommandFunc {
	return command(entities.CommandCheckOut, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		repository := Of(request)
		source, err := NewTree(repository.SourceOf(request.Parameters.Version))
		if err != nil {
			return err
		}
		if _, err = os.Stat(source.Dir); err != nil {
			return fmt.Errorf("the module %s cannot be read: %w", source.Dir, err)
		}

		files, err := source.CopyTo(request.BaseDir())
		if err != nil {
			return err
		}
		working := &Tree{Dir: request.BaseDir(), ignore: source.ignore}
		manifest := NewManifest(repository.Source())
		for _, file := range files {
			info, statErr := working.Stat(file)
			if statErr != nil {
				return statErr
			}
			manifest.Record(file, info)
			result.AddFiles(entities.NewScmFile(file, entities.StatusCheckedOut))
		}
		return manifest.Save(request.BaseDir())
	})
}

// Update brings new and changed source files into the checkout and drops the ones deleted
// from the source. Files edited locally are left alone and reported as conflicts.
func Update() scmcore.CommandFunc {
	return command(entities.CommandUpdate, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		source, working, manifest, err := checkout(request)
		if err != nil {
			return err
		}
		files, err := source.Files()
		if err != nil {
			return err
		}

		present := make(map[string]bool, len(files))
		for _, file := range selected(request, files) {
			present[file] = true
			sourceInfo, statErr := source.Stat(file)
			if statErr != nil {
				return statErr
			}
			_, known := manifest.Files[file]
			if known && !manifest.Changed(file, sourceInfo) {
				continue
			}
			if localInfo, localErr := working.Stat(file); localErr == nil && known && manifest.Changed(file, localInfo) {
				result.AddFiles(entities.NewScmFile(file, entities.StatusConflict))
				continue
			}
			info, copyErr := source.CopyFile(file, working)
			if copyErr != nil {
				return copyErr
			}
			manifest.Record(file, info)
			status := entities.StatusUpdated
			if !known {
				status = entities.StatusAdded
			}
			result.AddFiles(entities.NewScmFile(file, status))
		}

		for _, file := range selected(request, manifest.Paths()) {
			if present[file] || lo.Contains(manifest.Added, file) {
				continue
			}
			if err = os.Remove(working.Abs(file)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			manifest.Forget(file)
			result.AddFiles(entities.NewScmFile(file, entities.StatusDeleted))
		}
		return manifest.Save(request.BaseDir())
	})
}

func Status() scmcore.CommandFunc {
	return command(entities.CommandStatus, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		_, working, manifest, err := checkout(request)
		if err != nil {
			return err
		}
		result.AddFiles(changes(request, working, manifest, true)...)
		return nil
	})
}

// changes compares the checkout with its manifest.
func changes(request *entities.CommandRequest, working *Tree, manifest *Manifest, untracked bool) []entities.ScmFile {
	var result []entities.ScmFile
	files, err := working.Files()
	if err != nil {
		logger.Warnf("Cannot list %s: %v", working.Dir, err)
	}
	onDisk := make(map[string]bool, len(files))
	for _, file := range selected(request, files) {
		onDisk[file] = true
		info, statErr := working.Stat(file)
		if statErr != nil {
			continue
		}
		_, known := manifest.Files[file]
		switch {
		case lo.Contains(manifest.Added, file):
			result = append(result, entities.NewScmFile(file, entities.StatusAdded))
		case !known:
			if untracked {
				result = append(result, entities.NewScmFile(file, entities.StatusUnknown))
			}
		case manifest.Changed(file, info):
			result = append(result, entities.NewScmFile(file, entities.StatusModified))
		}
	}
	for _, file := range selected(request, manifest.Paths()) {
		switch {
		case lo.Contains(manifest.Removed, file):
			result = append(result, entities.NewScmFile(file, entities.StatusDeleted))
		case !onDisk[file]:
			result = append(result, entities.NewScmFile(file, entities.StatusMissing))
		}
	}
	return result
}

func Add() scmcore.CommandFunc {
	return command(entities.CommandAdd, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		_, working, manifest, err := checkout(request)
		if err != nil {
			return err
		}
		for _, file := range scmcore.Files(request) {
			if _, statErr := working.Stat(file); statErr != nil {
				return fmt.Errorf("cannot add %s: %w", file, statErr)
			}
			manifest.MarkAdded(file)
			result.AddFiles(entities.NewScmFile(file, entities.StatusAdded))
		}
		return manifest.Save(request.BaseDir())
	})
}

func Remove() scmcore.CommandFunc {
	return command(entities.CommandRemove, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		_, working, manifest, err := checkout(request)
		if err != nil {
			return err
		}
		for _, file := range scmcore.Files(request) {
			if err = os.Remove(working.Abs(file)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if _, known := manifest.Files[file]; known {
				manifest.MarkRemoved(file)
			} else {
				manifest.Forget(file)
			}
			result.AddFiles(entities.NewScmFile(file, entities.StatusDeleted))
		}
		return manifest.Save(request.BaseDir())
	})
}

// CheckIn copies the modified and added files back into the module and deletes the removed ones.
func CheckIn() scmcore.CommandFunc {
	return command(entities.CommandCheckIn, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		source, working, manifest, err := checkout(request)
		if err != nil {
			return err
		}
		for _, change := range changes(request, working, manifest, false) {
			switch change.Status {
			case entities.StatusAdded, entities.StatusModified:
				if _, err = working.CopyFile(change.Path, source); err != nil {
					return err
				}
				info, statErr := working.Stat(change.Path)
				if statErr != nil {
					return statErr
				}
				manifest.Record(change.Path, info)
				manifest.Added = lo.Without(manifest.Added, change.Path)
			case entities.StatusDeleted:
				if err = os.Remove(source.Abs(change.Path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return err
				}
				manifest.Forget(change.Path)
			default:
				continue
			}
			result.AddFiles(entities.NewScmFile(change.Path, entities.StatusCheckedIn))
		}
		if request.Parameters.Message != "" {
			logger.Infof("Checked in %d file(s): %s", len(result.Files), request.Parameters.Message)
		}
		return manifest.Save(request.BaseDir())
	})
}

// Tag snapshots the module below "tags/<name>" of the root.
func Tag() scmcore.CommandFunc {
	return command(entities.CommandTag, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		if err := scmcore.RequireName(request); err != nil {
			return err
		}
		repository := Of(request)
		target := repository.TagDir(request.Parameters.Name)
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("the tag %s already exists", request.Parameters.Name)
		}
		source, err := NewTree(repository.Source())
		if err != nil {
			return err
		}
		files, err := source.CopyTo(target)
		if err != nil {
			return err
		}
		for _, file := range selected(request, files) {
			result.AddFiles(entities.NewScmFile(file, entities.StatusTagged))
		}
		result.AddTag(request.Parameters.Name, "")
		return nil
	})
}

func List() scmcore.CommandFunc {
	return command(entities.CommandList, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		source, err := NewTree(Of(request).SourceOf(request.Parameters.Version))
		if err != nil {
			return err
		}
		files, err := source.Files()
		if err != nil {
			return err
		}
		for _, file := range selected(request, files) {
			result.AddFiles(entities.NewScmFile(file, entities.StatusCheckedIn))
		}
		return nil
	})
}

// Mkdir creates the directories in the module, and in the checkout when asked to.
func Mkdir() scmcore.CommandFunc {
	return command(entities.CommandMkdir, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		source := Of(request).Source()
		checkout := request.FileSet.AbsolutePaths()
		for i, dir := range scmcore.Files(request) {
			if err := os.MkdirAll(filepath.Join(source, filepath.FromSlash(dir)), 0o755); err != nil {
				return err
			}
			if request.Parameters.CreateInLocal {
				if err := os.MkdirAll(checkout[i], 0o755); err != nil {
					return err
				}
			}
			result.AddFiles(entities.NewScmFile(dir, entities.StatusAdded))
		}
		return nil
	})
}

// Export copies a version of the module without a manifest.
func Export() scmcore.CommandFunc {
	return command(entities.CommandExport, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		source, err := NewTree(Of(request).SourceOf(request.Parameters.Version))
		if err != nil {
			return err
		}
		target := request.Parameters.OutputDirectory
		if target == "" {
			target = request.BaseDir()
		}
		files, err := source.CopyTo(target)
		if err != nil {
			return err
		}
		for _, file := range files {
			result.AddFiles(entities.NewScmFile(file, entities.StatusCheckedOut))
		}
		return nil
	})
}

// ChangeLog has no history to read, so every file of the module becomes a change at its
// modification time and the changes within one minute are merged.
func ChangeLog() scmcore.CommandFunc {
	return command(entities.CommandChangeLog, func(_ context.Context, request *entities.CommandRequest, result *entities.ScmResult) error {
		source, err := NewTree(Of(request).Source())
		if err != nil {
			return err
		}
		files, err := source.Files()
		if err != nil {
			return err
		}
		var sets []entities.ChangeSet
		for _, file := range selected(request, files) {
			info, statErr := source.Stat(file)
			if statErr != nil {
				continue
			}
			sets = append(sets, entities.ChangeSet{
				Date:  info.ModTime(),
				Files: []entities.ChangeFile{{Name: file, Action: entities.StatusModified}},
			})
		}
		result.ChangeLog = scmcore.BuildChangeLog(request, sets, true)
		return nil
	})
}
