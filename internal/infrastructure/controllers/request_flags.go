package controllers

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// AddRequestFlags declares the flags shared by every SCM command.
func AddRequestFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("basedir", "d", ".", "Working directory of the command")
	flags.StringSlice("include", nil, "Include patterns when no file is given (doublestar syntax)")
	flags.StringSlice("exclude", nil, "Exclude patterns applied to the includes")
	flags.StringP("message", "m", "", "Commit or tag message")
	flags.String("tag", "", "Tag to check out, update or compare")
	flags.String("branch", "", "Branch to check out, update or compare")
	flags.String("revision", "", "Revision to check out, update or compare")
	flags.String("name", "", "Name of the tag or branch to create or delete")
	flags.String("start-revision", "", "Start of a changelog or diff range")
	flags.String("end-revision", "", "End of a changelog or diff range")
	flags.String("start-date", "", "Changelog start date (YYYY-MM-DD or RFC 3339)")
	flags.String("end-date", "", "Changelog end date (YYYY-MM-DD or RFC 3339)")
	flags.Int("days", 0, "Changelog window in days, ignored with --start-date")
	flags.Int("limit", 0, "Maximum number of changelog entries")
	flags.Bool("recursive", true, "Descend into directories")
	flags.Bool("binary", false, "Treat the files as binary")
	flags.Bool("force", false, "Force the add of ignored files")
	flags.Bool("remote", false, "Operate on the repository instead of the working copy")
	flags.Bool("push", false, "Push commits, tags and branches of distributed backends")
	flags.String("output-dir", "", "Target directory of an export")
	flags.Bool("local", false, "Also create the directories in the working copy")
	flags.Bool("ignore-whitespace", false, "Ignore whitespace changes in blame and diff")
	flags.Int("short-revision-length", 0, "Abbreviate revisions to this many characters")
	flags.String("password", "", "Password for login")
}

// RequestFromFlags builds a request for the given command out of the positional
// arguments ("<scm-url> [files...]") and the flags.
func RequestFromFlags(
	cmd *cobra.Command,
	commandType entities.CommandType,
	arguments []string,
) (*entities.CommandRequest, error) {
	if len(arguments) == 0 {
		return nil, fmt.Errorf("%w: an scm url is required", entities.ErrNilRepository)
	}
	flags := cmd.Flags()

	baseDir, _ := flags.GetString("basedir")
	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}

	fileSet := entities.NewFileSet(baseDir, arguments[1:]...)
	includes, _ := flags.GetStringSlice("include")
	excludes, _ := flags.GetStringSlice("exclude")
	if len(arguments) == 1 && (len(includes) > 0 || len(excludes) > 0) {
		if fileSet, err = entities.NewFileSetWithPatterns(baseDir, includes, excludes); err != nil {
			return nil, err
		}
	}

	parameters := entities.CommandParameters{
		Version:      versionFromFlags(cmd),
		StartVersion: revisionFlag(cmd, "start-revision"),
		EndVersion:   revisionFlag(cmd, "end-revision"),
	}
	parameters.Message, _ = flags.GetString("message")
	parameters.Name, _ = flags.GetString("name")
	parameters.NumDays, _ = flags.GetInt("days")
	parameters.Limit, _ = flags.GetInt("limit")
	parameters.Recursive, _ = flags.GetBool("recursive")
	parameters.Binary, _ = flags.GetBool("binary")
	parameters.ForceAdd, _ = flags.GetBool("force")
	parameters.Remote, _ = flags.GetBool("remote")
	parameters.PushChanges, _ = flags.GetBool("push")
	parameters.OutputDirectory, _ = flags.GetString("output-dir")
	parameters.CreateInLocal, _ = flags.GetBool("local")
	parameters.IgnoreWhitespace, _ = flags.GetBool("ignore-whitespace")
	parameters.ShortRevisionLength, _ = flags.GetInt("short-revision-length")
	parameters.Password, _ = flags.GetString("password")
	if branch, _ := flags.GetString("branch"); branch != "" && commandType == entities.CommandChangeLog {
		parameters.Branch = entities.NewBranchVersion(branch)
	}

	if parameters.StartDate, err = dateFlag(cmd, "start-date"); err != nil {
		return nil, err
	}
	if parameters.EndDate, err = dateFlag(cmd, "end-date"); err != nil {
		return nil, err
	}

	return &entities.CommandRequest{
		Command:    commandType,
		URL:        arguments[0],
		FileSet:    fileSet,
		Parameters: parameters,
	}, nil
}

// versionFromFlags picks the first of --tag, --branch and --revision that is set.
func versionFromFlags(cmd *cobra.Command) *entities.ScmVersion {
	if tag, _ := cmd.Flags().GetString("tag"); tag != "" {
		return entities.NewTagVersion(tag)
	}
	if branch, _ := cmd.Flags().GetString("branch"); branch != "" {
		return entities.NewBranchVersion(branch)
	}
	return revisionFlag(cmd, "revision")
}

func revisionFlag(cmd *cobra.Command, name string) *entities.ScmVersion {
	if value, _ := cmd.Flags().GetString(name); value != "" {
		return entities.NewRevision(value)
	}
	return nil
}

func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return nil, nil
	}
	parsed, ok := scmcore.ParseDate(value, dateLayouts...)
	if !ok {
		return nil, fmt.Errorf("--%s: cannot parse %q as a date", name, value)
	}
	return &parsed, nil
}
