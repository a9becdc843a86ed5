package scmcore

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
)

// Relativize maps a tool reported path (absolute, or relative to the working directory)
// to a slash separated path relative to baseDir.
func Relativize(baseDir, toolPath string) string {
	native := filepath.FromSlash(strings.TrimSpace(toolPath))
	if filepath.IsAbs(native) && baseDir != "" {
		if rel, err := filepath.Rel(baseDir, native); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return path.Clean(filepath.ToSlash(native))
}

// StripPrefix removes a repository relative prefix, as printed by "git rev-parse --show-prefix".
func StripPrefix(prefix, toolPath string) string {
	if prefix == "" {
		return toolPath
	}
	prefix = strings.TrimSuffix(filepath.ToSlash(prefix), "/") + "/"
	if strings.HasPrefix(toolPath, prefix) {
		return toolPath[len(prefix):]
	}
	return toolPath
}

// MessageFile writes a commit message into a temporary file and registers its removal
// when the pipeline finishes.
func MessageFile(session *Session, message string) (string, error) {
	file, err := os.CreateTemp("", "scmforge-message-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create the message file: %w", err)
	}
	name := file.Name()
	session.OnFinish(func() {
		if removeErr := os.Remove(name); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf("Failed to remove %q: %v", name, removeErr)
		}
	})

	if _, writeErr := file.WriteString(message); writeErr != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write the message file: %w", writeErr)
	}
	if closeErr := file.Close(); closeErr != nil {
		return "", fmt.Errorf("failed to close the message file: %w", closeErr)
	}
	return name, nil
}

// Files returns the requested relative paths, or nil for the whole tree.
func Files(request *entities.CommandRequest) []string {
	return request.FileSet.Files()
}

// RequireMessage rejects checkins without a message.
func RequireMessage(request *entities.CommandRequest) error {
	if strings.TrimSpace(request.Parameters.Message) == "" {
		return errors.New("a commit message is required")
	}
	return nil
}

// RequireName rejects tag and branch commands without a name.
func RequireName(request *entities.CommandRequest) error {
	if strings.TrimSpace(request.Parameters.Name) == "" {
		return errors.New("a tag or branch name is required")
	}
	return nil
}
