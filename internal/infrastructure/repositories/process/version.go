package process

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

type collector struct {
	lines []string
}

func (c *collector) ConsumeLine(line string) {
	c.lines = append(c.lines, line)
}

// DetectVersion runs the tool's version command and returns a canonical semver ("v2.43.0").
func DetectVersion(
	ctx context.Context,
	runner repositories.CommandRunner,
	tool *repositories.ToolSpec,
) (string, error) {
	out := &collector{}
	invocation := entities.NewInvocation(tool.Executable, tool.VersionArgs...)
	code, err := runner.Run(ctx, invocation, out, out)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("%s exited with code %d", invocation.CommandLine(), code)
	}
	return ParseVersion(strings.Join(out.lines, "\n"))
}

// ParseVersion extracts the first dotted version number from free text.
func ParseVersion(text string) (string, error) {
	match := versionPattern.FindStringSubmatch(text)
	if match == nil {
		return "", fmt.Errorf("no version number in %q", text)
	}
	patch := match[3]
	if patch == "" {
		patch = "0"
	}
	version := semver.Canonical(fmt.Sprintf("v%s.%s.%s", trimZeros(match[1]), trimZeros(match[2]), trimZeros(patch)))
	if !semver.IsValid(version) {
		return "", fmt.Errorf("invalid version %q", version)
	}
	return version, nil
}

// AtLeast reports whether version satisfies minimum. An empty minimum always passes.
func AtLeast(version, minimum string) bool {
	if minimum == "" {
		return true
	}
	return semver.IsValid(version) && semver.Compare(version, minimum) >= 0
}

func trimZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
