package entities

import "fmt"

// CommandType names one operation of the uniform command API.
type CommandType string

const (
	CommandAdd        CommandType = "add"
	CommandRemove     CommandType = "remove"
	CommandStatus     CommandType = "status"
	CommandCheckIn    CommandType = "checkin"
	CommandCheckOut   CommandType = "checkout"
	CommandUpdate     CommandType = "update"
	CommandDiff       CommandType = "diff"
	CommandTag        CommandType = "tag"
	CommandUntag      CommandType = "untag"
	CommandBranch     CommandType = "branch"
	CommandChangeLog  CommandType = "changelog"
	CommandBlame      CommandType = "blame"
	CommandList       CommandType = "list"
	CommandInfo       CommandType = "info"
	CommandRemoteInfo CommandType = "remoteinfo"
	CommandMkdir      CommandType = "mkdir"
	CommandExport     CommandType = "export"
	CommandEdit       CommandType = "edit"
	CommandUnEdit     CommandType = "unedit"
	CommandLogin      CommandType = "login"
)

// AllCommandTypes returns the full command vocabulary in display order.
func AllCommandTypes() []CommandType {
	return []CommandType{
		CommandAdd, CommandRemove, CommandStatus, CommandCheckIn, CommandCheckOut,
		CommandUpdate, CommandDiff, CommandTag, CommandUntag, CommandBranch,
		CommandChangeLog, CommandBlame, CommandList, CommandInfo, CommandRemoteInfo,
		CommandMkdir, CommandExport, CommandEdit, CommandUnEdit, CommandLogin,
	}
}

func (c CommandType) String() string {
	return string(c)
}

// RequiresFiles reports whether the command refuses to operate on a whole tree.
func (c CommandType) RequiresFiles() bool {
	switch c {
	case CommandAdd, CommandRemove, CommandEdit, CommandUnEdit, CommandBlame, CommandMkdir:
		return true
	default:
		return false
	}
}

// ParseCommandType converts a name into a CommandType.
func ParseCommandType(name string) (CommandType, error) {
	for _, c := range AllCommandTypes() {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCommand, name)
}
