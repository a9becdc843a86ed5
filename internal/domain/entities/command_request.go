package entities

// CommandRequest is the input of the dispatcher. Either URL or Repository must be set;
// when both are, URL wins.
type CommandRequest struct {
	Command    CommandType
	URL        string
	Repository *ScmRepository
	FileSet    *FileSet
	Parameters CommandParameters
}

// BaseDir is the working directory of the request.
func (r *CommandRequest) BaseDir() string {
	if r.FileSet == nil {
		return ""
	}
	return r.FileSet.BaseDir
}

// ShouldPush reports whether a DVCS commit, tag or branch must also be pushed.
func (r *CommandRequest) ShouldPush() bool {
	return r.Parameters.PushChanges || r.Repository.Auth().PushChanges
}
