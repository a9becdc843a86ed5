package entities

// ScmFileStatus is the status tag attached to a file by an output consumer.
type ScmFileStatus string

const (
	StatusAdded      ScmFileStatus = "added"
	StatusDeleted    ScmFileStatus = "deleted"
	StatusModified   ScmFileStatus = "modified"
	StatusRenamed    ScmFileStatus = "renamed"
	StatusCopied     ScmFileStatus = "copied"
	StatusMissing    ScmFileStatus = "missing"
	StatusCheckedIn  ScmFileStatus = "checked-in"
	StatusCheckedOut ScmFileStatus = "checked-out"
	StatusConflict   ScmFileStatus = "conflict"
	StatusPatched    ScmFileStatus = "patched"
	StatusUpdated    ScmFileStatus = "updated"
	StatusTagged     ScmFileStatus = "tagged"
	StatusLocked     ScmFileStatus = "locked"
	StatusUnknown    ScmFileStatus = "unknown"
	StatusEdited     ScmFileStatus = "edit"
	StatusExternal   ScmFileStatus = "external"
)

func (s ScmFileStatus) String() string {
	return string(s)
}

// IsDiff reports whether the status describes a local change against the repository.
func (s ScmFileStatus) IsDiff() bool {
	switch s {
	case StatusAdded, StatusDeleted, StatusModified, StatusRenamed, StatusCopied:
		return true
	default:
		return false
	}
}

// IsTransaction reports whether the status is the outcome of a repository transaction.
func (s ScmFileStatus) IsTransaction() bool {
	switch s {
	case StatusCheckedIn, StatusAdded, StatusDeleted, StatusTagged:
		return true
	default:
		return false
	}
}

// IsUpdate reports whether the file content changed because of an update.
func (s ScmFileStatus) IsUpdate() bool {
	switch s {
	case StatusUpdated, StatusPatched, StatusAdded, StatusDeleted, StatusConflict:
		return true
	default:
		return false
	}
}

// ScmFile is a single file status record. Values are built by consumers and never mutated.
type ScmFile struct {
	Path         string
	Status       ScmFileStatus
	Revision     string // optional, when the tool reports one
	OriginalPath string // source path for renames and copies
}

// NewScmFile builds a file status record.
func NewScmFile(path string, status ScmFileStatus) ScmFile {
	return ScmFile{Path: path, Status: status}
}

// WithRevision returns a copy of the record carrying the given revision.
func (f ScmFile) WithRevision(revision string) ScmFile {
	f.Revision = revision
	return f
}

func (f ScmFile) String() string {
	return f.Path + "[" + string(f.Status) + "]"
}
