package entities

// VersionKind distinguishes branch, tag and plain revision selectors.
type VersionKind string

const (
	VersionBranch   VersionKind = "branch"
	VersionTag      VersionKind = "tag"
	VersionRevision VersionKind = "revision"
)

// ScmVersion selects a line of development or a point in history.
type ScmVersion struct {
	Kind VersionKind
	Name string
}

func NewBranchVersion(name string) *ScmVersion {
	return &ScmVersion{Kind: VersionBranch, Name: name}
}

func NewTagVersion(name string) *ScmVersion {
	return &ScmVersion{Kind: VersionTag, Name: name}
}

func NewRevision(name string) *ScmVersion {
	return &ScmVersion{Kind: VersionRevision, Name: name}
}

// IsSet reports whether the version carries a name.
func (v *ScmVersion) IsSet() bool {
	return v != nil && v.Name != ""
}

func (v *ScmVersion) IsBranch() bool {
	return v.IsSet() && v.Kind == VersionBranch
}

func (v *ScmVersion) IsTag() bool {
	return v.IsSet() && v.Kind == VersionTag
}

func (v *ScmVersion) IsRevision() bool {
	return v.IsSet() && v.Kind == VersionRevision
}

// NameOrEmpty is nil safe.
func (v *ScmVersion) NameOrEmpty() string {
	if v == nil {
		return ""
	}
	return v.Name
}

func (v *ScmVersion) String() string {
	if v == nil {
		return ""
	}
	return string(v.Kind) + " " + v.Name
}
