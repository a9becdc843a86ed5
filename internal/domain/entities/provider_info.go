package entities

// ProviderInfo describes one registered backend for the "providers" listing.
type ProviderInfo struct {
	Type              ProviderType
	MetadataDirectory string
	Commands          []CommandType
	Embedded          bool
	Executable        string
	Version           string // canonical semver, empty when not detected or not installed
	MinimumVersion    string
	Supported         bool
	Problem           string
}
