package entities

// InfoItem describes one path as reported by an info style command.
type InfoItem struct {
	Path                string
	URL                 string
	RepositoryRoot      string
	RepositoryUUID      string
	Revision            string
	Kind                string
	Schedule            string
	LastChangedAuthor   string
	LastChangedRevision string
	LastChangedDate     string
}
