package entities

import "time"

// CommandParameters carries the optional arguments of every command. Each provider reads
// the subset it understands and ignores the rest.
type CommandParameters struct {
	Message string

	Version      *ScmVersion // checkout, update, diff, blame, list, export target
	StartVersion *ScmVersion
	EndVersion   *ScmVersion

	StartDate *time.Time
	EndDate   *time.Time
	NumDays   int
	Limit     int
	Branch    *ScmVersion // changelog branch filter

	Name string // tag or branch to create or delete

	Recursive        bool
	Binary           bool
	ForceAdd         bool
	IgnoreWhitespace bool
	CreateInLocal    bool
	Remote           bool
	PushChanges      bool

	ShortRevisionLength int
	OutputDirectory     string

	Password string // login only
}

// ResolvedStartDate applies NumDays when no explicit start date was given.
func (p CommandParameters) ResolvedStartDate(now time.Time) *time.Time {
	if p.StartDate != nil {
		return p.StartDate
	}
	if p.NumDays > 0 {
		start := now.AddDate(0, 0, -p.NumDays)
		return &start
	}
	return nil
}
