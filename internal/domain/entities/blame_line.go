package entities

import "time"

// BlameLine attributes one line of a file.
type BlameLine struct {
	Revision   string
	Author     string
	Date       time.Time
	LineNumber int
	Line       string
}
