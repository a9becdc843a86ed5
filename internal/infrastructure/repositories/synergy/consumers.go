package synergy

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// querySeparator splits the columns of the "ccm query -f" formats below.
const querySeparator = "|"

var (
	// StatusFormat renders one working object per row.
	StatusFormat = strings.Join([]string{"%status", "%objectname", "%path"}, querySeparator)
	// ChangeLogFormat keeps the comment last since it may contain the separator.
	ChangeLogFormat = strings.Join([]string{"%objectname", "%owner", "%create_time", "%task", "%comment"}, querySeparator)

	replacesPattern  = regexp.MustCompile(`^'(.+?)' replaces '(.+?)'`)
	checkedInPattern = regexp.MustCompile(`^Checked in '(.+?)' to '`)
	addressPattern   = regexp.MustCompile(`^\S+:\d+:[\d.:a-fA-F]+$`)
)

// createTimeLayouts are the %create_time renderings of ccm.
var createTimeLayouts = []string{
	"Mon Jan 2 15:04:05 2006",
	"Mon Jan _2 15:04:05 2006",
	"1/2/06 15:04",
	"2006-01-02 15:04:05",
}

// ObjectName splits a four part name "name~version:type:instance" into the name and the version.
func ObjectName(objectName, delimiter string) (name, version string) {
	twoPart, _, _ := strings.Cut(strings.TrimSpace(objectName), ":")
	if i := strings.LastIndex(twoPart, delimiter); i > 0 && delimiter != "" {
		return twoPart[:i], twoPart[i+len(delimiter):]
	}
	return twoPart, ""
}

// NewAddressConsumer captures the CCM_ADDR printed by "ccm start -m -q".
func NewAddressConsumer(store func(address string)) *scmcore.LineFunc {
	return &scmcore.LineFunc{OnLine: func(line string) {
		if line = strings.TrimSpace(line); addressPattern.MatchString(line) {
			store(line)
		}
	}}
}

// NewStatusConsumer reads StatusFormat rows; every working object is a local modification.
func NewStatusConsumer(request *entities.CommandRequest) *scmcore.LineFunc {
	delimiter := Of(request).Delimiter
	var files []entities.ScmFile
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			fields := strings.Split(strings.TrimSpace(line), querySeparator)
			if len(fields) < 3 || fields[0] != "working" {
				return
			}
			name, version := ObjectName(fields[1], delimiter)
			path := name
			if dir := strings.TrimSpace(fields[2]); dir != "" {
				path = scmcore.Relativize(request.BaseDir(), strings.TrimSuffix(dir, "/")+"/"+name)
			}
			files = append(files, entities.NewScmFile(path, entities.StatusModified).WithRevision(version))
		},
		OnApply: func(result *entities.ScmResult) { result.AddFiles(files...) },
	}
}

// NewUpdateConsumer parses the "'new~2' replaces 'old~1' under 'dir~1'." lines of ccm update.
func NewUpdateConsumer(delimiter string) *scmcore.LineFunc {
	var files []entities.ScmFile
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			if m := replacesPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				name, version := ObjectName(m[1], delimiter)
				file := entities.NewScmFile(name, entities.StatusUpdated).WithRevision(version)
				files = append(files, file)
			}
		},
		OnApply: func(result *entities.ScmResult) { result.AddFiles(files...) },
	}
}

// NewCheckInConsumer parses the "Checked in 'file~2' to 'integrate'" lines of ccm task -checkin.
func NewCheckInConsumer(delimiter string) *scmcore.LineFunc {
	var files []entities.ScmFile
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			if m := checkedInPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				name, version := ObjectName(m[1], delimiter)
				files = append(files, entities.NewScmFile(name, entities.StatusCheckedIn).WithRevision(version))
			}
		},
		OnApply: func(result *entities.ScmResult) { result.AddFiles(files...) },
	}
}

// NewChangeLogConsumer reads ChangeLogFormat rows, one object version per row.
func NewChangeLogConsumer(request *entities.CommandRequest) *scmcore.LineFunc {
	delimiter := Of(request).Delimiter
	var sets []entities.ChangeSet
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			fields := strings.SplitN(line, querySeparator, 5)
			if len(fields) < 5 {
				if n := len(sets); n > 0 && strings.TrimSpace(line) != "" {
					sets[n-1].Comment += "\n" + strings.TrimSpace(line)
				}
				return
			}
			name, version := ObjectName(fields[0], delimiter)
			date, _ := scmcore.ParseDate(fields[2], createTimeLayouts...)
			sets = append(sets, entities.ChangeSet{
				Date:     date,
				Author:   strings.TrimSpace(fields[1]),
				Revision: strings.TrimSpace(fields[3]),
				Comment:  strings.TrimSpace(fields[4]),
				Files:    []entities.ChangeFile{{Name: name, Revision: version, Action: entities.StatusModified}},
			})
		},
		OnApply: scmcore.ChangeLogApply(request, &sets, true),
	}
}
