package accurev

import (
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/scmcore"
)

// elementPath maps an AccuRev depot relative location ("/./src/a.txt" or "\.\src\a.txt").
func elementPath(location string) string {
	location = strings.ReplaceAll(strings.TrimSpace(location), `\`, "/")
	return strings.TrimPrefix(strings.TrimPrefix(location, "/./"), "./")
}

// xmlConsumer buffers the whole output; AccuRev XML responses are decoded at the end.
type xmlConsumer struct {
	lines []string
}

func (c *xmlConsumer) ConsumeLine(line string) {
	c.lines = append(c.lines, line)
}

func (c *xmlConsumer) decode(target interface{}) bool {
	if len(c.lines) == 0 {
		return false
	}
	if err := xml.Unmarshal([]byte(strings.Join(c.lines, "\n")), target); err != nil {
		logger.Warnf("Failed to decode the accurev response: %v", err)
		return false
	}
	return true
}

type statResponse struct {
	Elements []struct {
		Location string `xml:"location,attr"`
		Dir      string `xml:"dir,attr"`
		Status   string `xml:"status,attr"`
	} `xml:"element"`
}

// statuses is checked in order; the first fragment found in the status attribute wins.
var statuses = []struct {
	fragment string
	status   entities.ScmFileStatus
}{
	{"(overlap)", entities.StatusConflict},
	{"(underlap)", entities.StatusConflict},
	{"(defunct)", entities.StatusDeleted},
	{"(missing)", entities.StatusMissing},
	{"(external)", entities.StatusUnknown},
	{"(modified)", entities.StatusModified},
	{"(kept)", entities.StatusModified},
	{"(stale)", entities.StatusPatched},
}

// StatConsumer decodes "accurev stat -fx".
type StatConsumer struct {
	xmlConsumer
}

func NewStatConsumer() *StatConsumer {
	return &StatConsumer{}
}

func (c *StatConsumer) Files() []entities.ScmFile {
	var response statResponse
	if !c.decode(&response) {
		return nil
	}
	var files []entities.ScmFile
	for _, element := range response.Elements {
		if element.Dir == "yes" {
			continue
		}
		for _, s := range statuses {
			if strings.Contains(element.Status, s.fragment) {
				files = append(files, entities.NewScmFile(elementPath(element.Location), s.status))
				break
			}
		}
	}
	return files
}

func (c *StatConsumer) Apply(result *entities.ScmResult) {
	result.AddFiles(c.Files()...)
}

type histResponse struct {
	Transactions []struct {
		ID       string `xml:"id,attr"`
		Type     string `xml:"type,attr"`
		Time     int64  `xml:"time,attr"`
		User     string `xml:"user,attr"`
		Comment  string `xml:"comment"`
		Versions []struct {
			Path    string `xml:"path,attr"`
			Real    string `xml:"real,attr"`
			Virtual string `xml:"virtual,attr"`
		} `xml:"version"`
	} `xml:"transaction"`
}

// transactionActions maps a transaction type to the action of its versions.
var transactionActions = map[string]entities.ScmFileStatus{
	"add":     entities.StatusAdded,
	"defunct": entities.StatusDeleted,
	"promote": entities.StatusModified,
	"keep":    entities.StatusModified,
	"move":    entities.StatusRenamed,
}

// HistConsumer decodes "accurev hist -fx".
type HistConsumer struct {
	xmlConsumer
	request *entities.CommandRequest
}

func NewHistConsumer(request *entities.CommandRequest) *HistConsumer {
	return &HistConsumer{request: request}
}

func (c *HistConsumer) ChangeSets() []entities.ChangeSet {
	var response histResponse
	if !c.decode(&response) {
		return nil
	}
	sets := make([]entities.ChangeSet, 0, len(response.Transactions))
	for _, tx := range response.Transactions {
		action, ok := transactionActions[tx.Type]
		if !ok {
			action = entities.StatusModified
		}
		set := entities.ChangeSet{
			Date:     time.Unix(tx.Time, 0).UTC(),
			Author:   tx.User,
			Comment:  strings.TrimSpace(tx.Comment),
			Revision: tx.ID,
		}
		for _, v := range tx.Versions {
			set.Files = append(set.Files, entities.ChangeFile{Name: elementPath(v.Path), Revision: v.Real, Action: action})
		}
		sets = append(sets, set)
	}
	return sets
}

func (c *HistConsumer) Apply(result *entities.ScmResult) {
	result.ChangeLog = scmcore.BuildChangeLog(c.request, c.ChangeSets(), false)
}

// NewElementConsumer reads "<verb> element /./path" progress lines.
func NewElementConsumer(pattern *regexp.Regexp, status entities.ScmFileStatus) *scmcore.LineFunc {
	var files []entities.ScmFile
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			if m := pattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				files = append(files, entities.NewScmFile(elementPath(m[1]), status))
			}
		},
		OnApply: func(result *entities.ScmResult) { result.AddFiles(files...) },
	}
}

var (
	AddedPattern       = regexp.MustCompile(`^Added and kept element (.+)$`)
	PromotedPattern    = regexp.MustCompile(`^Promoted element (.+)$`)
	PopulatingPattern  = regexp.MustCompile(`^Populating element (.+)$`)
	UpdatingPattern    = regexp.MustCompile(`^(?:Updating|Content \(.*\) of) element (.+)$`)
	transactionPattern = regexp.MustCompile(`(?i)transaction (\d+)`)
)

// NewPromoteConsumer reads the promoted elements and the transaction number.
func NewPromoteConsumer() *scmcore.LineFunc {
	elements := NewElementConsumer(PromotedPattern, entities.StatusCheckedIn)
	revision := scmcore.NewRevisionConsumer(transactionPattern)
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			elements.ConsumeLine(line)
			revision.ConsumeLine(line)
		},
		OnApply: func(result *entities.ScmResult) {
			elements.Apply(result)
			revision.Apply(result)
		},
	}
}

// NewInfoConsumer parses the "Key:<tab>value" lines of "accurev info".
func NewInfoConsumer(request *entities.CommandRequest) *scmcore.LineFunc {
	values := make(map[string]string)
	return &scmcore.LineFunc{
		OnLine: func(line string) {
			if key, value, found := strings.Cut(line, ":"); found {
				values[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		},
		OnApply: func(result *entities.ScmResult) {
			result.Revision = values["Basis"]
			for _, path := range request.FileSet.PathsOrDot() {
				result.Info = append(result.Info, entities.InfoItem{
					Path:              path,
					URL:               values["Top"],
					RepositoryRoot:    values["Depot"],
					Revision:          values["Basis"],
					Kind:              values["Workspace/ref"],
					LastChangedAuthor: values["Principal"],
				})
			}
		},
	}
}

// transactionTime renders a time in the "-t" syntax of accurev.
func transactionTime(t time.Time) string {
	return t.Format("2006/01/02 15:04:05")
}

func transactionID(version *entities.ScmVersion) string {
	if _, err := strconv.Atoi(version.NameOrEmpty()); err == nil {
		return version.Name
	}
	return ""
}
