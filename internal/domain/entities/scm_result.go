package entities

// LineStat counts the lines a diff adds to and deletes from one file.
type LineStat struct {
	Added   int
	Deleted int
}

// ScmResult is what every command returns. Success=false carries the tool's diagnostics in
// ProviderMessage and CommandOutput.
type ScmResult struct {
	Success         bool
	CommandLine     string
	ProviderMessage string
	CommandOutput   string
	DryRun          bool

	Files       []ScmFile
	Revision    string
	ChangeLog   *ChangeLogSet
	Differences map[string]string // path -> unified diff hunk text
	DiffStats   map[string]LineStat
	Patch       string
	Blame       []BlameLine
	Info        []InfoItem
	Branches    map[string]string // name -> revision
	Tags        map[string]string
}

// NewSuccessResult returns an empty successful result.
func NewSuccessResult(commandLine string) *ScmResult {
	return &ScmResult{Success: true, CommandLine: commandLine}
}

// NewFailureResult returns a failed result carrying the tool diagnostics.
func NewFailureResult(commandLine, message, output string) *ScmResult {
	return &ScmResult{
		Success:         false,
		CommandLine:     commandLine,
		ProviderMessage: message,
		CommandOutput:   output,
	}
}

// Fail turns the result into a failure.
func (r *ScmResult) Fail(message, output string) {
	r.Success = false
	r.ProviderMessage = message
	r.CommandOutput = output
}

func (r *ScmResult) AddFiles(files ...ScmFile) {
	r.Files = append(r.Files, files...)
}

// AddDifference stores the diff text of one path.
func (r *ScmResult) AddDifference(path, text string) {
	if r.Differences == nil {
		r.Differences = make(map[string]string)
	}
	r.Differences[path] = text
}

func (r *ScmResult) AddDiffStat(path string, added, deleted int) {
	if r.DiffStats == nil {
		r.DiffStats = make(map[string]LineStat)
	}
	r.DiffStats[path] = LineStat{Added: added, Deleted: deleted}
}

func (r *ScmResult) AddBranch(name, revision string) {
	if r.Branches == nil {
		r.Branches = make(map[string]string)
	}
	r.Branches[name] = revision
}

func (r *ScmResult) AddTag(name, revision string) {
	if r.Tags == nil {
		r.Tags = make(map[string]string)
	}
	r.Tags[name] = revision
}

// AppendCommandLine keeps every step of a multi-step command in the result.
func (r *ScmResult) AppendCommandLine(line string) {
	if r.CommandLine == "" {
		r.CommandLine = line
		return
	}
	r.CommandLine += "\n" + line
}
