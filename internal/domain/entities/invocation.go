package entities

import (
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"
)

const secretMask = "*****"

// Invocation is one fully assembled tool command line. It is plain data: building an
// Invocation never spawns anything.
type Invocation struct {
	Executable   string
	Args         []string
	WorkingDir   string
	Env          map[string]string
	Stdin        string
	Secrets      []string
	SuccessCodes []int
	// MergeOutput sends stdout into the stderr stream so both arrive as one ordered stream,
	// delivered to the stderr consumer.
	MergeOutput bool
}

// NewInvocation starts a command line for executable.
func NewInvocation(executable string, args ...string) *Invocation {
	return &Invocation{Executable: executable, Args: append([]string{}, args...)}
}

// Arg appends arguments, skipping empty strings.
func (i *Invocation) Arg(args ...string) *Invocation {
	for _, a := range args {
		if a != "" {
			i.Args = append(i.Args, a)
		}
	}
	return i
}

// ArgIf appends arguments only when cond holds.
func (i *Invocation) ArgIf(cond bool, args ...string) *Invocation {
	if cond {
		i.Arg(args...)
	}
	return i
}

func (i *Invocation) In(dir string) *Invocation {
	i.WorkingDir = dir
	return i
}

func (i *Invocation) WithEnv(key, value string) *Invocation {
	if i.Env == nil {
		i.Env = make(map[string]string)
	}
	i.Env[key] = value
	return i
}

func (i *Invocation) WithStdin(stdin string) *Invocation {
	i.Stdin = stdin
	return i
}

// CombineOutput merges stdout into stderr, like "1>&2".
func (i *Invocation) CombineOutput() *Invocation {
	i.MergeOutput = true
	return i
}

// Secret registers values that must never appear in a rendered command line.
func (i *Invocation) Secret(values ...string) *Invocation {
	i.Secrets = append(i.Secrets, lo.Filter(values, func(v string, _ int) bool { return v != "" })...)
	return i
}

// AcceptExitCodes declares the exit codes that mean success. The default is 0 only.
func (i *Invocation) AcceptExitCodes(codes ...int) *Invocation {
	i.SuccessCodes = append(i.SuccessCodes, codes...)
	return i
}

// Accepts reports whether code is a successful exit.
func (i *Invocation) Accepts(code int) bool {
	if len(i.SuccessCodes) == 0 {
		return code == 0
	}
	return lo.Contains(i.SuccessCodes, code)
}

// CommandLine renders a shell-quoted, secret-masked representation for logs and results.
func (i *Invocation) CommandLine() string {
	words := make([]string, 0, len(i.Args)+1)
	words = append(words, i.Executable)
	words = append(words, i.Args...)
	return i.Mask(shellquote.Join(words...))
}

// Mask replaces every registered secret in text.
func (i *Invocation) Mask(text string) string {
	secrets := append([]string{}, i.Secrets...)
	// longest first so that a secret containing another is masked whole
	sort.Slice(secrets, func(a, b int) bool { return len(secrets[a]) > len(secrets[b]) })
	for _, s := range secrets {
		if quoted := shellquote.Join(s); quoted != s {
			text = strings.ReplaceAll(text, quoted, secretMask)
		}
		text = strings.ReplaceAll(text, s, secretMask)
	}
	return text
}
