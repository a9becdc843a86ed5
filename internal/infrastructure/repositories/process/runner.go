package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abiosoft/lineprefix"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	"github.com/rios0rios0/scmforge/internal/domain/repositories"
)

const (
	maxLineSize      = 1024 * 1024
	defaultWaitDelay = 5 * time.Second
)

// Runner spawns tool processes and streams their output, line by line, to consumers.
type Runner struct {
	decoder   encoding.Encoding
	verbose   bool
	waitDelay time.Duration
}

// NewRunner builds a runner for the charset and verbosity of the settings.
func NewRunner(settings *entities.Settings) *Runner {
	runner := &Runner{waitDelay: defaultWaitDelay}
	if settings == nil {
		return runner
	}
	runner.verbose = settings.Verbose
	if settings.Encoding != "" {
		enc, err := LookupEncoding(settings.Encoding)
		if err != nil {
			logger.Warnf("Ignoring output encoding %q: %v", settings.Encoding, err)
		} else {
			runner.decoder = enc
		}
	}
	return runner
}

// NewRunnerFactory is the production CommandRunnerFactory.
func NewRunnerFactory() repositories.CommandRunnerFactory {
	return func(settings *entities.Settings) repositories.CommandRunner {
		return NewRunner(settings)
	}
}

var charmapAliases = map[string]*charmap.Charmap{
	"latin1":      charmap.ISO8859_1,
	"iso88591":    charmap.ISO8859_1,
	"iso885915":   charmap.ISO8859_15,
	"cp1252":      charmap.Windows1252,
	"windows1252": charmap.Windows1252,
	"cp437":       charmap.CodePage437,
	"cp850":       charmap.CodePage850,
}

// LookupEncoding resolves a charset name. UTF-8 resolves to nil (no decoding).
func LookupEncoding(name string) (encoding.Encoding, error) {
	normalized := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(name))
	if normalized == "utf8" {
		return nil, nil
	}
	if cm, ok := charmapAliases[normalized]; ok {
		return cm, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// Run executes the invocation. The exit code is returned as is; err is only set when the
// process could not be started or was interrupted by ctx.
func (it *Runner) Run(
	ctx context.Context,
	invocation *entities.Invocation,
	stdout, stderr repositories.OutputConsumer,
) (int, error) {
	//nolint:gosec // the executable and its arguments come from the provider builders
	cmd := exec.CommandContext(ctx, invocation.Executable, invocation.Args...)
	cmd.Dir = invocation.WorkingDir
	cmd.Env = mergeEnvironment(os.Environ(), invocation.Env)
	cmd.WaitDelay = it.waitDelay
	if invocation.Stdin != "" {
		cmd.Stdin = strings.NewReader(invocation.Stdin)
	}

	errReader, errWriter := io.Pipe()
	cmd.Stderr = errWriter
	writers := []*io.PipeWriter{errWriter}
	var outReader *io.PipeReader
	if invocation.MergeOutput {
		// the same writer on both makes exec hand the child a single pipe
		cmd.Stdout = errWriter
	} else {
		var outWriter *io.PipeWriter
		outReader, outWriter = io.Pipe()
		cmd.Stdout = outWriter
		writers = append(writers, outWriter)
	}
	closeWriters := func() {
		for _, w := range writers {
			_ = w.Close()
		}
	}

	logger.Debugf("Executing: %s (in %s)", invocation.CommandLine(), invocation.WorkingDir)
	if startErr := cmd.Start(); startErr != nil {
		closeWriters()
		return -1, fmt.Errorf("failed to start %q: %w", invocation.Executable, startErr)
	}

	tee, closeTee := it.teeFor(invocation)
	defer closeTee()

	// consumers are not safe for concurrent use, and a step may hand the same one to both streams
	var deliver sync.Mutex
	var wg sync.WaitGroup
	wg.Add(1)
	go it.drain(&wg, errReader, lockedConsumer{mu: &deliver, c: stderr}, invocation, tee)
	if outReader != nil {
		wg.Add(1)
		go it.drain(&wg, outReader, lockedConsumer{mu: &deliver, c: stdout}, invocation, tee)
	}

	waitErr := cmd.Wait()
	closeWriters()
	wg.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fmt.Errorf("%s interrupted: %w", filepath.Base(invocation.Executable), ctxErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("failed to wait for %q: %w", invocation.Executable, waitErr)
	}
	return 0, nil
}

func (it *Runner) drain(
	wg *sync.WaitGroup,
	reader io.Reader,
	consumer repositories.OutputConsumer,
	invocation *entities.Invocation,
	tee io.Writer,
) {
	defer wg.Done()
	if it.decoder != nil {
		reader = transform.NewReader(reader, it.decoder.NewDecoder())
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if tee != nil {
			_, _ = fmt.Fprintln(tee, invocation.Mask(line))
		}
		consumer.ConsumeLine(line)
	}
	if err := scanner.Err(); err != nil {
		logger.Warnf("Stopped reading output of %s: %v", filepath.Base(invocation.Executable), err)
		// keep the pipe flowing so that the process is not blocked on a full buffer
		_, _ = io.Copy(io.Discard, reader)
	}
}

// teeFor mirrors tool output into the debug log, each line prefixed with the tool name.
func (it *Runner) teeFor(invocation *entities.Invocation) (io.Writer, func()) {
	if !it.verbose || !logger.IsLevelEnabled(logger.DebugLevel) {
		return nil, func() {}
	}
	sink := logger.StandardLogger().WriterLevel(logger.DebugLevel)
	tool := filepath.Base(invocation.Executable)
	prefix := lineprefix.PrefixFunc(func() string { return "[" + tool + "] " })
	var mu sync.Mutex
	writer := lineprefix.New(lineprefix.Writer(sink), prefix)
	return lockedWriter{mu: &mu, w: writer}, func() { _ = sink.Close() }
}

type lockedConsumer struct {
	mu *sync.Mutex
	c  repositories.OutputConsumer
}

func (l lockedConsumer) ConsumeLine(line string) {
	if l.c == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.ConsumeLine(line)
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func mergeEnvironment(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	merged := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, overridden := extra[key]; !overridden {
			merged = append(merged, kv)
		}
	}
	for _, k := range keys {
		merged = append(merged, k+"="+extra[k])
	}
	return merged
}
