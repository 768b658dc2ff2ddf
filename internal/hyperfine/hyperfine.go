// Package hyperfine wraps the hyperfine command-line benchmarking tool and
// the vspipe commands it times.
package hyperfine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/linuxmatters/vsbench/internal/config"
)

// ErrNotFound is returned by Preflight when a required tool is not on PATH
var ErrNotFound = errors.New("not found on PATH")

// Command is one labelled command line for hyperfine to time
type Command struct {
	Name    string
	Command string
}

// Options controls the timing run
type Options struct {
	Warmup int // -w
	Runs   int // -r, omitted when zero
}

// Args builds the hyperfine argument vector (without the binary name).
func Args(opts Options, commands ...Command) []string {
	args := []string{"-w", strconv.Itoa(opts.Warmup)}
	if opts.Runs > 0 {
		args = append(args, "-r", strconv.Itoa(opts.Runs))
	}
	for _, c := range commands {
		args = append(args, "-n", c.Name, c.Command)
	}
	return args
}

// VSPipeCommand returns the shell command that renders one output of a
// VapourSynth script to nowhere, printing progress: "vspipe -o N -p script --".
func VSPipeCommand(scriptPath string, output int) string {
	return fmt.Sprintf("%s -o %d -p %s --", config.VSPipeBinary, output, shellQuote(scriptPath))
}

// Comparison returns the reference and rewrite commands for a filter title,
// labelled "C (mv.Super)" and "Rust (zoomv.Super)".
func Comparison(title, scriptPath string, referenceOutput, rewriteOutput int) []Command {
	return []Command{
		{
			Name:    fmt.Sprintf("%s (%s.%s)", config.ReferenceLanguage, config.ReferenceModule, title),
			Command: VSPipeCommand(scriptPath, referenceOutput),
		},
		{
			Name:    fmt.Sprintf("%s (%s.%s)", config.RewriteLanguage, config.RewriteModule, title),
			Command: VSPipeCommand(scriptPath, rewriteOutput),
		},
	}
}

// shellQuote single-quotes s when it holds anything outside the POSIX
// portable filename set plus '/'. hyperfine runs commands through a shell.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
			r == '/' || r == '.' || r == '_' || r == '-') {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Runner executes hyperfine with the given arguments and waits for it to
// finish. hyperfine prints its own statistics; nothing is parsed back.
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// ExecRunner runs the real hyperfine binary with its output attached to the
// given writers (the terminal, normally).
type ExecRunner struct {
	Binary string
	Stdout io.Writer
	Stderr io.Writer

	// Grace is how long hyperfine gets to stop its vspipe child after an
	// interrupt before it is killed. Zero kills immediately.
	Grace time.Duration
}

// NewExecRunner returns a runner for the hyperfine on PATH writing to the
// process's stdout and stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Binary: config.HyperfineBinary,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Grace:  config.InterruptGrace,
	}
}

// Run blocks until hyperfine exits. A non-zero exit status is an error.
// Cancelling ctx sends hyperfine SIGINT so it can stop the command it is
// timing; it is killed if still running after Grace.
func (r *ExecRunner) Run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if r.Grace > 0 {
		cmd.Cancel = func() error {
			return cmd.Process.Signal(os.Interrupt)
		}
		cmd.WaitDelay = r.Grace
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s interrupted: %w", r.Binary, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with status %d: %w", r.Binary, exitErr.ExitCode(), err)
		}
		return fmt.Errorf("failed to run %s: %w", r.Binary, err)
	}
	return nil
}

// LookPathFunc matches exec.LookPath
type LookPathFunc func(file string) (string, error)

// Preflight checks that hyperfine and vspipe are installed. lookPath is
// exec.LookPath when nil.
func Preflight(lookPath LookPathFunc) error {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var errs []error
	for _, bin := range []string{config.HyperfineBinary, config.VSPipeBinary} {
		if _, err := lookPath(bin); err != nil {
			errs = append(errs, fmt.Errorf("%s %w; install it first", bin, ErrNotFound))
		}
	}
	return errors.Join(errs...)
}

// MockRunner records every call and delegates to RunFunc when set.
type MockRunner struct {
	RunFunc func(ctx context.Context, args []string) error

	Calls [][]string

	mu sync.Mutex
}

// Run records args and returns RunFunc's result (nil when RunFunc is unset)
func (m *MockRunner) Run(ctx context.Context, args []string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]string(nil), args...))
	m.mu.Unlock()

	if m.RunFunc == nil {
		return nil
	}
	return m.RunFunc(ctx, args)
}

// CallCount returns the number of recorded calls
func (m *MockRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
