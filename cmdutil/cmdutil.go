// Package cmdutil runs shell command lines: capturing output, optionally
// echoing it to the terminal, and monitoring it line-by-line.
//
// Command lines are interpreted by a shell, so every untrusted value placed in
// one must first be quoted with shellutil.
package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// DefaultTimeout is the default timeout for command execution.
const DefaultTimeout = 30 * time.Minute

// ErrEmptyCommand is returned when Run is given a blank command line.
var ErrEmptyCommand = errors.New("command line is empty")

// OutputLineHandler is a callback for processing output lines in real-time.
type OutputLineHandler func(line string)

// RunOptions controls a single Run call.
type RunOptions struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Silent suppresses echoing output to the runner's Stdout and Stderr.
	// Output is captured either way.
	Silent bool
	// NoThrow returns a non-zero exit as Result.Code instead of an *ExitError.
	NoThrow bool
	// OnLine, if set, is called for every line written to stdout or stderr.
	// Calls are serialized.
	OnLine OutputLineHandler
}

// Result is the captured outcome of a command.
type Result struct {
	Stdout string
	Stderr string
	Code   int
}

// ExitError reports a command that exited with a non-zero status.
type ExitError struct {
	CommandLine string
	Code        int
	Stderr      string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q exited with code %d", e.CommandLine, e.Code)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Runner executes shell command lines. Implementations must be safe for
// concurrent use.
type Runner interface {
	Run(ctx context.Context, commandLine string, opts RunOptions) (*Result, error)
}

// ShellRunner runs command lines with the platform shell: an embedded POSIX
// interpreter on Unix and cmd.exe on Windows.
type ShellRunner struct {
	// Stdout and Stderr receive output unless RunOptions.Silent is set.
	Stdout io.Writer
	Stderr io.Writer
	// Env is the command environment. Nil inherits the current process's.
	Env []string
	// Timeout bounds each command. Zero disables the bound.
	Timeout time.Duration
}

// NewShellRunner returns a ShellRunner that echoes to os.Stdout and os.Stderr
// and applies DefaultTimeout.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Timeout: DefaultTimeout,
	}
}

// Run executes commandLine and waits for it to complete.
func (r *ShellRunner) Run(ctx context.Context, commandLine string, opts RunOptions) (*Result, error) {
	if strings.TrimSpace(commandLine) == "" {
		return nil, ErrEmptyCommand
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	outWriters := []io.Writer{&stdout}
	errWriters := []io.Writer{&stderr}

	if !opts.Silent {
		if r.Stdout != nil {
			outWriters = append(outWriters, r.Stdout)
		}
		if r.Stderr != nil {
			errWriters = append(errWriters, r.Stderr)
		}
	}

	var lineWriters []*lineWriter
	if opts.OnLine != nil {
		stream := newLineStream(opts.OnLine)
		outLines, errLines := stream.writer(), stream.writer()
		lineWriters = append(lineWriters, outLines, errLines)
		outWriters = append(outWriters, outLines)
		errWriters = append(errWriters, errLines)
	}

	env := r.Env
	if env == nil {
		env = os.Environ()
	}

	code, err := runShell(ctx, commandLine, opts.Dir, env, io.MultiWriter(outWriters...), io.MultiWriter(errWriters...))
	for _, lw := range lineWriters {
		lw.Flush()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to run command: %w", err)
	}

	result := &Result{Stdout: stdout.String(), Stderr: stderr.String(), Code: code}
	if code != 0 && !opts.NoThrow {
		return result, &ExitError{CommandLine: commandLine, Code: code, Stderr: result.Stderr}
	}
	return result, nil
}
