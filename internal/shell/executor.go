// Package shell runs command chains in a project directory on behalf of the tasks.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"laravel-assembler/internal/logger"
	"laravel-assembler/internal/platform"
)

// Request describes one chain of commands run in a single shell invocation.
type Request struct {
	// Commands are joined with && so the first failure stops the chain.
	Commands []string
	// Dir is the working directory of the chain.
	Dir string
	// Raw leaves the commands untouched: no --no-ansi, no --quiet.
	Raw bool
	// Silent sends the output of every command to the null device.
	Silent bool
	// Capture keeps the output in Result.Output without streaming it.
	Capture bool
	// Env holds extra KEY=VALUE pairs on top of the current environment.
	Env []string
}

// Result is the outcome of a Request. Runners never return errors; callers
// check Succeeded.
type Result struct {
	Succeeded bool
	ExitCode  int
	Output    string
	// Err is set when the chain could not be started at all.
	Err error
}

// Runner is anything able to run a Request. Tasks depend on this interface so
// tests can record commands instead of executing them.
type Runner interface {
	Run(ctx context.Context, req Request) Result
}

// noFlagPrefixes are commands that reject the flags appended to every other command.
var noFlagPrefixes = []string{"chmod"}

// indent is prepended to every line of child output.
const indent = "    "

// Executor is the Runner backed by real processes.
type Executor struct {
	Platform platform.Capabilities
	// Out receives the streamed, indented child output.
	Out io.Writer
	// Decorated reports whether Out is an interactive color terminal; when it is
	// not, commands get --no-ansi appended.
	Decorated bool
	// Quiet appends --quiet to every command.
	Quiet bool
	// AttachTTY connects the child's stdin to the controlling terminal when one exists.
	AttachTTY bool
}

// New returns an Executor streaming to the console.
func New(p platform.Capabilities, quiet bool) *Executor {
	return &Executor{
		Platform:  p,
		Out:       color.Output,
		Decorated: IsDecorated(os.Stdout),
		Quiet:     quiet,
		AttachTTY: true,
	}
}

// IsDecorated reports whether f is a terminal that accepts ANSI colors.
func IsDecorated(f *os.File) bool {
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// CommandLine builds the single shell line for req, applying the flag and
// silencing transforms.
func (e *Executor) CommandLine(req Request) string {
	commands := make([]string, 0, len(req.Commands))
	for _, c := range req.Commands {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !skipsFlags(c) {
			if !req.Raw && !e.Decorated {
				c += " --no-ansi"
			}
			if !req.Raw && e.Quiet {
				c += " --quiet"
			}
			if req.Silent {
				c = e.Platform.Silence(c)
			}
		}
		commands = append(commands, c)
	}
	return strings.Join(commands, " && ")
}

func skipsFlags(command string) bool {
	for _, p := range noFlagPrefixes {
		if strings.HasPrefix(command, p) {
			return true
		}
	}
	return false
}

// Run executes the chain and waits for it to finish.
func (e *Executor) Run(ctx context.Context, req Request) Result {
	line := e.CommandLine(req)
	if line == "" {
		return Result{Succeeded: true}
	}
	logger.Debug("[DEBUG] Running in %s: %s\n", req.Dir, line)

	cmd := exec.CommandContext(ctx, e.Platform.Shell, e.Platform.ShellFlag, line)
	cmd.Dir = req.Dir                          // Every chain runs in the project (or its parent)
	cmd.Env = append(os.Environ(), req.Env...) // Extra pairs win over inherited ones

	// Interactive children (valet secure asks for sudo) read from the terminal.
	if e.AttachTTY && e.Platform.TTY != "" {
		if !e.Platform.HasTTY() {
			logger.Warn("[WARN] %s is not available, running without a terminal\n", e.Platform.TTY)
		} else if tty, err := os.Open(e.Platform.TTY); err != nil {
			logger.Warn("[WARN] Could not attach %s: %v\n", e.Platform.TTY, err)
		} else {
			defer tty.Close() // Released once the chain exits
			cmd.Stdin = tty
		}
	}

	out := e.Out
	if out == nil || req.Capture {
		out = io.Discard
	}
	lw := &lineWriter{dst: out, prefix: indent}
	var captured bytes.Buffer
	// Same writer for both streams so exec copies them from a single goroutine.
	w := io.MultiWriter(lw, &captured)
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	lw.Flush() // Emit a last line that had no trailing newline

	res := Result{Output: captured.String()}
	if err == nil {
		res.Succeeded = true
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		logger.Debug("[DEBUG] Command exited with %d\n", res.ExitCode)
		return res
	}

	res.ExitCode = -1 // The process never started
	res.Err = err
	logger.Debug("[DEBUG] Command could not run: %v\n", err)
	return res
}

// lineWriter writes every complete line it receives to dst, prefixed.
type lineWriter struct {
	dst    io.Writer
	prefix string
	buf    []byte
}

func (l *lineWriter) Write(p []byte) (int, error) {
	l.buf = append(l.buf, p...)
	for {
		i := bytes.IndexByte(l.buf, '\n')
		if i < 0 {
			break
		}
		if _, err := io.WriteString(l.dst, l.prefix+string(l.buf[:i+1])); err != nil {
			return len(p), err
		}
		l.buf = l.buf[i+1:]
	}
	return len(p), nil
}

// Flush writes a trailing partial line, if any.
func (l *lineWriter) Flush() {
	if len(l.buf) == 0 {
		return
	}
	_, _ = io.WriteString(l.dst, l.prefix+string(l.buf)+"\n")
	l.buf = nil
}
