// Package shelltest provides a recording shell.Runner for tests.
package shelltest

import (
	"context"
	"strings"

	"laravel-assembler/internal/shell"
)

type hook struct {
	match string
	do    func(req shell.Request) shell.Result
}

// Recorder records every request instead of executing it. Requests whose
// command line contains a registered match run the hook; every other request
// succeeds. Later registrations take precedence.
type Recorder struct {
	Requests []shell.Request
	hooks    []hook
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

// On registers fn for requests whose joined command line contains match.
func (r *Recorder) On(match string, fn func(req shell.Request) shell.Result) *Recorder {
	r.hooks = append(r.hooks, hook{match: match, do: fn})
	return r
}

// FailOn makes requests containing match fail with exit code 1.
func (r *Recorder) FailOn(match string) *Recorder {
	return r.On(match, func(shell.Request) shell.Result {
		return shell.Result{ExitCode: 1, Output: match + " failed"}
	})
}

// Run implements shell.Runner.
func (r *Recorder) Run(_ context.Context, req shell.Request) shell.Result {
	r.Requests = append(r.Requests, req)
	line := Line(req)
	for i := len(r.hooks) - 1; i >= 0; i-- {
		if strings.Contains(line, r.hooks[i].match) {
			return r.hooks[i].do(req)
		}
	}
	return shell.Result{Succeeded: true}
}

// Line joins the commands of req the way a shell chain would.
func Line(req shell.Request) string {
	return strings.Join(req.Commands, " && ")
}

// Lines returns the command line of every recorded request, in order.
func (r *Recorder) Lines() []string {
	lines := make([]string, len(r.Requests))
	for i, req := range r.Requests {
		lines[i] = Line(req)
	}
	return lines
}

// Count returns how many recorded requests contain substr.
func (r *Recorder) Count(substr string) int {
	n := 0
	for _, l := range r.Lines() {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

// Ran reports whether any recorded request contains substr.
func (r *Recorder) Ran(substr string) bool {
	return r.Count(substr) > 0
}

// Index returns the position of the first request containing substr, or -1.
func (r *Recorder) Index(substr string) int {
	for i, l := range r.Lines() {
		if strings.Contains(l, substr) {
			return i
		}
	}
	return -1
}
