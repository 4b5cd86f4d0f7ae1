// Package tasks holds every setup operation run after the Laravel installer.
//
// Each operation prints a step line, does its work through the shell Runner or
// a direct file write, prints a result line, and returns a Result. Operations
// never return errors: a failure is reported in the Result so the caller can
// decide whether the run goes on.
package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"laravel-assembler/internal/config"
	"laravel-assembler/internal/logger"
	"laravel-assembler/internal/platform"
	"laravel-assembler/internal/project"
	"laravel-assembler/internal/shell"
)

// Result is the outcome of one task.
type Result struct {
	Label     string `json:"label"`
	Succeeded bool   `json:"succeeded"`
	// Skipped tasks decided not to run (e.g. GitHub CLI not logged in).
	// They never count as failures.
	Skipped bool `json:"skipped,omitempty"`
	// Message carries the failure or skip reason.
	Message string `json:"message,omitempty"`
	// ExitCode of the underlying process, when there was one.
	ExitCode int `json:"exit_code,omitempty"`
}

// Failed reports whether the task ran and did not succeed.
func (r Result) Failed() bool {
	return !r.Succeeded && !r.Skipped
}

// Repository is the version control surface the tasks need.
type Repository interface {
	DefaultBranch(ctx context.Context) string
	Init(ctx context.Context, branch, message string) shell.Result
	Commit(ctx context.Context, message string) (shell.Result, bool)
	PushToRemote(ctx context.Context, name string) (shell.Result, error)
	PushPending(ctx context.Context, branch, message string) shell.Result
	StartFlow(ctx context.Context) shell.Result
}

// Runner runs tasks against one project.
type Runner struct {
	Shell    shell.Runner
	Project  project.Context
	Platform platform.Capabilities
	Binaries config.Binaries
	// IDE overrides the platform's PhpStorm launcher when set.
	IDE  string
	Repo Repository

	settings *config.Settings // Resolves the composer invocation once the project exists

	// npm holds the outcome of the npm install bootstrap once it ran.
	npm *Result
}

// New returns a Runner for the project using the resolved settings.
func New(sh shell.Runner, p project.Context, plat platform.Capabilities, s *config.Settings, repo Repository) *Runner {
	return &Runner{
		Shell:    sh,
		Project:  p,
		Platform: plat,
		Binaries: s.Binaries,
		settings: s,
		IDE:      s.IDE,
		Repo:     repo,
	}
}

// composer returns the composer invocation. It is resolved on use because the
// project, and a composer.phar inside it, only exist after the installer ran.
// A composer.phar in the directory the tool was started from also counts.
func (r *Runner) composer() string {
	dirs := []string{r.Project.Path}
	if r.Project.Name != "." {
		dirs = append(dirs, filepath.Dir(r.Project.Path)) // Where `laravel new` was run
	}
	return r.settings.ComposerCommand(dirs...)
}

// HasVendorBin reports whether composer installed the named binary into vendor/bin.
func (r *Runner) HasVendorBin(name string) bool {
	_, err := os.Stat(r.Project.File("vendor", "bin", name))
	return err == nil
}

// task prints the step line, runs fn and prints the outcome.
func task(icon, label string, fn func() Result) Result {
	logger.Step(icon, label)
	res := fn()
	res.Label = label
	switch {
	case res.Skipped:
		logger.Skipped(label, res.Message)
	case res.Succeeded:
		logger.Done(label)
	default:
		logger.Failed(label, res.Message)
	}
	return res
}

// exec runs a chain in the project directory.
func (r *Runner) exec(ctx context.Context, req shell.Request) Result {
	req.Dir = r.Project.Path
	return fromShell(r.Shell.Run(ctx, req))
}

func fromShell(res shell.Result) Result {
	out := Result{Succeeded: res.Succeeded, ExitCode: res.ExitCode}
	switch {
	case res.Err != nil:
		out.Message = res.Err.Error()
	case !res.Succeeded:
		out.Message = fmt.Sprintf("exit status %d", res.ExitCode)
	}
	return out
}

func success() Result {
	return Result{Succeeded: true}
}

func failure(err error) Result {
	return Result{Message: err.Error()}
}

func skip(reason string) Result {
	return Result{Skipped: true, Message: reason}
}
