// Package gitops wraps the git and GitHub CLI invocations of a run.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"laravel-assembler/internal/logger"
	"laravel-assembler/internal/shell"
)

// ErrGitHubUnavailable is returned when the GitHub CLI is missing or not logged in.
var ErrGitHubUnavailable = errors.New("GitHub CLI is not installed or not authenticated")

// DefaultVisibility is used when no repository flags are given.
const DefaultVisibility = "--private"

// Helper runs git and gh in a project directory.
type Helper struct {
	Runner shell.Runner
	Dir    string

	// Git and GH are the binaries to call.
	Git string
	GH  string

	// Fallback is the branch used when git has no init.defaultBranch.
	Fallback string
	// Organization prefixes the repository name ("org/name") when set.
	Organization string
	// Flags are passed to `gh repo create`; empty means DefaultVisibility.
	Flags string
}

// New returns a Helper with the stock binaries.
func New(r shell.Runner, dir string) *Helper {
	return &Helper{
		Runner:   r,
		Dir:      dir,
		Git:      "git",
		GH:       "gh",
		Fallback: "master",
	}
}

func (h *Helper) run(ctx context.Context, req shell.Request) shell.Result {
	req.Dir = h.Dir
	// git and gh reject the flags added to composer commands.
	req.Raw = true
	return h.Runner.Run(ctx, req)
}

// DefaultBranch returns git's global init.defaultBranch, or Fallback.
func (h *Helper) DefaultBranch(ctx context.Context) string {
	res := h.run(ctx, shell.Request{
		Commands: []string{h.Git + " config --global init.defaultBranch"},
		Capture:  true,
	})
	if branch := strings.TrimSpace(res.Output); res.Succeeded && branch != "" {
		return branch
	}
	logger.Debug("[DEBUG] No init.defaultBranch configured, using %s\n", h.Fallback)
	return h.Fallback
}

// Init creates the repository with an initial commit on branch.
func (h *Helper) Init(ctx context.Context, branch, message string) shell.Result {
	return h.run(ctx, shell.Request{Commands: []string{
		h.Git + " init --quiet", // Creates .git in the project
		h.Git + " add .",
		fmt.Sprintf("%s commit -m %q --no-verify --quiet", h.Git, message), // No hooks exist yet
		h.Git + " branch -M " + branch,                                     // Renames whatever git picked
	}})
}

// Clean reports whether the working tree has nothing to commit.
func (h *Helper) Clean(ctx context.Context) bool {
	res := h.run(ctx, shell.Request{
		Commands: []string{h.Git + " status --porcelain"},
		Capture:  true, // One line per changed path, nothing when clean
	})
	return res.Succeeded && strings.TrimSpace(res.Output) == ""
}

// Commit stages everything and commits it without running hooks. A clean
// working tree is not an error: committed is false and the result succeeds.
func (h *Helper) Commit(ctx context.Context, message string) (res shell.Result, committed bool) {
	if h.Clean(ctx) {
		logger.Debug("[DEBUG] Nothing to commit for %q\n", message)
		return shell.Result{Succeeded: true}, false
	}
	res = h.run(ctx, shell.Request{Commands: []string{
		h.Git + " add .",
		fmt.Sprintf("%s commit -m %q --no-verify --quiet", h.Git, message), // Skip the phpcs pre-commit hook
	}})
	return res, res.Succeeded
}

// AuthStatus checks that gh is installed and logged in.
func (h *Helper) AuthStatus(ctx context.Context) error {
	res := h.run(ctx, shell.Request{
		Commands: []string{h.GH + " auth status"},
		Silent:   true,
	})
	if !res.Succeeded {
		return ErrGitHubUnavailable
	}
	return nil
}

// RepositoryName returns name prefixed with the organization, if any.
func (h *Helper) RepositoryName(name string) string {
	if h.Organization != "" {
		return h.Organization + "/" + name
	}
	return name
}

// PushToRemote creates the GitHub repository for the current directory and
// pushes the current branch to it. It returns ErrGitHubUnavailable without
// running anything else when the auth check fails.
func (h *Helper) PushToRemote(ctx context.Context, name string) (shell.Result, error) {
	if err := h.AuthStatus(ctx); err != nil {
		return shell.Result{}, err
	}

	flags := h.Flags
	if flags == "" {
		flags = DefaultVisibility
	}

	res := h.run(ctx, shell.Request{
		Commands: []string{fmt.Sprintf("%s repo create %s --source=. --push %s", h.GH, h.RepositoryName(name), flags)},
		Env:      []string{"GIT_TERMINAL_PROMPT=0"}, // Fail instead of asking for credentials
	})
	return res, nil
}

// PushPending commits whatever is left on branch and pushes it to origin.
func (h *Helper) PushPending(ctx context.Context, branch, message string) shell.Result {
	if res := h.run(ctx, shell.Request{Commands: []string{h.Git + " checkout " + branch + " --quiet"}}); !res.Succeeded {
		return res
	}
	if res, _ := h.Commit(ctx, message); !res.Succeeded {
		return res
	}
	return h.run(ctx, shell.Request{
		Commands: []string{h.Git + " push origin " + branch + " --quiet"},
		Env:      []string{"GIT_TERMINAL_PROMPT=0"},
	})
}

// StartFlow initializes git flow with its default branch names. Its output is
// silenced.
func (h *Helper) StartFlow(ctx context.Context) shell.Result {
	return h.run(ctx, shell.Request{
		Commands: []string{h.Git + " flow init -d"},
		Silent:   true,
	})
}
