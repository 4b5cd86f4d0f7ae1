package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"laravel-assembler/internal/gitops"
	"laravel-assembler/internal/logger"
)

// GitIgnoreEntries are the files of IDEs and generated helpers kept out of git.
var GitIgnoreEntries = []string{
	".idea/",
	".phpunit.result.cache",
	".phpstorm.meta.php",
	"_ide_helper.php",
	"_ide_helper_models.php",
}

// AppendGitIgnoreEntries adds every missing entry to the project's .gitignore.
// Entries already present are left alone, so running it twice changes nothing.
func (r *Runner) AppendGitIgnoreEntries(_ context.Context, entries []string) Result {
	return task("📄", "Updating .gitignore", func() Result {
		if err := appendGitIgnore(r.Project.File(".gitignore"), entries); err != nil {
			return failure(err)
		}
		return success()
	})
}

func appendGitIgnore(path string, entries []string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}

	present := make(map[string]bool) // Lines already in the file, trimmed
	for _, l := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(l)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
			present[e] = true // Drop duplicates within entries too
		}
	}
	if len(missing) == 0 {
		logger.Debug("[DEBUG] .gitignore already up to date\n")
		return nil
	}

	suffix := strings.Join(missing, "\n") + "\n"
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		suffix = "\n" + suffix
	}

	// Open for append, creating .gitignore when the skeleton had none
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening .gitignore for append: %w", err)
	}
	defer f.Close() // Flushes the appended entries

	if _, err := f.WriteString(suffix); err != nil {
		return fmt.Errorf("writing to .gitignore: %w", err)
	}
	return nil
}

// InitializeGitRepository creates the repository with an initial commit on branch.
func (r *Runner) InitializeGitRepository(ctx context.Context, branch, message string) Result {
	return task("☁️ ", "Initializing git", func() Result {
		return fromShell(r.Repo.Init(ctx, branch, message))
	})
}

// Commit records a checkpoint. A clean working tree is reported as skipped.
func (r *Runner) Commit(ctx context.Context, message string) Result {
	return task("☁️ ", fmt.Sprintf("Committing %q", message), func() Result {
		res, committed := r.Repo.Commit(ctx, message)
		if res.Succeeded && !committed {
			return skip("nothing to commit")
		}
		return fromShell(res)
	})
}

// CreatePrivateRepository creates the GitHub repository and pushes to it.
// A missing or logged out GitHub CLI skips the task with a warning.
func (r *Runner) CreatePrivateRepository(ctx context.Context, name string) Result {
	return task("☁️ ", "Creating GitHub repository", func() Result {
		res, err := r.Repo.PushToRemote(ctx, name)
		if errors.Is(err, gitops.ErrGitHubUnavailable) {
			logger.Warn("[WARN] %v. Run `gh auth login` and push the repository yourself.\n", err)
			return skip(err.Error())
		}
		if err != nil {
			return failure(err)
		}
		return fromShell(res)
	})
}

// StartGitFlow initializes git flow with its default branches.
func (r *Runner) StartGitFlow(ctx context.Context) Result {
	return task("☁️ ", "Starting git flow", func() Result {
		return fromShell(r.Repo.StartFlow(ctx))
	})
}

// PushPendingChanges commits what is left on branch and pushes it.
func (r *Runner) PushPendingChanges(ctx context.Context, branch, message string) Result {
	return task("☁️ ", "Pushing last changes to GitHub", func() Result {
		return fromShell(r.Repo.PushPending(ctx, branch, message))
	})
}

// UpdateReadme replaces README.md with the bundled template for the project.
func (r *Runner) UpdateReadme(_ context.Context, name string) Result {
	return task("📄", "Updating README.md", func() Result {
		data, err := Asset("README.md")
		if err != nil {
			return failure(err)
		}
		out := strings.ReplaceAll(string(data), "projectName", name)
		if err := os.WriteFile(filepath.Join(r.Project.Path, "README.md"), []byte(out), 0o644); err != nil {
			return failure(fmt.Errorf("writing README.md: %w", err))
		}
		return success()
	})
}
