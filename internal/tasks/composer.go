package tasks

import (
	"context"
	"errors"
	"slices"
	"strings"

	"laravel-assembler/internal/composer"
	"laravel-assembler/internal/logger"
	"laravel-assembler/internal/shell"
)

// errNoManifest is reported by tasks that edit composer.json when it could not be loaded.
var errNoManifest = errors.New("composer.json is not loaded")

// Lines of the "optimize" composer script added with the IDE helper.
var ideHelperOptimize = []string{
	"@php artisan optimize:clear --ansi --no-interaction",
	"@php artisan ide-helper:eloquent",
	"@php artisan ide-helper:generate",
	"@php artisan ide-helper:meta",
	"@php artisan ide-helper:models --write-mixin --ansi --no-interaction",
}

// InstallDevPackages requires every package with a single `composer require --dev`.
func (r *Runner) InstallDevPackages(ctx context.Context, packages []string) Result {
	return task("📚", "Installing additional dev dependencies", func() Result {
		if len(packages) == 0 {
			return skip("no packages selected")
		}
		return r.exec(ctx, shell.Request{Commands: []string{
			r.composer() + " require --dev --quiet " + strings.Join(packages, " "), // One resolve for all packages
		}})
	})
}

// CreateLintConfigFile writes the bundled phpcs.xml into the project root.
func (r *Runner) CreateLintConfigFile(_ context.Context) Result {
	return task("📄", "Creating phpcs.xml file", func() Result {
		if err := place(r.Project.Path, file{Asset: "phpcs.xml", Target: "phpcs.xml"}); err != nil {
			return failure(err)
		}
		return success()
	})
}

func (r *Runner) artisan(command string) string {
	return r.Binaries.PHP + " artisan " + command
}

// GenerateIdeHelperArtifacts runs the three ide-helper generators as one chain.
func (r *Runner) GenerateIdeHelperArtifacts(ctx context.Context) Result {
	return task("📝", "Generating IDE helper files", func() Result {
		return r.exec(ctx, shell.Request{Commands: []string{
			r.artisan("ide-helper:eloquent"),
			r.artisan("ide-helper:generate"),
			r.artisan("ide-helper:meta"),
		}})
	})
}

// PublishVendorConfig publishes the config of every provider in a single chain.
func (r *Runner) PublishVendorConfig(ctx context.Context, providers []string) Result {
	return task("📂", "Publishing vendor config files", func() Result {
		if len(providers) == 0 {
			return skip("no providers to publish")
		}
		commands := make([]string, 0, len(providers))
		for _, p := range providers {
			commands = append(commands, r.artisan(`vendor:publish --provider="`+p+`" --tag=config --quiet`)) // Config tag only
		}
		return r.exec(ctx, shell.Request{Commands: commands})
	})
}

// RunPint formats the project with Laravel Pint.
func (r *Runner) RunPint(ctx context.Context) Result {
	return task("🧹", "Running Laravel Pint", func() Result {
		return r.exec(ctx, shell.Request{Commands: []string{
			composer.VendorBin(r.Platform.Separator, "pint"),
		}})
	})
}

// RegisterDevScripts adds the lint and optimize composer scripts. "optimize"
// runs the IDE helper generators when installed, then fixes the code with
// phpcbf when PHPCS is installed or Pint otherwise; it is hooked into
// post-update-cmd and post-autoload-dump.
func (r *Runner) RegisterDevScripts(s *composer.Scripts, phpcs, ideHelper bool) {
	sep := r.Platform.Separator
	s.Set("pint", composer.VendorBin(sep, "pint"))

	var optimize []string
	if ideHelper {
		optimize = append(optimize, ideHelperOptimize...)
	}
	if phpcs {
		s.Set("phpcs", composer.VendorBin(sep, "phpcs --standard=phpcs.xml"))
		s.Set("phpcbf", composer.VendorBin(sep, "phpcbf --standard=phpcs.xml"))
		optimize = append(optimize, "@phpcbf")
	} else {
		optimize = append(optimize, "@pint")
	}

	s.SetList("optimize", optimize...)
	appendScriptOnce(s, "post-update-cmd", "@optimize")
	appendScriptOnce(s, "post-autoload-dump", "@optimize")
	logger.Debug("[DEBUG] Registered dev scripts (phpcs=%v, ide-helper=%v)\n", phpcs, ideHelper)
}

// appendScriptOnce appends command to the script name unless it is already there.
func appendScriptOnce(s *composer.Scripts, name, command string) {
	if cur, ok := s.Get(name); ok && slices.Contains(cur.Commands, command) {
		return
	}
	s.Append(name, command)
}

// HookChain returns the commands that install pre-commit-hook.sh as the git
// pre-commit hook. The same chain is registered as the install-hooks script.
func (r *Runner) HookChain() []string {
	sep := r.Platform.Separator
	hook := ".git" + sep + "hooks" + sep + "pre-commit"
	return []string{
		r.Platform.Copy + " pre-commit-hook.sh " + hook, // cp, or copy on Windows
		"chmod +x " + hook,
		"chmod +x pre-commit-hook.sh",
	}
}

// InstallPreCommitHook writes pre-commit-hook.sh, installs it into .git/hooks
// and registers install-hooks, pre-install-cmd and post-install-cmd so every
// composer install reinstalls it. Scripts may be nil when composer.json could
// not be loaded; the hook is installed anyway.
func (r *Runner) InstallPreCommitHook(ctx context.Context, s *composer.Scripts) Result {
	return task("☁️ ", `Creating phpcs "pre-commit-hook"`, func() Result {
		if err := place(r.Project.Path, file{Asset: "pre-commit-hook.sh", Target: "pre-commit-hook.sh", Mode: 0o755}); err != nil {
			return failure(err)
		}

		chain := r.HookChain()
		if s != nil { // composer.json may have failed to load
			s.SetList("install-hooks", chain...)
			s.SetList("pre-install-cmd", "@install-hooks")
			s.SetList("post-install-cmd", "@install-hooks")
		}

		return r.exec(ctx, shell.Request{Commands: chain, Raw: true})
	})
}

// UpdateComposerFile puts the scripts in order and writes composer.json when
// anything changed. Scripts outside order are kept after the listed ones when
// keepUnknown is set and dropped with a warning otherwise.
func (r *Runner) UpdateComposerFile(_ context.Context, m *composer.Manifest, order []string, keepUnknown bool) Result {
	return task("🆙", "Updating composer.json", func() Result {
		if m == nil {
			return failure(errNoManifest)
		}

		unlisted := m.Reorder(order, keepUnknown)
		if len(unlisted) > 0 {
			if keepUnknown {
				logger.Debug("[DEBUG] Keeping scripts outside the canonical order: %s\n", strings.Join(unlisted, ", "))
			} else {
				logger.Warn("[WARN] dropping composer scripts %s\n", strings.Join(unlisted, ", "))
			}
		}

		if !m.Dirty() {
			return skip("scripts unchanged") // Leave the file byte-identical
		}
		if err := m.Write(); err != nil {
			return failure(err)
		}
		return success()
	})
}
