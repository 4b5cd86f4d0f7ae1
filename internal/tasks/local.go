package tasks

import (
	"context"
	"fmt"

	"laravel-assembler/internal/logger"
	"laravel-assembler/internal/shell"
)

// ApplyLocalSsl secures the Valet site of the project.
func (r *Runner) ApplyLocalSsl(ctx context.Context, name string) Result {
	return task("⏳", fmt.Sprintf("Applying local SSL to %q", name), func() Result {
		logger.WarnBadge("Valet may ask for your password to trust the certificate.")
		return r.exec(ctx, shell.Request{Commands: []string{r.Binaries.Valet + " secure " + name}, Raw: true})
	})
}

// OpenInBrowser opens the Valet site of the project.
func (r *Runner) OpenInBrowser(ctx context.Context, name string) Result {
	return task("🌎", fmt.Sprintf("Opening %s in your browser", name), func() Result {
		return r.exec(ctx, shell.Request{Commands: []string{r.Binaries.Valet + " open " + name}, Raw: true})
	})
}

// LoadInEditor opens the project in PhpStorm.
func (r *Runner) LoadInEditor(ctx context.Context) Result {
	return task("🖥 ", "Loading project on PhpStorm", func() Result {
		ide := r.IDE // From the settings file
		if ide == "" {
			ide = r.Platform.IDE // Per-OS launcher
		}
		return r.exec(ctx, shell.Request{Commands: []string{ide + " ."}, Raw: true})
	})
}
