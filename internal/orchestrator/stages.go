package orchestrator

import (
	"context"
	"slices"

	"laravel-assembler/internal/logger"
	"laravel-assembler/internal/prompt"
	"laravel-assembler/internal/tasks"
)

// gitStage updates .gitignore, then, when git was chosen, creates the
// repository, the GitHub remote, the pre-commit hook and the README.
func (o *Orchestrator) gitStage(ctx context.Context) error {
	sel := o.opts.Selections

	if _, err := o.do(o.tasks.AppendGitIgnoreEntries(ctx, tasks.GitIgnoreEntries)); err != nil {
		return err
	}
	if !sel.GitInit {
		return nil
	}

	branch := o.opts.Branch
	if branch == "" {
		branch = o.repo.DefaultBranch(ctx)
	}
	o.report.Repository.Branch = branch

	res, err := o.do(o.tasks.InitializeGitRepository(ctx, branch, o.opts.Settings.Git.CommitMessage))
	if err != nil {
		return err
	}
	if !res.Succeeded {
		logger.Warn("[WARN] git is not initialized, skipping the remaining git tasks\n")
		return nil
	}
	o.report.Repository.Initialized = true

	if sel.CreateRepo {
		res, err := o.do(o.tasks.CreatePrivateRepository(ctx, o.opts.Project.BaseName))
		if err != nil {
			return err
		}
		o.report.Repository.CreatedOnGitHub = res.Succeeded
	}

	if sel.PreCommitHook {
		res, err := o.do(o.tasks.InstallPreCommitHook(ctx, o.scripts()))
		if err != nil {
			return err
		}
		if res.Succeeded {
			if err := o.commit(ctx, msgHook); err != nil {
				return err
			}
		}
	}

	res, err = o.do(o.tasks.UpdateReadme(ctx, o.opts.Project.BaseName))
	if err != nil {
		return err
	}
	if res.Succeeded {
		return o.commit(ctx, msgReadme)
	}
	return nil
}

// devPackagesStage installs the chosen composer dev packages, registers the
// dev scripts and runs what the packages need after install. Pint runs
// whenever the project ships it, which a Laravel skeleton does.
func (o *Orchestrator) devPackagesStage(ctx context.Context) error {
	sel := o.opts.Selections

	installed := false
	if len(sel.Packages) > 0 {
		res, err := o.do(o.tasks.InstallDevPackages(ctx, sel.PackageNames()))
		if err != nil {
			return err
		}
		installed = res.Succeeded
		if installed && o.manifest != nil {
			// composer require rewrote require-dev.
			if err := o.manifest.Reload(); err != nil {
				logger.Warn("[WARN] %v\n", err)
			}
		}
	}

	phpcs := installed && o.landed(prompt.KeyPHPCS)
	ideHelper := installed && o.landed(prompt.KeyIDEHelper)
	if s := o.scripts(); s != nil {
		o.tasks.RegisterDevScripts(s, phpcs, ideHelper)
	}

	if phpcs {
		if _, err := o.do(o.tasks.CreateLintConfigFile(ctx)); err != nil {
			return err
		}
	}

	if ideHelper {
		if _, err := o.do(o.tasks.GenerateIdeHelperArtifacts(ctx)); err != nil {
			return err
		}
	}

	if installed {
		var providers []string
		for _, p := range sel.Packages {
			if p.Provider != "" && o.landed(p.Key) {
				providers = append(providers, p.Provider)
			}
		}
		if len(providers) > 0 {
			if _, err := o.do(o.tasks.PublishVendorConfig(ctx, providers)); err != nil {
				return err
			}
		}
	}

	pint := o.tasks.HasVendorBin("pint")
	if pint {
		if _, err := o.do(o.tasks.RunPint(ctx)); err != nil {
			return err
		}
	}

	switch {
	case installed && pint:
		return o.commit(ctx, msgDevPackages)
	case installed:
		return o.commit(ctx, msgDevPackagesOnly)
	case pint:
		return o.commit(ctx, msgPint)
	}
	return nil
}

// landed reports whether the catalog package key was chosen and is listed in
// require-dev. Without a readable composer.json, choosing it is enough.
func (o *Orchestrator) landed(key string) bool {
	if !o.opts.Selections.HasPackage(key) {
		return false
	}
	if o.manifest == nil {
		return true
	}
	p, ok := o.opts.Settings.Catalog.Find(key)
	if !ok {
		return false
	}
	return slices.Contains(o.manifest.RequireDev(), p.Name)
}

// frontEndStage installs the chosen front-end tools.
func (o *Orchestrator) frontEndStage(ctx context.Context) error {
	sel := o.opts.Selections
	if !sel.FrontEnd() {
		return nil
	}

	for _, f := range []struct {
		on      bool
		feature tasks.Feature
	}{
		{sel.Tailwind, tasks.Tailwind},
		{sel.ESLintPrettier, tasks.ESLintPrettier},
		{sel.BladeFormatter, tasks.BladeFormatter},
		{sel.Alpine, tasks.Alpine},
	} {
		if !f.on {
			continue
		}
		if _, err := o.do(o.tasks.InstallFrontEndTooling(ctx, f.feature)); err != nil {
			return err
		}
	}

	if sel.SecureValet {
		if _, err := o.do(o.tasks.ConfigureViteForValet(ctx, o.opts.Project.BaseName)); err != nil {
			return err
		}
	}
	return o.commit(ctx, msgFrontEnd)
}

// composerStage writes the curated scripts section back to composer.json.
func (o *Orchestrator) composerStage(ctx context.Context) error {
	if !o.opts.Selections.ComposerScripts {
		return nil
	}

	c := o.opts.Settings.Composer
	res, err := o.do(o.tasks.UpdateComposerFile(ctx, o.manifest, c.ScriptOrder, c.KeepUnknownScripts))
	if err != nil {
		return err
	}
	if res.Succeeded {
		return o.commit(ctx, msgScripts)
	}
	return nil
}

// pushStage pushes every checkpoint made after the repository was created.
func (o *Orchestrator) pushStage(ctx context.Context) error {
	repo := o.report.Repository
	if !repo.CreatedOnGitHub {
		return nil
	}
	_, err := o.do(o.tasks.PushPendingChanges(ctx, repo.Branch, msgPending))
	return err
}

// gitFlowStage initializes git flow in the repository.
func (o *Orchestrator) gitFlowStage(ctx context.Context) error {
	if !o.opts.Selections.GitFlow || !o.report.Repository.Initialized {
		return nil
	}
	_, err := o.do(o.tasks.StartGitFlow(ctx))
	return err
}

// localEnvironmentStage secures and opens the Valet site and opens the IDE.
func (o *Orchestrator) localEnvironmentStage(ctx context.Context) error {
	sel := o.opts.Selections
	name := o.opts.Project.BaseName

	if sel.SecureValet {
		res, err := o.do(o.tasks.ApplyLocalSsl(ctx, name))
		if err != nil {
			return err
		}
		if res.Succeeded {
			if _, err := o.do(o.tasks.OpenInBrowser(ctx, name)); err != nil {
				return err
			}
		}
	}

	if sel.OpenIDE {
		if _, err := o.do(o.tasks.LoadInEditor(ctx)); err != nil {
			return err
		}
	}
	return nil
}
