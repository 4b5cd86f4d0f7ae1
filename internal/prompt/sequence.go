package prompt

import (
	"fmt"

	"laravel-assembler/internal/config"
)

// Feature keys of Selections. Dev packages use their catalog key.
const (
	KeyTailwind        = "tailwind"
	KeyESLintPrettier  = "eslint-prettier"
	KeyBladeFormatter  = "blade-formatter"
	KeyAlpine          = "alpine"
	KeyGitInit         = "git-init"
	KeyPreCommitHook   = "git-pre-commit-hook"
	KeyCreateRepo      = "git-create-repo"
	KeyGitFlow         = "git-flow"
	KeyComposerScripts = "install-composer-scripts"
	KeySecureValet     = "secure-valet"
	KeyOpenIDE         = "open-ide"

	// Catalog keys the run gives special treatment to.
	KeyPHPCS     = "phpcs"
	KeyIDEHelper = "ide-helper"
)

// Selections holds every decision of the run. It is filled by Collect and only
// read afterwards.
type Selections struct {
	// Packages are the chosen catalog entries, in catalog order.
	Packages []config.Package

	Tailwind       bool
	ESLintPrettier bool
	BladeFormatter bool
	Alpine         bool

	GitInit       bool
	PreCommitHook bool
	CreateRepo    bool
	GitFlow       bool

	ComposerScripts bool

	SecureValet bool
	OpenIDE     bool
}

// HasPackage reports whether the catalog entry key was chosen.
func (s Selections) HasPackage(key string) bool {
	for _, p := range s.Packages {
		if p.Key == key {
			return true
		}
	}
	return false
}

// PackageNames returns the composer identifiers of the chosen packages.
func (s Selections) PackageNames() []string {
	names := make([]string, 0, len(s.Packages))
	for _, p := range s.Packages {
		names = append(names, p.Name)
	}
	return names
}

// FrontEnd reports whether any front-end tool was chosen.
func (s Selections) FrontEnd() bool {
	return s.Tailwind || s.ESLintPrettier || s.BladeFormatter || s.Alpine
}

// Map flattens the selections into feature key -> decision.
func (s Selections) Map(catalog config.Catalog) map[string]bool {
	m := map[string]bool{
		KeyTailwind:        s.Tailwind,
		KeyESLintPrettier:  s.ESLintPrettier,
		KeyBladeFormatter:  s.BladeFormatter,
		KeyAlpine:          s.Alpine,
		KeyGitInit:         s.GitInit,
		KeyPreCommitHook:   s.PreCommitHook,
		KeyCreateRepo:      s.CreateRepo,
		KeyGitFlow:         s.GitFlow,
		KeyComposerScripts: s.ComposerScripts,
		KeySecureValet:     s.SecureValet,
		KeyOpenIDE:         s.OpenIDE,
	}
	for _, p := range catalog.Packages {
		m[p.Key] = s.HasPackage(p.Key)
	}
	return m
}

// Options tunes the question flow.
type Options struct {
	// FrontEnd enables the front-end tooling group.
	FrontEnd bool
	// Git answers "Initialize git?" with yes without asking (--git).
	Git bool
	// GitHub answers the repository question with yes without asking
	// (--github). It implies Git.
	GitHub bool
}

// Collect asks every question, group by group. A question that depends on an
// earlier "no" is never asked and its answer stays false.
func Collect(c Confirmer, catalog config.Catalog, name string, opts Options) (Selections, error) {
	var s Selections
	ask := func(q Question, dst *bool) error {
		v, err := c.Confirm(q)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}

	// Composer packages.
	for _, p := range catalog.Packages {
		var include bool
		if err := ask(Question{
			Key:     p.Key,
			Text:    "Include " + p.DisplayTitle() + "?",
			Default: p.Default,
		}, &include); err != nil {
			return s, err
		}
		if include {
			s.Packages = append(s.Packages, p)
		}
	}

	// Front-end tooling.
	if opts.FrontEnd {
		for _, q := range []struct {
			q   Question
			dst *bool
		}{
			{Question{Key: KeyTailwind, Text: "Install Tailwind CSS?", Comment: "npm required. Adds tailwindcss, postcss and autoprefixer.", Default: true}, &s.Tailwind},
			{Question{Key: KeyESLintPrettier, Text: "Install ESLint and Prettier?", Comment: "npm required. Lints and formats resources/js.", Default: true}, &s.ESLintPrettier},
			{Question{Key: KeyBladeFormatter, Text: "Install Blade Formatter?", Comment: "npm required. Formats resources/views.", Default: true}, &s.BladeFormatter},
			{Question{Key: KeyAlpine, Text: "Install Alpine.js?", Comment: "npm required.", Default: false}, &s.Alpine},
		} {
			if err := ask(q.q, q.dst); err != nil {
				return s, err
			}
		}
	}

	// Git.
	if opts.Git || opts.GitHub {
		s.GitInit = true
	} else if err := ask(Question{Key: KeyGitInit, Text: "Initialize git?", Default: true}, &s.GitInit); err != nil {
		return s, err
	}
	if s.GitInit {
		if s.HasPackage(KeyPHPCS) {
			if err := ask(Question{
				Key:     KeyPreCommitHook,
				Text:    "Create pre-commit-hook?",
				Comment: "To validate PHPCS before committing a code.",
				Default: true,
			}, &s.PreCommitHook); err != nil {
				return s, err
			}
		}

		if opts.GitHub {
			s.CreateRepo = true
		} else if err := ask(Question{
			Key:     KeyCreateRepo,
			Text:    fmt.Sprintf("Create GitHub repository for %s?", name),
			Comment: "GitHub CLI required. Check: https://cli.github.com",
			Default: true,
		}, &s.CreateRepo); err != nil {
			return s, err
		}

		if s.CreateRepo {
			if err := ask(Question{
				Key:     KeyGitFlow,
				Text:    fmt.Sprintf("Start git flow for %s?", name),
				Comment: "gitflow-avh required. Check: https://github.com/petervanderdoes/gitflow-avh",
				Default: true,
			}, &s.GitFlow); err != nil {
				return s, err
			}
		}
	}

	// Composer scripts.
	if err := ask(Question{
		Key:     KeyComposerScripts,
		Text:    "Install custom scripts on composer.json?",
		Comment: "To be easier to run Pint, PHPCS or generate ide-helper files.",
		Default: true,
	}, &s.ComposerScripts); err != nil {
		return s, err
	}

	// Local environment.
	if err := ask(Question{
		Key:     KeySecureValet,
		Text:    fmt.Sprintf("Apply local SSL to %s?", name),
		Comment: "Laravel Valet required. Check https://laravel.com/docs/master/valet",
		Default: true,
	}, &s.SecureValet); err != nil {
		return s, err
	}
	if err := ask(Question{
		Key:     KeyOpenIDE,
		Text:    fmt.Sprintf("Open %s on PhpStorm?", name),
		Comment: "Jetbrains CLI required. Check https://www.jetbrains.com/help/phpstorm/working-with-the-ide-features-from-command-line.html",
		Default: true,
	}, &s.OpenIDE); err != nil {
		return s, err
	}

	return s, nil
}
