// Package orchestrator runs the Laravel installer and then every selected
// setup task, stage by stage, in a fixed order.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"laravel-assembler/internal/composer"
	"laravel-assembler/internal/config"
	"laravel-assembler/internal/logger"
	"laravel-assembler/internal/project"
	"laravel-assembler/internal/prompt"
	"laravel-assembler/internal/shell"
	"laravel-assembler/internal/state"
	"laravel-assembler/internal/tasks"
)

var (
	// ErrInstallerFailed is returned when the Laravel installer did not create the project.
	ErrInstallerFailed = errors.New("laravel installer did not create the project")
	// ErrTaskFailed is returned under the fail-fast policy when a task fails.
	ErrTaskFailed = errors.New("task failed")
)

const art = `
                                 _     _
    /\                          | |   | |
   /  \   ___ ___  ___ _ __ ___ | |__ | | ___ _ __
  / /\ \ / __/ __|/ _ \ '_ ` + "`" + ` _ \| '_ \| |/ _ \ '__|
 / ____ \\__ \__ \  __/ | | | | | |_) | |  __/ |
/_/    \_\___/___/\___|_| |_| |_|_.__/|_|\___|_|
`

// Commit messages of the checkpoints.
const (
	msgDevPackages     = "Composer Dev Packages installed + Pint executed"
	msgDevPackagesOnly = "Composer Dev Packages installed"
	msgPint            = "Pint executed"
	msgHook            = "PHPCS pre-commit-hook created"
	msgReadme          = "README updated"
	msgFrontEnd        = "Front-end tooling installed"
	msgScripts         = "composer.json scripts updated."
	msgPending         = "Project setup finished"
)

// PrintBanner prints the ASCII art shown before the questions.
func PrintBanner() {
	logger.Banner(art)
}

// InstallerFlags are forwarded to `laravel new` as-is.
type InstallerFlags struct {
	Dev             bool
	Jet             bool
	Stack           string
	Teams           bool
	PromptJetstream bool
	Force           bool
}

// Args renders the flags that are set.
func (f InstallerFlags) Args() []string {
	var args []string
	if f.Dev {
		args = append(args, "--dev")
	}
	if f.Jet {
		args = append(args, "--jet")
	}
	if f.Stack != "" {
		args = append(args, "--stack="+f.Stack)
	}
	if f.Teams {
		args = append(args, "--teams")
	}
	if f.PromptJetstream {
		args = append(args, "--prompt-jetstream")
	}
	if f.Force {
		args = append(args, "--force")
	}
	return args
}

// Options is everything a run needs. It is decided before Run and never changes.
type Options struct {
	Project    project.Context
	Selections prompt.Selections
	Installer  InstallerFlags
	// Branch overrides the default branch detected from git.
	Branch   string
	Settings *config.Settings
}

// Orchestrator runs one scaffold.
type Orchestrator struct {
	opts  Options
	shell shell.Runner
	tasks *tasks.Runner
	repo  tasks.Repository

	report   *state.Report
	manifest *composer.Manifest
}

// New returns an Orchestrator that runs commands through sh and tasks through t.
func New(opts Options, sh shell.Runner, t *tasks.Runner) *Orchestrator {
	return &Orchestrator{
		opts:   opts,
		shell:  sh,
		tasks:  t,
		repo:   t.Repo,
		report: state.NewReport(opts.Project.Path, opts.Selections.Map(opts.Settings.Catalog)),
	}
}

// Run executes the installer and every stage. The report is returned even
// when Run fails; it holds the results of everything that ran.
func (o *Orchestrator) Run(ctx context.Context) (*state.Report, error) {
	logger.Banner(" ✨  Let the Magic Begin.")

	// The installer may exit non-zero after creating the project (e.g. a
	// failing npm step); only a missing project stops the run.
	o.report.Add(o.install(ctx))
	if !o.installed() {
		return o.report, fmt.Errorf("%w: %s", ErrInstallerFailed, o.opts.Project.Path)
	}
	logger.InfoBadge("Actually... Let's set up a few things more 🛠")

	o.loadManifest()

	stages := []func(context.Context) error{
		o.gitStage,
		o.devPackagesStage,
		o.frontEndStage,
		o.composerStage,
		o.pushStage,
		o.gitFlowStage,
		o.localEnvironmentStage,
	}
	for _, stage := range stages {
		if err := stage(ctx); err != nil {
			return o.report, err
		}
	}

	ok, skipped, failed := o.report.Summary()
	logger.Info("[INFO] %d tasks succeeded, %d skipped, %d failed\n", ok, skipped, failed)
	logger.InfoBadge("Application 100% ready! Build something amazing....")
	logger.Banner(" ✨  Mischief Managed.")
	return o.report, nil
}

// install runs `laravel new` from the parent directory of the project.
func (o *Orchestrator) install(ctx context.Context) tasks.Result {
	p := o.opts.Project
	dir := filepath.Dir(p.Path)
	if p.Name == "." {
		dir = p.Path
	}

	command := o.opts.Settings.Binaries.Laravel + " new " + p.Name
	for _, a := range o.opts.Installer.Args() {
		command += " " + a
	}

	logger.Step("💻", "Installing Laravel")
	res := o.shell.Run(ctx, shell.Request{Commands: []string{command}, Dir: dir})
	out := tasks.Result{Label: "Installing Laravel", Succeeded: res.Succeeded, ExitCode: res.ExitCode}
	switch {
	case res.Err != nil:
		out.Message = res.Err.Error()
	case !res.Succeeded:
		out.Message = fmt.Sprintf("exit status %d", res.ExitCode)
	}
	if out.Succeeded {
		logger.Done(out.Label)
	} else {
		logger.Failed(out.Label, out.Message)
	}
	return out
}

// installed reports whether the installer left a project behind. Installing
// into "." always finds the directory, so composer.json is checked instead.
func (o *Orchestrator) installed() bool {
	p := o.opts.Project
	if !p.Exists() {
		return false
	}
	if p.Name == "." {
		_, err := os.Stat(p.ComposerFile())
		return err == nil
	}
	return true
}

func (o *Orchestrator) loadManifest() {
	m, err := composer.Load(o.opts.Project.ComposerFile())
	if err != nil {
		logger.Warn("[WARN] %v. composer.json will not be updated.\n", err)
		return
	}
	o.manifest = m
}

func (o *Orchestrator) scripts() *composer.Scripts {
	if o.manifest == nil {
		return nil
	}
	return o.manifest.Scripts
}

// check returns ErrTaskFailed when res failed and the policy is fail-fast.
func (o *Orchestrator) check(res tasks.Result) error {
	if res.Failed() && o.opts.Settings.Policy == config.PolicyFailFast {
		return fmt.Errorf("%w: %s: %s", ErrTaskFailed, res.Label, res.Message)
	}
	return nil
}

// do records res and applies the failure policy.
func (o *Orchestrator) do(res tasks.Result) (tasks.Result, error) {
	o.report.Add(res)
	return res, o.check(res)
}

// commit records a checkpoint when the repository exists.
func (o *Orchestrator) commit(ctx context.Context, message string) error {
	if !o.report.Repository.Initialized {
		return nil
	}
	_, err := o.do(o.tasks.Commit(ctx, message))
	return err
}
